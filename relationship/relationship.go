package relationship

import (
	"context"
	"errors"

	"github.com/bitcustody/claimd/account"
)

// ErrRelationshipNotFound is returned when a relationship id does not
// resolve to a known recovery relationship.
var ErrRelationshipNotFound = errors.New("recovery relationship not found")

// IDPrefix is the urn prefix carried by every relationship identifier.
const IDPrefix = "urn:wallet-recovery-relationship:"

// RelationshipID uniquely identifies a benefactor/beneficiary pairing. The
// registry that mints these identifiers lives outside the claim core.
type RelationshipID string

// String returns the identifier in its urn form.
func (r RelationshipID) String() string {
	return string(r)
}

// Role tags the function the trusted contact performs in a relationship.
type Role uint8

const (
	// RoleBeneficiary marks a contact entitled to claim funds through
	// the inheritance process.
	RoleBeneficiary Role = iota
)

// Status is the endorsement state of a recovery relationship.
type Status uint8

const (
	// StatusInvited means the invitation has been issued but not yet
	// accepted by the contact.
	StatusInvited Status = iota

	// StatusAccepted means the contact accepted the invitation but the
	// benefactor has not yet vouched for their keys.
	StatusAccepted

	// StatusEndorsed means the benefactor cryptographically vouched for
	// the contact. Claims may only be created against endorsed
	// relationships.
	StatusEndorsed
)

// String returns a human readable identifier for the status.
func (s Status) String() string {
	switch s {
	case StatusInvited:
		return "invited"
	case StatusAccepted:
		return "accepted"
	case StatusEndorsed:
		return "endorsed"
	default:
		return "unknown"
	}
}

// Relationship is the registry's view of a benefactor/beneficiary pairing,
// borrowed by the claim core for the duration of one request.
type Relationship struct {
	// ID is the relationship identifier.
	ID RelationshipID

	// BenefactorID is the account whose funds are subject to
	// inheritance.
	BenefactorID account.AccountID

	// BeneficiaryID is the trusted contact account.
	BeneficiaryID account.AccountID

	// Role is the role of the trusted contact.
	Role Role

	// Status is the current endorsement status.
	Status Status
}

// IsEndorsed returns true if the benefactor has endorsed the relationship.
func (r *Relationship) IsEndorsed() bool {
	return r.Status == StatusEndorsed
}

// Registry is the external relationship registry capability. The claim
// core only ever reads from it.
type Registry interface {
	// FetchRelationship returns the relationship with the given id, or
	// ErrRelationshipNotFound.
	FetchRelationship(ctx context.Context,
		id RelationshipID) (*Relationship, error)
}
