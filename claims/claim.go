package claims

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bitcustody/claimd/account"
	"github.com/bitcustody/claimd/relationship"
	"github.com/bitcustody/claimd/wallet"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// ClaimIDSize is the length of a raw claim identifier in bytes.
const ClaimIDSize = 16

// ClaimID is the globally unique identifier of an inheritance claim,
// generated once at creation time.
type ClaimID [ClaimIDSize]byte

// NewClaimID generates a fresh random claim identifier.
func NewClaimID() (ClaimID, error) {
	var id ClaimID
	if _, err := rand.Read(id[:]); err != nil {
		return id, fmt.Errorf("unable to generate claim id: %w", err)
	}

	return id, nil
}

// String returns the hex encoding of the claim id.
func (c ClaimID) String() string {
	return hex.EncodeToString(c[:])
}

// DecodeClaimID parses a claim id from its hex string form.
func DecodeClaimID(s string) (ClaimID, error) {
	var id ClaimID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid claim id %q: %w", s, err)
	}
	if len(raw) != ClaimIDSize {
		return id, fmt.Errorf("invalid claim id %q: wrong length %d",
			s, len(raw))
	}

	copy(id[:], raw)
	return id, nil
}

// State is the lifecycle state of an inheritance claim. Transitions are
// strictly forward: Pending -> {Locked, Canceled} and
// Locked -> {Completed, Canceled}; Completed and Canceled are terminal.
type State uint8

const (
	// StatePending means the mandatory waiting period is in effect. No
	// fund movement is possible.
	StatePending State = iota

	// StateLocked means the delay elapsed and the challenge was
	// satisfied. The beneficiary may now reconstruct signing capability
	// and sweep funds.
	StateLocked

	// StateCompleted means funds were swept. Terminal, except that a
	// fee-bumped sweep may replace the stored transaction prior to
	// confirmation.
	StateCompleted

	// StateCanceled means the claim was voided. Terminal.
	StateCanceled
)

// String returns a human readable identifier for the claim state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateLocked:
		return "LOCKED"
	case StateCompleted:
		return "COMPLETED"
	case StateCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// Active returns true for the states that block a new claim from being
// created against the same relationship.
func (s State) Active() bool {
	return s == StatePending || s == StateLocked
}

// Terminal returns true for the states a claim can never leave.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCanceled
}

// ClaimCommon holds the fields shared by every claim state.
type ClaimCommon struct {
	// ID is the claim identifier.
	ID ClaimID

	// RelationshipID is the endorsed relationship the claim was created
	// against. Immutable.
	RelationshipID relationship.RelationshipID

	// BenefactorID is the account whose funds are subject to the claim.
	BenefactorID account.AccountID

	// BeneficiaryID is the claiming account.
	BeneficiaryID account.AccountID

	// Network is the bitcoin network the claim operates on.
	Network wallet.Network

	// AuthKeys is the key triplet the beneficiary rotates to for this
	// claim; lock challenges are verified against these keys.
	AuthKeys account.AuthKeySet

	// CreatedAt is the creation time of the claim.
	CreatedAt time.Time

	// Destination is the optional fund destination. It may only be
	// written while the claim is pending or locked, and only by the
	// beneficiary.
	Destination fn.Option[Destination]

	// Revision is a monotonically increasing marker used for optimistic
	// conflict detection. Every successful mutation bumps it by one.
	Revision uint64
}

// Claim is the closed set of claim variants. Each variant carries only the
// data its state defines, so illegal field combinations are
// unrepresentable.
type Claim interface {
	// Common returns the fields shared by every state.
	Common() *ClaimCommon

	// State returns the lifecycle state of the variant.
	State() State
}

// PendingClaim is a claim inside its mandatory waiting period.
type PendingClaim struct {
	ClaimCommon

	// DelayEndTime is the instant the waiting period ends. Fixed at
	// creation and never shortened by any actor action.
	DelayEndTime time.Time
}

// Common returns the shared claim fields.
func (c *PendingClaim) Common() *ClaimCommon {
	return &c.ClaimCommon
}

// State returns StatePending.
func (c *PendingClaim) State() State {
	return StatePending
}

// LockedClaim is a claim whose delay elapsed and whose challenge was
// satisfied.
type LockedClaim struct {
	ClaimCommon

	// SealedDEK is the sealed data encryption key from the escrow
	// package. Never decrypted by the claim core.
	SealedDEK []byte

	// SealedMobileKey is the sealed mobile key material from the escrow
	// package. Never decrypted by the claim core.
	SealedMobileKey []byte

	// BenefactorKeyset is the benefactor's descriptor keyset captured
	// at lock time. A benefactor key rotation after locking cannot
	// alter an in-flight claim.
	BenefactorKeyset wallet.DescriptorKeyset
}

// Common returns the shared claim fields.
func (c *LockedClaim) Common() *ClaimCommon {
	return &c.ClaimCommon
}

// State returns StateLocked.
func (c *LockedClaim) State() State {
	return StateLocked
}

// CompletedClaim is a claim whose sweep transaction was broadcast.
type CompletedClaim struct {
	ClaimCommon

	// SweepTxID is the txid of the most recently broadcast sweep.
	SweepTxID chainhash.Hash

	// SweepPsbt is the raw serialized sweep transaction as received
	// from the beneficiary. A fee-bump re-completion replaces it.
	SweepPsbt []byte
}

// Common returns the shared claim fields.
func (c *CompletedClaim) Common() *ClaimCommon {
	return &c.ClaimCommon
}

// State returns StateCompleted.
func (c *CompletedClaim) State() State {
	return StateCompleted
}

// CanceledClaim is a claim voided by either party.
type CanceledClaim struct {
	ClaimCommon

	// CanceledAt is the cancellation time.
	CanceledAt time.Time
}

// Common returns the shared claim fields.
func (c *CanceledClaim) Common() *ClaimCommon {
	return &c.ClaimCommon
}

// State returns StateCanceled.
func (c *CanceledClaim) State() State {
	return StateCanceled
}
