package claims

import (
	"time"

	"github.com/bitcustody/claimd/relationship"
)

// Package is the per-relationship sealed key-escrow payload uploaded by
// the benefactor ahead of any claim. The claim core stores and forwards
// the sealed blobs; it can never decrypt them. A package must exist for a
// relationship before its claim may lock.
type Package struct {
	// RelationshipID is the relationship the package is sealed for.
	RelationshipID relationship.RelationshipID

	// SealedDEK is the sealed data encryption key.
	SealedDEK []byte

	// SealedMobileKey is the sealed mobile key material.
	SealedMobileKey []byte

	// UpdatedAt is the time of the most recent upload. A re-upload
	// overwrites the previous package.
	UpdatedAt time.Time
}
