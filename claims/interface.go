package claims

import (
	"context"

	"github.com/bitcustody/claimd/relationship"
)

// ClaimStore is durable keyed storage of claim records. Implementations
// must make every method a single atomic transaction: the one-active-claim
// invariant and the revision check cannot be enforced across separate
// reads and writes.
type ClaimStore interface {
	// CreateClaim persists a new pending claim. It fails with
	// ErrActiveClaimExists if the relationship already has a pending or
	// locked claim, checked within the same transaction as the write.
	CreateClaim(ctx context.Context, claim *PendingClaim) error

	// UpdateClaim replaces the stored claim record, conditioned on the
	// stored revision still matching expectedRevision. On success the
	// claim's revision marker is bumped; on a concurrent conflicting
	// write it fails with ErrRevisionMismatch and the caller must retry
	// from a fresh read.
	UpdateClaim(ctx context.Context, claim Claim,
		expectedRevision uint64) error

	// FetchClaim returns the claim with the given id, or
	// ErrClaimNotFound.
	FetchClaim(ctx context.Context, id ClaimID) (Claim, error)

	// ClaimsForRelationship returns every claim ever created for the
	// relationship, in creation order, regardless of state.
	ClaimsForRelationship(ctx context.Context,
		id relationship.RelationshipID) ([]Claim, error)
}

// PackageStore is durable keyed storage of sealed escrow packages, one per
// relationship.
type PackageStore interface {
	// UpsertPackages writes the given packages, overwriting any
	// previous upload for the same relationships. The batch is written
	// atomically: either every package persists or none does.
	UpsertPackages(ctx context.Context, packages []*Package) error

	// FetchPackage returns the package sealed for the relationship, or
	// ErrPackageNotFound.
	FetchPackage(ctx context.Context,
		id relationship.RelationshipID) (*Package, error)
}
