package claimdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/bitcustody/claimd/claims"
	"github.com/bitcustody/claimd/relationship"
	"github.com/lightningnetwork/lnd/kvdb"
)

var (
	// claimBucket is the name of the bucket within the database that
	// stores all claim records no matter their state. Within the claim
	// bucket, each claim is keyed by its raw claim id.
	claimBucket = []byte("inheritance-claims")

	// claimRelIndexBucket is the name of the top-level bucket that
	// indexes claims by their relationship. It holds one nested bucket
	// per relationship id, which maps a monotonically increasing
	// sequence number to a claim id, so that a range read returns the
	// relationship's claims in creation order.
	//
	// maps: relationshipID => seqNo => claimID
	claimRelIndexBucket = []byte("claim-relationship-index")

	// packageBucket is the name of the bucket within the database that
	// stores the sealed escrow package for each relationship.
	//
	// maps: relationshipID => serialized package
	packageBucket = []byte("inheritance-packages")

	byteOrder = binary.BigEndian
)

// DB stores inheritance claims and escrow packages in a kvdb backend. It
// implements both claims.ClaimStore and claims.PackageStore.
//
// There is no in-process lock serializing claims: correctness under
// concurrent mutation relies on every method being a single database
// transaction, with CreateClaim checking the one-active-claim invariant
// and UpdateClaim checking the revision marker inside that transaction.
type DB struct {
	backend kvdb.Backend
}

// Compile time checks for the store interfaces.
var (
	_ claims.ClaimStore   = (*DB)(nil)
	_ claims.PackageStore = (*DB)(nil)
)

// Open creates the claim buckets if needed and returns a new store
// instance.
func Open(backend kvdb.Backend) (*DB, error) {
	err := kvdb.Update(backend, func(tx kvdb.RwTx) error {
		buckets := [][]byte{
			claimBucket, claimRelIndexBucket, packageBucket,
		}
		for _, bucket := range buckets {
			_, err := tx.CreateTopLevelBucket(bucket)
			if err != nil {
				return err
			}
		}

		return nil
	}, func() {})
	if err != nil {
		return nil, fmt.Errorf("unable to create claim buckets: %w",
			err)
	}

	return &DB{backend: backend}, nil
}

// CreateClaim persists a new pending claim and adds it to the relationship
// index. The one-active-claim invariant is enforced inside the same
// transaction as the write, so two racing starts for one relationship
// cannot both succeed. On success the claim's revision marker is set to
// its initial value.
func (d *DB) CreateClaim(_ context.Context, claim *claims.PendingClaim) error {
	relKey := []byte(claim.RelationshipID)

	err := kvdb.Update(d.backend, func(tx kvdb.RwTx) error {
		claimBkt := tx.ReadWriteBucket(claimBucket)
		indexBkt := tx.ReadWriteBucket(claimRelIndexBucket)

		if claimBkt.Get(claim.ID[:]) != nil {
			return claims.NewError(
				claims.CodeInternal, claims.ErrClaimExists,
			)
		}

		relBkt, err := indexBkt.CreateBucketIfNotExists(relKey)
		if err != nil {
			return err
		}

		// Walk the relationship's existing claims. If any of them is
		// still active, the new claim must be rejected.
		err = relBkt.ForEach(func(_, existingID []byte) error {
			raw := claimBkt.Get(existingID)
			if raw == nil {
				return nil
			}

			existing, err := deserializeClaim(
				bytes.NewReader(raw),
			)
			if err != nil {
				return err
			}

			if existing.State().Active() {
				return claims.NewError(
					claims.CodeConflict,
					claims.ErrActiveClaimExists,
				)
			}

			return nil
		})
		if err != nil {
			return err
		}

		seqNo, err := relBkt.NextSequence()
		if err != nil {
			return err
		}

		var seqKey [8]byte
		byteOrder.PutUint64(seqKey[:], seqNo)
		if err := relBkt.Put(seqKey[:], claim.ID[:]); err != nil {
			return err
		}

		claim.Revision = 1

		var b bytes.Buffer
		if err := serializeClaim(&b, claim); err != nil {
			return err
		}

		return claimBkt.Put(claim.ID[:], b.Bytes())
	}, func() {
		claim.Revision = 0
	})
	if err != nil {
		return err
	}

	log.Infof("Created pending claim %v for relationship %v", claim.ID,
		claim.RelationshipID)

	return nil
}

// UpdateClaim replaces the stored record for the claim, conditioned on the
// stored revision still matching expectedRevision. A concurrent write that
// committed in between fails the whole operation with ErrRevisionMismatch;
// the caller must re-read and retry. On success the claim's revision
// marker is bumped by one.
func (d *DB) UpdateClaim(_ context.Context, claim claims.Claim,
	expectedRevision uint64) error {

	common := claim.Common()

	err := kvdb.Update(d.backend, func(tx kvdb.RwTx) error {
		claimBkt := tx.ReadWriteBucket(claimBucket)

		raw := claimBkt.Get(common.ID[:])
		if raw == nil {
			return claims.NewError(
				claims.CodeNotFound, claims.ErrClaimNotFound,
			)
		}

		stored, err := deserializeClaim(bytes.NewReader(raw))
		if err != nil {
			return err
		}

		storedRevision := stored.Common().Revision
		if storedRevision != expectedRevision {
			return claims.Errorf(claims.CodeConflict,
				"%w: claim %v is at revision %d, write "+
					"expected %d",
				claims.ErrRevisionMismatch, common.ID,
				storedRevision, expectedRevision)
		}

		common.Revision = expectedRevision + 1

		var b bytes.Buffer
		if err := serializeClaim(&b, claim); err != nil {
			return err
		}

		return claimBkt.Put(common.ID[:], b.Bytes())
	}, func() {
		common.Revision = expectedRevision
	})
	if err != nil {
		return err
	}

	log.Debugf("Updated claim %v to state %v (revision %d)", common.ID,
		claim.State(), common.Revision)

	return nil
}

// FetchClaim returns the claim with the given id.
func (d *DB) FetchClaim(_ context.Context, id claims.ClaimID) (claims.Claim,
	error) {

	var claim claims.Claim
	err := kvdb.View(d.backend, func(tx kvdb.RTx) error {
		claimBkt := tx.ReadBucket(claimBucket)

		raw := claimBkt.Get(id[:])
		if raw == nil {
			return claims.NewError(
				claims.CodeNotFound, claims.ErrClaimNotFound,
			)
		}

		var err error
		claim, err = deserializeClaim(bytes.NewReader(raw))
		return err
	}, func() {
		claim = nil
	})
	if err != nil {
		return nil, err
	}

	return claim, nil
}

// ClaimsForRelationship returns every claim ever created for the
// relationship, in creation order.
func (d *DB) ClaimsForRelationship(_ context.Context,
	id relationship.RelationshipID) ([]claims.Claim, error) {

	var result []claims.Claim
	err := kvdb.View(d.backend, func(tx kvdb.RTx) error {
		claimBkt := tx.ReadBucket(claimBucket)
		indexBkt := tx.ReadBucket(claimRelIndexBucket)

		relBkt := indexBkt.NestedReadBucket([]byte(id))
		if relBkt == nil {
			return nil
		}

		// Sequence keys are big endian, so a plain forward walk
		// yields creation order.
		return relBkt.ForEach(func(_, claimID []byte) error {
			raw := claimBkt.Get(claimID)
			if raw == nil {
				return nil
			}

			claim, err := deserializeClaim(bytes.NewReader(raw))
			if err != nil {
				return err
			}

			result = append(result, claim)
			return nil
		})
	}, func() {
		result = nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpsertPackages writes the sealed escrow packages in one transaction,
// overwriting any previous upload for the same relationships.
func (d *DB) UpsertPackages(_ context.Context,
	packages []*claims.Package) error {

	return kvdb.Update(d.backend, func(tx kvdb.RwTx) error {
		pkgBkt := tx.ReadWriteBucket(packageBucket)

		for _, pkg := range packages {
			var b bytes.Buffer
			if err := serializePackage(&b, pkg); err != nil {
				return err
			}

			key := []byte(pkg.RelationshipID)
			if err := pkgBkt.Put(key, b.Bytes()); err != nil {
				return err
			}
		}

		return nil
	}, func() {})
}

// FetchPackage returns the escrow package sealed for the relationship.
func (d *DB) FetchPackage(_ context.Context,
	id relationship.RelationshipID) (*claims.Package, error) {

	var pkg *claims.Package
	err := kvdb.View(d.backend, func(tx kvdb.RTx) error {
		pkgBkt := tx.ReadBucket(packageBucket)

		raw := pkgBkt.Get([]byte(id))
		if raw == nil {
			return claims.NewError(
				claims.CodeNotFound,
				claims.ErrPackageNotFound,
			)
		}

		var err error
		pkg, err = deserializePackage(bytes.NewReader(raw), id)
		return err
	}, func() {
		pkg = nil
	})
	if err != nil {
		return nil, err
	}

	return pkg, nil
}
