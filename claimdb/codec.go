package claimdb

import (
	"fmt"
	"io"
	"time"

	"github.com/bitcustody/claimd/account"
	"github.com/bitcustody/claimd/claims"
	"github.com/bitcustody/claimd/relationship"
	"github.com/bitcustody/claimd/wallet"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/tlv"
)

// A set of tlv type definitions used to serialize claim records to the
// database.
//
// NOTE: A migration should be added whenever this list changes. This
// prevents against the database being rolled back to an older format where
// the surrounding logic might assume a different set of fields are known.
const (
	claimIDType       tlv.Type = 0
	stateType         tlv.Type = 1
	relationshipType  tlv.Type = 2
	benefactorType    tlv.Type = 3
	beneficiaryType   tlv.Type = 4
	networkType       tlv.Type = 5
	createdAtType     tlv.Type = 6
	appKeyType        tlv.Type = 7
	hardwareKeyType   tlv.Type = 8
	recoveryKeyType   tlv.Type = 9
	destKindType      tlv.Type = 10
	destAddressType   tlv.Type = 11
	revisionType      tlv.Type = 12
	delayEndType      tlv.Type = 13
	sealedDEKType     tlv.Type = 14
	sealedMobileType  tlv.Type = 15
	keysetAppType     tlv.Type = 16
	keysetHwType      tlv.Type = 17
	keysetServerType  tlv.Type = 18
	sweepTxIDType     tlv.Type = 19
	sweepPsbtType     tlv.Type = 20
	canceledAtType    tlv.Type = 21
)

// A set of tlv type definitions used to serialize escrow packages.
const (
	pkgSealedDEKType    tlv.Type = 1
	pkgSealedMobileType tlv.Type = 2
	pkgUpdatedAtType    tlv.Type = 3
)

// putNanoTime returns the unix nanosecond representation of a timestamp,
// with the zero time mapping to zero.
func putNanoTime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}

	return uint64(t.UnixNano())
}

// getNanoTime inverts putNanoTime.
func getNanoTime(ns uint64) time.Time {
	if ns == 0 {
		return time.Time{}
	}

	return time.Unix(0, int64(ns)).UTC()
}

// serializeClaim encodes a claim variant as a single tlv stream. Records
// for optional or state-specific fields are only emitted when present, so
// the state byte fully determines which records a reader must expect.
func serializeClaim(w io.Writer, claim claims.Claim) error {
	common := claim.Common()

	claimID := common.ID[:]
	state := uint8(claim.State())
	relID := []byte(common.RelationshipID)
	benefactor := []byte(common.BenefactorID)
	beneficiary := []byte(common.BeneficiaryID)
	network := uint8(common.Network)
	createdAt := putNanoTime(common.CreatedAt)
	appKey := common.AuthKeys.AppKey
	hardwareKey := common.AuthKeys.HardwareKey

	records := []tlv.Record{
		tlv.MakePrimitiveRecord(claimIDType, &claimID),
		tlv.MakePrimitiveRecord(stateType, &state),
		tlv.MakePrimitiveRecord(relationshipType, &relID),
		tlv.MakePrimitiveRecord(benefactorType, &benefactor),
		tlv.MakePrimitiveRecord(beneficiaryType, &beneficiary),
		tlv.MakePrimitiveRecord(networkType, &network),
		tlv.MakePrimitiveRecord(createdAtType, &createdAt),
		tlv.MakePrimitiveRecord(appKeyType, &appKey),
		tlv.MakePrimitiveRecord(hardwareKeyType, &hardwareKey),
	}

	common.AuthKeys.RecoveryKey.WhenSome(func(key *btcec.PublicKey) {
		records = append(records, tlv.MakePrimitiveRecord(
			recoveryKeyType, &key,
		))
	})

	common.Destination.WhenSome(func(dest claims.Destination) {
		kind := uint8(dest.Kind)
		address := []byte(dest.Address)
		records = append(records,
			tlv.MakePrimitiveRecord(destKindType, &kind),
			tlv.MakePrimitiveRecord(destAddressType, &address),
		)
	})

	records = append(records, tlv.MakePrimitiveRecord(
		revisionType, &common.Revision,
	))

	switch c := claim.(type) {
	case *claims.PendingClaim:
		delayEnd := putNanoTime(c.DelayEndTime)
		records = append(records, tlv.MakePrimitiveRecord(
			delayEndType, &delayEnd,
		))

	case *claims.LockedClaim:
		keysetApp := []byte(c.BenefactorKeyset.AppKey)
		keysetHw := []byte(c.BenefactorKeyset.HardwareKey)
		keysetServer := []byte(c.BenefactorKeyset.ServerKey)
		records = append(records,
			tlv.MakePrimitiveRecord(sealedDEKType, &c.SealedDEK),
			tlv.MakePrimitiveRecord(
				sealedMobileType, &c.SealedMobileKey,
			),
			tlv.MakePrimitiveRecord(keysetAppType, &keysetApp),
			tlv.MakePrimitiveRecord(keysetHwType, &keysetHw),
			tlv.MakePrimitiveRecord(
				keysetServerType, &keysetServer,
			),
		)

	case *claims.CompletedClaim:
		txid := [32]byte(c.SweepTxID)
		records = append(records,
			tlv.MakePrimitiveRecord(sweepTxIDType, &txid),
			tlv.MakePrimitiveRecord(sweepPsbtType, &c.SweepPsbt),
		)

	case *claims.CanceledClaim:
		canceledAt := putNanoTime(c.CanceledAt)
		records = append(records, tlv.MakePrimitiveRecord(
			canceledAtType, &canceledAt,
		))

	default:
		return fmt.Errorf("unknown claim variant %T", claim)
	}

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}

	return stream.Encode(w)
}

// deserializeClaim decodes a claim variant written by serializeClaim.
func deserializeClaim(r io.Reader) (claims.Claim, error) {
	var (
		claimID                           []byte
		state, network, destKind          uint8
		relID, benefactor, beneficiary    []byte
		createdAt, revision               uint64
		appKey, hardwareKey, recoveryKey  *btcec.PublicKey
		destAddress                       []byte
		delayEnd, canceledAt              uint64
		sealedDEK, sealedMobile           []byte
		keysetApp, keysetHw, keysetServer []byte
		sweepTxID                         [32]byte
		sweepPsbt                         []byte
	)

	stream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(claimIDType, &claimID),
		tlv.MakePrimitiveRecord(stateType, &state),
		tlv.MakePrimitiveRecord(relationshipType, &relID),
		tlv.MakePrimitiveRecord(benefactorType, &benefactor),
		tlv.MakePrimitiveRecord(beneficiaryType, &beneficiary),
		tlv.MakePrimitiveRecord(networkType, &network),
		tlv.MakePrimitiveRecord(createdAtType, &createdAt),
		tlv.MakePrimitiveRecord(appKeyType, &appKey),
		tlv.MakePrimitiveRecord(hardwareKeyType, &hardwareKey),
		tlv.MakePrimitiveRecord(recoveryKeyType, &recoveryKey),
		tlv.MakePrimitiveRecord(destKindType, &destKind),
		tlv.MakePrimitiveRecord(destAddressType, &destAddress),
		tlv.MakePrimitiveRecord(revisionType, &revision),
		tlv.MakePrimitiveRecord(delayEndType, &delayEnd),
		tlv.MakePrimitiveRecord(sealedDEKType, &sealedDEK),
		tlv.MakePrimitiveRecord(sealedMobileType, &sealedMobile),
		tlv.MakePrimitiveRecord(keysetAppType, &keysetApp),
		tlv.MakePrimitiveRecord(keysetHwType, &keysetHw),
		tlv.MakePrimitiveRecord(keysetServerType, &keysetServer),
		tlv.MakePrimitiveRecord(sweepTxIDType, &sweepTxID),
		tlv.MakePrimitiveRecord(sweepPsbtType, &sweepPsbt),
		tlv.MakePrimitiveRecord(canceledAtType, &canceledAt),
	)
	if err != nil {
		return nil, err
	}

	parsedTypes, err := stream.DecodeWithParsedTypes(r)
	if err != nil {
		return nil, err
	}

	if len(claimID) != claims.ClaimIDSize {
		return nil, fmt.Errorf("invalid stored claim id length %d",
			len(claimID))
	}

	common := claims.ClaimCommon{
		RelationshipID: relationship.RelationshipID(relID),
		BenefactorID:   account.AccountID(benefactor),
		BeneficiaryID:  account.AccountID(beneficiary),
		Network:        wallet.Network(network),
		AuthKeys: account.AuthKeySet{
			AppKey:      appKey,
			HardwareKey: hardwareKey,
			RecoveryKey: fn.None[*btcec.PublicKey](),
		},
		CreatedAt:   getNanoTime(createdAt),
		Destination: fn.None[claims.Destination](),
		Revision:    revision,
	}
	copy(common.ID[:], claimID)

	if _, ok := parsedTypes[recoveryKeyType]; ok {
		common.AuthKeys.RecoveryKey = fn.Some(recoveryKey)
	}
	if _, ok := parsedTypes[destAddressType]; ok {
		common.Destination = fn.Some(claims.Destination{
			Kind:    claims.DestinationKind(destKind),
			Address: string(destAddress),
		})
	}

	switch claims.State(state) {
	case claims.StatePending:
		return &claims.PendingClaim{
			ClaimCommon:  common,
			DelayEndTime: getNanoTime(delayEnd),
		}, nil

	case claims.StateLocked:
		return &claims.LockedClaim{
			ClaimCommon:     common,
			SealedDEK:       sealedDEK,
			SealedMobileKey: sealedMobile,
			BenefactorKeyset: wallet.DescriptorKeyset{
				AppKey:      string(keysetApp),
				HardwareKey: string(keysetHw),
				ServerKey:   string(keysetServer),
			},
		}, nil

	case claims.StateCompleted:
		return &claims.CompletedClaim{
			ClaimCommon: common,
			SweepTxID:   sweepTxID,
			SweepPsbt:   sweepPsbt,
		}, nil

	case claims.StateCanceled:
		return &claims.CanceledClaim{
			ClaimCommon: common,
			CanceledAt:  getNanoTime(canceledAt),
		}, nil

	default:
		return nil, fmt.Errorf("unknown claim state %d", state)
	}
}

// serializePackage encodes an escrow package. The relationship id is the
// storage key and is not repeated in the value.
func serializePackage(w io.Writer, pkg *claims.Package) error {
	updatedAt := putNanoTime(pkg.UpdatedAt)

	stream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(pkgSealedDEKType, &pkg.SealedDEK),
		tlv.MakePrimitiveRecord(
			pkgSealedMobileType, &pkg.SealedMobileKey,
		),
		tlv.MakePrimitiveRecord(pkgUpdatedAtType, &updatedAt),
	)
	if err != nil {
		return err
	}

	return stream.Encode(w)
}

// deserializePackage decodes an escrow package stored under the given
// relationship id.
func deserializePackage(r io.Reader,
	id relationship.RelationshipID) (*claims.Package, error) {

	var (
		sealedDEK, sealedMobile []byte
		updatedAt               uint64
	)

	stream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(pkgSealedDEKType, &sealedDEK),
		tlv.MakePrimitiveRecord(pkgSealedMobileType, &sealedMobile),
		tlv.MakePrimitiveRecord(pkgUpdatedAtType, &updatedAt),
	)
	if err != nil {
		return nil, err
	}

	if err := stream.Decode(r); err != nil {
		return nil, err
	}

	return &claims.Package{
		RelationshipID:  id,
		SealedDEK:       sealedDEK,
		SealedMobileKey: sealedMobile,
		UpdatedAt:       getNanoTime(updatedAt),
	}, nil
}
