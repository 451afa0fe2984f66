package lifecycle

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bitcustody/claimd/account"
	"github.com/bitcustody/claimd/authz"
	"github.com/bitcustody/claimd/challenge"
	"github.com/bitcustody/claimd/claimdb"
	"github.com/bitcustody/claimd/claims"
	"github.com/bitcustody/claimd/notify"
	"github.com/bitcustody/claimd/relationship"
	"github.com/bitcustody/claimd/wallet"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/kvdb"
	"github.com/stretchr/testify/require"
)

var (
	testRelID = relationship.RelationshipID(
		"urn:wallet-recovery-relationship:rel-1",
	)
	testBenefactorID  = account.AccountID("urn:wallet-account:benefactor")
	testBeneficiaryID = account.AccountID("urn:wallet-account:beneficiary")

	testStartTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	testKeyset = wallet.DescriptorKeyset{
		AppKey:      "[deadbeef/84'/0'/0']xpubApp",
		HardwareKey: "[cafebabe/84'/0'/0']xpubHw",
		ServerKey:   "[12345678/84'/0'/0']xpubSrv",
	}
)

// fakeRegistry is an in-memory relationship registry.
type fakeRegistry struct {
	relationships map[relationship.RelationshipID]*relationship.Relationship
}

func (f *fakeRegistry) FetchRelationship(_ context.Context,
	id relationship.RelationshipID) (*relationship.Relationship, error) {

	rel, ok := f.relationships[id]
	if !ok {
		return nil, relationship.ErrRelationshipNotFound
	}

	return rel, nil
}

// fakeKeysets returns a fixed descriptor keyset for every account.
type fakeKeysets struct {
	keyset wallet.DescriptorKeyset
	err    error
}

func (f *fakeKeysets) ActiveKeyset(_ context.Context,
	_ account.AccountID) (wallet.DescriptorKeyset, error) {

	if f.err != nil {
		return wallet.DescriptorKeyset{}, f.err
	}

	return f.keyset, nil
}

// fakeDispatcher records every dispatched batch.
type fakeDispatcher struct {
	mu      sync.Mutex
	batches [][]notify.Event
	err     error
}

func (f *fakeDispatcher) Dispatch(_ context.Context,
	events []notify.Event) error {

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.batches = append(f.batches, events)
	return nil
}

func (f *fakeDispatcher) allEvents() []notify.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []notify.Event
	for _, batch := range f.batches {
		all = append(all, batch...)
	}

	return all
}

// testHarness wires an engine against a real claim store and fake
// externals.
type testHarness struct {
	t *testing.T

	engine     *Engine
	db         *claimdb.DB
	clock      *clock.TestClock
	dispatcher *fakeDispatcher
	registry   *fakeRegistry

	benefactor  *account.Account
	beneficiary *account.Account
	outsider    *account.Account

	appPriv  *btcec.PrivateKey
	hwPriv   *btcec.PrivateKey
	authKeys account.AuthKeySet
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	backend, cleanup, err := kvdb.GetTestBackend(t.TempDir(), "claimdb")
	require.NoError(t, err)
	t.Cleanup(cleanup)

	db, err := claimdb.Open(backend)
	require.NoError(t, err)

	registry := &fakeRegistry{
		relationships: map[relationship.RelationshipID]*relationship.Relationship{
			testRelID: {
				ID:            testRelID,
				BenefactorID:  testBenefactorID,
				BeneficiaryID: testBeneficiaryID,
				Role:          relationship.RoleBeneficiary,
				Status:        relationship.StatusEndorsed,
			},
		},
	}

	dispatcher := &fakeDispatcher{}
	testClock := clock.NewTestClock(testStartTime)

	engine, err := NewEngine(Config{
		Store:         db,
		Packages:      db,
		Relationships: registry,
		Keysets:       &fakeKeysets{keyset: testKeyset},
		Verifier:      &challenge.SecpVerifier{},
		Dispatcher:    dispatcher,
		Clock:         testClock,
		Network:       wallet.NetworkRegtest,
	})
	require.NoError(t, err)

	appPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hwPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	return &testHarness{
		t:          t,
		engine:     engine,
		db:         db,
		clock:      testClock,
		dispatcher: dispatcher,
		registry:   registry,
		benefactor: &account.Account{
			ID: testBenefactorID, Type: account.TypeFull,
		},
		beneficiary: &account.Account{
			ID: testBeneficiaryID, Type: account.TypeFull,
		},
		outsider: &account.Account{
			ID:   "urn:wallet-account:outsider",
			Type: account.TypeFull,
		},
		appPriv: appPriv,
		hwPriv:  hwPriv,
		authKeys: account.AuthKeySet{
			AppKey:      appPriv.PubKey(),
			HardwareKey: hwPriv.PubKey(),
			RecoveryKey: fn.None[*btcec.PublicKey](),
		},
	}
}

func (h *testHarness) startClaim() *claims.PendingClaim {
	h.t.Helper()

	pending, err := h.engine.StartClaim(
		context.Background(), h.beneficiary, testRelID, h.authKeys,
	)
	require.NoError(h.t, err)

	return pending
}

func (h *testHarness) uploadPackage() {
	h.t.Helper()

	err := h.engine.UploadPackages(
		context.Background(), h.benefactor, []PackageUpload{{
			RelationshipID:  testRelID,
			SealedDEK:       []byte("sealed-dek"),
			SealedMobileKey: []byte("sealed-mobile"),
		}},
	)
	require.NoError(h.t, err)
}

func sign(priv *btcec.PrivateKey, msg string) []byte {
	digest := sha256.Sum256([]byte(msg))
	return ecdsa.Sign(priv, digest[:]).Serialize()
}

// lockRequest builds a valid lock request for the harness keys.
func (h *testHarness) lockRequest() *LockRequest {
	msg := challenge.Build(h.authKeys)
	return &LockRequest{
		RelationshipID:    testRelID,
		Challenge:         msg,
		AppSignature:      sign(h.appPriv, msg),
		HardwareSignature: sign(h.hwPriv, msg),
	}
}

// lockClaim drives a pending claim to locked through the full gate chain.
func (h *testHarness) lockClaim(id claims.ClaimID) *claims.LockedClaim {
	h.t.Helper()

	h.uploadPackage()
	h.clock.SetTime(h.clock.Now().Add(DefaultClaimDelay))

	locked, err := h.engine.LockClaim(
		context.Background(), h.beneficiary, id, h.lockRequest(),
	)
	require.NoError(h.t, err)

	return locked
}

// TestStartClaim asserts claim creation, its delay stamp, and the declared
// notification batch.
func TestStartClaim(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	pending := h.startClaim()

	require.Equal(t, claims.StatePending, pending.State())
	require.Equal(t, testRelID, pending.RelationshipID)
	require.Equal(t, testBenefactorID, pending.BenefactorID)
	require.Equal(t, testBeneficiaryID, pending.BeneficiaryID)
	require.Equal(
		t, testStartTime.Add(DefaultClaimDelay), pending.DelayEndTime,
	)

	// Both parties are notified immediately, and both get a scheduled
	// delay-end notice.
	events := h.dispatcher.allEvents()
	require.Len(t, events, 4)

	recipients := make(map[account.AccountID]int)
	for _, event := range events[:2] {
		require.Equal(t, notify.ClaimPeriodInitiated, event.Payload)
		require.False(t, event.Scheduled())
		recipients[event.Recipient]++
	}
	for _, event := range events[2:] {
		require.Equal(t, notify.ClaimPeriodCompleted, event.Payload)
		require.Equal(
			t, fn.Some(pending.DelayEndTime), event.DeliverAt,
		)
		recipients[event.Recipient]++
	}
	require.Equal(t, 2, recipients[testBenefactorID])
	require.Equal(t, 2, recipients[testBeneficiaryID])
}

// TestStartClaimAuthz asserts the actor and relationship gates on claim
// creation.
func TestStartClaimAuthz(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	// The benefactor cannot start a claim on their own relationship.
	_, err := h.engine.StartClaim(
		ctx, h.benefactor, testRelID, h.authKeys,
	)
	require.ErrorIs(t, err, authz.ErrNotBeneficiary)
	require.Equal(t, claims.CodeUnauthorized, claims.CodeOf(err))

	// A lite account cannot, even as the beneficiary.
	lite := &account.Account{
		ID: testBeneficiaryID, Type: account.TypeLite,
	}
	_, err = h.engine.StartClaim(ctx, lite, testRelID, h.authKeys)
	require.ErrorIs(t, err, authz.ErrLiteAccount)
	require.Equal(t, claims.CodeForbidden, claims.CodeOf(err))

	// A relationship that was never endorsed rejects claims.
	acceptedID := relationship.RelationshipID(
		"urn:wallet-recovery-relationship:accepted",
	)
	h.registry.relationships[acceptedID] = &relationship.Relationship{
		ID:            acceptedID,
		BenefactorID:  testBenefactorID,
		BeneficiaryID: testBeneficiaryID,
		Status:        relationship.StatusAccepted,
	}
	_, err = h.engine.StartClaim(ctx, h.beneficiary, acceptedID, h.authKeys)
	require.ErrorIs(t, err, authz.ErrNotEndorsed)

	// An unknown relationship is not found.
	_, err = h.engine.StartClaim(
		ctx, h.beneficiary, "urn:wallet-recovery-relationship:nope",
		h.authKeys,
	)
	require.ErrorIs(t, err, relationship.ErrRelationshipNotFound)
	require.Equal(t, claims.CodeNotFound, claims.CodeOf(err))

	// None of the rejected attempts dispatched anything.
	require.Empty(t, h.dispatcher.allEvents())
}

// TestStartClaimConflict asserts that one relationship can only hold a
// single active claim at a time.
func TestStartClaimConflict(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	h.startClaim()

	_, err := h.engine.StartClaim(
		ctx, h.beneficiary, testRelID, h.authKeys,
	)
	require.ErrorIs(t, err, claims.ErrActiveClaimExists)
	require.Equal(t, claims.CodeConflict, claims.CodeOf(err))
}

// TestCancelClaim asserts cancellation by each party, its idempotency, and
// its notification batch.
func TestCancelClaim(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	pending := h.startClaim()
	startEventCount := len(h.dispatcher.allEvents())

	// An unrelated account cannot cancel.
	_, err := h.engine.CancelClaim(ctx, h.outsider, pending.ID)
	require.ErrorIs(t, err, authz.ErrNotClaimParty)
	require.Equal(t, claims.CodeUnauthorized, claims.CodeOf(err))

	// The benefactor can.
	h.clock.SetTime(testStartTime.Add(time.Hour))
	canceled, err := h.engine.CancelClaim(ctx, h.benefactor, pending.ID)
	require.NoError(t, err)
	require.Equal(t, claims.StateCanceled, canceled.State())

	canceledClaim, ok := canceled.(*claims.CanceledClaim)
	require.True(t, ok)
	require.Equal(
		t, testStartTime.Add(time.Hour), canceledClaim.CanceledAt,
	)

	// Exactly one cancellation notice per party.
	events := h.dispatcher.allEvents()[startEventCount:]
	require.Len(t, events, 2)
	for _, event := range events {
		require.Equal(t, notify.ClaimCanceled, event.Payload)
		require.False(t, event.Scheduled())
	}

	// A repeat cancel succeeds without mutating or notifying again.
	again, err := h.engine.CancelClaim(ctx, h.beneficiary, pending.ID)
	require.NoError(t, err)
	require.Equal(t, claims.StateCanceled, again.State())
	require.Len(t, h.dispatcher.allEvents(), startEventCount+2)

	stored, err := h.db.FetchClaim(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(
		t, canceled.Common().Revision, stored.Common().Revision,
	)
}

// TestCancelCompletedClaim asserts that a completed claim can never be
// canceled.
func TestCancelCompletedClaim(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	pending := h.startClaim()
	locked := h.lockClaim(pending.ID)

	completed := &claims.CompletedClaim{
		ClaimCommon: *locked.Common(),
		SweepPsbt:   []byte("psbt"),
	}
	require.NoError(t, h.db.UpdateClaim(
		ctx, completed, locked.Common().Revision,
	))

	_, err := h.engine.CancelClaim(ctx, h.beneficiary, pending.ID)
	require.ErrorIs(t, err, claims.ErrClaimTerminal)
	require.Equal(t, claims.CodeBadRequest, claims.CodeOf(err))
}

// TestLockClaim asserts the happy lock path: delay elapsed, package
// present, challenge satisfied by both factors, keyset snapshotted.
func TestLockClaim(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	pending := h.startClaim()
	eventCount := len(h.dispatcher.allEvents())

	locked := h.lockClaim(pending.ID)

	require.Equal(t, claims.StateLocked, locked.State())
	require.Equal(t, []byte("sealed-dek"), locked.SealedDEK)
	require.Equal(t, []byte("sealed-mobile"), locked.SealedMobileKey)
	require.Equal(t, testKeyset, locked.BenefactorKeyset)

	// Locking emits no notifications.
	require.Len(t, h.dispatcher.allEvents(), eventCount)

	stored, err := h.db.FetchClaim(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, claims.StateLocked, stored.State())
}

// TestLockClaimGates walks every precondition that must hold before a
// claim locks.
func TestLockClaimGates(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	pending := h.startClaim()

	// Before the delay elapses, even a valid request is rejected.
	h.uploadPackage()
	_, err := h.engine.LockClaim(
		ctx, h.beneficiary, pending.ID, h.lockRequest(),
	)
	require.ErrorIs(t, err, claims.ErrDelayNotElapsed)
	require.Equal(t, claims.CodeBadRequest, claims.CodeOf(err))

	h.clock.SetTime(testStartTime.Add(DefaultClaimDelay))

	// The benefactor cannot lock.
	_, err = h.engine.LockClaim(
		ctx, h.benefactor, pending.ID, h.lockRequest(),
	)
	require.ErrorIs(t, err, authz.ErrNotBeneficiary)

	// A mismatched relationship id is rejected.
	badRel := h.lockRequest()
	badRel.RelationshipID = "urn:wallet-recovery-relationship:other"
	_, err = h.engine.LockClaim(ctx, h.beneficiary, pending.ID, badRel)
	require.Equal(t, claims.CodeBadRequest, claims.CodeOf(err))

	// A challenge over different keys is rejected before signature
	// checks.
	badChallenge := h.lockRequest()
	badChallenge.Challenge = "LockInheritanceClaimdeadbeef"
	_, err = h.engine.LockClaim(
		ctx, h.beneficiary, pending.ID, badChallenge,
	)
	require.Equal(t, claims.CodeBadRequest, claims.CodeOf(err))

	// A wrong-key app signature fails closed.
	otherPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	badSig := h.lockRequest()
	badSig.AppSignature = sign(otherPriv, badSig.Challenge)
	_, err = h.engine.LockClaim(ctx, h.beneficiary, pending.ID, badSig)
	require.ErrorIs(t, err, challenge.ErrInvalidSignature)
	require.Equal(t, claims.CodeUnauthorized, claims.CodeOf(err))

	// Same for the hardware factor.
	badHwSig := h.lockRequest()
	badHwSig.HardwareSignature = sign(otherPriv, badHwSig.Challenge)
	_, err = h.engine.LockClaim(ctx, h.beneficiary, pending.ID, badHwSig)
	require.ErrorIs(t, err, challenge.ErrInvalidSignature)

	// The claim is still pending after all the failures above.
	stored, err := h.db.FetchClaim(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, claims.StatePending, stored.State())

	// Now lock it for real, then assert a second lock is rejected as
	// not pending.
	locked, err := h.engine.LockClaim(
		ctx, h.beneficiary, pending.ID, h.lockRequest(),
	)
	require.NoError(t, err)
	require.Equal(t, claims.StateLocked, locked.State())

	_, err = h.engine.LockClaim(
		ctx, h.beneficiary, pending.ID, h.lockRequest(),
	)
	require.ErrorIs(t, err, claims.ErrClaimNotPending)
}

// TestLockClaimMissingPackage asserts that a claim cannot lock before the
// benefactor uploaded an escrow package.
func TestLockClaimMissingPackage(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	pending := h.startClaim()
	h.clock.SetTime(testStartTime.Add(DefaultClaimDelay))

	_, err := h.engine.LockClaim(
		ctx, h.beneficiary, pending.ID, h.lockRequest(),
	)
	require.ErrorIs(t, err, claims.ErrPackageNotFound)
	require.Equal(t, claims.CodeBadRequest, claims.CodeOf(err))
}

// TestUpdateDestination asserts the destination rules across actors,
// states, and address validity.
func TestUpdateDestination(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	pending := h.startClaim()

	p2wpkh, _, p2tr := testAddresses(t)
	dest := claims.Destination{
		Kind:    claims.DestinationExternal,
		Address: p2wpkh,
	}

	// The benefactor cannot set the destination.
	_, err := h.engine.UpdateDestination(
		ctx, h.benefactor, pending.ID, dest,
	)
	require.ErrorIs(t, err, authz.ErrNotBeneficiary)
	require.Equal(t, claims.CodeBadRequest, claims.CodeOf(err))

	// The beneficiary can, while pending.
	updated, err := h.engine.UpdateDestination(
		ctx, h.beneficiary, pending.ID, dest,
	)
	require.NoError(t, err)
	require.Equal(t, fn.Some(dest), updated.Common().Destination)

	stored, err := h.db.FetchClaim(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, fn.Some(dest), stored.Common().Destination)

	// A repeated update overwrites.
	newDest := claims.Destination{
		Kind:    claims.DestinationExternal,
		Address: p2tr,
	}
	_, err = h.engine.UpdateDestination(
		ctx, h.beneficiary, pending.ID, newDest,
	)
	require.NoError(t, err)

	stored, err = h.db.FetchClaim(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, fn.Some(newDest), stored.Common().Destination)

	// An invalid address is rejected.
	_, err = h.engine.UpdateDestination(
		ctx, h.beneficiary, pending.ID, claims.Destination{
			Kind:    claims.DestinationExternal,
			Address: "garbage",
		},
	)
	require.ErrorIs(t, err, claims.ErrInvalidDestination)

	// A canceled claim accepts no destination.
	_, err = h.engine.CancelClaim(ctx, h.beneficiary, pending.ID)
	require.NoError(t, err)

	_, err = h.engine.UpdateDestination(
		ctx, h.beneficiary, pending.ID, dest,
	)
	require.ErrorIs(t, err, claims.ErrClaimTerminal)
	require.Equal(t, claims.CodeBadRequest, claims.CodeOf(err))
}

// TestUpdateDestinationWhileLocked asserts that a locked claim still
// accepts a destination.
func TestUpdateDestinationWhileLocked(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	pending := h.startClaim()
	h.lockClaim(pending.ID)

	p2wpkh, _, _ := testAddresses(t)
	dest := claims.Destination{
		Kind:    claims.DestinationExternal,
		Address: p2wpkh,
	}

	_, err := h.engine.UpdateDestination(
		ctx, h.beneficiary, pending.ID, dest,
	)
	require.NoError(t, err)

	stored, err := h.db.FetchClaim(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, claims.StateLocked, stored.State())
	require.Equal(t, fn.Some(dest), stored.Common().Destination)
}

// TestUploadPackages asserts the benefactor-only, all-or-nothing package
// upload.
func TestUploadPackages(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	upload := PackageUpload{
		RelationshipID:  testRelID,
		SealedDEK:       []byte("dek"),
		SealedMobileKey: []byte("mobile"),
	}

	// The beneficiary cannot upload.
	err := h.engine.UploadPackages(
		ctx, h.beneficiary, []PackageUpload{upload},
	)
	require.Equal(t, claims.CodeBadRequest, claims.CodeOf(err))

	// A batch containing an unknown relationship writes nothing.
	err = h.engine.UploadPackages(ctx, h.benefactor, []PackageUpload{
		upload,
		{RelationshipID: "urn:wallet-recovery-relationship:nope"},
	})
	require.Error(t, err)

	_, err = h.db.FetchPackage(ctx, testRelID)
	require.ErrorIs(t, err, claims.ErrPackageNotFound)

	// A valid upload lands with the engine clock's timestamp.
	require.NoError(t, h.engine.UploadPackages(
		ctx, h.benefactor, []PackageUpload{upload},
	))

	pkg, err := h.db.FetchPackage(ctx, testRelID)
	require.NoError(t, err)
	require.Equal(t, []byte("dek"), pkg.SealedDEK)
	require.Equal(t, []byte("mobile"), pkg.SealedMobileKey)
	require.Equal(t, testStartTime, pkg.UpdatedAt)
}

// TestReadAuthz asserts that only claim parties can read claims.
func TestReadAuthz(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	ctx := context.Background()

	pending := h.startClaim()

	_, err := h.engine.GetClaim(ctx, h.outsider, pending.ID)
	require.ErrorIs(t, err, authz.ErrNotClaimParty)
	require.Equal(t, claims.CodeUnauthorized, claims.CodeOf(err))

	claim, err := h.engine.GetClaim(ctx, h.benefactor, pending.ID)
	require.NoError(t, err)
	require.Equal(t, pending.ID, claim.Common().ID)

	_, err = h.engine.ClaimsForRelationship(ctx, h.outsider, testRelID)
	require.ErrorIs(t, err, authz.ErrNotClaimParty)

	list, err := h.engine.ClaimsForRelationship(
		ctx, h.beneficiary, testRelID,
	)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

// TestDispatchFailureDoesNotFailTransition asserts that a dispatcher error
// never rolls back a persisted transition.
func TestDispatchFailureDoesNotFailTransition(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)
	h.dispatcher.err = errors.New("delivery backend down")

	pending := h.startClaim()

	stored, err := h.db.FetchClaim(context.Background(), pending.ID)
	require.NoError(t, err)
	require.Equal(t, claims.StatePending, stored.State())
}

// testAddresses derives fresh regtest addresses for destination tests.
func testAddresses(t *testing.T) (p2wpkh, p2wsh, p2tr string) {
	t.Helper()

	params := wallet.NetworkRegtest.Params()

	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey()

	wpkh, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pub.SerializeCompressed()), params,
	)
	require.NoError(t, err)

	scriptHash := sha256.Sum256([]byte("destination script"))
	wsh, err := btcutil.NewAddressWitnessScriptHash(scriptHash[:], params)
	require.NoError(t, err)

	trKey := sha256.Sum256(pub.SerializeCompressed())
	tr, err := btcutil.NewAddressTaproot(trKey[:], params)
	require.NoError(t, err)

	return wpkh.EncodeAddress(), wsh.EncodeAddress(), tr.EncodeAddress()
}
