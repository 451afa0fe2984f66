// Package lifecycle implements the inheritance claim state machine. Every
// operation is a single read-decide-write span: the claim is fetched with
// its revision marker, the next state is computed in memory, and the write
// is conditioned on the revision still matching. Concurrent mutators of
// the same claim race on that check; exactly one wins and the rest observe
// a conflict they must retry from a fresh read.
package lifecycle

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/bitcustody/claimd/account"
	"github.com/bitcustody/claimd/authz"
	"github.com/bitcustody/claimd/challenge"
	"github.com/bitcustody/claimd/claims"
	"github.com/bitcustody/claimd/notify"
	"github.com/bitcustody/claimd/relationship"
	"github.com/bitcustody/claimd/wallet"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// DefaultClaimDelay is the mandatory waiting period between claim creation
// and eligibility to lock.
const DefaultClaimDelay = 7 * 24 * time.Hour

// Config holds the capabilities and policy knobs of the claim engine.
type Config struct {
	// Store is the durable claim store.
	Store claims.ClaimStore

	// Packages is the durable escrow package store.
	Packages claims.PackageStore

	// Relationships resolves recovery relationships.
	Relationships relationship.Registry

	// Keysets resolves the benefactor's active descriptor keyset at
	// lock time.
	Keysets wallet.KeysetSource

	// Verifier checks lock challenge signatures.
	Verifier challenge.Verifier

	// Dispatcher receives the notification events declared by state
	// transitions. It owns retries and eventual delivery.
	Dispatcher notify.Dispatcher

	// Clock is the time source for the delay gate and all timestamps.
	Clock clock.Clock

	// Network is the bitcoin network claims operate on.
	Network wallet.Network

	// ClaimDelay is the waiting period applied at claim creation. Zero
	// means DefaultClaimDelay.
	ClaimDelay time.Duration
}

// Engine drives inheritance claims through their lifecycle.
type Engine struct {
	cfg Config
}

// NewEngine validates the config and returns a new claim engine.
func NewEngine(cfg Config) (*Engine, error) {
	switch {
	case cfg.Store == nil:
		return nil, fmt.Errorf("claim engine requires a claim store")
	case cfg.Packages == nil:
		return nil, fmt.Errorf("claim engine requires a package " +
			"store")
	case cfg.Relationships == nil:
		return nil, fmt.Errorf("claim engine requires a " +
			"relationship registry")
	case cfg.Keysets == nil:
		return nil, fmt.Errorf("claim engine requires a keyset " +
			"source")
	case cfg.Verifier == nil:
		return nil, fmt.Errorf("claim engine requires a challenge " +
			"verifier")
	case cfg.Dispatcher == nil:
		return nil, fmt.Errorf("claim engine requires a dispatcher")
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.ClaimDelay == 0 {
		cfg.ClaimDelay = DefaultClaimDelay
	}

	return &Engine{cfg: cfg}, nil
}

// StartClaim creates a new pending claim for the relationship. The actor
// must be the beneficiary of an endorsed relationship with no currently
// active claim. The delay end time is fixed here and never shortened by
// any later action.
func (e *Engine) StartClaim(ctx context.Context, actor *account.Account,
	relID relationship.RelationshipID,
	authKeys account.AuthKeySet) (*claims.PendingClaim, error) {

	rel, err := e.fetchRelationship(ctx, relID)
	if err != nil {
		return nil, err
	}

	if err := authz.CanStart(actor, rel); err != nil {
		return nil, err
	}

	id, err := claims.NewClaimID()
	if err != nil {
		return nil, claims.NewError(claims.CodeInternal, err)
	}

	now := e.cfg.Clock.Now().UTC()
	pending := &claims.PendingClaim{
		ClaimCommon: claims.ClaimCommon{
			ID:             id,
			RelationshipID: relID,
			BenefactorID:   rel.BenefactorID,
			BeneficiaryID:  rel.BeneficiaryID,
			Network:        e.cfg.Network,
			AuthKeys:       authKeys,
			CreatedAt:      now,
			Destination:    fn.None[claims.Destination](),
		},
		DelayEndTime: now.Add(e.cfg.ClaimDelay),
	}

	// The store checks the one-active-claim invariant inside the same
	// transaction as the write, so a racing second start cannot slip
	// through between our check and our write.
	if err := e.cfg.Store.CreateClaim(ctx, pending); err != nil {
		return nil, err
	}

	log.Infof("Started claim %v for relationship %v, delay ends %v",
		id, relID, pending.DelayEndTime)

	e.dispatch(ctx, startEvents(pending))

	return pending, nil
}

// CancelClaim voids a non-terminal claim. Both the benefactor and the
// beneficiary may cancel. Canceling an already canceled claim is an
// idempotent success that neither mutates the record nor emits events.
func (e *Engine) CancelClaim(ctx context.Context, actor *account.Account,
	id claims.ClaimID) (claims.Claim, error) {

	claim, err := e.cfg.Store.FetchClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanCancel(actor, claim); err != nil {
		return nil, err
	}

	switch claim.State() {
	case claims.StateCanceled:
		return claim, nil

	case claims.StateCompleted:
		return nil, claims.NewError(
			claims.CodeBadRequest, claims.ErrClaimTerminal,
		)
	}

	canceled := &claims.CanceledClaim{
		ClaimCommon: *claim.Common(),
		CanceledAt:  e.cfg.Clock.Now().UTC(),
	}

	revision := claim.Common().Revision
	err = e.cfg.Store.UpdateClaim(ctx, canceled, revision)
	if err != nil {
		return nil, err
	}

	log.Infof("Canceled claim %v (was %v) by account %v", id,
		claim.State(), actor.ID)

	e.dispatch(ctx, cancelEvents(canceled))

	return canceled, nil
}

// LockRequest carries the multi-factor challenge proof for locking a
// claim.
type LockRequest struct {
	// RelationshipID must match the claim's relationship.
	RelationshipID relationship.RelationshipID

	// Challenge is the challenge string the claimant signed. It must
	// equal the canonical challenge for the claim's auth keys.
	Challenge string

	// AppSignature is the app factor's signature over Challenge.
	AppSignature []byte

	// HardwareSignature is the hardware factor's signature over
	// Challenge.
	HardwareSignature []byte
}

// LockClaim transitions a pending claim to locked once the delay period
// has elapsed, the benefactor's escrow package exists, and both claimant
// factors prove possession of their auth keys. The locked claim carries
// the sealed package contents and a snapshot of the benefactor's current
// descriptor keyset, so a later benefactor key rotation cannot alter the
// in-flight claim.
func (e *Engine) LockClaim(ctx context.Context, actor *account.Account,
	id claims.ClaimID, req *LockRequest) (*claims.LockedClaim, error) {

	claim, err := e.cfg.Store.FetchClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanLock(actor, claim); err != nil {
		return nil, err
	}

	pending, ok := claim.(*claims.PendingClaim)
	if !ok {
		return nil, claims.Errorf(claims.CodeBadRequest,
			"%w: cannot lock %v claim", claims.ErrClaimNotPending,
			claim.State())
	}

	common := pending.Common()
	if req.RelationshipID != common.RelationshipID {
		return nil, claims.Errorf(claims.CodeBadRequest,
			"relationship %v does not match claim %v",
			req.RelationshipID, id)
	}

	now := e.cfg.Clock.Now().UTC()
	if now.Before(pending.DelayEndTime) {
		return nil, claims.Errorf(claims.CodeBadRequest,
			"%w: delay ends %v", claims.ErrDelayNotElapsed,
			pending.DelayEndTime)
	}

	pkg, err := e.cfg.Packages.FetchPackage(ctx, common.RelationshipID)
	if err != nil {
		if claims.CodeOf(err) == claims.CodeNotFound {
			return nil, claims.NewError(
				claims.CodeBadRequest,
				claims.ErrPackageNotFound,
			)
		}
		return nil, err
	}

	// The claimant signs the canonical challenge for the keys recorded
	// at claim creation. Rebuilding it here means a signature over any
	// other string can never lock a claim.
	expected := challenge.Build(common.AuthKeys)
	if req.Challenge != expected {
		return nil, claims.Errorf(claims.CodeBadRequest,
			"challenge does not match the claim's auth keys")
	}

	msg := []byte(expected)
	err = e.cfg.Verifier.Verify(
		msg, req.AppSignature, common.AuthKeys.AppKey,
	)
	if err != nil {
		return nil, claims.Errorf(claims.CodeUnauthorized,
			"app factor: %w", err)
	}
	err = e.cfg.Verifier.Verify(
		msg, req.HardwareSignature, common.AuthKeys.HardwareKey,
	)
	if err != nil {
		return nil, claims.Errorf(claims.CodeUnauthorized,
			"hardware factor: %w", err)
	}

	keyset, err := e.cfg.Keysets.ActiveKeyset(ctx, common.BenefactorID)
	if err != nil {
		return nil, claims.Errorf(claims.CodeInternal,
			"unable to snapshot benefactor keyset: %w", err)
	}

	locked := &claims.LockedClaim{
		ClaimCommon:      *common,
		SealedDEK:        bytes.Clone(pkg.SealedDEK),
		SealedMobileKey:  bytes.Clone(pkg.SealedMobileKey),
		BenefactorKeyset: keyset,
	}

	err = e.cfg.Store.UpdateClaim(ctx, locked, common.Revision)
	if err != nil {
		return nil, err
	}

	log.Infof("Locked claim %v for relationship %v", id,
		common.RelationshipID)

	return locked, nil
}

// UpdateDestination sets the claim's fund destination. Only the
// beneficiary may call it, only while the claim is pending or locked, and
// a repeated call overwrites the previous destination.
func (e *Engine) UpdateDestination(ctx context.Context,
	actor *account.Account, id claims.ClaimID,
	dest claims.Destination) (claims.Claim, error) {

	claim, err := e.cfg.Store.FetchClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanUpdateDestination(actor, claim); err != nil {
		return nil, err
	}

	if !claim.State().Active() {
		return nil, claims.Errorf(claims.CodeBadRequest,
			"%w: cannot set destination on %v claim",
			claims.ErrClaimTerminal, claim.State())
	}

	if err := dest.Validate(e.cfg.Network.Params()); err != nil {
		return nil, err
	}

	common := claim.Common()
	revision := common.Revision
	common.Destination = fn.Some(dest)

	if err := e.cfg.Store.UpdateClaim(ctx, claim, revision); err != nil {
		return nil, err
	}

	log.Debugf("Set %v destination on claim %v", dest.Kind, id)

	return claim, nil
}

// PackageUpload is one sealed escrow package in an upload batch.
type PackageUpload struct {
	// RelationshipID is the relationship the package is sealed for.
	RelationshipID relationship.RelationshipID

	// SealedDEK is the sealed data encryption key.
	SealedDEK []byte

	// SealedMobileKey is the sealed mobile key material.
	SealedMobileKey []byte
}

// UploadPackages stores sealed escrow packages ahead of any claim. Every
// relationship in the batch must resolve to an endorsed relationship whose
// benefactor is the caller; otherwise nothing is written.
func (e *Engine) UploadPackages(ctx context.Context, actor *account.Account,
	uploads []PackageUpload) error {

	now := e.cfg.Clock.Now().UTC()

	packages := make([]*claims.Package, 0, len(uploads))
	for _, upload := range uploads {
		rel, err := e.cfg.Relationships.FetchRelationship(
			ctx, upload.RelationshipID,
		)
		if err != nil {
			return claims.Errorf(claims.CodeBadRequest,
				"relationship %v: %w", upload.RelationshipID,
				err)
		}

		if !rel.IsEndorsed() || rel.BenefactorID != actor.ID {
			return claims.Errorf(claims.CodeBadRequest,
				"relationship %v is not an endorsed "+
					"relationship of the caller",
				upload.RelationshipID)
		}

		packages = append(packages, &claims.Package{
			RelationshipID:  upload.RelationshipID,
			SealedDEK:       upload.SealedDEK,
			SealedMobileKey: upload.SealedMobileKey,
			UpdatedAt:       now,
		})
	}

	if err := e.cfg.Packages.UpsertPackages(ctx, packages); err != nil {
		return err
	}

	log.Infof("Stored %d escrow package(s) for benefactor %v",
		len(packages), actor.ID)

	return nil
}

// GetClaim returns the claim with the given id if the actor is one of its
// parties.
func (e *Engine) GetClaim(ctx context.Context, actor *account.Account,
	id claims.ClaimID) (claims.Claim, error) {

	claim, err := e.cfg.Store.FetchClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	common := claim.Common()
	if actor.ID != common.BenefactorID &&
		actor.ID != common.BeneficiaryID {

		return nil, claims.NewError(
			claims.CodeUnauthorized, authz.ErrNotClaimParty,
		)
	}

	return claim, nil
}

// ClaimsForRelationship returns the relationship's claim history, any
// state, in creation order, if the actor is a party to the relationship.
func (e *Engine) ClaimsForRelationship(ctx context.Context,
	actor *account.Account,
	relID relationship.RelationshipID) ([]claims.Claim, error) {

	rel, err := e.fetchRelationship(ctx, relID)
	if err != nil {
		return nil, err
	}

	if actor.ID != rel.BenefactorID && actor.ID != rel.BeneficiaryID {
		return nil, claims.NewError(
			claims.CodeUnauthorized, authz.ErrNotClaimParty,
		)
	}

	return e.cfg.Store.ClaimsForRelationship(ctx, relID)
}

// fetchRelationship resolves a relationship id, mapping a registry miss to
// the not-found taxonomy entry.
func (e *Engine) fetchRelationship(ctx context.Context,
	id relationship.RelationshipID) (*relationship.Relationship, error) {

	rel, err := e.cfg.Relationships.FetchRelationship(ctx, id)
	if err != nil {
		return nil, claims.NewError(claims.CodeNotFound, err)
	}

	return rel, nil
}

// dispatch hands declared notification events to the dispatcher. Delivery
// failures are logged, not surfaced: the transition has already been
// persisted and the dispatcher owns retries.
func (e *Engine) dispatch(ctx context.Context, events []notify.Event) {
	if len(events) == 0 {
		return
	}

	if err := e.cfg.Dispatcher.Dispatch(ctx, events); err != nil {
		log.Errorf("Unable to dispatch %d notification event(s): %v",
			len(events), err)
	}
}
