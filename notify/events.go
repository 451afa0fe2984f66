package notify

import (
	"context"
	"time"

	"github.com/bitcustody/claimd/account"
	"github.com/bitcustody/claimd/claims"
	"github.com/bitcustody/claimd/relationship"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// PayloadType identifies the notification template a recipient receives.
type PayloadType uint8

const (
	// ClaimPeriodInitiated is sent to both parties immediately after a
	// claim is started.
	ClaimPeriodInitiated PayloadType = iota

	// ClaimPeriodCompleted is scheduled at claim creation for delivery
	// when the delay period ends, to both parties.
	ClaimPeriodCompleted

	// ClaimCanceled is sent to both parties when a claim actually
	// transitions to canceled. The idempotent re-cancel emits nothing.
	ClaimCanceled
)

// String returns the wire identifier of the payload type.
func (p PayloadType) String() string {
	switch p {
	case ClaimPeriodInitiated:
		return "inheritance_claim_period_initiated"
	case ClaimPeriodCompleted:
		return "inheritance_claim_period_completed"
	case ClaimCanceled:
		return "inheritance_claim_canceled"
	default:
		return "unknown"
	}
}

// Event describes one intended notification side effect. State transitions
// declare events as data rather than invoking delivery inline, which keeps
// the state machine pure and lets the dispatcher batch, delay, or fan out
// independently.
type Event struct {
	// Recipient is the account the notification is addressed to.
	Recipient account.AccountID

	// Payload selects the notification template.
	Payload PayloadType

	// ClaimID is the claim the notification is about.
	ClaimID claims.ClaimID

	// RelationshipID is the relationship the claim belongs to.
	RelationshipID relationship.RelationshipID

	// DeliverAt, when set, schedules delivery for a future instant
	// instead of immediate delivery.
	DeliverAt fn.Option[time.Time]
}

// Scheduled returns true if the event requests delayed delivery.
func (e Event) Scheduled() bool {
	return e.DeliverAt.IsSome()
}

// Dispatcher is the external delivery capability. It owns retries and
// eventual delivery; the claim core only hands it the declared batch after
// the state transition has been persisted.
type Dispatcher interface {
	// Dispatch accepts a batch of events for immediate or scheduled
	// delivery.
	Dispatch(ctx context.Context, events []Event) error
}
