package lifecycle

import (
	"github.com/bitcustody/claimd/account"
	"github.com/bitcustody/claimd/claims"
	"github.com/bitcustody/claimd/notify"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// startEvents declares the notifications a successful claim start emits:
// an immediate period-initiated notice to both parties, plus a
// period-completed notice to both parties scheduled for the delay end.
func startEvents(claim *claims.PendingClaim) []notify.Event {
	common := claim.Common()

	events := make([]notify.Event, 0, 4)
	for _, recipient := range claimParties(common) {
		events = append(events, notify.Event{
			Recipient:      recipient,
			Payload:        notify.ClaimPeriodInitiated,
			ClaimID:        common.ID,
			RelationshipID: common.RelationshipID,
		})
	}
	for _, recipient := range claimParties(common) {
		events = append(events, notify.Event{
			Recipient:      recipient,
			Payload:        notify.ClaimPeriodCompleted,
			ClaimID:        common.ID,
			RelationshipID: common.RelationshipID,
			DeliverAt:      fn.Some(claim.DelayEndTime),
		})
	}

	return events
}

// cancelEvents declares the notifications a real cancel transition emits.
// An idempotent re-cancel emits nothing.
func cancelEvents(claim *claims.CanceledClaim) []notify.Event {
	common := claim.Common()

	events := make([]notify.Event, 0, 2)
	for _, recipient := range claimParties(common) {
		events = append(events, notify.Event{
			Recipient:      recipient,
			Payload:        notify.ClaimCanceled,
			ClaimID:        common.ID,
			RelationshipID: common.RelationshipID,
		})
	}

	return events
}

func claimParties(common *claims.ClaimCommon) [2]account.AccountID {
	return [2]account.AccountID{
		common.BenefactorID, common.BeneficiaryID,
	}
}
