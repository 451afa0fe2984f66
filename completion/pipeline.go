// Package completion implements the fund movement step of a locked
// inheritance claim. It validates the beneficiary's partially signed
// sweep, screens the destination against the compliance block-list, and
// only then hands the transaction to the broadcaster. The claim record
// becomes completed strictly after a broadcast succeeds, so a claim is
// never marked completed with no transaction in flight.
package completion

import (
	"bytes"
	"context"
	"strings"

	"github.com/bitcustody/claimd/account"
	"github.com/bitcustody/claimd/authz"
	"github.com/bitcustody/claimd/claims"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
)

// Broadcaster publishes a validated sweep to the bitcoin network. The
// implementation owns server-side co-signing and finalization.
type Broadcaster interface {
	// Broadcast finalizes and publishes the sweep packet.
	Broadcast(ctx context.Context, packet *psbt.Packet) error
}

// Config holds the capabilities of the completion pipeline.
type Config struct {
	// Store is the durable claim store.
	Store claims.ClaimStore

	// Screener is the compliance screen applied to the sweep destination
	// before any broadcast.
	Screener Screener

	// Broadcaster publishes validated sweeps.
	Broadcaster Broadcaster
}

// Pipeline validates and broadcasts claim sweeps.
type Pipeline struct {
	cfg Config
}

// NewPipeline returns a new completion pipeline.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Complete validates the beneficiary's base64 sweep psbt for the claim,
// screens its destination, broadcasts it, and records the claim as
// completed. Calling it again on an already completed claim is the
// fee-bump path: the replacement transaction runs the same validation and
// screening, is broadcast, and replaces the stored sweep.
func (p *Pipeline) Complete(ctx context.Context, actor *account.Account,
	id claims.ClaimID, psbtB64 string) (*claims.CompletedClaim, error) {

	claim, err := p.cfg.Store.FetchClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanComplete(actor, claim); err != nil {
		return nil, err
	}

	// Only a locked claim may complete for the first time. A completed
	// claim may run again to fee bump its unconfirmed sweep; every other
	// state is rejected.
	switch claim.State() {
	case claims.StateLocked, claims.StateCompleted:

	default:
		return nil, claims.Errorf(claims.CodeBadRequest,
			"%w: cannot complete %v claim",
			claims.ErrClaimNotLocked, claim.State())
	}

	packet, err := psbt.NewFromRawBytes(
		strings.NewReader(psbtB64), true,
	)
	if err != nil {
		return nil, claims.Errorf(claims.CodeBadRequest,
			"unable to parse sweep psbt: %v", err)
	}

	if err := p.checkSignatureShape(packet); err != nil {
		return nil, err
	}

	if err := p.screenDestination(ctx, claim, packet); err != nil {
		return nil, err
	}

	if err := p.cfg.Broadcaster.Broadcast(ctx, packet); err != nil {
		return nil, claims.Errorf(claims.CodeInternal,
			"unable to broadcast sweep: %v", err)
	}

	var rawPsbt bytes.Buffer
	if err := packet.Serialize(&rawPsbt); err != nil {
		return nil, claims.Errorf(claims.CodeInternal,
			"unable to serialize sweep psbt: %v", err)
	}

	common := claim.Common()
	completed := &claims.CompletedClaim{
		ClaimCommon: *common,
		SweepTxID:   packet.UnsignedTx.TxHash(),
		SweepPsbt:   rawPsbt.Bytes(),
	}

	err = p.cfg.Store.UpdateClaim(ctx, completed, common.Revision)
	if err != nil {
		return nil, err
	}

	log.Infof("Completed claim %v with sweep %v", id, completed.SweepTxID)

	return completed, nil
}

// checkSignatureShape enforces that every input carries exactly one
// partial signature, the beneficiary's. The co-signing step appends the
// second signature, so an extra signature here means the packet was
// tampered with or already co-signed out of band.
func (p *Pipeline) checkSignatureShape(packet *psbt.Packet) error {
	for i, in := range packet.Inputs {
		if len(in.PartialSigs) != 1 {
			return claims.Errorf(claims.CodeInternal,
				"input %d does not only have one signature",
				i)
		}
	}

	return nil
}

// screenDestination extracts the sweep's single destination address and
// runs it through the compliance screener. A sweep that pays anywhere
// other than exactly one output is rejected outright.
func (p *Pipeline) screenDestination(ctx context.Context, claim claims.Claim,
	packet *psbt.Packet) error {

	tx := packet.UnsignedTx
	if len(tx.TxOut) != 1 {
		return claims.Errorf(claims.CodeBadRequest,
			"sweep must pay a single output, got %d",
			len(tx.TxOut))
	}

	params := claim.Common().Network.Params()
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(
		tx.TxOut[0].PkScript, params,
	)
	if err != nil || len(addrs) == 0 {
		return claims.Errorf(claims.CodeBadRequest,
			"unable to decode sweep destination: %v", err)
	}

	for _, addr := range addrs {
		if err := p.cfg.Screener.Screen(ctx, addr); err != nil {
			log.Warnf("Blocked sweep for claim %v to %v: %v",
				claim.Common().ID, addr, err)

			return claims.NewError(
				claims.CodeComplianceBlocked, err,
			)
		}
	}

	return nil
}
