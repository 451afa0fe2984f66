// Package authz holds the authorization policy for inheritance claim
// actions. Every rule is a pure decision over the authenticated actor and
// the claim (or, for claim creation, the relationship): the policy never
// reads storage and never trusts caller-supplied path identifiers.
package authz

import (
	"errors"

	"github.com/bitcustody/claimd/account"
	"github.com/bitcustody/claimd/claims"
	"github.com/bitcustody/claimd/relationship"
)

var (
	// ErrLiteAccount is returned when a lite account attempts any
	// inheritance action.
	ErrLiteAccount = errors.New("lite accounts cannot perform " +
		"inheritance actions")

	// ErrNotEndorsed is returned when a claim is started against a
	// relationship the benefactor has not endorsed.
	ErrNotEndorsed = errors.New("relationship is not endorsed")

	// ErrNotBeneficiary is returned when an action reserved for the
	// beneficiary is attempted by anyone else.
	ErrNotBeneficiary = errors.New("actor is not the claim beneficiary")

	// ErrNotClaimParty is returned when an actor is neither the
	// benefactor nor the beneficiary of the claim.
	ErrNotClaimParty = errors.New("actor is not a party to the claim")
)

// CanStart decides whether actor may start a claim against the given
// relationship. The actor must be the beneficiary of an endorsed
// relationship and hold a full account.
func CanStart(actor *account.Account, rel *relationship.Relationship) error {
	if !actor.IsFull() {
		return claims.NewError(claims.CodeForbidden, ErrLiteAccount)
	}
	if rel.BeneficiaryID != actor.ID {
		return claims.NewError(
			claims.CodeUnauthorized, ErrNotBeneficiary,
		)
	}
	if !rel.IsEndorsed() {
		return claims.NewError(claims.CodeForbidden, ErrNotEndorsed)
	}

	return nil
}

// CanCancel decides whether actor may cancel the claim. Both the
// benefactor and the beneficiary may cancel; any other authenticated
// identity is unauthorized no matter which account id appears in the
// request path.
func CanCancel(actor *account.Account, claim claims.Claim) error {
	common := claim.Common()
	if actor.ID != common.BenefactorID &&
		actor.ID != common.BeneficiaryID {

		return claims.NewError(
			claims.CodeUnauthorized, ErrNotClaimParty,
		)
	}

	return nil
}

// CanLock decides whether actor may lock the claim. Only the beneficiary
// may lock, and only with a full account.
func CanLock(actor *account.Account, claim claims.Claim) error {
	if !actor.IsFull() {
		return claims.NewError(claims.CodeForbidden, ErrLiteAccount)
	}
	if actor.ID != claim.Common().BeneficiaryID {
		return claims.NewError(
			claims.CodeUnauthorized, ErrNotBeneficiary,
		)
	}

	return nil
}

// CanUpdateDestination decides whether actor may set the claim's fund
// destination. Only the beneficiary may; the benefactor and external
// actors are rejected as a bad request rather than unauthorized, matching
// the narrower destination surface.
func CanUpdateDestination(actor *account.Account, claim claims.Claim) error {
	if actor.ID != claim.Common().BeneficiaryID {
		return claims.NewError(
			claims.CodeBadRequest, ErrNotBeneficiary,
		)
	}

	return nil
}

// CanComplete decides whether actor may complete the claim's sweep. Only
// the beneficiary may, with a full account; the claim state gate lives in
// the completion pipeline since fee-bump re-completion relaxes it.
func CanComplete(actor *account.Account, claim claims.Claim) error {
	if !actor.IsFull() {
		return claims.NewError(claims.CodeForbidden, ErrLiteAccount)
	}
	if actor.ID != claim.Common().BeneficiaryID {
		return claims.NewError(
			claims.CodeUnauthorized, ErrNotBeneficiary,
		)
	}

	return nil
}
