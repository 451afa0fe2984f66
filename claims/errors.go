package claims

import (
	"errors"
	"fmt"
)

var (
	// ErrClaimNotFound is returned when a claim id does not resolve to a
	// stored claim.
	ErrClaimNotFound = errors.New("inheritance claim not found")

	// ErrClaimExists is returned when creating a claim whose id is
	// already taken.
	ErrClaimExists = errors.New("inheritance claim already exists")

	// ErrActiveClaimExists is returned when a relationship already has a
	// pending or locked claim.
	ErrActiveClaimExists = errors.New("relationship already has an " +
		"active inheritance claim")

	// ErrRevisionMismatch is returned when a conditional write loses the
	// race against a concurrent mutation of the same claim. Callers must
	// re-read and retry.
	ErrRevisionMismatch = errors.New("claim revision mismatch")

	// ErrClaimTerminal is returned when mutating a claim that reached a
	// terminal state.
	ErrClaimTerminal = errors.New("inheritance claim is terminal")

	// ErrClaimNotPending is returned when an operation requires a
	// pending claim.
	ErrClaimNotPending = errors.New("inheritance claim is not pending")

	// ErrClaimNotLocked is returned when an operation requires a locked
	// claim.
	ErrClaimNotLocked = errors.New("inheritance claim is not locked")

	// ErrPackageNotFound is returned when no escrow package has been
	// uploaded for a relationship.
	ErrPackageNotFound = errors.New("no inheritance package uploaded " +
		"for relationship")

	// ErrDelayNotElapsed is returned when a lock is attempted before the
	// claim's delay end time.
	ErrDelayNotElapsed = errors.New("claim delay period has not elapsed")

	// ErrInvalidDestination is returned when a destination address does
	// not parse, targets the wrong network, or is not spendable for its
	// kind.
	ErrInvalidDestination = errors.New("invalid claim destination")
)

// ErrorCode partitions every failure of the claim core into exactly one
// caller-visible reason. Transports map these to their status codes.
type ErrorCode uint8

const (
	// CodeUnauthorized means the authenticated identity is not a party
	// allowed to perform the action.
	CodeUnauthorized ErrorCode = iota + 1

	// CodeForbidden means the identity is right but the account type or
	// action is disallowed.
	CodeForbidden

	// CodeBadRequest means the input is malformed, mistimed, or missing
	// a prerequisite upload.
	CodeBadRequest

	// CodeConflict means a duplicate active claim or a concurrent-write
	// collision.
	CodeConflict

	// CodeComplianceBlocked means the destination is on the compliance
	// block-list.
	CodeComplianceBlocked

	// CodeNotFound means an unknown claim or relationship.
	CodeNotFound

	// CodeInternal means a validation failure of the signed transaction
	// shape or a downstream failure such as a broadcast error.
	CodeInternal
)

// String returns a human readable identifier for the error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeUnauthorized:
		return "unauthorized"
	case CodeForbidden:
		return "forbidden"
	case CodeBadRequest:
		return "bad_request"
	case CodeConflict:
		return "conflict"
	case CodeComplianceBlocked:
		return "compliance_blocked"
	case CodeNotFound:
		return "not_found"
	case CodeInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error couples a failure with its taxonomy code. The wrapped error keeps
// its identity for errors.Is checks.
type Error struct {
	code ErrorCode
	err  error
}

// NewError wraps err with the given code.
func NewError(code ErrorCode, err error) *Error {
	return &Error{code: code, err: err}
}

// Errorf formats a new coded error.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{code: code, err: fmt.Errorf(format, args...)}
}

// Error returns the message of the wrapped error.
func (e *Error) Error() string {
	return e.err.Error()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the taxonomy code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// CodeOf extracts the taxonomy code from err. Errors that never received a
// code report as internal, matching the propagation policy that unexpected
// failures surface as server errors.
func CodeOf(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}

	return CodeInternal
}
