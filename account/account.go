package account

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// IDPrefix is the urn prefix carried by every wallet account identifier.
const IDPrefix = "urn:wallet-account:"

// AccountID uniquely identifies a wallet account. The identifier is opaque
// to the claim core; it is only ever compared for equality against the
// authenticated caller identity.
type AccountID string

// String returns the identifier in its urn form.
func (a AccountID) String() string {
	return string(a)
}

// AccountType describes the capability tier of an account.
type AccountType uint8

const (
	// TypeFull is an account with app, hardware and server key shares.
	// Only full accounts may participate in inheritance actions.
	TypeFull AccountType = iota

	// TypeLite is a keyless companion account. Lite accounts are
	// categorically forbidden from all inheritance actions.
	TypeLite
)

// String returns a human readable identifier for the account type.
func (t AccountType) String() string {
	switch t {
	case TypeFull:
		return "full"
	case TypeLite:
		return "lite"
	default:
		return "unknown"
	}
}

// Account is the authenticated identity attached to an inbound request.
type Account struct {
	// ID is the account identifier established by the authentication
	// layer, never a path parameter supplied by the caller.
	ID AccountID

	// Type is the capability tier of the account.
	Type AccountType
}

// IsFull returns true if the account is a full account.
func (a *Account) IsFull() bool {
	return a.Type == TypeFull
}

// AuthKeySet is the authentication key triplet a full account rotates to
// when it starts an inheritance claim. The recovery key is optional since
// not every account has one provisioned.
type AuthKeySet struct {
	// AppKey is the public key held by the mobile app.
	AppKey *btcec.PublicKey

	// HardwareKey is the public key held by the hardware device.
	HardwareKey *btcec.PublicKey

	// RecoveryKey is the optional server-side recovery public key.
	RecoveryKey fn.Option[*btcec.PublicKey]
}
