package wallet

import (
	"context"
	"fmt"

	"github.com/bitcustody/claimd/account"
)

// DescriptorKeyset is the extended public key triplet backing a full
// account's 2-of-3 multisig wallet. The claim core never derives addresses
// from it; a locked claim carries a snapshot so the beneficiary can
// reconstruct the benefactor's descriptor even after a later key rotation.
type DescriptorKeyset struct {
	// AppKey is the app factor's extended public key.
	AppKey string

	// HardwareKey is the hardware factor's extended public key.
	HardwareKey string

	// ServerKey is the server factor's extended public key.
	ServerKey string
}

// MultisigDescriptor renders the keyset as the wallet's spending
// descriptor.
func (k DescriptorKeyset) MultisigDescriptor() string {
	return fmt.Sprintf(
		"wsh(sortedmulti(2,%s,%s,%s))",
		k.AppKey, k.HardwareKey, k.ServerKey,
	)
}

// KeysetSource is the external wallet capability that resolves an
// account's currently active descriptor keyset.
type KeysetSource interface {
	// ActiveKeyset returns the account's active descriptor keyset.
	ActiveKeyset(ctx context.Context,
		id account.AccountID) (DescriptorKeyset, error)
}
