package claims

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// DestinationKind describes whether the fund destination is an address of
// a wallet this backend operates, or an arbitrary external address.
type DestinationKind uint8

const (
	// DestinationInternal is an address belonging to a wallet this
	// backend can spend to, which restricts the address to the script
	// classes those wallets use.
	DestinationInternal DestinationKind = iota

	// DestinationExternal is an arbitrary address outside the system.
	DestinationExternal
)

// String returns a human readable identifier for the destination kind.
func (k DestinationKind) String() string {
	switch k {
	case DestinationInternal:
		return "internal"
	case DestinationExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Destination is where a claim's swept funds are to be paid.
type Destination struct {
	// Kind is the destination kind.
	Kind DestinationKind

	// Address is the encoded destination address.
	Address string
}

// Validate checks the destination address against the claim's network. An
// internal destination must additionally use a script class our wallets
// can spend to (P2WSH or P2TR).
func (d Destination) Validate(params *chaincfg.Params) error {
	addr, err := btcutil.DecodeAddress(d.Address, params)
	if err != nil {
		return Errorf(CodeBadRequest, "%w: %s: %v",
			ErrInvalidDestination, d.Address, err)
	}
	if !addr.IsForNet(params) {
		return Errorf(CodeBadRequest, "%w: %s is not a %s address",
			ErrInvalidDestination, d.Address, params.Name)
	}

	if d.Kind == DestinationInternal {
		switch addr.(type) {
		case *btcutil.AddressWitnessScriptHash:
		case *btcutil.AddressTaproot:
		default:
			return Errorf(CodeBadRequest,
				"%w: %s is not spendable by an internal "+
					"wallet", ErrInvalidDestination,
				d.Address)
		}
	}

	return nil
}
