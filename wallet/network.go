package wallet

import (
	"github.com/btcsuite/btcd/chaincfg"
)

// Network identifies the bitcoin network a claim's funds live on. The zero
// value is mainnet.
type Network uint8

const (
	// NetworkMainnet is the main bitcoin network.
	NetworkMainnet Network = iota

	// NetworkTestnet is the test network (version 3).
	NetworkTestnet

	// NetworkSignet is the signet test network.
	NetworkSignet

	// NetworkRegtest is the local regression test network.
	NetworkRegtest
)

// Params returns the chain parameters for the network. Destination
// addresses are always decoded and validated against these parameters.
func (n Network) Params() *chaincfg.Params {
	switch n {
	case NetworkTestnet:
		return &chaincfg.TestNet3Params
	case NetworkSignet:
		return &chaincfg.SigNetParams
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

// String returns a human readable identifier for the network.
func (n Network) String() string {
	return n.Params().Name
}
