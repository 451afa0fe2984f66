package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

// TestMultisigDescriptor asserts the 2-of-3 sorted multisig descriptor
// layout.
func TestMultisigDescriptor(t *testing.T) {
	t.Parallel()

	keyset := DescriptorKeyset{
		AppKey:      "[deadbeef/84'/0'/0']xpubApp/*",
		HardwareKey: "[cafebabe/84'/0'/0']xpubHw/*",
		ServerKey:   "[12345678/84'/0'/0']xpubSrv/*",
	}

	require.Equal(
		t, "wsh(sortedmulti(2,[deadbeef/84'/0'/0']xpubApp/*,"+
			"[cafebabe/84'/0'/0']xpubHw/*,"+
			"[12345678/84'/0'/0']xpubSrv/*))",
		keyset.MultisigDescriptor(),
	)
}

// TestNetworkParams asserts the network to chain parameter mapping.
func TestNetworkParams(t *testing.T) {
	t.Parallel()

	require.Equal(t, &chaincfg.MainNetParams, NetworkMainnet.Params())
	require.Equal(t, &chaincfg.TestNet3Params, NetworkTestnet.Params())
	require.Equal(t, &chaincfg.SigNetParams, NetworkSignet.Params())
	require.Equal(
		t, &chaincfg.RegressionNetParams, NetworkRegtest.Params(),
	)

	// The zero value must behave as mainnet.
	var network Network
	require.Equal(t, &chaincfg.MainNetParams, network.Params())
}
