package challenge

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bitcustody/claimd/account"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var (
	// ErrInvalidSignature is returned when a challenge signature does
	// not verify against the expected key.
	ErrInvalidSignature = errors.New("challenge signature does not " +
		"verify")
)

// prefix is the fixed leading component of every lock challenge.
const prefix = "LockInheritanceClaim"

// Build returns the canonical challenge string for a claim's auth key set:
// the fixed prefix followed by the hex encoded hardware, app, and (if
// present) recovery public keys. Both the app and the hardware factor must
// sign exactly this string for a claim to lock.
func Build(keys account.AuthKeySet) string {
	recoveryKey := ""
	keys.RecoveryKey.WhenSome(func(key *btcec.PublicKey) {
		recoveryKey = hex.EncodeToString(key.SerializeCompressed())
	})

	return prefix +
		hex.EncodeToString(keys.HardwareKey.SerializeCompressed()) +
		hex.EncodeToString(keys.AppKey.SerializeCompressed()) +
		recoveryKey
}

// Verifier checks a signature produced by a claimant factor over the
// canonical challenge. Implementations are injected so tests can verify
// deterministically without real key material.
type Verifier interface {
	// Verify returns nil if sig is a valid signature over msg by key,
	// and ErrInvalidSignature otherwise.
	Verify(msg []byte, sig []byte, key *btcec.PublicKey) error
}

// SecpVerifier verifies DER encoded ECDSA signatures over the SHA-256
// digest of the challenge.
type SecpVerifier struct{}

// Compile time check that SecpVerifier implements Verifier.
var _ Verifier = (*SecpVerifier)(nil)

// Verify implements Verifier.
func (*SecpVerifier) Verify(msg []byte, sig []byte,
	key *btcec.PublicKey) error {

	parsedSig, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	digest := sha256.Sum256(msg)
	if !parsedSig.Verify(digest[:], key) {
		return ErrInvalidSignature
	}

	return nil
}
