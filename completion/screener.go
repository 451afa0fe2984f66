package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// ErrAddressBlocked is returned when a sweep destination is on the
// compliance block-list.
var ErrAddressBlocked = errors.New("destination address is blocked")

// Screener decides whether funds may be swept to an address. A non-nil
// error blocks the sweep before any broadcast.
type Screener interface {
	// Screen checks a single destination address.
	Screen(ctx context.Context, addr btcutil.Address) error
}

// StaticScreener blocks a fixed set of addresses. It backs deployments
// that sync their sanctions list out of band, and tests.
type StaticScreener struct {
	blocked map[string]struct{}
}

// NewStaticScreener returns a screener blocking exactly the given
// addresses, in their canonical encoded form.
func NewStaticScreener(blocked []string) *StaticScreener {
	set := make(map[string]struct{}, len(blocked))
	for _, addr := range blocked {
		set[addr] = struct{}{}
	}

	return &StaticScreener{blocked: set}
}

// Screen rejects addresses on the block-list.
func (s *StaticScreener) Screen(_ context.Context,
	addr btcutil.Address) error {

	if _, ok := s.blocked[addr.EncodeAddress()]; ok {
		return fmt.Errorf("%w: %v", ErrAddressBlocked, addr)
	}

	return nil
}

// A compile time check to ensure StaticScreener implements Screener.
var _ Screener = (*StaticScreener)(nil)
