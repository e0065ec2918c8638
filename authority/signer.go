package authority

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrCapabilityUsed     = errors.New("authority: capability already used")
	ErrCapabilityMismatch = errors.New("authority: capability does not match its derivation")
)

// Signer proves the right to act as an authority. Key returns the
// authority address; Authorize is called by the ledger before any
// balance moves.
type Signer interface {
	Key() Address
	Authorize() error
}

// Wallet is a signer backed by an external signature. The surrounding
// transaction layer has already verified the signature, so the ledger
// only needs the address.
type Wallet struct {
	key Address
}

// NewWallet wraps a verified wallet address as a signer.
func NewWallet(key Address) Wallet {
	return Wallet{key: key}
}

// Key returns the wallet address.
func (w Wallet) Key() Address { return w.key }

// Authorize always succeeds; the signature was checked upstream.
func (w Wallet) Authorize() error { return nil }

// Capability is a program-synthesized signer for a key-less derived
// authority. It is valid for exactly one Authorize call: the holder
// proves control by re-deriving the address from the same seed material
// used at derivation time, inside the program whose identity namespaced
// the derivation. Build one per operation; never store one.
type Capability struct {
	seeds   [][]byte
	bump    uint8
	program ModuleID
	key     Address
	used    atomic.Bool
}

// NewCapability derives the authority address for seeds under program
// and returns a single-use signer for it.
func NewCapability(seeds [][]byte, program ModuleID) (*Capability, error) {
	key, bump, err := Derive(seeds, program)
	if err != nil {
		return nil, err
	}
	copied := make([][]byte, len(seeds))
	for i, s := range seeds {
		copied[i] = append([]byte(nil), s...)
	}
	return &Capability{
		seeds:   copied,
		bump:    bump,
		program: program,
		key:     key,
	}, nil
}

// Key returns the derived authority address.
func (c *Capability) Key() Address { return c.key }

// Bump returns the bump chosen at derivation time.
func (c *Capability) Bump() uint8 { return c.bump }

// Authorize consumes the capability. It re-derives the address from the
// retained seed material and fails unless the result matches the key.
func (c *Capability) Authorize() error {
	if !c.used.CompareAndSwap(false, true) {
		return ErrCapabilityUsed
	}
	addr, err := DeriveWithBump(c.seeds, c.bump, c.program)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCapabilityMismatch, err)
	}
	if addr != c.key {
		return ErrCapabilityMismatch
	}
	return nil
}
