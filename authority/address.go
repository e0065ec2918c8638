// Package authority provides deterministic address derivation for
// key-less program accounts and the signer abstractions used to
// authorize custody operations.
package authority

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// AddressLen is the byte length of every address in the system.
const AddressLen = 32

// Address identifies an account: a wallet, a mint, a holding account,
// or a derived program account.
type Address [AddressLen]byte

// ModuleID names a program namespace for address derivation.
type ModuleID = Address

// Zero is the all-zero address.
var Zero Address

// NewAddress returns a fresh random address, suitable for new mint
// identities and wallet keys.
func NewAddress() Address {
	var a Address
	rand.Read(a[:])
	return a
}

// NamedAddress derives a stable address from a label. Used for module
// identities in tests and in-process deployments.
func NamedAddress(label string) Address {
	return Address(sha256.Sum256([]byte(label)))
}

// ParseAddress decodes a hex-encoded address.
func ParseAddress(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("authority: invalid address %q: %w", s, err)
	}
	if len(b) != AddressLen {
		return Zero, fmt.Errorf("authority: invalid address length %d, want %d", len(b), AddressLen)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// String returns the hex encoding of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool {
	return a == Zero
}
