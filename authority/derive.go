package authority

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
)

// Seed limits for derived addresses.
const (
	MaxSeeds   = 16
	MaxSeedLen = 32
)

// derivedMarker domain-separates derived addresses from every other
// SHA-256 use in the system.
const derivedMarker = "mintvault:derived-address"

var (
	// ErrNoBump means no bump in [0, 255] produced an off-curve address.
	// This is a fatal configuration error, not expected in practice.
	ErrNoBump = errors.New("authority: no valid bump for seed set")

	// ErrInvalidBump means the supplied bump yields an on-curve address.
	ErrInvalidBump = errors.New("authority: bump yields on-curve address")

	ErrTooManySeeds = errors.New("authority: too many seeds")
	ErrSeedTooLong  = errors.New("authority: seed exceeds maximum length")
)

// Derive computes the derived address for seeds under the program
// namespace. The bump is searched from 255 downward until the candidate
// does not lie on the ed25519 curve, so the result provably has no
// associated private key. Same seeds and namespace always yield the
// same (address, bump).
func Derive(seeds [][]byte, program ModuleID) (Address, uint8, error) {
	if err := checkSeeds(seeds); err != nil {
		return Zero, 0, err
	}
	for bump := 255; bump >= 0; bump-- {
		addr := deriveRaw(seeds, uint8(bump), program)
		if !onCurve(addr) {
			return addr, uint8(bump), nil
		}
	}
	return Zero, 0, ErrNoBump
}

// DeriveWithBump recomputes the address for a known bump. Validators
// use it to check stored seed material without repeating the search.
func DeriveWithBump(seeds [][]byte, bump uint8, program ModuleID) (Address, error) {
	if err := checkSeeds(seeds); err != nil {
		return Zero, err
	}
	addr := deriveRaw(seeds, bump, program)
	if onCurve(addr) {
		return Zero, ErrInvalidBump
	}
	return addr, nil
}

func checkSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return ErrTooManySeeds
	}
	for _, s := range seeds {
		if len(s) > MaxSeedLen {
			return ErrSeedTooLong
		}
	}
	return nil
}

func deriveRaw(seeds [][]byte, bump uint8, program ModuleID) Address {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(program[:])
	h.Write([]byte(derivedMarker))
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// onCurve reports whether the address decodes as an ed25519 curve
// point. On-curve addresses could have a private key and are rejected.
func onCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}
