package authority

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func randomSeeds(rng *rand.Rand) [][]byte {
	n := 1 + rng.Intn(4)
	seeds := make([][]byte, n)
	for i := range seeds {
		s := make([]byte, 1+rng.Intn(MaxSeedLen))
		rng.Read(s)
		seeds[i] = s
	}
	return seeds
}

func TestDeriveDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		seeds := randomSeeds(rng)
		var program ModuleID
		rng.Read(program[:])

		addr1, bump1, err := Derive(seeds, program)
		if err != nil {
			t.Fatalf("derive failed: %v", err)
		}
		addr2, bump2, err := Derive(seeds, program)
		if err != nil {
			t.Fatalf("second derive failed: %v", err)
		}
		if addr1 != addr2 || bump1 != bump2 {
			t.Fatalf("derive not deterministic: (%s, %d) vs (%s, %d)", addr1, bump1, addr2, bump2)
		}

		recomputed, err := DeriveWithBump(seeds, bump1, program)
		if err != nil {
			t.Fatalf("derive with bump failed: %v", err)
		}
		if recomputed != addr1 {
			t.Fatalf("bump recomputation mismatch: %s vs %s", recomputed, addr1)
		}
	}
}

func TestDeriveOffCurve(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		seeds := randomSeeds(rng)
		var program ModuleID
		rng.Read(program[:])

		addr, _, err := Derive(seeds, program)
		if err != nil {
			t.Fatalf("derive failed: %v", err)
		}
		if onCurve(addr) {
			t.Fatalf("derived address %s lies on the curve", addr)
		}
	}
}

func TestDeriveNamespaceSeparation(t *testing.T) {
	seeds := [][]byte{[]byte("delegate")}
	a := NamedAddress("program-a")
	b := NamedAddress("program-b")

	addrA, _, err := Derive(seeds, a)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	addrB, _, err := Derive(seeds, b)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	if addrA == addrB {
		t.Fatal("same address under different namespaces")
	}
}

func TestDeriveSeedLimits(t *testing.T) {
	var program ModuleID

	tooMany := make([][]byte, MaxSeeds+1)
	for i := range tooMany {
		tooMany[i] = []byte("x")
	}
	if _, _, err := Derive(tooMany, program); !errors.Is(err, ErrTooManySeeds) {
		t.Errorf("expected ErrTooManySeeds, got %v", err)
	}

	tooLong := [][]byte{bytes.Repeat([]byte("y"), MaxSeedLen+1)}
	if _, _, err := Derive(tooLong, program); !errors.Is(err, ErrSeedTooLong) {
		t.Errorf("expected ErrSeedTooLong, got %v", err)
	}
}

func TestParseAddressRoundTrip(t *testing.T) {
	addr := NewAddress()
	parsed, err := ParseAddress(addr.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != addr {
		t.Fatalf("round trip mismatch: %s vs %s", parsed, addr)
	}

	if _, err := ParseAddress("zz"); err == nil {
		t.Error("expected error for invalid hex")
	}
	if _, err := ParseAddress("abcd"); err == nil {
		t.Error("expected error for short address")
	}
}
