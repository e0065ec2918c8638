package custody_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mintvault-xyz/go-mintvault/authority"
	"github.com/mintvault-xyz/go-mintvault/custody"
	"github.com/mintvault-xyz/go-mintvault/ledger"
)

func newProgram(t *testing.T) (*custody.Program, *ledger.Memory) {
	t.Helper()
	m := ledger.NewMemory()
	p := custody.New(
		authority.NamedAddress("nft-transfer-program"),
		authority.NamedAddress("metadata-registry"),
		m,
	)
	return p, m
}

func balanceOf(t *testing.T, m *ledger.Memory, owner, mint authority.Address) uint64 {
	t.Helper()
	b, err := m.Balance(context.Background(), owner, mint)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	return b.Uint64()
}

func TestIssue(t *testing.T) {
	p, m := newProgram(t)
	wallet := authority.NewAddress()
	ctx := context.Background()

	res, err := p.Issue(ctx, wallet, "Art#1", "ART", "https://x/1.json")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if got := balanceOf(t, m, wallet, res.Mint); got != 1 {
		t.Errorf("expected issuer balance 1, got %d", got)
	}

	err = m.View(ctx, func(tx ledger.Tx) error {
		info, ok := tx.MintInfo(res.Mint)
		if !ok {
			t.Fatal("mint not found")
		}
		if info.Decimals != 0 {
			t.Errorf("expected 0 decimals, got %d", info.Decimals)
		}
		if info.Supply.Uint64() != 1 {
			t.Errorf("expected supply 1, got %s", info.Supply)
		}
		if info.Authority != wallet || info.FreezeAuthority != wallet {
			t.Error("mint authorities not bound to issuer")
		}

		md, ok := tx.Metadata(res.Metadata)
		if !ok {
			t.Fatal("metadata record not found")
		}
		if md.Data.Name != "Art#1" || md.Data.Symbol != "ART" || md.Data.URI != "https://x/1.json" {
			t.Errorf("metadata fields mismatch: %+v", md.Data)
		}
		if md.Data.SellerFeeBasisPoints != 0 {
			t.Errorf("expected zero fee, got %d", md.Data.SellerFeeBasisPoints)
		}
		if md.UpdateAuthority != wallet {
			t.Error("update authority not bound to issuer")
		}

		ed, ok := tx.Edition(res.Edition)
		if !ok {
			t.Fatal("edition record not found")
		}
		if ed.MaxSupply != 1 {
			t.Errorf("expected edition max supply 1, got %d", ed.MaxSupply)
		}
		if ed.Metadata != res.Metadata {
			t.Error("edition not bound to metadata record")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}

	// The reported addresses must match their derivations.
	if err := p.VerifyMetadataAddress(res.Mint, res.Metadata); err != nil {
		t.Errorf("metadata address failed verification: %v", err)
	}
	if err := p.VerifyEditionAddress(res.Mint, res.Edition); err != nil {
		t.Errorf("edition address failed verification: %v", err)
	}
}

func TestIssueMintTwiceFails(t *testing.T) {
	p, _ := newProgram(t)
	wallet := authority.NewAddress()
	mint := authority.NewAddress()
	ctx := context.Background()

	if _, err := p.IssueMint(ctx, wallet, mint, "Art#1", "ART", "https://x/1.json"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	_, err := p.IssueMint(ctx, wallet, mint, "Art#2", "ART", "https://x/2.json")
	if !errors.Is(err, ledger.ErrMintExists) {
		t.Fatalf("expected ErrMintExists, got %v", err)
	}
}

func TestTransferToDelegate(t *testing.T) {
	p, m := newProgram(t)
	wallet := authority.NewAddress()
	ctx := context.Background()

	res, err := p.Issue(ctx, wallet, "Art#1", "ART", "https://x/1.json")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if err := p.TransferToDelegate(ctx, wallet, res.Mint); err != nil {
		t.Fatalf("transfer to delegate failed: %v", err)
	}

	delegate, err := p.DelegateAuthority()
	if err != nil {
		t.Fatalf("delegate derivation failed: %v", err)
	}
	if got := balanceOf(t, m, wallet, res.Mint); got != 0 {
		t.Errorf("expected wallet balance 0, got %d", got)
	}
	if got := balanceOf(t, m, delegate, res.Mint); got != 1 {
		t.Errorf("expected delegate balance 1, got %d", got)
	}
}

func TestTransferFromDelegate(t *testing.T) {
	p, m := newProgram(t)
	wallet := authority.NewAddress()
	payer := authority.NewAddress()
	recipient := authority.NewAddress()
	ctx := context.Background()

	res, err := p.Issue(ctx, wallet, "Art#1", "ART", "https://x/1.json")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if err := p.TransferToDelegate(ctx, wallet, res.Mint); err != nil {
		t.Fatalf("transfer to delegate failed: %v", err)
	}

	if err := p.TransferFromDelegate(ctx, payer, recipient, res.Mint); err != nil {
		t.Fatalf("transfer from delegate failed: %v", err)
	}

	delegate, err := p.DelegateAuthority()
	if err != nil {
		t.Fatalf("delegate derivation failed: %v", err)
	}
	if got := balanceOf(t, m, delegate, res.Mint); got != 0 {
		t.Errorf("expected delegate balance 0, got %d", got)
	}
	if got := balanceOf(t, m, recipient, res.Mint); got != 1 {
		t.Errorf("expected recipient balance 1, got %d", got)
	}
}

func TestTransferFromDelegateWithoutCustody(t *testing.T) {
	p, m := newProgram(t)
	wallet := authority.NewAddress()
	recipient := authority.NewAddress()
	ctx := context.Background()

	// Asset issued but never handed to the delegate.
	res, err := p.Issue(ctx, wallet, "Art#1", "ART", "https://x/1.json")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	err = p.TransferFromDelegate(ctx, wallet, recipient, res.Mint)
	if !errors.Is(err, custody.ErrAuthorityBinding) {
		t.Fatalf("expected ErrAuthorityBinding, got %v", err)
	}
	if got := balanceOf(t, m, wallet, res.Mint); got != 1 {
		t.Errorf("expected wallet balance unchanged at 1, got %d", got)
	}
}

func TestTransferToDelegateWrongOwner(t *testing.T) {
	p, m := newProgram(t)
	wallet := authority.NewAddress()
	intruder := authority.NewAddress()
	ctx := context.Background()

	res, err := p.Issue(ctx, wallet, "Art#1", "ART", "https://x/1.json")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	err = p.TransferToDelegate(ctx, intruder, res.Mint)
	if !errors.Is(err, custody.ErrAuthorityBinding) {
		t.Fatalf("expected ErrAuthorityBinding, got %v", err)
	}
	if got := balanceOf(t, m, wallet, res.Mint); got != 1 {
		t.Errorf("expected wallet balance unchanged at 1, got %d", got)
	}
}

func TestVerifyDerivedAddresses(t *testing.T) {
	p, _ := newProgram(t)
	mint := authority.NewAddress()

	delegate, err := p.DelegateAuthority()
	if err != nil {
		t.Fatalf("delegate derivation failed: %v", err)
	}
	if err := p.VerifyDelegate(delegate); err != nil {
		t.Errorf("genuine delegate failed verification: %v", err)
	}
	if err := p.VerifyDelegate(authority.NewAddress()); !errors.Is(err, custody.ErrAuthorityBinding) {
		t.Error("forged delegate address passed verification")
	}
	if err := p.VerifyMetadataAddress(mint, authority.NewAddress()); !errors.Is(err, custody.ErrAuthorityBinding) {
		t.Error("forged metadata address passed verification")
	}
	if err := p.VerifyEditionAddress(mint, authority.NewAddress()); !errors.Is(err, custody.ErrAuthorityBinding) {
		t.Error("forged edition address passed verification")
	}
}

// editionFailer injects a registry failure after the mint step, to
// observe rollback behavior.
type editionFailer struct {
	*ledger.Memory
	err error
}

type editionFailTx struct {
	ledger.Tx
	err error
}

func (f *editionFailer) Atomically(ctx context.Context, fn func(ledger.Tx) error) error {
	return f.Memory.Atomically(ctx, func(tx ledger.Tx) error {
		return fn(&editionFailTx{Tx: tx, err: f.err})
	})
}

func (t *editionFailTx) RegisterEdition(target, mint authority.Address, auth authority.Signer, payer, metadata authority.Address, maxSupply uint64) error {
	return t.err
}

func TestIssueRollsBackOnRegistryFailure(t *testing.T) {
	m := ledger.NewMemory()
	injected := errors.New("registry rejected")
	p := custody.New(
		authority.NamedAddress("nft-transfer-program"),
		authority.NamedAddress("metadata-registry"),
		&editionFailer{Memory: m, err: injected},
	)

	wallet := authority.NewAddress()
	mint := authority.NewAddress()
	ctx := context.Background()

	_, err := p.IssueMint(ctx, wallet, mint, "Art#1", "ART", "https://x/1.json")
	if !errors.Is(err, injected) {
		t.Fatalf("expected injected error, got %v", err)
	}

	// No minted-but-unregistered asset is observable.
	if got := balanceOf(t, m, wallet, mint); got != 0 {
		t.Errorf("expected balance 0 after rollback, got %d", got)
	}
	err = m.View(ctx, func(tx ledger.Tx) error {
		if _, ok := tx.MintInfo(mint); ok {
			t.Error("mint committed despite registry failure")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
}
