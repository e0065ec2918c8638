package custody

import (
	"errors"
	"fmt"

	"github.com/mintvault-xyz/go-mintvault/authority"
	"github.com/mintvault-xyz/go-mintvault/ledger"
)

// VerifyDelegate checks an externally supplied delegate address against
// the program's own derivation.
func (p *Program) VerifyDelegate(addr authority.Address) error {
	return verifyDerived(addr, p.delegateSeeds(), p.id)
}

// VerifyMetadataAddress checks an externally supplied metadata address
// for mint against the registry derivation.
func (p *Program) VerifyMetadataAddress(mint, addr authority.Address) error {
	return verifyDerived(addr, p.metadataSeeds(mint), p.registryID)
}

// VerifyEditionAddress checks an externally supplied edition address
// for mint against the registry derivation.
func (p *Program) VerifyEditionAddress(mint, addr authority.Address) error {
	return verifyDerived(addr, p.editionSeeds(mint), p.registryID)
}

// verifyDerived recomputes the derived address for seeds under the
// namespace and rejects got unless it matches bit for bit.
func verifyDerived(got authority.Address, seeds [][]byte, namespace authority.ModuleID) error {
	want, _, err := authority.Derive(seeds, namespace)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorityBinding, err)
	}
	if got != want {
		return fmt.Errorf("%w: account %s, derived %s", ErrAuthorityBinding, got, want)
	}
	return nil
}

// verifyHolding checks an existing holding account against the expected
// (mint, owner) binding for one leg of a transfer.
func verifyHolding(tx ledger.Tx, addr, mint, owner authority.Address) error {
	acct, ok := tx.HoldingAccount(addr)
	if !ok {
		return fmt.Errorf("%w: holding account %s does not exist", ErrAuthorityBinding, addr)
	}
	if acct.Mint != mint {
		return fmt.Errorf("%w: holding account %s bound to mint %s, want %s",
			ErrAuthorityBinding, addr, acct.Mint, mint)
	}
	if acct.Owner != owner {
		return fmt.Errorf("%w: holding account %s owned by %s, want %s",
			ErrAuthorityBinding, addr, acct.Owner, owner)
	}
	return nil
}

// ensureHolding resolves the canonical holding account for (owner,
// mint), creating it when absent. An account that already exists with
// different bindings is a hard failure, never corrected.
func ensureHolding(tx ledger.Tx, owner, mint, payer authority.Address) (authority.Address, error) {
	addr, err := tx.CreateHoldingAccount(owner, mint, payer)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountMismatch) {
			return authority.Zero, fmt.Errorf("%w: %v", ErrAuthorityBinding, err)
		}
		return authority.Zero, err
	}
	return addr, nil
}
