package custody

import (
	"context"

	"github.com/mintvault-xyz/go-mintvault/authority"
	"github.com/mintvault-xyz/go-mintvault/ledger"
)

// IssueResult reports the accounts bound to a newly issued asset.
type IssueResult struct {
	Mint     authority.Address
	Holding  authority.Address
	Metadata authority.Address
	Edition  authority.Address
}

// Issue creates a fresh asset: exactly one unit minted into the
// signer's holding account, metadata and edition records registered at
// their derived registry addresses. The signer is mint authority,
// freeze authority, update authority and payer. The whole sequence
// commits atomically; a failure at any step leaves the ledger as it
// was.
func (p *Program) Issue(ctx context.Context, signer authority.Address, name, symbol, uri string) (IssueResult, error) {
	return p.IssueMint(ctx, signer, authority.NewAddress(), name, symbol, uri)
}

// IssueMint issues under a caller-chosen mint identity. Re-using an
// existing identity fails; the ledger never overwrites a mint.
func (p *Program) IssueMint(ctx context.Context, signer, mint authority.Address, name, symbol, uri string) (IssueResult, error) {
	metadataAddr, err := p.MetadataAddress(mint)
	if err != nil {
		return IssueResult{}, err
	}
	editionAddr, err := p.EditionAddress(mint)
	if err != nil {
		return IssueResult{}, err
	}

	var res IssueResult
	err = p.ledger.Atomically(ctx, func(tx ledger.Tx) error {
		if err := tx.CreateMint(mint, signer, signer); err != nil {
			return err
		}
		holding, err := ensureHolding(tx, signer, mint, signer)
		if err != nil {
			return err
		}
		wallet := authority.NewWallet(signer)
		if err := tx.Mint(mint, holding, wallet, 1); err != nil {
			return err
		}

		if err := verifyDerived(metadataAddr, p.metadataSeeds(mint), p.registryID); err != nil {
			return err
		}
		data := ledger.MetadataData{Name: name, Symbol: symbol, URI: uri}
		if err := tx.RegisterMetadata(metadataAddr, mint, wallet, signer, data, false); err != nil {
			return err
		}

		if err := verifyDerived(editionAddr, p.editionSeeds(mint), p.registryID); err != nil {
			return err
		}
		if err := tx.RegisterEdition(editionAddr, mint, wallet, signer, metadataAddr, 1); err != nil {
			return err
		}

		res = IssueResult{
			Mint:     mint,
			Holding:  holding,
			Metadata: metadataAddr,
			Edition:  editionAddr,
		}
		return nil
	})
	if err != nil {
		p.log.Error().Err(err).
			Stringer("mint", mint).
			Stringer("signer", signer).
			Msg("issue failed")
		return IssueResult{}, err
	}

	p.log.Info().
		Stringer("mint", res.Mint).
		Stringer("holding", res.Holding).
		Str("name", name).
		Str("symbol", symbol).
		Msg("asset issued")
	return res, nil
}
