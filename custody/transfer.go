package custody

import (
	"context"

	"github.com/mintvault-xyz/go-mintvault/authority"
	"github.com/mintvault-xyz/go-mintvault/ledger"
)

// TransferToDelegate moves the asset's single unit from the signer's
// holding account into the delegate authority's holding account,
// creating the latter on demand at the signer's expense. Authority is
// the signer's own wallet signature.
func (p *Program) TransferToDelegate(ctx context.Context, signer, mint authority.Address) error {
	delegate, err := p.DelegateAuthority()
	if err != nil {
		return err
	}

	err = p.ledger.Atomically(ctx, func(tx ledger.Tx) error {
		source, err := tx.HoldingAddress(signer, mint)
		if err != nil {
			return err
		}
		if err := verifyHolding(tx, source, mint, signer); err != nil {
			return err
		}
		dest, err := ensureHolding(tx, delegate, mint, signer)
		if err != nil {
			return err
		}
		return tx.Transfer(source, dest, authority.NewWallet(signer), 1)
	})
	if err != nil {
		p.log.Error().Err(err).
			Stringer("mint", mint).
			Stringer("signer", signer).
			Msg("transfer to delegate failed")
		return err
	}

	p.log.Info().
		Stringer("mint", mint).
		Stringer("from", signer).
		Stringer("delegate", delegate).
		Msg("asset moved into delegate custody")
	return nil
}

// TransferFromDelegate moves the asset's single unit out of delegate
// custody to the recipient, with account creation paid by payer. No
// private key exists for the source authority: the transfer is signed
// by a single-use capability built from the same seeds that fixed the
// delegate address, valid only for this operation.
func (p *Program) TransferFromDelegate(ctx context.Context, payer, recipient, mint authority.Address) error {
	signer, err := authority.NewCapability(p.delegateSeeds(), p.id)
	if err != nil {
		return err
	}

	err = p.ledger.Atomically(ctx, func(tx ledger.Tx) error {
		source, err := tx.HoldingAddress(signer.Key(), mint)
		if err != nil {
			return err
		}
		if err := verifyHolding(tx, source, mint, signer.Key()); err != nil {
			return err
		}
		dest, err := ensureHolding(tx, recipient, mint, payer)
		if err != nil {
			return err
		}
		return tx.Transfer(source, dest, signer, 1)
	})
	if err != nil {
		p.log.Error().Err(err).
			Stringer("mint", mint).
			Stringer("recipient", recipient).
			Msg("transfer from delegate failed")
		return err
	}

	p.log.Info().
		Stringer("mint", mint).
		Stringer("delegate", signer.Key()).
		Stringer("to", recipient).
		Msg("asset released from delegate custody")
	return nil
}
