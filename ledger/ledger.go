// Package ledger defines the asset-custody and metadata-registry
// collaborator boundary, plus an in-memory reference implementation
// that enforces the same supply and ownership invariants.
package ledger

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/mintvault-xyz/go-mintvault/authority"
)

// MetadataData is the immutable descriptive payload for a mint.
type MetadataData struct {
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	URI                  string `json:"uri"`
	SellerFeeBasisPoints uint16 `json:"seller_fee_basis_points"`
}

// MintInfo records a mint's fixed parameters and running supply.
type MintInfo struct {
	Address         authority.Address
	Authority       authority.Address
	FreezeAuthority authority.Address
	Decimals        uint8
	Supply          *uint256.Int
	MaxSupply       *uint256.Int
}

// HoldingAccount binds a balance to one (owner, mint) pair.
type HoldingAccount struct {
	Address authority.Address
	Owner   authority.Address
	Mint    authority.Address
	Balance *uint256.Int
}

// Metadata is a registered metadata record.
type Metadata struct {
	Address         authority.Address
	Mint            authority.Address
	UpdateAuthority authority.Address
	Data            MetadataData
	Mutable         bool
}

// Edition seals a mint as a non-reproducible original.
type Edition struct {
	Address   authority.Address
	Mint      authority.Address
	Metadata  authority.Address
	MaxSupply uint64
}

// Tx is the view of the ledger inside one atomic operation. Every
// mutation made through a Tx commits or rolls back as a group.
type Tx interface {
	// CreateMint registers a new single-unit mint (decimals 0, supply
	// cap 1) under the given mint and freeze authorities.
	CreateMint(mint, auth, freezeAuth authority.Address) error

	// Mint adds amount units of mint to dest. The signer must be the
	// mint authority; the supply cap is enforced.
	Mint(mint, dest authority.Address, auth authority.Signer, amount uint64) error

	// Transfer moves amount units between holding accounts of the same
	// mint. The signer must be the source account owner.
	Transfer(source, dest authority.Address, auth authority.Signer, amount uint64) error

	// CreateHoldingAccount resolves the canonical holding account for
	// (owner, mint). Absent: created. Present with matching bindings:
	// returned as-is. Present with different bindings: ErrAccountMismatch.
	CreateHoldingAccount(owner, mint, payer authority.Address) (authority.Address, error)

	// RegisterMetadata stores an immutable metadata record at target.
	// The signer must be the mint authority; target must be unused.
	RegisterMetadata(target, mint authority.Address, auth authority.Signer, payer authority.Address, data MetadataData, mutable bool) error

	// RegisterEdition seals the mint at target, referencing a
	// previously registered metadata record.
	RegisterEdition(target, mint authority.Address, auth authority.Signer, payer, metadata authority.Address, maxSupply uint64) error

	// HoldingAddress returns the canonical derived address for the
	// (owner, mint) holding account, whether or not it exists.
	HoldingAddress(owner, mint authority.Address) (authority.Address, error)

	HoldingAccount(addr authority.Address) (HoldingAccount, bool)
	MintInfo(mint authority.Address) (MintInfo, bool)
	Metadata(addr authority.Address) (Metadata, bool)
	Edition(addr authority.Address) (Edition, bool)
}

// Custody is the external asset-custody module boundary. All mutation
// happens inside Atomically; there is no partially applied operation.
type Custody interface {
	// Atomically runs fn against a transactional view. Effects commit
	// only if fn returns nil; any error leaves the ledger unchanged.
	Atomically(ctx context.Context, fn func(Tx) error) error

	// View runs fn against a read-only snapshot of committed state.
	View(ctx context.Context, fn func(Tx) error) error
}
