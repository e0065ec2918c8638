// Package custody orchestrates issuance and transfer of single-unit
// assets over an injected custody ledger. Every privileged account is
// recomputed from its seed inputs and validated before the ledger is
// invoked; caller-supplied addresses are never trusted as authority.
package custody

import (
	"github.com/rs/zerolog"

	"github.com/mintvault-xyz/go-mintvault/authority"
	"github.com/mintvault-xyz/go-mintvault/ledger"
)

// Seed labels for derived accounts.
const (
	delegateSeed = "delegate"
	metadataSeed = "metadata"
	editionSeed  = "edition"
)

// Program issues assets and moves them between wallet and delegate
// custody. The delegate authority is a key-less account derived from
// the program identity alone; its consent is synthesized per operation.
type Program struct {
	id         authority.ModuleID
	registryID authority.ModuleID
	ledger     ledger.Custody
	log        zerolog.Logger
}

// Option configures a Program.
type Option func(*Program)

// WithLogger attaches a structured logger. The default discards.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Program) { p.log = log }
}

// New creates a program bound to its module identity, the metadata
// registry identity, and a custody ledger.
func New(id, registryID authority.ModuleID, l ledger.Custody, opts ...Option) *Program {
	p := &Program{
		id:         id,
		registryID: registryID,
		ledger:     l,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the program's module identity.
func (p *Program) ID() authority.ModuleID { return p.id }

// DelegateAuthority returns the shared delegate address for this
// deployment. The seed is a single fixed label, so one delegate account
// custodies every asset for every holder.
func (p *Program) DelegateAuthority() (authority.Address, error) {
	addr, _, err := authority.Derive(p.delegateSeeds(), p.id)
	return addr, err
}

// MetadataAddress returns the derived metadata record address for mint.
func (p *Program) MetadataAddress(mint authority.Address) (authority.Address, error) {
	addr, _, err := authority.Derive(p.metadataSeeds(mint), p.registryID)
	return addr, err
}

// EditionAddress returns the derived edition record address for mint.
func (p *Program) EditionAddress(mint authority.Address) (authority.Address, error) {
	addr, _, err := authority.Derive(p.editionSeeds(mint), p.registryID)
	return addr, err
}

func (p *Program) delegateSeeds() [][]byte {
	return [][]byte{[]byte(delegateSeed)}
}

func (p *Program) metadataSeeds(mint authority.Address) [][]byte {
	return [][]byte{[]byte(metadataSeed), p.registryID.Bytes(), mint.Bytes()}
}

func (p *Program) editionSeeds(mint authority.Address) [][]byte {
	return append(p.metadataSeeds(mint), []byte(editionSeed))
}
