package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/mintvault-xyz/go-mintvault/authority"
	"github.com/mintvault-xyz/go-mintvault/journal"
)

// holdingSeed labels holding-account address derivation.
const holdingSeed = "holding"

// Memory is an in-memory custody ledger. It is the reference
// implementation of the Custody boundary: a real deployment swaps it
// for the production custody module, tests inject it directly.
type Memory struct {
	mu  sync.Mutex
	id  authority.ModuleID
	st  *state
	jnl journal.Store
}

// MemoryOption configures a Memory ledger.
type MemoryOption func(*Memory)

// WithJournal records every committed effect in the given store, one
// stream per mint.
func WithJournal(s journal.Store) MemoryOption {
	return func(m *Memory) { m.jnl = s }
}

// WithModuleID overrides the ledger's own namespace, used to derive
// holding-account addresses.
func WithModuleID(id authority.ModuleID) MemoryOption {
	return func(m *Memory) { m.id = id }
}

// NewMemory creates an empty ledger.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		id: authority.NamedAddress("mintvault:ledger"),
		st: newState(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Atomically runs fn against a cloned state and swaps it in only if fn
// returns nil. On any error the committed state is untouched.
func (m *Memory) Atomically(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{ledger: m, st: m.st.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if m.jnl != nil {
		if err := tx.flushJournal(ctx, m.jnl); err != nil {
			return err
		}
	}
	m.st = tx.st
	return nil
}

// View runs fn against a snapshot of committed state. Mutations made
// through the Tx are discarded.
func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{ledger: m, st: m.st.clone()})
}

// Balance returns the committed balance of owner's holding account for
// mint. A missing account reads as zero.
func (m *Memory) Balance(ctx context.Context, owner, mint authority.Address) (*uint256.Int, error) {
	balance := uint256.NewInt(0)
	err := m.View(ctx, func(tx Tx) error {
		addr, err := tx.HoldingAddress(owner, mint)
		if err != nil {
			return err
		}
		if acct, ok := tx.HoldingAccount(addr); ok {
			balance.Set(acct.Balance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

var _ Custody = (*Memory)(nil)

// state holds every ledger record. Cloned per transaction.
type state struct {
	mints    map[authority.Address]*MintInfo
	accounts map[authority.Address]*HoldingAccount
	metadata map[authority.Address]*Metadata
	editions map[authority.Address]*Edition
}

func newState() *state {
	return &state{
		mints:    make(map[authority.Address]*MintInfo),
		accounts: make(map[authority.Address]*HoldingAccount),
		metadata: make(map[authority.Address]*Metadata),
		editions: make(map[authority.Address]*Edition),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.mints {
		info := *v
		info.Supply = new(uint256.Int).Set(v.Supply)
		info.MaxSupply = new(uint256.Int).Set(v.MaxSupply)
		c.mints[k] = &info
	}
	for k, v := range s.accounts {
		acct := *v
		acct.Balance = new(uint256.Int).Set(v.Balance)
		c.accounts[k] = &acct
	}
	for k, v := range s.metadata {
		md := *v
		c.metadata[k] = &md
	}
	for k, v := range s.editions {
		ed := *v
		c.editions[k] = &ed
	}
	return c
}

// memTx applies operations to a cloned state and queues journal
// entries, keyed by mint, for flush at commit time.
type memTx struct {
	ledger  *Memory
	st      *state
	pending []*journal.Entry
	streams []string
}

func (t *memTx) CreateMint(mint, auth, freezeAuth authority.Address) error {
	if _, ok := t.st.mints[mint]; ok {
		return fmt.Errorf("%w: %s", ErrMintExists, mint)
	}
	t.st.mints[mint] = &MintInfo{
		Address:         mint,
		Authority:       auth,
		FreezeAuthority: freezeAuth,
		Decimals:        0,
		Supply:          uint256.NewInt(0),
		MaxSupply:       uint256.NewInt(1),
	}
	t.record(mint, "mint_created", map[string]string{
		"authority": auth.String(),
	})
	return nil
}

func (t *memTx) Mint(mint, dest authority.Address, auth authority.Signer, amount uint64) error {
	info, ok := t.st.mints[mint]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMint, mint)
	}
	if auth.Key() != info.Authority {
		return fmt.Errorf("%w: %s is not the mint authority", ErrUnauthorized, auth.Key())
	}
	acct, ok := t.st.accounts[dest]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, dest)
	}
	if acct.Mint != mint {
		return fmt.Errorf("%w: destination bound to %s", ErrAccountMismatch, acct.Mint)
	}
	if err := auth.Authorize(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	supply := new(uint256.Int).AddUint64(info.Supply, amount)
	if supply.Gt(info.MaxSupply) {
		return fmt.Errorf("%w: supply %s cap %s", ErrSupplyExceeded, supply, info.MaxSupply)
	}
	info.Supply = supply
	acct.Balance.AddUint64(acct.Balance, amount)

	t.record(mint, "minted", map[string]string{
		"destination": dest.String(),
		"amount":      fmt.Sprintf("%d", amount),
	})
	return nil
}

func (t *memTx) Transfer(source, dest authority.Address, auth authority.Signer, amount uint64) error {
	src, ok := t.st.accounts[source]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, source)
	}
	dst, ok := t.st.accounts[dest]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, dest)
	}
	if src.Owner != auth.Key() {
		return fmt.Errorf("%w: %s does not own %s", ErrUnauthorized, auth.Key(), source)
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("%w: %s vs %s", ErrMintMismatch, src.Mint, dst.Mint)
	}
	want := uint256.NewInt(amount)
	if src.Balance.Lt(want) {
		return fmt.Errorf("%w: have %s want %s", ErrInsufficientBalance, src.Balance, want)
	}
	if err := auth.Authorize(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	src.Balance.Sub(src.Balance, want)
	dst.Balance.Add(dst.Balance, want)

	t.record(src.Mint, "transferred", map[string]string{
		"source":      source.String(),
		"destination": dest.String(),
		"amount":      fmt.Sprintf("%d", amount),
	})
	return nil
}

func (t *memTx) CreateHoldingAccount(owner, mint, payer authority.Address) (authority.Address, error) {
	if _, ok := t.st.mints[mint]; !ok {
		return authority.Zero, fmt.Errorf("%w: %s", ErrUnknownMint, mint)
	}
	addr, err := t.HoldingAddress(owner, mint)
	if err != nil {
		return authority.Zero, err
	}
	if acct, ok := t.st.accounts[addr]; ok {
		if acct.Owner != owner || acct.Mint != mint {
			return authority.Zero, fmt.Errorf("%w: %s", ErrAccountMismatch, addr)
		}
		return addr, nil
	}
	t.st.accounts[addr] = &HoldingAccount{
		Address: addr,
		Owner:   owner,
		Mint:    mint,
		Balance: uint256.NewInt(0),
	}
	t.record(mint, "account_created", map[string]string{
		"account": addr.String(),
		"owner":   owner.String(),
		"payer":   payer.String(),
	})
	return addr, nil
}

func (t *memTx) RegisterMetadata(target, mint authority.Address, auth authority.Signer, payer authority.Address, data MetadataData, mutable bool) error {
	info, ok := t.st.mints[mint]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMint, mint)
	}
	if auth.Key() != info.Authority {
		return fmt.Errorf("%w: %s is not the mint authority", ErrUnauthorized, auth.Key())
	}
	if _, ok := t.st.metadata[target]; ok {
		return fmt.Errorf("%w: metadata %s", ErrAlreadyRegistered, target)
	}
	if err := auth.Authorize(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	t.st.metadata[target] = &Metadata{
		Address:         target,
		Mint:            mint,
		UpdateAuthority: auth.Key(),
		Data:            data,
		Mutable:         mutable,
	}
	t.record(mint, "metadata_registered", map[string]string{
		"target": target.String(),
		"name":   data.Name,
		"symbol": data.Symbol,
		"uri":    data.URI,
	})
	return nil
}

func (t *memTx) RegisterEdition(target, mint authority.Address, auth authority.Signer, payer, metadata authority.Address, maxSupply uint64) error {
	info, ok := t.st.mints[mint]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMint, mint)
	}
	if auth.Key() != info.Authority {
		return fmt.Errorf("%w: %s is not the mint authority", ErrUnauthorized, auth.Key())
	}
	md, ok := t.st.metadata[metadata]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMetadata, metadata)
	}
	if md.Mint != mint {
		return fmt.Errorf("%w: metadata bound to %s", ErrAccountMismatch, md.Mint)
	}
	if _, ok := t.st.editions[target]; ok {
		return fmt.Errorf("%w: edition %s", ErrAlreadyRegistered, target)
	}
	if err := auth.Authorize(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	t.st.editions[target] = &Edition{
		Address:   target,
		Mint:      mint,
		Metadata:  metadata,
		MaxSupply: maxSupply,
	}
	t.record(mint, "edition_registered", map[string]string{
		"target":   target.String(),
		"metadata": metadata.String(),
	})
	return nil
}

func (t *memTx) HoldingAddress(owner, mint authority.Address) (authority.Address, error) {
	seeds := [][]byte{[]byte(holdingSeed), owner.Bytes(), mint.Bytes()}
	addr, _, err := authority.Derive(seeds, t.ledger.id)
	return addr, err
}

func (t *memTx) HoldingAccount(addr authority.Address) (HoldingAccount, bool) {
	acct, ok := t.st.accounts[addr]
	if !ok {
		return HoldingAccount{}, false
	}
	out := *acct
	out.Balance = new(uint256.Int).Set(acct.Balance)
	return out, true
}

func (t *memTx) MintInfo(mint authority.Address) (MintInfo, bool) {
	info, ok := t.st.mints[mint]
	if !ok {
		return MintInfo{}, false
	}
	out := *info
	out.Supply = new(uint256.Int).Set(info.Supply)
	out.MaxSupply = new(uint256.Int).Set(info.MaxSupply)
	return out, true
}

func (t *memTx) Metadata(addr authority.Address) (Metadata, bool) {
	md, ok := t.st.metadata[addr]
	if !ok {
		return Metadata{}, false
	}
	return *md, true
}

func (t *memTx) Edition(addr authority.Address) (Edition, bool) {
	ed, ok := t.st.editions[addr]
	if !ok {
		return Edition{}, false
	}
	return *ed, true
}

// record queues a journal entry on the mint's stream.
func (t *memTx) record(mint authority.Address, entryType string, payload any) {
	if t.ledger.jnl == nil {
		return
	}
	e, err := journal.NewEntry(entryType, payload)
	if err != nil {
		return
	}
	stream := mint.String()
	e.Stream = stream
	t.pending = append(t.pending, e)
	for _, s := range t.streams {
		if s == stream {
			return
		}
	}
	t.streams = append(t.streams, stream)
}

// flushJournal appends queued entries, stream by stream, under the
// stream's current version. A conflict aborts the whole operation.
func (t *memTx) flushJournal(ctx context.Context, store journal.Store) error {
	for _, stream := range t.streams {
		var entries []*journal.Entry
		for _, e := range t.pending {
			if e.Stream == stream {
				entries = append(entries, e)
			}
		}
		version, err := store.StreamVersion(ctx, stream)
		if err != nil {
			return err
		}
		if _, err := store.Append(ctx, stream, version, entries); err != nil {
			return err
		}
	}
	return nil
}

var _ Tx = (*memTx)(nil)
