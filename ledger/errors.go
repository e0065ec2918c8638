package ledger

import "errors"

var (
	// Mint errors
	ErrMintExists     = errors.New("ledger: mint already exists")
	ErrUnknownMint    = errors.New("ledger: unknown mint")
	ErrSupplyExceeded = errors.New("ledger: supply cap exceeded")

	// Account errors
	ErrUnknownAccount  = errors.New("ledger: unknown holding account")
	ErrAccountMismatch = errors.New("ledger: account exists with different bindings")

	// Authority errors
	ErrUnauthorized = errors.New("ledger: authority not valid for account")

	// Transfer errors
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrMintMismatch        = errors.New("ledger: accounts bound to different mints")

	// Registry errors
	ErrAlreadyRegistered = errors.New("ledger: record already registered")
	ErrUnknownMetadata   = errors.New("ledger: unknown metadata record")
)
