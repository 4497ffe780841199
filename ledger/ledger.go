// Package ledger defines the abstract balance/currency capability that every
// pallet spends and receives through. Per spec.md §1 the real ledger pallet
// is an external collaborator (out of scope); this package pins the
// interface the CORE depends on and ships an in-memory reference
// implementation for tests and standalone embedding.
package ledger

import (
	"errors"
	"sync"
)

// AccountID identifies a signer or the deterministic pallet escrow account.
type AccountID string

// Balance is the native fungible's smallest unit. Non-goals (spec.md §1)
// exclude multi-asset support, so a single uint64-ish amount suffices; we
// use uint64 directly and rely on saturating helpers for arithmetic done on
// top of it (see internal saturating helpers in each pallet package).
type Balance = uint64

// ExistenceRequirement mirrors Substrate's AllowDeath/KeepAlive distinction
// (spec.md §5 "Funds custody"): transfers out of the pallet account use
// AllowDeath (the pallet has no existential-deposit floor to protect),
// transfers out of a user account use KeepAlive.
type ExistenceRequirement int

const (
	KeepAlive ExistenceRequirement = iota
	AllowDeath
)

// ErrInsufficientBalance is returned by Transfer when the source
// account cannot cover the amount.
var ErrInsufficientBalance = errors.New("ledger: insufficient balance")

// Ledger is the capability every pallet mutates value through. Production
// wiring plugs in the chain's real balances pallet; InMemory below is the
// reference implementation used by tests.
type Ledger interface {
	// Transfer moves amount from -> to, honoring req. Both accounts are
	// created with a zero balance on first reference.
	Transfer(from, to AccountID, amount Balance, req ExistenceRequirement) error

	// BalanceOf returns the current balance of an account (zero if unknown).
	BalanceOf(account AccountID) Balance

	// Mint credits an account out of thin air. Used only by test setup
	// (the real ledger pallet is funded by the chain's genesis/inflation,
	// both out of scope per spec.md §1).
	Mint(account AccountID, amount Balance)
}

// InMemory is a trivial, mutex-guarded Ledger used by tests and by any
// embedder that has not wired a real balances pallet yet.
type InMemory struct {
	mu       sync.Mutex
	balances map[AccountID]Balance
}

// NewInMemory creates an empty in-memory ledger.
func NewInMemory() *InMemory {
	return &InMemory{balances: make(map[AccountID]Balance)}
}

func (l *InMemory) Transfer(from, to AccountID, amount Balance, req ExistenceRequirement) error {
	if amount == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balances[from]
	if bal < amount {
		return ErrInsufficientBalance
	}
	l.balances[from] = bal - amount
	l.balances[to] += amount
	_ = req // AllowDeath/KeepAlive only matters once an existential deposit exists; none is modeled here.
	return nil
}

func (l *InMemory) BalanceOf(account AccountID) Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

func (l *InMemory) Mint(account AccountID, amount Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}
