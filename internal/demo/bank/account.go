// Package bank is a small domain used to demonstrate woven types.
package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrInsufficientFunds is returned by Withdraw when the balance is too low.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Account is a balance guarded by a mutex.
type Account struct {
	mu      sync.Mutex
	owner   string
	balance int
}

// NewAccount opens an account for owner.
func NewAccount(owner string, opening int) (*Account, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("owner is required")
	}
	if opening < 0 {
		return nil, fmt.Errorf("opening balance %d: %w", opening, ErrInvalidAmount)
	}
	return &Account{owner: owner, balance: opening}, nil
}

// Owner returns the account holder.
func (a *Account) Owner() string {
	return a.owner
}

// Balance returns the current balance.
func (a *Account) Balance(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance, nil
}

// Deposit adds amount and returns the new balance.
func (a *Account) Deposit(ctx context.Context, amount int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance += amount
	return a.balance, nil
}

// Withdraw removes amount and returns the new balance.
func (a *Account) Withdraw(ctx context.Context, amount int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount > a.balance {
		return a.balance, ErrInsufficientFunds
	}
	a.balance -= amount
	return a.balance, nil
}

// InterestRate returns the yearly rate in basis points for a tier.
func InterestRate(ctx context.Context, tier string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	switch tier {
	case "basic":
		return 50, nil
	case "premium":
		return 175, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", tier)
	}
}
