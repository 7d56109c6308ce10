// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ShareLedger is the fungible ownership ledger embedded in every pool.
// The sum of all balances equals TotalSupply after every operation. An
// account must be registered (present in Balances, possibly at zero)
// before it can receive shares by transfer.
type ShareLedger struct {
	TotalSupply *big.Int
	Balances    map[string]*big.Int
}

func newShareLedger() ShareLedger {
	return ShareLedger{
		TotalSupply: new(big.Int),
		Balances:    make(map[string]*big.Int),
	}
}

// Register adds an account at zero balance. Registering an existing
// account is a no-op.
func (l *ShareLedger) Register(accountID string) {
	if _, ok := l.Balances[accountID]; !ok {
		l.Balances[accountID] = new(big.Int)
	}
}

// Unregister removes an account. The account's balance must be exactly
// zero.
func (l *ShareLedger) Unregister(accountID string) error {
	balance, ok := l.Balances[accountID]
	if !ok {
		return ErrNotRegistered
	}
	if balance.Sign() != 0 {
		return ErrNonEmptyAccount
	}
	delete(l.Balances, accountID)
	return nil
}

func (l *ShareLedger) HasRegistered(accountID string) bool {
	_, ok := l.Balances[accountID]
	return ok
}

// BalanceOf returns a copy of the account's balance, zero if the
// account is unknown.
func (l *ShareLedger) BalanceOf(accountID string) *big.Int {
	if balance, ok := l.Balances[accountID]; ok {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}

// TotalShares returns a copy of the outstanding supply.
func (l *ShareLedger) TotalShares() *big.Int {
	return new(big.Int).Set(l.TotalSupply)
}

// Accounts returns every registered account in deterministic order.
func (l *ShareLedger) Accounts() []string {
	accounts := maps.Keys(l.Balances)
	slices.Sort(accounts)
	return accounts
}

// Transfer moves shares between accounts. The receiver must already be
// registered.
func (l *ShareLedger) Transfer(sender, receiver string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	to, ok := l.Balances[receiver]
	if !ok {
		return ErrNotRegistered
	}
	from, ok := l.Balances[sender]
	if !ok || from.Cmp(amount) < 0 {
		return ErrInsufficientShares
	}
	from.Sub(from, amount)
	to.Add(to, amount)
	return nil
}

// mint creates shares for an account, registering it if needed. The
// supply is range-checked before any state changes.
func (l *ShareLedger) mint(accountID string, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	newSupply := new(big.Int).Add(l.TotalSupply, amount)
	if err := checkBalance(newSupply); err != nil {
		return err
	}
	l.Register(accountID)
	l.TotalSupply.Set(newSupply)
	balance := l.Balances[accountID]
	balance.Add(balance, amount)
	return nil
}

// burn destroys shares held by an account.
func (l *ShareLedger) burn(accountID string, amount *big.Int) error {
	balance, ok := l.Balances[accountID]
	if !ok || balance.Cmp(amount) < 0 {
		return ErrInsufficientShares
	}
	balance.Sub(balance, amount)
	l.TotalSupply.Sub(l.TotalSupply, amount)
	return nil
}
