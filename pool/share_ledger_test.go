// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	alice = "alice.test"
	bob   = "bob.test"
	carol = "carol.test"
)

func TestShareLedgerRegister(t *testing.T) {
	req := require.New(t)
	l := newShareLedger()

	req.False(l.HasRegistered(alice))
	l.Register(alice)
	req.True(l.HasRegistered(alice))
	req.Zero(l.BalanceOf(alice).Sign())

	// Re-registering must not reset anything.
	req.NoError(l.mint(alice, big.NewInt(10)))
	l.Register(alice)
	req.Equal(big.NewInt(10), l.BalanceOf(alice))
}

func TestShareLedgerUnregister(t *testing.T) {
	req := require.New(t)
	l := newShareLedger()

	req.ErrorIs(l.Unregister(alice), ErrNotRegistered)

	l.Register(alice)
	req.NoError(l.mint(alice, big.NewInt(5)))
	req.ErrorIs(l.Unregister(alice), ErrNonEmptyAccount)

	req.NoError(l.burn(alice, big.NewInt(5)))
	req.NoError(l.Unregister(alice))
	req.False(l.HasRegistered(alice))
}

func TestShareLedgerTransfer(t *testing.T) {
	req := require.New(t)
	l := newShareLedger()
	req.NoError(l.mint(alice, big.NewInt(100)))

	// Receiver must be registered first.
	req.ErrorIs(l.Transfer(alice, bob, big.NewInt(40)), ErrNotRegistered)
	l.Register(bob)
	req.NoError(l.Transfer(alice, bob, big.NewInt(40)))
	req.Equal(big.NewInt(60), l.BalanceOf(alice))
	req.Equal(big.NewInt(40), l.BalanceOf(bob))
	req.Equal(big.NewInt(100), l.TotalShares())

	req.ErrorIs(l.Transfer(alice, bob, big.NewInt(61)), ErrInsufficientShares)
	req.ErrorIs(l.Transfer(carol, bob, big.NewInt(1)), ErrInsufficientShares)
	req.ErrorIs(l.Transfer(alice, bob, big.NewInt(0)), ErrInvalidAmount)
	req.ErrorIs(l.Transfer(alice, bob, big.NewInt(-1)), ErrInvalidAmount)
}

func TestShareLedgerMintBurn(t *testing.T) {
	req := require.New(t)
	l := newShareLedger()

	req.NoError(l.mint(alice, big.NewInt(100)))
	req.NoError(l.mint(bob, big.NewInt(50)))
	req.Equal(big.NewInt(150), l.TotalShares())

	req.ErrorIs(l.burn(bob, big.NewInt(51)), ErrInsufficientShares)
	req.NoError(l.burn(bob, big.NewInt(50)))
	req.Equal(big.NewInt(100), l.TotalShares())

	// Minting past the persistable range must fail without mutating.
	huge := new(big.Int).Lsh(big.NewInt(1), 128)
	req.ErrorIs(l.mint(alice, huge), ErrArithmeticOverflow)
	req.Equal(big.NewInt(100), l.TotalShares())
	req.Equal(big.NewInt(100), l.BalanceOf(alice))
}

func TestShareLedgerAccountsSorted(t *testing.T) {
	req := require.New(t)
	l := newShareLedger()
	l.Register(carol)
	l.Register(alice)
	l.Register(bob)
	req.Equal([]string{alice, bob, carol}, l.Accounts())
}

func TestShareLedgerBalanceOfCopies(t *testing.T) {
	req := require.New(t)
	l := newShareLedger()
	req.NoError(l.mint(alice, big.NewInt(10)))
	b := l.BalanceOf(alice)
	b.SetInt64(9999)
	req.Equal(big.NewInt(10), l.BalanceOf(alice))
}
