// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func bigs(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestComputeDBalanced(t *testing.T) {
	req := require.New(t)

	// For perfectly balanced reserves the invariant is exactly the sum.
	for _, balances := range [][]*big.Int{
		bigs(1_000_000, 1_000_000),
		bigs(500, 500, 500),
		bigs(7, 7, 7, 7),
	} {
		d, err := computeD(100, balances)
		req.NoError(err)
		req.Equal(sumAmounts(balances), d)
	}
}

func TestComputeDEmpty(t *testing.T) {
	req := require.New(t)
	d, err := computeD(100, bigs(0, 0))
	req.NoError(err)
	req.Zero(d.Sign())
}

func TestComputeDZeroBalance(t *testing.T) {
	req := require.New(t)
	_, err := computeD(100, bigs(1_000, 0))
	req.ErrorIs(err, ErrInsufficientReserves)
}

func TestComputeDImbalanced(t *testing.T) {
	req := require.New(t)

	// An imbalanced pool is worth less than its sum but more than with a
	// flat curve; higher amplification pulls D toward the sum.
	low, err := computeD(1, bigs(1_000_000, 100_000))
	req.NoError(err)
	high, err := computeD(1_000, bigs(1_000_000, 100_000))
	req.NoError(err)
	sum := big.NewInt(1_100_000)
	req.Negative(low.Cmp(sum))
	req.Negative(high.Cmp(sum))
	req.Positive(high.Cmp(low))
}

func TestComputeYHoldsInvariant(t *testing.T) {
	req := require.New(t)

	balances := bigs(1_000_000, 1_000_000)
	amountIn := big.NewInt(10_000)
	newIn := new(big.Int).Add(balances[0], amountIn)

	y, err := computeY(100, newIn, balances, 0, 1)
	req.NoError(err)
	dy := new(big.Int).Sub(balances[1], y)

	// Near parity the curve pays out at most one-for-one.
	req.Positive(dy.Sign())
	req.LessOrEqual(dy.Cmp(amountIn), 0)
	req.Positive(dy.Cmp(big.NewInt(9_900)))

	// The invariant is preserved up to iteration and floor rounding.
	d0, err := computeD(100, balances)
	req.NoError(err)
	d1, err := computeD(100, []*big.Int{newIn, y})
	req.NoError(err)
	req.LessOrEqual(absDiff(d0, d1).Int64(), int64(10))
}

func TestComputeYDeepImbalance(t *testing.T) {
	req := require.New(t)

	// Draining most of one side must get progressively more expensive.
	balances := bigs(1_000_000, 1_000_000)
	small, err := computeY(50, big.NewInt(1_100_000), balances, 0, 1)
	req.NoError(err)
	large, err := computeY(50, big.NewInt(10_000_000), balances, 0, 1)
	req.NoError(err)

	dySmall := new(big.Int).Sub(balances[1], small)
	dyLarge := new(big.Int).Sub(balances[1], large)
	req.Positive(dyLarge.Cmp(dySmall))
	// Output can never reach the full reserve.
	req.Negative(dyLarge.Cmp(balances[1]))
}
