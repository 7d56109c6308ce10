// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vortelus/ref-contracts/consts"
)

func newTestStablePool(t *testing.T, totalFee uint32) *StableSwapPool {
	t.Helper()
	p, err := NewStableSwapPool(
		[]string{tokenA, tokenB},
		[]uint8{consts.StableShareDecimals, consts.StableShareDecimals},
		100,
		totalFee,
	)
	require.NoError(t, err)
	return p
}

func TestNewStableSwapPoolValidation(t *testing.T) {
	req := require.New(t)

	_, err := NewStableSwapPool([]string{tokenA, tokenB}, []uint8{18}, 100, 0)
	req.ErrorIs(err, ErrInvalidDecimals)

	_, err = NewStableSwapPool([]string{tokenA, tokenB}, []uint8{18, 24}, 100, 0)
	req.ErrorIs(err, ErrInvalidDecimals)

	_, err = NewStableSwapPool([]string{tokenA, tokenB}, []uint8{18, 18}, 0, 0)
	req.ErrorIs(err, ErrInvalidAmpFactor)

	_, err = NewStableSwapPool([]string{tokenA, tokenB}, []uint8{18, 18}, consts.MaxAmpFactor+1, 0)
	req.ErrorIs(err, ErrInvalidAmpFactor)

	_, err = NewStableSwapPool([]string{tokenA, tokenB}, []uint8{18, 18}, 100, consts.MaxStableSwapFee+1)
	req.ErrorIs(err, ErrFeeTooHigh)
}

func TestStableSwapFirstDeposit(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 25)

	// A balanced first deposit mints exactly the invariant, the sum.
	minted, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)
	req.Equal(big.NewInt(2_000_000), minted)
	req.Equal(minted, p.Shares.BalanceOf(alice))

	// The first deposit must fund every token.
	p2 := newTestStablePool(t, 25)
	_, err = p2.AddLiquidity(alice, bigs(1_000_000, 0), nil, AdminFees{}, false)
	req.ErrorIs(err, ErrInvalidAmount)
}

func TestStableSwapBalancedDepositNoFee(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 25)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	// A perfectly proportional deposit pays no imbalance fee.
	minted, err := p.AddLiquidity(bob, bigs(100_000, 100_000), nil, AdminFees{}, false)
	req.NoError(err)
	req.Equal(big.NewInt(200_000), minted)
}

func TestStableSwapImbalancedDepositPaysFee(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 25)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	// A one-sided deposit mints less than its face value: curve slippage
	// plus the imbalance fee.
	minted, err := p.AddLiquidity(bob, bigs(200_000, 0), nil, AdminFees{}, false)
	req.NoError(err)
	req.Negative(minted.Cmp(big.NewInt(200_000)))
	req.Positive(minted.Cmp(big.NewInt(190_000)))
}

func TestStableSwapDepositSlippage(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 25)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	_, err = p.AddLiquidity(bob, bigs(100_000, 100_000), big.NewInt(200_001), AdminFees{}, false)
	req.ErrorIs(err, ErrSlippageExceeded)
	req.Equal(bigs(1_000_000, 1_000_000), p.CAmounts)
}

func TestStableSwapSwap(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 0)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	out, err := p.Swap(tokenA, big.NewInt(10_000), tokenB, nil, AdminFees{}, false)
	req.NoError(err)
	// Near parity the amplified curve trades close to one-for-one but
	// always strictly below it.
	req.Negative(out.Cmp(big.NewInt(10_000)))
	req.Positive(out.Cmp(big.NewInt(9_900)))

	req.Equal(big.NewInt(1_010_000), p.CAmounts[0])
	req.Equal(new(big.Int).Sub(big.NewInt(1_000_000), out), p.CAmounts[1])
	req.Equal(big.NewInt(10_000), p.Volumes[0].Input)
	req.Equal(out, p.Volumes[1].Output)
}

func TestStableSwapSwapFeeReducesOutput(t *testing.T) {
	req := require.New(t)
	free := newTestStablePool(t, 0)
	paid := newTestStablePool(t, 100)
	_, err := free.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)
	_, err = paid.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	gross, err := free.Swap(tokenA, big.NewInt(10_000), tokenB, nil, AdminFees{}, false)
	req.NoError(err)
	net, err := paid.Swap(tokenA, big.NewInt(10_000), tokenB, nil, AdminFees{}, false)
	req.NoError(err)
	req.Negative(net.Cmp(gross))
}

func TestStableSwapAdminFeeMint(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 100)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	fees := AdminFees{ExchangeFee: 40, ExchangeID: "exchange.test"}
	supplyBefore := p.Shares.TotalShares()
	_, err = p.Swap(tokenA, big.NewInt(100_000), tokenB, nil, fees, false)
	req.NoError(err)
	req.Positive(p.Shares.BalanceOf("exchange.test").Sign())
	req.Positive(p.Shares.TotalShares().Cmp(supplyBefore))
}

func TestStableSwapRemoveByShares(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 25)
	minted, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	half := new(big.Int).Div(minted, bigTwo)
	amounts, err := p.RemoveLiquidityByShares(alice, half, bigs(0, 0), false)
	req.NoError(err)
	req.Equal(bigs(500_000, 500_000), amounts)
	req.Equal(bigs(500_000, 500_000), p.CAmounts)
	req.Equal(half, p.Shares.TotalShares())
}

func TestStableSwapRemoveByTokens(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 25)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	supplyBefore := p.Shares.TotalShares()
	burned, err := p.RemoveLiquidityByTokens(alice, bigs(100_000, 0), nil, AdminFees{}, false)
	req.NoError(err)

	// A one-sided withdrawal burns more than face value: curve slippage
	// plus the imbalance fee, rounded against the withdrawer.
	req.Positive(burned.Cmp(big.NewInt(100_000)))
	req.Negative(burned.Cmp(big.NewInt(110_000)))
	req.Equal(bigs(900_000, 1_000_000), p.CAmounts)
	req.Equal(new(big.Int).Sub(supplyBefore, burned), p.Shares.TotalShares())
}

func TestStableSwapRemoveByTokensMaxBurn(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 25)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	_, err = p.RemoveLiquidityByTokens(alice, bigs(100_000, 0), big.NewInt(100_000), AdminFees{}, false)
	req.ErrorIs(err, ErrSlippageExceeded)
	req.Equal(bigs(1_000_000, 1_000_000), p.CAmounts)
}

func TestStableSwapDecimalNormalization(t *testing.T) {
	req := require.New(t)
	p, err := NewStableSwapPool([]string{tokenA, tokenB}, []uint8{6, 18}, 100, 0)
	req.NoError(err)

	// One unit of each token at its own decimals is a balanced deposit.
	minted, err := p.AddLiquidity(alice, []*big.Int{
		big.NewInt(1_000_000), // 1.0 at 6 decimals
		new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), // 1.0 at 18 decimals
	}, nil, AdminFees{}, false)
	req.NoError(err)
	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	want.Mul(want, bigTwo)
	req.Equal(want, minted)

	// Swapping 0.1 of the 6-decimal token pays out near 0.1 of the
	// 18-decimal token.
	out, err := p.Swap(tokenA, big.NewInt(100_000), tokenB, nil, AdminFees{}, false)
	req.NoError(err)
	tenth := new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil)
	req.Negative(out.Cmp(tenth))
	margin := new(big.Int).Div(tenth, big.NewInt(100)) // within 1%
	req.Positive(out.Cmp(new(big.Int).Sub(tenth, margin)))
}

func TestStableSwapSharePrice(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 25)

	_, err := p.SharePrice()
	req.ErrorIs(err, ErrEmptyPool)

	_, err = p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)
	price, err := p.SharePrice()
	req.NoError(err)
	// Shares start at par.
	req.Equal(new(big.Int).SetUint64(consts.SharePricePrecision), price)
}

func TestStableSwapSimulateDoesNotMutate(t *testing.T) {
	req := require.New(t)
	p := newTestStablePool(t, 25)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	_, err = p.AddLiquidity(bob, bigs(100_000, 0), nil, AdminFees{}, true)
	req.NoError(err)
	_, err = p.Swap(tokenA, big.NewInt(10_000), tokenB, nil, AdminFees{}, true)
	req.NoError(err)
	_, err = p.RemoveLiquidityByTokens(alice, bigs(10_000, 0), nil, AdminFees{}, true)
	req.NoError(err)

	req.Equal(bigs(1_000_000, 1_000_000), p.CAmounts)
	req.Equal(big.NewInt(2_000_000), p.Shares.TotalShares())
	req.False(p.Shares.HasRegistered(bob))
}
