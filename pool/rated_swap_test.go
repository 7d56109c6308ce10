// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vortelus/ref-contracts/consts"
)

func newTestRatedPool(t *testing.T, totalFee uint32) *RatedSwapPool {
	t.Helper()
	p, err := NewRatedSwapPool(
		[]string{tokenA, tokenB},
		[]uint8{consts.RatedShareDecimals, consts.RatedShareDecimals},
		100,
		totalFee,
	)
	require.NoError(t, err)
	return p
}

// rate scales a RatePrecision fixed-point multiplier, e.g. rate(2, 1)
// is 2.0.
func rate(num, den int64) *big.Int {
	r := new(big.Int).SetUint64(consts.RatePrecision)
	r.Mul(r, big.NewInt(num))
	return r.Div(r, big.NewInt(den))
}

func TestRatedSwapDefaultsToIdentityRates(t *testing.T) {
	req := require.New(t)
	p := newTestRatedPool(t, 0)

	for _, r := range p.Rates {
		req.Equal(new(big.Int).SetUint64(consts.RatePrecision), r)
	}

	// With identity rates the pool behaves like a plain stableswap.
	minted, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)
	req.Equal(big.NewInt(2_000_000), minted)
}

func TestRatedSwapUpdateRates(t *testing.T) {
	req := require.New(t)
	p := newTestRatedPool(t, 0)

	req.ErrorIs(p.UpdateRates(bigs(1)), ErrInvalidRates)
	req.ErrorIs(p.UpdateRates(bigs(0, 1)), ErrInvalidRates)
	req.ErrorIs(p.UpdateRates([]*big.Int{nil, big.NewInt(1)}), ErrInvalidRates)

	req.NoError(p.UpdateRates([]*big.Int{rate(2, 1), rate(1, 1)}))
	req.Equal(rate(2, 1), p.Rates[0])
}

func TestRatedSwapTradesAtRate(t *testing.T) {
	req := require.New(t)
	p := newTestRatedPool(t, 0)
	req.NoError(p.UpdateRates([]*big.Int{rate(2, 1), rate(1, 1)}))

	// Token A is worth two units of B: a value-balanced deposit holds
	// half as many A.
	minted, err := p.AddLiquidity(alice, bigs(500_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)
	req.Equal(big.NewInt(2_000_000), minted)

	// Swapping A pays out roughly twice as many B.
	out, err := p.Swap(tokenA, big.NewInt(10_000), tokenB, nil, AdminFees{}, false)
	req.NoError(err)
	req.Negative(out.Cmp(big.NewInt(20_000)))
	req.Positive(out.Cmp(big.NewInt(19_800)))
}

func TestRatedSwapPredictsDoNotMutate(t *testing.T) {
	req := require.New(t)
	p := newTestRatedPool(t, 25)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	quoted, err := p.GetReturn(tokenA, big.NewInt(10_000), tokenB, nil, AdminFees{})
	req.NoError(err)
	_, err = p.PredictAddLiquidity(bigs(100_000, 0), nil, AdminFees{})
	req.NoError(err)
	_, err = p.PredictRemoveLiquidityByTokens(bigs(10_000, 0), nil, AdminFees{})
	req.NoError(err)

	req.Equal(bigs(1_000_000, 1_000_000), p.CAmounts)
	req.Equal(big.NewInt(2_000_000), p.Shares.TotalShares())

	// A quote under a hypothetical rate differs from the cached one and
	// still leaves the cached rates alone.
	hypo, err := p.GetReturn(tokenA, big.NewInt(10_000), tokenB, []*big.Int{rate(2, 1), rate(1, 1)}, AdminFees{})
	req.NoError(err)
	req.NotEqual(quoted, hypo)
	req.Equal(new(big.Int).SetUint64(consts.RatePrecision), p.Rates[0])

	// The committed swap matches its quote.
	out, err := p.Swap(tokenA, big.NewInt(10_000), tokenB, nil, AdminFees{}, false)
	req.NoError(err)
	req.Equal(quoted, out)
}

func TestRatedSwapRemoveByShares(t *testing.T) {
	req := require.New(t)
	p := newTestRatedPool(t, 25)
	req.NoError(p.UpdateRates([]*big.Int{rate(2, 1), rate(1, 1)}))
	minted, err := p.AddLiquidity(alice, bigs(500_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	// Proportional withdrawal pays out raw token amounts, not values.
	amounts, err := p.RemoveLiquidityByShares(alice, new(big.Int).Div(minted, bigTwo), bigs(0, 0), false)
	req.NoError(err)
	req.Equal(bigs(250_000, 500_000), amounts)
}

func TestRatedSwapSharePriceTracksRates(t *testing.T) {
	req := require.New(t)
	p := newTestRatedPool(t, 0)
	_, err := p.AddLiquidity(alice, bigs(1_000_000, 1_000_000), nil, AdminFees{}, false)
	req.NoError(err)

	par, err := p.SharePrice()
	req.NoError(err)
	req.Equal(new(big.Int).SetUint64(consts.SharePricePrecision), par)

	// A rate appreciation lifts the value of the same reserves.
	req.NoError(p.UpdateRates([]*big.Int{rate(11, 10), rate(1, 1)}))
	up, err := p.SharePrice()
	req.NoError(err)
	req.Positive(up.Cmp(par))
}
