// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/vortelus/ref-contracts/consts"
)

// RatedSwapPool is a stableswap over assets whose intrinsic value
// drifts, such as yield-bearing wrappers. Each reserve is multiplied by
// a cached oracle rate before the invariant math runs, so the literal
// token counts can differ while value trades near parity. Rates keep
// their last cached value until the oracle pushes a fresher one.
type RatedSwapPool struct {
	TokenIDs      []string
	TokenDecimals []uint8
	CAmounts      []*big.Int
	Volumes       []SwapVolume
	TotalFee      uint32
	AmpFactor     uint64
	Rates         []*big.Int
	Shares        ShareLedger
}

func NewRatedSwapPool(tokenIDs []string, tokenDecimals []uint8, ampFactor uint64, totalFee uint32) (*RatedSwapPool, error) {
	if err := validateStableInit(tokenIDs, tokenDecimals, ampFactor, totalFee, consts.RatedShareDecimals); err != nil {
		return nil, err
	}
	rates := make([]*big.Int, len(tokenIDs))
	for i := range rates {
		rates[i] = new(big.Int).Set(ratePrecision)
	}
	return &RatedSwapPool{
		TokenIDs:      append([]string(nil), tokenIDs...),
		TokenDecimals: append([]uint8(nil), tokenDecimals...),
		CAmounts:      zeroAmounts(len(tokenIDs)),
		Volumes:       newVolumes(len(tokenIDs)),
		TotalFee:      totalFee,
		AmpFactor:     ampFactor,
		Rates:         rates,
		Shares:        newShareLedger(),
	}, nil
}

func (p *RatedSwapPool) state() stableState {
	return stableState{
		tokens:   p.TokenIDs,
		decimals: p.TokenDecimals,
		c:        p.CAmounts,
		volumes:  p.Volumes,
		totalFee: p.TotalFee,
		amp:      p.AmpFactor,
		target:   consts.RatedShareDecimals,
		ledger:   &p.Shares,
	}
}

func (p *RatedSwapPool) Tokens() []string {
	return p.TokenIDs
}

func (p *RatedSwapPool) ModifyTotalFee(totalFee uint32) error {
	if totalFee > consts.MaxStableSwapFee {
		return ErrFeeTooHigh
	}
	p.TotalFee = totalFee
	return nil
}

// UpdateRates caches a fresh rate vector from the oracle.
func (p *RatedSwapPool) UpdateRates(rates []*big.Int) error {
	validated, err := validFactors(rates, len(p.TokenIDs))
	if err != nil {
		return err
	}
	p.Rates = validated
	return nil
}

// ratesOrOverride picks the cached rates unless the caller supplies a
// hypothetical vector for quoting.
func (p *RatedSwapPool) ratesOrOverride(rates []*big.Int) ([]*big.Int, error) {
	if rates == nil {
		return p.Rates, nil
	}
	return validFactors(rates, len(p.TokenIDs))
}

func (p *RatedSwapPool) AddLiquidity(sender string, amounts []*big.Int, minShares *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	return p.state().addLiquidity(sender, amounts, minShares, fees, p.Rates, simulate)
}

func (p *RatedSwapPool) RemoveLiquidityByShares(sender string, shares *big.Int, minAmounts []*big.Int, simulate bool) ([]*big.Int, error) {
	return p.state().removeByShares(sender, shares, minAmounts, simulate)
}

func (p *RatedSwapPool) RemoveLiquidityByTokens(sender string, amounts []*big.Int, maxBurnShares *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	return p.state().removeByTokens(sender, amounts, maxBurnShares, fees, p.Rates, simulate)
}

func (p *RatedSwapPool) Swap(tokenIn string, amountIn *big.Int, tokenOut string, minAmountOut *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	return p.state().swap(tokenIn, amountIn, tokenOut, minAmountOut, fees, p.Rates, simulate)
}

func (p *RatedSwapPool) SharePrice() (*big.Int, error) {
	return p.state().sharePrice(p.Rates)
}

// PredictAddLiquidity quotes AddLiquidity without mutating state,
// optionally under a hypothetical rate vector.
func (p *RatedSwapPool) PredictAddLiquidity(amounts []*big.Int, rates []*big.Int, fees AdminFees) (*big.Int, error) {
	factors, err := p.ratesOrOverride(rates)
	if err != nil {
		return nil, err
	}
	return p.state().addLiquidity("", amounts, nil, fees, factors, true)
}

// PredictRemoveLiquidityByTokens quotes the share burn for an exact
// basket withdrawal, optionally under a hypothetical rate vector.
func (p *RatedSwapPool) PredictRemoveLiquidityByTokens(amounts []*big.Int, rates []*big.Int, fees AdminFees) (*big.Int, error) {
	factors, err := p.ratesOrOverride(rates)
	if err != nil {
		return nil, err
	}
	return p.state().removeByTokensQuote(amounts, fees, factors)
}

// GetReturn quotes a swap without mutating state, optionally under a
// hypothetical rate vector.
func (p *RatedSwapPool) GetReturn(tokenIn string, amountIn *big.Int, tokenOut string, rates []*big.Int, fees AdminFees) (*big.Int, error) {
	factors, err := p.ratesOrOverride(rates)
	if err != nil {
		return nil, err
	}
	return p.state().swap(tokenIn, amountIn, tokenOut, nil, fees, factors, true)
}

// validFactors validates an externally supplied rate or price vector.
func validFactors(factors []*big.Int, n int) ([]*big.Int, error) {
	if len(factors) != n {
		return nil, ErrInvalidRates
	}
	out := make([]*big.Int, n)
	for i, f := range factors {
		if f == nil || f.Sign() <= 0 || f.Cmp(maxBalance) > 0 {
			return nil, ErrInvalidRates
		}
		out[i] = new(big.Int).Set(f)
	}
	return out, nil
}
