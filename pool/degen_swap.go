// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/vortelus/ref-contracts/consts"
)

// DegenSwapPool is a stableswap over risky assets priced by an oracle.
// Reserves are normalized by the cached per-token price before the
// invariant math runs, and the pool's total value is capped by an
// externally configured TVL limit checked after every reserve-
// increasing operation. Prices default to zero; the pool cannot trade
// until the oracle has pushed a full price vector.
type DegenSwapPool struct {
	TokenIDs      []string
	TokenDecimals []uint8
	CAmounts      []*big.Int
	Volumes       []SwapVolume
	TotalFee      uint32
	AmpFactor     uint64
	DegenPrices   []*big.Int
	Shares        ShareLedger
}

func NewDegenSwapPool(tokenIDs []string, tokenDecimals []uint8, ampFactor uint64, totalFee uint32) (*DegenSwapPool, error) {
	if err := validateStableInit(tokenIDs, tokenDecimals, ampFactor, totalFee, consts.DegenShareDecimals); err != nil {
		return nil, err
	}
	return &DegenSwapPool{
		TokenIDs:      append([]string(nil), tokenIDs...),
		TokenDecimals: append([]uint8(nil), tokenDecimals...),
		CAmounts:      zeroAmounts(len(tokenIDs)),
		Volumes:       newVolumes(len(tokenIDs)),
		TotalFee:      totalFee,
		AmpFactor:     ampFactor,
		DegenPrices:   zeroAmounts(len(tokenIDs)),
		Shares:        newShareLedger(),
	}, nil
}

func (p *DegenSwapPool) state() stableState {
	return stableState{
		tokens:   p.TokenIDs,
		decimals: p.TokenDecimals,
		c:        p.CAmounts,
		volumes:  p.Volumes,
		totalFee: p.TotalFee,
		amp:      p.AmpFactor,
		target:   consts.DegenShareDecimals,
		ledger:   &p.Shares,
	}
}

func (p *DegenSwapPool) Tokens() []string {
	return p.TokenIDs
}

func (p *DegenSwapPool) ModifyTotalFee(totalFee uint32) error {
	if totalFee > consts.MaxStableSwapFee {
		return ErrFeeTooHigh
	}
	p.TotalFee = totalFee
	return nil
}

// UpdateDegenPrices caches a fresh price vector from the oracle.
func (p *DegenSwapPool) UpdateDegenPrices(prices []*big.Int) error {
	validated, err := validFactors(prices, len(p.TokenIDs))
	if err != nil {
		return err
	}
	p.DegenPrices = validated
	return nil
}

// AssertDegensValid fails unless every token has a usable cached
// price.
func (p *DegenSwapPool) AssertDegensValid() error {
	_, err := validFactors(p.DegenPrices, len(p.TokenIDs))
	return err
}

func (p *DegenSwapPool) pricesOrOverride(prices []*big.Int) ([]*big.Int, error) {
	if prices == nil {
		if err := p.AssertDegensValid(); err != nil {
			return nil, err
		}
		return p.DegenPrices, nil
	}
	return validFactors(prices, len(p.TokenIDs))
}

func (p *DegenSwapPool) AddLiquidity(sender string, amounts []*big.Int, minShares *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	if err := p.AssertDegensValid(); err != nil {
		return nil, err
	}
	return p.state().addLiquidity(sender, amounts, minShares, fees, p.DegenPrices, simulate)
}

func (p *DegenSwapPool) RemoveLiquidityByShares(sender string, shares *big.Int, minAmounts []*big.Int, simulate bool) ([]*big.Int, error) {
	return p.state().removeByShares(sender, shares, minAmounts, simulate)
}

func (p *DegenSwapPool) RemoveLiquidityByTokens(sender string, amounts []*big.Int, maxBurnShares *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	if err := p.AssertDegensValid(); err != nil {
		return nil, err
	}
	return p.state().removeByTokens(sender, amounts, maxBurnShares, fees, p.DegenPrices, simulate)
}

func (p *DegenSwapPool) Swap(tokenIn string, amountIn *big.Int, tokenOut string, minAmountOut *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	if err := p.AssertDegensValid(); err != nil {
		return nil, err
	}
	return p.state().swap(tokenIn, amountIn, tokenOut, minAmountOut, fees, p.DegenPrices, simulate)
}

func (p *DegenSwapPool) SharePrice() (*big.Int, error) {
	if err := p.AssertDegensValid(); err != nil {
		return nil, err
	}
	return p.state().sharePrice(p.DegenPrices)
}

// Tvl is the pool's total value in the normalized reference unit
// (DegenShareDecimals fixed point).
func (p *DegenSwapPool) Tvl() (*big.Int, error) {
	if err := p.AssertDegensValid(); err != nil {
		return nil, err
	}
	return p.state().tvl(p.DegenPrices), nil
}

// PredictAddLiquidity quotes AddLiquidity without mutating state,
// optionally under a hypothetical price vector.
func (p *DegenSwapPool) PredictAddLiquidity(amounts []*big.Int, prices []*big.Int, fees AdminFees) (*big.Int, error) {
	factors, err := p.pricesOrOverride(prices)
	if err != nil {
		return nil, err
	}
	return p.state().addLiquidity("", amounts, nil, fees, factors, true)
}

// PredictRemoveLiquidityByTokens quotes the share burn for an exact
// basket withdrawal, optionally under a hypothetical price vector.
func (p *DegenSwapPool) PredictRemoveLiquidityByTokens(amounts []*big.Int, prices []*big.Int, fees AdminFees) (*big.Int, error) {
	factors, err := p.pricesOrOverride(prices)
	if err != nil {
		return nil, err
	}
	return p.state().removeByTokensQuote(amounts, fees, factors)
}

// GetReturn quotes a swap without mutating state, optionally under a
// hypothetical price vector.
func (p *DegenSwapPool) GetReturn(tokenIn string, amountIn *big.Int, tokenOut string, prices []*big.Int, fees AdminFees) (*big.Int, error) {
	factors, err := p.pricesOrOverride(prices)
	if err != nil {
		return nil, err
	}
	return p.state().swap(tokenIn, amountIn, tokenOut, nil, fees, factors, true)
}
