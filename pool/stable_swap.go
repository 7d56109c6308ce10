// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/vortelus/ref-contracts/consts"
)

// StableSwapPool trades near-parity assets under the amplified
// sum/product invariant. Reserves are kept in comparable units (token
// amounts brought to StableShareDecimals) so tokens with different
// decimals share one curve.
type StableSwapPool struct {
	TokenIDs      []string
	TokenDecimals []uint8
	CAmounts      []*big.Int
	Volumes       []SwapVolume
	TotalFee      uint32
	AmpFactor     uint64
	Shares        ShareLedger
}

func NewStableSwapPool(tokenIDs []string, tokenDecimals []uint8, ampFactor uint64, totalFee uint32) (*StableSwapPool, error) {
	if err := validateStableInit(tokenIDs, tokenDecimals, ampFactor, totalFee, consts.StableShareDecimals); err != nil {
		return nil, err
	}
	return &StableSwapPool{
		TokenIDs:      append([]string(nil), tokenIDs...),
		TokenDecimals: append([]uint8(nil), tokenDecimals...),
		CAmounts:      zeroAmounts(len(tokenIDs)),
		Volumes:       newVolumes(len(tokenIDs)),
		TotalFee:      totalFee,
		AmpFactor:     ampFactor,
		Shares:        newShareLedger(),
	}, nil
}

func (p *StableSwapPool) state() stableState {
	return stableState{
		tokens:   p.TokenIDs,
		decimals: p.TokenDecimals,
		c:        p.CAmounts,
		volumes:  p.Volumes,
		totalFee: p.TotalFee,
		amp:      p.AmpFactor,
		target:   consts.StableShareDecimals,
		ledger:   &p.Shares,
	}
}

func (p *StableSwapPool) Tokens() []string {
	return p.TokenIDs
}

func (p *StableSwapPool) ModifyTotalFee(totalFee uint32) error {
	if totalFee > consts.MaxStableSwapFee {
		return ErrFeeTooHigh
	}
	p.TotalFee = totalFee
	return nil
}

func (p *StableSwapPool) AddLiquidity(sender string, amounts []*big.Int, minShares *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	return p.state().addLiquidity(sender, amounts, minShares, fees, nil, simulate)
}

func (p *StableSwapPool) RemoveLiquidityByShares(sender string, shares *big.Int, minAmounts []*big.Int, simulate bool) ([]*big.Int, error) {
	return p.state().removeByShares(sender, shares, minAmounts, simulate)
}

func (p *StableSwapPool) RemoveLiquidityByTokens(sender string, amounts []*big.Int, maxBurnShares *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	return p.state().removeByTokens(sender, amounts, maxBurnShares, fees, nil, simulate)
}

func (p *StableSwapPool) Swap(tokenIn string, amountIn *big.Int, tokenOut string, minAmountOut *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	return p.state().swap(tokenIn, amountIn, tokenOut, minAmountOut, fees, nil, simulate)
}

func (p *StableSwapPool) SharePrice() (*big.Int, error) {
	return p.state().sharePrice(nil)
}
