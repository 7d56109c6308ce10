// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/vortelus/ref-contracts/consts"
)

// SimplePool holds reserves under the constant-product invariant
// Prod(reserve_i) = k. A swap solves for the output that keeps the
// product constant across the traded pair, holding every other reserve
// fixed; the fee retained in reserves grows k on every trade.
type SimplePool struct {
	TokenIDs []string
	Amounts  []*big.Int
	Volumes  []SwapVolume
	TotalFee uint32
	Shares   ShareLedger
}

func NewSimplePool(tokenIDs []string, totalFee uint32) (*SimplePool, error) {
	if err := validateTokenIDs(tokenIDs); err != nil {
		return nil, err
	}
	if totalFee > consts.MaxSimplePoolFee {
		return nil, ErrFeeTooHigh
	}
	return &SimplePool{
		TokenIDs: append([]string(nil), tokenIDs...),
		Amounts:  zeroAmounts(len(tokenIDs)),
		Volumes:  newVolumes(len(tokenIDs)),
		TotalFee: totalFee,
		Shares:   newShareLedger(),
	}, nil
}

func (p *SimplePool) Tokens() []string {
	return p.TokenIDs
}

func (p *SimplePool) ModifyTotalFee(totalFee uint32) error {
	if totalFee > consts.MaxSimplePoolFee {
		return ErrFeeTooHigh
	}
	p.TotalFee = totalFee
	return nil
}

func (p *SimplePool) tokenPair(tokenIn, tokenOut string) (int, int, error) {
	in, out := -1, -1
	for i, id := range p.TokenIDs {
		switch id {
		case tokenIn:
			in = i
		case tokenOut:
			out = i
		}
	}
	if in < 0 || out < 0 || tokenIn == tokenOut {
		return 0, 0, ErrInvalidToken
	}
	return in, out, nil
}

// AddLiquidity deposits into the pool at the current reserve ratio.
// Offered amounts are adjusted down to the largest ratio-preserving
// sub-amounts; the second return value reports what was actually
// consumed. The first deposit fixes the ratio and mints the canonical
// initial supply.
func (p *SimplePool) AddLiquidity(sender string, amounts []*big.Int, simulate bool) (*big.Int, []*big.Int, error) {
	if err := validAmounts(amounts, len(p.TokenIDs), true); err != nil {
		return nil, nil, err
	}
	supply := p.Shares.TotalSupply

	var minted *big.Int
	used := make([]*big.Int, len(amounts))
	if supply.Sign() > 0 {
		var fairSupply *big.Int
		for i, amount := range amounts {
			if p.Amounts[i].Sign() == 0 {
				return nil, nil, ErrInsufficientReserves
			}
			candidate := mulDiv(amount, supply, p.Amounts[i])
			if fairSupply == nil || candidate.Cmp(fairSupply) < 0 {
				fairSupply = candidate
			}
		}
		for i := range amounts {
			used[i] = mulDiv(p.Amounts[i], fairSupply, supply)
			if used[i].Sign() == 0 {
				return nil, nil, ErrInvalidAmount
			}
		}
		minted = fairSupply
	} else {
		for i, amount := range amounts {
			used[i] = new(big.Int).Set(amount)
		}
		minted = new(big.Int).Set(initShareSupply)
	}
	if minted.Sign() == 0 {
		return nil, nil, ErrZeroShares
	}
	for i := range used {
		if err := checkBalance(new(big.Int).Add(p.Amounts[i], used[i])); err != nil {
			return nil, nil, err
		}
	}
	if err := checkBalance(new(big.Int).Add(supply, minted)); err != nil {
		return nil, nil, err
	}

	if simulate {
		return minted, used, nil
	}
	for i := range used {
		p.Amounts[i].Add(p.Amounts[i], used[i])
	}
	if err := p.Shares.mint(sender, minted); err != nil {
		return nil, nil, err
	}
	return minted, used, nil
}

// RemoveLiquidity withdraws proportionally: amount_i = reserve_i *
// shares / total, floored.
func (p *SimplePool) RemoveLiquidity(sender string, shares *big.Int, minAmounts []*big.Int, simulate bool) ([]*big.Int, error) {
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := validAmounts(minAmounts, len(p.TokenIDs), false); err != nil {
		return nil, err
	}
	supply := p.Shares.TotalSupply
	if supply.Sign() == 0 {
		return nil, ErrEmptyPool
	}
	if p.Shares.BalanceOf(sender).Cmp(shares) < 0 {
		return nil, ErrInsufficientShares
	}

	amounts := make([]*big.Int, len(p.TokenIDs))
	for i := range amounts {
		amounts[i] = mulDiv(p.Amounts[i], shares, supply)
		if amounts[i].Cmp(minAmounts[i]) < 0 {
			return nil, ErrSlippageExceeded
		}
	}

	if simulate {
		return amounts, nil
	}
	for i := range amounts {
		p.Amounts[i].Sub(p.Amounts[i], amounts[i])
	}
	if err := p.Shares.burn(sender, shares); err != nil {
		return nil, err
	}
	return amounts, nil
}

// getReturn quotes an exact-input swap after deducting the fee from
// the input.
func (p *SimplePool) getReturn(in, out int, amountIn *big.Int) (*big.Int, error) {
	reserveIn, reserveOut := p.Amounts[in], p.Amounts[out]
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrEmptyPool
	}
	netIn := new(big.Int).Mul(amountIn, big.NewInt(int64(consts.FeeDivisor-p.TotalFee)))
	num := new(big.Int).Mul(netIn, reserveOut)
	den := new(big.Int).Mul(reserveIn, feeDivisor)
	den.Add(den, netIn)
	return num.Div(num, den), nil
}

// Swap trades an exact input for the invariant-preserving output. The
// retained fee grows the invariant; the protocol's cut of that growth
// is minted as shares.
func (p *SimplePool) Swap(tokenIn string, amountIn *big.Int, tokenOut string, minAmountOut *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	in, out, err := p.tokenPair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := fees.validate(p.TotalFee); err != nil {
		return nil, err
	}
	amountOut, err := p.getReturn(in, out, amountIn)
	if err != nil {
		return nil, err
	}
	if amountOut.Sign() == 0 {
		return nil, ErrInsufficientReserves
	}
	if minAmountOut != nil && amountOut.Cmp(minAmountOut) < 0 {
		return nil, ErrSlippageExceeded
	}
	return p.settleSwap(in, out, amountIn, amountOut, fees, simulate)
}

// SwapByOutput trades for an exact output, charging the fee on the
// input side and rounding the required input up.
func (p *SimplePool) SwapByOutput(tokenIn string, amountOut *big.Int, tokenOut string, maxAmountIn *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	in, out, err := p.tokenPair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if amountOut == nil || amountOut.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := fees.validate(p.TotalFee); err != nil {
		return nil, err
	}
	reserveIn, reserveOut := p.Amounts[in], p.Amounts[out]
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrEmptyPool
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientReserves
	}

	num := new(big.Int).Mul(reserveIn, amountOut)
	num.Mul(num, feeDivisor)
	den := new(big.Int).Sub(reserveOut, amountOut)
	den.Mul(den, big.NewInt(int64(consts.FeeDivisor-p.TotalFee)))
	amountIn := num.Div(num, den)
	amountIn.Add(amountIn, bigOne)
	if maxAmountIn != nil && amountIn.Cmp(maxAmountIn) > 0 {
		return nil, ErrSlippageExceeded
	}
	if _, err := p.settleSwap(in, out, amountIn, amountOut, fees, simulate); err != nil {
		return nil, err
	}
	return amountIn, nil
}

// settleSwap applies a priced trade to reserves, volumes and the
// admin share mint. The pair invariant must not shrink across the
// trade.
func (p *SimplePool) settleSwap(in, out int, amountIn, amountOut *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	newIn := new(big.Int).Add(p.Amounts[in], amountIn)
	if err := checkBalance(newIn); err != nil {
		return nil, err
	}
	newOut := new(big.Int).Sub(p.Amounts[out], amountOut)
	if newOut.Sign() <= 0 {
		return nil, ErrInsufficientReserves
	}

	prevInvariant := new(big.Int).Sqrt(new(big.Int).Mul(p.Amounts[in], p.Amounts[out]))
	newInvariant := new(big.Int).Sqrt(new(big.Int).Mul(newIn, newOut))
	if newInvariant.Cmp(prevInvariant) < 0 {
		return nil, ErrArithmeticOverflow
	}
	growth := new(big.Int).Sub(newInvariant, prevInvariant)
	exchangeMint, referralMint := p.adminShareMints(growth, newInvariant, fees)
	newSupply := new(big.Int).Add(p.Shares.TotalSupply, exchangeMint)
	newSupply.Add(newSupply, referralMint)
	if err := checkBalance(newSupply); err != nil {
		return nil, err
	}

	if simulate {
		return amountOut, nil
	}
	p.Amounts[in].Set(newIn)
	p.Amounts[out].Set(newOut)
	p.Volumes[in].Input.Add(p.Volumes[in].Input, amountIn)
	p.Volumes[out].Output.Add(p.Volumes[out].Output, amountOut)
	if err := p.Shares.mint(fees.ExchangeID, exchangeMint); err != nil {
		return nil, err
	}
	if referralMint.Sign() > 0 {
		if err := p.Shares.mint(fees.ReferralID, referralMint); err != nil {
			return nil, err
		}
	}
	return amountOut, nil
}

// adminShareMints converts the protocol/referral cut of the fee-driven
// invariant growth into share amounts, rounding down in favor of LPs.
func (p *SimplePool) adminShareMints(growth, invariant *big.Int, fees AdminFees) (exchangeMint, referralMint *big.Int) {
	exchangeMint, referralMint = new(big.Int), new(big.Int)
	supply := p.Shares.TotalSupply
	if p.TotalFee == 0 || growth.Sign() <= 0 || supply.Sign() == 0 {
		return exchangeMint, referralMint
	}
	totalFee := feeRatio(p.TotalFee)
	refValue := mulDiv(growth, feeRatio(fees.ReferralFee), totalFee)
	exValue := mulDiv(growth, feeRatio(fees.ExchangeFee), totalFee)
	if fees.ReferralID == "" || !p.Shares.HasRegistered(fees.ReferralID) {
		exValue.Add(exValue, refValue)
		refValue = new(big.Int)
	}
	if fees.ExchangeID == "" {
		exValue = new(big.Int)
	}
	sharesFor := func(v *big.Int) *big.Int {
		if v.Sign() <= 0 || v.Cmp(invariant) >= 0 {
			return new(big.Int)
		}
		return mulDiv(supply, v, new(big.Int).Sub(invariant, v))
	}
	return sharesFor(exValue), sharesFor(refValue)
}
