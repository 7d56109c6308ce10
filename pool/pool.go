// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pool implements the pricing and accounting core of a
// multi-asset automated market maker: per-pool reserves, an LP share
// ledger, and deterministic add/remove/swap operations behind one
// dispatch surface. Four curve kinds coexist; the kind is fixed at
// creation and operations a kind does not define fail with
// ErrUnsupportedOperation rather than silently diverging.
package pool

import (
	"math/big"

	"github.com/vortelus/ref-contracts/consts"
)

// PoolKind tags the active curve variant.
type PoolKind uint8

const (
	SimplePoolKind PoolKind = iota
	StableSwapPoolKind
	RatedSwapPoolKind
	DegenSwapPoolKind
)

func (k PoolKind) String() string {
	switch k {
	case SimplePoolKind:
		return "SIMPLE_POOL"
	case StableSwapPoolKind:
		return "STABLE_SWAP"
	case RatedSwapPoolKind:
		return "RATED_SWAP"
	case DegenSwapPoolKind:
		return "DEGEN_SWAP"
	default:
		return "UNKNOWN"
	}
}

// PoolLimit is the externally configured risk cap for one pool.
type PoolLimit struct {
	TvlLimit *big.Int
}

// RiskReader supplies TVL limits per pool id. It is passed into the
// TVL guard explicitly so the core stays testable without a live
// configuration store.
type RiskReader interface {
	PoolLimit(poolID uint64) (PoolLimit, bool)
}

// Pool is a closed tagged union over the curve variants: exactly one
// field is non-nil for the pool's whole lifetime. New kinds extend the
// union without disturbing existing ones.
type Pool struct {
	Simple *SimplePool
	Stable *StableSwapPool
	Rated  *RatedSwapPool
	Degen  *DegenSwapPool
}

func NewSimple(p *SimplePool) Pool         { return Pool{Simple: p} }
func NewStableSwap(p *StableSwapPool) Pool { return Pool{Stable: p} }
func NewRatedSwap(p *RatedSwapPool) Pool   { return Pool{Rated: p} }
func NewDegenSwap(p *DegenSwapPool) Pool   { return Pool{Degen: p} }

func (p *Pool) Kind() PoolKind {
	switch {
	case p.Simple != nil:
		return SimplePoolKind
	case p.Stable != nil:
		return StableSwapPoolKind
	case p.Rated != nil:
		return RatedSwapPoolKind
	default:
		return DegenSwapPoolKind
	}
}

// Tokens returns the pool's ordered token set.
func (p *Pool) Tokens() []string {
	switch {
	case p.Simple != nil:
		return p.Simple.Tokens()
	case p.Stable != nil:
		return p.Stable.Tokens()
	case p.Rated != nil:
		return p.Rated.Tokens()
	default:
		return p.Degen.Tokens()
	}
}

// ModifyTotalFee sets the pool's total fee, bounded by the kind's
// maximum.
func (p *Pool) ModifyTotalFee(totalFee uint32) error {
	switch {
	case p.Simple != nil:
		return p.Simple.ModifyTotalFee(totalFee)
	case p.Stable != nil:
		return p.Stable.ModifyTotalFee(totalFee)
	case p.Rated != nil:
		return p.Rated.ModifyTotalFee(totalFee)
	default:
		return p.Degen.ModifyTotalFee(totalFee)
	}
}

// GetFee returns the pool's current total fee.
func (p *Pool) GetFee() uint32 {
	switch {
	case p.Simple != nil:
		return p.Simple.TotalFee
	case p.Stable != nil:
		return p.Stable.TotalFee
	case p.Rated != nil:
		return p.Rated.TotalFee
	default:
		return p.Degen.TotalFee
	}
}

// GetVolumes returns a copy of the per-token cumulative swap volumes.
func (p *Pool) GetVolumes() []SwapVolume {
	switch {
	case p.Simple != nil:
		return copyVolumes(p.Simple.Volumes)
	case p.Stable != nil:
		return copyVolumes(p.Stable.Volumes)
	case p.Rated != nil:
		return copyVolumes(p.Rated.Volumes)
	default:
		return copyVolumes(p.Degen.Volumes)
	}
}

// ShareDecimals returns the fixed decimals of the pool's share unit.
func (p *Pool) ShareDecimals() uint8 {
	switch {
	case p.Simple != nil:
		return consts.SimpleShareDecimals
	case p.Stable != nil:
		return consts.StableShareDecimals
	case p.Rated != nil:
		return consts.RatedShareDecimals
	default:
		return consts.DegenShareDecimals
	}
}

// AddLiquidity deposits at the current reserve ratio. Only the
// constant-product kind supports this simple form; the stable family
// requires the fee-aware AddStableLiquidity.
func (p *Pool) AddLiquidity(sender string, amounts []*big.Int, simulate bool) (*big.Int, []*big.Int, error) {
	if p.Simple == nil {
		return nil, nil, ErrUnsupportedOperation
	}
	return p.Simple.AddLiquidity(sender, amounts, simulate)
}

// AddStableLiquidity deposits into a stable-family pool, minting
// shares proportional to invariant growth and charging the imbalance
// fee on any deviation from the pool's balanced ratio.
func (p *Pool) AddStableLiquidity(sender string, amounts []*big.Int, minShares *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	switch {
	case p.Stable != nil:
		return p.Stable.AddLiquidity(sender, amounts, minShares, fees, simulate)
	case p.Rated != nil:
		return p.Rated.AddLiquidity(sender, amounts, minShares, fees, simulate)
	case p.Degen != nil:
		return p.Degen.AddLiquidity(sender, amounts, minShares, fees, simulate)
	default:
		return nil, ErrUnsupportedOperation
	}
}

// RemoveLiquidity withdraws proportionally by share count. Valid on
// every kind.
func (p *Pool) RemoveLiquidity(sender string, shares *big.Int, minAmounts []*big.Int, simulate bool) ([]*big.Int, error) {
	switch {
	case p.Simple != nil:
		return p.Simple.RemoveLiquidity(sender, shares, minAmounts, simulate)
	case p.Stable != nil:
		return p.Stable.RemoveLiquidityByShares(sender, shares, minAmounts, simulate)
	case p.Rated != nil:
		return p.Rated.RemoveLiquidityByShares(sender, shares, minAmounts, simulate)
	default:
		return p.Degen.RemoveLiquidityByShares(sender, shares, minAmounts, simulate)
	}
}

// RemoveLiquidityByTokens withdraws an exact basket from a
// stable-family pool, burning shares by invariant shrinkage.
func (p *Pool) RemoveLiquidityByTokens(sender string, amounts []*big.Int, maxBurnShares *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	switch {
	case p.Stable != nil:
		return p.Stable.RemoveLiquidityByTokens(sender, amounts, maxBurnShares, fees, simulate)
	case p.Rated != nil:
		return p.Rated.RemoveLiquidityByTokens(sender, amounts, maxBurnShares, fees, simulate)
	case p.Degen != nil:
		return p.Degen.RemoveLiquidityByTokens(sender, amounts, maxBurnShares, fees, simulate)
	default:
		return nil, ErrUnsupportedOperation
	}
}

// Swap trades an exact input. Valid on every kind.
func (p *Pool) Swap(tokenIn string, amountIn *big.Int, tokenOut string, minAmountOut *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	switch {
	case p.Simple != nil:
		return p.Simple.Swap(tokenIn, amountIn, tokenOut, minAmountOut, fees, simulate)
	case p.Stable != nil:
		return p.Stable.Swap(tokenIn, amountIn, tokenOut, minAmountOut, fees, simulate)
	case p.Rated != nil:
		return p.Rated.Swap(tokenIn, amountIn, tokenOut, minAmountOut, fees, simulate)
	default:
		return p.Degen.Swap(tokenIn, amountIn, tokenOut, minAmountOut, fees, simulate)
	}
}

// SwapByOutput trades for an exact output. Only the constant-product
// kind supports it; stable-family invariants would need the expensive
// iterative inversion, so callers quote exact-input externally there.
// A nil maxAmountIn means unbounded.
func (p *Pool) SwapByOutput(tokenIn string, amountOut *big.Int, tokenOut string, maxAmountIn *big.Int, fees AdminFees, simulate bool) (*big.Int, error) {
	if p.Simple == nil {
		return nil, ErrUnsupportedOperation
	}
	return p.Simple.SwapByOutput(tokenIn, amountOut, tokenOut, maxAmountIn, fees, simulate)
}

// GetSharePrice returns reserve value per share scaled by
// SharePricePrecision. Constant-product pools have no numeraire-free
// price, so the operation is undefined there.
func (p *Pool) GetSharePrice() (*big.Int, error) {
	switch {
	case p.Stable != nil:
		return p.Stable.SharePrice()
	case p.Rated != nil:
		return p.Rated.SharePrice()
	case p.Degen != nil:
		return p.Degen.SharePrice()
	default:
		return nil, ErrUnsupportedOperation
	}
}

// GetTvl returns the pool's total value in the reference unit; defined
// only for the degen kind, where it gates deposits.
func (p *Pool) GetTvl() (*big.Int, error) {
	if p.Degen == nil {
		return nil, ErrUnsupportedOperation
	}
	return p.Degen.Tvl()
}

// UpdateTokenRates caches a fresh rate or price vector from the
// oracle. Defined for the rate-adjusted kinds only.
func (p *Pool) UpdateTokenRates(rates []*big.Int) error {
	switch {
	case p.Rated != nil:
		return p.Rated.UpdateRates(rates)
	case p.Degen != nil:
		return p.Degen.UpdateDegenPrices(rates)
	default:
		return ErrUnsupportedOperation
	}
}

// PredictAddRatedLiquidity quotes AddStableLiquidity on a rated pool
// under an optional hypothetical rate vector. Read-only.
func (p *Pool) PredictAddRatedLiquidity(amounts []*big.Int, rates []*big.Int, fees AdminFees) (*big.Int, error) {
	if p.Rated == nil {
		return nil, ErrUnsupportedOperation
	}
	return p.Rated.PredictAddLiquidity(amounts, rates, fees)
}

// PredictAddDegenLiquidity quotes AddStableLiquidity on a degen pool
// under an optional hypothetical price vector. Read-only.
func (p *Pool) PredictAddDegenLiquidity(amounts []*big.Int, prices []*big.Int, fees AdminFees) (*big.Int, error) {
	if p.Degen == nil {
		return nil, ErrUnsupportedOperation
	}
	return p.Degen.PredictAddLiquidity(amounts, prices, fees)
}

// PredictRemoveRatedLiquidityByTokens quotes the share burn for an
// exact basket withdrawal from a rated pool. Read-only.
func (p *Pool) PredictRemoveRatedLiquidityByTokens(amounts []*big.Int, rates []*big.Int, fees AdminFees) (*big.Int, error) {
	if p.Rated == nil {
		return nil, ErrUnsupportedOperation
	}
	return p.Rated.PredictRemoveLiquidityByTokens(amounts, rates, fees)
}

// PredictRemoveDegenLiquidityByTokens quotes the share burn for an
// exact basket withdrawal from a degen pool. Read-only.
func (p *Pool) PredictRemoveDegenLiquidityByTokens(amounts []*big.Int, prices []*big.Int, fees AdminFees) (*big.Int, error) {
	if p.Degen == nil {
		return nil, ErrUnsupportedOperation
	}
	return p.Degen.PredictRemoveLiquidityByTokens(amounts, prices, fees)
}

// GetRatedReturn quotes a swap on a rated pool under an optional
// hypothetical rate vector. Read-only.
func (p *Pool) GetRatedReturn(tokenIn string, amountIn *big.Int, tokenOut string, rates []*big.Int, fees AdminFees) (*big.Int, error) {
	if p.Rated == nil {
		return nil, ErrUnsupportedOperation
	}
	return p.Rated.GetReturn(tokenIn, amountIn, tokenOut, rates, fees)
}

// GetDegenReturn quotes a swap on a degen pool under an optional
// hypothetical price vector. Read-only.
func (p *Pool) GetDegenReturn(tokenIn string, amountIn *big.Int, tokenOut string, prices []*big.Int, fees AdminFees) (*big.Int, error) {
	if p.Degen == nil {
		return nil, ErrUnsupportedOperation
	}
	return p.Degen.GetReturn(tokenIn, amountIn, tokenOut, prices, fees)
}

func (p *Pool) ledger() *ShareLedger {
	switch {
	case p.Simple != nil:
		return &p.Simple.Shares
	case p.Stable != nil:
		return &p.Stable.Shares
	case p.Rated != nil:
		return &p.Rated.Shares
	default:
		return &p.Degen.Shares
	}
}

// ShareTotalBalance returns the outstanding share supply.
func (p *Pool) ShareTotalBalance() *big.Int {
	return p.ledger().TotalShares()
}

// ShareBalances returns the account's share balance.
func (p *Pool) ShareBalances(accountID string) *big.Int {
	return p.ledger().BalanceOf(accountID)
}

// ShareTransfer moves shares between registered accounts.
func (p *Pool) ShareTransfer(sender, receiver string, amount *big.Int) error {
	return p.ledger().Transfer(sender, receiver, amount)
}

// ShareHasRegistered reports whether the account is on the ledger.
func (p *Pool) ShareHasRegistered(accountID string) bool {
	return p.ledger().HasRegistered(accountID)
}

// ShareRegister adds the account to the ledger at zero balance.
func (p *Pool) ShareRegister(accountID string) {
	p.ledger().Register(accountID)
}

// ShareUnregister removes a zero-balance account from the ledger.
func (p *Pool) ShareUnregister(accountID string) error {
	return p.ledger().Unregister(accountID)
}

// AssertTvlNotExceedLimit fails if a degen pool's value exceeds its
// configured limit. The host calls it after any reserve-increasing
// operation and must discard all of the operation's state changes on
// failure. A no-op for every other kind and for pools with no
// configured limit.
func (p *Pool) AssertTvlNotExceedLimit(risk RiskReader, poolID uint64) error {
	if p.Degen == nil || risk == nil {
		return nil
	}
	limit, ok := risk.PoolLimit(poolID)
	if !ok || limit.TvlLimit == nil {
		return nil
	}
	tvl, err := p.Degen.Tvl()
	if err != nil {
		return err
	}
	if tvl.Cmp(limit.TvlLimit) > 0 {
		return ErrTvlLimitExceeded
	}
	return nil
}
