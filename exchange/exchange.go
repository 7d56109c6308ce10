// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package exchange hosts the pool registry: it loads pool records from
// storage, runs one pricing operation against the in-memory pool, and
// persists the result only if the operation and every guard passed.
// Because the loaded pool is a fresh decode, a failed operation leaves
// stored state untouched.
package exchange

import (
	"context"
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vortelus/ref-contracts/pool"
	"github.com/vortelus/ref-contracts/storage"
)

// Config fixes the exchange's protocol fee split. The referral account
// varies per trade and is passed with each swap. The split is validated
// against each pool's total fee per operation, so a pool whose total
// fee is below ExchangeFee+ReferralFee rejects every fee-bearing
// operation with ErrFeeTooHigh.
type Config struct {
	ExchangeFee uint32
	ReferralFee uint32
	ExchangeID  string
}

type Exchange struct {
	log     *zap.Logger
	store   storage.Mutable
	risk    pool.RiskReader
	cfg     Config
	metrics *metrics
}

func New(log *zap.Logger, store storage.Mutable, risk pool.RiskReader, cfg Config, r prometheus.Registerer) (*Exchange, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m, err := newMetrics(r)
	if err != nil {
		return nil, err
	}
	return &Exchange{
		log:     log,
		store:   store,
		risk:    risk,
		cfg:     cfg,
		metrics: m,
	}, nil
}

func (e *Exchange) adminFees(referralID string) pool.AdminFees {
	return pool.AdminFees{
		ExchangeFee: e.cfg.ExchangeFee,
		ReferralFee: e.cfg.ReferralFee,
		ExchangeID:  e.cfg.ExchangeID,
		ReferralID:  referralID,
	}
}

// addPool assigns the next dense pool id and persists the new pool.
func (e *Exchange) addPool(ctx context.Context, p pool.Pool) (uint64, error) {
	id, err := storage.GetPoolCount(ctx, e.store)
	if err != nil {
		return 0, err
	}
	// A record under the next id means the counter is behind the store;
	// refuse to clobber it.
	occupied, err := storage.PoolExists(ctx, e.store, id)
	if err != nil {
		return 0, err
	}
	if occupied {
		return 0, storage.ErrPoolIDOccupied
	}
	if err := storage.SetPool(ctx, e.store, id, &p); err != nil {
		return 0, err
	}
	if err := storage.SetPoolCount(ctx, e.store, id+1); err != nil {
		return 0, err
	}
	e.metrics.poolsCreated.Inc()
	e.log.Info("pool created",
		zap.Uint64("poolID", id),
		zap.Stringer("kind", p.Kind()),
		zap.Strings("tokens", p.Tokens()),
	)
	return id, nil
}

func (e *Exchange) CreateSimplePool(ctx context.Context, tokenIDs []string, totalFee uint32) (uint64, error) {
	p, err := pool.NewSimplePool(tokenIDs, totalFee)
	if err != nil {
		return 0, err
	}
	return e.addPool(ctx, pool.NewSimple(p))
}

func (e *Exchange) CreateStableSwapPool(ctx context.Context, tokenIDs []string, tokenDecimals []uint8, ampFactor uint64, totalFee uint32) (uint64, error) {
	p, err := pool.NewStableSwapPool(tokenIDs, tokenDecimals, ampFactor, totalFee)
	if err != nil {
		return 0, err
	}
	return e.addPool(ctx, pool.NewStableSwap(p))
}

func (e *Exchange) CreateRatedSwapPool(ctx context.Context, tokenIDs []string, tokenDecimals []uint8, ampFactor uint64, totalFee uint32) (uint64, error) {
	p, err := pool.NewRatedSwapPool(tokenIDs, tokenDecimals, ampFactor, totalFee)
	if err != nil {
		return 0, err
	}
	return e.addPool(ctx, pool.NewRatedSwap(p))
}

func (e *Exchange) CreateDegenSwapPool(ctx context.Context, tokenIDs []string, tokenDecimals []uint8, ampFactor uint64, totalFee uint32) (uint64, error) {
	p, err := pool.NewDegenSwapPool(tokenIDs, tokenDecimals, ampFactor, totalFee)
	if err != nil {
		return 0, err
	}
	return e.addPool(ctx, pool.NewDegenSwap(p))
}

// GetPool loads a fresh copy of the pool. Mutating the copy does not
// affect stored state.
func (e *Exchange) GetPool(ctx context.Context, poolID uint64) (pool.Pool, error) {
	return storage.GetPool(ctx, e.store, poolID)
}

// PoolCount returns the number of pools created so far.
func (e *Exchange) PoolCount(ctx context.Context) (uint64, error) {
	return storage.GetPoolCount(ctx, e.store)
}

// updatePool is the single state-changing path: load, mutate, guard,
// persist. Any error discards the mutation.
func (e *Exchange) updatePool(ctx context.Context, poolID uint64, guardTvl bool, fn func(p *pool.Pool) error) error {
	p, err := storage.GetPool(ctx, e.store, poolID)
	if err != nil {
		return err
	}
	if err := fn(&p); err != nil {
		e.metrics.opFailures.Inc()
		return err
	}
	if guardTvl {
		if err := p.AssertTvlNotExceedLimit(e.risk, poolID); err != nil {
			e.metrics.opFailures.Inc()
			e.log.Warn("tvl limit rejected operation", zap.Uint64("poolID", poolID), zap.Error(err))
			return err
		}
	}
	return storage.SetPool(ctx, e.store, poolID, &p)
}

func (e *Exchange) ModifyTotalFee(ctx context.Context, poolID uint64, totalFee uint32) error {
	return e.updatePool(ctx, poolID, false, func(p *pool.Pool) error {
		return p.ModifyTotalFee(totalFee)
	})
}

// AddLiquidity deposits into a constant-product pool at the current
// reserve ratio and returns the shares minted and the amounts consumed.
func (e *Exchange) AddLiquidity(ctx context.Context, poolID uint64, sender string, amounts []*big.Int) (*big.Int, []*big.Int, error) {
	var minted *big.Int
	var used []*big.Int
	err := e.updatePool(ctx, poolID, true, func(p *pool.Pool) error {
		var err error
		minted, used, err = p.AddLiquidity(sender, amounts, false)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	e.metrics.liquidityOps.WithLabelValues("add").Inc()
	e.log.Debug("liquidity added",
		zap.Uint64("poolID", poolID),
		zap.String("sender", sender),
		zap.Stringer("minted", minted),
	)
	return minted, used, nil
}

// AddStableLiquidity deposits into a stable-family pool, rejecting the
// trade if fewer than minShares would be minted.
func (e *Exchange) AddStableLiquidity(ctx context.Context, poolID uint64, sender string, amounts []*big.Int, minShares *big.Int, referralID string) (*big.Int, error) {
	var minted *big.Int
	err := e.updatePool(ctx, poolID, true, func(p *pool.Pool) error {
		var err error
		minted, err = p.AddStableLiquidity(sender, amounts, minShares, e.adminFees(referralID), false)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.metrics.liquidityOps.WithLabelValues("add_stable").Inc()
	e.log.Debug("stable liquidity added",
		zap.Uint64("poolID", poolID),
		zap.String("sender", sender),
		zap.Stringer("minted", minted),
	)
	return minted, nil
}

// RemoveLiquidity burns shares for a proportional withdrawal.
func (e *Exchange) RemoveLiquidity(ctx context.Context, poolID uint64, sender string, shares *big.Int, minAmounts []*big.Int) ([]*big.Int, error) {
	var amounts []*big.Int
	err := e.updatePool(ctx, poolID, false, func(p *pool.Pool) error {
		var err error
		amounts, err = p.RemoveLiquidity(sender, shares, minAmounts, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.metrics.liquidityOps.WithLabelValues("remove").Inc()
	e.log.Debug("liquidity removed",
		zap.Uint64("poolID", poolID),
		zap.String("sender", sender),
		zap.Stringer("shares", shares),
	)
	return amounts, nil
}

// RemoveLiquidityByTokens withdraws an exact basket from a
// stable-family pool, rejecting the trade if more than maxBurnShares
// would burn.
func (e *Exchange) RemoveLiquidityByTokens(ctx context.Context, poolID uint64, sender string, amounts []*big.Int, maxBurnShares *big.Int, referralID string) (*big.Int, error) {
	var burned *big.Int
	err := e.updatePool(ctx, poolID, false, func(p *pool.Pool) error {
		var err error
		burned, err = p.RemoveLiquidityByTokens(sender, amounts, maxBurnShares, e.adminFees(referralID), false)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.metrics.liquidityOps.WithLabelValues("remove_by_tokens").Inc()
	e.log.Debug("liquidity removed by tokens",
		zap.Uint64("poolID", poolID),
		zap.String("sender", sender),
		zap.Stringer("burned", burned),
	)
	return burned, nil
}

// Swap trades an exact input against the pool.
func (e *Exchange) Swap(ctx context.Context, poolID uint64, tokenIn string, amountIn *big.Int, tokenOut string, minAmountOut *big.Int, referralID string) (*big.Int, error) {
	var amountOut *big.Int
	var kind pool.PoolKind
	err := e.updatePool(ctx, poolID, true, func(p *pool.Pool) error {
		kind = p.Kind()
		var err error
		amountOut, err = p.Swap(tokenIn, amountIn, tokenOut, minAmountOut, e.adminFees(referralID), false)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.metrics.swaps.WithLabelValues(kind.String()).Inc()
	e.log.Debug("swap",
		zap.Uint64("poolID", poolID),
		zap.String("tokenIn", tokenIn),
		zap.String("tokenOut", tokenOut),
		zap.Stringer("amountIn", amountIn),
		zap.Stringer("amountOut", amountOut),
	)
	return amountOut, nil
}

// SwapByOutput trades for an exact output on a constant-product pool
// and returns the input charged.
func (e *Exchange) SwapByOutput(ctx context.Context, poolID uint64, tokenIn string, amountOut *big.Int, tokenOut string, maxAmountIn *big.Int, referralID string) (*big.Int, error) {
	var amountIn *big.Int
	var kind pool.PoolKind
	err := e.updatePool(ctx, poolID, true, func(p *pool.Pool) error {
		kind = p.Kind()
		var err error
		amountIn, err = p.SwapByOutput(tokenIn, amountOut, tokenOut, maxAmountIn, e.adminFees(referralID), false)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.metrics.swaps.WithLabelValues(kind.String()).Inc()
	e.log.Debug("swap by output",
		zap.Uint64("poolID", poolID),
		zap.String("tokenIn", tokenIn),
		zap.String("tokenOut", tokenOut),
		zap.Stringer("amountIn", amountIn),
		zap.Stringer("amountOut", amountOut),
	)
	return amountIn, nil
}

// UpdateTokenRates caches a fresh oracle rate or price vector on a
// rate-adjusted pool.
func (e *Exchange) UpdateTokenRates(ctx context.Context, poolID uint64, rates []*big.Int) error {
	return e.updatePool(ctx, poolID, false, func(p *pool.Pool) error {
		return p.UpdateTokenRates(rates)
	})
}

// RegisterAccount adds the account to the pool's share ledger.
func (e *Exchange) RegisterAccount(ctx context.Context, poolID uint64, accountID string) error {
	return e.updatePool(ctx, poolID, false, func(p *pool.Pool) error {
		p.ShareRegister(accountID)
		return nil
	})
}

// UnregisterAccount removes a zero-balance account from the ledger.
func (e *Exchange) UnregisterAccount(ctx context.Context, poolID uint64, accountID string) error {
	return e.updatePool(ctx, poolID, false, func(p *pool.Pool) error {
		return p.ShareUnregister(accountID)
	})
}

// TransferShares moves pool shares between registered accounts.
func (e *Exchange) TransferShares(ctx context.Context, poolID uint64, sender, receiver string, amount *big.Int) error {
	return e.updatePool(ctx, poolID, false, func(p *pool.Pool) error {
		return p.ShareTransfer(sender, receiver, amount)
	})
}

// ShareBalance returns the account's share balance in the pool.
func (e *Exchange) ShareBalance(ctx context.Context, poolID uint64, accountID string) (*big.Int, error) {
	p, err := e.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return p.ShareBalances(accountID), nil
}

// TotalShares returns the pool's outstanding share supply.
func (e *Exchange) TotalShares(ctx context.Context, poolID uint64) (*big.Int, error) {
	p, err := e.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return p.ShareTotalBalance(), nil
}

// GetReturn quotes an exact-input swap without touching stored state.
// Rate-adjusted kinds quote at their cached rates.
func (e *Exchange) GetReturn(ctx context.Context, poolID uint64, tokenIn string, amountIn *big.Int, tokenOut string) (*big.Int, error) {
	p, err := e.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return p.Swap(tokenIn, amountIn, tokenOut, nil, e.adminFees(""), true)
}
