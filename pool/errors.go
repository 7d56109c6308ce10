// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import "errors"

var (
	// Dispatch and configuration errors
	ErrUnsupportedOperation = errors.New("operation not supported by this pool kind")
	ErrFeeTooHigh           = errors.New("fee exceeds pool kind maximum")
	ErrTooFewTokens         = errors.New("pool requires at least two tokens")
	ErrTooManyTokens        = errors.New("pool exceeds maximum token count")
	ErrDuplicateToken       = errors.New("duplicate token in pool")
	ErrInvalidDecimals      = errors.New("token decimals exceed supported maximum")
	ErrInvalidAmpFactor     = errors.New("amplification factor out of range")

	// Operation errors
	ErrSlippageExceeded     = errors.New("slippage exceeded")
	ErrInvalidToken         = errors.New("token not in pool or identical to counterparty")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrWrongAmountCount     = errors.New("amounts do not match pool tokens")
	ErrInsufficientReserves = errors.New("insufficient reserves")
	ErrZeroShares           = errors.New("computed shares are zero")
	ErrEmptyPool            = errors.New("pool holds no liquidity")
	ErrTvlLimitExceeded     = errors.New("pool TVL exceeds configured limit")
	ErrInvalidRates         = errors.New("rates do not match pool tokens or are zero")

	// Ledger errors
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrNotRegistered      = errors.New("account not registered")
	ErrNonEmptyAccount    = errors.New("account still holds shares")

	// Arithmetic errors. Balance math that leaves the 128-bit range or
	// fails to converge aborts the operation; it is never truncated.
	ErrArithmeticOverflow = errors.New("balance does not fit 128 bits")
	ErrNoConvergence      = errors.New("invariant iteration did not converge")
)
