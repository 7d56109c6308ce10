// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

// FeeDivisor is the denominator for every fee rate in the module. A
// total fee of 30 is 0.3%.
const FeeDivisor uint32 = 10_000

// Per-kind upper bounds enforced by ModifyTotalFee.
const (
	MaxSimplePoolFee uint32 = 2_000
	MaxStableSwapFee uint32 = 1_000
)

// Share decimals are fixed at pool creation and never change.
const (
	SimpleShareDecimals uint8 = 24
	StableShareDecimals uint8 = 18
	RatedShareDecimals  uint8 = 24
	DegenShareDecimals  uint8 = 24
)

// MaxTokenDecimals bounds the per-token decimals accepted by the
// stable-family pools; amounts are normalized up to the share decimals
// before any invariant math runs.
const MaxTokenDecimals uint8 = 24

// RatePrecision is the fixed-point denominator of the exchange-rate and
// degen-price vectors supplied by the oracle. A rate equal to
// RatePrecision means 1.0.
const RatePrecision uint64 = 100_000_000

// SharePricePrecision scales the value returned by GetSharePrice.
const SharePricePrecision uint64 = 100_000_000

// Bounds for the converging invariant iteration. Iteration stops once
// consecutive guesses differ by at most one, and fails if that never
// happens within MaxStableIterations rounds.
const MaxStableIterations = 256

const (
	MinAmpFactor uint64 = 1
	MaxAmpFactor uint64 = 1_000_000
)

const (
	MinPoolTokens = 2
	MaxPoolTokens = 8
)
