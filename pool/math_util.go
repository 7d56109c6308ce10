// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/vortelus/ref-contracts/consts"
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)

	feeDivisor     = big.NewInt(int64(consts.FeeDivisor))
	ratePrecision  = new(big.Int).SetUint64(consts.RatePrecision)
	pricePrecision = new(big.Int).SetUint64(consts.SharePricePrecision)

	// maxBalance is the largest value persistable as a u128.
	maxBalance = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 128), bigOne)

	// initShareSupply is minted on the first deposit into an empty
	// constant-product pool, independent of the basket size.
	initShareSupply = pow10(consts.SimpleShareDecimals)
)

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// checkBalance rejects any balance outside the persistable u128 range.
func checkBalance(v *big.Int) error {
	if v.Sign() < 0 || v.Cmp(maxBalance) > 0 {
		return ErrArithmeticOverflow
	}
	return nil
}

// mulDiv returns floor(a * b / div).
func mulDiv(a, b, div *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Div(out, div)
}

// mulDivCeil returns ceil(a * b / div).
func mulDivCeil(a, b, div *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	rem := new(big.Int)
	out.DivMod(out, div, rem)
	if rem.Sign() > 0 {
		out.Add(out, bigOne)
	}
	return out
}

func feeRatio(rate uint32) *big.Int {
	return big.NewInt(int64(rate))
}

func sumAmounts(amounts []*big.Int) *big.Int {
	sum := new(big.Int)
	for _, a := range amounts {
		sum.Add(sum, a)
	}
	return sum
}

func zeroAmounts(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int)
	}
	return out
}

// validAmounts checks a caller-supplied amount vector against the
// pool's token count. When strict is set every entry must be positive;
// otherwise zero entries are allowed but negatives never are.
func validAmounts(amounts []*big.Int, n int, strict bool) error {
	if len(amounts) != n {
		return ErrWrongAmountCount
	}
	for _, a := range amounts {
		if a == nil || a.Sign() < 0 {
			return ErrInvalidAmount
		}
		if strict && a.Sign() == 0 {
			return ErrInvalidAmount
		}
		if a.Cmp(maxBalance) > 0 {
			return ErrArithmeticOverflow
		}
	}
	return nil
}

// amountToComparable brings a raw token amount to the pool's target
// decimals. Token decimals never exceed the target, so this only
// multiplies and cannot lose precision.
func amountToComparable(amount *big.Int, decimals, target uint8) *big.Int {
	if decimals == target {
		return new(big.Int).Set(amount)
	}
	return new(big.Int).Mul(amount, pow10(target-decimals))
}

// comparableToAmount floors a comparable amount back to raw token
// units.
func comparableToAmount(c *big.Int, decimals, target uint8) *big.Int {
	if decimals == target {
		return new(big.Int).Set(c)
	}
	return new(big.Int).Div(c, pow10(target-decimals))
}

func absDiff(a, b *big.Int) *big.Int {
	out := new(big.Int).Sub(a, b)
	return out.Abs(out)
}
