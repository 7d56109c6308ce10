// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/vortelus/ref-contracts/consts"
)

// The stable-family invariant for amplification A over n balances x_i:
//
//	A * n**n * Sum(x_i) + D = A * D * n**n + D**(n+1) / (n**n * Prod(x_i))
//
// computeD solves for D with the converging iteration
//
//	D[j+1] = (Ann*S + n*D_P) * D[j] / ((Ann-1)*D[j] + (n+1)*D_P)
//
// where Ann = A * n**n and D_P = D**(n+1) / (n**n * Prod(x_i)). All
// divisions floor, so repeated quoting cannot leak value out of the
// pool.
func computeD(amp uint64, balances []*big.Int) (*big.Int, error) {
	sum := sumAmounts(balances)
	if sum.Sign() == 0 {
		return new(big.Int), nil
	}
	n := int64(len(balances))
	nBig := big.NewInt(n)
	ann := new(big.Int).SetUint64(amp)
	for i := int64(0); i < n; i++ {
		ann.Mul(ann, nBig)
	}

	d := new(big.Int).Set(sum)
	for i := 0; i < consts.MaxStableIterations; i++ {
		dProd := new(big.Int).Set(d)
		for _, x := range balances {
			if x.Sign() == 0 {
				return nil, ErrInsufficientReserves
			}
			dProd = mulDiv(dProd, d, new(big.Int).Mul(x, nBig))
		}
		dPrev := d

		num := new(big.Int).Mul(ann, sum)
		num.Add(num, new(big.Int).Mul(nBig, dProd))
		num.Mul(num, d)
		den := new(big.Int).Mul(new(big.Int).Sub(ann, bigOne), d)
		den.Add(den, new(big.Int).Mul(big.NewInt(n+1), dProd))
		d = new(big.Int).Div(num, den)

		if absDiff(d, dPrev).Cmp(bigOne) <= 0 {
			return d, nil
		}
	}
	return nil, ErrNoConvergence
}

// computeY solves for the post-trade balance of the out token when the
// in token's balance becomes newIn, holding the invariant constant. It
// reduces to the quadratic
//
//	y**2 + y*(b - D) = c
//
// solved by y[j+1] = (y[j]**2 + c) / (2*y[j] + b - D).
func computeY(amp uint64, newIn *big.Int, balances []*big.Int, inIdx, outIdx int) (*big.Int, error) {
	d, err := computeD(amp, balances)
	if err != nil {
		return nil, err
	}
	n := int64(len(balances))
	nBig := big.NewInt(n)
	ann := new(big.Int).SetUint64(amp)
	for i := int64(0); i < n; i++ {
		ann.Mul(ann, nBig)
	}

	s := new(big.Int)
	c := new(big.Int).Set(d)
	for i, balance := range balances {
		if i == outIdx {
			continue
		}
		x := balance
		if i == inIdx {
			x = newIn
		}
		if x.Sign() == 0 {
			return nil, ErrInsufficientReserves
		}
		s.Add(s, x)
		c = mulDiv(c, d, new(big.Int).Mul(x, nBig))
	}
	c = mulDiv(c, d, new(big.Int).Mul(ann, nBig))
	b := new(big.Int).Add(s, new(big.Int).Div(d, ann))

	y := new(big.Int).Set(d)
	for i := 0; i < consts.MaxStableIterations; i++ {
		yPrev := y
		num := new(big.Int).Mul(y, y)
		num.Add(num, c)
		den := new(big.Int).Mul(bigTwo, y)
		den.Add(den, b)
		den.Sub(den, d)
		y = new(big.Int).Div(num, den)
		if absDiff(y, yPrev).Cmp(bigOne) <= 0 {
			return y, nil
		}
	}
	return nil, ErrNoConvergence
}
