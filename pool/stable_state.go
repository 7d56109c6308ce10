// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/vortelus/ref-contracts/consts"
)

// stableState is a view over the fields shared by the stable-family
// pool kinds. The slices and ledger alias the owning pool, so commits
// mutate the pool in place. Every operation computes and validates
// fully before the first mutation; with simulate set the commit is
// skipped entirely.
//
// factors is the conversion vector of the rate-adjusted and degen
// kinds (RatePrecision fixed point); nil means raw stableswap. A
// balance is "normalized" once brought to target decimals and
// multiplied by its factor, which is the unit all invariant math runs
// in.
type stableState struct {
	tokens   []string
	decimals []uint8
	c        []*big.Int
	volumes  []SwapVolume
	totalFee uint32
	amp      uint64
	target   uint8
	ledger   *ShareLedger
}

func (s stableState) n() int {
	return len(s.tokens)
}

func (s stableState) tokenIndex(tokenID string) (int, error) {
	for i, id := range s.tokens {
		if id == tokenID {
			return i, nil
		}
	}
	return 0, ErrInvalidToken
}

func (s stableState) toNorm(v *big.Int, factors []*big.Int, i int) *big.Int {
	if factors == nil {
		return new(big.Int).Set(v)
	}
	return mulDiv(v, factors[i], ratePrecision)
}

func (s stableState) fromNorm(v *big.Int, factors []*big.Int, i int) *big.Int {
	if factors == nil {
		return new(big.Int).Set(v)
	}
	return mulDiv(v, ratePrecision, factors[i])
}

func (s stableState) normalized(factors []*big.Int) []*big.Int {
	out := make([]*big.Int, s.n())
	for i, c := range s.c {
		out[i] = s.toNorm(c, factors, i)
	}
	return out
}

// imbalanceFeeRate is the fee applied to the portion of a deposit or
// by-token withdrawal that deviates from the pool's balanced ratio:
// totalFee * n / (4 * (n - 1)), the stableswap convention that makes a
// maximally imbalanced deposit cost the same as swapping in.
func (s stableState) imbalanceFeeRate() *big.Int {
	rate := big.NewInt(int64(s.totalFee))
	rate.Mul(rate, big.NewInt(int64(s.n())))
	return rate.Div(rate, big.NewInt(int64(4*(s.n()-1))))
}

// adjustedForImbalance charges the imbalance fee on each balance's
// deviation from the ideal post-operation balance d1/d0 * old_i and
// returns the fee-adjusted balances.
func (s stableState) adjustedForImbalance(oldNorm, newNorm []*big.Int, d0, d1 *big.Int) ([]*big.Int, error) {
	rate := s.imbalanceFeeRate()
	adjusted := make([]*big.Int, s.n())
	for i := range adjusted {
		ideal := mulDiv(d1, oldNorm[i], d0)
		fee := mulDiv(absDiff(ideal, newNorm[i]), rate, feeDivisor)
		adjusted[i] = new(big.Int).Sub(newNorm[i], fee)
		if adjusted[i].Sign() <= 0 {
			return nil, ErrInsufficientReserves
		}
	}
	return adjusted, nil
}

// adminShareMints converts the protocol/referral cut of a fee already
// retained in reserves into share amounts. value is the fee's
// invariant value, invariant the post-operation invariant, supply the
// share supply being diluted. Both results round down, in favor of
// incumbent LPs. A referral that never registered on this pool's
// ledger forfeits its cut to the exchange account.
func (s stableState) adminShareMints(value, invariant, supply *big.Int, fees AdminFees) (exchangeMint, referralMint *big.Int) {
	exchangeMint, referralMint = new(big.Int), new(big.Int)
	if s.totalFee == 0 || value == nil || value.Sign() <= 0 || supply.Sign() == 0 {
		return exchangeMint, referralMint
	}
	totalFee := feeRatio(s.totalFee)
	refValue := mulDiv(value, feeRatio(fees.ReferralFee), totalFee)
	exValue := mulDiv(value, feeRatio(fees.ExchangeFee), totalFee)
	if fees.ReferralID == "" || !s.ledger.HasRegistered(fees.ReferralID) {
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

func (s stableState) commitAdminMints(fees AdminFees, exchangeMint, referralMint *big.Int) error {
	if err := s.ledger.mint(fees.ExchangeID, exchangeMint); err != nil {
		return err
	}
	if referralMint.Sign() > 0 {
		return s.ledger.mint(fees.ReferralID, referralMint)
	}
	return nil
}

// addLiquidity mints shares proportional to invariant growth. The
// first deposit must fund every token and mints shares equal to the
// invariant itself; later deposits pay the imbalance fee on any
// deviation from the current ratio.
func (s stableState) addLiquidity(sender string, amounts []*big.Int, minShares *big.Int, fees AdminFees, factors []*big.Int, simulate bool) (*big.Int, error) {
	if err := fees.validate(s.totalFee); err != nil {
		return nil, err
	}
	supply := s.ledger.TotalSupply
	first := supply.Sign() == 0
	if err := validAmounts(amounts, s.n(), first); err != nil {
		return nil, err
	}
	if sumAmounts(amounts).Sign() == 0 {
		return nil, ErrInvalidAmount
	}

	cIn := make([]*big.Int, s.n())
	newC := make([]*big.Int, s.n())
	newNorm := make([]*big.Int, s.n())
	for i := range amounts {
		cIn[i] = amountToComparable(amounts[i], s.decimals[i], s.target)
		newC[i] = new(big.Int).Add(s.c[i], cIn[i])
		if err := checkBalance(newC[i]); err != nil {
			return nil, err
		}
		newNorm[i] = s.toNorm(newC[i], factors, i)
	}

	var (
		minted                     *big.Int
		exchangeMint, referralMint = new(big.Int), new(big.Int)
	)
	if first {
		d1, err := computeD(s.amp, newNorm)
		if err != nil {
			return nil, err
		}
		minted = d1
	} else {
		oldNorm := s.normalized(factors)
		d0, err := computeD(s.amp, oldNorm)
		if err != nil {
			return nil, err
		}
		d1, err := computeD(s.amp, newNorm)
		if err != nil {
			return nil, err
		}
		if d1.Cmp(d0) <= 0 {
			return nil, ErrInvalidAmount
		}
		adjusted, err := s.adjustedForImbalance(oldNorm, newNorm, d0, d1)
		if err != nil {
			return nil, err
		}
		d2, err := computeD(s.amp, adjusted)
		if err != nil {
			return nil, err
		}
		minted = mulDiv(supply, new(big.Int).Sub(d2, d0), d0)
		feeValue := new(big.Int).Sub(d1, d2)
		exchangeMint, referralMint = s.adminShareMints(feeValue, d1, supply, fees)
	}
	if minted.Sign() == 0 {
		return nil, ErrZeroShares
	}
	if minShares != nil && minted.Cmp(minShares) < 0 {
		return nil, ErrSlippageExceeded
	}
	newSupply := new(big.Int).Add(supply, minted)
	newSupply.Add(newSupply, exchangeMint)
	newSupply.Add(newSupply, referralMint)
	if err := checkBalance(newSupply); err != nil {
		return nil, err
	}

	if simulate {
		return minted, nil
	}
	for i := range newC {
		s.c[i].Set(newC[i])
	}
	if err := s.ledger.mint(sender, minted); err != nil {
		return nil, err
	}
	if err := s.commitAdminMints(fees, exchangeMint, referralMint); err != nil {
		return nil, err
	}
	return minted, nil
}

// removeByShares withdraws proportionally; no fee applies.
func (s stableState) removeByShares(sender string, shares *big.Int, minAmounts []*big.Int, simulate bool) ([]*big.Int, error) {
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := validAmounts(minAmounts, s.n(), false); err != nil {
		return nil, err
	}
	supply := s.ledger.TotalSupply
	if supply.Sign() == 0 {
		return nil, ErrEmptyPool
	}
	if s.ledger.BalanceOf(sender).Cmp(shares) < 0 {
		return nil, ErrInsufficientShares
	}

	amounts := make([]*big.Int, s.n())
	removedC := make([]*big.Int, s.n())
	for i := range amounts {
		reserve := comparableToAmount(s.c[i], s.decimals[i], s.target)
		amounts[i] = mulDiv(reserve, shares, supply)
		if amounts[i].Cmp(minAmounts[i]) < 0 {
			return nil, ErrSlippageExceeded
		}
		removedC[i] = amountToComparable(amounts[i], s.decimals[i], s.target)
		if s.c[i].Cmp(removedC[i]) < 0 {
			return nil, ErrInsufficientReserves
		}
	}

	if simulate {
		return amounts, nil
	}
	for i := range removedC {
		s.c[i].Sub(s.c[i], removedC[i])
	}
	if err := s.ledger.burn(sender, shares); err != nil {
		return nil, err
	}
	return amounts, nil
}

// computeRemoveByTokens works out the share burn and fee value for an
// exact basket withdrawal without touching state. The burn rounds up,
// against the withdrawer.
func (s stableState) computeRemoveByTokens(amounts []*big.Int, factors []*big.Int) (burned, feeValue, d1 *big.Int, newC []*big.Int, err error) {
	if err := validAmounts(amounts, s.n(), false); err != nil {
		return nil, nil, nil, nil, err
	}
	if sumAmounts(amounts).Sign() == 0 {
		return nil, nil, nil, nil, ErrInvalidAmount
	}
	supply := s.ledger.TotalSupply
	if supply.Sign() == 0 {
		return nil, nil, nil, nil, ErrEmptyPool
	}

	newC = make([]*big.Int, s.n())
	newNorm := make([]*big.Int, s.n())
	for i := range amounts {
		removed := amountToComparable(amounts[i], s.decimals[i], s.target)
		newC[i] = new(big.Int).Sub(s.c[i], removed)
		if newC[i].Sign() < 0 {
			return nil, nil, nil, nil, ErrInsufficientReserves
		}
		newNorm[i] = s.toNorm(newC[i], factors, i)
	}

	oldNorm := s.normalized(factors)
	d0, err := computeD(s.amp, oldNorm)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	d1, err = computeD(s.amp, newNorm)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	adjusted, err := s.adjustedForImbalance(oldNorm, newNorm, d0, d1)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	d2, err := computeD(s.amp, adjusted)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	burned = mulDivCeil(supply, new(big.Int).Sub(d0, d2), d0)
	if burned.Sign() <= 0 {
		return nil, nil, nil, nil, ErrZeroShares
	}
	feeValue = new(big.Int).Sub(d1, d2)
	return burned, feeValue, d1, newC, nil
}

// removeByTokensQuote prices an exact basket withdrawal with no
// withdrawing account, for the read-only prediction operations.
func (s stableState) removeByTokensQuote(amounts []*big.Int, fees AdminFees, factors []*big.Int) (*big.Int, error) {
	if err := fees.validate(s.totalFee); err != nil {
		return nil, err
	}
	burned, _, _, _, err := s.computeRemoveByTokens(amounts, factors)
	return burned, err
}

// removeByTokens withdraws an exact basket and burns shares
// proportional to invariant shrinkage plus the imbalance fee.
func (s stableState) removeByTokens(sender string, amounts []*big.Int, maxBurn *big.Int, fees AdminFees, factors []*big.Int, simulate bool) (*big.Int, error) {
	if err := fees.validate(s.totalFee); err != nil {
		return nil, err
	}
	burned, feeValue, d1, newC, err := s.computeRemoveByTokens(amounts, factors)
	if err != nil {
		return nil, err
	}
	if maxBurn != nil && burned.Cmp(maxBurn) > 0 {
		return nil, ErrSlippageExceeded
	}
	if s.ledger.BalanceOf(sender).Cmp(burned) < 0 {
		return nil, ErrInsufficientShares
	}
	remaining := new(big.Int).Sub(s.ledger.TotalSupply, burned)
	exchangeMint, referralMint := s.adminShareMints(feeValue, d1, remaining, fees)

	if simulate {
		return burned, nil
	}
	for i := range newC {
		s.c[i].Set(newC[i])
	}
	if err := s.ledger.burn(sender, burned); err != nil {
		return nil, err
	}
	if err := s.commitAdminMints(fees, exchangeMint, referralMint); err != nil {
		return nil, err
	}
	return burned, nil
}

// swap trades an exact input against the invariant. The fee is taken
// from the output side; the LP part stays in reserves and the protocol
// cut is realized as minted shares.
func (s stableState) swap(tokenIn string, amountIn *big.Int, tokenOut string, minAmountOut *big.Int, fees AdminFees, factors []*big.Int, simulate bool) (*big.Int, error) {
	in, err := s.tokenIndex(tokenIn)
	if err != nil {
		return nil, err
	}
	out, err := s.tokenIndex(tokenOut)
	if err != nil {
		return nil, err
	}
	if in == out {
		return nil, ErrInvalidToken
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := fees.validate(s.totalFee); err != nil {
		return nil, err
	}
	if s.ledger.TotalSupply.Sign() == 0 {
		return nil, ErrEmptyPool
	}

	cIn := amountToComparable(amountIn, s.decimals[in], s.target)
	norm := s.normalized(factors)
	newInNorm := new(big.Int).Add(norm[in], s.toNorm(cIn, factors, in))
	y, err := computeY(s.amp, newInNorm, norm, in, out)
	if err != nil {
		return nil, err
	}
	// Round the gross output down by one, against the trader.
	dyNorm := new(big.Int).Sub(norm[out], y)
	dyNorm.Sub(dyNorm, bigOne)
	if dyNorm.Sign() <= 0 {
		return nil, ErrInsufficientReserves
	}
	feeNorm := mulDiv(dyNorm, feeRatio(s.totalFee), feeDivisor)
	outNorm := new(big.Int).Sub(dyNorm, feeNorm)
	outC := s.fromNorm(outNorm, factors, out)
	amountOut := comparableToAmount(outC, s.decimals[out], s.target)
	if amountOut.Sign() == 0 {
		return nil, ErrInsufficientReserves
	}
	if minAmountOut != nil && amountOut.Cmp(minAmountOut) < 0 {
		return nil, ErrSlippageExceeded
	}

	newCIn := new(big.Int).Add(s.c[in], cIn)
	if err := checkBalance(newCIn); err != nil {
		return nil, err
	}
	removedC := amountToComparable(amountOut, s.decimals[out], s.target)
	newCOut := new(big.Int).Sub(s.c[out], removedC)
	if newCOut.Sign() < 0 {
		return nil, ErrInsufficientReserves
	}

	postNorm := make([]*big.Int, s.n())
	copy(postNorm, norm)
	postNorm[in] = s.toNorm(newCIn, factors, in)
	postNorm[out] = s.toNorm(newCOut, factors, out)
	dNew, err := computeD(s.amp, postNorm)
	if err != nil {
		return nil, err
	}
	exchangeMint, referralMint := s.adminShareMints(feeNorm, dNew, s.ledger.TotalSupply, fees)

	if simulate {
		return amountOut, nil
	}
	s.c[in].Set(newCIn)
	s.c[out].Set(newCOut)
	s.volumes[in].Input.Add(s.volumes[in].Input, amountIn)
	s.volumes[out].Output.Add(s.volumes[out].Output, amountOut)
	if err := s.commitAdminMints(fees, exchangeMint, referralMint); err != nil {
		return nil, err
	}
	return amountOut, nil
}

// sharePrice is the invariant value per outstanding share, scaled by
// SharePricePrecision.
func (s stableState) sharePrice(factors []*big.Int) (*big.Int, error) {
	supply := s.ledger.TotalSupply
	if supply.Sign() == 0 {
		return nil, ErrEmptyPool
	}
	d, err := computeD(s.amp, s.normalized(factors))
	if err != nil {
		return nil, err
	}
	return mulDiv(d, pricePrecision, supply), nil
}

// tvl is the pool's total value in the normalized reference unit.
func (s stableState) tvl(factors []*big.Int) *big.Int {
	return sumAmounts(s.normalized(factors))
}

// validateStableInit checks the shared constructor inputs of the
// stable-family kinds.
func validateStableInit(tokenIDs []string, decimals []uint8, ampFactor uint64, totalFee uint32, target uint8) error {
	if err := validateTokenIDs(tokenIDs); err != nil {
		return err
	}
	if len(decimals) != len(tokenIDs) {
		return ErrInvalidDecimals
	}
	for _, d := range decimals {
		if d > target {
			return ErrInvalidDecimals
		}
	}
	if ampFactor < consts.MinAmpFactor || ampFactor > consts.MaxAmpFactor {
		return ErrInvalidAmpFactor
	}
	if totalFee > consts.MaxStableSwapFee {
		return ErrFeeTooHigh
	}
	return nil
}

func validateTokenIDs(tokenIDs []string) error {
	if len(tokenIDs) < consts.MinPoolTokens {
		return ErrTooFewTokens
	}
	if len(tokenIDs) > consts.MaxPoolTokens {
		return ErrTooManyTokens
	}
	seen := make(map[string]struct{}, len(tokenIDs))
	for _, id := range tokenIDs {
		if _, ok := seen[id]; ok {
			return ErrDuplicateToken
		}
		seen[id] = struct{}{}
	}
	return nil
}
