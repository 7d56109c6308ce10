// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

// AdminFees describes how the protocol's cut of a pool's total fee is
// split for one operation. It is computed by governance per call and
// never persisted inside a pool. Rates are in the same parts-per-
// FeeDivisor unit as the pool's total fee and must sum to at most the
// total fee; the remainder of the fee accrues to LPs through the
// reserves.
type AdminFees struct {
	ExchangeFee uint32
	ReferralFee uint32
	ExchangeID  string
	ReferralID  string
}

func (f AdminFees) validate(totalFee uint32) error {
	// Sum in uint64 so an adversarial split cannot wrap past the check.
	if uint64(f.ExchangeFee)+uint64(f.ReferralFee) > uint64(totalFee) {
		return ErrFeeTooHigh
	}
	return nil
}
