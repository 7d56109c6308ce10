// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdminFeesValidate(t *testing.T) {
	for _, tt := range []struct {
		name     string
		fees     AdminFees
		totalFee uint32
		wantErr  error
	}{
		{
			name:     "zero split always fits",
			fees:     AdminFees{},
			totalFee: 0,
		},
		{
			name:     "split equal to total fee",
			fees:     AdminFees{ExchangeFee: 10, ReferralFee: 20},
			totalFee: 30,
		},
		{
			name:     "split above total fee",
			fees:     AdminFees{ExchangeFee: 10, ReferralFee: 21},
			totalFee: 30,
			wantErr:  ErrFeeTooHigh,
		},
		{
			name:     "sum wrapping uint32 still rejected",
			fees:     AdminFees{ExchangeFee: math.MaxUint32, ReferralFee: 1},
			totalFee: 30,
			wantErr:  ErrFeeTooHigh,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := tt.fees.validate(tt.totalFee)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
			} else {
				req.NoError(err)
			}
		})
	}
}
