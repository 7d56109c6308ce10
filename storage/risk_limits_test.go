// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vortelus/ref-contracts/pool"
)

func TestLoadPoolLimits(t *testing.T) {
	req := require.New(t)

	raw := []byte(`
pools:
  - pool_id: 3
    tvl_limit: "1000000000000000000000000"
  - pool_id: 7
    tvl_limit: "500"
`)
	limits, err := LoadPoolLimits(raw)
	req.NoError(err)

	limit, ok := limits.PoolLimit(7)
	req.True(ok)
	req.Equal(big.NewInt(500), limit.TvlLimit)

	limit, ok = limits.PoolLimit(3)
	req.True(ok)
	want, _ := new(big.Int).SetString("1000000000000000000000000", 10)
	req.Equal(want, limit.TvlLimit)

	_, ok = limits.PoolLimit(99)
	req.False(ok)
}

func TestLoadPoolLimitsRejectsBadValues(t *testing.T) {
	req := require.New(t)

	_, err := LoadPoolLimits([]byte("pools:\n  - pool_id: 1\n    tvl_limit: \"abc\"\n"))
	req.Error(err)

	_, err = LoadPoolLimits([]byte("pools:\n  - pool_id: 1\n    tvl_limit: \"-5\"\n"))
	req.Error(err)

	_, err = LoadPoolLimits([]byte("pools: ["))
	req.Error(err)
}

func TestPoolLimitsSet(t *testing.T) {
	req := require.New(t)
	limits := NewPoolLimits()
	limits.Set(1, pool.PoolLimit{TvlLimit: big.NewInt(9)})
	limit, ok := limits.PoolLimit(1)
	req.True(ok)
	req.Equal(big.NewInt(9), limit.TvlLimit)
}
