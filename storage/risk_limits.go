// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"math/big"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vortelus/ref-contracts/pool"
)

var errBadTvlLimit = errors.New("tvl limit is not a non-negative integer")

// PoolLimits holds the operator-configured per-pool risk caps. It
// implements pool.RiskReader; pools without an entry are uncapped.
type PoolLimits struct {
	limits map[uint64]pool.PoolLimit
}

type riskLimitsFile struct {
	Pools []struct {
		PoolID   uint64 `yaml:"pool_id"`
		TvlLimit string `yaml:"tvl_limit"`
	} `yaml:"pools"`
}

func NewPoolLimits() *PoolLimits {
	return &PoolLimits{limits: make(map[uint64]pool.PoolLimit)}
}

// LoadPoolLimits parses a risk-limit config. Limits are decimal
// strings so they survive YAML's integer range.
func LoadPoolLimits(raw []byte) (*PoolLimits, error) {
	var f riskLimitsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	l := NewPoolLimits()
	for _, entry := range f.Pools {
		limit, ok := new(big.Int).SetString(entry.TvlLimit, 10)
		if !ok || limit.Sign() < 0 {
			return nil, errBadTvlLimit
		}
		l.limits[entry.PoolID] = pool.PoolLimit{TvlLimit: limit}
	}
	return l, nil
}

// LoadPoolLimitsFile reads and parses a risk-limit config file.
func LoadPoolLimitsFile(path string) (*PoolLimits, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadPoolLimits(raw)
}

// Set installs or replaces the limit for one pool.
func (l *PoolLimits) Set(poolID uint64, limit pool.PoolLimit) {
	l.limits[poolID] = limit
}

func (l *PoolLimits) PoolLimit(poolID uint64) (pool.PoolLimit, bool) {
	limit, ok := l.limits[poolID]
	return limit, ok
}
