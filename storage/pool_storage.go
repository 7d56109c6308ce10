// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/near/borsh-go"

	"github.com/vortelus/ref-contracts/pool"
)

const (
	poolPrefix      byte = 0x0
	poolCountPrefix byte = 0x1

	// poolRecordVersion leads every stored pool value. Bump it when the
	// record layout changes and keep decoding the old layouts.
	poolRecordVersion byte = 0x1
)

// Pool records are borsh so balances ride as u128 and the enum tag
// matches the on-disk order of the pool kinds. Record structs are kept
// separate from the pool package types: the wire layout must stay
// stable while the in-memory types are free to move.

type volumeRecord struct {
	Input  big.Int
	Output big.Int
}

type shareBalanceRecord struct {
	AccountID string
	Balance   big.Int
}

type shareLedgerRecord struct {
	TotalSupply big.Int
	Accounts    []shareBalanceRecord
}

type simplePoolRecord struct {
	TokenIDs []string
	Amounts  []big.Int
	Volumes  []volumeRecord
	TotalFee uint32
	Shares   shareLedgerRecord
}

// stablePoolRecord serves all three stable-family kinds. Factors holds
// the cached rates or degen prices and is empty for the plain kind.
type stablePoolRecord struct {
	TokenIDs      []string
	TokenDecimals []uint8
	CAmounts      []big.Int
	Volumes       []volumeRecord
	TotalFee      uint32
	AmpFactor     uint64
	Factors       []big.Int
	Shares        shareLedgerRecord
}

type poolRecord struct {
	Kind   borsh.Enum `borsh_enum:"true"`
	Simple simplePoolRecord
	Stable stablePoolRecord
	Rated  stablePoolRecord
	Degen  stablePoolRecord
}

func PoolKey(poolID uint64) []byte {
	k := make([]byte, 1+8)
	k[0] = poolPrefix
	binary.BigEndian.PutUint64(k[1:], poolID)
	return k
}

func PoolCountKey() []byte {
	return []byte{poolCountPrefix}
}

func amountsToRecord(amounts []*big.Int) []big.Int {
	out := make([]big.Int, len(amounts))
	for i, a := range amounts {
		out[i].Set(a)
	}
	return out
}

func amountsFromRecord(rec []big.Int) []*big.Int {
	out := make([]*big.Int, len(rec))
	for i := range rec {
		out[i] = new(big.Int).Set(&rec[i])
	}
	return out
}

func volumesToRecord(volumes []pool.SwapVolume) []volumeRecord {
	out := make([]volumeRecord, len(volumes))
	for i, v := range volumes {
		out[i].Input.Set(v.Input)
		out[i].Output.Set(v.Output)
	}
	return out
}

func volumesFromRecord(rec []volumeRecord) []pool.SwapVolume {
	out := make([]pool.SwapVolume, len(rec))
	for i := range rec {
		out[i] = pool.SwapVolume{
			Input:  new(big.Int).Set(&rec[i].Input),
			Output: new(big.Int).Set(&rec[i].Output),
		}
	}
	return out
}

// ledgerToRecord flattens the balance map into account order so the
// record bytes are deterministic.
func ledgerToRecord(l *pool.ShareLedger) shareLedgerRecord {
	accounts := l.Accounts()
	rec := shareLedgerRecord{Accounts: make([]shareBalanceRecord, len(accounts))}
	rec.TotalSupply.Set(l.TotalSupply)
	for i, id := range accounts {
		rec.Accounts[i].AccountID = id
		rec.Accounts[i].Balance.Set(l.Balances[id])
	}
	return rec
}

func ledgerFromRecord(rec shareLedgerRecord) pool.ShareLedger {
	balances := make(map[string]*big.Int, len(rec.Accounts))
	for i := range rec.Accounts {
		balances[rec.Accounts[i].AccountID] = new(big.Int).Set(&rec.Accounts[i].Balance)
	}
	return pool.ShareLedger{
		TotalSupply: new(big.Int).Set(&rec.TotalSupply),
		Balances:    balances,
	}
}

func stableToRecord(tokenIDs []string, tokenDecimals []uint8, cAmounts []*big.Int, volumes []pool.SwapVolume, totalFee uint32, amp uint64, factors []*big.Int, ledger *pool.ShareLedger) stablePoolRecord {
	rec := stablePoolRecord{
		TokenIDs:      tokenIDs,
		TokenDecimals: tokenDecimals,
		CAmounts:      amountsToRecord(cAmounts),
		Volumes:       volumesToRecord(volumes),
		TotalFee:      totalFee,
		AmpFactor:     amp,
		Shares:        ledgerToRecord(ledger),
	}
	if factors != nil {
		rec.Factors = amountsToRecord(factors)
	}
	return rec
}

func encodePool(p *pool.Pool) ([]byte, error) {
	rec := poolRecord{Kind: borsh.Enum(p.Kind())}
	switch {
	case p.Simple != nil:
		rec.Simple = simplePoolRecord{
			TokenIDs: p.Simple.TokenIDs,
			Amounts:  amountsToRecord(p.Simple.Amounts),
			Volumes:  volumesToRecord(p.Simple.Volumes),
			TotalFee: p.Simple.TotalFee,
			Shares:   ledgerToRecord(&p.Simple.Shares),
		}
	case p.Stable != nil:
		s := p.Stable
		rec.Stable = stableToRecord(s.TokenIDs, s.TokenDecimals, s.CAmounts, s.Volumes, s.TotalFee, s.AmpFactor, nil, &s.Shares)
	case p.Rated != nil:
		s := p.Rated
		rec.Rated = stableToRecord(s.TokenIDs, s.TokenDecimals, s.CAmounts, s.Volumes, s.TotalFee, s.AmpFactor, s.Rates, &s.Shares)
	case p.Degen != nil:
		s := p.Degen
		rec.Degen = stableToRecord(s.TokenIDs, s.TokenDecimals, s.CAmounts, s.Volumes, s.TotalFee, s.AmpFactor, s.DegenPrices, &s.Shares)
	default:
		return nil, ErrCorruptRecord
	}
	raw, err := borsh.Serialize(rec)
	if err != nil {
		return nil, err
	}
	v := make([]byte, 1+len(raw))
	v[0] = poolRecordVersion
	copy(v[1:], raw)
	return v, nil
}

func decodePool(v []byte) (pool.Pool, error) {
	if len(v) < 2 {
		return pool.Pool{}, ErrCorruptRecord
	}
	if v[0] != poolRecordVersion {
		return pool.Pool{}, ErrRecordVersion
	}
	rec := new(poolRecord)
	if err := borsh.Deserialize(rec, v[1:]); err != nil {
		return pool.Pool{}, errors.Join(ErrCorruptRecord, err)
	}
	switch pool.PoolKind(rec.Kind) {
	case pool.SimplePoolKind:
		return pool.NewSimple(&pool.SimplePool{
			TokenIDs: rec.Simple.TokenIDs,
			Amounts:  amountsFromRecord(rec.Simple.Amounts),
			Volumes:  volumesFromRecord(rec.Simple.Volumes),
			TotalFee: rec.Simple.TotalFee,
			Shares:   ledgerFromRecord(rec.Simple.Shares),
		}), nil
	case pool.StableSwapPoolKind:
		return pool.NewStableSwap(&pool.StableSwapPool{
			TokenIDs:      rec.Stable.TokenIDs,
			TokenDecimals: rec.Stable.TokenDecimals,
			CAmounts:      amountsFromRecord(rec.Stable.CAmounts),
			Volumes:       volumesFromRecord(rec.Stable.Volumes),
			TotalFee:      rec.Stable.TotalFee,
			AmpFactor:     rec.Stable.AmpFactor,
			Shares:        ledgerFromRecord(rec.Stable.Shares),
		}), nil
	case pool.RatedSwapPoolKind:
		return pool.NewRatedSwap(&pool.RatedSwapPool{
			TokenIDs:      rec.Rated.TokenIDs,
			TokenDecimals: rec.Rated.TokenDecimals,
			CAmounts:      amountsFromRecord(rec.Rated.CAmounts),
			Volumes:       volumesFromRecord(rec.Rated.Volumes),
			TotalFee:      rec.Rated.TotalFee,
			AmpFactor:     rec.Rated.AmpFactor,
			Rates:         amountsFromRecord(rec.Rated.Factors),
			Shares:        ledgerFromRecord(rec.Rated.Shares),
		}), nil
	case pool.DegenSwapPoolKind:
		return pool.NewDegenSwap(&pool.DegenSwapPool{
			TokenIDs:      rec.Degen.TokenIDs,
			TokenDecimals: rec.Degen.TokenDecimals,
			CAmounts:      amountsFromRecord(rec.Degen.CAmounts),
			Volumes:       volumesFromRecord(rec.Degen.Volumes),
			TotalFee:      rec.Degen.TotalFee,
			AmpFactor:     rec.Degen.AmpFactor,
			DegenPrices:   amountsFromRecord(rec.Degen.Factors),
			Shares:        ledgerFromRecord(rec.Degen.Shares),
		}), nil
	default:
		return pool.Pool{}, ErrCorruptRecord
	}
}

// SetPool writes the pool under its id.
func SetPool(ctx context.Context, mu Mutable, poolID uint64, p *pool.Pool) error {
	v, err := encodePool(p)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, PoolKey(poolID), v)
}

// GetPool loads and decodes the pool stored under the id.
func GetPool(ctx context.Context, im Immutable, poolID uint64) (pool.Pool, error) {
	v, err := im.GetValue(ctx, PoolKey(poolID))
	if errors.Is(err, ErrNotFound) {
		return pool.Pool{}, ErrPoolNotFound
	}
	if err != nil {
		return pool.Pool{}, err
	}
	return decodePool(v)
}

// PoolExists reports whether a pool is stored under the id.
func PoolExists(ctx context.Context, im Immutable, poolID uint64) (bool, error) {
	_, err := im.GetValue(ctx, PoolKey(poolID))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetPoolCount returns the number of pools created so far; pool ids
// are assigned densely from zero.
func GetPoolCount(ctx context.Context, im Immutable) (uint64, error) {
	v, err := im.GetValue(ctx, PoolCountKey())
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, ErrCorruptRecord
	}
	return binary.BigEndian.Uint64(v), nil
}

func SetPoolCount(ctx context.Context, mu Mutable, count uint64) error {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, count)
	return mu.Insert(ctx, PoolCountKey(), v)
}
