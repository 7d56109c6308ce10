// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage persists pools as versioned borsh records behind a
// minimal key-value interface, so the pricing core stays independent
// of the host's database.
package storage

import (
	"context"
	"sync"
)

// Immutable is the read side of the backing store.
type Immutable interface {
	GetValue(ctx context.Context, key []byte) ([]byte, error)
}

// Mutable extends Immutable with writes. Implementations back this
// with whatever the host provides; writes become visible to subsequent
// reads on the same Mutable.
type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// InMemoryStore is a Mutable over a map, for tests and local tooling.
type InMemoryStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{m: make(map[string][]byte)}
}

func (s *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.m[string(key)] = v
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, string(key))
	return nil
}

// Len reports the number of stored keys.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
