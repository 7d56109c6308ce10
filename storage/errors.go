// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrNotFound       = errors.New("key not found")
	ErrPoolNotFound   = errors.New("pool not found")
	ErrCorruptRecord  = errors.New("corrupt pool record")
	ErrRecordVersion  = errors.New("unsupported pool record version")
	ErrPoolIDOccupied = errors.New("pool id already in use")
)
