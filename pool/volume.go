// Copyright (C) 2024, Vortelus, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import "math/big"

// SwapVolume accumulates the raw input and output traded through one
// pool token since pool creation. Counters only grow; resets are an
// administrative concern outside this module.
type SwapVolume struct {
	Input  *big.Int
	Output *big.Int
}

func newVolumes(n int) []SwapVolume {
	out := make([]SwapVolume, n)
	for i := range out {
		out[i] = SwapVolume{Input: new(big.Int), Output: new(big.Int)}
	}
	return out
}

func copyVolumes(volumes []SwapVolume) []SwapVolume {
	out := make([]SwapVolume, len(volumes))
	for i, v := range volumes {
		out[i] = SwapVolume{
			Input:  new(big.Int).Set(v.Input),
			Output: new(big.Int).Set(v.Output),
		}
	}
	return out
}
