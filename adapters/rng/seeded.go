// Package rng implements ports.RNGPort on math/rand sources.
package rng

import (
	"context"
	"hash/fnv"
	"math/rand"

	"bridgesim/ports"
)

// SeededAdapter hands out independent *rand.Rand values; it keeps no generator itself,
// so concurrent callers never share a source.
type SeededAdapter struct{}

var _ ports.RNGPort = (*SeededAdapter)(nil)

// NewSeededAdapter creates the adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Stream hashes scenarioKey into the base seed
func (a *SeededAdapter) Stream(ctx context.Context, scenarioKey string, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(DeriveSeed(baseSeed, scenarioKey))), nil
}

// DeriveSeed mixes the base seed with each non-empty key using FNV-1a.
func DeriveSeed(baseSeed int64, keys ...string) int64 {
	seed := baseSeed
	for _, key := range keys {
		if key == "" {
			continue
		}
		h := fnv.New64a()
		h.Write([]byte(key))
		seed += int64(h.Sum64())
	}
	return seed
}
