package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic simulations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream derives an independent deterministic generator for one scenario.
	// The same scenario key and base seed always yield the same sequence.
	Stream(ctx context.Context, scenarioKey string, baseSeed int64) (*rand.Rand, error)
}
