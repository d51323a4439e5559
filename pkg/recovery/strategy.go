package recovery

import (
	"context"
	"math/big"

	"github.com/mahdiidarabi/pkcrypt/pkg/ec"
)

// BruteForceStrategy searches a signature set for a pair of signatures with
// affinely related nonces.
type BruteForceStrategy interface {
	// Search returns the first verified recovery, or nil if none is found or
	// ctx is cancelled. publicKey may be nil, in which case candidates are
	// checked against the signatures themselves.
	Search(ctx context.Context, g *ec.Point, signatures []*Signature, publicKey *ec.Point) *RecoveryResult

	Name() string
}

// Pattern is a single (a, b) relationship to test.
type Pattern struct {
	A        *big.Int
	B        *big.Int
	Name     string
	Priority int // lower runs first
}

// SearchRange is one step of the adaptive range search. Both bounds are
// inclusive.
type SearchRange struct {
	ARange [2]int
	BRange [2]int
	Name   string
}

// RangeConfig configures the range search phase.
type RangeConfig struct {
	// Schedule is searched in order; empty means DefaultSchedule.
	Schedule []SearchRange

	// MaxPairs limits the number of signature pairs tested per range.
	MaxPairs int

	// NumWorkers is the size of the worker pool; 0 means runtime.NumCPU.
	NumWorkers int

	// SkipZeroA skips a = 0, which relates k2 to nothing but b.
	SkipZeroA bool
}

// DefaultRangeConfig returns the default range search configuration.
func DefaultRangeConfig() RangeConfig {
	return RangeConfig{
		MaxPairs:   100,
		NumWorkers: 0,
		SkipZeroA:  true,
	}
}

// DefaultSchedule is the expanding sequence of ranges searched when no
// explicit schedule is configured.
func DefaultSchedule() []SearchRange {
	return []SearchRange{
		{[2]int{1, 1}, [2]int{-100, 100}, "a=1, small b"},
		{[2]int{1, 1}, [2]int{-1000, 1000}, "a=1, medium b"},
		{[2]int{1, 1}, [2]int{-10000, 10000}, "a=1, larger b"},
		{[2]int{2, 4}, [2]int{-1000, 1000}, "small a, medium b"},
		{[2]int{-5, -1}, [2]int{-1000, 1000}, "negative a, medium b"},
		{[2]int{1, 10}, [2]int{-50000, 50000}, "wider a, larger b"},
	}
}

// PatternConfig configures the pattern phases.
type PatternConfig struct {
	CustomPatterns        []Pattern
	IncludeCommonPatterns bool
}

// DefaultPatternConfig enables the built-in common patterns.
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		CustomPatterns:        []Pattern{},
		IncludeCommonPatterns: true,
	}
}

// CommonPatterns returns the built-in nonce relationships produced by
// typical broken nonce generators, ordered by priority.
func CommonPatterns() []Pattern {
	patterns := []Pattern{
		{big.NewInt(1), big.NewInt(0), "same_nonce", 1},
		{big.NewInt(2), big.NewInt(0), "multiply_2", 5},
		{big.NewInt(2), big.NewInt(1), "multiply_2_+1", 5},
		{big.NewInt(3), big.NewInt(0), "multiply_3", 5},
		{big.NewInt(4), big.NewInt(0), "multiply_4", 5},
		{big.NewInt(-1), big.NewInt(0), "negate", 6},
	}
	for b := int64(1); b <= 5; b++ {
		patterns = append(patterns,
			Pattern{big.NewInt(1), big.NewInt(b), counterName(b), 2},
			Pattern{big.NewInt(1), big.NewInt(-b), counterName(-b), 2})
	}
	for _, step := range []int64{8, 10, 16, 32, 64, 100, 128, 256, 512, 1000, 1024, 10000} {
		patterns = append(patterns, Pattern{big.NewInt(1), big.NewInt(step), stepName(step), 4})
	}

	sortPatterns(patterns)
	return patterns
}
