package recovery

import (
	"context"
	"fmt"
	"math/big"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mahdiidarabi/pkcrypt/pkg/ec"
)

// SmartBruteForceStrategy searches in phases, cheapest first: repeated r
// values, common patterns, custom patterns and finally an expanding range
// search over (a, b) run by a worker pool.
type SmartBruteForceStrategy struct {
	RangeConfig   RangeConfig
	PatternConfig PatternConfig
	Logger        logrus.FieldLogger
	Metrics       *Metrics
}

// NewSmartBruteForceStrategy creates a strategy with the default
// configuration.
func NewSmartBruteForceStrategy() *SmartBruteForceStrategy {
	return &SmartBruteForceStrategy{
		RangeConfig:   DefaultRangeConfig(),
		PatternConfig: DefaultPatternConfig(),
		Logger:        logrus.StandardLogger(),
	}
}

// WithRangeConfig sets the range configuration for the strategy.
func (s *SmartBruteForceStrategy) WithRangeConfig(config RangeConfig) *SmartBruteForceStrategy {
	s.RangeConfig = config
	return s
}

// WithPatternConfig sets the pattern configuration for the strategy.
func (s *SmartBruteForceStrategy) WithPatternConfig(config PatternConfig) *SmartBruteForceStrategy {
	s.PatternConfig = config
	return s
}

// WithLogger sets the logger progress is reported to.
func (s *SmartBruteForceStrategy) WithLogger(logger logrus.FieldLogger) *SmartBruteForceStrategy {
	s.Logger = logger
	return s
}

// WithMetrics sets the collectors updated during the search.
func (s *SmartBruteForceStrategy) WithMetrics(m *Metrics) *SmartBruteForceStrategy {
	s.Metrics = m
	return s
}

// Name returns the name of this strategy.
func (s *SmartBruteForceStrategy) Name() string {
	return "SmartBruteForce"
}

// Search implements BruteForceStrategy.
func (s *SmartBruteForceStrategy) Search(ctx context.Context, g *ec.Point, signatures []*Signature, publicKey *ec.Point) *RecoveryResult {
	if len(signatures) < 2 {
		return nil
	}

	log := s.logger().WithFields(logrus.Fields{
		"strategy":   s.Name(),
		"signatures": len(signatures),
		"curve":      g.Curve().Name,
	})
	log.Info("Starting key recovery")

	c := &checker{g: g, publicKey: publicKey, signatures: signatures, metrics: s.Metrics}

	phases := []struct {
		name string
		run  func() *RecoveryResult
	}{
		{"same_nonce", func() *RecoveryResult { return s.checkSameNonceReuse(c) }},
		{"common_patterns", func() *RecoveryResult {
			if !s.PatternConfig.IncludeCommonPatterns {
				return nil
			}
			return s.tryPatterns(ctx, c, CommonPatterns())
		}},
		{"custom_patterns", func() *RecoveryResult {
			patterns := append([]Pattern(nil), s.PatternConfig.CustomPatterns...)
			sortPatterns(patterns)
			return s.tryPatterns(ctx, c, patterns)
		}},
		{"range_search", func() *RecoveryResult { return s.adaptiveRangeSearch(ctx, c, log) }},
	}

	for _, phase := range phases {
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Key recovery cancelled")
			return nil
		}

		start := time.Now()
		result := phase.run()
		s.Metrics.observePhase(phase.name, time.Since(start).Seconds())

		if result != nil {
			s.Metrics.keyRecovered(result.Pattern)
			log.WithFields(logrus.Fields{
				"phase":    phase.name,
				"pattern":  result.Pattern,
				"pair":     result.SignaturePair,
				"verified": result.Verified,
			}).Info("Recovered private key")
			return result
		}
		log.WithField("phase", phase.name).Debug("No match")
	}

	log.Info("All phases completed, key not found")
	return nil
}

// checkSameNonceReuse looks for identical r values, which mean k2 = k1.
func (s *SmartBruteForceStrategy) checkSameNonceReuse(c *checker) *RecoveryResult {
	a, b := big.NewInt(1), big.NewInt(0)
	for i := 0; i < len(c.signatures); i++ {
		for j := i + 1; j < len(c.signatures); j++ {
			if c.signatures[i].R.Cmp(c.signatures[j].R) != 0 {
				continue
			}
			if result := c.try(i, j, a, b, "same_nonce_reuse"); result != nil {
				return result
			}
		}
	}
	return nil
}

// tryPatterns tests each pattern against every signature pair.
func (s *SmartBruteForceStrategy) tryPatterns(ctx context.Context, c *checker, patterns []Pattern) *RecoveryResult {
	for _, pattern := range patterns {
		if ctx.Err() != nil {
			return nil
		}
		if result := c.tryAllPairs(pattern.A, pattern.B, pattern.Name); result != nil {
			return result
		}
	}
	return nil
}

// adaptiveRangeSearch runs the configured schedule of ranges in order.
func (s *SmartBruteForceStrategy) adaptiveRangeSearch(ctx context.Context, c *checker, log logrus.FieldLogger) *RecoveryResult {
	schedule := s.RangeConfig.Schedule
	if len(schedule) == 0 {
		schedule = DefaultSchedule()
	}

	for _, r := range schedule {
		if ctx.Err() != nil {
			return nil
		}

		rlog := log.WithFields(logrus.Fields{
			"range":        r.Name,
			"a":            r.ARange,
			"b":            r.BRange,
			"combinations": s.combinations(r),
		})
		rlog.Info("Searching range")

		if result := s.rangeSearch(ctx, c, r, rlog); result != nil {
			return result
		}
	}
	return nil
}

func (s *SmartBruteForceStrategy) combinations(r SearchRange) int {
	aCount := r.ARange[1] - r.ARange[0] + 1
	if s.RangeConfig.SkipZeroA && r.ARange[0] <= 0 && r.ARange[1] >= 0 {
		aCount--
	}
	return aCount * (r.BRange[1] - r.BRange[0] + 1)
}

// rangeSearch distributes signature pairs over a pool of workers, each of
// which tests every (a, b) of the range on its pair. The first verified
// result cancels the remaining work.
func (s *SmartBruteForceStrategy) rangeSearch(ctx context.Context, c *checker, r SearchRange, log logrus.FieldLogger) *RecoveryResult {
	numWorkers := s.RangeConfig.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	maxPairs := s.RangeConfig.MaxPairs
	if maxPairs <= 0 {
		maxPairs = DefaultRangeConfig().MaxPairs
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tested atomic.Int64
	resultChan := make(chan *RecoveryResult, 1)
	workChan := make(chan [2]int, numWorkers)

	go func() {
		defer close(workChan)
		pairCount := 0
		for i := 0; i < len(c.signatures) && pairCount < maxPairs; i++ {
			for j := i + 1; j < len(c.signatures) && pairCount < maxPairs; j++ {
				select {
				case <-ctx.Done():
					return
				case workChan <- [2]int{i, j}:
					pairCount++
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range workChan {
				if result := s.searchPair(ctx, c, r, pair, &tested); result != nil {
					select {
					case resultChan <- result:
					default:
					}
					cancel()
					return
				}
			}
		}()
	}

	wg.Wait()
	log.WithField("tested", tested.Load()).Debug("Range search finished")

	select {
	case result := <-resultChan:
		return result
	default:
		return nil
	}
}

func (s *SmartBruteForceStrategy) searchPair(ctx context.Context, c *checker, r SearchRange, pair [2]int, tested *atomic.Int64) *RecoveryResult {
	for a := r.ARange[0]; a <= r.ARange[1]; a++ {
		if s.RangeConfig.SkipZeroA && a == 0 {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		aBig := big.NewInt(int64(a))
		for b := r.BRange[0]; b <= r.BRange[1]; b++ {
			if b&1023 == 0 && ctx.Err() != nil {
				return nil
			}
			tested.Add(1)
			name := fmt.Sprintf("brute_force_a%d_b%d", a, b)
			if result := c.try(pair[0], pair[1], aBig, big.NewInt(int64(b)), name); result != nil {
				return result
			}
		}
	}
	return nil
}

func (s *SmartBruteForceStrategy) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}

// checker derives and verifies candidate keys for one search.
type checker struct {
	g          *ec.Point
	publicKey  *ec.Point
	signatures []*Signature
	metrics    *Metrics
}

// try recovers d from signatures i and j under (a, b) and returns a result
// if d checks out against the public key, or against signature i when no
// public key is known.
func (c *checker) try(i, j int, a, b *big.Int, pattern string) *RecoveryResult {
	c.metrics.candidateTested()

	n := c.g.Curve().ScalarModulus()
	d, err := RecoverPrivateKey(c.signatures[i], c.signatures[j], a, b, n)
	if err != nil || d.Sign() == 0 {
		return nil
	}

	verified := false
	if c.publicKey != nil {
		ok, err := VerifyRecoveredKey(d, c.g, c.publicKey)
		if err != nil || !ok {
			return nil
		}
		verified = true
	} else if !nonceConsistent(d, c.g, c.signatures[i]) {
		return nil
	}

	return &RecoveryResult{
		PrivateKey:    d,
		Relationship:  AffineRelationship{A: new(big.Int).Set(a), B: new(big.Int).Set(b)},
		SignaturePair: [2]int{i, j},
		Verified:      verified,
		Pattern:       pattern,
	}
}

func (c *checker) tryAllPairs(a, b *big.Int, pattern string) *RecoveryResult {
	for i := 0; i < len(c.signatures); i++ {
		for j := i + 1; j < len(c.signatures); j++ {
			if result := c.try(i, j, a, b, pattern); result != nil {
				return result
			}
		}
	}
	return nil
}

func counterName(b int64) string {
	return fmt.Sprintf("counter_%+d", b)
}

func stepName(b int64) string {
	return fmt.Sprintf("step_%d", b)
}

func sortPatterns(patterns []Pattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Priority < patterns[j].Priority
	})
}
