package primes

import (
	"fmt"
	"io"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
	"github.com/mahdiidarabi/pkcrypt/pkg/numbers"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Config bounds the searches performed by a Generator.
type Config struct {
	// MaxPrimeAttempts limits the number of random candidates tested per call to Prime
	MaxPrimeAttempts int

	// PrimalityRounds is the number of Miller-Rabin rounds used by the primality oracle
	PrimalityRounds int

	// RootPoolSize is how many primitive roots are collected before one is picked at random
	RootPoolSize int

	// MaxRootCandidates limits how many values of g are scanned (0 = scan up to p-1)
	MaxRootCandidates int

	// MaxFactorAttempts limits the Pollard-rho restarts used when factoring p-1
	MaxFactorAttempts int

	// FactorIterations is the step budget of each Pollard-rho restart (0 = default)
	FactorIterations int

	// Logger receives debug output about retries
	Logger logrus.FieldLogger
}

// DefaultConfig returns a configuration suitable for demonstration-size primes.
func DefaultConfig() Config {
	return Config{
		MaxPrimeAttempts:  100000,
		PrimalityRounds:   20,
		RootPoolSize:      5,
		MaxRootCandidates: 1 << 16,
		MaxFactorAttempts: 8,
		FactorIterations:  1 << 17,
		Logger:            logrus.StandardLogger(),
	}
}

// Generator produces primes and primitive roots using an injected source of
// randomness. A Generator is safe for concurrent use only if its random
// source is.
type Generator struct {
	Rand   io.Reader
	Config Config
}

// NewGenerator creates a generator with the default configuration.
func NewGenerator(random io.Reader) *Generator {
	return &Generator{
		Rand:   random,
		Config: DefaultConfig(),
	}
}

// WithConfig sets the search bounds for the generator.
func (g *Generator) WithConfig(config Config) *Generator {
	g.Config = config
	return g
}

func (g *Generator) logger() logrus.FieldLogger {
	if g.Config.Logger == nil {
		return logrus.StandardLogger()
	}
	return g.Config.Logger
}

// Prime returns a probable prime whose bit length is a positive multiple of 8
// in [bitsFrom, bitsTo]. The bit length is chosen uniformly among the
// admissible values, then random candidates of exactly that length are
// tested until one passes the primality oracle.
func (g *Generator) Prime(bitsFrom, bitsTo int) (*big.Int, error) {
	bits, err := g.pickBitLength(bitsFrom, bitsTo)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, bits/8)
	for attempt := 1; attempt <= g.Config.MaxPrimeAttempts; attempt++ {
		if _, err := io.ReadFull(g.Rand, buf); err != nil {
			return nil, fmt.Errorf("failed to read randomness: %w", err)
		}
		// Force the exact bit length and oddness.
		buf[0] |= 0x80
		buf[len(buf)-1] |= 1

		candidate := new(big.Int).SetBytes(buf)
		if candidate.ProbablyPrime(g.Config.PrimalityRounds) {
			g.logger().WithFields(logrus.Fields{
				"bits":     bits,
				"attempts": attempt,
			}).Debug("found probable prime")
			return candidate, nil
		}
	}

	return nil, cryptoerr.Newf(cryptoerr.ErrExhaustedRetries,
		"no %d-bit prime found after %d candidates", bits, g.Config.MaxPrimeAttempts)
}

func (g *Generator) pickBitLength(bitsFrom, bitsTo int) (int, error) {
	lo := (bitsFrom + 7) / 8
	if lo < 1 {
		lo = 1
	}
	hi := bitsTo / 8
	if bitsFrom > bitsTo || hi < lo {
		return 0, cryptoerr.Newf(cryptoerr.ErrInvalidParameter,
			"no positive multiple of 8 in bit range [%d, %d]", bitsFrom, bitsTo)
	}

	n, err := numbers.RandomInRange(g.Rand, big.NewInt(int64(lo)), big.NewInt(int64(hi)+1))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) * 8, nil
}

// PrimitiveRoot returns a generator of the multiplicative group mod p.
//
// Candidates are scanned upwards from 2; up to Config.RootPoolSize primitive
// roots are collected and one of them is returned, chosen uniformly at
// random. If no candidate below p-1 (or within Config.MaxRootCandidates) is a
// primitive root, an error of kind ErrNoRootFound is returned.
func (g *Generator) PrimitiveRoot(p *big.Int) (*big.Int, error) {
	if p.Cmp(two) <= 0 {
		return nil, cryptoerr.Newf(cryptoerr.ErrNoRootFound, "no primitive root candidates for p = %s", p)
	}

	pMinusOne := new(big.Int).Sub(p, one)
	factors, err := g.factor(pMinusOne)
	if err != nil {
		return nil, err
	}

	var pool []*big.Int
	scanned := 0
	for c := big.NewInt(2); c.Cmp(pMinusOne) < 0; c.Add(c, one) {
		if len(pool) == g.Config.RootPoolSize {
			break
		}
		if g.Config.MaxRootCandidates > 0 && scanned == g.Config.MaxRootCandidates {
			break
		}
		scanned++

		if hasFullOrder(c, p, factors) {
			pool = append(pool, new(big.Int).Set(c))
		}
	}

	if len(pool) == 0 {
		return nil, cryptoerr.Newf(cryptoerr.ErrNoRootFound,
			"no primitive root mod %s among %d candidates", p, scanned)
	}

	i, err := numbers.RandomInRange(g.Rand, big.NewInt(0), big.NewInt(int64(len(pool))))
	if err != nil {
		return nil, err
	}
	g.logger().WithFields(logrus.Fields{
		"scanned": scanned,
		"pool":    len(pool),
	}).Debug("selected primitive root")
	return pool[i.Int64()], nil
}

// IsPrimitiveRoot reports whether g generates the multiplicative group mod
// the prime p, i.e. whether the order of g is exactly p-1. The order is
// confirmed from the distinct prime factors of p-1; an error is returned if
// p-1 cannot be factored within the default bounds.
func IsPrimitiveRoot(g, p *big.Int) (bool, error) {
	return NewGenerator(nil).IsPrimitiveRoot(g, p)
}

// IsPrimitiveRoot is the package-level IsPrimitiveRoot using the factoring
// bounds of the generator's configuration.
func (g *Generator) IsPrimitiveRoot(root, p *big.Int) (bool, error) {
	if p.Cmp(two) < 0 {
		return false, nil
	}
	pMinusOne := new(big.Int).Sub(p, one)
	factors, err := g.factor(pMinusOne)
	if err != nil {
		return false, err
	}
	return hasFullOrder(root, p, factors), nil
}

// Factor returns the distinct prime factors of n > 1 using the factoring
// bounds of the generator's configuration.
func (g *Generator) Factor(n *big.Int) ([]*big.Int, error) {
	return g.factor(n)
}

// hasFullOrder checks the primitive-root conditions given the distinct prime
// factors of p-1.
func hasFullOrder(g, p *big.Int, factors []*big.Int) bool {
	if !numbers.Coprime(g, p) {
		return false
	}

	pMinusOne := new(big.Int).Sub(p, one)
	if numbers.ModPow(g, pMinusOne, p).Cmp(one) != 0 {
		return false
	}

	e := new(big.Int)
	for _, q := range factors {
		e.Quo(pMinusOne, q)
		if numbers.ModPow(g, e, p).Cmp(one) == 0 {
			return false
		}
	}
	return true
}

func (g *Generator) factor(n *big.Int) ([]*big.Int, error) {
	f := factorizer{
		rounds:      g.Config.PrimalityRounds,
		maxAttempts: g.Config.MaxFactorAttempts,
		iterations:  g.Config.FactorIterations,
	}
	if f.iterations <= 0 {
		f.iterations = DefaultConfig().FactorIterations
	}
	return f.distinctPrimeFactors(n)
}
