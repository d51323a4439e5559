package primes

import (
	"math/big"
	"sort"

	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
	"github.com/mahdiidarabi/pkcrypt/pkg/numbers"
)

const (
	trialDivisionBound = 1 << 12

	// rhoBatch is how many |x-y| terms are multiplied together per gcd.
	rhoBatch = 128
)

type factorizer struct {
	rounds      int
	maxAttempts int
	iterations  int
}

// Factor returns the distinct prime factors of n > 1 in increasing order.
// Small factors are removed by trial division and the remaining cofactor is
// split with Pollard's rho; an error of kind ErrExhaustedRetries is returned
// when the cofactor resists splitting.
//
// Factor uses the bounds of DefaultConfig; (*Generator).Factor uses the
// generator's own.
func Factor(n *big.Int) ([]*big.Int, error) {
	return NewGenerator(nil).Factor(n)
}

func (f factorizer) distinctPrimeFactors(n *big.Int) ([]*big.Int, error) {
	if n.Cmp(one) <= 0 {
		return nil, cryptoerr.Newf(cryptoerr.ErrInvalidParameter, "cannot factor %s", n)
	}

	found := map[string]*big.Int{}
	add := func(q *big.Int) {
		found[q.String()] = new(big.Int).Set(q)
	}

	rest := new(big.Int).Set(n)
	d := new(big.Int)
	m := new(big.Int)
	for i := int64(2); i < trialDivisionBound; i++ {
		d.SetInt64(i)
		if new(big.Int).Mul(d, d).Cmp(rest) > 0 {
			break
		}
		if m.Mod(rest, d).Sign() != 0 {
			continue
		}
		add(d)
		for m.Mod(rest, d).Sign() == 0 {
			rest.Quo(rest, d)
		}
	}

	pending := []*big.Int{}
	if rest.Cmp(one) > 0 {
		pending = append(pending, rest)
	}
	for len(pending) > 0 {
		c := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if c.ProbablyPrime(f.rounds) {
			add(c)
			continue
		}
		divisor, err := f.split(c)
		if err != nil {
			return nil, err
		}
		pending = append(pending, divisor, new(big.Int).Quo(c, divisor))
	}

	factors := make([]*big.Int, 0, len(found))
	for _, q := range found {
		factors = append(factors, q)
	}
	sort.Slice(factors, func(i, j int) bool { return factors[i].Cmp(factors[j]) < 0 })
	return factors, nil
}

// split returns a non-trivial divisor of the composite n.
func (f factorizer) split(n *big.Int) (*big.Int, error) {
	if n.Bit(0) == 0 {
		return big.NewInt(2), nil
	}
	if r := new(big.Int).Sqrt(n); new(big.Int).Mul(r, r).Cmp(n) == 0 {
		return r, nil
	}

	for c := int64(1); c <= int64(f.maxAttempts); c++ {
		if d := brentRho(n, big.NewInt(c), f.iterations); d != nil {
			return d, nil
		}
	}
	return nil, cryptoerr.Newf(cryptoerr.ErrExhaustedRetries,
		"failed to split %s after %d attempts of %d iterations", n, f.maxAttempts, f.iterations)
}

// brentRho runs Brent's cycle finding on x ↦ x² + c mod n. Differences are
// multiplied together and a gcd is taken once per rhoBatch steps. It returns
// a non-trivial factor, or nil if this choice of c fails or more than budget
// steps are taken.
func brentRho(n, c *big.Int, budget int) *big.Int {
	step := func(v *big.Int) {
		v.Mul(v, v)
		v.Add(v, c)
		v.Mod(v, n)
	}

	x := new(big.Int)
	y := big.NewInt(2)
	ys := new(big.Int)
	q := big.NewInt(1)
	diff := new(big.Int)
	g := big.NewInt(1)

	steps := 0
	for r := 1; g.Cmp(one) == 0; r *= 2 {
		if steps >= budget {
			return nil
		}
		x.Set(y)
		for i := 0; i < r; i++ {
			step(y)
		}
		steps += r

		for k := 0; k < r && g.Cmp(one) == 0; k += rhoBatch {
			if steps >= budget {
				return nil
			}
			ys.Set(y)
			batch := min(rhoBatch, r-k)
			for i := 0; i < batch; i++ {
				step(y)
				diff.Sub(x, y)
				q.Mul(q, diff.Abs(diff))
				q.Mod(q, n)
			}
			steps += batch
			g = numbers.GCD(q, n)
		}
	}

	if g.Cmp(n) == 0 {
		// The batch overshot; replay it one step at a time.
		for i := 0; i < rhoBatch; i++ {
			step(ys)
			diff.Sub(x, ys)
			g = numbers.GCD(diff, n)
			if g.Cmp(one) != 0 {
				break
			}
		}
	}
	if g.Cmp(one) == 0 || g.Cmp(n) == 0 {
		return nil
	}
	return g
}
