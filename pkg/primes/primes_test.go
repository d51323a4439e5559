package primes

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/pkcrypt/internal/testutil/unsaferand"
	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
	"github.com/mahdiidarabi/pkcrypt/pkg/numbers"
)

// isPrimitiveRootBruteForce walks every exponent below p and checks that only
// p-1 maps g to one. O(p); used as an oracle for small primes.
func isPrimitiveRootBruteForce(g, p *big.Int) bool {
	if !numbers.Coprime(g, p) {
		return false
	}
	pMinusOne := new(big.Int).Sub(p, one)
	if numbers.ModPow(g, pMinusOne, p).Cmp(one) != 0 {
		return false
	}
	for e := big.NewInt(1); e.Cmp(pMinusOne) < 0; e.Add(e, one) {
		if numbers.ModPow(g, e, p).Cmp(one) == 0 {
			return false
		}
	}
	return true
}

func TestPrime(t *testing.T) {
	gen := NewGenerator(unsaferand.New(t.Name()))

	tests := []struct {
		from, to int
	}{
		{16, 16},
		{8, 8},
		{9, 24},
		{60, 70},
		{128, 128},
	}
	for _, test := range tests {
		p, err := gen.Prime(test.from, test.to)
		require.NoError(t, err)
		require.True(t, p.ProbablyPrime(20), "%s is not prime", p)
		require.Zero(t, p.BitLen()%8, "bit length %d not a multiple of 8", p.BitLen())
		require.GreaterOrEqual(t, p.BitLen(), test.from)
		require.LessOrEqual(t, p.BitLen(), test.to)
	}
}

func TestPrimeInvalidRange(t *testing.T) {
	gen := NewGenerator(unsaferand.New(t.Name()))

	for _, test := range [][2]int{{9, 15}, {0, 7}, {32, 16}} {
		_, err := gen.Prime(test[0], test[1])
		require.True(t, errors.Is(err, cryptoerr.ErrInvalidParameter), "range %v", test)
	}
}

func TestPrimeExhaustedRetries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPrimeAttempts = 0
	gen := NewGenerator(unsaferand.New(t.Name())).WithConfig(cfg)

	_, err := gen.Prime(16, 16)
	require.True(t, errors.Is(err, cryptoerr.ErrExhaustedRetries))
}

func TestIsPrimitiveRootMatchesBruteForce(t *testing.T) {
	for _, pv := range []int64{5, 7, 11, 13, 23, 31, 97, 257} {
		p := big.NewInt(pv)
		for gv := int64(1); gv < pv; gv++ {
			g := big.NewInt(gv)
			got, err := IsPrimitiveRoot(g, p)
			require.NoError(t, err)
			require.Equal(t, isPrimitiveRootBruteForce(g, p), got, "g=%d p=%d", gv, pv)
		}
	}
}

func TestIsPrimitiveRootKnownValues(t *testing.T) {
	tests := []struct {
		g, p int64
		want bool
	}{
		{2, 5, true},
		{4, 5, false},
		{5, 23, true},
		{2, 23, false},
		{3, 65537, true},
		{2, 65537, false},
		{23, 23, false},
	}
	for _, test := range tests {
		got, err := IsPrimitiveRoot(big.NewInt(test.g), big.NewInt(test.p))
		require.NoError(t, err)
		require.Equal(t, test.want, got, "g=%d p=%d", test.g, test.p)
	}
}

func TestPrimitiveRoot(t *testing.T) {
	gen := NewGenerator(unsaferand.New(t.Name()))

	for i := 0; i < 3; i++ {
		p, err := gen.Prime(16, 16)
		require.NoError(t, err)

		g, err := gen.PrimitiveRoot(p)
		require.NoError(t, err)
		require.True(t, g.Cmp(two) >= 0 && g.Cmp(new(big.Int).Sub(p, one)) < 0)
		require.True(t, isPrimitiveRootBruteForce(g, p), "g=%s p=%s", g, p)
	}
}

func TestPrimitiveRootLargePrime(t *testing.T) {
	gen := NewGenerator(unsaferand.New(t.Name()))

	p, err := gen.Prime(64, 64)
	require.NoError(t, err)
	g, err := gen.PrimitiveRoot(p)
	require.NoError(t, err)

	ok, err := IsPrimitiveRoot(g, p)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPrimitiveRootNotFound(t *testing.T) {
	gen := NewGenerator(unsaferand.New(t.Name()))

	// 2 and 3 leave no candidate below p-1.
	for _, p := range []int64{2, 3} {
		_, err := gen.PrimitiveRoot(big.NewInt(p))
		require.True(t, errors.Is(err, cryptoerr.ErrNoRootFound), "p=%d", p)
	}

	// 2 is not a primitive root mod 23; scanning only it finds nothing.
	cfg := DefaultConfig()
	cfg.MaxRootCandidates = 1
	gen.WithConfig(cfg)
	_, err := gen.PrimitiveRoot(big.NewInt(23))
	require.True(t, errors.Is(err, cryptoerr.ErrNoRootFound))
}

func TestFactor(t *testing.T) {
	tests := []struct {
		n    string
		want []int64
	}{
		{"22", []int64{2, 11}},
		{"65536", []int64{2}},
		{"360", []int64{2, 3, 5}},
		{"9409", []int64{97}},
	}
	for _, test := range tests {
		n, _ := new(big.Int).SetString(test.n, 10)
		got, err := Factor(n)
		require.NoError(t, err)
		require.Equal(t, test.want, int64s(got), "factors of %s", test.n)
	}

	// Product of two primes above the trial-division bound.
	p, q := big.NewInt(1000003), big.NewInt(998244353)
	got, err := Factor(new(big.Int).Mul(p, q))
	require.NoError(t, err)
	require.Equal(t, []int64{p.Int64(), q.Int64()}, int64s(got))

	_, err = Factor(big.NewInt(1))
	require.True(t, errors.Is(err, cryptoerr.ErrInvalidParameter))
}

// hardPrime is 2·q1·q2 + 1 for the 62-bit primes q1 = 3853833695601856453
// and q2 = 4475598310412189951, so p-1 has no factor rho can reach.
const hardPrime = "34496423153290469392123345113742207607"

func TestFactorGivesUpQuickly(t *testing.T) {
	p, _ := new(big.Int).SetString(hardPrime, 10)
	pMinusOne := new(big.Int).Sub(p, one)

	start := time.Now()
	_, err := Factor(pMinusOne)
	require.True(t, errors.Is(err, cryptoerr.ErrExhaustedRetries), "got %v", err)
	require.Less(t, time.Since(start), 20*time.Second)

	start = time.Now()
	_, err = NewGenerator(unsaferand.New(t.Name())).PrimitiveRoot(p)
	require.True(t, errors.Is(err, cryptoerr.ErrExhaustedRetries), "got %v", err)
	require.Less(t, time.Since(start), 20*time.Second)
}

func TestPrimitiveRoot128Bits(t *testing.T) {
	gen := NewGenerator(unsaferand.New(t.Name()))

	start := time.Now()
	found := 0
	for i := 0; i < 30 && found < 2; i++ {
		p, err := gen.Prime(128, 128)
		require.NoError(t, err)

		g, err := gen.PrimitiveRoot(p)
		if errors.Is(err, cryptoerr.ErrExhaustedRetries) {
			continue
		}
		require.NoError(t, err)
		ok, err := gen.IsPrimitiveRoot(g, p)
		require.NoError(t, err)
		require.True(t, ok, "g=%s p=%s", g, p)
		found++
	}
	require.Equal(t, 2, found)
	require.Less(t, time.Since(start), 90*time.Second)
}

func TestGeneratorFactorBounds(t *testing.T) {
	// p-1 = 2 · 1000003 · 1000121; both odd factors exceed the trial
	// division bound, so rho has to split their product.
	p := big.NewInt(2000248000727)

	ok, err := IsPrimitiveRoot(big.NewInt(5), p)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = IsPrimitiveRoot(big.NewInt(2), p)
	require.NoError(t, err)
	require.False(t, ok)

	cfg := DefaultConfig()
	cfg.MaxFactorAttempts = 0
	gen := NewGenerator(unsaferand.New(t.Name())).WithConfig(cfg)

	_, err = gen.IsPrimitiveRoot(big.NewInt(5), p)
	require.True(t, errors.Is(err, cryptoerr.ErrExhaustedRetries), "got %v", err)
	_, err = gen.Factor(new(big.Int).Sub(p, one))
	require.True(t, errors.Is(err, cryptoerr.ErrExhaustedRetries), "got %v", err)

	factors, err := NewGenerator(nil).Factor(new(big.Int).Sub(p, one))
	require.NoError(t, err)
	require.Equal(t, []int64{2, 1000003, 1000121}, int64s(factors))
}

func int64s(values []*big.Int) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = v.Int64()
	}
	return out
}
