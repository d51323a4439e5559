package numbers

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/pkcrypt/internal/testutil/unsaferand"
	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
)

func TestGCD(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{240, 46, 2},
		{46, 240, 2},
		{17, 5, 1},
		{0, 9, 9},
		{9, 0, 9},
		{-12, 18, 6},
	}
	for _, test := range tests {
		got := GCD(big.NewInt(test.a), big.NewInt(test.b))
		require.Equal(t, big.NewInt(test.want).String(), got.String(), "gcd(%d, %d)", test.a, test.b)
	}
}

func TestExtendedEuclid(t *testing.T) {
	d, x, y := ExtendedEuclid(big.NewInt(240), big.NewInt(46))
	require.Equal(t, "2", d.String())
	require.Equal(t, "-9", x.String())
	require.Equal(t, "47", y.String())

	rand := unsaferand.New(t.Name())
	limit := new(big.Int).Lsh(big.NewInt(1), 512)
	for i := 0; i < 50; i++ {
		a, err := RandomInRange(rand, big.NewInt(1), limit)
		require.NoError(t, err)
		b, err := RandomInRange(rand, big.NewInt(1), limit)
		require.NoError(t, err)

		d, x, y := ExtendedEuclid(a, b)
		lhs := new(big.Int).Mul(a, x)
		lhs.Add(lhs, new(big.Int).Mul(b, y))
		require.Equal(t, 0, lhs.Cmp(d), "a·x + b·y != d for a=%s b=%s", a, b)
		require.Equal(t, 0, d.Cmp(GCD(a, b)))
	}
}

func TestModInverse(t *testing.T) {
	tests := []struct {
		k, n, want int64
	}{
		{3, 11, 4},
		{19, 23, 17},
		{10, 17, 12},
		{-2, 23, 11},
	}
	for _, test := range tests {
		got, err := ModInverse(big.NewInt(test.k), big.NewInt(test.n))
		require.NoError(t, err)
		require.Equal(t, big.NewInt(test.want).String(), got.String(), "%d⁻¹ mod %d", test.k, test.n)
	}

	_, err := ModInverse(big.NewInt(2), big.NewInt(4))
	require.True(t, errors.Is(err, cryptoerr.ErrNotInvertible))

	_, err = ModInverse(big.NewInt(2), big.NewInt(1))
	require.True(t, errors.Is(err, cryptoerr.ErrInvalidParameter))
}

func TestModInverseMatchesBigInt(t *testing.T) {
	rand := unsaferand.New(t.Name())
	p, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007908834671663", 10)
	for i := 0; i < 20; i++ {
		k, err := RandomInRange(rand, big.NewInt(1), p)
		require.NoError(t, err)

		got, err := ModInverse(k, p)
		require.NoError(t, err)
		require.Equal(t, 0, got.Cmp(new(big.Int).ModInverse(k, p)))
	}
}

func TestModPow(t *testing.T) {
	tests := []struct {
		base, exp, mod, want int64
	}{
		{4, 13, 497, 445},
		{2, 10, 1000, 24},
		{5, 0, 23, 1},
		{0, 5, 23, 0},
		{-3, 3, 23, 19},
		{7, 3, 1, 0},
		{3, -1, 11, 4},
	}
	for _, test := range tests {
		got := ModPow(big.NewInt(test.base), big.NewInt(test.exp), big.NewInt(test.mod))
		require.Equal(t, big.NewInt(test.want).String(), got.String(),
			"%d^%d mod %d", test.base, test.exp, test.mod)
	}
}

func TestModPowMatchesBigInt(t *testing.T) {
	rand := unsaferand.New(t.Name())
	limit := new(big.Int).Lsh(big.NewInt(1), 300)
	for i := 0; i < 50; i++ {
		base, err := RandomInRange(rand, big.NewInt(0), limit)
		require.NoError(t, err)
		exp, err := RandomInRange(rand, big.NewInt(0), limit)
		require.NoError(t, err)
		mod, err := RandomInRange(rand, big.NewInt(2), limit)
		require.NoError(t, err)

		want := new(big.Int).Exp(base, exp, mod)
		require.Equal(t, 0, ModPow(base, exp, mod).Cmp(want), "%s^%s mod %s", base, exp, mod)
	}
}

func TestHexToInt(t *testing.T) {
	got, err := HexToInt("1a2b")
	require.NoError(t, err)
	require.Equal(t, "6699", got.String())

	got, err = HexToInt("0x00ff")
	require.NoError(t, err)
	require.Equal(t, "255", got.String())

	got, err = HexToInt("48656c6c6f20576f726c6421")
	require.NoError(t, err)
	require.Equal(t, "48656c6c6f20576f726c6421", got.Text(16))

	for _, bad := range []string{"zz", "abc", "0x1g"} {
		_, err := HexToInt(bad)
		require.Error(t, err)
		require.True(t, errors.Is(err, cryptoerr.ErrInvalidEncoding), bad)
	}
}

func TestRandomInRange(t *testing.T) {
	rand := unsaferand.New(t.Name())
	lo, hi := big.NewInt(2), big.NewInt(6)
	seen := map[int64]bool{}
	for i := 0; i < 200; i++ {
		r, err := RandomInRange(rand, lo, hi)
		require.NoError(t, err)
		require.True(t, r.Cmp(lo) >= 0 && r.Cmp(hi) < 0, "%s out of range", r)
		seen[r.Int64()] = true
	}
	require.Len(t, seen, 4)

	_, err := RandomInRange(rand, hi, lo)
	require.True(t, errors.Is(err, cryptoerr.ErrInvalidParameter))
	_, err = RandomInRange(rand, lo, lo)
	require.True(t, errors.Is(err, cryptoerr.ErrInvalidParameter))
}

func TestCoprime(t *testing.T) {
	require.True(t, Coprime(big.NewInt(8), big.NewInt(15)))
	require.False(t, Coprime(big.NewInt(6), big.NewInt(15)))
}
