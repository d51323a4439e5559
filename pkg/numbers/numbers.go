// Package numbers provides the modular arithmetic the rest of the toolkit is
// built on: gcd, the extended Euclidean algorithm, modular inverses, modular
// exponentiation and uniform sampling from an injected randomness source.
//
// All values are *big.Int end to end; nothing is narrowed to a machine word.
// Functions never modify their arguments.
package numbers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"

	"filippo.io/bigmod"

	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// GCD returns the greatest common divisor of a and b using the Euclidean
// algorithm. The result is always non-negative.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	for y.Sign() != 0 {
		x.Mod(x, y)
		x, y = y, x
	}
	return x
}

// ExtendedEuclid returns (d, x, y) such that a·x + b·y = d, where d is the
// gcd of a and b.
func ExtendedEuclid(a, b *big.Int) (d, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldX, x := big.NewInt(1), big.NewInt(0)
	oldY, y := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		// Truncated division keeps the coefficients identical to the
		// recursive definition extended_euclid(b, a mod b).
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, x)
		oldX, x = x, new(big.Int).Sub(oldX, tmp)

		tmp.Mul(q, y)
		oldY, y = y, new(big.Int).Sub(oldY, tmp)
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldX.Neg(oldX)
		oldY.Neg(oldY)
	}
	return oldR, oldX, oldY
}

// ModInverse returns k⁻¹ mod n, computed as ((x mod n) + n) mod n where x is
// the Bézout coefficient of k from ExtendedEuclid(k, n).
//
// An error of kind ErrNotInvertible is returned when gcd(k, n) ≠ 1 and
// ErrInvalidParameter when n < 2.
func ModInverse(k, n *big.Int) (*big.Int, error) {
	if n.Cmp(one) <= 0 {
		return nil, cryptoerr.Newf(cryptoerr.ErrInvalidParameter,
			"modulus %s must be greater than one", n)
	}

	d, x, _ := ExtendedEuclid(k, n)
	if d.Cmp(one) != 0 {
		return nil, cryptoerr.Newf(cryptoerr.ErrNotInvertible,
			"%s is not invertible mod %s (gcd %s)", k, n, d)
	}

	inv := new(big.Int).Rem(x, n)
	inv.Add(inv, n)
	return inv.Mod(inv, n), nil
}

// ModPow returns base^exponent mod modulus.
//
// Odd moduli go through bigmod's Montgomery exponentiation; even moduli and
// negative exponents fall back to big.Int.Exp. The modulus must be positive.
func ModPow(base, exponent, modulus *big.Int) *big.Int {
	if modulus.Cmp(one) == 0 {
		return new(big.Int)
	}
	if exponent.Sign() < 0 || modulus.Bit(0) == 0 {
		return new(big.Int).Exp(base, exponent, modulus)
	}
	if exponent.Sign() == 0 {
		return big.NewInt(1)
	}

	m, err := bigmod.NewModulus(modulus.Bytes())
	if err != nil {
		return new(big.Int).Exp(base, exponent, modulus)
	}
	reduced := new(big.Int).Mod(base, modulus)
	if reduced.Sign() == 0 {
		return reduced
	}
	x, err := bigmod.NewNat().SetBytes(reduced.Bytes(), m)
	if err != nil {
		return new(big.Int).Exp(base, exponent, modulus)
	}
	x.Exp(x, exponent.Bytes(), m)
	return new(big.Int).SetBytes(x.Bytes(m))
}

// HexToInt decodes a hex string into its big-endian integer value. An
// optional 0x prefix is accepted.
func HexToInt(s string) (*big.Int, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, cryptoerr.Newf(cryptoerr.ErrInvalidEncoding,
			"failed to decode hex %q: %v", s, err)
	}
	return new(big.Int).SetBytes(b), nil
}

// RandomInRange returns a uniformly distributed integer in [lo, hi), reading
// entropy from random.
func RandomInRange(random io.Reader, lo, hi *big.Int) (*big.Int, error) {
	width := new(big.Int).Sub(hi, lo)
	if width.Cmp(zero) <= 0 {
		return nil, cryptoerr.Newf(cryptoerr.ErrInvalidParameter,
			"empty range [%s, %s)", lo, hi)
	}

	r, err := rand.Int(random, width)
	if err != nil {
		return nil, fmt.Errorf("failed to read randomness: %w", err)
	}
	return r.Add(r, lo), nil
}

// Coprime reports whether gcd(a, b) = 1.
func Coprime(a, b *big.Int) bool {
	return GCD(a, b).Cmp(one) == 0
}
