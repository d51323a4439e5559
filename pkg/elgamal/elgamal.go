// Package elgamal implements ElGamal encryption and ElGamal signatures over
// the multiplicative group of a prime field.
//
// Messages are integers in [0, p). Encoding arbitrary byte strings, hashing
// before signing and padding are left to the caller; MessageFromHex converts
// a hex string into a message integer.
package elgamal

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
	"github.com/mahdiidarabi/pkcrypt/pkg/numbers"
	"github.com/mahdiidarabi/pkcrypt/pkg/primes"
)

// MaxNonceAttempts bounds how many nonces Sign draws before giving up.
const MaxNonceAttempts = 1024

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// PublicKey holds the group parameters and the public value y = g^x mod p.
type PublicKey struct {
	P *big.Int // prime modulus
	G *big.Int // primitive root mod P
	Y *big.Int // public key
}

// PrivateKey is an ElGamal key pair. X must never leave its owner.
type PrivateKey struct {
	PublicKey
	X *big.Int // private key, 2 <= X <= P-2
}

// Ciphertext is an ElGamal ciphertext (a, b) = (g^k, y^k·m) mod p.
type Ciphertext struct {
	A *big.Int
	B *big.Int
}

// Signature is an ElGamal signature (r, s).
type Signature struct {
	R *big.Int
	S *big.Int
}

// GenerateKeys creates a fresh prime p with a bit length in
// [bitsFrom, bitsTo], a primitive root g of it and a key pair over the group.
func GenerateKeys(random io.Reader, bitsFrom, bitsTo int) (*PrivateKey, error) {
	return GenerateKeysWith(primes.NewGenerator(random), bitsFrom, bitsTo)
}

// GenerateKeysWith is GenerateKeys using a caller-configured generator; its
// random source is also used for the private key. A prime whose p-1 cannot
// be factored within the generator's bounds is discarded and another one is
// drawn, up to Config.MaxPrimeAttempts times.
func GenerateKeysWith(gen *primes.Generator, bitsFrom, bitsTo int) (*PrivateKey, error) {
	var log logrus.FieldLogger = logrus.StandardLogger()
	if gen.Config.Logger != nil {
		log = gen.Config.Logger
	}

	for attempt := 1; attempt <= gen.Config.MaxPrimeAttempts; attempt++ {
		p, err := gen.Prime(bitsFrom, bitsTo)
		if err != nil {
			return nil, fmt.Errorf("failed to generate prime: %w", err)
		}

		g, err := gen.PrimitiveRoot(p)
		if errors.Is(err, cryptoerr.ErrExhaustedRetries) {
			log.WithFields(logrus.Fields{
				"p":       p,
				"attempt": attempt,
			}).Debug("p-1 resisted factoring, drawing another prime")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find primitive root: %w", err)
		}

		return GenerateKey(gen.Rand, p, g)
	}

	return nil, cryptoerr.Newf(cryptoerr.ErrExhaustedRetries,
		"no prime with a factorable p-1 after %d attempts", gen.Config.MaxPrimeAttempts)
}

// GenerateKey creates a key pair for existing group parameters (p, g).
func GenerateKey(random io.Reader, p, g *big.Int) (*PrivateKey, error) {
	x, err := secretExponent(random, p)
	if err != nil {
		return nil, err
	}

	return &PrivateKey{
		PublicKey: PublicKey{
			P: p,
			G: g,
			Y: numbers.ModPow(g, x, p),
		},
		X: x,
	}, nil
}

// secretExponent samples from [2, p-2].
func secretExponent(random io.Reader, p *big.Int) (*big.Int, error) {
	hi := new(big.Int).Sub(p, one)
	k, err := numbers.RandomInRange(random, two, hi)
	if err != nil {
		return nil, fmt.Errorf("failed to sample exponent for p = %s: %w", p, err)
	}
	return k, nil
}

// Encode encrypts the message m < p under pub: a fresh secret k in [2, p-2]
// gives a = g^k mod p and b = y^k·m mod p.
func Encode(random io.Reader, pub *PublicKey, m *big.Int) (*Ciphertext, error) {
	if m.Sign() < 0 || m.Cmp(pub.P) >= 0 {
		return nil, cryptoerr.Newf(cryptoerr.ErrInvalidParameter,
			"message %s is outside [0, p) for p = %s", m, pub.P)
	}

	k, err := secretExponent(random, pub.P)
	if err != nil {
		return nil, err
	}

	a := numbers.ModPow(pub.G, k, pub.P)
	b := numbers.ModPow(pub.Y, k, pub.P)
	b.Mul(b, m)
	b.Mod(b, pub.P)

	return &Ciphertext{A: a, B: b}, nil
}

// Decode recovers m = b·a^(p-1-x) mod p. Since a^x = y^k, multiplying by
// a^(p-1-x) divides out the mask by Fermat's little theorem.
func Decode(priv *PrivateKey, c *Ciphertext) *big.Int {
	e := new(big.Int).Sub(priv.P, one)
	e.Sub(e, priv.X)

	m := numbers.ModPow(c.A, e, priv.P)
	m.Mul(m, c.B)
	return m.Mod(m, priv.P)
}

// Sign signs the integer message m ≥ 0. The nonce k is resampled until it is
// coprime to p-1 and yields s ≠ 0; r = g^k mod p and
// s = (m - x·r)·k⁻¹ mod (p-1).
func Sign(random io.Reader, priv *PrivateKey, m *big.Int) (*Signature, error) {
	if m.Sign() < 0 {
		return nil, cryptoerr.Newf(cryptoerr.ErrInvalidParameter, "message %s is negative", m)
	}

	pMinusOne := new(big.Int).Sub(priv.P, one)
	for attempt := 0; attempt < MaxNonceAttempts; attempt++ {
		k, err := secretExponent(random, priv.P)
		if err != nil {
			return nil, err
		}
		if !numbers.Coprime(k, pMinusOne) {
			continue
		}
		kInv, err := numbers.ModInverse(k, pMinusOne)
		if err != nil {
			return nil, err
		}

		r := numbers.ModPow(priv.G, k, priv.P)

		s := new(big.Int).Mul(priv.X, r)
		s.Sub(m, s)
		s.Mul(s, kInv)
		s.Mod(s, pMinusOne)
		if s.Sign() == 0 {
			continue
		}

		return &Signature{R: r, S: s}, nil
	}

	return nil, cryptoerr.Newf(cryptoerr.ErrExhaustedRetries,
		"no usable nonce coprime to %s after %d attempts", pMinusOne, MaxNonceAttempts)
}

// Verify reports whether sig is a valid signature of m under pub, i.e.
// whether y^r·r^s ≡ g^m (mod p) with 0 < r < p and 0 ≤ s < p-1.
func Verify(pub *PublicKey, m *big.Int, sig *Signature) bool {
	if sig == nil || sig.R == nil || sig.S == nil || m.Sign() < 0 {
		return false
	}
	pMinusOne := new(big.Int).Sub(pub.P, one)
	if sig.R.Sign() <= 0 || sig.R.Cmp(pub.P) >= 0 {
		return false
	}
	if sig.S.Sign() < 0 || sig.S.Cmp(pMinusOne) >= 0 {
		return false
	}

	left := numbers.ModPow(pub.Y, sig.R, pub.P)
	left.Mul(left, numbers.ModPow(sig.R, sig.S, pub.P))
	left.Mod(left, pub.P)

	right := numbers.ModPow(pub.G, m, pub.P)
	return left.Cmp(right) == 0
}

// MessageFromHex decodes a big-endian hex string into a message integer.
func MessageFromHex(s string) (*big.Int, error) {
	return numbers.HexToInt(s)
}
