// Package ecdsa implements ECDSA signing and verification over the curves of
// package ec.
//
// Scalars are reduced modulo the curve's ScalarModulus: the order of the base
// point for named curves, and the field prime for ad-hoc curves that carry no
// order. Sign takes the nonce explicitly so that known-answer tests and the
// key-recovery tooling can reproduce signatures; SignRandom draws it.
//
// A nonce must never be reused or be predictable from another nonce. Two
// signatures whose nonces are related by k₂ = a·k₁ + b leak the private key,
// see package recovery.
package ecdsa

import (
	"crypto/sha256"
	"hash"
	"io"
	"math/big"

	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
	"github.com/mahdiidarabi/pkcrypt/pkg/ec"
	"github.com/mahdiidarabi/pkcrypt/pkg/numbers"
)

// MaxNonceAttempts bounds how many nonces SignRandom draws before giving up.
const MaxNonceAttempts = 64

var one = big.NewInt(1)

// Signature is an ECDSA signature (r, s).
type Signature struct {
	R *big.Int
	S *big.Int
}

// PrivateKey is an ECDSA key pair over the group generated by G.
type PrivateKey struct {
	G *ec.Point // base point
	Q *ec.Point // public point d·G
	D *big.Int  // private scalar
}

// GenerateKey draws d uniformly from [1, n) and returns the key pair (d, d·g).
func GenerateKey(random io.Reader, g *ec.Point) (*PrivateKey, error) {
	n := g.Curve().ScalarModulus()
	d, err := numbers.RandomInRange(random, one, n)
	if err != nil {
		return nil, err
	}
	q, err := g.Multiply(d)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{G: g, Q: q, D: d}, nil
}

// Sign signs the digest z with private scalar d and nonce k:
//
//	r = (k·G).x mod n
//	s = k⁻¹·(z + r·d) mod n
//
// A nonce yielding r = 0 or s = 0, or one that is not invertible mod n, is
// rejected.
func Sign(g *ec.Point, d, k, z *big.Int) (*Signature, error) {
	n := g.Curve().ScalarModulus()

	kInv, err := numbers.ModInverse(k, n)
	if err != nil {
		return nil, err
	}

	kG, err := g.Multiply(k)
	if err != nil {
		return nil, err
	}
	if kG.IsInfinity() {
		return nil, cryptoerr.Newf(cryptoerr.ErrInvalidParameter, "nonce %s maps to the point at infinity", k)
	}

	r := new(big.Int).Mod(kG.X, n)
	if r.Sign() == 0 {
		return nil, cryptoerr.New(cryptoerr.ErrInvalidParameter, "nonce yields r = 0")
	}

	s := new(big.Int).Mul(r, d)
	s.Add(s, z)
	s.Mul(s, kInv)
	s.Mod(s, n)
	if s.Sign() == 0 {
		return nil, cryptoerr.New(cryptoerr.ErrInvalidParameter, "nonce yields s = 0")
	}

	return &Signature{R: r, S: s}, nil
}

// SignRandom signs z with a fresh nonce drawn from random, retrying nonces
// rejected by Sign up to MaxNonceAttempts times.
func SignRandom(random io.Reader, priv *PrivateKey, z *big.Int) (*Signature, error) {
	n := priv.G.Curve().ScalarModulus()
	for i := 0; i < MaxNonceAttempts; i++ {
		k, err := numbers.RandomInRange(random, one, n)
		if err != nil {
			return nil, err
		}
		sig, err := Sign(priv.G, priv.D, k, z)
		if err == nil {
			return sig, nil
		}
	}
	return nil, cryptoerr.Newf(cryptoerr.ErrExhaustedRetries,
		"no usable nonce after %d attempts", MaxNonceAttempts)
}

// Verify reports whether sig is a valid signature of digest z under the
// public point q:
//
//	w = s⁻¹, u₁ = z·w, u₂ = r·w (mod n)
//	accept iff (u₁·G + u₂·Q).x mod n = r
//
// Signatures with r or s outside [1, n) and public points that are not on
// the curve, or at infinity, are rejected.
func Verify(g, q *ec.Point, z *big.Int, sig *Signature) bool {
	if sig == nil || sig.R == nil || sig.S == nil || z == nil {
		return false
	}
	if q.IsInfinity() || !q.IsOnCurve() {
		return false
	}

	n := g.Curve().ScalarModulus()
	if sig.R.Sign() <= 0 || sig.R.Cmp(n) >= 0 || sig.S.Sign() <= 0 || sig.S.Cmp(n) >= 0 {
		return false
	}

	w, err := numbers.ModInverse(sig.S, n)
	if err != nil {
		return false
	}
	u1 := new(big.Int).Mul(z, w)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(sig.R, w)
	u2.Mod(u2, n)

	u1G, err := g.Multiply(u1)
	if err != nil {
		return false
	}
	u2Q, err := q.Multiply(u2)
	if err != nil {
		return false
	}
	sum, err := u1G.Add(u2Q)
	if err != nil || sum.IsInfinity() {
		return false
	}

	x := new(big.Int).Mod(sum.X, n)
	return x.Cmp(sig.R) == 0
}

// HashMessage returns SHA-256(msg) as an integer reduced mod n.
func HashMessage(msg []byte, n *big.Int) *big.Int {
	return HashMessageWith(sha256.New, msg, n)
}

// HashMessageWith is HashMessage for an arbitrary hash function, such as
// crypto/sha1 for interoperating with SHA-1 based signers.
func HashMessageWith(newHash func() hash.Hash, msg []byte, n *big.Int) *big.Int {
	h := newHash()
	h.Write(msg)
	z := new(big.Int).SetBytes(h.Sum(nil))
	return z.Mod(z, n)
}
