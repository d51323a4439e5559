package recovery

import (
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/pkcrypt/internal/parser"
	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
	"github.com/mahdiidarabi/pkcrypt/pkg/ec"
	"github.com/mahdiidarabi/pkcrypt/pkg/numbers"
)

// Signature is an ECDSA signature (r, s) together with the digest z it signs.
type Signature = parser.Signature

// AffineRelationship describes nonces related by k2 = A·k1 + B (mod n).
type AffineRelationship struct {
	A *big.Int
	B *big.Int
}

// RecoveryResult is a recovered private key and how it was found.
type RecoveryResult struct {
	PrivateKey    *big.Int
	Relationship  AffineRelationship
	SignaturePair [2]int // indices into the signature slice
	Verified      bool   // matched against the supplied public key
	Pattern       string
}

var secp256k1Curve, secp256k1G = ec.Secp256k1()

// RecoverPrivateKey recovers the private key from two signatures whose
// nonces satisfy k2 = a·k1 + b (mod n):
//
//	d = (a·s2·z1 - s1·z2 + b·s1·s2) / (r2·s1 - a·r1·s2)  (mod n)
//
// A zero denominator means the pair carries no information about d under
// this relationship and is reported as cryptoerr.ErrNotInvertible.
func RecoverPrivateKey(sig1, sig2 *Signature, a, b, n *big.Int) (*big.Int, error) {
	num := new(big.Int).Mul(a, sig2.S)
	num.Mul(num, sig1.Z)
	num.Sub(num, new(big.Int).Mul(sig1.S, sig2.Z))
	bs1s2 := new(big.Int).Mul(b, sig1.S)
	bs1s2.Mul(bs1s2, sig2.S)
	num.Add(num, bs1s2)
	num.Mod(num, n)

	den := new(big.Int).Mul(sig2.R, sig1.S)
	ar1s2 := new(big.Int).Mul(a, sig1.R)
	ar1s2.Mul(ar1s2, sig2.S)
	den.Sub(den, ar1s2)
	den.Mod(den, n)
	if den.Sign() == 0 {
		return nil, cryptoerr.New(cryptoerr.ErrNotInvertible, "denominator is zero: cannot recover private key")
	}

	denInv, err := numbers.ModInverse(den, n)
	if err != nil {
		return nil, err
	}

	d := num.Mul(num, denInv)
	return d.Mod(d, n), nil
}

// VerifyRecoveredKey reports whether d·g equals the public point q.
func VerifyRecoveredKey(d *big.Int, g, q *ec.Point) (bool, error) {
	n := g.Curve().ScalarModulus()
	if d.Sign() <= 0 || d.Cmp(n) >= 0 {
		return false, cryptoerr.Newf(cryptoerr.ErrInvalidParameter, "private key out of range [1, %s)", n)
	}

	p, err := multiplyBase(g, d)
	if err != nil {
		return false, err
	}
	return p.Equal(q), nil
}

// nonceConsistent reports whether d reproduces r of sig: with
// k = s⁻¹·(z + r·d), (k·g).x must equal r mod n. It lets candidates be
// checked when no public key is known.
func nonceConsistent(d *big.Int, g *ec.Point, sig *Signature) bool {
	n := g.Curve().ScalarModulus()
	sInv, err := numbers.ModInverse(sig.S, n)
	if err != nil {
		return false
	}
	k := new(big.Int).Mul(sig.R, d)
	k.Add(k, sig.Z)
	k.Mul(k, sInv)
	k.Mod(k, n)
	if k.Sign() == 0 {
		return false
	}

	kG, err := multiplyBase(g, k)
	if err != nil || kG.IsInfinity() {
		return false
	}
	return new(big.Int).Mod(kG.X, n).Cmp(new(big.Int).Mod(sig.R, n)) == 0
}

// multiplyBase computes k·g, using decred's secp256k1 implementation when g
// is the secp256k1 generator.
func multiplyBase(g *ec.Point, k *big.Int) (*ec.Point, error) {
	if !isSecp256k1Generator(g) || k.Sign() <= 0 || k.Cmp(secp256k1Curve.N) >= 0 {
		return g.Multiply(k)
	}

	var buf [32]byte
	pub := secp256k1.PrivKeyFromBytes(k.FillBytes(buf[:])).PubKey()
	return g.Curve().NewPoint(pub.X(), pub.Y()), nil
}

// isSecp256k1Generator matches g against the canonical secp256k1 base point
// with plain comparisons, since it runs once per candidate key.
func isSecp256k1Generator(g *ec.Point) bool {
	if g == secp256k1G {
		return true
	}
	c := g.Curve()
	if g.IsInfinity() || c.Name != secp256k1Curve.Name {
		return false
	}
	return c.P.Cmp(secp256k1Curve.P) == 0 &&
		c.A.Cmp(secp256k1Curve.A) == 0 &&
		c.B.Cmp(secp256k1Curve.B) == 0 &&
		g.X.Cmp(secp256k1G.X) == 0 &&
		g.Y.Cmp(secp256k1G.Y) == 0
}
