// Package ec implements the group of points on a short Weierstrass curve
// y² = x³ + a·x + b over a prime field, in affine coordinates.
//
// Points are a tagged variant: either an affine pair (X, Y) or the point at
// infinity, the identity of the group. Every point produced by Add, Double or
// Multiply is checked against the curve equation, and inputs that are not on
// their curve are rejected with an error of kind
// cryptoerr.ErrValidationFailed instead of yielding a malformed point.
//
//	curve, _ := ec.NewCurve(big.NewInt(1), big.NewInt(1), big.NewInt(23))
//	p := curve.NewPoint(big.NewInt(3), big.NewInt(10))
//	q := curve.NewPoint(big.NewInt(9), big.NewInt(7))
//	r, err := p.Add(q) // (17, 20)
//
// The arithmetic is variable time and meant for teaching and testing, not for
// protecting secrets against side channels.
package ec

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// Curve describes y² = x³ + A·x + B (mod P). N is the order of the group
// generated by the curve's base point when known, and nil otherwise.
// Curves are immutable once created and are shared by all of their points.
type Curve struct {
	Name string
	A    *big.Int
	B    *big.Int
	P    *big.Int
	N    *big.Int
}

// NewCurve creates the curve y² = x³ + a·x + b (mod p). The modulus must be a
// probable prime greater than 3; the discriminant is not checked.
func NewCurve(a, b, p *big.Int) (*Curve, error) {
	if p.Cmp(three) <= 0 || !p.ProbablyPrime(20) {
		return nil, cryptoerr.Newf(cryptoerr.ErrInvalidParameter,
			"curve modulus %s is not a prime greater than 3", p)
	}

	return &Curve{
		Name: fmt.Sprintf("y^2 = x^3 + %s*x + %s mod %s", a, b, p),
		A:    new(big.Int).Set(a),
		B:    new(big.Int).Set(b),
		P:    new(big.Int).Set(p),
	}, nil
}

// WithOrder returns a copy of the curve that records n as the order of its
// base point. ECDSA reduces scalars modulo this order.
func (c *Curve) WithOrder(n *big.Int) *Curve {
	cp := *c
	cp.N = new(big.Int).Set(n)
	return &cp
}

// ScalarModulus returns the modulus that scalars, and ECDSA signature values,
// are reduced by: the group order when known, otherwise the field prime.
func (c *Curve) ScalarModulus() *big.Int {
	if c.N != nil {
		return c.N
	}
	return c.P
}

// ByteSize is the length of one field element in the SEC1 encoding.
func (c *Curve) ByteSize() int {
	return (c.P.BitLen() + 7) / 8
}

// NewPoint creates the affine point (x, y) on c. The point is not validated;
// use IsOnCurve to check it.
func (c *Curve) NewPoint(x, y *big.Int) *Point {
	return &Point{
		X:     new(big.Int).Set(x),
		Y:     new(big.Int).Set(y),
		curve: c,
	}
}

// Infinity returns the identity element of the group.
func (c *Curve) Infinity() *Point {
	return &Point{infinity: true, curve: c}
}

// equation returns x³ + a·x + b mod p.
func (c *Curve) equation(x *big.Int) *big.Int {
	rhs := new(big.Int).Mul(x, x)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, new(big.Int).Mul(c.A, x))
	rhs.Add(rhs, c.B)
	return rhs.Mod(rhs, c.P)
}

// sameCurve reports whether c and other describe the same equation.
func (c *Curve) sameCurve(other *Curve) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.P.Cmp(other.P) == 0 && congruent(c.A, other.A, c.P) && congruent(c.B, other.B, c.P)
}

func congruent(x, y, m *big.Int) bool {
	d := new(big.Int).Sub(x, y)
	return d.Mod(d, m).Sign() == 0
}
