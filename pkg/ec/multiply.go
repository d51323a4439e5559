package ec

import (
	"math/big"

	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
)

// Multiply returns k·p using double-and-add.
//
// The table {p, 2p, 4p, …, 2^i·p} is built by repeated doubling up to the
// largest power of two not exceeding k; entries are then added from the
// largest weight down whenever the running multiplier plus that weight does
// not exceed k, which selects exactly the set bits of k. This takes
// O(log k) group operations.
//
// k = 0 gives the point at infinity and a negative k multiplies -p by |k|.
func (p *Point) Multiply(k *big.Int) (*Point, error) {
	if !p.IsOnCurve() {
		return nil, cryptoerr.Newf(cryptoerr.ErrValidationFailed, "point %s is not on the curve", p)
	}
	if k.Sign() < 0 {
		return p.Negate().Multiply(new(big.Int).Neg(k))
	}
	if k.Sign() == 0 || p.infinity {
		return p.curve.Infinity(), nil
	}

	table := []*Point{p.Clone()}
	for i := 1; i < k.BitLen(); i++ {
		next, err := table[i-1].Double()
		if err != nil {
			return nil, err
		}
		table = append(table, next)
	}

	result := p.curve.Infinity()
	covered := new(big.Int)
	weight := new(big.Int)
	sum := new(big.Int)
	for i := len(table) - 1; i >= 0; i-- {
		weight.Lsh(one, uint(i))
		if sum.Add(covered, weight).Cmp(k) > 0 {
			continue
		}

		var err error
		result, err = result.Add(table[i])
		if err != nil {
			return nil, err
		}
		covered.Set(sum)
	}
	return result, nil
}

// SharedPoint returns priv·peer, the point both parties of an elliptic-curve
// Diffie-Hellman exchange arrive at. A result at infinity is rejected.
func SharedPoint(priv *big.Int, peer *Point) (*Point, error) {
	shared, err := peer.Multiply(priv)
	if err != nil {
		return nil, err
	}
	if shared.IsInfinity() {
		return nil, cryptoerr.New(cryptoerr.ErrInvalidParameter, "shared point is the point at infinity")
	}
	return shared, nil
}
