package ec

import (
	"math/big"

	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
)

// SEC1 encoding prefixes.
const (
	pointInfinity     = 0x00
	pointCompressedEv = 0x02
	pointCompressedOd = 0x03
	pointUncompressed = 0x04
)

// Bytes returns the SEC1 uncompressed encoding 0x04 || X || Y, with each
// coordinate padded to the curve's byte size. The point at infinity encodes
// as the single byte 0x00.
func (p *Point) Bytes() []byte {
	if p.infinity {
		return []byte{pointInfinity}
	}
	size := p.curve.ByteSize()
	b := make([]byte, 1+2*size)
	b[0] = pointUncompressed
	new(big.Int).Mod(p.X, p.curve.P).FillBytes(b[1 : 1+size])
	new(big.Int).Mod(p.Y, p.curve.P).FillBytes(b[1+size:])
	return b
}

// BytesCompressed returns the SEC1 compressed encoding 0x02/0x03 || X.
func (p *Point) BytesCompressed() []byte {
	if p.infinity {
		return []byte{pointInfinity}
	}
	size := p.curve.ByteSize()
	b := make([]byte, 1+size)
	b[0] = pointCompressedEv
	if new(big.Int).Mod(p.Y, p.curve.P).Bit(0) == 1 {
		b[0] = pointCompressedOd
	}
	new(big.Int).Mod(p.X, p.curve.P).FillBytes(b[1:])
	return b
}

// ParsePoint decodes a SEC1 compressed or uncompressed point (or 0x00 for
// infinity) and verifies that it lies on c.
func (c *Curve) ParsePoint(b []byte) (*Point, error) {
	size := c.ByteSize()
	if len(b) == 0 {
		return nil, cryptoerr.New(cryptoerr.ErrInvalidEncoding, "empty point encoding")
	}

	switch b[0] {
	case pointInfinity:
		if len(b) != 1 {
			return nil, cryptoerr.Newf(cryptoerr.ErrInvalidEncoding,
				"malformed infinity encoding of length %d", len(b))
		}
		return c.Infinity(), nil

	case pointUncompressed:
		if len(b) != 1+2*size {
			return nil, cryptoerr.Newf(cryptoerr.ErrInvalidEncoding,
				"uncompressed point must be %d bytes, got %d", 1+2*size, len(b))
		}
		x := new(big.Int).SetBytes(b[1 : 1+size])
		y := new(big.Int).SetBytes(b[1+size:])
		if x.Cmp(c.P) >= 0 || y.Cmp(c.P) >= 0 {
			return nil, cryptoerr.New(cryptoerr.ErrInvalidEncoding, "coordinate exceeds field prime")
		}
		p := c.NewPoint(x, y)
		if !p.IsOnCurve() {
			return nil, cryptoerr.Newf(cryptoerr.ErrValidationFailed, "point %s is not on the curve", p)
		}
		return p, nil

	case pointCompressedEv, pointCompressedOd:
		if len(b) != 1+size {
			return nil, cryptoerr.Newf(cryptoerr.ErrInvalidEncoding,
				"compressed point must be %d bytes, got %d", 1+size, len(b))
		}
		x := new(big.Int).SetBytes(b[1:])
		if x.Cmp(c.P) >= 0 {
			return nil, cryptoerr.New(cryptoerr.ErrInvalidEncoding, "coordinate exceeds field prime")
		}
		y := new(big.Int).ModSqrt(c.equation(x), c.P)
		if y == nil {
			return nil, cryptoerr.Newf(cryptoerr.ErrValidationFailed, "no point with x = %s on the curve", x)
		}
		if y.Bit(0) != uint(b[0]&1) {
			y.Sub(c.P, y)
			y.Mod(y, c.P)
		}
		return c.NewPoint(x, y), nil
	}

	return nil, cryptoerr.Newf(cryptoerr.ErrInvalidEncoding, "unknown point prefix 0x%02x", b[0])
}
