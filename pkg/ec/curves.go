package ec

import (
	"crypto/elliptic"
	"math/big"
	"sort"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/pkcrypt/pkg/cryptoerr"
)

// Secp256k1 returns the secp256k1 curve (a = 0, b = 7) together with its
// standard base point.
func Secp256k1() (*Curve, *Point) {
	params := secp256k1.S256().Params()
	return fromParams("secp256k1", big.NewInt(0), params)
}

// P256 returns the NIST P-256 curve (a = -3) together with its standard base
// point.
func P256() (*Curve, *Point) {
	params := elliptic.P256().Params()
	return fromParams("P-256", big.NewInt(-3), params)
}

func fromParams(name string, a *big.Int, params *elliptic.CurveParams) (*Curve, *Point) {
	c := &Curve{
		Name: name,
		A:    new(big.Int).Mod(a, params.P),
		B:    new(big.Int).Set(params.B),
		P:    new(big.Int).Set(params.P),
		N:    new(big.Int).Set(params.N),
	}
	return c, c.NewPoint(params.Gx, params.Gy)
}

var namedCurves = map[string]func() (*Curve, *Point){
	"secp256k1":  Secp256k1,
	"p256":       P256,
	"p-256":      P256,
	"secp256r1":  P256,
	"prime256v1": P256,
}

// CurveByName looks up a named curve, case-insensitively.
func CurveByName(name string) (*Curve, *Point, error) {
	get, ok := namedCurves[strings.ToLower(name)]
	if !ok {
		return nil, nil, cryptoerr.Newf(cryptoerr.ErrInvalidParameter,
			"unknown curve %q (known: %s)", name, strings.Join(CurveNames(), ", "))
	}
	c, g := get()
	return c, g, nil
}

// CurveNames lists the names accepted by CurveByName.
func CurveNames() []string {
	names := make([]string, 0, len(namedCurves))
	for name := range namedCurves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
