// Package primes generates the group parameters used by ElGamal: a probable
// prime p of a requested bit length and a primitive root g of the
// multiplicative group mod p.
//
// All searches are bounded. Prime returns an error of kind
// cryptoerr.ErrExhaustedRetries when no prime is found within
// Config.MaxPrimeAttempts candidates, and PrimitiveRoot returns
// cryptoerr.ErrNoRootFound when the scan finds no generator.
//
//	gen := primes.NewGenerator(rand.Reader)
//	p, err := gen.Prime(64, 64)
//	if err != nil {
//	    return err
//	}
//	g, err := gen.PrimitiveRoot(p)
//
// The order of a candidate root is checked against the prime factors of p-1,
// which are found by trial division and Brent's variant of Pollard's rho.
// Each rho restart has a step budget (Config.FactorIterations), so when p-1
// has two or more large prime factors the factorisation gives up quickly
// with cryptoerr.ErrExhaustedRetries; callers such as elgamal then draw a
// different prime.
package primes
