package recovery

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mahdiidarabi/pkcrypt/internal/parser"
	"github.com/mahdiidarabi/pkcrypt/pkg/ec"
	"github.com/mahdiidarabi/pkcrypt/pkg/ecdsa"
)

// Signature file parsers.
type (
	SignatureParser = parser.SignatureParser
	JSONParser      = parser.JSONParser
	CSVParser       = parser.CSVParser
)

// Client loads signature files and runs key recovery on them.
type Client struct {
	g        *ec.Point
	parser   SignatureParser
	strategy BruteForceStrategy
	logger   logrus.FieldLogger
}

// NewClient creates a client for secp256k1 signatures that picks a parser
// by file extension and searches with the default SmartBruteForceStrategy.
func NewClient() *Client {
	_, g := ec.Secp256k1()
	return &Client{
		g:        g,
		strategy: NewSmartBruteForceStrategy(),
		logger:   logrus.StandardLogger(),
	}
}

// WithGenerator sets the base point the signatures were made over.
func (c *Client) WithGenerator(g *ec.Point) *Client {
	c.g = g
	return c
}

// WithParser sets the parser used for every signature file.
func (c *Client) WithParser(p SignatureParser) *Client {
	c.parser = p
	return c
}

// WithStrategy sets the search strategy used by RecoverKey.
func (c *Client) WithStrategy(s BruteForceStrategy) *Client {
	c.strategy = s
	return c
}

// WithLogger sets the client's logger. It is passed on to the strategy when
// that is a SmartBruteForceStrategy.
func (c *Client) WithLogger(logger logrus.FieldLogger) *Client {
	c.logger = logger
	if smart, ok := c.strategy.(*SmartBruteForceStrategy); ok {
		smart.WithLogger(logger)
	}
	return c
}

// RecoverKey searches the signatures in file for a nonce relationship and
// returns the recovered key. publicKeyHex is an optional SEC1 encoded public
// key the result is verified against.
func (c *Client) RecoverKey(ctx context.Context, file string, publicKeyHex string) (*RecoveryResult, error) {
	signatures, publicKey, err := c.load(file, publicKeyHex)
	if err != nil {
		return nil, err
	}

	result := c.strategy.Search(ctx, c.g, signatures, publicKey)
	if result == nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("key recovery interrupted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("no nonce relationship found by %s in %d signatures", c.strategy.Name(), len(signatures))
	}
	return result, nil
}

// RecoverKeyWithKnownRelationship recovers the key assuming k2 = a·k1 + b
// holds for some pair of signatures in file, trying every pair in order.
func (c *Client) RecoverKeyWithKnownRelationship(ctx context.Context, file string, a, b int64, publicKeyHex string) (*RecoveryResult, error) {
	signatures, publicKey, err := c.load(file, publicKeyHex)
	if err != nil {
		return nil, err
	}

	checker := &checker{g: c.g, publicKey: publicKey, signatures: signatures}
	name := fmt.Sprintf("known_a%d_b%d", a, b)
	for i := 0; i < len(signatures); i++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("key recovery interrupted: %w", ctx.Err())
		}
		for j := i + 1; j < len(signatures); j++ {
			if result := checker.try(i, j, big.NewInt(a), big.NewInt(b), name); result != nil {
				c.logger.WithFields(logrus.Fields{
					"pair":     result.SignaturePair,
					"verified": result.Verified,
				}).Info("Recovered private key with known relationship")
				return result, nil
			}
		}
	}
	return nil, fmt.Errorf("no signature pair satisfies k2 = %d*k1 + %d", a, b)
}

func (c *Client) load(file, publicKeyHex string) ([]*Signature, *ec.Point, error) {
	p := c.parser
	if p == nil {
		n := c.g.Curve().ScalarModulus()
		p = parser.ForFile(file, func(message []byte) *big.Int {
			return ecdsa.HashMessage(message, n)
		})
	}

	signatures, err := p.ParseSignatures(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load signatures: %w", err)
	}
	if len(signatures) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 signatures, got %d", len(signatures))
	}
	c.logger.WithFields(logrus.Fields{"file": file, "signatures": len(signatures)}).Debug("Loaded signatures")

	if publicKeyHex == "" {
		return signatures, nil, nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(publicKeyHex, "0x"), "0X"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid public key hex: %w", err)
	}
	publicKey, err := c.g.Curve().ParsePoint(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid public key: %w", err)
	}
	return signatures, publicKey, nil
}
