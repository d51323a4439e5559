package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mahdiidarabi/pkcrypt/pkg/ec"
	"github.com/mahdiidarabi/pkcrypt/pkg/ecdsa"
	"github.com/mahdiidarabi/pkcrypt/pkg/elgamal"
	"github.com/mahdiidarabi/pkcrypt/pkg/primes"
	"github.com/mahdiidarabi/pkcrypt/pkg/recovery"
)

type options struct {
	mode    string
	verbose bool

	bitsFrom int
	bitsTo   int
	message  string
	curve    string

	signaturesFile string
	format         string
	publicKey      string
	knownA         int
	knownB         int
	bruteForce     bool
	smartBrute     bool
	aRange         string
	bRange         string
	maxPairs       int
	numWorkers     int
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "", "Operation: elgamal, ecdsa or recover")
	flag.BoolVar(&opts.verbose, "v", false, "Enable debug logging")

	flag.IntVar(&opts.bitsFrom, "bits-from", 64, "Minimum bit length of the ElGamal prime")
	flag.IntVar(&opts.bitsTo, "bits-to", 128, "Maximum bit length of the ElGamal prime")
	flag.StringVar(&opts.message, "message", "48656c6c6f", "Message: hex for elgamal, text for ecdsa")
	flag.StringVar(&opts.curve, "curve", "secp256k1", "Curve name ("+strings.Join(ec.CurveNames(), ", ")+")")

	flag.StringVar(&opts.signaturesFile, "signatures", "", "Path to signatures file (JSON or CSV)")
	flag.StringVar(&opts.format, "format", "", "Signature file format (json or csv, default by extension)")
	flag.StringVar(&opts.publicKey, "public-key", "", "SEC1 public key in hex for verification")
	flag.IntVar(&opts.knownA, "known-a", 0, "Known affine coefficient a (k2 = a*k1 + b)")
	flag.IntVar(&opts.knownB, "known-b", 0, "Known affine offset b (k2 = a*k1 + b)")
	flag.BoolVar(&opts.bruteForce, "brute-force", false, "Brute-force search over -a-range and -b-range")
	flag.BoolVar(&opts.smartBrute, "smart-brute", false, "Use smart brute-force (tries common patterns first)")
	flag.StringVar(&opts.aRange, "a-range", "-100,100", "Range for a values in brute-force (format: min,max)")
	flag.StringVar(&opts.bRange, "b-range", "-100,100", "Range for b values in brute-force (format: min,max)")
	flag.IntVar(&opts.maxPairs, "max-pairs", 100, "Maximum signature pairs to test in brute-force")
	flag.IntVar(&opts.numWorkers, "workers", 0, "Number of parallel workers (0 = number of CPUs)")
	flag.Parse()

	log := logrus.StandardLogger()
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch opts.mode {
	case "elgamal":
		err = runElGamal(opts, log)
	case "ecdsa":
		err = runECDSA(opts)
	case "recover":
		err = runRecover(ctx, opts, log)
	default:
		fmt.Fprintf(os.Stderr, "Error: -mode must be elgamal, ecdsa or recover\n")
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		log.WithError(err).WithField("mode", opts.mode).Fatal("Operation failed")
	}
}

func runElGamal(opts options, log *logrus.Logger) error {
	m, err := elgamal.MessageFromHex(opts.message)
	if err != nil {
		return err
	}

	gen := primes.NewGenerator(rand.Reader)
	gen.Config.Logger = log
	priv, err := elgamal.GenerateKeysWith(gen, opts.bitsFrom, opts.bitsTo)
	if err != nil {
		return fmt.Errorf("key generation: %w", err)
	}
	fmt.Printf("p = %s\ng = %s\nx = %s\ny = %s\n", priv.P, priv.G, priv.X, priv.Y)

	c, err := elgamal.Encode(rand.Reader, &priv.PublicKey, m)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Printf("\nciphertext a = %s\nciphertext b = %s\n", c.A, c.B)
	fmt.Printf("decoded      = %s (message %s)\n", elgamal.Decode(priv, c), m)

	sig, err := elgamal.Sign(rand.Reader, priv, m)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	fmt.Printf("\nsignature r = %s\nsignature s = %s\nverified    = %v\n", sig.R, sig.S, elgamal.Verify(&priv.PublicKey, m, sig))
	return nil
}

func runECDSA(opts options) error {
	c, g, err := ec.CurveByName(opts.curve)
	if err != nil {
		return err
	}

	priv, err := ecdsa.GenerateKey(rand.Reader, g)
	if err != nil {
		return fmt.Errorf("key generation: %w", err)
	}
	z := ecdsa.HashMessage([]byte(opts.message), c.ScalarModulus())
	sig, err := ecdsa.SignRandom(rand.Reader, priv, z)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	fmt.Printf("curve      = %s\n", c.Name)
	fmt.Printf("public key = %s\n", hex.EncodeToString(priv.Q.BytesCompressed()))
	fmt.Printf("z          = %s\n", z.Text(16))
	fmt.Printf("r          = %s\n", sig.R.Text(16))
	fmt.Printf("s          = %s\n", sig.S.Text(16))
	fmt.Printf("verified   = %v\n", ecdsa.Verify(g, priv.Q, z, sig))
	return nil
}

func runRecover(ctx context.Context, opts options, log *logrus.Logger) error {
	if opts.signaturesFile == "" {
		return errors.New("-signatures is required")
	}

	c, g, err := ec.CurveByName(opts.curve)
	if err != nil {
		return err
	}
	client := recovery.NewClient().WithGenerator(g).WithLogger(log)

	n := c.ScalarModulus()
	switch opts.format {
	case "":
	case "json":
		client.WithParser(&recovery.JSONParser{Digest: hashFor(n)})
	case "csv":
		client.WithParser(&recovery.CSVParser{Digest: hashFor(n)})
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	var result *recovery.RecoveryResult
	switch {
	case opts.knownA != 0 || opts.knownB != 0:
		fmt.Printf("Using known relationship: k2 = %d*k1 + %d\n", opts.knownA, opts.knownB)
		result, err = client.RecoverKeyWithKnownRelationship(ctx, opts.signaturesFile, int64(opts.knownA), int64(opts.knownB), opts.publicKey)

	case opts.smartBrute:
		result, err = client.RecoverKey(ctx, opts.signaturesFile, opts.publicKey)

	case opts.bruteForce:
		aMin, aMax, perr := parseRange(opts.aRange)
		if perr != nil {
			return fmt.Errorf("parsing a-range: %w", perr)
		}
		bMin, bMax, perr := parseRange(opts.bRange)
		if perr != nil {
			return fmt.Errorf("parsing b-range: %w", perr)
		}

		strategy := recovery.NewSmartBruteForceStrategy().
			WithLogger(log).
			WithRangeConfig(recovery.RangeConfig{
				Schedule: []recovery.SearchRange{
					{ARange: [2]int{aMin, aMax}, BRange: [2]int{bMin, bMax}, Name: "custom range"},
				},
				MaxPairs:   opts.maxPairs,
				NumWorkers: opts.numWorkers,
				SkipZeroA:  true,
			})
		result, err = client.WithStrategy(strategy).RecoverKey(ctx, opts.signaturesFile, opts.publicKey)

	default:
		return errors.New("must specify -known-a/-known-b, -brute-force or -smart-brute")
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n[+] Recovered private key from signatures %d and %d\n", result.SignaturePair[0], result.SignaturePair[1])
	fmt.Printf("    Private key: %s\n", result.PrivateKey.Text(16))
	fmt.Printf("    Relationship: k2 = %s*k1 + %s\n", result.Relationship.A, result.Relationship.B)
	fmt.Printf("    Pattern: %s\n", result.Pattern)
	if result.Verified {
		fmt.Println("    Verified against public key")
	}
	return nil
}

func hashFor(n *big.Int) func([]byte) *big.Int {
	return func(message []byte) *big.Int {
		return ecdsa.HashMessage(message, n)
	}
}

func parseRange(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range format: %s", s)
	}

	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("invalid range %d > %d", lo, hi)
	}
	return lo, hi, nil
}
