package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

const recoveryTestdata = "../../pkg/recovery/testdata"

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func defaultOptions() options {
	return options{
		bitsFrom: 64,
		bitsTo:   128,
		message:  "48656c6c6f",
		curve:    "secp256k1",
		aRange:   "-100,100",
		bRange:   "-100,100",
		maxPairs: 100,
	}
}

func testPublicKeyHex(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(recoveryTestdata, "key_info.json"))
	if err != nil {
		t.Fatalf("Failed to read key info: %v", err)
	}
	var info struct {
		PublicKeyHex string `json:"public_key_hex"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("Failed to parse key info: %v", err)
	}
	return info.PublicKeyHex
}

func TestRunElGamal_DefaultBits(t *testing.T) {
	start := time.Now()
	if err := runElGamal(defaultOptions(), quietLogger()); err != nil {
		t.Fatalf("runElGamal failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 30*time.Second {
		t.Errorf("Key generation at the default bit range took %s", elapsed)
	}
}

func TestRunElGamal_InvalidMessage(t *testing.T) {
	opts := defaultOptions()
	opts.message = "not hex"
	if err := runElGamal(opts, quietLogger()); err == nil {
		t.Error("Expected an error for a non-hex message")
	}
}

func TestRunECDSA(t *testing.T) {
	for _, curve := range []string{"secp256k1", "P-256"} {
		opts := defaultOptions()
		opts.curve = curve
		if err := runECDSA(opts); err != nil {
			t.Errorf("runECDSA on %s failed: %v", curve, err)
		}
	}

	opts := defaultOptions()
	opts.curve = "curve25519"
	if err := runECDSA(opts); err == nil {
		t.Error("Expected an error for an unknown curve")
	}
}

func TestRunRecover(t *testing.T) {
	pub := testPublicKeyHex(t)

	tests := []struct {
		name  string
		setup func(*options)
	}{
		{"known relationship", func(o *options) { o.knownA, o.knownB = 1, 1 }},
		{"smart brute force", func(o *options) { o.smartBrute = true }},
		{"brute force", func(o *options) {
			o.bruteForce = true
			o.aRange, o.bRange = "1,2", "0,3"
			o.numWorkers = 2
		}},
		{"csv", func(o *options) {
			o.smartBrute = true
			o.signaturesFile = filepath.Join(recoveryTestdata, "signatures_affine.csv")
			o.format = "csv"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			opts.signaturesFile = filepath.Join(recoveryTestdata, "signatures_affine.json")
			opts.publicKey = pub
			tt.setup(&opts)

			if err := runRecover(context.Background(), opts, quietLogger()); err != nil {
				t.Fatalf("runRecover failed: %v", err)
			}
		})
	}
}

func TestRunRecover_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*options)
		want  string
	}{
		{"no signatures", func(o *options) { o.signaturesFile = "" }, "-signatures is required"},
		{"no method", func(o *options) {}, "must specify"},
		{"unknown format", func(o *options) { o.format = "xml" }, "unknown format"},
		{"unknown curve", func(o *options) { o.curve = "nope" }, "unknown curve"},
		{"bad range", func(o *options) { o.bruteForce, o.aRange = true, "5" }, "a-range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			opts.signaturesFile = filepath.Join(recoveryTestdata, "signatures_affine.json")
			tt.setup(&opts)

			err := runRecover(context.Background(), opts, quietLogger())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		lo, hi  int
		wantErr bool
	}{
		{"-100,100", -100, 100, false},
		{" 3 , 7 ", 3, 7, false},
		{"5", 0, 0, true},
		{"a,b", 0, 0, true},
		{"9,1", 0, 0, true},
	}

	for _, tt := range tests {
		lo, hi, err := parseRange(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (lo != tt.lo || hi != tt.hi) {
			t.Errorf("parseRange(%q) = %d, %d; want %d, %d", tt.in, lo, hi, tt.lo, tt.hi)
		}
	}
}
