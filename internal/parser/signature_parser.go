// Package parser reads ECDSA signature sets from JSON and CSV files.
package parser

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
)

// Signature is an ECDSA signature together with the digest it signs.
type Signature struct {
	Z *big.Int // message digest
	R *big.Int
	S *big.Int
}

// DigestFunc maps a message to the integer digest that was signed.
type DigestFunc func(message []byte) *big.Int

// SHA256Digest is the default DigestFunc: SHA-256 as a big-endian integer,
// not reduced.
func SHA256Digest(message []byte) *big.Int {
	h := sha256.Sum256(message)
	return new(big.Int).SetBytes(h[:])
}

// SignatureParser parses signatures from a source such as a file path.
type SignatureParser interface {
	ParseSignatures(source string) ([]*Signature, error)
}

// JSONParser parses a JSON array of signature objects:
//
//	[
//	  {"message": "...", "r": "...", "s": "..."},
//	  {"z": "0x...", "r": "0x...", "s": "0x..."}
//	]
//
// Field names default to message, r, s and z. When an item carries no digest
// field the message is hashed with Digest.
type JSONParser struct {
	MessageField string
	RField       string
	SField       string
	ZField       string
	Digest       DigestFunc
}

// ParseSignatures parses signatures from a JSON file.
func (p *JSONParser) ParseSignatures(jsonFile string) ([]*Signature, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Parse parses signatures from a JSON stream.
func (p *JSONParser) Parse(r io.Reader) ([]*Signature, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var items []map[string]any
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	messageField := orDefault(p.MessageField, "message")
	rField := orDefault(p.RField, "r")
	sField := orDefault(p.SField, "s")
	zField := orDefault(p.ZField, "z")
	digest := p.Digest
	if digest == nil {
		digest = SHA256Digest
	}

	signatures := make([]*Signature, 0, len(items))
	for i, item := range items {
		sig := &Signature{}
		var err error

		if zVal, ok := item[zField]; ok {
			if sig.Z, err = parseBigInt(zVal); err != nil {
				return nil, fmt.Errorf("item %d: failed to parse z: %w", i, err)
			}
		} else if msgVal, ok := item[messageField]; ok {
			message, ok := msgVal.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: message field must be a string", i)
			}
			sig.Z = digest([]byte(message))
		} else {
			return nil, fmt.Errorf("item %d: missing message or z field", i)
		}

		rVal, ok := item[rField]
		if !ok {
			return nil, fmt.Errorf("item %d: missing r field", i)
		}
		if sig.R, err = parseBigInt(rVal); err != nil {
			return nil, fmt.Errorf("item %d: failed to parse r: %w", i, err)
		}

		sVal, ok := item[sField]
		if !ok {
			return nil, fmt.Errorf("item %d: missing s field", i)
		}
		if sig.S, err = parseBigInt(sVal); err != nil {
			return nil, fmt.Errorf("item %d: failed to parse s: %w", i, err)
		}

		signatures = append(signatures, sig)
	}

	return signatures, nil
}

// CSVParser parses a CSV file with a header row. Column names default to
// message, r, s and z; rows without a digest column have their message
// hashed with Digest.
type CSVParser struct {
	MessageCol string
	RCol       string
	SCol       string
	ZCol       string
	Digest     DigestFunc
}

// ParseSignatures parses signatures from a CSV file.
func (p *CSVParser) ParseSignatures(csvFile string) ([]*Signature, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Parse parses signatures from a CSV stream.
func (p *CSVParser) Parse(r io.Reader) ([]*Signature, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	messageCol := orDefault(p.MessageCol, "message")
	rCol := orDefault(p.RCol, "r")
	sCol := orDefault(p.SCol, "s")
	zCol := orDefault(p.ZCol, "z")
	digest := p.Digest
	if digest == nil {
		digest = SHA256Digest
	}

	messageIdx, rIdx, sIdx, zIdx := -1, -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case messageCol:
			messageIdx = i
		case rCol:
			rIdx = i
		case sCol:
			sIdx = i
		case zCol:
			zIdx = i
		}
	}
	if rIdx == -1 || sIdx == -1 {
		return nil, errors.New("missing required columns: r or s")
	}
	if zIdx == -1 && messageIdx == -1 {
		return nil, errors.New("missing message or z column")
	}

	var signatures []*Signature
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		sig := &Signature{}
		if zIdx >= 0 {
			if sig.Z, err = parseBigInt(record[zIdx]); err != nil {
				return nil, fmt.Errorf("line %d: failed to parse z: %w", line, err)
			}
		} else {
			sig.Z = digest([]byte(record[messageIdx]))
		}
		if sig.R, err = parseBigInt(record[rIdx]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse r: %w", line, err)
		}
		if sig.S, err = parseBigInt(record[sIdx]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse s: %w", line, err)
		}

		signatures = append(signatures, sig)
	}

	return signatures, nil
}

// ForFile picks a JSON or CSV parser by file extension.
func ForFile(path string, digest DigestFunc) SignatureParser {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return &CSVParser{Digest: digest}
	}
	return &JSONParser{Digest: digest}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// parseBigInt parses a big integer from a JSON number or from a string that
// is either 0x-prefixed hex, decimal, or bare hex.
func parseBigInt(val any) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			return setString(s[2:], 16, v)
		}
		if z, err := setString(s, 10, v); err == nil {
			return z, nil
		}
		return setString(s, 16, v)

	case json.Number:
		return setString(string(v), 10, v)

	case float64:
		// Only without UseNumber; large values have already lost precision.
		return setString(fmt.Sprintf("%.0f", v), 10, v)

	case int64:
		return big.NewInt(v), nil

	case int:
		return big.NewInt(int64(v)), nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}

func setString(s string, base int, orig any) (*big.Int, error) {
	z, ok := new(big.Int).SetString(s, base)
	if !ok || z.Sign() < 0 {
		return nil, fmt.Errorf("invalid number format: %v", orig)
	}
	return z, nil
}
