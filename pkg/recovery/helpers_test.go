package recovery

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/mahdiidarabi/pkcrypt/pkg/ec"
	"github.com/mahdiidarabi/pkcrypt/pkg/ecdsa"
)

type keyInfo struct {
	PrivateKey   *big.Int
	PublicKeyHex string
	PublicKey    *ec.Point
}

var (
	keyInfoOnce sync.Once
	testKey     keyInfo
	testKeyErr  error
)

// loadTestKeyInfo reads testdata/key_info.json.
func loadTestKeyInfo(t *testing.T) keyInfo {
	t.Helper()

	keyInfoOnce.Do(func() {
		var raw struct {
			PrivateKey   string `json:"private_key"`
			PublicKeyHex string `json:"public_key_hex"`
		}
		data, err := os.ReadFile(filepath.Join("testdata", "key_info.json"))
		if err != nil {
			testKeyErr = err
			return
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			testKeyErr = err
			return
		}

		d, _ := new(big.Int).SetString(raw.PrivateKey, 10)
		_, g := ec.Secp256k1()
		q, err := g.Multiply(d)
		if err != nil {
			testKeyErr = err
			return
		}
		testKey = keyInfo{PrivateKey: d, PublicKeyHex: raw.PublicKeyHex, PublicKey: q}
	})

	if testKeyErr != nil {
		t.Fatalf("Failed to load key info: %v", testKeyErr)
	}
	return testKey
}

// loadTestSignatures loads a signature fixture from testdata.
func loadTestSignatures(t *testing.T, filename string) []*Signature {
	t.Helper()

	c, _ := ec.Secp256k1()
	p := &JSONParser{Digest: func(m []byte) *big.Int { return ecdsa.HashMessage(m, c.N) }}
	signatures, err := p.ParseSignatures(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("Failed to load signatures from %s: %v", filename, err)
	}
	return signatures
}

func nullLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}
