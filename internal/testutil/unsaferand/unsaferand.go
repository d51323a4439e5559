// Package unsaferand provides a seeded io.Reader for deterministic tests of
// the key, nonce and prime generators.
package unsaferand

import (
	"fmt"
	"hash/fnv"
	"io"
	mrand "math/rand"
)

// UnsafeRand is a test implementation of io.Reader based on math/rand.Rand.
// The generated sequence is not cryptographically secure and should only be used for testing purposes.
// The underlying math.Rand is not safe for concurrent use.
type UnsafeRand struct {
	*mrand.Rand
}

var _ io.Reader = &UnsafeRand{}

// New initializes an UnsafeRand that produces a deterministic sequence derived from the given seed argument(s).
// Deterministic behavior depends on the fmt.Sprintf("%#v", seedArgs...) representation of the passed arguments.
func New(seedArgs ...any) *UnsafeRand {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%#v", seedArgs)

	seed := int64(h.Sum64())
	return &UnsafeRand{mrand.New(mrand.NewSource(seed))}
}
