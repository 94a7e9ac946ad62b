package outcome

import (
	"crypto/rand"
	"math/big"
)

// Source supplies the uniform random draws the generator consumes. The
// production source is backed by crypto/rand; tests substitute a seeded
// deterministic source.
type Source interface {
	// Int64N returns a uniform random value in [0, n). n must be > 0.
	Int64N(n int64) int64
}

// CryptoSource draws from the operating system CSPRNG so outcomes are
// unpredictable to players and operators alike.
type CryptoSource struct{}

func (CryptoSource) Int64N(n int64) int64 {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}
