package pkgserial

import (
	"context"
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/chacha20"
)

// KindRandom62 names the base-62 strategy.
const KindRandom62 = "random62"

// DefaultRandom62Length is the serial length when none is configured.
const DefaultRandom62Length = 35

const (
	alphabet62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// largest multiple of 62 that fits a byte, keeps the draw unbiased
	reject62 = 248
)

// Random62Strategy produces fixed-length [0-9A-Za-z] strings from a ChaCha20
// keystream. The key is the SHA-256 of the fed bytes, or random when nothing
// was fed.
type Random62Strategy struct {
	length int
}

// NewRandom62 returns a strategy with the given length, or
// DefaultRandom62Length when length is not positive.
func NewRandom62(length int) *Random62Strategy {
	if length < 1 {
		length = DefaultRandom62Length
	}
	return &Random62Strategy{length: length}
}

func (s *Random62Strategy) Kind() string {
	return KindRandom62
}

func (s *Random62Strategy) Serializer() Serializer {
	return &random62Serializer{strategy: s}
}

func (s *Random62Strategy) generate(_ context.Context, data []byte) (string, error) {
	key := make([]byte, chacha20.KeySize)
	if len(data) == 0 {
		if _, err := rand.Read(key); err != nil {
			return "", err
		}
	} else {
		sum := sha256.Sum256(data)
		copy(key, sum[:])
	}

	cipher, err := chacha20.NewUnauthenticatedCipher(key, make([]byte, chacha20.NonceSize))
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, s.length)
	block := make([]byte, 64)
	zero := make([]byte, 64)
	for len(out) < s.length {
		cipher.XORKeyStream(block, zero)
		for _, b := range block {
			if b >= reject62 {
				continue
			}
			out = append(out, alphabet62[b%62])
			if len(out) == s.length {
				break
			}
		}
	}

	return string(out), nil
}

type random62Serializer struct {
	buffer
	strategy *Random62Strategy
}

func (r *random62Serializer) Build(ctx context.Context) *Task {
	return r.build(ctx, r.strategy.generate)
}
