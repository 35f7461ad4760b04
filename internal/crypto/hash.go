package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Digest hashes the concatenation of parts with blake2b producing size bytes.
// Valid sizes are 1..64.
func Digest(size int, parts ...[]byte) ([]byte, error) {
	h, err := blake2b.New(size, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blake2b hash: %w", err)
	}
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil), nil
}

// RandomBytes returns n bytes from the system CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}
