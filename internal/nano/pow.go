package nano

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// WorkThreshold is the minimum work value accepted by the ledger.
const WorkThreshold uint64 = 0xffffffc000000000

// WorkValue returns the difficulty value of work against root: the 8-byte
// blake2b digest of the byte-reversed nonce followed by root, read as a
// little-endian integer.
func WorkValue(work Work, root Hash) uint64 {
	var nonce [8]byte
	for i := range nonce {
		nonce[i] = work[7-i]
	}
	h, _ := blake2b.New(8, nil)
	h.Write(nonce[:])
	h.Write(root[:])
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

// ValidateWork reports whether work meets WorkThreshold for root.
func ValidateWork(work Work, root Hash) bool {
	return ValidateWorkThreshold(work, root, WorkThreshold)
}

// ValidateWorkThreshold reports whether work's value for root exceeds threshold.
func ValidateWorkThreshold(work Work, root Hash, threshold uint64) bool {
	return WorkValue(work, root) > threshold
}

// GenerateWork searches for work meeting WorkThreshold. It only returns once
// a solution is found or ctx is done.
func GenerateWork(ctx context.Context, root Hash) (Work, error) {
	return GenerateWorkThreshold(ctx, root, WorkThreshold, rand.Reader)
}

// GenerateWorkThreshold samples random 8-byte nonces from rnd and, for each,
// tries the 256 variants of its last byte. ctx is checked between samples.
func GenerateWorkThreshold(ctx context.Context, root Hash, threshold uint64, rnd io.Reader) (Work, error) {
	h, err := blake2b.New(8, nil)
	if err != nil {
		return Work{}, fmt.Errorf("%w: %w", ErrCrypto, err)
	}

	var nonce [8]byte
	var sum [8]byte
	for {
		if err := ctx.Err(); err != nil {
			return Work{}, fmt.Errorf("%w: %w", ErrProofOfWork, err)
		}
		if _, err := io.ReadFull(rnd, nonce[:]); err != nil {
			return Work{}, fmt.Errorf("%w: failed to read random nonce: %w", ErrProofOfWork, err)
		}
		base := nonce[7]
		for i := 0; i < 256; i++ {
			nonce[7] = base + byte(i)
			h.Reset()
			h.Write(nonce[:])
			h.Write(root[:])
			if binary.LittleEndian.Uint64(h.Sum(sum[:0])) > threshold {
				var w Work
				for j := range w {
					w[j] = nonce[7-j]
				}
				return w, nil
			}
		}
	}
}
