package crypto

import (
	"bytes"
	"errors"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/blake2b"
)

// The ledger signs with ed25519 where every SHA-512 invocation of RFC 8032
// is replaced by blake2b-512. Key and signature layouts are unchanged.
const (
	PublicKeySize = 32
	SeedSize      = 32
	SignatureSize = 64
)

var errInvalidKeySize = errors.New("invalid ed25519 key size")

// PublicKeyFromSeed expands a 32-byte ed25519 seed into its public key.
func PublicKeyFromSeed(seed []byte) ([]byte, error) {
	if len(seed) != SeedSize {
		return nil, errInvalidKeySize
	}
	h := blake2b.Sum512(seed)
	defer clear(h[:])

	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, err
	}
	A := (&edwards25519.Point{}).ScalarBaseMult(s)
	return A.Bytes(), nil
}

// Sign produces a deterministic signature of message under seed.
func Sign(seed, message []byte) ([]byte, error) {
	if len(seed) != SeedSize {
		return nil, errInvalidKeySize
	}
	h := blake2b.Sum512(seed)
	defer clear(h[:])

	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, err
	}
	publicKey := (&edwards25519.Point{}).ScalarBaseMult(s).Bytes()

	mh, _ := blake2b.New512(nil)
	mh.Write(h[32:])
	mh.Write(message)
	r, err := edwards25519.NewScalar().SetUniformBytes(mh.Sum(nil))
	if err != nil {
		return nil, err
	}
	R := (&edwards25519.Point{}).ScalarBaseMult(r)

	k, err := challenge(R.Bytes(), publicKey, message)
	if err != nil {
		return nil, err
	}
	S := edwards25519.NewScalar().MultiplyAdd(k, s, r)

	sig := make([]byte, 0, SignatureSize)
	sig = append(sig, R.Bytes()...)
	sig = append(sig, S.Bytes()...)
	return sig, nil
}

// Verify reports whether sig is a valid signature of message by publicKey.
func Verify(publicKey, message, sig []byte) bool {
	if len(publicKey) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}
	A, err := (&edwards25519.Point{}).SetBytes(publicKey)
	if err != nil {
		return false
	}
	k, err := challenge(sig[:32], publicKey, message)
	if err != nil {
		return false
	}
	S, err := edwards25519.NewScalar().SetCanonicalBytes(sig[32:])
	if err != nil {
		return false
	}

	// [S]B = R + [k]A  <=>  [k](-A) + [S]B = R
	minusA := (&edwards25519.Point{}).Negate(A)
	R := (&edwards25519.Point{}).VarTimeDoubleScalarBaseMult(k, minusA, S)
	return bytes.Equal(sig[:32], R.Bytes())
}

func challenge(R, publicKey, message []byte) (*edwards25519.Scalar, error) {
	kh, _ := blake2b.New512(nil)
	kh.Write(R)
	kh.Write(publicKey)
	kh.Write(message)
	return edwards25519.NewScalar().SetUniformBytes(kh.Sum(nil))
}
