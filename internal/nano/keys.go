package nano

import (
	"encoding/binary"
	"fmt"

	"github.com/AlexZinkM/nano-wallet/internal/crypto"
)

// SeedSize is the length of a wallet seed.
const SeedSize = 32

// KeyPair is an account key pair. SecretKey is the 32-byte ed25519 seed the
// public key is expanded from.
type KeyPair struct {
	PublicKey PublicKey
	SecretKey [32]byte
}

// NewSeed returns a fresh random wallet seed.
func NewSeed() ([]byte, error) {
	seed, err := crypto.RandomBytes(SeedSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCrypto, err)
	}
	return seed, nil
}

// DeriveKeyPair derives the key pair of account index from seed:
// secret = blake2b-256(seed || uint32be(index)).
func DeriveKeyPair(seed []byte, index uint32) (KeyPair, error) {
	var kp KeyPair
	if len(seed) != SeedSize {
		return kp, ErrInvalidSeedLength
	}

	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)
	secret, err := crypto.Digest(32, seed, idx[:])
	if err != nil {
		return kp, fmt.Errorf("%w: %w", ErrCrypto, err)
	}
	defer clear(secret)

	return KeyPairFromSecret(secret)
}

// KeyPairFromSecret expands a 32-byte ed25519 secret key.
func KeyPairFromSecret(secret []byte) (KeyPair, error) {
	var kp KeyPair
	pub, err := crypto.PublicKeyFromSeed(secret)
	if err != nil {
		return kp, fmt.Errorf("%w: %w", ErrCrypto, err)
	}
	copy(kp.SecretKey[:], secret)
	copy(kp.PublicKey[:], pub)
	return kp, nil
}

// Address returns the xrb_ address of the pair's public key.
func (kp *KeyPair) Address() string {
	return EncodeAddress(kp.PublicKey)
}

// Wipe zeroes the secret key.
func (kp *KeyPair) Wipe() {
	clear(kp.SecretKey[:])
}

// Sign signs message with the pair's secret key.
func (kp *KeyPair) Sign(message []byte) (Signature, error) {
	var sig Signature
	raw, err := crypto.Sign(kp.SecretKey[:], message)
	if err != nil {
		return sig, fmt.Errorf("%w: %w", ErrCrypto, err)
	}
	copy(sig[:], raw)
	return sig, nil
}

// Verify reports whether sig is pub's signature of message.
func Verify(pub PublicKey, message []byte, sig Signature) bool {
	return crypto.Verify(pub[:], message, sig[:])
}
