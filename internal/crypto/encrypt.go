package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// KDF names the password hash used to derive an encryption key.
type KDF string

const (
	KDFArgon2id KDF = "argon2id"
	KDFScrypt   KDF = "scrypt"
)

const (
	// argon2id "interactive" cost, the same limits libsodium's pwhash uses:
	// 2 passes over 64 MiB.
	argonTime    = 2
	argonMemory  = 64 * 1024
	argonThreads = 1

	// scrypt interactive cost: N=2^15 (~32MB RAM). The wallet unlocks on every
	// session start, so this trades a little resistance for responsiveness.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1

	KeyLen   = 32
	SaltLen  = 16
	nonceLen = 24
	gcmNonce = 12
)

// ParseKDF maps a configured name to a KDF. Empty selects argon2id.
func ParseKDF(name string) (KDF, error) {
	switch KDF(name) {
	case "", KDFArgon2id:
		return KDFArgon2id, nil
	case KDFScrypt:
		return KDFScrypt, nil
	}
	return "", fmt.Errorf("unknown kdf %q", name)
}

// DeriveKey derives a 32-byte key from password and salt.
// password must be []byte for security (caller should zero it after use)
func DeriveKey(kdf KDF, password, salt []byte) ([]byte, error) {
	if len(salt) < SaltLen {
		return nil, errors.New("salt too short")
	}
	switch kdf {
	case KDFArgon2id, "":
		return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeyLen), nil
	case KDFScrypt:
		key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, KeyLen)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key: %w", err)
		}
		return key, nil
	}
	return nil, fmt.Errorf("unknown kdf %q", kdf)
}

// Seal encrypts message under a 32-byte key with XSalsa20-Poly1305.
// The output is nonce || box.
func Seal(message, key []byte) ([]byte, error) {
	if len(key) != KeyLen {
		return nil, errors.New("invalid key length")
	}
	var k [KeyLen]byte
	copy(k[:], key)
	defer clear(k[:])

	var nonce [nonceLen]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], message, &nonce, &k), nil
}

// WrapKey encrypts a key under a platform-provided wrapping key with AES-GCM.
// The output is nonce || ciphertext.
func WrapKey(plaintext, wrappingKey []byte) ([]byte, error) {
	block, err := aes.NewCipher(wrappingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcmNonce)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aesGCM.Seal(nonce, nonce, plaintext, nil), nil
}
