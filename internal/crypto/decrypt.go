package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrDecrypt is returned when authenticated decryption fails: wrong key or
// tampered ciphertext.
var ErrDecrypt = errors.New("decryption failed")

// Open reverses Seal.
func Open(sealed, key []byte) ([]byte, error) {
	if len(key) != KeyLen {
		return nil, errors.New("invalid key length")
	}
	if len(sealed) < nonceLen+secretbox.Overhead {
		return nil, ErrDecrypt
	}
	var k [KeyLen]byte
	copy(k[:], key)
	defer clear(k[:])

	var nonce [nonceLen]byte
	copy(nonce[:], sealed[:nonceLen])

	plaintext, ok := secretbox.Open(nil, sealed[nonceLen:], &nonce, &k)
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// UnwrapKey reverses WrapKey.
func UnwrapKey(wrapped, wrappingKey []byte) ([]byte, error) {
	block, err := aes.NewCipher(wrappingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(wrapped) < gcmNonce {
		return nil, ErrDecrypt
	}
	plaintext, err := aesGCM.Open(nil, wrapped[:gcmNonce], wrapped[gcmNonce:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
