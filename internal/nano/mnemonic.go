package nano

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// SeedToMnemonic encodes a seed as its 24-word BIP-39 phrase. The seed is
// used directly as entropy, so the phrase maps back to the same seed.
func SeedToMnemonic(seed []byte) (string, error) {
	if len(seed) != SeedSize {
		return "", ErrInvalidSeedLength
	}
	mnemonic, err := bip39.NewMnemonic(seed)
	if err != nil {
		return "", fmt.Errorf("%w: generate mnemonic: %w", ErrCrypto, err)
	}
	return mnemonic, nil
}

// MnemonicToSeed decodes a 24-word phrase back into its seed.
func MnemonicToSeed(mnemonic string) ([]byte, error) {
	mnemonic = strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
	seed, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid mnemonic: %w", ErrValidation, err)
	}
	if len(seed) != SeedSize {
		clear(seed)
		return nil, fmt.Errorf("%w: mnemonic must have 24 words", ErrValidation)
	}
	return seed, nil
}
