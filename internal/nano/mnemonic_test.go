package nano

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMnemonicRoundTrip(t *testing.T) {
	seed := testSeed(t)

	mnemonic, err := SeedToMnemonic(seed)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 24)

	got, err := MnemonicToSeed("  " + strings.ToUpper(mnemonic) + "\n")
	require.NoError(t, err)
	assert.Equal(t, seed, got)
}

func TestMnemonicInvalid(t *testing.T) {
	_, err := SeedToMnemonic(make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalidSeedLength)

	_, err = MnemonicToSeed("abandon abandon abandon")
	assert.ErrorIs(t, err, ErrValidation)

	// valid 12-word phrase, but too short for a seed
	_, err = MnemonicToSeed("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about")
	assert.ErrorIs(t, err, ErrValidation)
}
