package vault

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlexZinkM/nano-wallet/internal/crypto"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
)

const backupVersion = 1

var (
	ErrBackupPassword = fmt.Errorf("%w: wrong backup password", nano.ErrAuthentication)
	ErrBadBackup      = fmt.Errorf("%w: malformed backup", nano.ErrValidation)
)

// Backup is a password-protected export of a wallet seed. It carries its own
// salt and KDF so it opens without the store it came from.
type Backup struct {
	Version int        `json:"version"`
	KDF     crypto.KDF `json:"kdf"`
	Salt    []byte     `json:"salt"`
	Seed    []byte     `json:"seed"`
}

// SealBackup encrypts seed under password with the vault's KDF and a fresh
// salt. The backup password is independent of the wallet password.
func (v *Vault) SealBackup(seed, password []byte) (*Backup, error) {
	if len(seed) != nano.SeedSize {
		return nil, nano.ErrInvalidSeedLength
	}
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	salt, err := crypto.RandomBytes(crypto.SaltLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}
	key, err := crypto.DeriveKey(v.kdf, password, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}
	defer clear(key)

	sealed, err := crypto.Seal(seed, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encrypt backup: %w", nano.ErrCrypto, err)
	}
	return &Backup{Version: backupVersion, KDF: v.kdf, Salt: salt, Seed: sealed}, nil
}

// ParseBackup decodes and checks a JSON backup.
func ParseBackup(data []byte) (*Backup, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadBackup, err)
	}
	if b.Version != backupVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadBackup, b.Version)
	}
	if _, err := crypto.ParseKDF(string(b.KDF)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadBackup, err)
	}
	if len(b.Salt) < crypto.SaltLen || len(b.Seed) == 0 {
		return nil, fmt.Errorf("%w: missing salt or seed", ErrBadBackup)
	}
	return &b, nil
}

// OpenBackup returns the seed sealed in b. The caller must clear it.
func OpenBackup(b *Backup, password []byte) ([]byte, error) {
	key, err := crypto.DeriveKey(b.KDF, password, b.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}
	defer clear(key)

	seed, err := crypto.Open(b.Seed, key)
	if errors.Is(err, crypto.ErrDecrypt) {
		return nil, ErrBackupPassword
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}
	if len(seed) != nano.SeedSize {
		clear(seed)
		return nil, fmt.Errorf("%w: sealed seed has wrong length", ErrBadBackup)
	}
	return seed, nil
}
