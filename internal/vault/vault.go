// Package vault keeps the wallet seed encrypted under a password in a
// store.Store and enforces the failed-unlock lockout.
package vault

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/crypto"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
	"github.com/AlexZinkM/nano-wallet/internal/store"
)

// Store keys.
const (
	KeyPasswordVerifier  = "password_verifier"
	KeyPasswordSalt      = "password_salt"
	KeyEncryptedSeed     = "encrypted_seed"
	KeyKDF               = "kdf"
	KeyFastUnlockKey     = "fast_unlock_key"
	KeyFastUnlockEnabled = "fast_unlock_enabled"
	KeySeedIndex         = "seed_index"
	KeyFailedAttempts    = "failed_attempts"
	KeyLockUntil         = "lock_until"
)

var allKeys = []string{
	KeyPasswordVerifier,
	KeyPasswordSalt,
	KeyEncryptedSeed,
	KeyKDF,
	KeyFastUnlockKey,
	KeyFastUnlockEnabled,
	KeySeedIndex,
	KeyFailedAttempts,
	KeyLockUntil,
}

const (
	MaxAttempts  = 10
	LockDuration = 30 * time.Minute
)

var (
	ErrNoSeed                = fmt.Errorf("%w: no seed stored", nano.ErrValidation)
	ErrEmptyPassword         = fmt.Errorf("%w: password must not be empty", nano.ErrValidation)
	ErrFastUnlockUnavailable = fmt.Errorf("%w: fast unlock unavailable", nano.ErrAuthentication)
	ErrSeedExists            = fmt.Errorf("%w: a seed is already stored", nano.ErrValidation)
)

// LockoutState is the persisted brute-force protection state. LockUntil is
// nil while unlocked.
type LockoutState struct {
	FailedAttempts int
	LockUntil      *time.Time
}

// Locked reports whether a lock is active at now.
func (s LockoutState) Locked(now time.Time) bool {
	return s.LockUntil != nil && now.Before(*s.LockUntil)
}

// Vault is safe for concurrent use. All reads and writes of the lockout
// counter happen under one mutex, and every change is persisted before the
// call returns.
type Vault struct {
	mu    sync.Mutex
	store store.Store
	kdf   crypto.KDF
	now   func() time.Time
}

// Option configures a Vault.
type Option func(*Vault)

// WithKDF selects the key derivation function for newly stored seeds. Stored
// seeds always open with the function they were sealed with.
func WithKDF(kdf crypto.KDF) Option {
	return func(v *Vault) {
		v.kdf = kdf
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) {
		v.now = now
	}
}

func New(s store.Store, opts ...Option) *Vault {
	v := &Vault{
		store: s,
		kdf:   crypto.KDFArgon2id,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Exists reports whether a seed has been stored.
func (v *Vault) Exists(ctx context.Context) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.exists(ctx)
}

func (v *Vault) exists(ctx context.Context) (bool, error) {
	_, err := v.store.Get(ctx, KeyEncryptedSeed)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read seed: %w", err)
	}
	return true, nil
}

// SetSeed encrypts seed under password and stores it, replacing any previous
// seed. Fast unlock data sealed for the previous key is discarded.
func (v *Vault) SetSeed(ctx context.Context, seed, password []byte) error {
	if len(seed) != nano.SeedSize {
		return nano.ErrInvalidSeedLength
	}
	if len(password) == 0 {
		return ErrEmptyPassword
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.setSeed(ctx, seed, password)
}

// CreateSeed stores the first seed of a new wallet and resets the seed index.
// It fails with ErrSeedExists when a seed is already stored; the check and
// the write happen under one lock.
func (v *Vault) CreateSeed(ctx context.Context, seed, password []byte) error {
	if len(seed) != nano.SeedSize {
		return nano.ErrInvalidSeedLength
	}
	if len(password) == 0 {
		return ErrEmptyPassword
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	exists, err := v.exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return ErrSeedExists
	}
	if err := v.setSeed(ctx, seed, password); err != nil {
		return err
	}
	return v.setSeedIndex(ctx, 0)
}

func (v *Vault) setSeed(ctx context.Context, seed, password []byte) error {
	salt, err := crypto.RandomBytes(crypto.SaltLen)
	if err != nil {
		return fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}
	verifier, err := passwordVerifier(password, salt)
	if err != nil {
		return err
	}

	key, err := crypto.DeriveKey(v.kdf, password, salt)
	if err != nil {
		return fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}
	defer clear(key)

	sealed, err := crypto.Seal(seed, key)
	if err != nil {
		return fmt.Errorf("%w: failed to encrypt seed: %w", nano.ErrCrypto, err)
	}

	if err := v.store.Remove(ctx, KeyFastUnlockKey, KeyFastUnlockEnabled); err != nil {
		return fmt.Errorf("failed to clear fast unlock: %w", err)
	}
	err = v.store.SetMany(ctx, map[string][]byte{
		KeyPasswordVerifier: verifier,
		KeyPasswordSalt:     salt,
		KeyEncryptedSeed:    sealed,
		KeyKDF:              []byte(v.kdf),
	})
	if err != nil {
		return fmt.Errorf("failed to store seed: %w", err)
	}
	return nil
}

// Unlock returns the decrypted seed. The caller owns the returned slice and
// must clear it.
//
// A wrong password consumes one attempt; the last attempt locks the vault for
// LockDuration and returns *nano.LockoutError.
func (v *Vault) Unlock(ctx context.Context, password []byte) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key, err := v.unlockKey(ctx, password)
	if err != nil {
		return nil, err
	}
	defer clear(key)
	return v.openSeed(ctx, key)
}

// ChangePassword re-encrypts the seed under newPassword.
func (v *Vault) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	if len(newPassword) == 0 {
		return ErrEmptyPassword
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	key, err := v.unlockKey(ctx, oldPassword)
	if err != nil {
		return err
	}
	defer clear(key)
	seed, err := v.openSeed(ctx, key)
	if err != nil {
		return err
	}
	defer clear(seed)

	return v.setSeed(ctx, seed, newPassword)
}

// Wipe removes every key the vault owns.
func (v *Vault) Wipe(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.store.Remove(ctx, allKeys...); err != nil {
		return fmt.Errorf("failed to wipe vault: %w", err)
	}
	log.Info().Msg("vault wiped")
	return nil
}

// SeedIndex returns the highest account index derived so far.
func (v *Vault) SeedIndex(ctx context.Context) (uint32, error) {
	raw, err := v.store.Get(ctx, KeySeedIndex)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read seed index: %w", err)
	}
	idx, err := strconv.ParseUint(string(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid stored seed index: %w", err)
	}
	return uint32(idx), nil
}

func (v *Vault) SetSeedIndex(ctx context.Context, index uint32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.setSeedIndex(ctx, index)
}

func (v *Vault) setSeedIndex(ctx context.Context, index uint32) error {
	if err := v.store.Set(ctx, KeySeedIndex, []byte(strconv.FormatUint(uint64(index), 10))); err != nil {
		return fmt.Errorf("failed to store seed index: %w", err)
	}
	return nil
}

// unlockKey checks the lockout and the password and returns the seed
// encryption key. v.mu must be held.
func (v *Vault) unlockKey(ctx context.Context, password []byte) ([]byte, error) {
	state, err := v.lockout(ctx)
	if err != nil {
		return nil, err
	}
	if state.Locked(v.now()) {
		return nil, &nano.LockoutError{Until: *state.LockUntil}
	}

	stored, err := v.store.Get(ctx, KeyPasswordVerifier)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSeed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read verifier: %w", err)
	}
	salt, err := v.store.Get(ctx, KeyPasswordSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	verifier, err := passwordVerifier(password, salt)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(verifier, stored) != 1 {
		return nil, v.recordFailure(ctx, state)
	}

	kdf, err := v.storedKDF(ctx)
	if err != nil {
		return nil, err
	}
	key, err := crypto.DeriveKey(kdf, password, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}

	if state.FailedAttempts != MaxAttempts {
		if err := v.resetLock(ctx); err != nil {
			clear(key)
			return nil, err
		}
	}
	return key, nil
}

func (v *Vault) openSeed(ctx context.Context, key []byte) ([]byte, error) {
	sealed, err := v.store.Get(ctx, KeyEncryptedSeed)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSeed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}
	seed, err := crypto.Open(sealed, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decrypt seed: %w", nano.ErrCrypto, err)
	}
	if len(seed) != nano.SeedSize {
		clear(seed)
		return nil, fmt.Errorf("%w: stored seed has wrong length", nano.ErrCrypto)
	}
	return seed, nil
}

func (v *Vault) storedKDF(ctx context.Context) (crypto.KDF, error) {
	raw, err := v.store.Get(ctx, KeyKDF)
	if errors.Is(err, store.ErrNotFound) {
		return crypto.KDFArgon2id, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read kdf: %w", err)
	}
	kdf, err := crypto.ParseKDF(string(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}
	return kdf, nil
}

func passwordVerifier(password, salt []byte) ([]byte, error) {
	verifier, err := crypto.Digest(32, password, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}
	return verifier, nil
}
