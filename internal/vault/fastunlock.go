package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/crypto"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
	"github.com/AlexZinkM/nano-wallet/internal/store"
)

// BiometricGate releases a platform-held wrapping key after the user passes a
// biometric or device check. Key returns an error when the check fails.
type BiometricGate interface {
	Available() bool
	Key(ctx context.Context, reason string) ([]byte, error)
}

// FastUnlockEnabled reports whether a wrapped key is stored.
func (v *Vault) FastUnlockEnabled(ctx context.Context) (bool, error) {
	raw, err := v.store.Get(ctx, KeyFastUnlockEnabled)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read fast unlock flag: %w", err)
	}
	return string(raw) == "true", nil
}

// EnableFastUnlock stores the seed encryption key wrapped under the gate's
// key so that UnlockFast can open the seed without the password.
func (v *Vault) EnableFastUnlock(ctx context.Context, password []byte, gate BiometricGate) error {
	if !gate.Available() {
		return ErrFastUnlockUnavailable
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	key, err := v.unlockKey(ctx, password)
	if err != nil {
		return err
	}
	defer clear(key)

	wrappingKey, err := gate.Key(ctx, "Enable fast unlock")
	if err != nil {
		return fmt.Errorf("%w: %w", nano.ErrAuthentication, err)
	}
	defer clear(wrappingKey)

	wrapped, err := crypto.WrapKey(key, wrappingKey)
	if err != nil {
		return fmt.Errorf("%w: %w", nano.ErrCrypto, err)
	}
	err = v.store.SetMany(ctx, map[string][]byte{
		KeyFastUnlockKey:     wrapped,
		KeyFastUnlockEnabled: []byte("true"),
	})
	if err != nil {
		return fmt.Errorf("failed to store fast unlock key: %w", err)
	}
	return nil
}

// DisableFastUnlock removes the wrapped key.
func (v *Vault) DisableFastUnlock(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.purgeFastUnlock(ctx)
}

// UnlockFast opens the seed with the gate's key. A failed gate check consumes
// an attempt exactly like a wrong password. When the gate is no longer
// available the stored key is purged.
func (v *Vault) UnlockFast(ctx context.Context, gate BiometricGate) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	state, err := v.lockout(ctx)
	if err != nil {
		return nil, err
	}
	if state.Locked(v.now()) {
		return nil, &nano.LockoutError{Until: *state.LockUntil}
	}

	wrapped, err := v.store.Get(ctx, KeyFastUnlockKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrFastUnlockUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fast unlock key: %w", err)
	}

	if !gate.Available() {
		log.Info().Msg("fast unlock no longer available, removing stored key")
		if err := v.purgeFastUnlock(ctx); err != nil {
			return nil, err
		}
		return nil, ErrFastUnlockUnavailable
	}

	wrappingKey, err := gate.Key(ctx, "Unlock wallet")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, v.recordFailure(ctx, state)
	}
	defer clear(wrappingKey)

	key, err := crypto.UnwrapKey(wrapped, wrappingKey)
	if err != nil {
		// the platform key was replaced, the stored key can never open again
		log.Warn().Msg("fast unlock key no longer opens, removing it")
		if err := v.purgeFastUnlock(ctx); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFastUnlockUnavailable, err)
	}
	defer clear(key)

	seed, err := v.openSeed(ctx, key)
	if err != nil {
		return nil, err
	}
	if state.FailedAttempts != MaxAttempts {
		if err := v.resetLock(ctx); err != nil {
			clear(seed)
			return nil, err
		}
	}
	return seed, nil
}

func (v *Vault) purgeFastUnlock(ctx context.Context) error {
	if err := v.store.Remove(ctx, KeyFastUnlockKey, KeyFastUnlockEnabled); err != nil {
		return fmt.Errorf("failed to remove fast unlock key: %w", err)
	}
	return nil
}
