package vault

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/nano"
	"github.com/AlexZinkM/nano-wallet/internal/store"
)

// Lockout returns the current lockout state. An expired lock is cleared.
func (v *Vault) Lockout(ctx context.Context) (LockoutState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lockout(ctx)
}

// ResetLock clears any lock and restores the full attempt count.
func (v *Vault) ResetLock(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resetLock(ctx)
}

func (v *Vault) lockout(ctx context.Context) (LockoutState, error) {
	state := LockoutState{FailedAttempts: MaxAttempts}

	raw, err := v.store.Get(ctx, KeyFailedAttempts)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return state, fmt.Errorf("failed to read attempts: %w", err)
	default:
		n, err := strconv.Atoi(string(raw))
		if err != nil || n < 0 || n > MaxAttempts {
			return state, fmt.Errorf("invalid stored attempt count %q", raw)
		}
		state.FailedAttempts = n
	}

	raw, err = v.store.Get(ctx, KeyLockUntil)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return state, nil
	case err != nil:
		return state, fmt.Errorf("failed to read lock: %w", err)
	}
	until, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return state, fmt.Errorf("invalid stored lock time: %w", err)
	}
	if !v.now().Before(until) {
		log.Info().Msg("wallet lock expired")
		if err := v.resetLock(ctx); err != nil {
			return state, err
		}
		return LockoutState{FailedAttempts: MaxAttempts}, nil
	}
	state.LockUntil = &until
	return state, nil
}

func (v *Vault) resetLock(ctx context.Context) error {
	if err := v.store.Set(ctx, KeyFailedAttempts, []byte(strconv.Itoa(MaxAttempts))); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	if err := v.store.Remove(ctx, KeyLockUntil); err != nil {
		return fmt.Errorf("failed to clear lock: %w", err)
	}
	return nil
}

// recordFailure persists one consumed attempt and returns the error the
// caller reports.
func (v *Vault) recordFailure(ctx context.Context, state LockoutState) error {
	remaining := state.FailedAttempts - 1
	if remaining > 0 {
		if err := v.store.Set(ctx, KeyFailedAttempts, []byte(strconv.Itoa(remaining))); err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}
		log.Warn().Int("remaining", remaining).Msg("unlock attempt failed")
		return fmt.Errorf("%w: %d attempts remaining", nano.ErrAuthentication, remaining)
	}

	until := v.now().Add(LockDuration)
	err := v.store.SetMany(ctx, map[string][]byte{
		KeyFailedAttempts: []byte(strconv.Itoa(MaxAttempts)),
		KeyLockUntil:      []byte(until.Format(time.RFC3339Nano)),
	})
	if err != nil {
		return fmt.Errorf("failed to record lockout: %w", err)
	}
	log.Warn().Time("until", until).Msg("too many failed unlock attempts, wallet locked")
	return &nano.LockoutError{Until: until}
}
