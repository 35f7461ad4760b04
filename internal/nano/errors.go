package nano

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every error returned by this package and the packages built on
// it wraps exactly one of these, so callers can branch with errors.Is.
// Messages never carry seed, key or password material.
var (
	ErrValidation        = errors.New("validation error")
	ErrCrypto            = errors.New("crypto error")
	ErrBuild             = errors.New("build error")
	ErrLockout           = errors.New("wallet locked out")
	ErrAuthentication    = errors.New("authentication failed")
	ErrProofOfWork       = errors.New("proof of work error")
	ErrNetwork           = errors.New("network error")
	ErrDuplicateInFlight = errors.New("broadcast already in progress")
)

// Address validation failures.
var (
	ErrInvalidPrefix     = fmt.Errorf("%w: invalid address prefix", ErrValidation)
	ErrInvalidLength     = fmt.Errorf("%w: invalid address length", ErrValidation)
	ErrInvalidCharacter  = fmt.Errorf("%w: invalid address character", ErrValidation)
	ErrInvalidChecksum   = fmt.Errorf("%w: invalid address checksum", ErrValidation)
	ErrInvalidSeedLength = fmt.Errorf("%w: seed must be %d bytes", ErrValidation, SeedSize)
)

// Ledger rejections of a processed block.
var (
	ErrFork     = fmt.Errorf("%w: fork detected", ErrNetwork)
	ErrOldBlock = fmt.Errorf("%w: old block detected", ErrNetwork)
)

// LockoutError is returned while a timed lock is active.
type LockoutError struct {
	Until time.Time
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("too many failed unlock attempts, locked until %s", e.Until.UTC().Format(time.RFC3339))
}

// Is makes errors.Is(err, ErrLockout) hold.
func (e *LockoutError) Is(target error) bool {
	return target == ErrLockout
}

// ProcessError is a ledger rejection that is neither a fork nor an old block.
type ProcessError struct {
	Message string
}

func (e *ProcessError) Error() string {
	return "process rejected: " + e.Message
}

func (e *ProcessError) Is(target error) bool {
	return target == ErrNetwork
}

// ParseProcessError maps the error string of a process RPC response.
func ParseProcessError(msg string) error {
	switch msg {
	case "":
		return nil
	case "Fork":
		return ErrFork
	case "Old block":
		return ErrOldBlock
	}
	return &ProcessError{Message: msg}
}
