// Package wallet is the unlocked-session layer of the wallet: it owns the
// decrypted seed while unlocked and runs the ledger flows on top of it.
package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/client"
	"github.com/AlexZinkM/nano-wallet/internal/model"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
	"github.com/AlexZinkM/nano-wallet/internal/vault"
)

// DefaultRepresentative is used for new accounts when none is configured.
const DefaultRepresentative = "xrb_3arg3asgtigae3xckabaaewkx3bzsh7nwz7jkmjos79ihyaxwphhm6qgjps4"

// ErrLocked is returned by operations that need the seed while the session
// is locked.
var ErrLocked = fmt.Errorf("%w: wallet is locked", nano.ErrAuthentication)

// WalletExistsError is an error when a seed is already stored
type WalletExistsError struct {
	Message string
}

func (e *WalletExistsError) Error() string {
	return e.Message
}

// IsWalletExistsError checks if error is WalletExistsError
func IsWalletExistsError(err error) bool {
	var target *WalletExistsError
	return errors.As(err, &target)
}

// Ledger is the read side of the node RPC.
type Ledger interface {
	AccountInfo(ctx context.Context, account string) (*client.AccountInfo, error)
	Pending(ctx context.Context, account string, count int) ([]client.PendingBlock, error)
	History(ctx context.Context, account string, count int) ([]client.HistoryEntry, error)
}

// Broadcaster publishes built blocks.
type Broadcaster interface {
	Handle(ctx context.Context, block *nano.StateBlock) (nano.Hash, error)
}

// PriceSource quotes NANO in a fiat currency.
type PriceSource interface {
	GetNanoPrice(ctx context.Context, currency string) (string, error)
}

// ContactLister names known counterparties in the history.
type ContactLister interface {
	List(ctx context.Context) ([]model.Contact, error)
}

// Session is safe for concurrent use.
type Session struct {
	vault       *vault.Vault
	ledger      Ledger
	broadcaster Broadcaster
	contacts    ContactLister

	prices         PriceSource
	currency       string
	representative string
	cooldown       time.Duration
	now            func() time.Time

	mu   sync.RWMutex
	seed []byte

	sendMu   sync.Mutex
	lastSend time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithPrices enables fiat conversion of balances.
func WithPrices(p PriceSource, currency string) Option {
	return func(s *Session) {
		s.prices = p
		s.currency = currency
	}
}

// WithRepresentative sets the representative of newly opened accounts.
func WithRepresentative(address string) Option {
	return func(s *Session) {
		if address != "" {
			s.representative = address
		}
	}
}

// WithSendCooldown sets the minimum time between two sends.
func WithSendCooldown(d time.Duration) Option {
	return func(s *Session) {
		s.cooldown = d
	}
}

// WithContacts labels history entries with address book names.
func WithContacts(c ContactLister) Option {
	return func(s *Session) {
		s.contacts = c
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New returns a locked session.
func New(v *vault.Vault, ledger Ledger, broadcaster Broadcaster, opts ...Option) *Session {
	s := &Session{
		vault:          v,
		ledger:         ledger,
		broadcaster:    broadcaster,
		representative: DefaultRepresentative,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate creates and stores a fresh seed under password and leaves the
// session unlocked. Returns the address of account 0.
// password must be []byte for security (caller should zero it after use)
func (s *Session) Generate(ctx context.Context, password []byte) (string, error) {
	seed, err := nano.NewSeed()
	if err != nil {
		return "", err
	}
	defer clear(seed)
	return s.store(ctx, seed, password)
}

// Import stores an existing seed, given as 64 hex characters or a 24-word
// mnemonic, and leaves the session unlocked.
func (s *Session) Import(ctx context.Context, secret string, password []byte) (string, error) {
	seed, err := parseSecret(secret)
	if err != nil {
		return "", err
	}
	defer clear(seed)
	return s.store(ctx, seed, password)
}

func parseSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if strings.Contains(secret, " ") {
		return nano.MnemonicToSeed(secret)
	}
	seed, err := hex.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: seed must be hex or a mnemonic", nano.ErrValidation)
	}
	if len(seed) != nano.SeedSize {
		clear(seed)
		return nil, nano.ErrInvalidSeedLength
	}
	return seed, nil
}

func (s *Session) store(ctx context.Context, seed, password []byte) (string, error) {
	if err := s.vault.CreateSeed(ctx, seed, password); err != nil {
		if errors.Is(err, vault.ErrSeedExists) {
			return "", &WalletExistsError{Message: "a wallet seed is already stored"}
		}
		return "", fmt.Errorf("failed to store seed: %w", err)
	}

	kp, err := nano.DeriveKeyPair(seed, 0)
	if err != nil {
		return "", err
	}
	kp.Wipe()

	s.setSeed(seed)
	log.Info().Str("address", kp.Address()).Msg("Wallet created")
	return kp.Address(), nil
}

// Unlock decrypts the seed with password.
func (s *Session) Unlock(ctx context.Context, password []byte) error {
	seed, err := s.vault.Unlock(ctx, password)
	if err != nil {
		return err
	}
	defer clear(seed)
	s.setSeed(seed)
	log.Info().Msg("Wallet unlocked")
	return nil
}

// UnlockFast decrypts the seed through the platform gate.
func (s *Session) UnlockFast(ctx context.Context, gate vault.BiometricGate) error {
	seed, err := s.vault.UnlockFast(ctx, gate)
	if err != nil {
		return err
	}
	defer clear(seed)
	s.setSeed(seed)
	log.Info().Msg("Wallet unlocked with fast unlock")
	return nil
}

// EnableFastUnlock stores the key needed by UnlockFast.
func (s *Session) EnableFastUnlock(ctx context.Context, password []byte, gate vault.BiometricGate) error {
	return s.vault.EnableFastUnlock(ctx, password, gate)
}

// ChangePassword re-encrypts the stored seed.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	return s.vault.ChangePassword(ctx, oldPassword, newPassword)
}

// Lock zeroes the in-memory seed.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seed != nil {
		clear(s.seed)
		s.seed = nil
		log.Info().Msg("Wallet locked")
	}
}

// Background is called when the app leaves the foreground; it locks.
func (s *Session) Background() {
	s.Lock()
}

// Unlocked reports whether the seed is in memory.
func (s *Session) Unlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seed != nil
}

func (s *Session) setSeed(seed []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seed != nil {
		clear(s.seed)
	}
	s.seed = append([]byte(nil), seed...)
}

// KeyPair derives account index. The caller should Wipe it after use.
func (s *Session) KeyPair(index uint32) (nano.KeyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.seed == nil {
		return nano.KeyPair{}, ErrLocked
	}
	return nano.DeriveKeyPair(s.seed, index)
}

// Address returns the address of account index.
func (s *Session) Address(index uint32) (string, error) {
	kp, err := s.KeyPair(index)
	if err != nil {
		return "", err
	}
	defer kp.Wipe()
	return kp.Address(), nil
}

// Accounts lists accounts 0 through the stored seed index.
func (s *Session) Accounts(ctx context.Context) ([]model.Account, error) {
	last, err := s.vault.SeedIndex(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]model.Account, 0, last+1)
	for i := uint32(0); i <= last; i++ {
		addr, err := s.Address(i)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, model.Account{Index: i, Address: addr})
	}
	return accounts, nil
}

// AddAccount derives the next account and persists the new seed index.
func (s *Session) AddAccount(ctx context.Context) (model.Account, error) {
	last, err := s.vault.SeedIndex(ctx)
	if err != nil {
		return model.Account{}, err
	}
	next := last + 1
	addr, err := s.Address(next)
	if err != nil {
		return model.Account{}, err
	}
	if err := s.vault.SetSeedIndex(ctx, next); err != nil {
		return model.Account{}, err
	}
	return model.Account{Index: next, Address: addr}, nil
}

// ExportSeed returns the seed as uppercase hex.
func (s *Session) ExportSeed() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.seed == nil {
		return "", ErrLocked
	}
	return strings.ToUpper(hex.EncodeToString(s.seed)), nil
}

// ExportMnemonic returns the seed as a 24-word mnemonic.
func (s *Session) ExportMnemonic() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.seed == nil {
		return "", ErrLocked
	}
	return nano.SeedToMnemonic(s.seed)
}

// ExportBackup seals the seed under backupPassword for safekeeping outside
// the store.
func (s *Session) ExportBackup(backupPassword []byte) (*vault.Backup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.seed == nil {
		return nil, ErrLocked
	}
	b, err := s.vault.SealBackup(s.seed, backupPassword)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Seed backup exported")
	return b, nil
}

// RestoreBackup opens a backup with backupPassword and stores its seed under
// password like Import does.
func (s *Session) RestoreBackup(ctx context.Context, data, backupPassword, password []byte) (string, error) {
	b, err := vault.ParseBackup(data)
	if err != nil {
		return "", err
	}
	seed, err := vault.OpenBackup(b, backupPassword)
	if err != nil {
		return "", err
	}
	defer clear(seed)
	return s.store(ctx, seed, password)
}
