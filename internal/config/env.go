package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config contains all configuration parameters for the application.
// Note: the wallet password is never part of it, use PromptForPassword
type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	StorePath       string        `envconfig:"NANO_STORE_PATH" default:"nanowallet.json"`
	StoreBackend    string        `envconfig:"NANO_STORE_BACKEND" default:"file"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPrefix     string        `envconfig:"REDIS_PREFIX" default:"nanowallet:"`
	RPCURL          string        `envconfig:"NANO_RPC_URL" default:"http://127.0.0.1:7076"`
	WorkURL         string        `envconfig:"NANO_WORK_URL"`
	PowWorkers      int           `envconfig:"POW_WORKERS" default:"0"`
	InflightTimeout time.Duration `envconfig:"INFLIGHT_TIMEOUT" default:"2m"`
	SendCooldown    int           `envconfig:"SEND_COOLDOWN_MINUTES" default:"4"`
	VaultKDF        string        `envconfig:"VAULT_KDF" default:"argon2id"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty       bool          `envconfig:"LOG_PRETTY" default:"false"`
	PriceCurrency   string        `envconfig:"PRICE_CURRENCY" default:"usd"`
	CoinGeckoURL    string        `envconfig:"COINGECKO_URL"`
	Representative  string        `envconfig:"REPRESENTATIVE"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreFile:
		if c.StorePath == "" {
			return errors.New("NANO_STORE_PATH is required for the file store")
		}
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.PowWorkers < 0 {
		return errors.New("POW_WORKERS must not be negative")
	}
	if c.SendCooldown < 0 {
		return errors.New("SEND_COOLDOWN_MINUTES must not be negative")
	}
	if c.InflightTimeout <= 0 {
		return errors.New("INFLIGHT_TIMEOUT must be positive")
	}
	return nil
}

// SendCooldownDuration returns the send cooldown as a duration
func (c *Config) SendCooldownDuration() time.Duration {
	return time.Duration(c.SendCooldown) * time.Minute
}

// PromptForPassword prompts the user for the wallet password in the terminal.
// The password is read without echoing (hidden input).
// Caller must zero the returned slice after use for security.
func PromptForPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}
