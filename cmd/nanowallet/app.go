package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/config"
	"github.com/AlexZinkM/nano-wallet/internal/crypto"
	"github.com/AlexZinkM/nano-wallet/internal/store"
	"github.com/AlexZinkM/nano-wallet/internal/vault"
)

// openVault opens the configured secret store and the vault over it. The
// returned func releases its connections.
func openVault(ctx context.Context, cfg *config.Config) (*vault.Vault, store.Store, func(), error) {
	kdf, err := crypto.ParseKDF(cfg.VaultKDF)
	if err != nil {
		return nil, nil, nil, err
	}

	var s store.Store
	closeFn := func() {}
	switch cfg.StoreBackend {
	case config.StoreFile:
		fs, err := store.NewFileStore(cfg.StorePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
		}
		s = fs
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rs := store.NewRedisStore(rdb, cfg.RedisPrefix)
		if err := rs.Ping(ctx); err != nil {
			rdb.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s = rs
		closeFn = func() { rdb.Close() }
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory store, the seed is lost on exit")
		s = store.NewMemoryStore()
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	log.Info().Str("backend", cfg.StoreBackend).Str("kdf", string(kdf)).Msg("Secret store opened")
	return vault.New(s, vault.WithKDF(kdf)), s, closeFn, nil
}
