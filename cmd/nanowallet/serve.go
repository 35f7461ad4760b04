package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AlexZinkM/nano-wallet/internal/addressbook"
	"github.com/AlexZinkM/nano-wallet/internal/api"
	"github.com/AlexZinkM/nano-wallet/internal/broadcast"
	"github.com/AlexZinkM/nano-wallet/internal/client"
	"github.com/AlexZinkM/nano-wallet/internal/config"
	"github.com/AlexZinkM/nano-wallet/internal/handler"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
	"github.com/AlexZinkM/nano-wallet/wallet"
)

const sweepInterval = 30 * time.Second

func newServeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Prompt for the wallet password and serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Prompt for password at startup (hidden input); kept only in memory
	password, err := config.PromptForPassword("Enter wallet password: ")
	if err != nil {
		return err
	}
	defer clear(password)

	v, s, closeStore, err := openVault(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rpc := client.NewNanoClient(cfg.RPCURL)
	worker := nano.NewWorker(reg, nano.WithThreads(cfg.PowWorkers))
	opts := []broadcast.Option{broadcast.WithTimeout(cfg.InflightTimeout)}
	if cfg.WorkURL != "" {
		opts = append(opts, broadcast.WithWorkSource(client.NewNanoClient(cfg.WorkURL)))
	}
	coordinator := broadcast.NewCoordinator(rpc, worker, reg, opts...)

	book := addressbook.New(s)
	session := wallet.New(v, rpc, coordinator,
		wallet.WithContacts(book),
		wallet.WithPrices(client.NewCoinGeckoClient(cfg.CoinGeckoURL), cfg.PriceCurrency),
		wallet.WithRepresentative(cfg.Representative),
		wallet.WithSendCooldown(cfg.SendCooldownDuration()),
	)
	defer session.Lock()

	exists, err := v.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if err := session.Unlock(ctx, password); err != nil {
			return err
		}
	} else {
		log.Info().Msg("No wallet stored yet, use POST /wallet/generate or /wallet/import")
	}

	nanoHandler := handler.NewNanoHandler(session, coordinator, func() ([]byte, error) {
		return append([]byte(nil), password...), nil
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(nanoHandler, handler.NewAddressBookHandler(book), reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go coordinator.Run(ctx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		log.Info().Str("url", "http://localhost:"+cfg.Port+"/swagger/index.html").Msg("Swagger UI available")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
