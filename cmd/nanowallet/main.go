// Command nanowallet runs the local Nano wallet API and its helper tools.
//
// @title        Nano Wallet API
// @version      1.0
// @description  Local Nano wallet: encrypted seed vault, state blocks, proof of work and broadcast.
// @host         localhost:8080
// @BasePath     /
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AlexZinkM/nano-wallet/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	// filled before any subcommand runs
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:          "nanowallet",
		Short:        "Local Nano wallet",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			*cfg = *loaded
			setupLogging(cfg)
			return nil
		},
	}

	root.AddCommand(
		newServeCommand(cfg),
		newRekeyCommand(cfg),
		newBackupCommand(cfg),
		newRestoreCommand(cfg),
		newDeriveCommand(),
		newAddressCommand(),
		newWorkCommand(),
	)
	return root
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
