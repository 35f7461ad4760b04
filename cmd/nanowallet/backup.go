package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/nano-wallet/internal/config"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
	"github.com/AlexZinkM/nano-wallet/internal/vault"
)

const backupFilePerm = 0600

func newBackupCommand(cfg *config.Config) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write the seed to a file encrypted under a separate backup password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			v, _, closeStore, err := openVault(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			password, err := config.PromptForPassword("Wallet password: ")
			if err != nil {
				return err
			}
			defer clear(password)
			backupPassword, err := promptNewPassword("Backup password: ")
			if err != nil {
				return err
			}
			defer clear(backupPassword)

			if err := writeBackup(ctx, v, password, backupPassword, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "nano-wallet-backup.json", "backup file")
	return cmd
}

func newRestoreCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: "Store the seed from a backup file under a new wallet password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, _, closeStore, err := openVault(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			backupPassword, err := config.PromptForPassword("Backup password: ")
			if err != nil {
				return err
			}
			defer clear(backupPassword)
			password, err := promptNewPassword("New wallet password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			address, err := restoreBackup(ctx, v, args[0], backupPassword, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wallet restored: %s\n", address)
			return nil
		},
	}
}

// promptNewPassword asks twice and fails on a mismatch.
func promptNewPassword(prompt string) ([]byte, error) {
	password, err := config.PromptForPassword(prompt)
	if err != nil {
		return nil, err
	}
	confirm, err := config.PromptForPassword("Repeat: ")
	if err != nil {
		clear(password)
		return nil, err
	}
	defer clear(confirm)
	if !bytes.Equal(password, confirm) {
		clear(password)
		return nil, errors.New("passwords do not match")
	}
	return password, nil
}

func writeBackup(ctx context.Context, v *vault.Vault, password, backupPassword []byte, path string) error {
	seed, err := v.Unlock(ctx, password)
	if err != nil {
		return err
	}
	defer clear(seed)

	b, err := v.SealBackup(seed, backupPassword)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, backupFilePerm)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return f.Close()
}

func restoreBackup(ctx context.Context, v *vault.Vault, path string, backupPassword, password []byte) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read backup file: %w", err)
	}
	b, err := vault.ParseBackup(data)
	if err != nil {
		return "", err
	}
	seed, err := vault.OpenBackup(b, backupPassword)
	if err != nil {
		return "", err
	}
	defer clear(seed)

	if err := v.CreateSeed(ctx, seed, password); err != nil {
		return "", err
	}
	kp, err := nano.DeriveKeyPair(seed, 0)
	if err != nil {
		return "", err
	}
	defer kp.Wipe()
	return kp.Address(), nil
}
