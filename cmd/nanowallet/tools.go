package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/nano-wallet/internal/config"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
)

func newRekeyCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rekey",
		Short: "Re-encrypt the stored seed under a new password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			v, _, closeStore, err := openVault(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			oldPassword, err := config.PromptForPassword("Current password: ")
			if err != nil {
				return err
			}
			defer clear(oldPassword)
			newPassword, err := config.PromptForPassword("New password: ")
			if err != nil {
				return err
			}
			defer clear(newPassword)
			confirm, err := config.PromptForPassword("Repeat new password: ")
			if err != nil {
				return err
			}
			defer clear(confirm)
			if !bytes.Equal(newPassword, confirm) {
				return errors.New("passwords do not match")
			}

			if err := v.ChangePassword(ctx, oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
			return nil
		},
	}
}

func newDeriveCommand() *cobra.Command {
	var count uint32
	cmd := &cobra.Command{
		Use:   "derive SEED",
		Short: "Print the addresses of a hex seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("%w: seed must be hex", nano.ErrValidation)
			}
			defer clear(seed)

			for i := uint32(0); i < count; i++ {
				kp, err := nano.DeriveKeyPair(seed, i)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, kp.Address())
				kp.Wipe()
			}
			return nil
		},
	}
	cmd.Flags().Uint32VarP(&count, "count", "n", 1, "number of accounts to derive")
	return cmd
}

func newAddressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address ADDRESS",
		Short: "Validate an address and print its public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := nano.DecodeAddress(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", pub.Address(), pub.String())
			return nil
		},
	}
}

func newWorkCommand() *cobra.Command {
	var threshold string
	var threads int
	cmd := &cobra.Command{
		Use:   "work ROOT",
		Short: "Generate proof of work for a block root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := nano.ParseHash(args[0])
			if err != nil {
				return err
			}
			t, err := strconv.ParseUint(threshold, 16, 64)
			if err != nil {
				return fmt.Errorf("invalid threshold: %w", err)
			}

			worker := nano.NewWorker(nil, nano.WithThreads(threads), nano.WithThreshold(t))
			start := time.Now()
			work, err := worker.Generate(cmd.Context(), root)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", work, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&threshold, "threshold", strconv.FormatUint(nano.WorkThreshold, 16), "difficulty threshold in hex")
	cmd.Flags().IntVar(&threads, "threads", 0, "parallel searches, 0 for GOMAXPROCS")
	return cmd
}
