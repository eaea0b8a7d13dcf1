package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/weighbridge/internal/storage"
)

func backupCmd() *cobra.Command {
	var (
		pin string
		out string
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export the full terminal state to a JSON file (MASTER role)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := requireMasterOp(ctx, store, pin); err != nil {
				return err
			}

			b, err := store.Snapshot(ctx)
			if err != nil {
				return err
			}

			payload, err := json.MarshalIndent(b, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode backup: %w", err)
			}
			if err := os.WriteFile(expandPath(out), payload, 0o600); err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}

			cmd.Printf("Backup of %d transactions written to %s\n", len(b.Transactions), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "master operator PIN")
	cmd.Flags().StringVar(&out, "out", "weighbridge-backup.json", "output file")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}

func restoreCmd() *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the terminal state from a backup file (MASTER role)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := requireMasterOp(ctx, store, pin); err != nil {
				return err
			}

			payload, err := os.ReadFile(expandPath(args[0]))
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}
			var b storage.Backup
			if err := json.Unmarshal(payload, &b); err != nil {
				return fmt.Errorf("failed to decode backup: %w", err)
			}

			if err := store.Restore(ctx, &b); err != nil {
				return err
			}
			cmd.Printf("Restored %d transactions from %s\n", len(b.Transactions), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "master operator PIN")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}
