package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/model"
)

func resetCmd() *cobra.Command {
	var (
		pin   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all transactions (MASTER role)",
		Long: `Reset wipes the transaction ledger, drafts and active selections.
Reference data, configuration and operator accounts are kept.

This is a destructive operation. Take a backup first.`,
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

			txs, err := store.ListTransactions(ctx)
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				cmd.Println("Ledger is already empty. Nothing to reset.")
				return nil
			}

			pendingCount := 0
			for _, tx := range txs {
				if tx.Status == model.StatusPending {
					pendingCount++
				}
			}

			if !force {
				cmd.Printf("This will delete %d transactions (%d still pending).\n", len(txs), pendingCount)
				cmd.Print("\nAre you sure you want to continue? [y/N]: ")

				var response string
				if _, err := fmt.Scanln(&response); err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				if response != "y" && response != "Y" {
					cmd.Println("Reset canceled.")
					return nil
				}
			}

			if err := ledger.New(store).ClearAll(ctx); err != nil {
				return err
			}
			cmd.Printf("Deleted %d transactions.\n", len(txs))
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "master operator PIN")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}
