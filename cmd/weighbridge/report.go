package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/report"
)

func pendingCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List vehicles waiting for their second weighing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			d, err := model.ParseDirection(model.NormalizeName(direction))
			if err != nil {
				return fmt.Errorf("direction must be OUTBOUND or INBOUND")
			}

			txs, err := ledger.New(store).ListPending(ctx, d)
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				cmd.Println("Tidak ada kendaraan pending.")
				return nil
			}

			cmd.Printf("%-12s %-12s %-20s %10s  %s\n", "TIKET", "PLAT", "SOPIR", "BERAT 1", "JAM")
			for _, tx := range txs {
				cmd.Printf("%-12s %-12s %-20s %10d  %s\n",
					tx.TicketNumber, tx.PlateNumber, tx.DriverName,
					tx.FirstWeight, tx.FirstTimestamp.Format("02/01 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "OUTBOUND", "trade direction (OUTBOUND, INBOUND)")
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		direction string
		search    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show completed weighings and totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			d, err := model.ParseDirection(model.NormalizeName(direction))
			if err != nil {
				return fmt.Errorf("direction must be OUTBOUND or INBOUND")
			}

			txs, err := ledger.New(store).ListCompleted(ctx, d, search)
			if err != nil {
				return err
			}

			cmd.Printf("%-12s %-12s %-20s %8s %8s %8s\n", "TIKET", "PLAT", "SOPIR", "BRUTO", "TARA", "NETTO")
			for _, tx := range txs {
				cmd.Printf("%-12s %-12s %-20s %8d %8d %8d\n",
					tx.TicketNumber, tx.PlateNumber, tx.DriverName,
					tx.Bruto(), tx.Tara(), tx.NetWeight)
			}

			s := report.Summarize(txs)
			cmd.Printf("\n%d transaksi, total netto %d kg\n", s.Count, s.TotalNet)
			return nil
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "OUTBOUND", "trade direction (OUTBOUND, INBOUND)")
	cmd.Flags().StringVar(&search, "search", "", "filter by plate or driver")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		direction string
		search    string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completed weighings as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			d, err := model.ParseDirection(model.NormalizeName(direction))
			if err != nil {
				return fmt.Errorf("direction must be OUTBOUND or INBOUND")
			}

			txs, err := ledger.New(store).ListCompleted(ctx, d, search)
			if err != nil {
				return err
			}

			f, err := os.Create(expandPath(out))
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer func() { _ = f.Close() }()

			if err := report.WriteCSV(f, txs); err != nil {
				return err
			}
			cmd.Printf("Exported %d rows to %s\n", len(txs), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "OUTBOUND", "trade direction (OUTBOUND, INBOUND)")
	cmd.Flags().StringVar(&search, "search", "", "filter by plate or driver")
	cmd.Flags().StringVar(&out, "out", "laporan-timbangan.csv", "output file")
	return cmd
}

func ticketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ticket <ticket-number>",
		Short: "Print the weighing ticket for a completed transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tx, err := findByTicket(ctx, store, args[0])
			if err != nil {
				return err
			}
			if !tx.Completed() {
				return fmt.Errorf("tiket %s masih pending, belum bisa dicetak", tx.TicketNumber)
			}

			cmd.Print(report.RenderTicket(tx, loadAppConfig(ctx, store)))
			return nil
		},
	}
}
