package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/report"
)

func weighCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weigh",
		Short: "Record weighings",
	}
	cmd.AddCommand(weighFirstCmd())
	cmd.AddCommand(weighSecondCmd())
	return cmd
}

func weighFirstCmd() *cobra.Command {
	var (
		pin       string
		direction string
		plate     string
		driver    string
		cargo     string
		party     string
		weight    int64
	)

	cmd := &cobra.Command{
		Use:   "first",
		Short: "Record the first weighing of a vehicle",
		Long: `First opens a PENDING transaction for a vehicle visit. The weight is
read live from the indicator unless --weight supplies a manual value.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			op, err := authOperator(ctx, store, pin)
			if err != nil {
				return err
			}

			d, err := model.ParseDirection(model.NormalizeName(direction))
			if err != nil {
				return fmt.Errorf("direction must be OUTBOUND or INBOUND")
			}

			w, err := resolveWeight(ctx, store, weight)
			if err != nil {
				return fmt.Errorf("%s", userMessage(err))
			}

			tx, err := ledger.New(store).Open(ctx, ledger.OpenRequest{
				Direction:   d,
				PlateNumber: plate,
				DriverName:  driver,
				CargoType:   cargo,
				PartyName:   party,
				Weight:      w,
				Operator:    *op,
			})
			if err != nil {
				return fmt.Errorf("%s", userMessage(err))
			}

			cmd.Printf("Tiket %s dibuka: %s, berat pertama %d kg\n", tx.TicketNumber, tx.PlateNumber, tx.FirstWeight)
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "operator PIN")
	cmd.Flags().StringVar(&direction, "direction", "OUTBOUND", "trade direction (OUTBOUND, INBOUND)")
	cmd.Flags().StringVar(&plate, "plate", "", "vehicle plate number")
	cmd.Flags().StringVar(&driver, "driver", "", "driver name")
	cmd.Flags().StringVar(&cargo, "cargo", "", "cargo type")
	cmd.Flags().StringVar(&party, "party", "", "customer or supplier name")
	cmd.Flags().Int64Var(&weight, "weight", 0, "manual weight in kg (0 = read from scale)")
	_ = cmd.MarkFlagRequired("pin")
	_ = cmd.MarkFlagRequired("plate")
	return cmd
}

func weighSecondCmd() *cobra.Command {
	var (
		pin    string
		weight int64
	)

	cmd := &cobra.Command{
		Use:   "second <ticket-number>",
		Short: "Record the second weighing and complete the transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := authOperator(ctx, store, pin); err != nil {
				return err
			}

			tx, err := findByTicket(ctx, store, args[0])
			if err != nil {
				return err
			}

			w, err := resolveWeight(ctx, store, weight)
			if err != nil {
				return fmt.Errorf("%s", userMessage(err))
			}

			done, err := ledger.New(store).Close(ctx, tx.ID, w)
			if err != nil {
				return fmt.Errorf("%s", userMessage(err))
			}

			cmd.Printf("Tiket %s selesai: bruto %d, tara %d, netto %d kg\n",
				done.TicketNumber, done.Bruto(), done.Tara(), done.NetWeight)

			if loadAppConfig(ctx, store).AutoPrint {
				cmd.Println()
				cmd.Print(report.RenderTicket(done, loadAppConfig(ctx, store)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pin, "pin", "", "operator PIN")
	cmd.Flags().Int64Var(&weight, "weight", 0, "manual weight in kg (0 = read from scale)")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}
