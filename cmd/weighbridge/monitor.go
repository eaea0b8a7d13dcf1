package main

import (
	"github.com/spf13/cobra"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/scale"
	"github.com/example/weighbridge/internal/tui"
)

func monitorCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the live scale and pending queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			reader := scale.NewReader(newLineSource())
			if err := reader.Start(loadSerialConfig(ctx, store)); err != nil {
				common.LogError(err, "scale not connected, monitor shows OFFLINE", nil)
			}
			defer reader.Stop()

			d, err := model.ParseDirection(model.NormalizeName(direction))
			if err != nil {
				d = model.DirectionOutbound
			}

			return tui.Run(tui.Config{
				Reader:    reader,
				Ledger:    ledger.New(store),
				Direction: d,
				Theme:     tui.DefaultTheme,
			})
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "OUTBOUND", "initial queue direction (OUTBOUND, INBOUND)")
	return cmd
}
