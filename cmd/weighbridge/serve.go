package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/scale"
	"github.com/example/weighbridge/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve exposes the terminal over HTTP: PIN login, live weight, the
two-stage weighing workflow, reports and administration.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			common.LogError(err, "failed to close storage", nil)
		}
	}()

	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8080"
	}
	secret := viper.GetString("server.jwt_secret")
	if secret == "" {
		return fmt.Errorf("server.jwt_secret must be configured (WEIGHBRIDGE_SERVER_JWT_SECRET)")
	}

	reader := scale.NewReader(newLineSource())
	defer reader.Stop()

	// Connect eagerly; the scale endpoints can reconnect later if this fails.
	if err := reader.Start(loadSerialConfig(ctx, store)); err != nil {
		common.LogError(err, "scale not connected at startup", nil)
	}

	srv := server.New(server.Config{Addr: addr, JWTSecret: secret}, store, ledger.New(store), reader)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			common.LogError(err, "server shutdown failed", nil)
		}
	}()

	return srv.Listen()
}
