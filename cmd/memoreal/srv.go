package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"memoreal/internal/capsule"
	"memoreal/internal/config"
	"memoreal/internal/ledger"
	"memoreal/internal/server"
	"memoreal/internal/store"
)

const ledgerTokenEnvKey = "MEMOREAL_LEDGER_TOKEN"

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the memoreal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}
			policy, err := capsule.ParseLocationPolicy(cfg.Capsules.LocationPolicy)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			capsuleLedger, err := ledger.New(ledger.Config{
				Mode:    cfg.Ledger.Mode,
				URL:     cfg.Ledger.URL,
				Timeout: cfg.LedgerTimeout(),
				Token:   os.Getenv(ledgerTokenEnvKey),
			}, st, logger.With("component", "ledger"))
			if err != nil {
				return err
			}

			srv := server.New(addr, st, capsuleLedger, server.Options{
				MetricsAddr:    cfg.MetricsAddr,
				LocationPolicy: policy,
				LedgerMode:     cfg.Ledger.Mode,
			}, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}
