package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ougirez/cbmreport/internal/app"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/config"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/pkg/store"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
	"github.com/spf13/cobra"
)

func setup() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("cannot load a config: %w", err)
	}
	if err = logger.Init(cfg.Logger.Level); err != nil {
		return nil, fmt.Errorf("cannot init logger: %w", err)
	}
	return cfg, nil
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cannot start the application: %w", err)
	}
	a.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigCh:
		logger.Warnf(ctx, "signal %s received, exiting", s)
		a.Stop(ctx)
		logger.Info(ctx, "application exited")
	case <-a.Done():
		a.Close()
		return fmt.Errorf("http server stopped unexpectedly")
	}

	return nil
}

func ingestFile(cmd *cobra.Command, _ []string) error {
	kind, ok := domain.ParseSourceKind(ingestKind)
	if !ok {
		return fmt.Errorf("unknown kind %q", ingestKind)
	}

	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cannot start the application: %w", err)
	}
	defer a.Close()

	f, err := os.Open(ingestPath)
	if err != nil {
		return err
	}
	defer f.Close()

	batch, err := a.Ingest.IngestFile(ctx, kind, filepath.Base(ingestPath), f)
	if err != nil {
		return err
	}

	fmt.Printf("batch %s: %s, %d rows\n", batch.ID, batch.Status, batch.RowCount)
	return nil
}

func migrateDB(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := xpgx.Connect(ctx, cfg.DB.DSN, cfg.DB.MaxConns, cfg.DB.ConnectRetries)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err = store.Migrate(ctx, pool); err != nil {
		return err
	}
	logger.Info(ctx, "migrations applied")
	return nil
}
