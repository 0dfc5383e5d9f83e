package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stablemesh/config"
	"stablemesh/core/state"
	"stablemesh/native/protocol"
	"stablemesh/native/region"
	"stablemesh/observability/logging"
	"stablemesh/rpc"
	"stablemesh/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the daemon configuration file")
	memBacked := flag.Bool("mem", false, "run against an in-memory database instead of LevelDB")
	flag.Parse()

	if err := run(*configPath, *memBacked); err != nil {
		fmt.Fprintf(os.Stderr, "stablemeshd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, memBacked bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.Setup("stablemeshd", cfg.Environment, cfg.LogLevel)

	owner, err := cfg.Owner()
	if err != nil {
		return err
	}

	var db storage.Database
	if memBacked {
		db = storage.NewMemDB()
	} else {
		ldb, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
		if err != nil {
			return fmt.Errorf("open ledger database: %w", err)
		}
		db = ldb
	}
	defer db.Close()

	ledger := state.NewLedger(db)
	engine := protocol.NewEngine(owner)
	engine.SetState(ledger)

	// Seed vaults and oracle defaults exactly once; InitializeVaults resets
	// vault balances, so a populated ledger must not run it again.
	seeded, err := ledger.GetVault(region.US)
	if err != nil {
		return err
	}
	if seeded == nil {
		if err := engine.InitializeVaults(owner); err != nil {
			return fmt.Errorf("initialize vaults: %w", err)
		}
		ledger.DrainEvents()
		logger.Info("seeded vaults and oracle defaults", "regions", len(region.All()))
	}

	height, err := ledger.GetBlockHeight()
	if err != nil {
		return fmt.Errorf("load block height: %w", err)
	}
	if height > 0 {
		logger.Info("resuming block counter", "height", height)
	}

	server := rpc.NewServer(engine, ledger, height, logger)
	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting JSON-RPC server", "addr", cfg.RPCAddress, "network", cfg.NetworkName)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
