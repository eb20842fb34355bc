package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vibing2/vibing-desktop/internal/config"
	"github.com/vibing2/vibing-desktop/internal/defaults"
	"github.com/vibing2/vibing-desktop/internal/logging"
	"github.com/vibing2/vibing-desktop/internal/server"
	"github.com/vibing2/vibing-desktop/internal/svc"
	"github.com/vibing2/vibing-desktop/internal/updater"
)

// RunServe starts the engine without a native window or tray: database,
// updater, event feed, and the command API on loopback. Blocks until
// interrupted.
func RunServe() error {
	svcCtx, lock, err := initEngine()
	if err != nil {
		return err
	}
	defer releaseLock(lock)
	defer svcCtx.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Infof("received signal %v, shutting down", sig)
		cancel()
	}()

	svcCtx.Updates.Start()
	return server.New(svcCtx).Run(ctx)
}

// initEngine does the startup work shared by headless and desktop modes:
// data dir, single-instance lock, config, and the service context. The lock
// is released by the updater right before a self-update replaces the process.
func initEngine() (*svc.ServiceContext, *os.File, error) {
	dataDir, err := defaults.EnsureDataDir()
	if err != nil {
		return nil, nil, fmt.Errorf("initialize data directory: %w", err)
	}

	lock, err := acquireLock(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("vibing is already running (one instance per computer): %w", err)
	}

	cfgPath := cfgFile
	if cfgPath == "" {
		if cfgPath, err = defaults.ConfigPath(); err != nil {
			releaseLock(lock)
			return nil, nil, err
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		releaseLock(lock)
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	svcCtx, err := svc.New(&cfg, AppVersion)
	if err != nil {
		releaseLock(lock)
		return nil, nil, err
	}

	updater.OnPreApply(func() {
		releaseLock(lock)
		svcCtx.DB.Close()
	})
	return svcCtx, lock, nil
}
