package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ynt-app/youtube-no-translation/internal/config"
	"github.com/ynt-app/youtube-no-translation/internal/control"
	"github.com/ynt-app/youtube-no-translation/internal/orchestrator"
	"github.com/ynt-app/youtube-no-translation/internal/page"
	"github.com/ynt-app/youtube-no-translation/internal/settings"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

// controlServer is the slice of control.Server main drives.
type controlServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	log.InitLogger(log.ParseLevel(cfg.System.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	realm, sources, err := bind(ctx)
	if err != nil {
		log.Fatal("Failed to attach to a page: %v", err)
	}

	if err := run(ctx, cfg, realm, sources); err != nil {
		log.Fatal("Engine stopped: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, realm page.Realm, sources []page.NavigationSource) error {
	if err := os.MkdirAll(cfg.System.DataDir, 0o755); err != nil {
		return err
	}
	store, err := settings.NewStore(cfg.DBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	core := orchestrator.NewCore(realm, store, orchestrator.Config{
		InnerTubeURL:   cfg.InnerTube.APIURL,
		HTTPTimeout:    cfg.HTTPTimeout(),
		BridgeTimeout:  cfg.BridgeTimeout(),
		CacheSweepSpec: cfg.Engine.CacheSweepCron,
	})
	if err := core.Start(ctx, sources...); err != nil {
		return err
	}
	defer core.Stop()

	var srv controlServer
	if cfg.Control.Enabled {
		srv = control.NewServer(store, core, core.Journal(), control.WithCache(core.Cache()))
	}
	return runWithServer(ctx, cfg, srv)
}

// runWithServer serves the control API until the context ends, then shuts
// it down. A nil server just blocks on the context.
func runWithServer(ctx context.Context, cfg *config.Config, srv controlServer) error {
	if srv == nil {
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("control API listening on %s", cfg.Control.Addr)
		errCh <- srv.ListenAndServe(cfg.Control.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
