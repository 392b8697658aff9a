package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thebtf/flowcheck/internal/claimcache"
	"github.com/thebtf/flowcheck/internal/config"
	"github.com/thebtf/flowcheck/internal/telemetry"
	"github.com/thebtf/flowcheck/internal/watcher"
	"github.com/thebtf/flowcheck/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}
	cmd.Flags().Int("port", config.DefaultWorkerPort, "listen port")
	cmd.Flags().String("host", config.DefaultWorkerHost, "listen address")
	return cmd
}

func (a *app) serve(cmd *cobra.Command) error {
	if a.cfgFile == "" {
		if err := config.EnsureAll(); err != nil {
			return fmt.Errorf("prepare data directory: %w", err)
		}
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	normalizer, err := a.normalizer()
	if err != nil {
		return err
	}

	locker := a.locker()
	if closer, ok := locker.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	svc, err := worker.New(worker.Options{
		Version:    a.version,
		Config:     a.cfg,
		Store:      store,
		Locker:     locker,
		Metrics:    telemetry.New(),
		Normalizer: normalizer,
	})
	if err != nil {
		return err
	}
	if err := svc.Start(); err != nil {
		return err
	}

	w, err := watcher.New(a.settings, func() {
		cfg, err := a.reload(cmd)
		if err != nil {
			log.Warn().Err(err).Str("path", a.settings).Msg("Settings changed but are invalid, keeping current")
			return
		}
		config.Set(cfg)
		svc.ApplyConfig(cfg)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create settings watcher")
	} else if err := w.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start settings watcher")
	} else {
		defer w.Stop()
		log.Info().Str("path", a.settings).Msg("Settings watcher started")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return svc.Shutdown(shutdownCtx)
}

// locker returns the Redis lock when configured and reachable, and the
// in-process lock otherwise.
func (a *app) locker() claimcache.Locker {
	if a.cfg.RedisURL == "" {
		return claimcache.NewLocalLocker()
	}

	rl := claimcache.NewRedisLocker(a.cfg.RedisURL, a.cfg.LockTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rl.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process claim lock")
		_ = rl.Close()
		return claimcache.NewLocalLocker()
	}
	log.Info().Msg("Using Redis claim lock")
	return rl
}
