package daemon

import (
	"context"
	"fmt"

	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/instance"
	"github.com/matheus3301/wppclone/internal/lock"
	"github.com/matheus3301/wppclone/internal/logging"
	"github.com/matheus3301/wppclone/internal/presence"
	"github.com/matheus3301/wppclone/internal/status"
	"github.com/matheus3301/wppclone/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved instance configuration passed to the fx module.
type Params struct {
	InstanceName string
	ListenAddr   string // optional override of listen_addr; empty = use config
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			status.NewMachine,
			provideTracker,
			provideLock,
			provideSnapshotter,
			provideChatService,
			provideSweeper,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	cfg, err := config.Resolve(instance.ConfigPath())
	if err != nil {
		return nil, err
	}
	if p.ListenAddr != "" {
		cfg.ListenAddr = p.ListenAddr
	}
	return cfg, nil
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(instance.LogPath(p.InstanceName), p.InstanceName, cfg.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideTracker(cfg *config.Config) *presence.Tracker {
	return presence.NewTracker(cfg.Presence.TTL.Duration)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := instance.EnsureDir(p.InstanceName); err != nil {
		return nil, err
	}
	logger.Info("acquiring instance lock", zap.String("instance", p.InstanceName))
	l, err := lock.Acquire(instance.Dir(p.InstanceName))
	if err != nil {
		return nil, err
	}
	logger.Info("instance lock acquired")
	return l, nil
}

// provideSnapshotter opens the configured backend. It depends on the lock so
// no backend is touched before this process owns the instance.
func provideSnapshotter(p Params, cfg *config.Config, _ *lock.Lock, logger *zap.Logger) (store.Snapshotter, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		dbPath := instance.SQLitePath(p.InstanceName)
		db, result, err := store.OpenSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		if result.Changed {
			logger.Info("migrations applied", zap.Uint("from", result.From), zap.Uint("version", result.Version))
		} else {
			logger.Info("migrations up to date", zap.Uint("version", result.Version))
		}
		logger.Info("store initialized", zap.String("backend", "sqlite"), zap.String("path", dbPath))
		return db, nil

	case config.BackendRedis:
		key := cfg.Storage.RedisKey
		if key == "" {
			key = store.DefaultRedisKey
		}
		rs, err := store.NewRedisStore(context.Background(), cfg.Storage.RedisURL, key)
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", zap.String("backend", "redis"), zap.String("key", key))
		return rs, nil

	case config.BackendFile, "":
		fs, err := store.OpenFile(instance.DataPath(p.InstanceName))
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", zap.String("backend", "file"), zap.String("path", fs.Path()))
		return fs, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func provideChatService(snap store.Snapshotter, tracker *presence.Tracker, b *bus.Bus, logger *zap.Logger) (*chat.Service, error) {
	return chat.NewService(context.Background(), snap, tracker, b, logger)
}

func provideSweeper(svc *chat.Service, cfg *config.Config, logger *zap.Logger) *presence.Sweeper {
	return presence.NewSweeper(svc, cfg.Presence.SweepInterval.Duration, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, sweeper *presence.Sweeper, snap store.Snapshotter, lk *lock.Lock, machine *status.Machine, logger *zap.Logger) {
	transition := func(to status.State) {
		if err := machine.Transition(to); err != nil {
			logger.Warn("state transition rejected", zap.Error(err))
			return
		}
		logger.Info("daemon state changed", zap.String("state", string(to)))
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Start HTTP server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
					transition(status.Error)
				}
			}()

			// Start presence sweeper.
			sweeper.Start(context.Background())
			transition(status.Serving)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			transition(status.Draining)
			sweeper.Stop()
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("http server shutdown", zap.Error(err))
			}
			if err := snap.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			transition(status.Stopped)
			logger.Info("daemon stopped")
			return nil
		},
	})
}
