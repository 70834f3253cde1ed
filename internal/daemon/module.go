package daemon

import (
	"context"
	"path/filepath"

	"github.com/matheus3301/huddle/internal/api"
	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/lock"
	"github.com/matheus3301/huddle/internal/logging"
	"github.com/matheus3301/huddle/internal/metrics"
	"github.com/matheus3301/huddle/internal/platform"
	"github.com/matheus3301/huddle/internal/store"
	"github.com/matheus3301/huddle/internal/web"
	"github.com/matheus3301/huddle/internal/workspace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved workspace configuration passed to the fx module.
type Params struct {
	Workspace  string
	SocketPath string // optional override for testing; empty = use default
	// HTTPAddr is the gateway listen address. Empty disables the gateway.
	HTTPAddr string
	LogLevel string
	// BaseDir overrides the workspace directory for tests; empty = use default.
	BaseDir string
}

// socketPath and the paths after it resolve under BaseDir when it is set,
// else under the workspace directory.
func (p Params) socketPath() string {
	switch {
	case p.SocketPath != "":
		return p.SocketPath
	case p.BaseDir != "":
		return filepath.Join(p.BaseDir, "daemon.sock")
	}
	return workspace.SocketPath(p.Workspace)
}

func (p Params) lockPath() string {
	if p.BaseDir != "" {
		return filepath.Join(p.BaseDir, "LOCK")
	}
	return workspace.LockPath(p.Workspace)
}

func (p Params) dbPath() string {
	if p.BaseDir != "" {
		return filepath.Join(p.BaseDir, "huddle.db")
	}
	return workspace.DBPath(p.Workspace)
}

func (p Params) logPath() string {
	if p.BaseDir != "" {
		return filepath.Join(p.BaseDir, "logs", "huddled.log")
	}
	return workspace.LogPath(p.Workspace)
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			providePlatform,
			provideWorkspaceService,
			api.NewConversationService,
			api.NewMessageService,
			api.NewProfileService,
			provideGateway,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(p.logPath(), p.Workspace, p.LogLevel)
}

func provideBus(logger *zap.Logger) *bus.Bus {
	return bus.New(bus.WithDropHook(func(evt bus.Event) {
		metrics.IncBusDropped(evt.Kind)
		logger.Warn("bus subscriber full, event dropped", zap.String("kind", evt.Kind), zap.String("topic", evt.Topic))
	}))
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if p.BaseDir == "" {
		if err := workspace.EnsureDir(p.Workspace); err != nil {
			return nil, err
		}
	}
	l, err := lock.Acquire(p.lockPath(), p.socketPath())
	if err != nil {
		return nil, err
	}
	logger.Info("workspace lock acquired", zap.String("path", p.lockPath()))
	return l, nil
}

// provideStore depends on the lock so the database is never opened by two daemons.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := p.dbPath()
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func providePlatform(db *store.DB, b *bus.Bus, logger *zap.Logger) *platform.Service {
	return platform.New(db, b, logger.Named("platform"))
}

func provideWorkspaceService(p Params, svc *platform.Service, b *bus.Bus) *api.WorkspaceService {
	return api.NewWorkspaceService(p.Workspace, svc, b)
}

func provideGateway(p Params, svc *platform.Service, b *bus.Bus, logger *zap.Logger) *web.Gateway {
	if p.HTTPAddr == "" {
		return nil
	}
	return web.NewGateway(p.HTTPAddr, svc, b, logger.Named("web"))
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, gw *web.Gateway, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if gw != nil {
				if err := gw.Start(); err != nil {
					return err
				}
			}

			// Start gRPC server in background.
			go func() {
				if err := srv.Serve(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if gw != nil {
				if err := gw.Stop(ctx); err != nil {
					logger.Warn("error stopping HTTP gateway", zap.Error(err))
				}
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
