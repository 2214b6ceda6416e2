package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/grouplog/internal/config"
	"github.com/aretw0/grouplog/internal/metrics"
	httpAdapter "github.com/aretw0/grouplog/pkg/adapters/http"
	"github.com/aretw0/grouplog/pkg/adapters/line"
	"github.com/aretw0/grouplog/pkg/adapters/memory"
	"github.com/aretw0/grouplog/pkg/adapters/mongo"
	"github.com/aretw0/grouplog/pkg/adapters/postgres"
	"github.com/aretw0/grouplog/pkg/adapters/redis"
	"github.com/aretw0/grouplog/pkg/dispatch"
	"github.com/aretw0/grouplog/pkg/persistence/middleware"
	"github.com/aretw0/grouplog/pkg/ports"
	"github.com/aretw0/grouplog/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
)

// App holds the wired components of a running bot.
type App struct {
	Store      ports.Store
	Dispatcher *dispatch.Dispatcher
	Handler    http.Handler
	Registry   *prometheus.Registry

	closers []func(context.Context) error
}

// Close releases backend connections in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewApp builds the store, dispatcher and HTTP handler described by cfg.
// The messenger is injected so callers can replace the LINE client.
func NewApp(ctx context.Context, cfg config.Config, messenger ports.Messenger, logger *slog.Logger) (*App, error) {
	cfg.Normalize()
	app := &App{Registry: prometheus.NewRegistry()}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(app.Registry)

	base, err := app.openStore(ctx, cfg, logger)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	var client *backend.Client
	if cfg.UsesRedis() {
		client = redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		app.closers = append(app.closers, func(context.Context) error { return client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			_ = app.Close(ctx)
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
	}

	mws := []middleware.Middleware{middleware.NewInstrumentMiddleware(m)}

	key, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	if key != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key, FallbackKeys: fallback})
		if err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
		mws = append(mws, enc)
		logger.Info("Record encryption enabled", "fallback_keys", len(fallback))
	}

	if cfg.FlowDriver() == config.DriverRedis {
		mws = append(mws, middleware.WithFlowStore(redis.NewFlowStore(client, redis.WithPrefix(cfg.Redis.Prefix))))
		logger.Info("Flow state stored in redis", "addr", cfg.Redis.Addr)
	}

	app.Store = middleware.Chain(base, mws...)

	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(m),
	}
	locks, err := newLocks(cfg, client, logger)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	if locks != nil {
		opts = append(opts, dispatch.WithLocks(locks))
	}
	app.Dispatcher = dispatch.NewDispatcher(app.Store, messenger, opts...)

	parser := line.NewParser(cfg.Line.ChannelSecret, line.WithParserLogger(logger))
	app.Handler = httpAdapter.NewHandler(parser, app.Dispatcher,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithGatherer(app.Registry),
	)
	return app, nil
}

func (a *App) openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory store; state is lost on restart")
		return memory.NewStore(), nil

	case config.DriverMongo:
		store, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		logger.Info("Connected to mongodb", "database", cfg.Mongo.Database)
		return store, nil

	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error {
			store.Close()
			return nil
		})
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		logger.Info("Connected to postgres")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newLocks returns nil when dispatch is left unserialized.
func newLocks(cfg config.Config, client *backend.Client, logger *slog.Logger) (*session.Manager, error) {
	switch strings.ToLower(cfg.Lock.Mode) {
	case config.LockLocal:
		return session.NewManager(session.WithTTL(cfg.Lock.TTL), session.WithLogger(logger)), nil
	case config.LockRedis:
		if client == nil {
			return nil, errors.New("redis lock mode requires a redis client")
		}
		return session.NewManager(
			session.WithTTL(cfg.Lock.TTL),
			session.WithLogger(logger),
			session.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)),
		), nil
	default:
		return nil, nil
	}
}
