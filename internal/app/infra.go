package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/udelar-dtx/dtx_backend/config"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/pkg/authorize"
	"github.com/udelar-dtx/dtx_backend/pkg/database"
	"github.com/udelar-dtx/dtx_backend/pkg/email"
	"github.com/udelar-dtx/dtx_backend/pkg/observability"
	redispkg "github.com/udelar-dtx/dtx_backend/pkg/redis"
	s3pkg "github.com/udelar-dtx/dtx_backend/pkg/s3"
	"github.com/udelar-dtx/dtx_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideObjectStore),
	fx.Provide(ProvideNatsClient),
)

// ProvideStore opens the trial database. One *store.Store serves both the
// patient and the daily record interfaces.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config) (*store.Store, store.Patients, store.Records, error) {
	drv, err := database.NewEntDriver(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	db := store.New(drv)

	if cfg.Database.Migrations.AutoMigrate {
		if err := db.Migrate(context.Background()); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		slog.Info("database schema migrated")
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return db.Close()
		},
	})
	return db, db, db, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	dsn := database.NewDSN(cfg.CasbinDatabase)
	enforcer, cleanup, err := authorize.NewEnforcer(authorize.FromCentralConfig(cfg.Authorization), dsn)
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	if cfg.Authorization.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return auth, nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

// ProvideObjectStore returns nil when no bucket is configured. Publishing an
// export then answers 503 while the direct download keeps working.
func ProvideObjectStore(cfg *config.Config) (s3pkg.ObjectStore, error) {
	if cfg.S3.Bucket == "" {
		slog.Info("s3 bucket not configured, export publishing disabled")
		return nil, nil
	}
	cli, err := s3pkg.New(cfg.S3)
	if err != nil {
		return nil, err
	}
	return cli, nil
}

func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name("dtx"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(),
		observability.FromCentralConfig(cfg.Observability, cfg.Server.Environment))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
