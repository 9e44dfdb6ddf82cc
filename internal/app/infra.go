package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Alijeyrad/drivingschool_backend/config"
	"github.com/Alijeyrad/drivingschool_backend/internal/model"
	"github.com/Alijeyrad/drivingschool_backend/pkg/authorize"
	"github.com/Alijeyrad/drivingschool_backend/pkg/database"
	"github.com/Alijeyrad/drivingschool_backend/pkg/email"
	"github.com/Alijeyrad/drivingschool_backend/pkg/logs"
	"github.com/Alijeyrad/drivingschool_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/drivingschool_backend/pkg/paseto"
	"github.com/Alijeyrad/drivingschool_backend/pkg/payment"
	redispkg "github.com/Alijeyrad/drivingschool_backend/pkg/redis"
	s3pkg "github.com/Alijeyrad/drivingschool_backend/pkg/s3"
	"github.com/Alijeyrad/drivingschool_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideDatabase),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvidePasetoManager),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideBookingMetrics),
	fx.Provide(ProvideObjectStore),
	fx.Provide(ProvidePaymentProcessor),
	fx.Provide(ProvideNatsClient),
)

func ProvideLogger(cfg *config.Config) *slog.Logger {
	logger := logs.New(cfg)
	slog.SetDefault(logger)
	return logger
}

func ProvideDatabase(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	dbCfg := database.FromCentralConfig(cfg.Database)
	db, err := database.Open(dbCfg, logger)
	if err != nil {
		return nil, err
	}
	if dbCfg.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("closing main database connection")
			return database.Close(db)
		},
	})
	return db, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*redis.Client, error) {
	rdb, err := redispkg.New(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideAuthorization(cfg *config.Config, logger *slog.Logger) (authorize.IAuthorization, error) {
	base, err := authorize.NewDefault(context.Background())
	if err != nil {
		return nil, err
	}
	if cfg.Authorization.EnableAudit {
		return authorize.NewAuditedAuthorization(base, logger), nil
	}
	return base, nil
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewFromConfig(cfg)
}

func ProvideEmailClient(cfg *config.Config) (email.Sender, error) {
	return email.NewSMTP(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (sms.Sender, error) {
	return sms.NewFromConfig(cfg.SMS)
}

// ProvideObjectStore returns nil when no bucket is configured; careers
// uploads are then refused.
func ProvideObjectStore(cfg *config.Config, logger *slog.Logger) (s3pkg.ObjectStore, error) {
	cli, err := s3pkg.New(context.Background(), cfg.S3)
	if errors.Is(err, s3pkg.ErrNotConfigured) {
		logger.Warn("object storage not configured, CV uploads disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cli, nil
}

func ProvidePaymentProcessor(cfg *config.Config) (payment.Processor, error) {
	return payment.NewFromConfig(cfg.Payment)
}

// ProvideNatsClient returns nil when NATS is disabled; events are then
// delivered in-process.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*nats.Conn, error) {
	if !cfg.Nats.Enabled {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name("drivingschool"))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	logger.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideBookingMetrics depends on the telemetry provider so the instruments
// bind to the installed global meter.
func ProvideBookingMetrics(_ *observability.Provider) *observability.BookingMetrics {
	return observability.NewBookingMetrics()
}
