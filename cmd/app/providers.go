package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/smart-energy/internal/domain/billing"
	"github.com/yanqian/smart-energy/internal/domain/insight"
	"github.com/yanqian/smart-energy/internal/domain/notification"
	"github.com/yanqian/smart-energy/internal/domain/tariff"
	"github.com/yanqian/smart-energy/internal/domain/usage"
	"github.com/yanqian/smart-energy/internal/infra/config"
	"github.com/yanqian/smart-energy/internal/infra/notifystore"
	"github.com/yanqian/smart-energy/internal/infra/push"
	"github.com/yanqian/smart-energy/internal/infra/scheduler"
	"github.com/yanqian/smart-energy/internal/infra/statementstore"
)

func provideLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.LoadLocation()
}

func provideTariffTable(cfg *config.Config) (*tariff.Table, error) {
	return tariff.NewDefaultTable(tariff.Config{
		PeakRate:    cfg.Tariff.PeakRate,
		NormalRate:  cfg.Tariff.NormalRate,
		OffPeakRate: cfg.Tariff.OffPeakRate,
	})
}

func provideUsageConfig(cfg *config.Config, loc *time.Location) usage.Config {
	return usage.Config{
		Seed:     cfg.Simulation.Seed,
		Location: loc,
	}
}

func provideBillingConfig(cfg *config.Config, loc *time.Location) billing.Config {
	return billing.Config{
		Charges: billing.Charges{
			FixedCharge: cfg.Billing.FixedCharge,
			MeterRent:   cfg.Billing.MeterRent,
			DutyRate:    cfg.Billing.DutyRate,
		},
		HistoryMonths: cfg.Billing.HistoryMonths,
		Seed:          cfg.Simulation.Seed,
		Location:      loc,
	}
}

func provideInsightConfig(cfg *config.Config) insight.Config {
	out := insight.DefaultConfig()
	out.LaundryKWhPerMonth = cfg.Insights.LaundryKWhPerMonth
	out.ACSavings = cfg.Insights.ACSavings
	return out
}

func provideNotificationConfig(cfg *config.Config, loc *time.Location) notification.Config {
	return notification.Config{
		DailyUsageKWh: cfg.Thresholds.DailyUsageKWh,
		PeakUsageKW:   cfg.Thresholds.PeakUsageKW,
		MonthlyBudget: cfg.Thresholds.MonthlyBudget,
		TipSeed:       cfg.Simulation.Seed,
		Location:      loc,
	}
}

func provideInsightService(cfg insight.Config, table *tariff.Table, bills billing.Service, readings usage.Service, loc *time.Location, logger *slog.Logger) insight.Service {
	return insight.NewService(cfg, table, bills, readings, loc, logger)
}

func provideNotificationService(cfg notification.Config, table *tariff.Table, store notification.Store, publisher notification.Publisher, readings usage.Service, bills billing.Service, logger *slog.Logger) (notification.Service, error) {
	return notification.NewService(cfg, table, store, publisher, readings, bills, logger)
}

// provideNotificationStore opens the configured history backend. Any failure
// to reach a remote backend falls back to the in-memory store so the API
// keeps serving.
func provideNotificationStore(cfg *config.Config, logger *slog.Logger) (notification.Store, func()) {
	limit := cfg.Notifications.HistoryLimit
	fallback := func() (notification.Store, func()) {
		return notifystore.NewMemoryStore(limit), func() {}
	}

	switch cfg.Notifications.Store {
	case config.StoreSQLite:
		store, err := notifystore.OpenSQLite(cfg.Notifications.SQLitePath, limit)
		if err != nil {
			logger.Error("failed to open sqlite notification store, using memory store", "error", err)
			return fallback()
		}
		logger.Info("sqlite notification store enabled", "path", cfg.Notifications.SQLitePath)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing sqlite notification store", "error", err)
			}
		}
	case config.StoreValkey:
		opt, err := buildValkeyOptions(cfg.Notifications.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, using memory store", "error", err)
			return fallback()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, using memory store", "error", err)
			return fallback()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, using memory store", "error", err)
			client.Close()
			return fallback()
		}
		logger.Info("valkey notification store enabled", "addr", cfg.Notifications.Valkey.Addr)
		return notifystore.NewValkeyStore(client, cfg.Notifications.Valkey.Prefix, limit), client.Close
	case config.StorePostgres:
		pool, err := newPostgresPool(cfg.Notifications.Postgres, logger)
		if err != nil {
			return fallback()
		}
		store := notifystore.NewPostgresStore(pool, limit)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("failed to create notifications table, using memory store", "error", err)
			pool.Close()
			return fallback()
		}
		logger.Info("postgres notification store enabled")
		return store, pool.Close
	default:
		return fallback()
	}
}

func newPostgresPool(cfg config.PostgresConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		logger.Error("invalid postgres dsn, using memory store", "error", err)
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory store", "error", err)
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory store", "error", err)
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// providePublisher pushes over MQTT when enabled and reachable, and
// otherwise only logs deliveries.
func providePublisher(cfg *config.Config, logger *slog.Logger) (notification.Publisher, func()) {
	if !cfg.MQTT.Enabled {
		return push.NewLogPublisher(logger), func() {}
	}
	publisher, err := push.NewMQTTPublisher(push.Config{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		Username:    cfg.MQTT.Username,
		Password:    cfg.MQTT.Password,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		QoS:         cfg.MQTT.QoS,
	}, logger)
	if err != nil {
		logger.Error("mqtt unavailable, notifications will be logged only", "error", err)
		return push.NewLogPublisher(logger), func() {}
	}
	logger.Info("mqtt push enabled", "broker", cfg.MQTT.Broker)
	return publisher, publisher.Close
}

func provideStatementStore(cfg *config.Config, logger *slog.Logger) billing.StatementStore {
	if !cfg.Statements.Enabled {
		logger.Info("statement storage not configured, using memory store")
		return statementstore.NewMemoryStore()
	}
	store, err := statementstore.NewS3Store(statementstore.S3Options{
		Endpoint:  cfg.Statements.Endpoint,
		AccessKey: cfg.Statements.AccessKey,
		SecretKey: cfg.Statements.SecretKey,
		Bucket:    cfg.Statements.Bucket,
		Region:    cfg.Statements.Region,
	}, logger)
	if err != nil {
		logger.Error("failed to init statement storage, using memory store", "error", err)
		return statementstore.NewMemoryStore()
	}
	logger.Info("s3 statement storage enabled", "bucket", cfg.Statements.Bucket)
	return store
}

func provideScheduler(cfg *config.Config, svc notification.Service, loc *time.Location, logger *slog.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(scheduler.Config{
		Reminders:     cfg.Notifications.Reminders,
		Thresholds:    cfg.Notifications.ThresholdSpec != "",
		ThresholdSpec: cfg.Notifications.ThresholdSpec,
		Location:      loc,
	}, svc, logger)
}
