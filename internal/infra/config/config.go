package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP          HTTPConfig         `yaml:"http"`
	Tariff        TariffConfig       `yaml:"tariff"`
	Billing       BillingConfig      `yaml:"billing"`
	Simulation    SimulationConfig   `yaml:"simulation"`
	Thresholds    ThresholdConfig    `yaml:"thresholds"`
	Insights      InsightConfig      `yaml:"insights"`
	Notifications NotificationConfig `yaml:"notifications"`
	MQTT          MQTTConfig         `yaml:"mqtt"`
	Statements    StatementConfig    `yaml:"statements"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures retries of transient 5xx responses on POST routes.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// TariffConfig holds the per-band prices in currency per kWh.
type TariffConfig struct {
	PeakRate    decimal.Decimal `yaml:"peakRate"`
	NormalRate  decimal.Decimal `yaml:"normalRate"`
	OffPeakRate decimal.Decimal `yaml:"offPeakRate"`
}

// BillingConfig holds the charges added to the energy cost.
type BillingConfig struct {
	FixedCharge   decimal.Decimal `yaml:"fixedCharge"`
	MeterRent     decimal.Decimal `yaml:"meterRent"`
	DutyRate      decimal.Decimal `yaml:"dutyRate"`
	HistoryMonths int             `yaml:"historyMonths"`
}

// SimulationConfig seeds the synthetic meter.
type SimulationConfig struct {
	Seed     uint64 `yaml:"seed"`
	Location string `yaml:"location"`
}

// ThresholdConfig drives the hourly alert checks. Zero disables a check.
type ThresholdConfig struct {
	DailyUsageKWh decimal.Decimal `yaml:"dailyUsageKwh"`
	PeakUsageKW   decimal.Decimal `yaml:"peakUsageKw"`
	MonthlyBudget decimal.Decimal `yaml:"monthlyBudget"`
}

// InsightConfig tunes the recommendation figures.
type InsightConfig struct {
	LaundryKWhPerMonth decimal.Decimal `yaml:"laundryKwhPerMonth"`
	ACSavings          decimal.Decimal `yaml:"acSavings"`
}

// NotificationConfig selects the history backend and scheduled jobs.
type NotificationConfig struct {
	HistoryLimit  int            `yaml:"historyLimit"`
	Store         string         `yaml:"store"`
	SQLitePath    string         `yaml:"sqlitePath"`
	Valkey        ValkeyConfig   `yaml:"valkey"`
	Postgres      PostgresConfig `yaml:"postgres"`
	Reminders     bool           `yaml:"reminders"`
	ThresholdSpec string         `yaml:"thresholdSpec"`
}

// ValkeyConfig contains connection information for the Valkey list store.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// MQTTConfig configures push delivery.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"clientId"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topicPrefix"`
	QoS         byte   `yaml:"qos"`
}

// StatementConfig configures S3-compatible statement storage.
type StatementConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreValkey   = "valkey"
	StorePostgres = "postgres"
)

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_PATH"))
}

// LoadFrom is Load with an explicit file path. An empty path falls back to
// configs/config.yaml when it exists.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func envBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func envDecimal(key string, dst *decimal.Decimal) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := decimal.NewFromString(v); err == nil {
			*dst = parsed
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = envBool(v)
	}
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = envBool(v)
	}
	envInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}

	envDecimal("TARIFF_PEAK_RATE", &cfg.Tariff.PeakRate)
	envDecimal("TARIFF_NORMAL_RATE", &cfg.Tariff.NormalRate)
	envDecimal("TARIFF_OFFPEAK_RATE", &cfg.Tariff.OffPeakRate)
	envDecimal("BILLING_FIXED_CHARGE", &cfg.Billing.FixedCharge)
	envDecimal("BILLING_METER_RENT", &cfg.Billing.MeterRent)
	envDecimal("BILLING_DUTY_RATE", &cfg.Billing.DutyRate)
	envInt("BILLING_HISTORY_MONTHS", &cfg.Billing.HistoryMonths)

	if v := os.Getenv("SIMULATION_SEED"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Simulation.Seed = parsed
		}
	}
	if v := os.Getenv("SIMULATION_LOCATION"); v != "" {
		cfg.Simulation.Location = v
	}

	envDecimal("THRESHOLD_DAILY_KWH", &cfg.Thresholds.DailyUsageKWh)
	envDecimal("THRESHOLD_PEAK_KW", &cfg.Thresholds.PeakUsageKW)
	envDecimal("THRESHOLD_MONTHLY_BUDGET", &cfg.Thresholds.MonthlyBudget)

	envInt("NOTIFICATIONS_HISTORY_LIMIT", &cfg.Notifications.HistoryLimit)
	if v := os.Getenv("NOTIFICATIONS_STORE"); v != "" {
		cfg.Notifications.Store = strings.ToLower(v)
	}
	if v := os.Getenv("NOTIFICATIONS_SQLITE_PATH"); v != "" {
		cfg.Notifications.SQLitePath = v
	}
	if v := os.Getenv("NOTIFICATIONS_VALKEY_ADDR"); v != "" {
		cfg.Notifications.Valkey.Addr = v
	}
	if v := os.Getenv("NOTIFICATIONS_POSTGRES_DSN"); v != "" {
		cfg.Notifications.Postgres.DSN = v
	}
	if v := os.Getenv("NOTIFICATIONS_REMINDERS"); v != "" {
		cfg.Notifications.Reminders = envBool(v)
	}

	if v := os.Getenv("MQTT_ENABLED"); v != "" {
		cfg.MQTT.Enabled = envBool(v)
	}
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	if v := os.Getenv("STATEMENTS_ENABLED"); v != "" {
		cfg.Statements.Enabled = envBool(v)
	}
	if v := os.Getenv("STATEMENTS_ENDPOINT"); v != "" {
		cfg.Statements.Endpoint = v
	}
	if v := os.Getenv("STATEMENTS_ACCESS_KEY"); v != "" {
		cfg.Statements.AccessKey = v
	}
	if v := os.Getenv("STATEMENTS_SECRET_KEY"); v != "" {
		cfg.Statements.SecretKey = v
	}
	if v := os.Getenv("STATEMENTS_BUCKET"); v != "" {
		cfg.Statements.Bucket = v
	}
	if v := os.Getenv("STATEMENTS_REGION"); v != "" {
		cfg.Statements.Region = v
	}
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8081"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/notifications/usage-alert",
					"/api/v1/notifications/bill-prediction",
				},
			},
		},
		Tariff: TariffConfig{
			PeakRate:    decimal.NewFromInt(9),
			NormalRate:  decimal.RequireFromString("5.5"),
			OffPeakRate: decimal.RequireFromString("3.5"),
		},
		Billing: BillingConfig{
			FixedCharge:   decimal.NewFromInt(150),
			MeterRent:     decimal.NewFromInt(25),
			DutyRate:      decimal.RequireFromString("0.06"),
			HistoryMonths: 6,
		},
		Simulation: SimulationConfig{
			Seed:     20240601,
			Location: "Asia/Kolkata",
		},
		Thresholds: ThresholdConfig{
			DailyUsageKWh: decimal.NewFromInt(75),
			PeakUsageKW:   decimal.RequireFromString("4.2"),
			MonthlyBudget: decimal.NewFromInt(5000),
		},
		Insights: InsightConfig{
			LaundryKWhPerMonth: decimal.NewFromInt(8),
			ACSavings:          decimal.NewFromInt(180),
		},
		Notifications: NotificationConfig{
			HistoryLimit:  50,
			Store:         StoreMemory,
			SQLitePath:    "data/notifications.db",
			Valkey:        ValkeyConfig{Prefix: "energy"},
			Postgres:      PostgresConfig{MaxConns: 4},
			Reminders:     true,
			ThresholdSpec: "0 * * * *",
		},
		MQTT: MQTTConfig{
			ClientID:    "smart-energy",
			TopicPrefix: "smart_energy",
			QoS:         1,
		},
		Statements: StatementConfig{
			Bucket: "energy-statements",
			Region: "auto",
		},
	}
}

// LoadLocation resolves the simulation time zone.
func (c *Config) LoadLocation() (*time.Location, error) {
	if strings.TrimSpace(c.Simulation.Location) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Simulation.Location)
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if !c.Tariff.PeakRate.IsPositive() || !c.Tariff.NormalRate.IsPositive() || !c.Tariff.OffPeakRate.IsPositive() {
		return errors.New("tariff rates must be positive")
	}
	if c.Billing.FixedCharge.IsNegative() || c.Billing.MeterRent.IsNegative() || c.Billing.DutyRate.IsNegative() {
		return errors.New("billing charges cannot be negative")
	}
	if c.Billing.HistoryMonths <= 0 {
		return errors.New("billing.historyMonths must be positive")
	}
	if _, err := c.LoadLocation(); err != nil {
		return fmt.Errorf("simulation.location: %w", err)
	}
	if c.Thresholds.DailyUsageKWh.IsNegative() || c.Thresholds.PeakUsageKW.IsNegative() || c.Thresholds.MonthlyBudget.IsNegative() {
		return errors.New("thresholds cannot be negative")
	}
	if c.Insights.LaundryKWhPerMonth.IsNegative() || c.Insights.ACSavings.IsNegative() {
		return errors.New("insights figures cannot be negative")
	}
	if c.Notifications.HistoryLimit <= 0 {
		return errors.New("notifications.historyLimit must be positive")
	}
	switch c.Notifications.Store {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Notifications.SQLitePath) == "" {
			return errors.New("notifications.sqlitePath cannot be empty for the sqlite store")
		}
	case StoreValkey:
		if strings.TrimSpace(c.Notifications.Valkey.Addr) == "" {
			return errors.New("notifications.valkey.addr cannot be empty for the valkey store")
		}
	case StorePostgres:
		if strings.TrimSpace(c.Notifications.Postgres.DSN) == "" {
			return errors.New("notifications.postgres.dsn cannot be empty for the postgres store")
		}
	default:
		return fmt.Errorf("notifications.store %q is not one of memory, sqlite, valkey, postgres", c.Notifications.Store)
	}
	if c.Notifications.ThresholdSpec != "" {
		if _, err := cron.ParseStandard(c.Notifications.ThresholdSpec); err != nil {
			return fmt.Errorf("notifications.thresholdSpec: %w", err)
		}
	}
	if c.MQTT.Enabled && strings.TrimSpace(c.MQTT.Broker) == "" {
		return errors.New("mqtt.broker cannot be empty when mqtt is enabled")
	}
	if c.MQTT.QoS > 2 {
		return errors.New("mqtt.qos must be 0, 1 or 2")
	}
	if c.Statements.Enabled {
		if strings.TrimSpace(c.Statements.Endpoint) == "" || strings.TrimSpace(c.Statements.Bucket) == "" {
			return errors.New("statements.endpoint and statements.bucket are required when statements are enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
