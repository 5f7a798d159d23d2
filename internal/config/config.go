package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverClickHouse = "clickhouse"
	DriverPostgres   = "postgres"

	ProviderTwilio = "twilio"
	ProviderSNS    = "sns"
)

type Config struct {
	Service      Service
	Storage      Storage
	ClickHouse   ClickHouse
	Notification Notification
	Twilio       Twilio
	SNS          SNS
	Backfill     Backfill
}

type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" default:"development"`
	Port        string `envconfig:"PORT" default:"5000"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:5000"`
	Timezone    string `envconfig:"TIMEZONE" default:"Asia/Kolkata"`
}

type Storage struct {
	FallbackFile      string `envconfig:"FALLBACK_FILE" default:"fall_events.csv"`
	PrimaryDriver     string `envconfig:"PRIMARY_DRIVER" default:"clickhouse"`
	PrimaryURI        string `envconfig:"PRIMARY_URI"`
	MongoURI          string `envconfig:"MONGO_URI"`
	Database          string `envconfig:"DB_NAME"`
	Collection        string `envconfig:"COLLECTION_NAME" default:"fall_events"`
	PrimaryTimeoutSec int    `envconfig:"PRIMARY_TIMEOUT_SEC" default:"5"`
}

type ClickHouse struct {
	MaxOpenConns       int `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns       int `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetimeSec int `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

type Notification struct {
	Provider   string `envconfig:"NOTIFICATION_PROVIDER" default:"twilio"`
	Recipient  string `envconfig:"EMERGENCY_CONTACT"`
	TimeoutSec int    `envconfig:"NOTIFICATION_TIMEOUT_SEC" default:"10"`
}

type Twilio struct {
	AccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	FromNumber string `envconfig:"TWILIO_FROM_NUMBER"`
}

type SNS struct {
	Region   string `envconfig:"SNS_REGION" default:"us-east-1"`
	Endpoint string `envconfig:"SNS_ENDPOINT"`
	SenderID string `envconfig:"SNS_SENDER_ID"`
}

type Backfill struct {
	BatchSize       int `envconfig:"BACKFILL_BATCH_SIZE" default:"500"`
	FlushTimeoutSec int `envconfig:"BACKFILL_FLUSH_TIMEOUT_SEC" default:"2"`
}

// PrimaryDSN returns the primary store connection string, empty when the primary is disabled
func (s Storage) PrimaryDSN() string {
	if s.PrimaryURI != "" {
		return s.PrimaryURI
	}
	return s.MongoURI
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings that cannot be degraded gracefully at runtime
func (c *Config) Validate() error {
	switch c.Storage.PrimaryDriver {
	case DriverClickHouse, DriverPostgres:
	default:
		return fmt.Errorf("unsupported primary driver: %s (supported: clickhouse, postgres)", c.Storage.PrimaryDriver)
	}

	switch c.Notification.Provider {
	case ProviderTwilio, ProviderSNS:
	default:
		return fmt.Errorf("unsupported notification provider: %s (supported: twilio, sns)", c.Notification.Provider)
	}

	if c.Storage.FallbackFile == "" {
		return fmt.Errorf("fallback file path cannot be empty")
	}
	if c.Storage.PrimaryTimeoutSec <= 0 {
		return fmt.Errorf("primary timeout must be positive, got %d", c.Storage.PrimaryTimeoutSec)
	}
	if c.Notification.TimeoutSec <= 0 {
		return fmt.Errorf("notification timeout must be positive, got %d", c.Notification.TimeoutSec)
	}

	return nil
}
