package clickhouse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/config"
	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Client wraps the ClickHouse connection
type Client struct {
	connection driver.Conn
	database   string
	log        *zap.Logger
}

// NewClient connects to ClickHouse using the primary connection string.
// DB_NAME, when set, overrides the database named in the DSN.
func NewClient(ctx context.Context, storage *config.Storage, pool *config.ClickHouse, log *zap.Logger) (*Client, error) {
	options, err := clickhouse.ParseDSN(storage.PrimaryDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse ClickHouse DSN: %w", err)
	}

	if storage.Database != "" {
		options.Auth.Database = storage.Database
	}
	if options.Settings == nil {
		options.Settings = clickhouse.Settings{}
	}
	options.Settings["max_execution_time"] = 60
	options.DialTimeout = time.Duration(storage.PrimaryTimeoutSec) * time.Second
	options.MaxOpenConns = pool.MaxOpenConns
	options.MaxIdleConns = pool.MaxIdleConns
	options.ConnMaxLifetime = time.Duration(pool.ConnMaxLifetimeSec) * time.Second
	options.ConnOpenStrategy = clickhouse.ConnOpenInOrder

	log.Info("Connecting to ClickHouse",
		zap.Strings("addr", options.Addr),
		zap.String("database", options.Auth.Database),
		zap.Bool("useTLS", options.TLS != nil))

	connection, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := connection.Ping(ctx); err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Info("ClickHouse connection established")

	return &Client{connection: connection, database: options.Auth.Database, log: log}, nil
}

// Conn returns the underlying ClickHouse connection
func (c *Client) Conn() driver.Conn {
	return c.connection
}

// Database returns the database the connection is bound to
func (c *Client) Database() string {
	return c.database
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	c.log.Info("Closing ClickHouse connection")
	if err := c.connection.Close(); err != nil {
		c.log.Error("Error closing ClickHouse connection", zap.Error(err))
		return err
	}
	return nil
}
