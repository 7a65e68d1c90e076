// Package mongodb provides connection helpers for the document store.
package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds MongoDB connection parameters. A non-empty URI takes
// precedence over the discrete host fields.
type Config struct {
	URI            string
	Host           string
	User           string
	Password       string
	Database       string
	AuthSource     string
	Port           int
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

// ConnectionURI returns the URI used to dial the server.
func (c Config) ConnectionURI() string {
	if c.URI != "" {
		return c.URI
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/",
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
		authSource := c.AuthSource
		if authSource == "" {
			authSource = "admin"
		}
		u.RawQuery = url.Values{"authSource": []string{authSource}}.Encode()
	}
	return u.String()
}

// NewClient connects to MongoDB and verifies the primary is reachable.
func NewClient(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.ConnectionURI())
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts.SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return client, nil
}

// HealthCheck pings the primary.
func HealthCheck(ctx context.Context, client *mongo.Client) error {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb: health check: %w", err)
	}
	return nil
}
