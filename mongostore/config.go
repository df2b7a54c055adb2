package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultTimeout = 10 * time.Second

// Config locates a collection.
type Config struct {
	URI        string        `json:"uri" mapstructure:"dsn"`
	Database   string        `json:"database" mapstructure:"database"`
	Collection string        `json:"collection" mapstructure:"collection"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
}

func (c Config) validate() error {
	if c.URI == "" {
		return errors.New("mongodb uri is required")
	} else if c.Database == "" {
		return errors.New("mongodb database is required")
	} else if c.Collection == "" {
		return errors.New("mongodb collection is required")
	}

	return nil
}

// Connect opens a client, pings the deployment and returns the configured
// collection. Close the client with Disconnect when done.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Collection, error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb connect error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err = client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongodb ping error: %w", err)
	}

	return client, client.Database(cfg.Database).Collection(cfg.Collection), nil
}
