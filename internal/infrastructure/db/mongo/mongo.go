package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// defaultTimeout bounds every repository call and the startup handshake.
const defaultTimeout = 10 * time.Second

type Config struct {
	URI      string
	Database string
	AppName  string // reported to the server, shows up in its logs
	Timeout  time.Duration
}

func (c Config) clientOptions() *options.ClientOptions {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opts := options.Client().
		ApplyURI(c.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if c.AppName != "" {
		opts.SetAppName(c.AppName)
	}
	return opts
}

// Connect dials the deployment, waits for a primary to answer and returns
// the client with the application database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	opts := cfg.clientOptions()

	connectCtx, cancel := context.WithTimeout(ctx, *opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Database, err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping %s: %w", cfg.Database, err)
	}
	return client, client.Database(cfg.Database), nil
}

// Indexer is implemented by repositories that own indexes.
type Indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the indexes of every repository, stopping at the
// first failure.
func EnsureIndexes(ctx context.Context, indexers ...Indexer) error {
	for _, ix := range indexers {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes (%T): %w", ix, err)
		}
	}
	return nil
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]*T, error) {
	defer cur.Close(ctx)

	out := make([]*T, 0)
	for cur.Next(ctx) {
		v := new(T)
		if err := cur.Decode(v); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}
