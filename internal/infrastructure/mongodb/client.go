package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/fastygo/identity/internal/config"
)

// NewClient connects to MongoDB and verifies the primary is reachable.
func NewClient(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("identityd")
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := Ping(ctx, client, 5*time.Second); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("connected to mongodb", zap.String("db", cfg.Database))
	return client, nil
}

// Ping checks the primary within timeout.
func Ping(ctx context.Context, client *mongo.Client, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(pingCtx, readpref.Primary())
}

// Close disconnects the client and logs the result.
func Close(ctx context.Context, client *mongo.Client, logger *zap.Logger) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("mongodb client disconnected")
	}
	return nil
}

// Pinger adapts a client to the monitor's health probe.
type Pinger struct {
	Client *mongo.Client
}

func (p Pinger) Ping(ctx context.Context) error {
	if p.Client == nil {
		return mongo.ErrClientDisconnected
	}
	return p.Client.Ping(ctx, readpref.Primary())
}
