package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultBootstrapTimeout = 30 * time.Second

type settings struct {
	indexes          []mongo.IndexModel
	logger           *zap.Logger
	bootstrapTimeout time.Duration
}

// Option customises a store at construction.
type Option func(*settings)

// WithIndexes adds auxiliary indices created alongside the natural-key index.
func WithIndexes(models ...mongo.IndexModel) Option {
	return func(s *settings) {
		s.indexes = append(s.indexes, models...)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBootstrapTimeout bounds index creation. Non-positive values keep the default.
func WithBootstrapTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.bootstrapTimeout = d
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:           zap.NewNop(),
		bootstrapTimeout: defaultBootstrapTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
