// Package cache provides the generation lock backends.
package cache

import (
	"fmt"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Lock backend names accepted in configuration
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the in-memory locker
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// LockerFactory creates the configured shared.Locker
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// NewLockerFactory creates a new factory
func NewLockerFactory(redisCfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a locker for backend
func (f *LockerFactory) Create(backend string) (shared.Locker, error) {
	switch backend {
	case "", LockBackendMemory:
		f.logger.Info("using in-memory generation lock")
		return NewInMemoryLocker(), nil
	case LockBackendRedis:
		locker, err := NewRedisLocker(f.redisConfig)
		if err == nil {
			f.logger.Info("using Redis generation lock", zap.String("addr", f.redisConfig.Addr()))
			return locker, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis lock backend unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory generation lock. "+
			"Generations on different instances are then only serialized by the database.",
			zap.Error(err),
		)
		return NewInMemoryLocker(), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", backend)
	}
}
