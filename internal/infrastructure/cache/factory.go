package cache

import (
	"go.uber.org/zap"

	"github.com/facturo/backend/internal/infrastructure/config"
)

// NewMetricStore selects a MetricStore implementation from configuration.
// When the in-memory store is enabled it wins outright; otherwise Redis is
// used, falling back to in-memory when the connection cannot be established
// so that the service stays up with a cold cache.
func NewMetricStore(cfg *config.Config, logger *zap.Logger) MetricStore {
	if cfg.Cache.InMemoryEnabled {
		logger.Info("Using in-memory metric store")
		return NewInMemoryMetricStore()
	}

	store, err := NewRedisMetricStore(RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory metric store",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		return NewInMemoryMetricStore()
	}

	logger.Info("Using Redis metric store", zap.String("addr", cfg.Redis.Addr()))
	return store
}
