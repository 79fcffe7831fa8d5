package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/repository"
)

const dashboardKeyPrefix = "portkey:dashboard:metrics:"

// MetricsCache stores serialized dashboard metrics.
type MetricsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheObserver is told about every cache lookup.
type CacheObserver interface {
	RecordCacheLookup(hit bool)
}

type redisMetricsCache struct {
	client *redis.Client
}

// NewRedisMetricsCache backs the dashboard cache with Redis.
func NewRedisMetricsCache(client *redis.Client) MetricsCache {
	return &redisMetricsCache{client: client}
}

func (c *redisMetricsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *redisMetricsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisMetricsCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// DashboardStatus is the dashboard liveness ping.
type DashboardStatus struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardService computes shipment summaries, cached per visibility scope.
type DashboardService struct {
	shipments repository.ShipmentRepository
	cache     MetricsCache
	ttl       time.Duration
	observer  CacheObserver
	logger    *zap.Logger
	now       func() time.Time
}

// NewDashboardService constructs the service. A nil cache or zero TTL disables caching.
func NewDashboardService(shipments repository.ShipmentRepository, cache MetricsCache, ttl time.Duration, observer CacheObserver, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		shipments: shipments,
		cache:     cache,
		ttl:       ttl,
		observer:  observer,
		logger:    logger,
		now:       time.Now,
	}
}

// Status reports that the dashboard backend is reachable.
func (s *DashboardService) Status() DashboardStatus {
	return DashboardStatus{
		Status:    "ok",
		Message:   "dashboard backend is running",
		Timestamp: s.now().UTC(),
	}
}

// Metrics summarizes the shipments visible to the actor. Cache failures fall
// back to the database.
func (s *DashboardService) Metrics(ctx context.Context, actor Actor) (*domain.DashboardMetrics, error) {
	key := metricsKey(actor.scope())
	if cached := s.lookup(ctx, key); cached != nil {
		return cached, nil
	}

	metrics, err := s.shipments.Metrics(ctx, actor.scope())
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, metrics)
	return metrics, nil
}

// Invalidate drops the cached metrics an owner's shipment write affects:
// the owner's own scope and the global scope.
func (s *DashboardService) Invalidate(ctx context.Context, ownerID string) error {
	if !s.cacheEnabled() {
		return nil
	}
	keys := []string{metricsKey(nil)}
	if ownerID != "" {
		keys = append(keys, metricsKey(&ownerID))
	}
	return s.cache.Delete(ctx, keys...)
}

func (s *DashboardService) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func (s *DashboardService) lookup(ctx context.Context, key string) *domain.DashboardMetrics {
	if !s.cacheEnabled() {
		return nil
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if s.observer != nil {
		s.observer.RecordCacheLookup(ok)
	}
	if !ok {
		return nil
	}
	var metrics domain.DashboardMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		s.logger.Warn("dashboard cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &metrics
}

func (s *DashboardService) store(ctx context.Context, key string, metrics *domain.DashboardMetrics) {
	if !s.cacheEnabled() {
		return
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func metricsKey(userID *string) string {
	if userID == nil {
		return dashboardKeyPrefix + "all"
	}
	return dashboardKeyPrefix + "user:" + *userID
}
