package acquisition

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
	"github.com/quantumlayer-dev/solar-placement/internal/telemetry"
)

// FeatureCache memoizes fully-assembled Features per rounded coordinate
// bucket, the same "continue without cache on failure" wiring the
// teacher platform applies to its optional redisClient in
// packages/llm-router/server.go. This is an ambient performance
// optimization, not a spec'd behavior — a nil *FeatureCache (or a
// disabled one) is always safe to call into.
type FeatureCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewFeatureCache returns nil if client is nil, so callers can treat a
// disabled cache uniformly with a configured one.
func NewFeatureCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *FeatureCache {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(lat, lng float64) string {
	// round to 0.1 degree so nearby repeat queries share a cache entry.
	rLat := math.Round(lat*10) / 10
	rLng := math.Round(lng*10) / 10
	return fmt.Sprintf("solar-placement:features:%.1f:%.1f", rLat, rLng)
}

// Get returns a cached Features value, or ok=false on miss, error, or a
// nil cache.
func (c *FeatureCache) Get(ctx context.Context, lat, lng float64) (model.Features, bool) {
	if c == nil {
		return model.Features{}, false
	}

	raw, err := c.client.Get(ctx, cacheKey(lat, lng)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("feature cache get failed, continuing without cache", zap.Error(err))
		}
		telemetry.RecordCacheMiss()
		return model.Features{}, false
	}

	var f model.Features
	if err := json.Unmarshal(raw, &f); err != nil {
		c.logger.Warn("feature cache decode failed, continuing without cache", zap.Error(err))
		telemetry.RecordCacheMiss()
		return model.Features{}, false
	}
	telemetry.RecordCacheHit()
	return f, true
}

// Set stores Features for the coordinate bucket; failures are logged and
// swallowed, never surfaced to the caller.
func (c *FeatureCache) Set(ctx context.Context, lat, lng float64, f model.Features) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(lat, lng), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("feature cache set failed, continuing without cache", zap.Error(err))
	}
}
