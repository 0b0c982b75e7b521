package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/pkg/config"
)

const guardKeyPrefix = "meetings:processing:"

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisGuard is a MeetingGuard backed by Redis SET NX with a TTL, so the
// claim holds across multiple service instances.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisGuard creates a Redis-backed guard with the given claim TTL
func NewRedisGuard(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisGuard {
	return &RedisGuard{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire claims the meeting unless a live claim exists
func (g *RedisGuard) Acquire(ctx context.Context, meetingID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardKeyPrefix+meetingID, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim meeting %s: %w", meetingID, err)
	}
	return ok, nil
}

// Release frees the claim
func (g *RedisGuard) Release(ctx context.Context, meetingID string) {
	if err := g.client.Del(ctx, guardKeyPrefix+meetingID).Err(); err != nil && g.logger != nil {
		// Not fatal: the TTL will expire the claim.
		g.logger.Warn("failed to release meeting claim",
			zap.String("meeting_id", meetingID),
			zap.Error(err),
		)
	}
}
