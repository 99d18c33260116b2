package rdb

import (
	"context"
	"laundry_service/config"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "redis").Logger()

// Connect returns a redis client, or nil when REDIS_ADDR is not configured or the
// server does not answer. Callers fall back to the in-memory implementations.
func Connect(settings config.Settings) *redis.Client {
	if settings.RedisAddr == "" {
		logger.Info().Msg("redis not configured, using in-memory lock and broadcaster")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     settings.RedisAddr,
		Password: settings.RedisPassword,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", settings.RedisAddr).Msg("redis unreachable, using in-memory lock and broadcaster")
		_ = client.Close()
		return nil
	}
	return client
}
