package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/fortis-steel/chatbot-api/internal/config"
	"github.com/fortis-steel/chatbot-api/internal/conversation"
	"github.com/fortis-steel/chatbot-api/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available; chat transcripts disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildTranscriptStore returns the Redis-backed chat transcript, or nil
// without Redis.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config) *conversation.TranscriptStore {
	if redisClient == nil || cfg == nil {
		return nil
	}
	return conversation.NewTranscriptStore(redisClient, cfg.TranscriptTTL)
}
