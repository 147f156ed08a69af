package invalidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel and NATS subject used for signals.
const DefaultChannel = "activityform.invalidate"

// NewUniversal builds the go-redis client. Tests replace it.
var NewUniversal = func(opt *redis.UniversalOptions) redis.UniversalClient {
	return redis.NewUniversalClient(opt)
}

// RedisConfig configures the Redis publisher.
type RedisConfig struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	Channel     string
	DialTimeout time.Duration
	// ConnectTimeout bounds the startup ping retries.
	ConnectTimeout time.Duration
}

type redisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// RedisPublisher publishes JSON-encoded signals on a Redis channel.
type RedisPublisher struct {
	client  redisClient
	channel string
}

// NewRedisPublisher dials Redis and pings it with backoff until it answers or
// ConnectTimeout elapses.
func NewRedisPublisher(ctx context.Context, cfg RedisConfig) (*RedisPublisher, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	addrs := make([]string, 0, len(cfg.Addrs))
	for _, addr := range cfg.Addrs {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			addrs = append(addrs, trimmed)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("invalidate: redis address is required")
	}

	rdb := NewUniversal(&redis.UniversalOptions{
		Addrs:       addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingTimeout := cfg.DialTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	err := connectWithRetry(ctx, cfg.ConnectTimeout, func() error {
		c, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return rdb.Ping(c).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("invalidate: redis ping: %w", err)
	}

	return newRedisPublisher(rdb, cfg.Channel), nil
}

func newRedisPublisher(client redisClient, channel string) *RedisPublisher {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, signal Signal) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("invalidate: encode signal: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("invalidate: redis publish: %w", err)
	}
	return nil
}

// Close implements Publisher.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
