package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
	prefix  string
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb, prefix: "tasktracker:ratelimit:"}
}

// this ping function checks redis connectivity

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Hit counts one request against key in a fixed window that opens on the
// first hit. It returns the count so far and the time left in the window.
func (c *Client) Hit(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	k := c.prefix + key

	pipe := c.redisdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("redis hit %s: %w", key, err)
	}

	left := ttl.Val()

	// a negative ttl means the key has no expiry yet: this hit opened the window
	if left < 0 {
		if err := c.redisdb.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("redis expire %s: %w", key, err)
		}
		left = window
	}

	return int(incr.Val()), left, nil
}
