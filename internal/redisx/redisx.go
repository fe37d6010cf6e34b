// Package redisx wraps the Redis client used to remember redeemed round
// tokens.
package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct{ R *redis.Client }

// Config for the Redis connection
type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(cfg Config) *Client {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &Client{R: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.R.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.R.Close()
}

// Guard records one-time redemptions with SETNX.
type Guard struct {
	r      *redis.Client
	prefix string
}

func NewGuard(c *Client) *Guard {
	return &Guard{r: c.R, prefix: "whoyap:round:"}
}

// Redeem reports true the first time key is seen within ttl.
func (g *Guard) Redeem(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.r.SetNX(ctx, g.prefix+key, "1", ttl).Result()
}

// Release forgets key so it can be redeemed again.
func (g *Guard) Release(ctx context.Context, key string) error {
	return g.r.Del(ctx, g.prefix+key).Err()
}
