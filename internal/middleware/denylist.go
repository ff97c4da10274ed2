package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/socialapp/socialapp/pkg/cache"
)

// RedisDenylist holds signed-out tokens until their natural expiry.
type RedisDenylist struct {
	client *cache.RedisClient
}

func NewRedisDenylist(client *cache.RedisClient) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) key(token string) string {
	return fmt.Sprintf("token_denylist:%s", token)
}

func (d *RedisDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.key(token), 1, ttl)
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(token))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
