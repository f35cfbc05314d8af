// Package cache keeps the sign-out denylist of revoked token ids.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Denylist records revoked token ids until the token would have expired.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

const keyPrefix = "questline:revoked:"

type RedisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist connects to addr and pings it.
func NewRedisDenylist(ctx context.Context, addr string) (*RedisDenylist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	logrus.WithField("addr", addr).Info("Connected to Redis")
	return &RedisDenylist{client: client}, nil
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, keyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (d *RedisDenylist) Revoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}

func (d *RedisDenylist) Close() error { return d.client.Close() }

// MemoryDenylist serves single-instance deployments and tests.
type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{revoked: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweep()
	if until.After(d.now()) {
		d.revoked[tokenID] = until
	}
	return nil
}

func (d *MemoryDenylist) Revoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[tokenID]
	return ok && until.After(d.now()), nil
}

// sweep drops entries whose tokens have expired anyway.
func (d *MemoryDenylist) sweep() {
	now := d.now()
	for id, until := range d.revoked {
		if !until.After(now) {
			delete(d.revoked, id)
		}
	}
}
