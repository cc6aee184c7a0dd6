package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/devaqn/financeira-bot/internal/domain"
)

// Cache keeps the Telegram-to-account identity mapping in Redis so the
// per-message upsert can be skipped. Balances inside cached entries are
// snapshots and must not be shown to users.
type Cache struct {
	client *redis.Client
}

// NewCache constructs an account cache backed by the provided Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get fetches a cached account if it exists. A nil Cache is a no-op.
func (c *Cache) Get(ctx context.Context, telegramID int64) (*domain.Account, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(telegramID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached account: %w", err)
	}

	var acct domain.Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, fmt.Errorf("decode cached account: %w", err)
	}

	return &acct, nil
}

// Set stores the account in cache for the provided TTL.
func (c *Cache) Set(ctx context.Context, telegramID int64, acct *domain.Account, ttl time.Duration) error {
	if c == nil || c.client == nil || acct == nil {
		return nil
	}

	payload, err := json.Marshal(acct)
	if err != nil {
		return fmt.Errorf("encode account for cache: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(telegramID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set cached account: %w", err)
	}

	return nil
}

// Invalidate removes the cached entry if it exists.
func (c *Cache) Invalidate(ctx context.Context, telegramID int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, cacheKey(telegramID)).Err(); err != nil {
		return fmt.Errorf("delete cached account: %w", err)
	}

	return nil
}

func cacheKey(telegramID int64) string {
	return fmt.Sprintf("account:tg:%d", telegramID)
}
