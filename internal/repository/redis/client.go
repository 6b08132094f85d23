package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderboardTTL = 30 * time.Second

// Cache is a thin leaderboard cache over Redis. The server runs fine
// without Redis; a nil *Cache is a valid no-op receiver everywhere.
type Cache struct {
	client *redis.Client
}

// New connects to Redis. An unreachable Redis is logged and reported as a
// nil cache rather than an error so startup never depends on it.
func New(addr, password string) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[REDIS] Warning: could not connect to Redis: %v. Leaderboard cache disabled.", err)
		client.Close()
		return nil
	}

	log.Println("[REDIS] Connected successfully")
	return &Cache{client: client}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// GetLeaderboard returns the cached serialized leaderboard for a limit.
func (c *Cache) GetLeaderboard(ctx context.Context, limit int) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, leaderboardKey(limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[REDIS] Leaderboard read failed: %v", err)
		}
		return nil, false
	}
	return data, true
}

// SetLeaderboard caches a serialized leaderboard under a short TTL.
func (c *Cache) SetLeaderboard(ctx context.Context, limit int, data []byte) {
	if c == nil {
		return
	}

	if err := c.client.Set(ctx, leaderboardKey(limit), data, leaderboardTTL).Err(); err != nil {
		log.Printf("[REDIS] Leaderboard write failed: %v", err)
	}
}

// InvalidateLeaderboard drops every cached leaderboard variant. Called
// after a win is recorded so the board never serves a stale TTL window.
func (c *Cache) InvalidateLeaderboard(ctx context.Context) error {
	if c == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, "leaderboard:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func leaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard:top:%d", limit)
}
