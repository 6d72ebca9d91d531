package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
)

const defaultSessionPrefix = "movies:session"

// SessionCache keeps session handles in Redis with a TTL.
type SessionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cannot connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func NewSessionCache(client *redis.Client, keyPrefix string, ttl time.Duration) *SessionCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSessionPrefix
	}
	return &SessionCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *SessionCache) SaveSession(ctx context.Context, handle uuid.UUID, sess domain.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := c.client.Set(ctx, c.key(handle), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (c *SessionCache) GetSession(ctx context.Context, handle uuid.UUID) (domain.Session, error) {
	value, err := c.client.Get(ctx, c.key(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(value, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("decode cached session: %w", err)
	}
	return sess, nil
}

func (c *SessionCache) DeleteSession(ctx context.Context, handle uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(handle)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func (c *SessionCache) key(handle uuid.UUID) string {
	return fmt.Sprintf("%s:%s", c.prefix, handle)
}
