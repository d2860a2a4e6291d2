package scanstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps scan sessions in Redis so a station survives a validator
// app restart mid-cycle. Entries expire after ttl without a confirm.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a store over an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(stationID string) string {
	return fmt.Sprintf("scan:station:%s", stationID)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, stationID string) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(stationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode scan session: %w", err)
	}
	return &session, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, stationID string, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode scan session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(stationID), raw, s.ttl).Err()
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context, stationID string) error {
	return s.client.Del(ctx, sessionKey(stationID)).Err()
}
