// Package lockout counts failed logins and locks keys out for a window once a
// threshold is reached.
package lockout

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "accounts:lockout:"

type Policy struct {
	MaxFailures int
	Window      time.Duration
}

func (p Policy) enabled() bool { return p.MaxFailures > 0 && p.Window > 0 }

type RedisStore struct {
	client *redis.Client
	policy Policy
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, policy Policy) *RedisStore {
	return &RedisStore{client: client, policy: policy, now: time.Now}
}

func (s *RedisStore) Locked(ctx context.Context, key string) (bool, time.Duration, error) {
	if !s.policy.enabled() {
		return false, 0, nil
	}
	raw, err := s.client.HGet(ctx, keyPrefix+key, "locked_until").Result()
	if errors.Is(err, redis.Nil) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || unix <= 0 {
		return false, 0, nil
	}
	remaining := time.Unix(unix, 0).Sub(s.now())
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

func (s *RedisStore) Fail(ctx context.Context, key string) (int64, error) {
	if !s.policy.enabled() {
		return 0, nil
	}
	redisKey := keyPrefix + key
	count, err := s.client.HIncrBy(ctx, redisKey, "failed_count", 1).Result()
	if err != nil {
		return 0, err
	}
	if count >= int64(s.policy.MaxFailures) {
		lockedUntil := s.now().Add(s.policy.Window).UTC()
		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, redisKey, "locked_until", lockedUntil.Unix(), "failed_count", 0)
			p.Expire(ctx, redisKey, s.policy.Window+30*time.Minute)
			return nil
		})
		return count, err
	}
	return count, s.client.Expire(ctx, redisKey, 24*time.Hour).Err()
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

type entry struct {
	failures    int64
	lockedUntil time.Time
}

// MemoryStore is the single-process fallback used when no Redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	policy  Policy
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryStore(policy Policy) *MemoryStore {
	return &MemoryStore{policy: policy, entries: make(map[string]*entry), now: time.Now}
}

func (s *MemoryStore) Locked(ctx context.Context, key string) (bool, time.Duration, error) {
	if !s.policy.enabled() {
		return false, 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false, 0, nil
	}
	remaining := e.lockedUntil.Sub(s.now())
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

func (s *MemoryStore) Fail(ctx context.Context, key string) (int64, error) {
	if !s.policy.enabled() {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.failures++
	count := e.failures
	if count >= int64(s.policy.MaxFailures) {
		e.lockedUntil = s.now().Add(s.policy.Window)
		e.failures = 0
	}
	return count, nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
