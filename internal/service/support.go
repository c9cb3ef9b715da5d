package service

import (
	"context"
	"time"
)

// LoginLimiter tracks failed logins per key and reports lockouts.
type LoginLimiter interface {
	Locked(ctx context.Context, key string) (bool, time.Duration, error)
	Fail(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// EventPublisher emits account lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any, partitionKey string) error
}
