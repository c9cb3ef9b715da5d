package service

import (
	"context"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
)

type SessionService interface {
	Issue(ctx context.Context, user *domain.User, ip, ua string) (*dto.SessionToken, error)
	// Resolve returns the session and user behind a cookie token, or
	// domain.ErrSessionInvalid.
	Resolve(ctx context.Context, token string) (*domain.Session, *domain.User, error)
	Revoke(ctx context.Context, sessionID domain.SessionID) error
	// PruneExpired deletes sessions that expired more than grace ago.
	PruneExpired(ctx context.Context, grace time.Duration) (int64, error)
}
