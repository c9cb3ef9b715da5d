package service

import (
	"context"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
)

type ActivationService interface {
	ActivateEmail(ctx context.Context, key string) (*dto.ActivationResult, error)
	ResendActivation(ctx context.Context, email string) (*dto.ResendResponse, error)
	Regenerate(ctx context.Context, activationID domain.ActivationID) (*domain.EmailActivation, error)
	ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error)
	ForceExpire(ctx context.Context, activationID domain.ActivationID) error
	Inspect(ctx context.Context, key string) ([]dto.ActivationStatus, error)
}

// ActivationMailer delivers activation links. Send reports false when the
// activation is not eligible for sending.
type ActivationMailer interface {
	Send(ctx context.Context, act *domain.EmailActivation) (bool, error)
}
