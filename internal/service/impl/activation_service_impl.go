package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/events"
	"accounts/internal/observability/metrics"
	"accounts/internal/observability/middleware"
	"accounts/internal/service"
	"accounts/internal/store"
)

type ActivationServiceImpl struct {
	Store  *store.Store
	Mailer service.ActivationMailer
	Events service.EventPublisher

	days int
	now  func() time.Time
}

func NewActivationServiceImpl(days int, st *store.Store, mailer service.ActivationMailer, publisher service.EventPublisher) *ActivationServiceImpl {
	if days <= 0 {
		days = domain.DefaultActivationDays
	}
	return &ActivationServiceImpl{Store: st, Mailer: mailer, Events: publisher, days: days, now: time.Now}
}

// ActivateEmail confirms the single confirmable activation matching key.
// It returns domain.ErrAlreadyActivated when the key was already used and
// domain.ErrActivationNotFound when nothing usable matches.
func (s *ActivationServiceImpl) ActivateEmail(ctx context.Context, key string) (*dto.ActivationResult, error) {
	result := "activated"
	defer func() {
		metrics.ActivationsTotal.WithLabelValues(result).Inc()
	}()
	now := s.now().UTC()

	var act domain.EmailActivation
	err := s.Store.WithTx(ctx, func(tx *store.Store) error {
		acts := tx.Activations()
		confirmable, err := acts.ConfirmableByKey(ctx, key, now, s.days)
		if err != nil {
			return err
		}
		if len(confirmable) == 1 {
			act = confirmable[0]
			if err := tx.Users().SetActive(ctx, act.UserID, true); err != nil {
				return err
			}
			return acts.MarkActivated(ctx, act.ID, now)
		}
		used, err := acts.ActivatedKeyExists(ctx, key)
		if err != nil {
			return err
		}
		if used {
			return domain.ErrAlreadyActivated
		}
		return domain.ErrActivationNotFound
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyActivated):
		result = "already_activated"
		return nil, err
	case errors.Is(err, domain.ErrActivationNotFound):
		result = "not_found"
		return nil, err
	case err != nil:
		result = "failure"
		return nil, err
	}

	middleware.LoggerFromContext(ctx).Info("email activated", "activation_id", act.ID, "user_id", act.UserID)
	s.publish(ctx, events.TypeEmailActivated, events.EmailActivated{
		UserID:       act.UserID.String(),
		ActivationID: act.ID.String(),
		Email:        act.Email,
		At:           now,
	}, act.UserID.String())

	return &dto.ActivationResult{UserID: act.UserID.String(), Email: act.Email}, nil
}

// ResendActivation issues a fresh activation for an address that still has an
// unactivated one, either as its activation email or its user's email.
func (s *ActivationServiceImpl) ResendActivation(ctx context.Context, email string) (*dto.ResendResponse, error) {
	email = domain.NormalizeEmail(email)
	existing, err := s.Store.Activations().EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, domain.ErrActivationNotFound
	}

	act := &domain.EmailActivation{
		UserID:  existing[0].UserID,
		Email:   email,
		Expires: s.days,
	}
	if err := s.Store.Activations().Create(ctx, act); err != nil {
		return nil, fmt.Errorf("create activation: %w", err)
	}

	out := &dto.ResendResponse{ActivationID: act.ID.String(), Email: act.Email}
	if s.Mailer != nil {
		sent, err := s.Mailer.Send(ctx, act)
		if err != nil {
			return nil, err
		}
		out.Sent = sent
	}
	middleware.LoggerFromContext(ctx).Info("activation resent", "activation_id", act.ID, "user_id", act.UserID)
	return out, nil
}

// Regenerate replaces the key of an activation.
func (s *ActivationServiceImpl) Regenerate(ctx context.Context, activationID domain.ActivationID) (*domain.EmailActivation, error) {
	act, err := s.Store.Activations().GetByID(ctx, activationID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrActivationNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.Store.Activations().Regenerate(ctx, act); err != nil {
		return nil, fmt.Errorf("regenerate activation: %w", err)
	}
	return act, nil
}

// ExpireStale force-expires unused activations older than olderThan. A zero
// duration uses the activation window.
func (s *ActivationServiceImpl) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = time.Duration(s.days) * 24 * time.Hour
	}
	n, err := s.Store.Activations().ExpireStale(ctx, s.now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	middleware.LoggerFromContext(ctx).Info("expired stale activations", "count", n)
	return n, nil
}

// ForceExpire retires a single activation so its key can no longer confirm.
func (s *ActivationServiceImpl) ForceExpire(ctx context.Context, activationID domain.ActivationID) error {
	if _, err := s.Store.Activations().GetByID(ctx, activationID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrActivationNotFound
		}
		return err
	}
	if err := s.Store.Activations().ForceExpire(ctx, activationID); err != nil {
		return fmt.Errorf("force expire activation: %w", err)
	}
	middleware.LoggerFromContext(ctx).Info("activation force expired", "activation_id", activationID)
	return nil
}

// Inspect reports every activation matching key and whether it is
// confirmable right now.
func (s *ActivationServiceImpl) Inspect(ctx context.Context, key string) ([]dto.ActivationStatus, error) {
	rows, err := s.Store.Activations().FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrActivationNotFound
	}
	now := s.now()
	out := make([]dto.ActivationStatus, 0, len(rows))
	for i := range rows {
		act := &rows[i]
		out = append(out, dto.ActivationStatus{
			ActivationID:  act.ID.String(),
			UserID:        act.UserID.String(),
			Email:         act.Email,
			Activated:     act.Activated,
			ForcedExpired: act.ForcedExpired,
			Confirmable:   act.ConfirmableAt(now, s.days),
			CreatedAt:     act.Timestamp,
		})
	}
	return out, nil
}

func (s *ActivationServiceImpl) publish(ctx context.Context, eventType string, payload any, key string) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, eventType, payload, key); err != nil {
		middleware.LoggerFromContext(ctx).Warn("publish event failed", "event_type", eventType, "err", err)
	}
}
