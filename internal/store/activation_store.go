package store

import (
	"context"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivationStore struct{ db *gorm.DB }

func (s *Store) Activations() *ActivationStore { return &ActivationStore{db: s.DB} }

// Confirmable narrows a query to activations that are unused, not force-expired
// and created within the last days days.
func Confirmable(now time.Time, days int) func(*gorm.DB) *gorm.DB {
	now = now.UTC()
	start := now.Add(-time.Duration(days) * 24 * time.Hour)
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("email_activations.activated = ? AND email_activations.forced_expired = ?", false, false).
			Where("email_activations.timestamp > ? AND email_activations.timestamp <= ?", start, now)
	}
}

// emailExists matches unactivated rows whose own email or whose user's email is email.
func emailExists(email string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN users ON users.id = email_activations.user_id").
			Where("(LOWER(email_activations.email) = LOWER(?) OR LOWER(users.email) = LOWER(?))", email, email).
			Where("email_activations.activated = ?", false)
	}
}

// Create inserts the activation; the model's BeforeSave hook assigns the key.
func (a *ActivationStore) Create(ctx context.Context, act *domain.EmailActivation) error {
	if act.ID == uuid.Nil {
		act.ID = uuid.New()
	}
	return a.db.WithContext(ctx).Omit(clause.Associations).Create(act).Error
}

func (a *ActivationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailActivation, error) {
	var act domain.EmailActivation
	if err := a.db.WithContext(ctx).Preload("User").First(&act, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &act, nil
}

// FindByKey returns every activation whose key matches case-insensitively.
func (a *ActivationStore) FindByKey(ctx context.Context, key string) ([]domain.EmailActivation, error) {
	var out []domain.EmailActivation
	err := a.db.WithContext(ctx).Preload("User").
		Where("LOWER(activation_key) = LOWER(?)", key).
		Find(&out).Error
	return out, err
}

func (a *ActivationStore) ConfirmableByKey(ctx context.Context, key string, now time.Time, days int) ([]domain.EmailActivation, error) {
	var out []domain.EmailActivation
	err := a.db.WithContext(ctx).Preload("User").
		Scopes(Confirmable(now, days)).
		Where("LOWER(activation_key) = LOWER(?)", key).
		Find(&out).Error
	return out, err
}

func (a *ActivationStore) ActivatedKeyExists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&domain.EmailActivation{}).
		Where("LOWER(activation_key) = LOWER(?) AND activated = ?", key, true).
		Count(&n).Error
	return n > 0, err
}

// EmailExists lists unactivated activations for email, newest first.
func (a *ActivationStore) EmailExists(ctx context.Context, email string) ([]domain.EmailActivation, error) {
	var out []domain.EmailActivation
	err := a.db.WithContext(ctx).Preload("User").
		Scopes(emailExists(email)).
		Order("email_activations.timestamp DESC").
		Find(&out).Error
	return out, err
}

func (a *ActivationStore) ConfirmableForEmail(ctx context.Context, email string, now time.Time, days int) ([]domain.EmailActivation, error) {
	var out []domain.EmailActivation
	err := a.db.WithContext(ctx).
		Scopes(emailExists(email), Confirmable(now, days)).
		Order("email_activations.timestamp DESC").
		Find(&out).Error
	return out, err
}

// LatestForUser returns the most recently created activation of the user.
func (a *ActivationStore) LatestForUser(ctx context.Context, userID uuid.UUID) (*domain.EmailActivation, error) {
	var act domain.EmailActivation
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		First(&act).Error
	if err != nil {
		return nil, translate(err)
	}
	return &act, nil
}

func (a *ActivationStore) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&domain.EmailActivation{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// bulk skips the key hook; column updates never need a new key.
func (a *ActivationStore) bulk(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).Session(&gorm.Session{SkipHooks: true})
}

func (a *ActivationStore) MarkActivated(ctx context.Context, id uuid.UUID, at time.Time) error {
	return a.bulk(ctx).Model(&domain.EmailActivation{}).
		Where("id = ?", id).
		Updates(map[string]any{"activated": true, "updated_at": at}).Error
}

// Regenerate clears the key and saves the row so a new key is assigned.
func (a *ActivationStore) Regenerate(ctx context.Context, act *domain.EmailActivation) error {
	act.Key = nil
	act.Update = time.Now().UTC()
	return a.db.WithContext(ctx).Omit(clause.Associations).Save(act).Error
}

func (a *ActivationStore) ForceExpire(ctx context.Context, id uuid.UUID) error {
	return a.bulk(ctx).Model(&domain.EmailActivation{}).
		Where("id = ?", id).
		Updates(map[string]any{"forced_expired": true, "updated_at": time.Now().UTC()}).Error
}

// ExpireStale force-expires unactivated rows created at or before cutoff.
func (a *ActivationStore) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := a.bulk(ctx).Model(&domain.EmailActivation{}).
		Where("activated = ? AND forced_expired = ? AND timestamp <= ?", false, false, cutoff.UTC()).
		Updates(map[string]any{"forced_expired": true, "updated_at": time.Now().UTC()})
	return tx.RowsAffected, tx.Error
}
