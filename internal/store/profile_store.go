package store

import (
	"context"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileStore struct{ db *gorm.DB }

func (s *Store) Profiles() *ProfileStore { return &ProfileStore{db: s.DB} }

func (p *ProfileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	if err := p.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (p *ProfileStore) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&domain.Profile{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// Update writes the editable merchant fields of an existing profile.
func (p *ProfileStore) Update(ctx context.Context, profile *domain.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	tx := p.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{
			"shop":       profile.Shop,
			"location":   profile.Location,
			"merchant":   profile.Merchant,
			"updated_at": profile.UpdatedAt,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
