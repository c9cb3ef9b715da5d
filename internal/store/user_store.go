package store

import (
	"context"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

// Create inserts the user. The user's profile and first email activation are
// written by the model's AfterCreate hook in the same transaction.
func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	return translate(u.db.WithContext(ctx).Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&n).Error
	return n > 0, err
}

func (u *UserStore) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()}).Error
}

func (u *UserStore) SetRoles(ctx context.Context, userID uuid.UUID, staff, admin bool) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"staff": staff, "admin": admin, "updated_at": time.Now().UTC()}).Error
}

// List returns users ordered by email, the same ordering the admin listing used.
func (u *UserStore) List(ctx context.Context, limit int) ([]domain.User, error) {
	var users []domain.User
	q := u.db.WithContext(ctx).Order("email")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
