package store

import (
	"context"
	"errors"

	"accounts/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// Migrate creates or updates every table the service owns.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.DB.WithContext(ctx)
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.PasswordCredential{},
		&domain.Profile{},
		&domain.EmailActivation{},
		&domain.Session{},
	); err != nil {
		return err
	}
	// ux_users_email compares bytes; this one makes A@x.com and a@x.com collide.
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email_lower ON users (LOWER(email))").Error
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
