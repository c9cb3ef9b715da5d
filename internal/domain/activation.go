package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	activationKeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	activationKeyMinLen   = 30
	activationKeyMaxLen   = 45
	activationKeyAttempts = 5
)

// EmailActivation is a pending (or consumed) email confirmation for a user.
type EmailActivation struct {
	ID            ActivationID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	UserID        UserID       `gorm:"type:uuid;index;not null" db:"user_id" json:"userId"`
	User          *User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Email         string       `gorm:"type:varchar(255);index;not null" db:"email" json:"email"`
	Key           *string      `gorm:"column:activation_key;type:varchar(120);uniqueIndex:ux_email_activations_key" db:"activation_key" json:"-"`
	Activated     bool         `gorm:"not null;default:false" db:"activated" json:"activated"`
	ForcedExpired bool         `gorm:"not null;default:false" db:"forced_expired" json:"forcedExpired"`
	Expires       int          `gorm:"not null;default:7" db:"expires" json:"expires"`
	Timestamp     time.Time    `gorm:"not null;index" db:"timestamp" json:"timestamp"`
	Update        time.Time    `gorm:"column:updated_at;not null" db:"updated_at" json:"update"`
}

func (EmailActivation) TableName() string { return "email_activations" }

func (a *EmailActivation) String() string { return a.Email }

// KeyValue returns the activation key or "" when none has been generated.
func (a *EmailActivation) KeyValue() string {
	if a.Key == nil {
		return ""
	}
	return *a.Key
}

// ConfirmableAt reports whether the activation can still be used at now
// given a window in days.
func (a *EmailActivation) ConfirmableAt(now time.Time, days int) bool {
	if a.Activated || a.ForcedExpired {
		return false
	}
	start := now.Add(-time.Duration(days) * 24 * time.Hour)
	return a.Timestamp.After(start) && !a.Timestamp.After(now)
}

func (a *EmailActivation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	if a.Update.IsZero() {
		a.Update = now
	}
	if a.Expires <= 0 {
		a.Expires = DefaultActivationDays
	}
	return nil
}

// BeforeSave fills in a fresh unique key whenever the row has none.
func (a *EmailActivation) BeforeSave(tx *gorm.DB) error {
	if a.Key != nil && *a.Key != "" {
		return nil
	}
	db := tx.Session(&gorm.Session{NewDB: true})
	for i := 0; i < activationKeyAttempts; i++ {
		key, err := GenerateActivationKey()
		if err != nil {
			return err
		}
		var n int64
		if err := db.Model(&EmailActivation{}).Where("activation_key = ?", key).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			a.Key = &key
			return nil
		}
	}
	return fmt.Errorf("generate activation key: %d collisions", activationKeyAttempts)
}

// GenerateActivationKey returns a random lowercase alphanumeric key of 30 to 45 characters.
func GenerateActivationKey() (string, error) {
	span, err := rand.Int(rand.Reader, big.NewInt(activationKeyMaxLen-activationKeyMinLen+1))
	if err != nil {
		return "", err
	}
	size := activationKeyMinLen + int(span.Int64())
	alphabet := big.NewInt(int64(len(activationKeyAlphabet)))
	buf := make([]byte, size)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", err
		}
		buf[i] = activationKeyAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
