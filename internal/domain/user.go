package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultActivationDays is the confirmation window used when none is configured.
const DefaultActivationDays = 7

type User struct {
	ID        UserID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex:ux_users_email;not null" db:"email" json:"email"`
	IsActive  bool      `gorm:"not null" db:"is_active" json:"isActive"`
	Staff     bool      `gorm:"not null;default:false" db:"staff" json:"staff"`
	Admin     bool      `gorm:"not null;default:false" db:"admin" json:"admin"`
	Timestamp time.Time `gorm:"not null" db:"timestamp" json:"timestamp"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`

	// ActivationDays sizes the EmailActivation created alongside the user.
	ActivationDays int `gorm:"-" json:"-"`
}

func (User) TableName() string { return "users" }

// Users are identified by their email address.
func (u *User) FullName() string  { return u.Email }
func (u *User) ShortName() string { return u.Email }
func (u *User) String() string    { return u.Email }

func (u *User) IsStaff() bool { return u.Staff }
func (u *User) IsAdmin() bool { return u.Admin }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	if u.Timestamp.IsZero() {
		u.Timestamp = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	return nil
}

// AfterCreate gives every new user a profile and a pending email activation.
// Both rows are written inside the creating transaction.
func (u *User) AfterCreate(tx *gorm.DB) error {
	db := tx.Session(&gorm.Session{NewDB: true})

	var profiles int64
	if err := db.Model(&Profile{}).Where("user_id = ?", u.ID).Count(&profiles).Error; err != nil {
		return err
	}
	if profiles == 0 {
		if err := db.Create(&Profile{UserID: u.ID}).Error; err != nil {
			return err
		}
	}

	days := u.ActivationDays
	if days <= 0 {
		days = DefaultActivationDays
	}
	return db.Create(&EmailActivation{UserID: u.ID, Email: u.Email, Expires: days}).Error
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
