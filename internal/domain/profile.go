package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the merchant profile attached to every user.
type Profile struct {
	ID        ProfileID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	UserID    UserID    `gorm:"type:uuid;uniqueIndex:ux_profiles_user" db:"user_id" json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Shop      string    `gorm:"type:varchar(120);not null;default:''" db:"shop" json:"shop"`
	Location  *string   `gorm:"type:varchar(120)" db:"location" json:"location"`
	Merchant  bool      `gorm:"not null;default:false" db:"merchant" json:"merchant"`
	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) IsMerchant() bool { return p.Merchant }

// LocationOrEmpty dereferences the nullable location column.
func (p *Profile) LocationOrEmpty() string {
	if p.Location == nil {
		return ""
	}
	return *p.Location
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return nil
}
