package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session referenced by the session cookie.
type Session struct {
	ID        SessionID  `gorm:"type:uuid;primaryKey" db:"id"`
	UserID    UserID     `gorm:"type:uuid;index" db:"user_id"`
	TokenID   uuid.UUID  `gorm:"type:uuid;uniqueIndex:ux_sessions_tokenid" db:"token_id"`
	ExpiresAt time.Time  `gorm:"not null" db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `gorm:"not null" db:"created_at"`
	IP        string     `gorm:"type:varchar(64)" db:"ip"`
	UserAgent string     `gorm:"type:text" db:"user_agent"`
}

func (Session) TableName() string { return "sessions" }

// ActiveAt reports whether the session is neither revoked nor expired.
func (s *Session) ActiveAt(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
