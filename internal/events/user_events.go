package events

import "time"

const (
	TypeUserRegistered  = "user.registered"
	TypeEmailActivated  = "email.activated"
	TypeProfileUpdated  = "profile.updated"
	TypeSessionRevoked  = "session.revoked"
	TypeUserDeactivated = "user.deactivated"
)

type UserRegistered struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Active bool      `json:"active"`
	At     time.Time `json:"at"`
}

type EmailActivated struct {
	UserID       string    `json:"userId"`
	ActivationID string    `json:"activationId"`
	Email        string    `json:"email"`
	At           time.Time `json:"at"`
}

type ProfileUpdated struct {
	UserID   string    `json:"userId"`
	Shop     string    `json:"shop"`
	Merchant bool      `json:"merchant"`
	At       time.Time `json:"at"`
}

type SessionRevoked struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	At        time.Time `json:"at"`
}

type UserDeactivated struct {
	UserID          string    `json:"userId"`
	Email           string    `json:"email"`
	SessionsRevoked int64     `json:"sessionsRevoked"`
	At              time.Time `json:"at"`
}
