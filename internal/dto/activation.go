package dto

import "time"

type ActivationResult struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type ResendRequest struct {
	Email string `json:"email"`
}

type ResendResponse struct {
	ActivationID string `json:"activationId"`
	Email        string `json:"email"`
	Sent         bool   `json:"sent"`
}

// ActivationStatus describes one activation row for operators.
type ActivationStatus struct {
	ActivationID  string    `json:"activationId"`
	UserID        string    `json:"userId"`
	Email         string    `json:"email"`
	Activated     bool      `json:"activated"`
	ForcedExpired bool      `json:"forcedExpired"`
	Confirmable   bool      `json:"confirmable"`
	CreatedAt     time.Time `json:"createdAt"`
}
