package dto

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type RegisterResponse struct {
	UserID                    string `json:"userId"`
	Email                     string `json:"email"`
	RequiresEmailVerification bool   `json:"requiresEmailVerification"`
	ActivationSent            bool   `json:"activationSent"`
}

// CreateUserRequest backs the administrative user creation paths.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Active   bool   `json:"active"`
	Staff    bool   `json:"staff"`
	Admin    bool   `json:"admin"`
}
