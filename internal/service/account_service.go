package service

import (
	"context"

	"accounts/internal/domain"
	"accounts/internal/dto"
)

type AccountService interface {
	CreateUser(ctx context.Context, r dto.CreateUserRequest) (*domain.User, error)
	CreateStaffUser(ctx context.Context, email, password string) (*domain.User, error)
	CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sess *domain.Session) error
	Deactivate(ctx context.Context, email string) (int64, error)
}
