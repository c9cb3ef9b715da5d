package service

import (
	"context"

	"accounts/internal/domain"
	"accounts/internal/dto"
)

type ProfileService interface {
	Get(ctx context.Context, userID domain.UserID) (*dto.ProfileResponse, error)
	Update(ctx context.Context, userID domain.UserID, r dto.ProfileUpdateRequest) (*dto.ProfileResponse, error)
	MerchantDashboard(ctx context.Context, userID domain.UserID) (*dto.DashboardResponse, error)
}
