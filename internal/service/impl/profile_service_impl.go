package impl

import (
	"context"
	"errors"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/events"
	"accounts/internal/observability/middleware"
	"accounts/internal/service"
	"accounts/internal/store"
)

type ProfileServiceImpl struct {
	Store  *store.Store
	Events service.EventPublisher
}

func NewProfileServiceImpl(st *store.Store, publisher service.EventPublisher) *ProfileServiceImpl {
	return &ProfileServiceImpl{Store: st, Events: publisher}
}

func (p *ProfileServiceImpl) load(ctx context.Context, userID domain.UserID) (*domain.User, *domain.Profile, error) {
	user, err := p.Store.Users().GetByID(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	profile, err := p.Store.Profiles().GetByUserID(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

func (p *ProfileServiceImpl) Get(ctx context.Context, userID domain.UserID) (*dto.ProfileResponse, error) {
	user, profile, err := p.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(user, profile), nil
}

func (p *ProfileServiceImpl) Update(ctx context.Context, userID domain.UserID, r dto.ProfileUpdateRequest) (*dto.ProfileResponse, error) {
	user, profile, err := p.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Shop = r.Shop
	profile.Location = nil
	if r.Location != "" {
		loc := r.Location
		profile.Location = &loc
	}
	profile.Merchant = r.Merchant
	if err := p.Store.Profiles().Update(ctx, profile); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	middleware.LoggerFromContext(ctx).Info("profile updated", "user_id", userID, "merchant", profile.Merchant)
	if p.Events != nil {
		evt := events.ProfileUpdated{UserID: userID.String(), Shop: profile.Shop, Merchant: profile.Merchant, At: time.Now().UTC()}
		if err := p.Events.Publish(ctx, events.TypeProfileUpdated, evt, userID.String()); err != nil {
			middleware.LoggerFromContext(ctx).Warn("publish event failed", "event_type", events.TypeProfileUpdated, "err", err)
		}
	}
	return toProfileResponse(user, profile), nil
}

// MerchantDashboard returns domain.ErrNotMerchant for non-merchant profiles.
func (p *ProfileServiceImpl) MerchantDashboard(ctx context.Context, userID domain.UserID) (*dto.DashboardResponse, error) {
	user, profile, err := p.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.IsMerchant() {
		return nil, domain.ErrNotMerchant
	}
	return &dto.DashboardResponse{Email: user.Email, Shop: profile.Shop, Location: profile.LocationOrEmpty()}, nil
}

func toProfileResponse(user *domain.User, profile *domain.Profile) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ProfileID: profile.ID.String(),
		Email:     user.Email,
		Shop:      profile.Shop,
		Location:  profile.LocationOrEmpty(),
		Merchant:  profile.Merchant,
	}
}
