package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/events"
	"accounts/internal/observability/metrics"
	"accounts/internal/observability/middleware"
	"accounts/internal/service"
	"accounts/internal/store"
)

type AccountConfig struct {
	// ActivationDays is the confirmation window for new activations.
	ActivationDays int
}

type AccountServiceImpl struct {
	Store           *store.Store
	PasswordService service.PasswordService
	Sessions        service.SessionService
	Mailer          service.ActivationMailer
	Limiter         service.LoginLimiter
	Events          service.EventPublisher

	cfg AccountConfig
	now func() time.Time
}

func NewAccountServiceImpl(
	cfg AccountConfig,
	st *store.Store,
	passwords service.PasswordService,
	sessions service.SessionService,
	mailer service.ActivationMailer,
	limiter service.LoginLimiter,
	publisher service.EventPublisher,
) *AccountServiceImpl {
	if cfg.ActivationDays <= 0 {
		cfg.ActivationDays = domain.DefaultActivationDays
	}
	return &AccountServiceImpl{
		Store:           st,
		PasswordService: passwords,
		Sessions:        sessions,
		Mailer:          mailer,
		Limiter:         limiter,
		Events:          publisher,
		cfg:             cfg,
		now:             time.Now,
	}
}

// CreateUser stores a user with a hashed password. The user's profile and
// first activation are created with it and the activation link is mailed
// once the transaction has committed.
func (a *AccountServiceImpl) CreateUser(ctx context.Context, r dto.CreateUserRequest) (*domain.User, error) {
	user, _, err := a.createUser(ctx, r)
	return user, err
}

func (a *AccountServiceImpl) createUser(ctx context.Context, r dto.CreateUserRequest) (*domain.User, bool, error) {
	if a.Store == nil {
		return nil, false, ErrNilStore
	}
	email := domain.NormalizeEmail(r.Email)
	if email == "" {
		return nil, false, domain.ErrEmailRequired
	}
	if r.Password == "" {
		return nil, false, domain.ErrPasswordRequired
	}

	hash, salt, paramsJSON, algo, ver, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	var user *domain.User
	err = a.Store.WithTx(ctx, func(tx *store.Store) error {
		taken, err := tx.Users().EmailTaken(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailExists
		}

		u := &domain.User{
			Email:          email,
			IsActive:       r.Active,
			Staff:          r.Staff || r.Admin,
			Admin:          r.Admin,
			ActivationDays: a.cfg.ActivationDays,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return domain.ErrEmailExists
			}
			return err
		}

		cred := &domain.PasswordCredential{
			UserID:      u.ID,
			Algo:        algo,
			Hash:        hash,
			Salt:        salt,
			ParamsJSON:  paramsJSON,
			PasswordVer: ver,
		}
		if err := tx.Credentials().UpsertPassword(ctx, cred); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	logger := middleware.LoggerFromContext(ctx)
	logger.Info("user created", "user_id", user.ID, "active", user.IsActive, "staff", user.Staff, "admin", user.Admin)

	sent := a.sendFirstActivation(ctx, logger, user)
	a.publish(ctx, events.TypeUserRegistered, events.UserRegistered{
		UserID: user.ID.String(),
		Email:  user.Email,
		Active: user.IsActive,
		At:     user.Timestamp,
	}, user.ID.String())

	return user, sent, nil
}

func (a *AccountServiceImpl) CreateStaffUser(ctx context.Context, email, password string) (*domain.User, error) {
	return a.createWithRoles(ctx, email, password, true, false)
}

func (a *AccountServiceImpl) CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	return a.createWithRoles(ctx, email, password, true, true)
}

// createWithRoles creates an active user and then grants the roles.
func (a *AccountServiceImpl) createWithRoles(ctx context.Context, email, password string, staff, admin bool) (*domain.User, error) {
	user, err := a.CreateUser(ctx, dto.CreateUserRequest{Email: email, Password: password, Active: true})
	if err != nil {
		return nil, err
	}
	if err := a.Store.Users().SetRoles(ctx, user.ID, staff, admin); err != nil {
		return nil, fmt.Errorf("set roles: %w", err)
	}
	user.Staff, user.Admin = staff, admin
	middleware.LoggerFromContext(ctx).Info("user roles granted", "user_id", user.ID, "staff", staff, "admin", admin)
	return user, nil
}

// Register creates an inactive user who must confirm their email before logging in.
func (a *AccountServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error) {
	user, sent, err := a.createUser(ctx, dto.CreateUserRequest{Email: r.Email, Password: r.Password})
	if err != nil {
		result := "failure"
		if errors.Is(err, domain.ErrEmailExists) {
			result = "duplicate"
		}
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	return &dto.RegisterResponse{
		UserID:                    user.ID.String(),
		Email:                     user.Email,
		RequiresEmailVerification: !user.IsActive,
		ActivationSent:            sent,
	}, nil
}

// Login checks the password first and only then reports why an inactive
// account cannot sign in.
func (a *AccountServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error) {
	result := "success"
	defer func() {
		metrics.LoginsTotal.WithLabelValues(result).Inc()
	}()

	email := domain.NormalizeEmail(r.Email)
	if email == "" || r.Password == "" {
		result = "invalid"
		return nil, domain.ErrInvalidCredentials
	}
	lockKey := strings.ToLower(email)

	if a.Limiter != nil {
		locked, _, err := a.Limiter.Locked(ctx, lockKey)
		if err != nil {
			middleware.LoggerFromContext(ctx).Warn("lockout lookup failed", "err", err)
		} else if locked {
			result = "locked"
			return nil, domain.ErrLockedOut
		}
	}

	user, err := a.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			result = "failure"
			return nil, err
		}
		result = "invalid"
		a.recordFailure(ctx, lockKey)
		return nil, domain.ErrInvalidCredentials
	}

	cred, err := a.Store.Credentials().GetPasswordByUserID(ctx, user.ID)
	if err != nil {
		result = "invalid"
		a.recordFailure(ctx, lockKey)
		return nil, domain.ErrInvalidCredentials
	}
	rehashNeeded, ok := a.PasswordService.Verify(r.Password, cred)
	if !ok {
		result = "invalid"
		a.recordFailure(ctx, lockKey)
		return nil, domain.ErrInvalidCredentials
	}
	if rehashNeeded {
		a.rehash(ctx, cred, r.Password)
	}
	if a.Limiter != nil {
		if err := a.Limiter.Reset(ctx, lockKey); err != nil {
			middleware.LoggerFromContext(ctx).Warn("lockout reset failed", "err", err)
		}
	}

	if !user.IsActive {
		result = "inactive"
		return nil, a.inactiveReason(ctx, user)
	}

	tok, err := a.Sessions.Issue(ctx, user, ip, ua)
	if err != nil {
		result = "failure"
		return nil, err
	}
	return &dto.LoginResponse{
		UserID:    user.ID.String(),
		Email:     user.Email,
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

func (a *AccountServiceImpl) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return domain.ErrSessionInvalid
	}
	if err := a.Sessions.Revoke(ctx, sess.ID); err != nil {
		return err
	}
	a.publish(ctx, events.TypeSessionRevoked, events.SessionRevoked{
		SessionID: sess.ID.String(),
		UserID:    sess.UserID.String(),
		At:        a.now().UTC(),
	}, sess.UserID.String())
	return nil
}

// Deactivate marks the user inactive and revokes every open session. It
// returns the number of sessions revoked.
func (a *AccountServiceImpl) Deactivate(ctx context.Context, email string) (int64, error) {
	user, err := a.Store.Users().GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrRecordNotFound) {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	now := a.now().UTC()
	var revoked int64
	err = a.Store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Users().SetActive(ctx, user.ID, false); err != nil {
			return err
		}
		n, err := tx.Sessions().RevokeAllForUser(ctx, user.ID, now)
		if err != nil {
			return err
		}
		revoked = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deactivate user: %w", err)
	}

	middleware.LoggerFromContext(ctx).Info("user deactivated", "user_id", user.ID, "sessions_revoked", revoked)
	a.publish(ctx, events.TypeUserDeactivated, events.UserDeactivated{
		UserID:          user.ID.String(),
		Email:           user.Email,
		SessionsRevoked: revoked,
		At:              now,
	}, user.ID.String())
	return revoked, nil
}

// inactiveReason distinguishes a pending confirmation, a lapsed one and a
// deactivated account.
func (a *AccountServiceImpl) inactiveReason(ctx context.Context, user *domain.User) error {
	acts := a.Store.Activations()
	confirmable, err := acts.ConfirmableForEmail(ctx, user.Email, a.now(), a.cfg.ActivationDays)
	if err != nil {
		return err
	}
	if len(confirmable) > 0 {
		return domain.ErrConfirmationPending
	}
	pending, err := acts.EmailExists(ctx, user.Email)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return domain.ErrEmailNotConfirmed
	}
	return domain.ErrUserInactive
}

func (a *AccountServiceImpl) rehash(ctx context.Context, cred *domain.PasswordCredential, password string) {
	hash, salt, paramsJSON, algo, ver, err := a.PasswordService.Hash(password)
	if err == nil {
		cred.Algo, cred.Hash, cred.Salt, cred.ParamsJSON, cred.PasswordVer = algo, hash, salt, paramsJSON, ver
		err = a.Store.Credentials().UpsertPassword(ctx, cred)
	}
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("password rehash failed", "user_id", cred.UserID, "err", err)
	}
}

func (a *AccountServiceImpl) recordFailure(ctx context.Context, key string) {
	if a.Limiter == nil {
		return
	}
	if _, err := a.Limiter.Fail(ctx, key); err != nil {
		middleware.LoggerFromContext(ctx).Warn("lockout update failed", "err", err)
	}
}

func (a *AccountServiceImpl) sendFirstActivation(ctx context.Context, logger *slog.Logger, user *domain.User) bool {
	if a.Mailer == nil {
		return false
	}
	act, err := a.Store.Activations().LatestForUser(ctx, user.ID)
	if err != nil {
		logger.Error("load activation failed", "user_id", user.ID, "err", err)
		return false
	}
	sent, err := a.Mailer.Send(ctx, act)
	if err != nil {
		logger.Error("activation email failed", "user_id", user.ID, "err", err)
	}
	return sent
}

func (a *AccountServiceImpl) publish(ctx context.Context, eventType string, payload any, key string) {
	if a.Events == nil {
		return
	}
	if err := a.Events.Publish(ctx, eventType, payload, key); err != nil {
		middleware.LoggerFromContext(ctx).Warn("publish event failed", "event_type", eventType, "err", err)
	}
}
