package impl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/netutil"
	"accounts/internal/observability/metrics"
	"accounts/internal/observability/middleware"
	"accounts/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type SessionConfig struct {
	Issuer     string        // e.g. "accounts"
	TTL        time.Duration // cookie and row lifetime
	SigningKey []byte        // HS256 secret
}

// SessionClaims binds a cookie to a session row. The JWT id is the row's
// token id, so a revoked or replaced row invalidates the cookie.
type SessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

type SessionServiceImpl struct {
	cfg   SessionConfig
	store *store.Store
	now   func() time.Time
}

func NewSessionServiceHS256(cfg SessionConfig, st *store.Store) *SessionServiceImpl {
	return &SessionServiceImpl{cfg: cfg, store: st, now: time.Now}
}

func (s *SessionServiceImpl) Issue(ctx context.Context, user *domain.User, ip, ua string) (*dto.SessionToken, error) {
	result := "issued"
	defer func() {
		metrics.SessionsTotal.WithLabelValues(result).Inc()
	}()
	now := s.now().UTC()

	sess := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenID:   uuid.New(),
		ExpiresAt: now.Add(s.cfg.TTL),
		CreatedAt: now,
		IP:        normalizeIP(ip),
		UserAgent: netutil.TruncateUserAgent(ua),
	}
	if err := s.store.Sessions().Create(ctx, sess); err != nil {
		result = "failure"
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.sign(user.ID, sess, now)
	if err != nil {
		result = "failure"
		return nil, err
	}

	middleware.LoggerFromContext(ctx).Info("issued session", "session_id", sess.ID, "user_id", user.ID)

	return &dto.SessionToken{
		SessionID: sess.ID.String(),
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

func (s *SessionServiceImpl) Resolve(ctx context.Context, token string) (*domain.Session, *domain.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, nil, domain.ErrSessionInvalid
	}
	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, nil, domain.ErrSessionInvalid
	}

	sess, err := s.store.Sessions().GetByTokenID(ctx, tokenID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, nil, domain.ErrSessionInvalid
	}
	if err != nil {
		return nil, nil, err
	}
	if sess.ID.String() != claims.SID || !sess.ActiveAt(s.now().UTC()) {
		return nil, nil, domain.ErrSessionInvalid
	}

	user, err := s.store.Users().GetByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, nil, domain.ErrSessionInvalid
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, domain.ErrSessionInvalid
	}
	return sess, user, nil
}

func (s *SessionServiceImpl) Revoke(ctx context.Context, sessionID domain.SessionID) error {
	if err := s.store.Sessions().Revoke(ctx, sessionID, s.now().UTC()); err != nil {
		return err
	}
	metrics.SessionsTotal.WithLabelValues("revoked").Inc()
	return nil
}

func (s *SessionServiceImpl) PruneExpired(ctx context.Context, grace time.Duration) (int64, error) {
	if grace < 0 {
		grace = 0
	}
	n, err := s.store.Sessions().DeleteExpired(ctx, s.now().UTC().Add(-grace))
	if err != nil {
		return 0, err
	}
	middleware.LoggerFromContext(ctx).Info("pruned expired sessions", "count", n)
	return n, nil
}

func (s *SessionServiceImpl) sign(userID uuid.UUID, sess *domain.Session, now time.Time) (string, error) {
	claims := SessionClaims{
		SID: sess.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sess.TokenID.String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.SigningKey)
}

func (s *SessionServiceImpl) parse(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.cfg.SigningKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func normalizeIP(ip string) string {
	if normalized, ok := netutil.NormalizeIP(ip); ok {
		return normalized
	}
	return strings.TrimSpace(ip)
}
