package web

import (
	"context"
	"errors"
	"net/http"

	"accounts/internal/domain"
	"accounts/internal/httpx"
	"accounts/internal/netutil"
	obsmw "accounts/internal/observability/middleware"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeySession
)

func currentUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(ctxKeyUser).(*domain.User)
	return u
}

func currentSession(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(ctxKeySession).(*domain.Session)
	return sess
}

// loadSession resolves the session cookie into the request context. Invalid
// cookies are cleared and the request continues anonymously.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := httpx.ReadSession(r)
		if !ok || s.svc.Sessions == nil {
			next.ServeHTTP(w, r)
			return
		}
		sess, user, err := s.svc.Sessions.Resolve(r.Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionInvalid) {
				obsmw.LoggerFromContext(r.Context()).Warn("session lookup failed", "err", err)
			}
			httpx.ClearSession(w, s.cookies)
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		ctx = context.WithValue(ctx, ctxKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request, trustProxy bool) string {
	return netutil.ClientIP(r, trustProxy)
}
