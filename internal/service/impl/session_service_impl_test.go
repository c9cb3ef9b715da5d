package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/store"
)

func activeUser(t *testing.T, f *fixture) *domain.User {
	t.Helper()
	user, err := f.accounts.CreateUser(context.Background(), dto.CreateUserRequest{Email: "a@example.com", Password: "s3cretpass", Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return user
}

func TestSessionResolveRejectsTamperedAndForeignTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := activeUser(t, f)

	tok, err := f.sessions.Issue(ctx, user, "", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewSessionServiceHS256(SessionConfig{Issuer: "accounts-test", TTL: time.Hour, SigningKey: []byte("another-secret-another-secret-!!")}, f.store)
	if _, _, err := other.Resolve(ctx, tok.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("token signed with another key should be invalid, got %v", err)
	}
	if _, _, err := f.sessions.Resolve(ctx, tok.Token+"x"); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("tampered token should be invalid, got %v", err)
	}
	if _, _, err := f.sessions.Resolve(ctx, ""); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("empty token should be invalid, got %v", err)
	}
}

func TestSessionExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := activeUser(t, f)

	tok, err := f.sessions.Issue(ctx, user, "", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	f.advance(2 * time.Hour)
	if _, _, err := f.sessions.Resolve(ctx, tok.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expired session should be invalid, got %v", err)
	}
}

func TestSessionOfDeactivatedUserIsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := activeUser(t, f)

	tok, err := f.sessions.Issue(ctx, user, "", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := f.store.Users().SetActive(ctx, user.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, _, err := f.sessions.Resolve(ctx, tok.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestPruneExpiredSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := activeUser(t, f)

	tok, err := f.sessions.Issue(ctx, user, "", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sess, _, err := f.sessions.Resolve(ctx, tok.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if n, err := f.sessions.PruneExpired(ctx, 0); err != nil || n != 0 {
		t.Fatalf("live session must survive, n=%d err=%v", n, err)
	}
	f.advance(2 * time.Hour)
	if n, err := f.sessions.PruneExpired(ctx, 2*time.Hour); err != nil || n != 0 {
		t.Fatalf("session inside the grace period must survive, n=%d err=%v", n, err)
	}
	if n, err := f.sessions.PruneExpired(ctx, 0); err != nil || n != 1 {
		t.Fatalf("expected one pruned session, n=%d err=%v", n, err)
	}
	if _, err := f.store.Sessions().GetByTokenID(ctx, sess.TokenID); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("expected pruned session to be gone, got %v", err)
	}
}
