package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/events"
)

func TestRegisterCreatesInactiveUserWithProfileAndActivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.accounts.Register(ctx, dto.RegisterRequest{Email: "Buyer@Example.COM", Password: "s3cretpass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !resp.RequiresEmailVerification || !resp.ActivationSent {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Email != "Buyer@example.com" {
		t.Fatalf("expected domain part lower-cased, got %q", resp.Email)
	}

	user, err := f.store.Users().GetByEmail(ctx, "buyer@example.com")
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.IsActive {
		t.Fatalf("registered users start inactive")
	}
	if n, _ := f.store.Profiles().CountByUserID(ctx, user.ID); n != 1 {
		t.Fatalf("expected one profile, got %d", n)
	}
	if n, _ := f.store.Activations().CountForUser(ctx, user.ID); n != 1 {
		t.Fatalf("expected one activation, got %d", n)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].Email != user.Email {
		t.Fatalf("expected one activation email to %s, got %+v", user.Email, f.mailer.sent)
	}
	if got := f.publisher.types(); len(got) != 1 || got[0] != events.TypeUserRegistered {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.accounts.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "s3cretpass"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := f.accounts.Register(ctx, dto.RegisterRequest{Email: "A@EXAMPLE.com", Password: "s3cretpass"})
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestCreateUserRequiresEmailAndPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.accounts.CreateUser(ctx, dto.CreateUserRequest{Password: "x"}); !errors.Is(err, domain.ErrEmailRequired) {
		t.Fatalf("expected ErrEmailRequired, got %v", err)
	}
	if _, err := f.accounts.CreateUser(ctx, dto.CreateUserRequest{Email: "a@example.com"}); !errors.Is(err, domain.ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
	if len(f.passwords.hashCalls) != 0 {
		t.Fatalf("password hashed before validation: %v", f.passwords.hashCalls)
	}
}

func TestCreateStaffAndSuperuser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	staff, err := f.accounts.CreateStaffUser(ctx, "staff@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("staff: %v", err)
	}
	if !staff.IsActive || !staff.IsStaff() || staff.IsAdmin() {
		t.Fatalf("unexpected staff flags: %+v", staff)
	}

	admin, err := f.accounts.CreateSuperuser(ctx, "admin@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("superuser: %v", err)
	}
	stored, err := f.store.Users().GetByID(ctx, admin.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !stored.IsActive || !stored.IsStaff() || !stored.IsAdmin() {
		t.Fatalf("unexpected superuser flags: %+v", stored)
	}
	if n, _ := f.store.Profiles().CountByUserID(ctx, admin.ID); n != 1 {
		t.Fatalf("superuser should have a profile, got %d", n)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.accounts.CreateUser(ctx, dto.CreateUserRequest{Email: "a@example.com", Password: "s3cretpass", Active: true}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []dto.LoginRequest{
		{Email: "a@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "s3cretpass"},
		{Email: "a@example.com"},
	}
	for _, tc := range cases {
		if _, err := f.accounts.Login(ctx, tc, "127.0.0.1", "test"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("login %+v: expected ErrInvalidCredentials, got %v", tc, err)
		}
	}
}

func TestLoginLocksOutAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.accounts.CreateUser(ctx, dto.CreateUserRequest{Email: "a@example.com", Password: "s3cretpass", Active: true}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, _ = f.accounts.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "wrong"}, "", "")
	}
	_, err := f.accounts.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "s3cretpass"}, "", "")
	if !errors.Is(err, domain.ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut, got %v", err)
	}
}

func TestLoginInactiveUserReasons(t *testing.T) {
	t.Run("pending confirmation", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		if _, err := f.accounts.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "s3cretpass"}); err != nil {
			t.Fatalf("register: %v", err)
		}
		_, err := f.accounts.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "s3cretpass"}, "", "")
		if !errors.Is(err, domain.ErrConfirmationPending) {
			t.Fatalf("expected ErrConfirmationPending, got %v", err)
		}
	})

	t.Run("lapsed confirmation", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		if _, err := f.accounts.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "s3cretpass"}); err != nil {
			t.Fatalf("register: %v", err)
		}
		f.advance(8 * 24 * time.Hour)
		_, err := f.accounts.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "s3cretpass"}, "", "")
		if !errors.Is(err, domain.ErrEmailNotConfirmed) {
			t.Fatalf("expected ErrEmailNotConfirmed, got %v", err)
		}
	})

	t.Run("deactivated", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		user, err := f.accounts.CreateUser(ctx, dto.CreateUserRequest{Email: "a@example.com", Password: "s3cretpass", Active: true})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		act, err := f.store.Activations().LatestForUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("activation: %v", err)
		}
		if err := f.store.Activations().MarkActivated(ctx, act.ID, time.Now()); err != nil {
			t.Fatalf("mark activated: %v", err)
		}
		if err := f.store.Users().SetActive(ctx, user.ID, false); err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		_, err = f.accounts.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "s3cretpass"}, "", "")
		if !errors.Is(err, domain.ErrUserInactive) {
			t.Fatalf("expected ErrUserInactive, got %v", err)
		}
	})
}

func TestLoginIssuesSessionAndLogoutRevokesIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.accounts.CreateUser(ctx, dto.CreateUserRequest{Email: "a@example.com", Password: "s3cretpass", Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, err := f.accounts.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "s3cretpass"}, "192.0.2.1:4000", "go-test")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	sess, resolved, err := f.sessions.Resolve(ctx, resp.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("resolved wrong user")
	}
	if sess.IP != "192.0.2.1" || sess.UserAgent != "go-test" {
		t.Fatalf("session metadata not stored: %+v", sess)
	}

	if err := f.accounts.Logout(ctx, sess); err != nil {
		t.Fatalf("logout: %v", err)
	}
	evt, ok := f.publisher.last(events.TypeSessionRevoked)
	if !ok {
		t.Fatalf("expected %s event", events.TypeSessionRevoked)
	}
	revoked := evt.payload.(events.SessionRevoked)
	if revoked.UserID != user.ID.String() || revoked.SessionID != sess.ID.String() {
		t.Fatalf("unexpected session.revoked payload: %+v", revoked)
	}
	if _, _, err := f.sessions.Resolve(ctx, resp.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected revoked session to be invalid, got %v", err)
	}
}

func TestDeactivateRevokesEverySession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.accounts.CreateUser(ctx, dto.CreateUserRequest{Email: "a@example.com", Password: "s3cretpass", Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var tokens []string
	for i := 0; i < 2; i++ {
		resp, err := f.accounts.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "s3cretpass"}, "", "")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		tokens = append(tokens, resp.Token)
	}

	n, err := f.accounts.Deactivate(ctx, "a@EXAMPLE.com")
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 revoked sessions, got %d", n)
	}
	stored, _ := f.store.Users().GetByID(ctx, user.ID)
	if stored.IsActive {
		t.Fatalf("user should be inactive")
	}
	for _, tok := range tokens {
		if _, _, err := f.sessions.Resolve(ctx, tok); !errors.Is(err, domain.ErrSessionInvalid) {
			t.Fatalf("expected revoked session, got %v", err)
		}
	}
	if _, err := f.accounts.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "s3cretpass"}, "", ""); err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected an inactive-account error after deactivation, got %v", err)
	}
	if _, ok := f.publisher.last(events.TypeUserDeactivated); !ok {
		t.Fatalf("expected %s event", events.TypeUserDeactivated)
	}

	if _, err := f.accounts.Deactivate(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
