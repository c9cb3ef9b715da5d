package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"accounts/internal/domain"
	"accounts/internal/store"
	"accounts/internal/store/storetest"
)

func createUser(t *testing.T, st *store.Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email}
	if err := st.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestCreateUserAddsProfileAndActivation(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()

	u := createUser(t, st, "alice@example.com")

	profiles, err := st.Profiles().CountByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if profiles != 1 {
		t.Fatalf("expected exactly one profile, got %d", profiles)
	}
	activations, err := st.Activations().CountForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("count activations: %v", err)
	}
	if activations != 1 {
		t.Fatalf("expected exactly one activation, got %d", activations)
	}

	act, err := st.Activations().LatestForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("latest activation: %v", err)
	}
	if act.Email != u.Email {
		t.Fatalf("activation email = %q, want %q", act.Email, u.Email)
	}
	if n := len(act.KeyValue()); n < 30 || n > 45 {
		t.Fatalf("unexpected key length %d", n)
	}
	if act.Expires != domain.DefaultActivationDays {
		t.Fatalf("expires = %d, want %d", act.Expires, domain.DefaultActivationDays)
	}
}

func TestCreateUserDuplicateEmailFails(t *testing.T) {
	st := storetest.Open(t)
	createUser(t, st, "dup@example.com")

	if err := st.Users().Create(context.Background(), &domain.User{Email: "dup@example.com"}); err == nil {
		t.Fatalf("expected unique violation for duplicate email")
	}
}

func TestEmailUniqueIgnoresCase(t *testing.T) {
	st := storetest.Open(t)
	createUser(t, st, "Dana@example.com")

	err := st.Users().Create(context.Background(), &domain.User{Email: "dana@example.com"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for an email differing only in case, got %v", err)
	}
}

func TestGetByEmailIsCaseInsensitive(t *testing.T) {
	st := storetest.Open(t)
	u := createUser(t, st, "Bob@example.com")

	got, err := st.Users().GetByEmail(context.Background(), "bob@EXAMPLE.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("got user %s, want %s", got.ID, u.ID)
	}
	if _, err := st.Users().GetByEmail(context.Background(), "nobody@example.com"); err != store.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestConfirmableWindow(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	now := time.Now().UTC()

	cases := []struct {
		name      string
		age       time.Duration
		activated bool
		expired   bool
		want      bool
	}{
		{name: "fresh", age: time.Hour, want: true},
		{name: "inside window", age: 6 * 24 * time.Hour, want: true},
		{name: "just inside window", age: 7*24*time.Hour - time.Minute, want: true},
		{name: "window edge", age: 7 * 24 * time.Hour, want: false},
		{name: "outside window", age: 8 * 24 * time.Hour, want: false},
		{name: "created in the future", age: -time.Hour, want: false},
		{name: "activated", age: time.Hour, activated: true, want: false},
		{name: "forced expired", age: time.Hour, expired: true, want: false},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := createUser(t, st, "window"+string(rune('a'+i))+"@example.com")
			act, err := st.Activations().LatestForUser(ctx, u.ID)
			if err != nil {
				t.Fatalf("latest activation: %v", err)
			}
			err = st.DB.Model(&domain.EmailActivation{}).Where("id = ?", act.ID).UpdateColumns(map[string]any{
				"timestamp":      now.Add(-tc.age),
				"activated":      tc.activated,
				"forced_expired": tc.expired,
			}).Error
			if err != nil {
				t.Fatalf("age activation: %v", err)
			}

			stored, err := st.Activations().GetByID(ctx, act.ID)
			if err != nil {
				t.Fatalf("reload activation: %v", err)
			}
			if got := stored.ConfirmableAt(now, domain.DefaultActivationDays); got != tc.want {
				t.Fatalf("ConfirmableAt = %v, want %v", got, tc.want)
			}

			rows, err := st.Activations().ConfirmableByKey(ctx, act.KeyValue(), now, domain.DefaultActivationDays)
			if err != nil {
				t.Fatalf("confirmable by key: %v", err)
			}
			if (len(rows) == 1) != tc.want {
				t.Fatalf("confirmable rows = %d, want confirmable %v", len(rows), tc.want)
			}
		})
	}
}

func TestFindByKeyIgnoresCase(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	u := createUser(t, st, "carol@example.com")
	act, err := st.Activations().LatestForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("latest activation: %v", err)
	}

	rows, err := st.Activations().FindByKey(ctx, strings.ToUpper(act.KeyValue()))
	if err != nil {
		t.Fatalf("find by key: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != act.ID {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].User == nil || rows[0].User.ID != u.ID {
		t.Fatalf("expected user to be preloaded")
	}
}

func TestEmailExistsMatchesActivationOrUserEmail(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	u := createUser(t, st, "dave@example.com")

	other := &domain.EmailActivation{UserID: u.ID, Email: "dave.alt@example.com"}
	if err := st.Activations().Create(ctx, other); err != nil {
		t.Fatalf("create activation: %v", err)
	}

	byUser, err := st.Activations().EmailExists(ctx, "dave@example.com")
	if err != nil {
		t.Fatalf("email exists: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("expected both activations via user email, got %d", len(byUser))
	}

	byAlt, err := st.Activations().EmailExists(ctx, "DAVE.ALT@example.com")
	if err != nil {
		t.Fatalf("email exists: %v", err)
	}
	if len(byAlt) != 1 || byAlt[0].ID != other.ID {
		t.Fatalf("expected the alternate activation, got %+v", byAlt)
	}

	if err := st.Activations().MarkActivated(ctx, other.ID, time.Now().UTC()); err != nil {
		t.Fatalf("mark activated: %v", err)
	}
	byAlt, err = st.Activations().EmailExists(ctx, "dave.alt@example.com")
	if err != nil {
		t.Fatalf("email exists: %v", err)
	}
	if len(byAlt) != 0 {
		t.Fatalf("activated rows must not match, got %d", len(byAlt))
	}
}

func TestRegenerateAssignsNewKey(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	u := createUser(t, st, "erin@example.com")
	act, err := st.Activations().LatestForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("latest activation: %v", err)
	}
	old := act.KeyValue()

	if err := st.Activations().Regenerate(ctx, act); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if act.KeyValue() == "" || act.KeyValue() == old {
		t.Fatalf("expected a new key, old %q new %q", old, act.KeyValue())
	}

	reloaded, err := st.Activations().GetByID(ctx, act.ID)
	if err != nil {
		t.Fatalf("get activation: %v", err)
	}
	if reloaded.KeyValue() != act.KeyValue() {
		t.Fatalf("stored key %q, want %q", reloaded.KeyValue(), act.KeyValue())
	}
}

func TestExpireStale(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	u := createUser(t, st, "frank@example.com")
	act, err := st.Activations().LatestForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("latest activation: %v", err)
	}

	n, err := st.Activations().ExpireStale(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("expire stale: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one expired row, got %d", n)
	}
	reloaded, err := st.Activations().GetByID(ctx, act.ID)
	if err != nil {
		t.Fatalf("get activation: %v", err)
	}
	if !reloaded.ForcedExpired {
		t.Fatalf("expected forced_expired to be set")
	}
}

func TestProfileUpdate(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	u := createUser(t, st, "gina@example.com")

	p, err := st.Profiles().GetByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	loc := "Lagos"
	p.Shop = "Gina's Goods"
	p.Location = &loc
	p.Merchant = true
	if err := st.Profiles().Update(ctx, p); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	got, err := st.Profiles().GetByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.Shop != "Gina's Goods" || got.LocationOrEmpty() != "Lagos" || !got.IsMerchant() {
		t.Fatalf("unexpected profile: %+v", got)
	}
}
