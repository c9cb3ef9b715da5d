package lockout

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreLocksAfterThreshold(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(Policy{MaxFailures: 3, Window: 15 * time.Minute})
	s.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if _, err := s.Fail(ctx, "a@example.com"); err != nil {
			t.Fatalf("fail: %v", err)
		}
	}
	if locked, _, _ := s.Locked(ctx, "a@example.com"); locked {
		t.Fatalf("locked before threshold")
	}

	if n, _ := s.Fail(ctx, "a@example.com"); n != 3 {
		t.Fatalf("expected third failure, got %d", n)
	}
	locked, remaining, err := s.Locked(ctx, "a@example.com")
	if err != nil || !locked {
		t.Fatalf("expected lockout, got locked=%v err=%v", locked, err)
	}
	if remaining != 15*time.Minute {
		t.Fatalf("unexpected remaining %v", remaining)
	}

	now = now.Add(16 * time.Minute)
	if locked, _, _ := s.Locked(ctx, "a@example.com"); locked {
		t.Fatalf("lockout should lapse after the window")
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Policy{MaxFailures: 1, Window: time.Minute})

	_, _ = s.Fail(ctx, "k")
	if locked, _, _ := s.Locked(ctx, "k"); !locked {
		t.Fatalf("expected lockout")
	}
	if err := s.Reset(ctx, "k"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if locked, _, _ := s.Locked(ctx, "k"); locked {
		t.Fatalf("reset should clear lockout")
	}
}

func TestDisabledPolicyNeverLocks(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Policy{})
	for i := 0; i < 10; i++ {
		_, _ = s.Fail(ctx, "k")
	}
	if locked, _, _ := s.Locked(ctx, "k"); locked {
		t.Fatalf("disabled policy locked a key")
	}
}
