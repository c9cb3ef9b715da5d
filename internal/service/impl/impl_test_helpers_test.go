package impl

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"accounts/internal/domain"
	"accounts/internal/lockout"
	"accounts/internal/service"
	"accounts/internal/store"
	"accounts/internal/store/storetest"
)

// stubPasswordService stores passwords verbatim so tests skip argon2's cost.
type stubPasswordService struct {
	hashCalls []string
}

func (s *stubPasswordService) Hash(password string) (hash, salt, paramsJSON []byte, algo string, ver int, err error) {
	s.hashCalls = append(s.hashCalls, password)
	if password == "" {
		return nil, nil, nil, "", 0, ErrEmptyPassword
	}
	return []byte(password), []byte("salt"), []byte("{}"), "plain", 1, nil
}

func (s *stubPasswordService) Verify(password string, cred service.PasswordCredential) (bool, bool) {
	return false, cred.GetAlgo() == "plain" && bytes.Equal(cred.GetHash(), []byte(password))
}

type stubMailer struct {
	mu   sync.Mutex
	sent []domain.EmailActivation
	err  error
}

func (m *stubMailer) Send(ctx context.Context, act *domain.EmailActivation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if act.Activated || act.ForcedExpired || act.KeyValue() == "" {
		return false, nil
	}
	m.sent = append(m.sent, *act)
	return true, nil
}

type publishedEvent struct {
	eventType string
	key       string
	payload   any
}

type stubPublisher struct {
	events []publishedEvent
}

func (p *stubPublisher) Publish(ctx context.Context, eventType string, payload any, key string) error {
	p.events = append(p.events, publishedEvent{eventType: eventType, key: key, payload: payload})
	return nil
}

// last returns the most recent event of eventType.
func (p *stubPublisher) last(eventType string) (publishedEvent, bool) {
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].eventType == eventType {
			return p.events[i], true
		}
	}
	return publishedEvent{}, false
}

func (p *stubPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

type fixture struct {
	store       *store.Store
	passwords   *stubPasswordService
	mailer      *stubMailer
	publisher   *stubPublisher
	limiter     *lockout.MemoryStore
	sessions    *SessionServiceImpl
	accounts    *AccountServiceImpl
	activations *ActivationServiceImpl
	profiles    *ProfileServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := storetest.Open(t)
	f := &fixture{
		store:     st,
		passwords: &stubPasswordService{},
		mailer:    &stubMailer{},
		publisher: &stubPublisher{},
		limiter:   lockout.NewMemoryStore(lockout.Policy{MaxFailures: 3, Window: time.Minute}),
	}
	f.sessions = NewSessionServiceHS256(SessionConfig{
		Issuer:     "accounts-test",
		TTL:        time.Hour,
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
	}, st)
	f.accounts = NewAccountServiceImpl(AccountConfig{ActivationDays: 7}, st, f.passwords, f.sessions, f.mailer, f.limiter, f.publisher)
	f.activations = NewActivationServiceImpl(7, st, f.mailer, f.publisher)
	f.profiles = NewProfileServiceImpl(st, f.publisher)
	return f
}

// advance moves the clock of every time-aware service forward by d.
func (f *fixture) advance(d time.Duration) {
	now := func() time.Time { return time.Now().Add(d) }
	f.accounts.now = now
	f.activations.now = now
	f.sessions.now = now
}
