package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"accounts/internal/domain"

	"github.com/google/uuid"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func activation(key string) *domain.EmailActivation {
	return &domain.EmailActivation{ID: uuid.New(), UserID: uuid.New(), Email: "a@example.com", Key: &key, Expires: 7}
}

func TestSendRendersBothBodies(t *testing.T) {
	sender := &recordingSender{}
	m := NewActivationMailer(Config{BaseURL: "https://shop.example/", From: "noreply@shop.example"}, sender, nil)

	sent, err := m.Send(context.Background(), activation("abc123"))
	if err != nil || !sent {
		t.Fatalf("expected send, got sent=%v err=%v", sent, err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	wantPath := "https://shop.example/email/confirm/abc123/"
	if !strings.Contains(msg.Text, wantPath) || !strings.Contains(msg.HTML, wantPath) {
		t.Fatalf("activation path missing from bodies:\n%s\n%s", msg.Text, msg.HTML)
	}
	if !strings.Contains(msg.Text, "a@example.com") {
		t.Fatalf("email missing from text body: %s", msg.Text)
	}
	if msg.Subject != "Inno Ecommerce" || msg.From != "noreply@shop.example" || msg.To[0] != "a@example.com" {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
}

func TestSendSkipsIneligibleActivations(t *testing.T) {
	sender := &recordingSender{}
	m := NewActivationMailer(Config{BaseURL: "http://localhost"}, sender, nil)

	activated := activation("k1")
	activated.Activated = true
	expired := activation("k2")
	expired.ForcedExpired = true
	noKey := activation("")

	for name, act := range map[string]*domain.EmailActivation{"activated": activated, "expired": expired, "no key": noKey} {
		t.Run(name, func(t *testing.T) {
			sent, err := m.Send(context.Background(), act)
			if err != nil || sent {
				t.Fatalf("expected skip, got sent=%v err=%v", sent, err)
			}
		})
	}
	if len(sender.sent) != 0 {
		t.Fatalf("nothing should have been sent, got %d", len(sender.sent))
	}
}

func TestSendWrapsTransportErrors(t *testing.T) {
	boom := errors.New("smtp down")
	m := NewActivationMailer(Config{BaseURL: "http://localhost"}, &recordingSender{err: boom}, nil)

	sent, err := m.Send(context.Background(), activation("abc"))
	if sent || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got sent=%v err=%v", sent, err)
	}
}
