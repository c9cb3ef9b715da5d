// Package mailer renders and delivers account activation emails.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"net/url"
	"strings"
	texttemplate "text/template"

	"accounts/internal/domain"
	"accounts/internal/observability/metrics"
)

//go:embed templates/*
var templateFS embed.FS

var (
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
)

type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender hands a rendered message to a transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	BaseURL string
	From    string
	Subject string
}

type ActivationMailer struct {
	cfg    Config
	sender Sender
	logger *slog.Logger
}

func NewActivationMailer(cfg Config, sender Sender, logger *slog.Logger) *ActivationMailer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Subject == "" {
		cfg.Subject = "Inno Ecommerce"
	}
	return &ActivationMailer{cfg: cfg, sender: sender, logger: logger}
}

type verifyContext struct {
	Path  string
	Email string
	Days  int
}

// ActivationPath is the confirm URL for key.
func (m *ActivationMailer) ActivationPath(key string) string {
	return strings.TrimRight(m.cfg.BaseURL, "/") + "/email/confirm/" + url.PathEscape(key) + "/"
}

// Send delivers the activation link. It returns false without sending when the
// activation is used, force-expired or has no key.
func (m *ActivationMailer) Send(ctx context.Context, act *domain.EmailActivation) (bool, error) {
	if act == nil || act.Activated || act.ForcedExpired || act.KeyValue() == "" {
		metrics.ActivationEmailsTotal.WithLabelValues("skipped").Inc()
		return false, nil
	}

	data := verifyContext{Path: m.ActivationPath(act.KeyValue()), Email: act.Email, Days: act.Expires}
	var txt, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&txt, "verify.txt", data); err != nil {
		return false, fmt.Errorf("render verify.txt: %w", err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, "verify.html", data); err != nil {
		return false, fmt.Errorf("render verify.html: %w", err)
	}

	msg := Message{
		From:    m.cfg.From,
		To:      []string{act.Email},
		Subject: m.cfg.Subject,
		Text:    txt.String(),
		HTML:    html.String(),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		metrics.ActivationEmailsTotal.WithLabelValues("failure").Inc()
		return false, fmt.Errorf("send activation email: %w", err)
	}
	metrics.ActivationEmailsTotal.WithLabelValues("sent").Inc()
	m.logger.InfoContext(ctx, "activation email sent", "activation_id", act.ID, "user_id", act.UserID)
	return true, nil
}
