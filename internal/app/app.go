// Package app wires configuration into stores, services and transports.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"accounts/internal/config"
	"accounts/internal/db"
	"accounts/internal/events"
	"accounts/internal/lockout"
	"accounts/internal/mailer"
	"accounts/internal/service"
	"accounts/internal/service/impl"
	"accounts/internal/store"
	"accounts/internal/web"
)

type App struct {
	Store       *store.Store
	Accounts    *impl.AccountServiceImpl
	Activations *impl.ActivationServiceImpl
	Profiles    *impl.ProfileServiceImpl
	Sessions    *impl.SessionServiceImpl

	closers []func() error
}

// New opens the database and builds every service. Close releases the
// connections it opened.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	gdb, err := db.Open(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL, MaxOpenConns: 20, MaxIdleConns: 5})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &App{}
	if sqlDB, err := gdb.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	if err := a.assemble(ctx, cfg, store.New(gdb), logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// FromStore builds the services on a store the caller owns; Close leaves it open.
func FromStore(ctx context.Context, cfg config.Config, st *store.Store, logger *slog.Logger) (*App, error) {
	a := &App{}
	if err := a.assemble(ctx, cfg, st, logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) assemble(ctx context.Context, cfg config.Config, st *store.Store, logger *slog.Logger) error {
	a.Store = st

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}
	activationMailer := mailer.NewActivationMailer(mailer.Config{
		BaseURL: cfg.BaseURL,
		From:    cfg.DefaultFromEmail,
		Subject: cfg.EmailSubject,
	}, sender, logger)

	limiter, err := a.newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	publisher, err := a.newPublisher(cfg, logger)
	if err != nil {
		return err
	}

	a.Sessions = impl.NewSessionServiceHS256(impl.SessionConfig{
		Issuer:     "accounts",
		TTL:        cfg.SessionTTL,
		SigningKey: []byte(cfg.SessionSecret),
	}, a.Store)
	a.Accounts = impl.NewAccountServiceImpl(
		impl.AccountConfig{ActivationDays: cfg.ActivationDays},
		a.Store,
		impl.NewPasswordServiceArgon2id(),
		a.Sessions,
		activationMailer,
		limiter,
		publisher,
	)
	a.Activations = impl.NewActivationServiceImpl(cfg.ActivationDays, a.Store, activationMailer, publisher)
	a.Profiles = impl.NewProfileServiceImpl(a.Store, publisher)
	return nil
}

func (a *App) WebServices() web.Services {
	return web.Services{
		Accounts:    a.Accounts,
		Activations: a.Activations,
		Profiles:    a.Profiles,
		Sessions:    a.Sessions,
	}
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newSender(cfg config.Config, logger *slog.Logger) (mailer.Sender, error) {
	if cfg.EmailBackend != "smtp" {
		return mailer.NewLogSender(logger), nil
	}
	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp sender: %w", err)
	}
	return sender, nil
}

func (a *App) newLimiter(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.LoginLimiter, error) {
	policy := lockout.Policy{MaxFailures: cfg.LoginMaxFailures, Window: cfg.LoginLockout}
	if cfg.RedisURL == "" {
		logger.Info("login lockout using in-process store")
		return lockout.NewMemoryStore(policy), nil
	}
	client, err := lockout.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	return lockout.NewRedisStore(client, policy), nil
}

func (a *App) newPublisher(cfg config.Config, logger *slog.Logger) (service.EventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewLogPublisher(logger), nil
	}
	pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	a.closers = append(a.closers, pub.Close)
	return pub, nil
}
