// Package web serves the account HTML pages.
package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"accounts/internal/httpx"
	obsmw "accounts/internal/observability/middleware"
	"accounts/internal/service"
)

type Services struct {
	Accounts    service.AccountService
	Activations service.ActivationService
	Profiles    service.ProfileService
	Sessions    service.SessionService
}

type Config struct {
	SecureCookies  bool
	TrustProxy     bool
	CORSOrigins    []string
	RateLimitRPM   int           // per IP, applied to form posts; 0 disables
	RequestTimeout time.Duration // defaults to 30s
	Logger         *slog.Logger
	// MetricsHandler serves /metrics; defaults to promhttp.Handler().
	MetricsHandler http.Handler
}

type Server struct {
	svc     Services
	cfg     Config
	cookies httpx.CookiePolicy
	logger  *slog.Logger
}

func NewServer(cfg Config, svc Services) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MetricsHandler == nil {
		cfg.MetricsHandler = promhttp.Handler()
	}
	return &Server{
		svc:     svc,
		cfg:     cfg,
		cookies: httpx.CookiePolicy{Secure: cfg.SecureCookies},
		logger:  cfg.Logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(obsmw.WithRequestAndTrace(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(s.cfg.RequestTimeout))
	r.Use(obsmw.WithMetrics)
	if origins := originsIfSet(s.cfg.CORSOrigins); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(s.loadSession)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.cfg.MetricsHandler)

	r.Get("/", s.home)

	r.Group(func(r chi.Router) {
		r.Use(s.limitPosts())

		r.Get("/register/", s.registerForm)
		r.Post("/register/", s.register)
		r.Get("/login/", s.loginForm)
		r.Post("/login/", s.login)
		r.Get("/email/confirm/{key:[0-9A-Za-z]+}/", s.activateEmail)
		r.Post("/email/confirm/{key:[0-9A-Za-z]+}/", s.resendActivation)
		r.Get("/resend-email/", s.resendForm)
		r.Post("/resend-email/", s.resendActivation)
	})

	r.Post("/logout/", s.logout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)

		r.Get("/account/profile/", s.profileForm)
		r.Post("/account/profile/", s.updateProfile)
		r.Get("/merchant/dashboard/", s.merchantDashboard)
	})

	return r
}

// limitPosts rate limits form submissions by client IP.
func (s *Server) limitPosts() func(http.Handler) http.Handler {
	if s.cfg.RateLimitRPM <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := httprate.Limit(
		s.cfg.RateLimitRPM,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return clientIP(r, s.cfg.TrustProxy), nil
		}),
	)
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r.Context()) == nil {
			http.Redirect(w, r, loginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loginURL(next string) string {
	return "/login/?" + url.Values{"next": {next}}.Encode()
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	obsmw.LoggerFromContext(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func originsIfSet(in []string) []string {
	out := []string{}
	for _, o := range in {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	return out
}
