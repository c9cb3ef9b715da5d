package web

import (
	"errors"
	"net/http"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/forms"
	"accounts/internal/httpx"
	"accounts/internal/netutil"
	obsmw "accounts/internal/observability/middleware"
)

type homeView struct {
	Title   string
	Content string
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home", homeView{Title: homeTitle, Content: homeContent})
}

type registerView struct {
	Email  string
	Errors forms.Errors
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", registerView{Errors: forms.Errors{}})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := forms.ParseRegister(r.PostForm)
	if !form.Valid() {
		s.render(w, r, http.StatusOK, "register", registerView{Email: form.Email, Errors: form.Errors})
		return
	}

	_, err := s.svc.Accounts.Register(r.Context(), dto.RegisterRequest{Email: form.Email, Password: form.Password1})
	if errors.Is(err, domain.ErrEmailExists) {
		form.Errors.Add("email", msgEmailExists)
		s.render(w, r, http.StatusOK, "register", registerView{Email: form.Email, Errors: form.Errors})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	httpx.AddFlash(w, r, s.cookies, httpx.Flash{Kind: httpx.FlashSuccess, Message: msgRegistered})
	http.Redirect(w, r, "/login/", http.StatusFound)
}

type loginView struct {
	Email      string
	Next       string
	Errors     forms.Errors
	ResendLink bool
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", loginView{Next: r.URL.Query().Get("next"), Errors: forms.Errors{}})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := forms.ParseLogin(r.PostForm)
	next := r.URL.Query().Get("next")
	if next == "" {
		next = form.Next
	}
	view := loginView{Email: form.Email, Next: next}

	if !form.Valid() {
		view.Errors = form.Errors
		s.render(w, r, http.StatusOK, "login", view)
		return
	}

	resp, err := s.svc.Accounts.Login(r.Context(),
		dto.LoginRequest{Email: form.Email, Password: form.Password},
		clientIP(r, s.cfg.TrustProxy), r.UserAgent())
	if err != nil {
		status := http.StatusOK
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			form.Errors.AddNonField(msgInvalidCredentials)
		case errors.Is(err, domain.ErrConfirmationPending):
			form.Errors.AddNonField(msgConfirmationPending)
			view.ResendLink = true
		case errors.Is(err, domain.ErrEmailNotConfirmed):
			form.Errors.AddNonField(msgEmailNotConfirmed)
			view.ResendLink = true
		case errors.Is(err, domain.ErrUserInactive):
			form.Errors.AddNonField(msgUserInactive)
		case errors.Is(err, domain.ErrLockedOut):
			form.Errors.AddNonField(msgLockedOut)
			status = http.StatusTooManyRequests
		default:
			s.serverError(w, r, err)
			return
		}
		view.Errors = form.Errors
		s.render(w, r, status, "login", view)
		return
	}

	httpx.WriteSession(w, s.cookies, resp.Token, resp.ExpiresAt)
	http.Redirect(w, r, netutil.SafeRedirectPath(next, "/"), http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if sess := currentSession(r.Context()); sess != nil {
		if err := s.svc.Accounts.Logout(r.Context(), sess); err != nil {
			obsmw.LoggerFromContext(r.Context()).Warn("logout failed", "session_id", sess.ID, "err", err)
		}
	}
	httpx.ClearSession(w, s.cookies)
	http.Redirect(w, r, "/", http.StatusFound)
}
