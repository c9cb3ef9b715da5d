package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"accounts/internal/domain"
	"accounts/internal/forms"
	"accounts/internal/httpx"
)

type activationView struct {
	Key          string
	Email        string
	Errors       forms.Errors
	RegisterLink bool
}

func (s *Server) activateEmail(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	_, err := s.svc.Activations.ActivateEmail(r.Context(), key)
	switch {
	case err == nil:
		httpx.AddFlash(w, r, s.cookies, httpx.Flash{Kind: httpx.FlashSuccess, Message: msgEmailConfirmed})
		http.Redirect(w, r, "/login/", http.StatusFound)
	case errors.Is(err, domain.ErrAlreadyActivated):
		httpx.AddFlash(w, r, s.cookies, httpx.Flash{Kind: httpx.FlashSuccess, Message: msgAlreadyActivated})
		http.Redirect(w, r, "/login/", http.StatusFound)
	case errors.Is(err, domain.ErrActivationNotFound):
		s.render(w, r, http.StatusOK, "activation_error", activationView{Key: key, Errors: forms.Errors{}})
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) resendForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "activation_error", activationView{Errors: forms.Errors{}})
}

func (s *Server) resendActivation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := forms.ParseReactivateEmail(r.PostForm)
	view := activationView{Key: chi.URLParam(r, "key"), Email: form.Email}

	if !form.Valid() {
		view.Errors = form.Errors
		s.render(w, r, http.StatusOK, "activation_error", view)
		return
	}

	_, err := s.svc.Activations.ResendActivation(r.Context(), form.Email)
	if errors.Is(err, domain.ErrActivationNotFound) {
		form.Errors.Add("email", msgEmailUnknown)
		view.Errors = form.Errors
		view.RegisterLink = true
		s.render(w, r, http.StatusOK, "activation_error", view)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	httpx.AddFlash(w, r, s.cookies, httpx.Flash{Kind: httpx.FlashSuccess, Message: msgActivationSent})
	http.Redirect(w, r, "/login/", http.StatusFound)
}
