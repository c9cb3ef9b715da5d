package web

import (
	"errors"
	"net/http"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/forms"
	"accounts/internal/httpx"
)

type profileView struct {
	Email    string
	Shop     string
	Location string
	Merchant bool
	Errors   forms.Errors
}

func (s *Server) profileForm(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	p, err := s.svc.Profiles.Get(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "profile", profileView{
		Email:    p.Email,
		Shop:     p.Shop,
		Location: p.Location,
		Merchant: p.Merchant,
		Errors:   forms.Errors{},
	})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	user := currentUser(r.Context())
	form := forms.ParseProfile(r.PostForm)
	if !form.Valid() {
		s.render(w, r, http.StatusOK, "profile", profileView{
			Email:    user.Email,
			Shop:     form.Shop,
			Location: form.Location,
			Merchant: form.Merchant,
			Errors:   form.Errors,
		})
		return
	}

	p, err := s.svc.Profiles.Update(r.Context(), user.ID, dto.ProfileUpdateRequest{
		Shop:     form.Shop,
		Location: form.Location,
		Merchant: form.Merchant,
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	httpx.AddFlash(w, r, s.cookies, httpx.Flash{Kind: httpx.FlashSuccess, Message: msgProfileUpdated})
	if p.Merchant {
		http.Redirect(w, r, "/merchant/dashboard/", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/account/profile/", http.StatusFound)
}

func (s *Server) merchantDashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	dash, err := s.svc.Profiles.MerchantDashboard(r.Context(), user.ID)
	if errors.Is(err, domain.ErrNotMerchant) {
		httpx.AddFlash(w, r, s.cookies, httpx.Flash{Kind: httpx.FlashWarning, Message: msgNotMerchant})
		http.Redirect(w, r, "/account/profile/", http.StatusFound)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard", dash)
}
