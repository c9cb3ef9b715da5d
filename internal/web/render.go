package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"accounts/internal/domain"
	"accounts/internal/httpx"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = map[string]*template.Template{
	"home":             parsePage("home.html"),
	"register":         parsePage("register.html"),
	"login":            parsePage("login.html"),
	"activation_error": parsePage("activation_error.html"),
	"profile":          parsePage("profile.html"),
	"dashboard":        parsePage("dashboard.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/base.html", "templates/"+name))
}

type pageView struct {
	User    *domain.User
	Flashes []httpx.Flash
	Data    any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, ok := pages[page]
	if !ok {
		s.serverError(w, r, errUnknownPage(page))
		return
	}
	view := pageView{
		User:    currentUser(r.Context()),
		Flashes: httpx.PopFlashes(w, r, s.cookies),
		Data:    data,
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", view); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errUnknownPage string

func (e errUnknownPage) Error() string { return "unknown page " + string(e) }
