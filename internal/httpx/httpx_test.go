package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func carryCookies(from *httptest.ResponseRecorder, to *http.Request) {
	for _, c := range from.Result().Cookies() {
		if c.MaxAge >= 0 {
			to.AddCookie(c)
		}
	}
}

func TestFlashRoundTrip(t *testing.T) {
	policy := CookiePolicy{}
	rec := httptest.NewRecorder()
	AddFlash(rec, httptest.NewRequest(http.MethodPost, "/", nil), policy, Flash{Kind: FlashSuccess, Message: "your email has been confirmed."})

	next := httptest.NewRequest(http.MethodGet, "/login/", nil)
	carryCookies(rec, next)

	out := httptest.NewRecorder()
	flashes := PopFlashes(out, next, policy)
	if len(flashes) != 1 || flashes[0].Message != "your email has been confirmed." || flashes[0].Kind != FlashSuccess {
		t.Fatalf("unexpected flashes: %+v", flashes)
	}
	cleared := out.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("flash cookie should be cleared, got %+v", cleared)
	}
}

func TestAddFlashAccumulatesOnOneResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	AddFlash(rec, req, CookiePolicy{}, Flash{Kind: FlashInfo, Message: "one"})
	AddFlash(rec, req, CookiePolicy{}, Flash{Message: "two"})

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	cookies := rec.Result().Cookies()
	next.AddCookie(cookies[len(cookies)-1])

	flashes := PopFlashes(httptest.NewRecorder(), next, CookiePolicy{})
	if len(flashes) != 2 || flashes[1].Kind != FlashInfo {
		t.Fatalf("expected two flashes with default kind, got %+v", flashes)
	}
}

func TestPopFlashesIgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "%%%"})
	if got := PopFlashes(httptest.NewRecorder(), req, CookiePolicy{}); len(got) != 0 {
		t.Fatalf("garbage cookie decoded to %+v", got)
	}
}

func TestSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSession(rec, CookiePolicy{Secure: true}, "tok", time.Now().Add(time.Hour))
	c := rec.Result().Cookies()[0]
	if c.Name != SessionCookieName || !c.Secure || !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected session cookie: %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: " tok "})
	if v, ok := ReadSession(req); !ok || v != "tok" {
		t.Fatalf("ReadSession = %q, %v", v, ok)
	}

	rec = httptest.NewRecorder()
	ClearSession(rec, CookiePolicy{})
	if c := rec.Result().Cookies()[0]; c.MaxAge >= 0 {
		t.Fatalf("clear should expire the cookie: %+v", c)
	}
}
