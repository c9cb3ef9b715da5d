package httpx

import (
	"net/http"
	"strings"
	"time"
)

const SessionCookieName = "accounts_session"

func ReadSession(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	return value, value != ""
}

func WriteSession(w http.ResponseWriter, policy CookiePolicy, token string, expires time.Time) {
	c := &http.Cookie{Name: SessionCookieName, Value: token, Expires: expires.UTC()}
	if ttl := time.Until(expires); ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	setCookie(w, policy, c)
}

func ClearSession(w http.ResponseWriter, policy CookiePolicy) {
	setCookie(w, policy, &http.Cookie{Name: SessionCookieName, MaxAge: -1})
}
