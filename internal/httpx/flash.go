// Package httpx holds cookie helpers shared by the HTML handlers.
package httpx

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

const FlashCookieName = "accounts_flash"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashInfo    FlashKind = "info"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// CookiePolicy carries the attributes every cookie we set shares.
type CookiePolicy struct {
	Secure bool
}

// AddFlash appends a notice to the flash cookie, keeping any notice already
// queued on this response or carried by the request.
func AddFlash(w http.ResponseWriter, r *http.Request, policy CookiePolicy, f Flash) {
	f.Message = strings.TrimSpace(f.Message)
	if f.Message == "" {
		return
	}
	if f.Kind == "" {
		f.Kind = FlashInfo
	}
	queued := pendingFlashes(w)
	if queued == nil {
		queued = readFlashes(r)
	}
	queued = append(queued, f)
	payload, err := json.Marshal(queued)
	if err != nil {
		return
	}
	setCookie(w, policy, &http.Cookie{
		Name:  FlashCookieName,
		Value: base64.RawURLEncoding.EncodeToString(payload),
	})
}

// PopFlashes returns the queued notices and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request, policy CookiePolicy) []Flash {
	flashes := readFlashes(r)
	if len(flashes) == 0 {
		if _, err := r.Cookie(FlashCookieName); err != nil {
			return nil
		}
	}
	setCookie(w, policy, &http.Cookie{Name: FlashCookieName, MaxAge: -1})
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	if r == nil {
		return nil
	}
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		return nil
	}
	return decodeFlashes(cookie.Value)
}

// pendingFlashes decodes the last flash cookie already set on this response.
func pendingFlashes(w http.ResponseWriter) []Flash {
	var out []Flash
	for _, line := range w.Header().Values("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		if err != nil || c.Name != FlashCookieName || c.MaxAge < 0 {
			continue
		}
		out = decodeFlashes(c.Value)
	}
	return out
}

func decodeFlashes(raw string) []Flash {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var out []Flash
	if err := json.Unmarshal(decoded, &out); err != nil {
		return nil
	}
	valid := out[:0]
	for _, f := range out {
		switch f.Kind {
		case FlashSuccess, FlashInfo, FlashWarning, FlashError:
			if strings.TrimSpace(f.Message) != "" {
				valid = append(valid, f)
			}
		}
	}
	return valid
}

func setCookie(w http.ResponseWriter, policy CookiePolicy, c *http.Cookie) {
	c.Path = "/"
	c.HttpOnly = true
	c.Secure = policy.Secure
	c.SameSite = http.SameSiteLaxMode
	http.SetCookie(w, c)
}
