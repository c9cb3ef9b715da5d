package netutil

import (
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"unicode/utf8"
)

const MaxUserAgentLength = 512

// NormalizeIP takes either a bare IP string or an address that may include a port
// (e.g. "192.0.2.4:1234" or "[2001:db8::1]:443") and returns the canonical IP
// portion without any zone identifiers. The second return value indicates if the
// address was successfully parsed as an IP address.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if addrPort, err := netip.ParseAddrPort(raw); err == nil {
		if addr := addrPort.Addr().WithZone(""); addr.IsValid() {
			return addr.String(), true
		}
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		if addr = addr.WithZone(""); addr.IsValid() {
			return addr.String(), true
		}
	}
	// Bracketed IPv6 with a non-numeric port (e.g. "[::1]:port").
	if strings.HasPrefix(raw, "[") && strings.Contains(raw, "]") {
		host := raw[1:strings.LastIndex(raw, "]")]
		if addr, err := netip.ParseAddr(host); err == nil {
			if addr = addr.WithZone(""); addr.IsValid() {
				return addr.String(), true
			}
		}
	}
	if idx := strings.LastIndex(raw, ":"); idx > 0 {
		if addr, err := netip.ParseAddr(raw[:idx]); err == nil {
			if addr = addr.WithZone(""); addr.IsValid() {
				return addr.String(), true
			}
		}
	}
	return raw, false
}

// ClientIP returns the normalized caller address. With trustProxy the first
// X-Forwarded-For hop wins over the socket address.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip, ok := NormalizeIP(first); ok {
				return ip
			}
		}
	}
	if ip, ok := NormalizeIP(r.RemoteAddr); ok {
		return ip
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// TruncateUserAgent trims overly long user agents to MaxUserAgentLength runes.
func TruncateUserAgent(ua string) string {
	if ua == "" {
		return ""
	}
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	var builder strings.Builder
	builder.Grow(len(ua))
	count := 0
	for _, r := range ua {
		builder.WriteRune(r)
		count++
		if count >= MaxUserAgentLength {
			break
		}
	}
	return builder.String()
}

// SafeRedirectPath returns next when it is a same-host absolute path and
// fallback otherwise. Scheme-relative ("//host") and backslash tricks are
// rejected.
func SafeRedirectPath(next, fallback string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") {
		return fallback
	}
	if strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n\t") {
		return fallback
	}
	parsed, err := url.Parse(next)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" || parsed.Path == "" {
		return fallback
	}
	if parsed.RawQuery != "" {
		return parsed.EscapedPath() + "?" + parsed.RawQuery
	}
	return parsed.EscapedPath()
}
