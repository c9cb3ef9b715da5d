package forms

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	MaxEmailLength    = 255
	MaxShopLength     = 120
	MaxLocationLength = 120
	MinPasswordLength = 8
)

func maxLengthMsg(n int) string {
	return fmt.Sprintf("Ensure this value has at most %d characters.", n)
}

func cleanEmail(errs Errors, field, raw string) string {
	email := strings.TrimSpace(raw)
	if email == "" {
		errs.Add(field, msgRequired)
		return email
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		errs.Add(field, maxLengthMsg(MaxEmailLength))
		return email
	}
	if !validEmail(email) {
		errs.Add(field, msgInvalidEmail)
	}
	return email
}

// validEmail accepts a bare addr-spec with a dotted domain.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func cleanRequired(errs Errors, field, raw string) string {
	if raw == "" {
		errs.Add(field, msgRequired)
	}
	return raw
}

func cleanMaxLength(errs Errors, field, raw string, n int) string {
	v := strings.TrimSpace(raw)
	if utf8.RuneCountInString(v) > n {
		errs.Add(field, maxLengthMsg(n))
	}
	return v
}

func checkbox(values url.Values, field string) bool {
	switch strings.ToLower(values.Get(field)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
