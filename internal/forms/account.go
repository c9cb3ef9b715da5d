package forms

import (
	"fmt"
	"net/url"
	"unicode/utf8"
)

type RegisterForm struct {
	Email     string
	Password1 string
	Password2 string
	Errors    Errors
}

func ParseRegister(values url.Values) *RegisterForm {
	return &RegisterForm{
		Email:     values.Get("email"),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
		Errors:    Errors{},
	}
}

func (f *RegisterForm) Valid() bool {
	f.Errors = Errors{}
	f.Email = cleanEmail(f.Errors, "email", f.Email)
	p1 := cleanRequired(f.Errors, "password1", f.Password1)
	p2 := cleanRequired(f.Errors, "password2", f.Password2)
	if p1 != "" && utf8.RuneCountInString(p1) < MinPasswordLength {
		f.Errors.Add("password1", fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if p1 != "" && p2 != "" && p1 != p2 {
		f.Errors.Add("password2", msgPasswordMatch)
	}
	return !f.Errors.Any()
}

type LoginForm struct {
	Email    string
	Password string
	Next     string
	Errors   Errors
}

func ParseLogin(values url.Values) *LoginForm {
	return &LoginForm{
		Email:    values.Get("email"),
		Password: values.Get("password"),
		Next:     values.Get("next"),
		Errors:   Errors{},
	}
}

func (f *LoginForm) Valid() bool {
	f.Errors = Errors{}
	f.Email = cleanEmail(f.Errors, "email", f.Email)
	cleanRequired(f.Errors, "password", f.Password)
	return !f.Errors.Any()
}

// ReactivateEmailForm asks for the address a new activation link goes to.
// Whether the address is known is decided by the caller.
type ReactivateEmailForm struct {
	Email  string
	Errors Errors
}

func ParseReactivateEmail(values url.Values) *ReactivateEmailForm {
	return &ReactivateEmailForm{Email: values.Get("email"), Errors: Errors{}}
}

func (f *ReactivateEmailForm) Valid() bool {
	f.Errors = Errors{}
	f.Email = cleanEmail(f.Errors, "email", f.Email)
	return !f.Errors.Any()
}

type ProfileForm struct {
	Shop     string
	Location string
	Merchant bool
	Errors   Errors
}

func ParseProfile(values url.Values) *ProfileForm {
	return &ProfileForm{
		Shop:     values.Get("shop"),
		Location: values.Get("location"),
		Merchant: checkbox(values, "merchant"),
		Errors:   Errors{},
	}
}

func (f *ProfileForm) Valid() bool {
	f.Errors = Errors{}
	f.Shop = cleanMaxLength(f.Errors, "shop", f.Shop, MaxShopLength)
	f.Location = cleanMaxLength(f.Errors, "location", f.Location, MaxLocationLength)
	return !f.Errors.Any()
}
