package web

import (
	"encoding/base64"
	"net/http"
	"strings"

	"fitcoach/internal/adapters/http/middleware"
)

const flashCookieName = "fitcoach_flash"

const (
	flashSuccess = "success"
	flashError   = "error"
)

// flash is a one-shot message carried across a redirect.
type flash struct {
	Kind    string
	Message string
}

func setFlash(w http.ResponseWriter, kind, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   60,
	})
}

// popFlash reads and clears the pending flash, if any.
func popFlash(w http.ResponseWriter, r *http.Request) flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return flash{}
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return flash{}
	}
	kind, message, ok := strings.Cut(string(raw), "|")
	if !ok || (kind != flashSuccess && kind != flashError) {
		return flash{}
	}
	return flash{Kind: kind, Message: message}
}
