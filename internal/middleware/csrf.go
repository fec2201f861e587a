package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

// CSRFConfig configures the double-submit CSRF check.
type CSRFConfig struct {
	CookieName string
	HeaderName string
	Secure     bool
}

// CSRF issues a CSRF cookie tied to the session token and verifies that unsafe requests
// carry the same token in the header and the cookie.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "csrf_token"
	}
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-CSRF-Token"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r)
			token := s.CSRFToken
			if token == "" {
				token = newCSRFToken()
				s.CSRFToken = token
				s.MarkDirty()
			}

			if c, err := r.Cookie(cookieName); err != nil || c.Value != token {
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(24 * time.Hour),
				})
			}

			if !isSafeMethod(r.Method) {
				if hdr := r.Header.Get(headerName); hdr == "" || hdr != token {
					WriteError(w, r, http.StatusForbidden, "csrf_invalid", "invalid CSRF token")
					return
				}
				if c, err := r.Cookie(cookieName); err != nil || c.Value != token {
					WriteError(w, r, http.StatusForbidden, "csrf_invalid", "invalid CSRF token")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRFToken returns the token templates embed for htmx requests.
func CSRFToken(r *http.Request) string {
	return GetSession(r).CSRFToken
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
