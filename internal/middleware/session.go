package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	defaultSessionCookie = "TRAVEL_WEB_SESSION"
	// wishlist size is capped so the cookie stays under browser limits
	maxWishlist      = 50
	maxWishlistBytes = 2048
)

// MaxWishlistName is the longest destination name, in runes, accepted into the session.
const MaxWishlistName = 120

// SessionConfig configures the signed cookie session.
type SessionConfig struct {
	CookieName string
	SigningKey []byte
	Secure     bool
	MaxAge     time.Duration
	Logger     *zap.Logger
}

// SessionData is the state persisted in the signed session cookie.
type SessionData struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	Wishlist  []string  `json:"wishlist,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	dirty bool
}

// MarkDirty flags the session for writing at the end of the request.
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// AddWishlist appends name unless it is already saved or longer than MaxWishlistName runes.
// The oldest entries are dropped to stay within maxWishlist entries and maxWishlistBytes.
// It reports whether the list changed.
func (s *SessionData) AddWishlist(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxWishlistName || slices.Contains(s.Wishlist, name) {
		return false
	}
	s.Wishlist = append(s.Wishlist, name)
	if len(s.Wishlist) > maxWishlist {
		s.Wishlist = s.Wishlist[len(s.Wishlist)-maxWishlist:]
	}
	total := 0
	for _, n := range s.Wishlist {
		total += len(n)
	}
	for total > maxWishlistBytes && len(s.Wishlist) > 1 {
		total -= len(s.Wishlist[0])
		s.Wishlist = s.Wishlist[1:]
	}
	s.MarkDirty()
	return true
}

type sessionCodec struct {
	name   string
	key    []byte
	secure bool
	maxAge time.Duration
}

// Session loads or initialises the session and stores it in the request context.
// The cookie is written before the first byte of the response when the session changed.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	codec := sessionCodec{
		name:   cfg.CookieName,
		key:    cfg.SigningKey,
		secure: cfg.Secure,
		maxAge: cfg.MaxAge,
	}
	if codec.name == "" {
		codec.name = defaultSessionCookie
	}
	if codec.maxAge <= 0 {
		codec.maxAge = 30 * 24 * time.Hour
	}
	if len(codec.key) == 0 {
		codec.key = make([]byte, 32)
		_, _ = rand.Read(codec.key)
		logger.Warn("session: using ephemeral signing key; set TRAVEL_WEB_SESSION_SIGNING_KEY")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sd, fromCookie := codec.read(r)
			if sd.ID == "" {
				sd.ID = ulid.Make().String()
				sd.CreatedAt = time.Now().UTC()
				sd.UpdatedAt = sd.CreatedAt
				sd.CSRFToken = newCSRFToken()
				sd.dirty = true
			}
			persist := func(w http.ResponseWriter) {
				if sd.dirty || !fromCookie {
					codec.write(w, sd)
				}
			}
			sw := &sessionWriter{ResponseWriter: w, before: persist}
			ctx := context.WithValue(r.Context(), ctxKeySession, sd)
			next.ServeHTTP(sw, r.WithContext(ctx))
			if !sw.wrote {
				persist(w)
			}
		})
	}
}

// GetSession returns the session from the request context, or an empty detached one.
func GetSession(r *http.Request) *SessionData {
	if sd, ok := r.Context().Value(ctxKeySession).(*SessionData); ok && sd != nil {
		return sd
	}
	return &SessionData{}
}

func (c sessionCodec) read(r *http.Request) (*SessionData, bool) {
	ck, err := r.Cookie(c.name)
	if err != nil || ck.Value == "" {
		return &SessionData{}, false
	}
	payloadEnc, sigEnc, ok := strings.Cut(ck.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadEnc)
	if err != nil {
		return &SessionData{}, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigEnc)
	if err != nil {
		return &SessionData{}, false
	}
	if !hmac.Equal(sig, c.sign(payload)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payload, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func (c sessionCodec) write(w http.ResponseWriter, sd *SessionData) {
	payload, err := json.Marshal(sd)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(c.sign(payload)),
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(c.maxAge),
	})
}

func (c sessionCodec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(payload)
	return mac.Sum(nil)
}

// sessionWriter runs before once, ahead of the first header write.
type sessionWriter struct {
	http.ResponseWriter
	before func(http.ResponseWriter)
	wrote  bool
}

func (w *sessionWriter) WriteHeader(code int) {
	if !w.wrote {
		w.wrote = true
		w.before(w.ResponseWriter)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
