package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"finitefield.org/travel-web/internal/i18n"
	"finitefield.org/travel-web/locales"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rr.Result().Cookies() {
		if c.Name == defaultSessionCookie {
			return c
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestSessionRoundTripAndWishlist(t *testing.T) {
	t.Parallel()

	mw := Session(SessionConfig{SigningKey: testKey})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		if name := r.URL.Query().Get("add"); name != "" {
			s.AddWishlist(name)
		}
		_ = json.NewEncoder(w).Encode(s.Wishlist)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?add=Kyoto", nil))
	first := sessionCookie(t, rr)
	require.True(t, first.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/?add=Kyoto", nil)
	req.AddCookie(first)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.JSONEq(t, `["Kyoto"]`, rr.Body.String())
	// unchanged sessions are not rewritten
	require.Empty(t, rr.Result().Cookies())
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	t.Parallel()

	var ids []string
	handler := Session(SessionConfig{SigningKey: testKey})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, GetSession(r).ID)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	c := sessionCookie(t, rr)
	c.Value = "x" + c.Value

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Len(t, ids, 2)
	require.NotEqual(t, ids[0], ids[1])
	require.Len(t, ids[0], 26)
}

func TestAddWishlistDeduplicates(t *testing.T) {
	t.Parallel()

	s := &SessionData{}
	require.True(t, s.AddWishlist("Bora Bora"))
	require.False(t, s.AddWishlist(" Bora Bora "))
	require.False(t, s.AddWishlist(""))
	require.Equal(t, []string{"Bora Bora"}, s.Wishlist)
}

func TestAddWishlistBoundsCookieSize(t *testing.T) {
	t.Parallel()

	s := &SessionData{}
	require.False(t, s.AddWishlist(strings.Repeat("a", MaxWishlistName+1)))
	require.Empty(t, s.Wishlist)

	for i := 0; i < 40; i++ {
		require.True(t, s.AddWishlist(fmt.Sprintf("%03d-%s", i, strings.Repeat("n", MaxWishlistName-4))))
	}
	total := 0
	for _, n := range s.Wishlist {
		total += len(n)
	}
	require.LessOrEqual(t, total, maxWishlistBytes)
	require.True(t, strings.HasPrefix(s.Wishlist[len(s.Wishlist)-1], "039-"))
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	handler := HTMX()(Session(SessionConfig{SigningKey: testKey})(CSRF(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	var session, csrf *http.Cookie
	for _, c := range rr.Result().Cookies() {
		switch c.Name {
		case defaultSessionCookie:
			session = c
		case "csrf_token":
			csrf = c
		}
	}
	require.NotNil(t, session)
	require.NotNil(t, csrf)

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/wishlist", nil)
		req.Header.Set("HX-Request", "true")
		req.AddCookie(session)
		req.AddCookie(csrf)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusForbidden, rr.Code)
		var env ErrorEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
		require.Equal(t, "csrf_invalid", env.Error)
		require.Equal(t, http.StatusForbidden, env.Status)
	})

	t.Run("matching header passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/wishlist", nil)
		req.Header.Set("X-CSRF-Token", csrf.Value)
		req.AddCookie(session)
		req.AddCookie(csrf)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestHTMXInfoAndRequireHTMX(t *testing.T) {
	t.Parallel()

	handler := HTMX()(RequireHTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := HTMXInfoFromContext(r.Context())
		_, _ = w.Write([]byte(info.Target))
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/share", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/share", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "notice")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "notice", rr.Body.String())
	require.Contains(t, rr.Header().Values("Vary"), "HX-Request")
}

func TestLocaleResolution(t *testing.T) {
	t.Parallel()

	bundle, err := i18n.LoadFS(locales.FS, "en", []string{"en", "ja"})
	require.NoError(t, err)
	handler := Session(SessionConfig{SigningKey: testKey})(Locale(bundle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Lang(r)))
	})))

	cases := []struct {
		name, target, accept, want string
	}{
		{"accept-language", "/", "ja-JP,ja;q=0.9", "ja"},
		{"default", "/", "", "en"},
		{"query override", "/?hl=ja", "en-US", "ja"},
		{"unsupported query ignored", "/?hl=fr", "en-US", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			require.Equal(t, tc.want, rr.Body.String())
			require.Equal(t, tc.want, rr.Header().Get("Content-Language"))
		})
	}
}

func TestAssetsWithCache(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"css/app.css": {Data: []byte("body{}")}}
	handler := AssetsWithCache(fsys, "/assets")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "body{}", rr.Body.String())
	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotModified, rr.Code)
}

func TestNoStore(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NoStore()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "no-store, max-age=0", rr.Header().Get("Cache-Control"))
}
