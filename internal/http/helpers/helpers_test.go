package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessiondto "github.com/dropDatabas3/johngate/internal/http/dto/session"
	httperrors "github.com/dropDatabas3/johngate/internal/http/errors"
)

func readBody(body string, max int64) (map[string]any, error) {
	r := httptest.NewRequest(http.MethodPost, "/api/login/", strings.NewReader(body))
	return ReadJSONObject(httptest.NewRecorder(), r, max)
}

func TestReadJSONObject(t *testing.T) {
	obj, err := readBody(`{"username":"jona","password":"200328"}`, 0)
	require.NoError(t, err)
	assert.Equal(t, "jona", obj["username"])

	for _, body := range []string{``, `   `, `null`, `[]`, `"x"`, `42`, `{"a":1} {"b":2}`, `{"a":`, `not json`} {
		_, err := readBody(body, 0)
		assert.ErrorIs(t, err, httperrors.ErrInvalidJSON, "body=%q", body)
	}

	_, err = readBody("{\"username\":\"jo\xffna\",\"password\":\"x\"}", 0)
	assert.ErrorIs(t, err, httperrors.ErrInvalidJSON, "invalid utf-8")

	_, err = readBody(`{"username":"`+strings.Repeat("x", 200)+`"}`, 64)
	assert.ErrorIs(t, err, httperrors.ErrBodyTooLarge)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", ClientIP(r))

	r.Header.Set("X-Real-IP", "192.168.0.9")
	assert.Equal(t, "192.168.0.9", ClientIP(r))

	r.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestIsHTTPS(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, IsHTTPS(r))
	r.Header.Set("X-Forwarded-Proto", "HTTPS")
	assert.True(t, IsHTTPS(r))
}

func TestNormalizeSessionCookie(t *testing.T) {
	cfg := NormalizeSessionCookie(sessiondto.Config{SameSite: "weird", CookieDomain: " example.com "})
	assert.Equal(t, DefaultSessionCookie, cfg.CookieName)
	assert.Equal(t, DefaultSessionTTL, cfg.TTL)
	assert.Equal(t, "Lax", cfg.SameSite)
	assert.Equal(t, "example.com", cfg.CookieDomain)
	assert.False(t, cfg.Secure)

	none := NormalizeSessionCookie(sessiondto.Config{SameSite: "none"})
	assert.Equal(t, "None", none.SameSite)
	assert.True(t, none.Secure, "SameSite=None requires Secure")

	assert.Equal(t, "Strict", NormalizeSessionCookie(sessiondto.Config{SameSite: " STRICT "}).SameSite)
}

func TestSessionCookie(t *testing.T) {
	cfg := sessiondto.Config{CookieName: "gate", SameSite: "Strict", TTL: time.Minute}

	ck := SessionCookie(cfg, "abc")
	assert.Equal(t, "gate", ck.Name)
	assert.Equal(t, "abc", ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.Empty(t, ck.Domain)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.Equal(t, 60, ck.MaxAge)
	assert.True(t, ck.Expires.After(time.Now()))

	del := ExpiredSessionCookie(cfg)
	assert.Equal(t, "gate", del.Name)
	assert.Empty(t, del.Value)
	assert.Equal(t, -1, del.MaxAge)
	assert.True(t, del.Expires.Before(time.Now()))
	assert.Equal(t, ck.SameSite, del.SameSite)
}
