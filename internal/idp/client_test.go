package idp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdP struct {
	mu         sync.Mutex
	tokenForm  map[string]string
	authHeader string

	tokenStatus int
	tokenBody   string
	infoStatus  int
	infoBody    string
	infoDelay   time.Duration
	tokenDelay  time.Duration
}

func (f *fakeIdP) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = r.ParseForm()
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		f.mu.Lock()
		f.tokenForm = form
		f.mu.Unlock()
		if f.tokenDelay > 0 {
			time.Sleep(f.tokenDelay)
		}
		w.WriteHeader(f.tokenStatus)
		_, _ = w.Write([]byte(f.tokenBody))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authHeader = r.Header.Get("Authorization")
		f.mu.Unlock()
		if f.infoDelay > 0 {
			time.Sleep(f.infoDelay)
		}
		w.WriteHeader(f.infoStatus)
		_, _ = w.Write([]byte(f.infoBody))
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeIdP, mutate func(*Config)) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewTLSServer(f.handler())
	t.Cleanup(srv.Close)

	cfg := Config{
		Domain:       strings.TrimPrefix(srv.URL, "https://"),
		ClientID:     "cid",
		ClientSecret: "csecret",
		Scope:        DefaultScope,
		Timeout:      2 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	hc := srv.Client()
	hc.Timeout = cfg.Timeout
	obs := &recordingObserver{}
	return New(&cfg, WithHTTPClient(hc), WithObserver(obs)), obs
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveIdPCall(call, result string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, call+":"+result)
}

func TestAuthenticate_NotConfigured(t *testing.T) {
	c := New(nil)
	assert.False(t, c.Configured())
	assert.Equal(t, "", c.TokenURL())

	_, err := c.Authenticate(context.Background(), "jona", "200328")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestAuthenticate_SuccessWithProfile(t *testing.T) {
	f := &fakeIdP{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"at-1","id_token":"idt","token_type":"Bearer","expires_in":86400,"scope":"openid"}`,
		infoStatus:  http.StatusOK,
		infoBody:    `{"given_name":"Jonathan","family_name":"Morales","email":"jona@example.com"}`,
	}
	c, obs := newTestClient(t, f, func(cfg *Config) {
		cfg.Audience = "https://api.example.com"
		cfg.Realm = "Username-Password-Authentication"
	})

	res, err := c.Authenticate(context.Background(), "jona", "200328")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "at-1", res.Tokens.AccessToken())
	assert.Equal(t, "Jonathan", res.Profile.String("given_name"))
	assert.Equal(t, "Bearer at-1", f.authHeader)

	assert.Equal(t, map[string]string{
		"grant_type":    "password",
		"username":      "jona",
		"password":      "200328",
		"client_id":     "cid",
		"client_secret": "csecret",
		"scope":         DefaultScope,
		"audience":      "https://api.example.com",
		"realm":         "Username-Password-Authentication",
	}, f.tokenForm)

	pub := res.Tokens.Public()
	assert.Equal(t, json.Number("86400"), pub["expires_in"])
	assert.NotContains(t, pub, "scope")
	assert.NotContains(t, pub, "refresh_token")

	assert.Equal(t, []string{"token:ok", "userinfo:ok"}, obs.calls)
}

func TestAuthenticate_OmitsOptionalFormFields(t *testing.T) {
	f := &fakeIdP{tokenStatus: http.StatusOK, tokenBody: `{}`}
	c, _ := newTestClient(t, f, nil)

	_, err := c.Authenticate(context.Background(), "jona", "200328")
	require.NoError(t, err)
	assert.NotContains(t, f.tokenForm, "audience")
	assert.NotContains(t, f.tokenForm, "realm")
}

func TestAuthenticate_NoAccessTokenSkipsProfile(t *testing.T) {
	f := &fakeIdP{tokenStatus: http.StatusOK, tokenBody: `{"access_token":"","id_token":"x"}`}
	c, obs := newTestClient(t, f, nil)

	res, err := c.Authenticate(context.Background(), "jona", "200328")
	require.NoError(t, err)
	assert.Nil(t, res.Profile)
	assert.Empty(t, f.authHeader)
	assert.Equal(t, []string{"token:ok"}, obs.calls)
}

func TestAuthenticate_NonStringAccessTokenSkipsProfile(t *testing.T) {
	f := &fakeIdP{tokenStatus: http.StatusOK, tokenBody: `{"access_token":12345}`}
	c, _ := newTestClient(t, f, nil)

	res, err := c.Authenticate(context.Background(), "jona", "200328")
	require.NoError(t, err)
	assert.Nil(t, res.Profile)
}

func TestAuthenticate_MalformedTokenBodyIsEmptySuccess(t *testing.T) {
	f := &fakeIdP{tokenStatus: http.StatusOK, tokenBody: `<html>oops</html>`}
	c, _ := newTestClient(t, f, nil)

	res, err := c.Authenticate(context.Background(), "jona", "200328")
	require.NoError(t, err)
	assert.Empty(t, res.Tokens)
	assert.Nil(t, res.Tokens.Public())
	assert.Nil(t, res.Profile)
}

func TestAuthenticate_ProfileFailuresAreSoft(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"non-200", http.StatusUnauthorized, `{"error":"invalid_token"}`},
		{"malformed", http.StatusOK, `not json`},
		{"array", http.StatusOK, `[1,2,3]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeIdP{
				tokenStatus: http.StatusOK,
				tokenBody:   `{"access_token":"at"}`,
				infoStatus:  tc.status,
				infoBody:    tc.body,
			}
			c, _ := newTestClient(t, f, nil)

			res, err := c.Authenticate(context.Background(), "jona", "200328")
			require.NoError(t, err)
			assert.Equal(t, "at", res.Tokens.AccessToken())
			assert.Nil(t, res.Profile)
		})
	}
}

func TestAuthenticate_Rejected(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error_description wins", 403, `{"error":"invalid_grant","error_description":"Wrong email or password.","description":"x"}`, "Wrong email or password."},
		{"description next", 401, `{"error":"invalid_grant","description":"Blocked user"}`, "Blocked user"},
		{"error last", 400, `{"error":"invalid_request"}`, "invalid_request"},
		{"empty strings skipped", 403, `{"error_description":"","error":"access_denied"}`, "access_denied"},
		{"non-string ignored", 403, `{"error_description":42}`, DefaultRejectMessage},
		{"non-json body", 500, `Internal Server Error`, DefaultRejectMessage},
		{"empty body", 429, ``, DefaultRejectMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeIdP{tokenStatus: tc.status, tokenBody: tc.body}
			c, obs := newTestClient(t, f, nil)

			_, err := c.Authenticate(context.Background(), "jona", "bad")
			var ae *AuthError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tc.status, ae.Status)
			assert.Equal(t, tc.message, ae.Message)
			assert.False(t, ae.Unreachable)
			assert.Equal(t, []string{"token:rejected"}, obs.calls)
		})
	}
}

func TestRejected_StatusOutOfRangeIsBadGateway(t *testing.T) {
	ae := rejected(999, map[string]any{"error": "weird"})
	assert.Equal(t, http.StatusBadGateway, ae.Status)
	assert.Equal(t, "weird", ae.Message)

	assert.Equal(t, http.StatusTeapot, rejected(http.StatusTeapot, nil).Status)
}

func TestAuthenticate_Unreachable(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	domain := strings.TrimPrefix(srv.URL, "https://")
	hc := srv.Client()
	srv.Close()

	c := New(&Config{Domain: domain, ClientID: "cid", ClientSecret: "s", Timeout: time.Second}, WithHTTPClient(hc))
	_, err := c.Authenticate(context.Background(), "jona", "200328")

	var ae *AuthError
	require.True(t, errors.As(err, &ae))
	assert.True(t, ae.Unreachable)
	assert.Equal(t, http.StatusServiceUnavailable, ae.Status)
	assert.Equal(t, UnreachableMessage, ae.Message)
}

func TestAuthenticate_TimeoutIsUnreachable(t *testing.T) {
	f := &fakeIdP{tokenStatus: http.StatusOK, tokenBody: `{}`, tokenDelay: 300 * time.Millisecond}
	c, _ := newTestClient(t, f, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })

	_, err := c.Authenticate(context.Background(), "jona", "200328")
	var ae *AuthError
	require.True(t, errors.As(err, &ae))
	assert.True(t, ae.Unreachable)
}

func TestAuthenticate_ProfileTimeoutIsSoft(t *testing.T) {
	f := &fakeIdP{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"at"}`,
		infoStatus:  http.StatusOK,
		infoBody:    `{"email":"a@b.c"}`,
		infoDelay:   300 * time.Millisecond,
	}
	c, _ := newTestClient(t, f, func(cfg *Config) { cfg.Timeout = 100 * time.Millisecond })

	res, err := c.Authenticate(context.Background(), "jona", "200328")
	require.NoError(t, err)
	assert.Nil(t, res.Profile)
}
