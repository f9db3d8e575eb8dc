// Package idp implementa el login delegado contra un proveedor de identidad
// compatible con Auth0 usando el grant Resource Owner Password.
//
// El cliente solo produce hechos (tokens y perfil crudo). No crea usuarios ni
// sesiones: eso es responsabilidad del orquestador de login.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dropDatabas3/johngate/internal/observability/logger"
)

const (
	tracerName  = "github.com/dropDatabas3/johngate/internal/idp"
	maxBodySize = 1 << 20
)

// Observer recibe la duración de cada llamada saliente.
// result es "ok", "rejected" o "error".
type Observer interface {
	ObserveIdPCall(call, result string, d time.Duration)
}

// Result es el resultado de una autenticación delegada exitosa.
// Profile es nil cuando no se pudo obtener el perfil.
type Result struct {
	Tokens  TokenSet
	Profile Profile
}

// Client habla con los endpoints /oauth/token y /userinfo del proveedor.
type Client struct {
	cfg      *Config
	http     *http.Client
	observer Observer
	tracer   trace.Tracer
}

// Option configura el Client.
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client (tests, proxies, transports custom).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithObserver registra un observador de latencias (métricas).
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New crea un cliente. Con cfg == nil el cliente queda "no configurado" y
// Authenticate retorna ErrNotConfigured.
func New(cfg *Config, opts ...Option) *Client {
	c := &Client{tracer: otel.Tracer(tracerName)}
	if cfg != nil {
		cp := *cfg
		if cp.Timeout <= 0 {
			cp.Timeout = DefaultTimeout
		}
		if cp.Scope == "" {
			cp.Scope = DefaultScope
		}
		c.cfg = &cp
		c.http = &http.Client{Timeout: cp.Timeout}
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	return c
}

// Configured indica si el login delegado está disponible.
func (c *Client) Configured() bool {
	return c != nil && c.cfg != nil
}

// Domain devuelve el dominio configurado ("" si no hay configuración).
func (c *Client) Domain() string {
	if !c.Configured() {
		return ""
	}
	return c.cfg.Domain
}

// TokenURL devuelve el endpoint del grant password.
func (c *Client) TokenURL() string {
	if !c.Configured() {
		return ""
	}
	return "https://" + c.cfg.Domain + "/oauth/token"
}

// UserInfoURL devuelve el endpoint de perfil.
func (c *Client) UserInfoURL() string {
	if !c.Configured() {
		return ""
	}
	return "https://" + c.cfg.Domain + "/userinfo"
}

// Authenticate intercambia username/password por tokens y, si hay
// access_token, pide el perfil del usuario.
//
// Errores:
//   - ErrNotConfigured si el cliente no tiene configuración.
//   - *AuthError si el proveedor rechazó (status del proveedor) o no hubo
//     conectividad (503).
//
// Un fallo al pedir el perfil no hace fallar la autenticación.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	log := logger.From(ctx).With(
		logger.Layer("client"),
		logger.Component("idp"),
		logger.Op("Authenticate"),
		logger.Domain(c.cfg.Domain),
	)

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("scope", c.cfg.Scope)
	if c.cfg.Audience != "" {
		form.Set("audience", c.cfg.Audience)
	}
	if c.cfg.Realm != "" {
		form.Set("realm", c.cfg.Realm)
	}

	status, body, _, err := c.do(ctx, "token", http.MethodPost, c.TokenURL(),
		strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		log.Warn("idp unreachable", logger.Err(err))
		return nil, unreachable(err)
	}
	if status != http.StatusOK {
		log.Info("idp rejected credentials", logger.IdPStatus(status))
		return nil, rejected(status, body)
	}

	res := &Result{Tokens: TokenSet(body)}
	if at := res.Tokens.AccessToken(); at != "" {
		res.Profile = c.fetchProfile(ctx, at)
	}
	return res, nil
}

// fetchProfile pide /userinfo. Cualquier fallo se loguea y retorna nil.
func (c *Client) fetchProfile(ctx context.Context, accessToken string) Profile {
	log := logger.From(ctx).With(logger.Component("idp"), logger.Op("fetchProfile"))

	status, body, ok, err := c.do(ctx, "userinfo", http.MethodGet, c.UserInfoURL(), nil,
		map[string]string{"Authorization": "Bearer " + accessToken},
	)
	switch {
	case err != nil:
		log.Warn("userinfo request failed", logger.Err(err))
		return nil
	case status != http.StatusOK:
		log.Warn("userinfo returned non-200", logger.IdPStatus(status))
		return nil
	case !ok:
		log.Warn("userinfo body is not a JSON object")
		return nil
	}
	return Profile(body)
}

// do ejecuta una llamada acotada por el timeout configurado. El cuerpo de la
// respuesta se decodifica como objeto JSON; si no lo es, body queda vacío y
// ok=false. err != nil solo para fallos de transporte o timeout.
func (c *Client) do(ctx context.Context, call, method, target string, payload io.Reader, headers map[string]string) (status int, body map[string]any, ok bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "idp."+call,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("server.address", c.cfg.Domain),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		result := "ok"
		switch {
		case err != nil:
			result = "error"
		case status != http.StatusOK:
			result = "rejected"
		}
		if c.observer != nil {
			c.observer.ObserveIdPCall(call, result, time.Since(start))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "transport failure")
			return
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}()

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return 0, nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, false, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, false, err
	}
	body, ok = decodeObject(raw)
	return resp.StatusCode, body, ok, nil
}

// decodeObject decodifica un objeto JSON. Cuerpos vacíos, inválidos o que no
// son objetos en el nivel superior devuelven un mapa vacío y ok=false.
// Los números se conservan como json.Number para no perder precisión.
func decodeObject(raw []byte) (map[string]any, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil || out == nil {
		return map[string]any{}, false
	}
	return out, true
}
