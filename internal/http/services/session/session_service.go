// Package session emite y resuelve sesiones opacas por cookie.
//
// El id de sesión nunca se guarda en claro: la key de cache es
// "sid:" + SHA256Base64URL(id).
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/johngate/internal/cache"
	dto "github.com/dropDatabas3/johngate/internal/http/dto/session"
	"github.com/dropDatabas3/johngate/internal/http/helpers"
	"github.com/dropDatabas3/johngate/internal/observability/logger"
	tokens "github.com/dropDatabas3/johngate/internal/security/token"
	"github.com/dropDatabas3/johngate/internal/store"
)

const (
	DefaultCookieName = helpers.DefaultSessionCookie
	DefaultTTL        = helpers.DefaultSessionTTL

	keyPrefix = "sid:"
)

// Service errors
var (
	ErrSessionFailed = errors.New("failed to create session")
	ErrNoSession     = errors.New("session not found")
)

// Session es una sesión recién emitida. ID es el valor de la cookie.
type Session struct {
	ID      string
	Payload dto.Payload
}

// Service define las operaciones de sesión.
type Service interface {
	Establish(ctx context.Context, u *store.User, method string) (*Session, error)
	Resolve(ctx context.Context, sessionID string) (*dto.Payload, error)
	Terminate(ctx context.Context, sessionID string) error

	BuildCookie(s *Session) *http.Cookie
	BuildDeletionCookie() *http.Cookie
	CookieName() string
}

// Deps contiene las dependencias del service.
type Deps struct {
	Cache  cache.Client
	Config dto.Config
	Now    func() time.Time // opcional, tests
}

type sessionService struct {
	cache  cache.Client
	config dto.Config
	now    func() time.Time
}

// NewService crea un Service aplicando defaults a la configuración.
func NewService(deps Deps) Service {
	cfg := helpers.NormalizeSessionCookie(deps.Config)
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &sessionService{cache: deps.Cache, config: cfg, now: now}
}

func cacheKey(sessionID string) string {
	return keyPrefix + tokens.SHA256Base64URL(sessionID)
}

// Establish genera un id opaco y guarda el payload en cache con el TTL
// configurado.
func (s *sessionService) Establish(ctx context.Context, u *store.User, method string) (*Session, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session"),
		logger.Op("Establish"),
	)
	if u == nil {
		return nil, ErrSessionFailed
	}

	sessionID, err := tokens.GenerateOpaqueToken(tokens.SessionIDBytes)
	if err != nil {
		log.Error("failed to generate session ID", logger.Err(err))
		return nil, ErrSessionFailed
	}

	payload := dto.Payload{
		UserID:   u.ID,
		Username: u.Username,
		Method:   method,
		Expires:  s.now().Add(s.config.TTL).UTC(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, ErrSessionFailed
	}
	if err := s.cache.Set(ctx, cacheKey(sessionID), string(raw), s.config.TTL); err != nil {
		log.Error("failed to store session in cache", logger.Err(err))
		return nil, ErrSessionFailed
	}

	log.Debug("session created", logger.UserID(u.ID), logger.AuthMethod(method))
	return &Session{ID: sessionID, Payload: payload}, nil
}

// Resolve devuelve el payload de una sesión vigente. ErrNoSession si el id
// está vacío, no existe, expiró o el payload no se puede leer.
func (s *sessionService) Resolve(ctx context.Context, sessionID string) (*dto.Payload, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrNoSession
	}
	raw, err := s.cache.Get(ctx, cacheKey(sessionID))
	if cache.IsNotFound(err) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var p dto.Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logger.From(ctx).Warn("corrupt session payload", logger.Component("session"), logger.Err(err))
		return nil, ErrNoSession
	}
	if !p.Expires.IsZero() && !s.now().Before(p.Expires) {
		return nil, ErrNoSession
	}
	return &p, nil
}

// Terminate borra la sesión. Un id vacío o inexistente no es error.
func (s *sessionService) Terminate(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	err := s.cache.Delete(ctx, cacheKey(sessionID))
	if err != nil && !cache.IsNotFound(err) {
		return err
	}
	return nil
}

// BuildCookie crea la cookie de sesión (HttpOnly, Path=/).
func (s *sessionService) BuildCookie(sess *Session) *http.Cookie {
	return helpers.SessionCookie(s.config, sess.ID)
}

// BuildDeletionCookie crea la cookie que borra la sesión en el navegador.
func (s *sessionService) BuildDeletionCookie() *http.Cookie {
	return helpers.ExpiredSessionCookie(s.config)
}

func (s *sessionService) CookieName() string { return s.config.CookieName }
