// Package auth contiene el orquestador de login: valida la entrada, intenta
// el login delegado y, si el proveedor no está configurado, cae al login
// local contra el store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/johngate/internal/audit"
	authdto "github.com/dropDatabas3/johngate/internal/http/dto/auth"
	sessdto "github.com/dropDatabas3/johngate/internal/http/dto/session"
	"github.com/dropDatabas3/johngate/internal/http/services/session"
	"github.com/dropDatabas3/johngate/internal/idp"
	"github.com/dropDatabas3/johngate/internal/metrics"
	"github.com/dropDatabas3/johngate/internal/observability/logger"
	"github.com/dropDatabas3/johngate/internal/security/password"
	"github.com/dropDatabas3/johngate/internal/store"
)

// LoginService define la operación de login.
type LoginService interface {
	// Login recibe el body ya decodificado como objeto JSON.
	Login(ctx context.Context, raw map[string]any) (*LoginResult, error)
}

// LoginResult es un login exitoso: la respuesta a serializar y la sesión
// para la cookie.
type LoginResult struct {
	Response authdto.LoginResponse
	Session  *session.Session
}

// Delegate es la parte del cliente IdP que usa el login.
type Delegate interface {
	Authenticate(ctx context.Context, username, password string) (*idp.Result, error)
}

// LoginDeps contiene las dependencias del login service.
type LoginDeps struct {
	IdP      Delegate
	Users    store.UserRepository
	Sessions session.Service
	Metrics  *metrics.Metrics // nil = sin métricas

	// HashParams se usa para rehashear passwords locales con parámetros
	// viejos o bcrypt importado. Cero = password.Default.
	HashParams password.Params
}

type loginService struct {
	deps       LoginDeps
	reconciler *Reconciler
}

// NewLoginService crea el orquestador.
func NewLoginService(deps LoginDeps) LoginService {
	if deps.HashParams == (password.Params{}) {
		deps.HashParams = password.Default
	}
	return &loginService{deps: deps, reconciler: NewReconciler(deps.Users)}
}

// Errores de login. *idp.AuthError se propaga sin envolver.
var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Credentials son los campos de entrada ya validados.
// Username viene recortado; Password se conserva tal cual.
type Credentials struct {
	Username string
	Password string
}

// usernameKeys en orden de precedencia: "usuario" es el alias legado.
var usernameKeys = []string{"username", "usuario"}

// ParseCredentials valida el body. Gana el primer username que sea string no
// vacío y recién después se recorta: "   " en username no cae al alias. La
// password debe ser string y no estar en blanco.
func ParseCredentials(raw map[string]any) (Credentials, error) {
	var c Credentials
	for _, k := range usernameKeys {
		if v := idp.StringValue(raw[k]); v != "" {
			c.Username = strings.TrimSpace(v)
			break
		}
	}
	pwd, ok := raw["password"].(string)
	if !ok || strings.TrimSpace(pwd) == "" || c.Username == "" {
		return Credentials{}, ErrMissingCredentials
	}
	c.Password = pwd
	return c, nil
}

func (s *loginService) Login(ctx context.Context, raw map[string]any) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)

	creds, err := ParseCredentials(raw)
	if err != nil {
		s.deps.Metrics.IncLogin("none", metrics.OutcomeInvalid)
		return nil, err
	}
	log = log.With(logger.Username(creds.Username))
	ctx = logger.ToContext(ctx, log)

	res, err := s.deps.IdP.Authenticate(ctx, creds.Username, creds.Password)
	switch {
	case err == nil:
		return s.completeDelegated(ctx, creds.Username, res)
	case errors.Is(err, idp.ErrNotConfigured):
		return s.loginLocal(ctx, creds)
	default:
		outcome, status := metrics.OutcomeRejected, 0
		var ae *idp.AuthError
		if errors.As(err, &ae) {
			status = ae.Status
			if ae.Unreachable {
				outcome = metrics.OutcomeUnreachable
			}
		}
		s.deps.Metrics.IncLogin(sessdto.MethodDelegated, outcome)
		audit.Log(ctx, audit.Event{
			Name:     audit.EventLoginFailed,
			Username: creds.Username,
			Method:   sessdto.MethodDelegated,
			Reason:   outcome,
			Status:   status,
		})
		log.Info("delegated login failed", logger.Err(err))
		return nil, err
	}
}

func (s *loginService) completeDelegated(ctx context.Context, username string, res *idp.Result) (*LoginResult, error) {
	profile := Normalize(res.Profile)

	u, err := s.reconciler.Reconcile(ctx, username, profile)
	if err != nil {
		s.deps.Metrics.IncLogin(sessdto.MethodDelegated, metrics.OutcomeError)
		return nil, fmt.Errorf("reconcile local user: %w", err)
	}

	sess, err := s.deps.Sessions.Establish(ctx, u, sessdto.MethodDelegated)
	if err != nil {
		s.deps.Metrics.IncLogin(sessdto.MethodDelegated, metrics.OutcomeError)
		return nil, err
	}

	s.deps.Metrics.IncLogin(sessdto.MethodDelegated, metrics.OutcomeSuccess)
	audit.Log(ctx, audit.Event{
		Name:     audit.EventLoginSucceeded,
		Username: username,
		UserID:   u.ID,
		Method:   sessdto.MethodDelegated,
		Email:    profile.Email,
	})

	return &LoginResult{
		Response: authdto.LoginResponse{
			Message: authdto.LoginSuccessMessage,
			User: authdto.UserProfile{
				Username:  username,
				FirstName: profile.FirstName,
				LastName:  profile.LastName,
				Email:     profile.Email,
			},
			Tokens: res.Tokens.Public(),
		},
		Session: sess,
	}, nil
}

func (s *loginService) loginLocal(ctx context.Context, creds Credentials) (*LoginResult, error) {
	log := logger.From(ctx).With(logger.AuthMethod(sessdto.MethodLocal))

	u, err := s.deps.Users.GetByUsername(ctx, creds.Username)
	if errors.Is(err, store.ErrNotFound) {
		log.Debug("user not found")
		return nil, s.rejectLocal(ctx, creds.Username, "unknown_user")
	}
	if err != nil {
		s.deps.Metrics.IncLogin(sessdto.MethodLocal, metrics.OutcomeError)
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !password.Verify(creds.Password, u.PasswordHash) {
		log.Debug("password mismatch")
		return nil, s.rejectLocal(ctx, creds.Username, "password_mismatch")
	}
	s.maybeRehash(ctx, u, creds.Password)

	sess, err := s.deps.Sessions.Establish(ctx, u, sessdto.MethodLocal)
	if err != nil {
		s.deps.Metrics.IncLogin(sessdto.MethodLocal, metrics.OutcomeError)
		return nil, err
	}

	s.deps.Metrics.IncLogin(sessdto.MethodLocal, metrics.OutcomeSuccess)
	audit.Log(ctx, audit.Event{
		Name:     audit.EventLoginSucceeded,
		Username: u.Username,
		UserID:   u.ID,
		Method:   sessdto.MethodLocal,
	})

	return &LoginResult{
		Response: authdto.LoginResponse{
			Message: authdto.LoginSuccessMessage,
			User: authdto.UserProfile{
				Username:  u.Username,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Email:     u.Email,
			},
		},
		Session: sess,
	}, nil
}

// rejectLocal registra el rechazo y devuelve siempre el mismo error, sin
// distinguir usuario inexistente de password incorrecta.
func (s *loginService) rejectLocal(ctx context.Context, username, reason string) error {
	s.deps.Metrics.IncLogin(sessdto.MethodLocal, metrics.OutcomeRejected)
	audit.Log(ctx, audit.Event{
		Name:     audit.EventLoginFailed,
		Username: username,
		Method:   sessdto.MethodLocal,
		Reason:   reason,
	})
	return ErrInvalidCredentials
}

// maybeRehash actualiza el hash si usa parámetros viejos. Es best effort:
// un fallo solo se loguea.
func (s *loginService) maybeRehash(ctx context.Context, u *store.User, plain string) {
	if !password.NeedsRehash(s.deps.HashParams, u.PasswordHash) {
		return
	}
	log := logger.From(ctx)
	h, err := password.Hash(s.deps.HashParams, plain)
	if err == nil {
		err = s.deps.Users.SetPassword(ctx, u.Username, h)
	}
	if err != nil {
		log.Warn("password rehash failed", logger.Err(err))
		return
	}
	u.PasswordHash = h
	log.Debug("password rehashed")
}
