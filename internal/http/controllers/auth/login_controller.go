package auth

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/johngate/internal/http/errors"
	"github.com/dropDatabas3/johngate/internal/http/helpers"
	svc "github.com/dropDatabas3/johngate/internal/http/services/auth"
	"github.com/dropDatabas3/johngate/internal/http/services/session"
	"github.com/dropDatabas3/johngate/internal/idp"
	"github.com/dropDatabas3/johngate/internal/observability/logger"
)

// CookieBuilder arma la cookie de una sesión emitida.
type CookieBuilder interface {
	BuildCookie(s *session.Session) *http.Cookie
}

// LoginController maneja POST /api/login/.
type LoginController struct {
	service svc.LoginService
	cookies CookieBuilder
	maxBody int64
}

// NewLoginController crea el controller. maxBody <= 0 usa el default.
func NewLoginController(service svc.LoginService, cookies CookieBuilder, maxBody int64) *LoginController {
	return &LoginController{service: service, cookies: cookies, maxBody: maxBody}
}

// Login valida credenciales (IdP o local), fija la cookie de sesión y
// responde el perfil normalizado.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	raw, err := helpers.ReadJSONObject(w, r, c.maxBody)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	result, err := c.service.Login(ctx, raw)
	if err != nil {
		var ae *idp.AuthError
		switch {
		case errors.Is(err, svc.ErrMissingCredentials):
			httperrors.WriteError(w, httperrors.ErrMissingCredentials)
		case errors.Is(err, svc.ErrInvalidCredentials):
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		case errors.As(err, &ae):
			code := "IDP_REJECTED"
			if ae.Unreachable {
				code = "IDP_UNREACHABLE"
			}
			httperrors.WriteError(w, httperrors.Wrap(ae, ae.Status, code, ae.Message))
		default:
			log.Error("login error", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	http.SetCookie(w, c.cookies.BuildCookie(result.Session))
	helpers.WriteJSON(w, http.StatusOK, result.Response)
}
