package session

import (
	"net/http"

	httperrors "github.com/dropDatabas3/johngate/internal/http/errors"
	svc "github.com/dropDatabas3/johngate/internal/http/services/session"
	"github.com/dropDatabas3/johngate/internal/observability/logger"
)

// LogoutController maneja POST /api/logout/.
type LogoutController struct {
	service svc.Service
}

// NewLogoutController crea el controller.
func NewLogoutController(service svc.Service) *LogoutController {
	return &LogoutController{service: service}
}

// Logout borra la sesión de cache y expira la cookie. Siempre responde 204,
// haya o no sesión.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	if ck, err := r.Cookie(c.service.CookieName()); err == nil {
		if err := c.service.Terminate(ctx, ck.Value); err != nil {
			log.Warn("session terminate failed", logger.Err(err))
		}
	}
	http.SetCookie(w, c.service.BuildDeletionCookie())
	w.WriteHeader(http.StatusNoContent)
}
