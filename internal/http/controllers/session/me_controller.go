package session

import (
	"context"
	"errors"
	"net/http"

	authdto "github.com/dropDatabas3/johngate/internal/http/dto/auth"
	dto "github.com/dropDatabas3/johngate/internal/http/dto/session"
	httperrors "github.com/dropDatabas3/johngate/internal/http/errors"
	"github.com/dropDatabas3/johngate/internal/http/helpers"
	svc "github.com/dropDatabas3/johngate/internal/http/services/session"
	"github.com/dropDatabas3/johngate/internal/observability/logger"
	"github.com/dropDatabas3/johngate/internal/store"
)

// UserLookup busca el usuario dueño de la sesión.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*store.User, error)
}

// MeController maneja GET /api/session/.
type MeController struct {
	service svc.Service
	users   UserLookup
}

// NewMeController crea el controller.
func NewMeController(service svc.Service, users UserLookup) *MeController {
	return &MeController{service: service, users: users}
}

// Me devuelve el usuario de la sesión actual o 401.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MeController.Me"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	ck, err := r.Cookie(c.service.CookieName())
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrNotAuthenticated)
		return
	}
	p, err := c.service.Resolve(ctx, ck.Value)
	if errors.Is(err, svc.ErrNoSession) {
		httperrors.WriteError(w, httperrors.ErrNotAuthenticated)
		return
	}
	if err != nil {
		log.Error("session resolve failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	u, err := c.users.GetByUsername(ctx, p.Username)
	if errors.Is(err, store.ErrNotFound) {
		// el usuario se borró después de emitir la sesión
		httperrors.WriteError(w, httperrors.ErrNotAuthenticated)
		return
	}
	if err != nil {
		log.Error("user lookup failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{
		User: authdto.UserProfile{
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		},
		Method:    p.Method,
		ExpiresAt: p.Expires,
	})
}
