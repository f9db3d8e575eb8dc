// Package audit registra eventos de seguridad (intentos de login, altas de
// usuarios) en un logger zap dedicado, separado del log de requests.
package audit

import (
	"context"

	"github.com/dropDatabas3/johngate/internal/observability/logger"
	"github.com/dropDatabas3/johngate/internal/util"
)

// Nombres de eventos.
const (
	EventLoginSucceeded  = "login.succeeded"
	EventLoginFailed     = "login.failed"
	EventUserProvisioned = "user.provisioned"
)

// Event es un evento de auditoría. Los campos vacíos no se emiten.
// Email se enmascara antes de loguear.
type Event struct {
	Name     string
	Username string
	UserID   string
	Method   string // "idp" | "local"
	Reason   string // motivo de fallo
	Status   int    // status devuelto al cliente en fallos
	Email    string
}

// Log emite el evento con el request_id del logger del contexto.
func Log(ctx context.Context, e Event) {
	fields := []logger.Field{logger.String("event", e.Name)}
	if e.Username != "" {
		fields = append(fields, logger.Username(e.Username))
	}
	if e.UserID != "" {
		fields = append(fields, logger.UserID(e.UserID))
	}
	if e.Method != "" {
		fields = append(fields, logger.AuthMethod(e.Method))
	}
	if e.Reason != "" {
		fields = append(fields, logger.String("reason", e.Reason))
	}
	if e.Status != 0 {
		fields = append(fields, logger.Status(e.Status))
	}
	if e.Email != "" {
		fields = append(fields, logger.String("email", util.MaskEmail(e.Email)))
	}
	logger.From(ctx).Named("audit").Info("audit", fields...)
}
