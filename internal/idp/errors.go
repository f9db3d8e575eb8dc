package idp

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// DefaultRejectMessage se usa cuando el proveedor rechaza sin descripción.
	DefaultRejectMessage = "No pudimos validar tus credenciales."

	// UnreachableMessage se usa cuando no hay conectividad con el proveedor.
	UnreachableMessage = "No se pudo conectar con el proveedor de identidad."
)

// ErrNotConfigured indica que el login delegado no está disponible.
// No es un error de cara al usuario: el caller debe caer al login local.
var ErrNotConfigured = errors.New("idp: not configured")

// AuthError es un fallo de autenticación delegada: rechazo del proveedor
// (Unreachable=false, Status = status del proveedor) o falta de conectividad
// (Unreachable=true, Status = 503).
type AuthError struct {
	Status      int
	Message     string
	Unreachable bool
	Err         error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("idp: %s (status %d): %v", e.Message, e.Status, e.Err)
	}
	return fmt.Sprintf("idp: %s (status %d)", e.Message, e.Status)
}

func (e *AuthError) Unwrap() error { return e.Err }

func rejected(status int, body map[string]any) *AuthError {
	msg := DefaultRejectMessage
	for _, k := range []string{"error_description", "description", "error"} {
		if s := StringValue(body[k]); s != "" {
			msg = s
			break
		}
	}
	if status < http.StatusOK || status > 599 {
		status = http.StatusBadGateway
	}
	return &AuthError{Status: status, Message: msg}
}

func unreachable(err error) *AuthError {
	return &AuthError{
		Status:      http.StatusServiceUnavailable,
		Message:     UnreachableMessage,
		Unreachable: true,
		Err:         err,
	}
}
