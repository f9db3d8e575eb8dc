// Package session contiene los DTOs de la sesión por cookie.
package session

import (
	"time"

	"github.com/dropDatabas3/johngate/internal/http/dto/auth"
)

// Method indica cómo se autenticó la sesión.
const (
	MethodDelegated = "idp"
	MethodLocal     = "local"
)

// Payload es lo que se guarda en cache bajo "sid:<hash>".
type Payload struct {
	UserID   string    `json:"uid"`
	Username string    `json:"username"`
	Method   string    `json:"method"`
	Expires  time.Time `json:"exp"`
}

// Config configura la cookie de sesión.
type Config struct {
	CookieName   string        // default "sid"
	CookieDomain string        // vacío = host actual
	SameSite     string        // "Lax" | "Strict" | "None"
	Secure       bool          // obligatorio con SameSite=None
	TTL          time.Duration // default 12h
}

// MeResponse es la respuesta de GET /api/session/.
type MeResponse struct {
	User      auth.UserProfile `json:"user"`
	Method    string           `json:"method"`
	ExpiresAt time.Time        `json:"expires_at"`
}
