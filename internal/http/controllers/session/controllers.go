// Package session contiene los controllers de la sesión por cookie.
package session

import svc "github.com/dropDatabas3/johngate/internal/http/services/session"

// Controllers agrupa los controllers del dominio session.
type Controllers struct {
	Logout *LogoutController
	Me     *MeController
}

// NewControllers crea el agregador.
func NewControllers(s svc.Service, users UserLookup) *Controllers {
	return &Controllers{
		Logout: NewLogoutController(s),
		Me:     NewMeController(s, users),
	}
}
