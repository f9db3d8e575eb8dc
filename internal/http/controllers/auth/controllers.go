// Package auth contiene el controller de login.
package auth

import svc "github.com/dropDatabas3/johngate/internal/http/services/auth"

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Login *LoginController
}

// Services son los services que consumen los controllers.
type Services struct {
	Login    svc.LoginService
	Sessions CookieBuilder
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s Services, maxBody int64) *Controllers {
	return &Controllers{
		Login: NewLoginController(s.Login, s.Sessions, maxBody),
	}
}
