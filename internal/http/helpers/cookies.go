package helpers

import (
	"net/http"
	"strings"
	"time"

	sessiondto "github.com/dropDatabas3/johngate/internal/http/dto/session"
)

// Defaults de la cookie de sesión.
const (
	DefaultSessionCookie = "sid"
	DefaultSessionTTL    = 12 * time.Hour
)

// ParseSameSite interpreta Lax/Strict/None sin importar mayúsculas.
// Cualquier otro valor es Lax.
func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// NormalizeSessionCookie completa nombre, TTL y SameSite. SameSite=None
// fuerza Secure: los navegadores descartan la cookie si no.
func NormalizeSessionCookie(cfg sessiondto.Config) sessiondto.Config {
	cfg.CookieName = strings.TrimSpace(cfg.CookieName)
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookie
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	switch ParseSameSite(cfg.SameSite) {
	case http.SameSiteStrictMode:
		cfg.SameSite = "Strict"
	case http.SameSiteNoneMode:
		cfg.SameSite = "None"
		cfg.Secure = true
	default:
		cfg.SameSite = "Lax"
	}
	cfg.CookieDomain = strings.TrimSpace(cfg.CookieDomain)
	return cfg
}

// SessionCookie arma la cookie HttpOnly (Path=/) que lleva el id de sesión.
func SessionCookie(cfg sessiondto.Config, sessionID string) *http.Cookie {
	cfg = NormalizeSessionCookie(cfg)
	ck := baseCookie(cfg)
	ck.Value = sessionID
	ck.Expires = time.Now().Add(cfg.TTL).UTC()
	ck.MaxAge = int(cfg.TTL.Seconds())
	return ck
}

// ExpiredSessionCookie es una cookie vacía ya expirada con los mismos
// atributos, para que el navegador reemplace y borre la de sesión.
func ExpiredSessionCookie(cfg sessiondto.Config) *http.Cookie {
	ck := baseCookie(NormalizeSessionCookie(cfg))
	ck.Expires = time.Unix(0, 0).UTC()
	ck.MaxAge = -1
	return ck
}

func baseCookie(cfg sessiondto.Config) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: ParseSameSite(cfg.SameSite),
	}
}
