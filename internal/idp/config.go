package idp

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultScope se pide cuando AUTH0_SCOPE no está definido.
	DefaultScope = "openid profile email"

	// DefaultTimeout acota cada llamada saliente al proveedor.
	DefaultTimeout = 10 * time.Second
)

// Config es la configuración inmutable del proveedor de identidad.
// Solo existe cuando Domain, ClientID y ClientSecret están presentes.
type Config struct {
	Domain       string
	ClientID     string
	ClientSecret string
	Audience     string // opcional
	Scope        string
	Realm        string // opcional, requerido por algunos tenants de Auth0
	Timeout      time.Duration
}

// idpEnv contiene los valores crudos del entorno.
type idpEnv struct {
	Domain       string `env:"AUTH0_DOMAIN"`
	ClientID     string `env:"AUTH0_CLIENT_ID"`
	ClientSecret string `env:"AUTH0_CLIENT_SECRET"`
	Audience     string `env:"AUTH0_AUDIENCE"`
	Scope        string `env:"AUTH0_SCOPE"`
	Realm        string `env:"AUTH0_REALM"`
	Timeout      string `env:"AUTH0_TIMEOUT"`
}

// LoadConfig lee la configuración del proveedor desde el entorno del proceso.
// Retorna ok=false (no es un error) cuando falta algún campo requerido.
func LoadConfig() (Config, bool) {
	return loadConfig(env.Options{})
}

// LoadConfigFrom es como LoadConfig pero lee de un mapa en vez del entorno.
func LoadConfigFrom(environ map[string]string) (Config, bool) {
	if environ == nil {
		environ = map[string]string{}
	}
	return loadConfig(env.Options{Environment: environ})
}

func loadConfig(opts env.Options) (Config, bool) {
	var raw idpEnv
	if err := env.ParseWithOptions(&raw, opts); err != nil {
		return Config{}, false
	}

	cfg := Config{
		Domain:       strings.TrimSpace(raw.Domain),
		ClientID:     strings.TrimSpace(raw.ClientID),
		ClientSecret: strings.TrimSpace(raw.ClientSecret),
		Audience:     strings.TrimSpace(raw.Audience),
		Scope:        strings.TrimSpace(raw.Scope),
		Realm:        strings.TrimSpace(raw.Realm),
		Timeout:      parseTimeout(raw.Timeout),
	}
	if cfg.Domain == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return Config{}, false
	}
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	return cfg, true
}

const maxTimeoutSeconds = float64(math.MaxInt64 / int64(time.Second))

// parseTimeout interpreta segundos (admite decimales). Valores inválidos,
// no finitos o <= 0 vuelven al default sin error.
func parseTimeout(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTimeout
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(secs) || secs <= 0 || secs > maxTimeoutSeconds {
		return DefaultTimeout
	}
	return time.Duration(secs * float64(time.Second))
}
