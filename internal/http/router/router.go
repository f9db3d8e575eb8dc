// Package router arma el árbol de rutas chi del gateway.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/johngate/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/johngate/internal/http/controllers/health"
	sessctrl "github.com/dropDatabas3/johngate/internal/http/controllers/session"
	httperrors "github.com/dropDatabas3/johngate/internal/http/errors"
	mw "github.com/dropDatabas3/johngate/internal/http/middlewares"
	"github.com/dropDatabas3/johngate/internal/metrics"
	"github.com/dropDatabas3/johngate/internal/rate"
)

// Deps contiene los controllers y la infraestructura compartida.
type Deps struct {
	Auth    *authctrl.Controllers
	Session *sessctrl.Controllers
	Health  *healthctrl.HealthController
	Metrics *metrics.Metrics

	// LoginLimiter limita POST /api/login por IP. nil = sin límite.
	LoginLimiter rate.Limiter
}

// New crea el handler raíz.
//
//	POST /api/login/   (y /api/login)   login delegado o local
//	POST /api/logout/  (y /api/logout)  borra la sesión
//	GET  /api/session/ (y /api/session) sesión actual
//	GET  /healthz, /readyz, /metrics
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithTracing(),
		mw.WithSecurityHeaders(),
		mw.WithMetrics(d.Metrics),
		mw.WithLogging(),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		r.Get("/healthz", d.Health.Live)
		r.Get("/readyz", d.Health.Ready)
	}
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		// Los controllers validan el método para responder 405 con Allow.
		login := r.With(mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: d.LoginLimiter,
			KeyFunc: mw.IPScopeRateKey("login"),
			Methods: []string{http.MethodPost},
		}))
		login.HandleFunc("/login", d.Auth.Login.Login)
		login.HandleFunc("/login/", d.Auth.Login.Login)

		r.HandleFunc("/logout", d.Session.Logout.Logout)
		r.HandleFunc("/logout/", d.Session.Logout.Logout)
		r.HandleFunc("/session", d.Session.Me.Me)
		r.HandleFunc("/session/", d.Session.Me.Me)
	})

	return r
}
