// Package health contiene los controllers de liveness y readiness.
package health

import (
	"context"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/johngate/internal/http/dto/health"
	"github.com/dropDatabas3/johngate/internal/http/helpers"
	"github.com/dropDatabas3/johngate/internal/observability/logger"
)

// Pinger es cualquier dependencia que se puede chequear (store, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps son las dependencias chequeadas por /readyz.
type Deps struct {
	Components map[string]Pinger
	Version    string
	Timeout    time.Duration // default 2s
}

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	deps Deps
}

// NewHealthController crea el controller.
func NewHealthController(deps Deps) *HealthController {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &HealthController{deps: deps}
}

// Live responde 200 mientras el proceso esté vivo.
func (c *HealthController) Live(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready chequea cada componente; si alguno falla responde 503.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.deps.Timeout)
	defer cancel()

	resp := dto.Response{
		Status:     "ready",
		Components: make(map[string]dto.ComponentStatus, len(c.deps.Components)),
		Version:    c.deps.Version,
		Timestamp:  time.Now().UTC(),
	}
	status := http.StatusOK
	for name, p := range c.deps.Components {
		if p == nil {
			resp.Components[name] = dto.ComponentStatus{Status: "disabled"}
			continue
		}
		if err := p.Ping(ctx); err != nil {
			logger.From(ctx).Warn("readiness check failed", logger.Component(name), logger.Err(err))
			resp.Components[name] = dto.ComponentStatus{Status: "error", Message: err.Error()}
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = dto.ComponentStatus{Status: "ok"}
	}
	helpers.WriteJSON(w, status, resp)
}
