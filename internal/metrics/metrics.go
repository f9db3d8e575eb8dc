// Package metrics define los collectors Prometheus del gateway.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de login (label "outcome").
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid_request"
	OutcomeRejected    = "rejected"
	OutcomeUnreachable = "unreachable"
	OutcomeError       = "error"
)

// Metrics agrupa los collectors. Un valor nil es válido y no registra nada.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	loginAttempts       *prometheus.CounterVec
	idpDuration         *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New crea y registra los collectors en reg. Con reg == nil usa el registry
// global. Registrar dos veces reutiliza los collectors existentes.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{gatherer: prometheus.DefaultGatherer}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	var err error
	if m.httpRequestsTotal, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})); err != nil {
		return nil, err
	}
	if m.httpRequestDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})); err != nil {
		return nil, err
	}
	if m.loginAttempts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Intentos de login por método (idp|local) y resultado",
	}, []string{"method", "outcome"})); err != nil {
		return nil, err
	}
	if m.idpDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idp_request_duration_seconds",
		Help:    "Latencia de las llamadas al proveedor de identidad",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"call", "result"})); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// ObserveHTTP registra un request completado. path debe ser el patrón de ruta,
// no la URL cruda, para acotar la cardinalidad.
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// IncLogin cuenta un intento de login.
func (m *Metrics) IncLogin(method, outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(method, outcome).Inc()
}

// LoginAttempts expone el contador de logins (lectura en tests y health).
func (m *Metrics) LoginAttempts() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.loginAttempts
}

// ObserveIdPCall implementa idp.Observer.
func (m *Metrics) ObserveIdPCall(call, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.idpDuration.WithLabelValues(call, result).Observe(d.Seconds())
}

// Handler expone /metrics para el registry usado en New.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
