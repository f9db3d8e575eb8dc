// Package server arma el handler HTTP con todas sus dependencias.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/johngate/internal/cache"
	"github.com/dropDatabas3/johngate/internal/config"
	authctrl "github.com/dropDatabas3/johngate/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/johngate/internal/http/controllers/health"
	sessctrl "github.com/dropDatabas3/johngate/internal/http/controllers/session"
	sessdto "github.com/dropDatabas3/johngate/internal/http/dto/session"
	"github.com/dropDatabas3/johngate/internal/http/router"
	authsvc "github.com/dropDatabas3/johngate/internal/http/services/auth"
	sessionsvc "github.com/dropDatabas3/johngate/internal/http/services/session"
	"github.com/dropDatabas3/johngate/internal/idp"
	"github.com/dropDatabas3/johngate/internal/metrics"
	"github.com/dropDatabas3/johngate/internal/observability/logger"
	"github.com/dropDatabas3/johngate/internal/rate"
	"github.com/dropDatabas3/johngate/internal/store"

	// Registran los adapters via init()
	_ "github.com/dropDatabas3/johngate/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/johngate/internal/store/adapters/sqlite"
)

// Options son dependencias opcionales, principalmente para tests.
type Options struct {
	// IdP es la configuración del proveedor. nil = solo login local.
	IdP *idp.Config

	// IdPHTTPClient reemplaza el http.Client del cliente IdP.
	IdPHTTPClient *http.Client

	// Registry de Prometheus. nil = registry global.
	Registry prometheus.Registerer

	Version string
}

// App es el resultado del wiring. Close libera store y cache.
type App struct {
	Handler http.Handler
	Store   store.Store
	Cache   cache.Client
	Metrics *metrics.Metrics
	IdP     *idp.Client

	closers []func() error
}

// Close cierra los recursos en orden inverso de creación.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Build conecta store, cache, limiter, métricas y cliente IdP, y devuelve el
// router listo para servir.
func Build(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	log := logger.From(ctx).With(logger.Component("server.wiring"))
	app := &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	// 1. Store
	app.Store, err = store.Open(ctx, store.Config{
		Driver:      cfg.Storage.Driver,
		DSN:         cfg.Storage.DSN,
		MaxConns:    int32(cfg.Storage.MaxConns),
		AutoMigrate: cfg.Storage.AutoMigrate,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	app.closers = append(app.closers, app.Store.Close)
	log.Info("store ready", logger.String("driver", app.Store.Driver()))

	// 2. Cache (sesiones)
	app.Cache, err = cache.New(ctx, cache.Config{
		Kind:     cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	app.closers = append(app.closers, app.Cache.Close)

	// 3. Rate limiter de login
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if rc, ok := app.Cache.(*cache.Redis); ok {
			limiter = rate.NewRedisLimiter(rc.Underlying(), cfg.Cache.Redis.Prefix, cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.Rate.Login.Window)
		}
	}

	// 4. Métricas
	app.Metrics, err = metrics.New(opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	// 5. IdP
	idpOpts := []idp.Option{idp.WithObserver(app.Metrics)}
	if opts.IdPHTTPClient != nil {
		idpOpts = append(idpOpts, idp.WithHTTPClient(opts.IdPHTTPClient))
	}
	app.IdP = idp.New(opts.IdP, idpOpts...)
	if app.IdP.Configured() {
		log.Info("delegated login enabled", logger.Domain(app.IdP.Domain()))
	} else {
		log.Info("idp not configured, using local login")
	}

	// 6. Services
	sessions := sessionsvc.NewService(sessionsvc.Deps{
		Cache: app.Cache,
		Config: sessdto.Config{
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.Domain,
			SameSite:     cfg.Session.SameSite,
			Secure:       cfg.Session.Secure,
			TTL:          cfg.Session.TTL,
		},
	})
	login := authsvc.NewLoginService(authsvc.LoginDeps{
		IdP:      app.IdP,
		Users:    app.Store,
		Sessions: sessions,
		Metrics:  app.Metrics,
	})

	// 7. Controllers + router
	app.Handler = router.New(router.Deps{
		Auth:    authctrl.NewControllers(authctrl.Services{Login: login, Sessions: sessions}, cfg.Server.MaxBodyBytes),
		Session: sessctrl.NewControllers(sessions, app.Store),
		Health: healthctrl.NewHealthController(healthctrl.Deps{
			Components: map[string]healthctrl.Pinger{
				"store": app.Store,
				"cache": app.Cache,
			},
			Version: opts.Version,
		}),
		Metrics:      app.Metrics,
		LoginLimiter: limiter,
	})
	return app, nil
}
