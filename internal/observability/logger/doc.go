// Package logger provee un logger Zap singleton con scoping por contexto.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En handlers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))
//	log.Info("login successful", logger.Username(username))
//
// El middleware WithLogging inyecta en el contexto un logger con request_id,
// method y path, así que From(ctx) siempre trae esos campos dentro de un request.
package logger
