// Package middlewares contiene los decoradores http.Handler del gateway.
//
// Orden recomendado (el primero es el más externo):
//
//	Chain(h, WithRecover(), WithRequestID(), WithSecurityHeaders(), WithNoStore(),
//	      WithRateLimit(...), WithMetrics(m), WithLogging())
package middlewares

import "net/http"

// Middleware es un decorador de http.Handler
type Middleware func(http.Handler) http.Handler

// Chain aplica middlewares en orden de izquierda a derecha.
// Chain(h, A, B, C) ejecuta: A -> B -> C -> h
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// ChainFunc es un helper para encadenar middlewares a un http.HandlerFunc
func ChainFunc(hf http.HandlerFunc, mws ...Middleware) http.Handler {
	return Chain(hf, mws...)
}

// Noop no decora.
func Noop() Middleware {
	return func(next http.Handler) http.Handler { return next }
}
