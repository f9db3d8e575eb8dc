// Package errors define los errores HTTP del gateway. Todos se serializan
// como {"error": "<mensaje>"}; Code y Err quedan solo para logs.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError es un error con status HTTP y mensaje de cara al cliente.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error // causa original, nunca se expone al cliente
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is compara por Code, así las copias de WithCause/WithMessage siguen
// matcheando con errors.Is contra el error base.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// New crea un AppError.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// Wrap crea un AppError envolviendo err.
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// WithCause devuelve una COPIA con la causa, para no mutar los errores base.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithMessage devuelve una COPIA con otro mensaje.
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

// FromError convierte cualquier error en *AppError. Lo desconocido es 500
// con mensaje genérico (la causa se conserva para logs).
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

var (
	// 400
	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "Invalid JSON payload.",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrMissingCredentials = &AppError{
		Code:       "MISSING_CREDENTIALS",
		Message:    "Username and password are required.",
		HTTPStatus: http.StatusBadRequest,
	}

	// 401
	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid credentials.",
		HTTPStatus: http.StatusUnauthorized,
	}
	ErrNotAuthenticated = &AppError{
		Code:       "NOT_AUTHENTICATED",
		Message:    "Authentication credentials were not provided.",
		HTTPStatus: http.StatusUnauthorized,
	}

	// 404 / 405
	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "Not found.",
		HTTPStatus: http.StatusNotFound,
	}
	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	// 413
	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "Request body too large.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}

	// 429
	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many login attempts. Try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	// 5xx
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error.",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "Service unavailable.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
