package errors

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteError escribe {"error": msg} con el status del AppError.
// El status del IdP se propaga tal cual; solo los que net/http no puede
// escribir como respuesta final (fuera de 200..599) se convierten en 502.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	status := appErr.HTTPStatus
	if status < 200 || status > 599 {
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: appErr.Message})
}
