package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	httperrors "github.com/dropDatabas3/johngate/internal/http/errors"
)

// DefaultMaxBody acota el body de requests JSON.
const DefaultMaxBody int64 = 64 << 10

// ReadJSONObject lee el body completo y exige un único objeto JSON en el
// nivel superior. No valida Content-Type. Errores:
//   - httperrors.ErrBodyTooLarge si supera maxBytes
//   - httperrors.ErrInvalidJSON para cualquier otra cosa (vacío, UTF-8
//     inválido, sintaxis, array/escalar, basura al final)
func ReadJSONObject(w http.ResponseWriter, r *http.Request, maxBytes int64) (map[string]any, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, httperrors.ErrBodyTooLarge.WithCause(err)
		}
		return nil, httperrors.ErrInvalidJSON.WithCause(err)
	}

	// encoding/json reemplaza bytes inválidos por U+FFFD en vez de fallar.
	if !utf8.Valid(raw) {
		return nil, httperrors.ErrInvalidJSON
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, httperrors.ErrInvalidJSON.WithCause(err)
	}
	if obj == nil {
		// "null"
		return nil, httperrors.ErrInvalidJSON
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, httperrors.ErrInvalidJSON
	}
	return obj, nil
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
