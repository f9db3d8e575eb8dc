// Package tokens genera identificadores opacos (ids de sesión, request ids)
// y sus digests para usarlos como claves de almacenamiento.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// SessionIDBytes es la entropía de un id de sesión.
const SessionIDBytes = 32

var errInvalidSize = errors.New("tokens: size must be positive")

// GenerateOpaqueToken genera nBytes aleatorios codificados en base64url sin padding.
func GenerateOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", errInvalidSize
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SHA256Base64URL devuelve sha256(s) en base64url sin padding.
// El id de sesión en claro nunca se guarda: solo su digest.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
