// Package validation valida valores de configuración del IdP.
package validation

import (
	"regexp"
	"strings"
)

// Un scope OAuth válido para el gateway:
//   - minúsculas, empieza y termina en [a-z0-9]
//   - en el medio admite [a-z0-9:_.-]
//   - largo 1..64
//
// Ej. válidos: openid, offline_access, read:messages.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName indica si name es un scope individual válido.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// InvalidScopes separa scope por espacios y devuelve los tokens inválidos.
// Un resultado vacío significa que el scope es usable.
func InvalidScopes(scope string) []string {
	var bad []string
	for _, s := range strings.Fields(scope) {
		if !ValidScopeName(s) {
			bad = append(bad, s)
		}
	}
	return bad
}
