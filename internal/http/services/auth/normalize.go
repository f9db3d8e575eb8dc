package auth

import (
	"strings"

	"github.com/dropDatabas3/johngate/internal/idp"
)

// NormalizedProfile es el perfil canónico local. Ningún campo es null:
// lo desconocido queda "".
type NormalizedProfile struct {
	FirstName string
	LastName  string
	Email     string
}

// Normalize mapea el perfil crudo del proveedor al perfil local.
//
// Orden de precedencia (cada paso solo aplica si first_name sigue vacío):
//  1. given_name, family_name, email (valores no-string cuentan como "").
//  2. name: el primer token es first_name; el resto, unido por un espacio,
//     es last_name si last_name sigue vacío.
//  3. nickname como first_name.
func Normalize(p idp.Profile) NormalizedProfile {
	out := NormalizedProfile{
		FirstName: p.String("given_name"),
		LastName:  p.String("family_name"),
		Email:     p.String("email"),
	}

	if out.FirstName == "" && p.Has("name") {
		parts := strings.Fields(p.String("name"))
		if len(parts) > 0 {
			out.FirstName = parts[0]
		}
		if len(parts) > 1 && out.LastName == "" {
			out.LastName = strings.Join(parts[1:], " ")
		}
	}

	if out.FirstName == "" && p.Has("nickname") {
		out.FirstName = p.String("nickname")
	}
	return out
}
