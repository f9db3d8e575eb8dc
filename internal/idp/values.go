package idp

// TokenSet es el cuerpo devuelto por /oauth/token. Es opaco: solo se
// inspecciona access_token para pedir el perfil.
type TokenSet map[string]any

// Profile es el cuerpo devuelto por /userinfo. Sus claves dependen del
// proveedor (given_name, family_name, name, nickname, email...).
type Profile map[string]any

// tokenFields son los únicos campos del TokenSet que se exponen al cliente.
var tokenFields = []string{"access_token", "id_token", "token_type", "expires_in", "refresh_token"}

// StringValue coerciona un valor JSON a string. Cualquier valor que no sea
// string (número, bool, null, objeto, array) se convierte en "".
func StringValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// String devuelve el valor de key coercionado con StringValue.
func (p Profile) String(key string) string {
	if p == nil {
		return ""
	}
	return StringValue(p[key])
}

// Has indica si la clave está presente en el perfil, sin importar su tipo.
func (p Profile) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p[key]
	return ok
}

// AccessToken devuelve el access_token si es un string no vacío.
func (t TokenSet) AccessToken() string {
	if t == nil {
		return ""
	}
	return StringValue(t["access_token"])
}

// Public filtra el TokenSet a los campos reconocidos, descartando los
// ausentes o nulos. Retorna nil si no queda ninguno.
func (t TokenSet) Public() map[string]any {
	var out map[string]any
	for _, k := range tokenFields {
		v, ok := t[k]
		if !ok || v == nil {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(tokenFields))
		}
		out[k] = v
	}
	return out
}
