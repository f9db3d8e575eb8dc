// Package auth contiene los DTOs del login (POST /api/login/).
package auth

// LoginSuccessMessage es el mensaje fijo de la respuesta 200.
const LoginSuccessMessage = "Login successful."

// UserProfile es la vista pública del usuario. Los campos nunca son null:
// un dato desconocido viaja como "".
type UserProfile struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// LoginResponse es la respuesta de un login exitoso.
// Tokens solo está presente tras un login delegado con al menos un campo
// reconocido (access_token, id_token, token_type, expires_in, refresh_token).
type LoginResponse struct {
	Message string         `json:"message"`
	User    UserProfile    `json:"user"`
	Tokens  map[string]any `json:"tokens,omitempty"`
}
