// Package store define el repositorio de usuarios locales y el registry de
// adapters (postgres, sqlite). Cada adapter se registra en su init():
//
//	import _ "github.com/dropDatabas3/johngate/internal/store/adapters/sqlite"
//
//	st, err := store.Open(ctx, store.Config{Driver: "sqlite", DSN: "johngate.db"})
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indica que el usuario no existe.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict indica violación de unicidad (username duplicado).
	ErrConflict = errors.New("store: conflict")
)

// User es el registro local de un usuario.
//
// PasswordHash es un hash verificable (argon2id/bcrypt) o el marcador
// inutilizable ("!..."), ver internal/security/password.
type User struct {
	ID           string
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileUpdate describe una escritura parcial: solo los campos no-nil se tocan.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// Empty indica si no hay nada que escribir.
func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil
}

// Apply copia los campos no-nil sobre usr.
func (u ProfileUpdate) Apply(usr *User) {
	if u.FirstName != nil {
		usr.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		usr.LastName = *u.LastName
	}
	if u.Email != nil {
		usr.Email = *u.Email
	}
}

// UserRepository es el contrato de persistencia de usuarios locales.
type UserRepository interface {
	// GetByUsername retorna ErrNotFound si no existe.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create inserta el usuario. Si ID está vacío se genera uno.
	// Retorna ErrConflict si el username ya existe.
	Create(ctx context.Context, u User) (*User, error)

	// UpdateProfile aplica upd en una sola sentencia (junto con updated_at).
	// Un upd vacío no escribe nada. Retorna ErrNotFound si no existe.
	UpdateProfile(ctx context.Context, username string, upd ProfileUpdate) error

	// SetPassword reemplaza el hash. Retorna ErrNotFound si no existe.
	SetPassword(ctx context.Context, username, hash string) error

	Ping(ctx context.Context) error
	Close() error
}

// Store es una conexión abierta por un adapter.
type Store interface {
	UserRepository

	// Driver retorna el nombre del adapter ("postgres", "sqlite").
	Driver() string

	// Migrate aplica el schema embebido. Es idempotente.
	Migrate(ctx context.Context) error
}
