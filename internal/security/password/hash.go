// Package password hashea y verifica credenciales locales.
//
// Formatos aceptados por Verify:
//   - argon2id en formato PHC ($argon2id$v=19$m=...,t=...,p=...$salt$dk)
//   - bcrypt ($2a$, $2b$, $2y$), importado de instalaciones previas
//
// Un hash que empieza con "!" es el marcador "inutilizable": el usuario existe
// pero no puede autenticarse localmente (usuarios creados vía IdP).
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// UnusablePrefix marca un hash que nunca verifica.
const UnusablePrefix = "!"

// ErrEmptyPassword se retorna al intentar hashear un string vacío.
var ErrEmptyPassword = errors.New("password: empty password")

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
	SaltLen     uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32, SaltLen: 16}

// Hash devuelve un PHC string argon2id.
func Hash(p Params, plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	if p.SaltLen == 0 {
		p.SaltLen = 16
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// Verify compara plain contra el hash almacenado en tiempo constante.
// Hashes desconocidos, corruptos o inutilizables retornan false.
func Verify(plain, hash string) bool {
	switch {
	case !IsUsable(hash):
		return false
	case strings.HasPrefix(hash, "$argon2id$"):
		return verifyArgon2id(plain, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	default:
		return false
	}
}

// Unusable genera un marcador inutilizable con sufijo aleatorio, para que
// dos usuarios sin password local no compartan el mismo valor.
func Unusable() string {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return UnusablePrefix
	}
	return UnusablePrefix + base64.RawURLEncoding.EncodeToString(b)
}

// IsUsable indica si el hash puede verificar alguna password.
func IsUsable(hash string) bool {
	return hash != "" && !strings.HasPrefix(hash, UnusablePrefix)
}

// NeedsRehash indica si el hash debería regenerarse con los parámetros p
// (bcrypt heredado o argon2id con parámetros distintos).
func NeedsRehash(p Params, hash string) bool {
	if !IsUsable(hash) {
		return false
	}
	ph, ok := parsePHC(hash)
	if !ok {
		return true
	}
	return ph.m != p.Memory || ph.t != p.Time || ph.p != p.Parallelism || uint32(len(ph.dk)) != p.KeyLen
}

type phc struct {
	m, t uint32
	p    uint8
	salt []byte
	dk   []byte
}

func parsePHC(hash string) (phc, bool) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, dk
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return phc{}, false
	}
	var v int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &v); err != nil || v != argon2.Version {
		return phc{}, false
	}
	var out phc
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &out.m, &out.t, &out.p); err != nil {
		return phc{}, false
	}
	if out.t == 0 || out.p == 0 {
		return phc{}, false
	}
	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return phc{}, false
	}
	if out.dk, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.dk) == 0 {
		return phc{}, false
	}
	return out, true
}

func verifyArgon2id(plain, hash string) bool {
	ph, ok := parsePHC(hash)
	if !ok {
		return false
	}
	key := argon2.IDKey([]byte(plain), ph.salt, ph.t, ph.m, ph.p, uint32(len(ph.dk)))
	return subtle.ConstantTimeCompare(key, ph.dk) == 1
}
