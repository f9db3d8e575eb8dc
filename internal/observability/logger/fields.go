package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field es un alias de zap.Field para no importar zap en cada caller.
type Field = zap.Field

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// DurationMs crea un campo con la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field {
	return zap.Int64("duration_ms", d.Milliseconds())
}

// ─── Negocio ───

// Username identifica al usuario local. Nunca loguear el password.
func Username(v string) zap.Field { return zap.String("username", v) }

// UserID crea un campo para el ID interno del usuario.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// AuthMethod indica el camino de autenticación: "idp" o "local".
func AuthMethod(v string) zap.Field { return zap.String("auth_method", v) }

// IdPStatus es el status HTTP devuelto por el proveedor de identidad.
func IdPStatus(v int) zap.Field { return zap.Int("idp_status", v) }

// Domain es el dominio del proveedor de identidad.
func Domain(v string) zap.Field { return zap.String("idp_domain", v) }

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func Any(key string, v any) zap.Field          { return zap.Any(key, v) }
func String(key, v string) zap.Field           { return zap.String(key, v) }
func Bool(key string, v bool) zap.Field        { return zap.Bool(key, v) }
func Strings(key string, v []string) zap.Field { return zap.Strings(key, v) }
