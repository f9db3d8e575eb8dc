// Package postgres embebe el schema de PostgreSQL.
package postgres

import "embed"

//go:embed *.sql
var FS embed.FS
