// Package sqlite embebe el schema de SQLite.
package sqlite

import "embed"

//go:embed *.sql
var FS embed.FS
