package store

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Migration es un archivo .sql embebido.
type Migration struct {
	Name string
	Up   string
}

// LoadMigrations lee los .sql de dir en orden lexicográfico y extrae la
// sección "-- +migrate Up" (o el archivo completo si no hay marcadores).
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("store: read migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, n := range names {
		p := n
		if dir != "." {
			p = dir + "/" + n
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("store: read migration %s: %w", n, err)
		}
		up := strings.TrimSpace(extractUp(string(raw)))
		if up == "" {
			continue
		}
		out = append(out, Migration{Name: n, Up: up})
	}
	return out, nil
}

func extractUp(content string) string {
	const upMarker, downMarker = "-- +migrate Up", "-- +migrate Down"
	up := strings.Index(content, upMarker)
	if up == -1 {
		return content
	}
	body := content[up+len(upMarker):]
	if down := strings.Index(body, downMarker); down != -1 {
		body = body[:down]
	}
	return body
}
