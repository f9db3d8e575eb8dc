package password

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist es un conjunto inmutable de passwords prohibidas
// (comparación sin mayúsculas ni espacios alrededor).
type Blacklist struct {
	data map[string]struct{}
}

// NewBlacklist construye una blacklist a partir de valores sueltos.
func NewBlacklist(values ...string) *Blacklist {
	bl := &Blacklist{data: make(map[string]struct{}, len(values))}
	for _, v := range values {
		bl.add(v)
	}
	return bl
}

// LoadBlacklist lee un archivo con una password por línea. Las líneas vacías y
// las que empiezan con "#" se ignoran. path vacío devuelve una lista vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	if strings.TrimSpace(path) == "" {
		return NewBlacklist(), nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBlacklist(f)
}

// ReadBlacklist es como LoadBlacklist pero lee de r.
func ReadBlacklist(r io.Reader) (*Blacklist, error) {
	bl := NewBlacklist()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		bl.add(line)
	}
	return bl, sc.Err()
}

func (b *Blacklist) add(v string) {
	if s := strings.ToLower(strings.TrimSpace(v)); s != "" {
		b.data[s] = struct{}{}
	}
}

// Contains es seguro con receptor nil.
func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}

// Len devuelve la cantidad de entradas.
func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}
