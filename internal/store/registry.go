package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Adapter abre conexiones a un tipo de almacenamiento.
type Adapter interface {
	// Name retorna el nombre del driver (ej: "postgres", "sqlite").
	Name() string

	// Aliases son nombres alternativos aceptados en la config ("pg", "postgresql").
	Aliases() []string

	// Connect establece conexión. No aplica migraciones.
	Connect(ctx context.Context, cfg Config) (Store, error)
}

// Config configuración para abrir un store.
type Config struct {
	// Driver: "postgres" | "sqlite" (o un alias).
	Driver string

	// DSN connection string (postgres) o path del archivo (sqlite).
	DSN string

	// Pool settings (postgres).
	MaxConns int32

	// AutoMigrate aplica el schema al abrir.
	AutoMigrate bool
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter en el registry global.
// Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, name := range append([]string{a.Name()}, a.Aliases()...) {
		name = strings.ToLower(name)
		if _, exists := adapters[name]; exists {
			panic(fmt.Sprintf("store: adapter %q already registered", name))
		}
		adapters[name] = a
	}
}

// GetAdapter obtiene un adapter por nombre o alias.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Drivers retorna los nombres canónicos registrados, ordenados.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := map[string]struct{}{}
	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		if _, ok := seen[a.Name()]; ok {
			continue
		}
		seen[a.Name()] = struct{}{}
		names = append(names, a.Name())
	}
	sort.Strings(names)
	return names
}

// Open abre el store del driver configurado y, si AutoMigrate, aplica el schema.
func Open(ctx context.Context, cfg Config) (Store, error) {
	a, ok := GetAdapter(cfg.Driver)
	if !ok {
		return nil, fmt.Errorf("store: driver %q not registered (available: %s)",
			cfg.Driver, strings.Join(Drivers(), ", "))
	}
	st, err := a.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("store: migrate %s: %w", a.Name(), err)
		}
	}
	return st, nil
}
