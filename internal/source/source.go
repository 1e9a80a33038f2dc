// Package source loads the raw stamp table from files, HTTP endpoints or
// PostgreSQL. Every loader yields a core.Table with cells as plain strings;
// no type inference happens here.
package source

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/stamps/internal/core"
)

// Loader is re-exported so callers need not import core for the interface.
type Loader = core.Loader

// ErrSourceTooLarge is returned when a payload exceeds Config.MaxSize.
var ErrSourceTooLarge = errors.New("source too large")

// Config selects and parameterizes a loader.
type Config struct {
	Kind        string        // "file", "http" or "postgres"
	Path        string        // file: local path
	Sheet       string        // file: worksheet name for .xlsx (default: first sheet)
	URL         string        // http: endpoint returning CSV
	Timeout     time.Duration // http and postgres request timeout
	DatabaseURL string        // postgres: connection string
	Query       string        // postgres: query returning the table
	MaxSize     int64         // file and http: maximum payload bytes (0 = unlimited)
}

// Factory builds a Loader from a Config.
type Factory func(cfg Config) (Loader, error)

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

// Register adds a loader factory under kind.
// Panics if the kind is already registered.
func Register(kind string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[kind]; exists {
		panic(fmt.Sprintf("source kind already registered: %s", kind))
	}
	registry[kind] = f
}

// New builds the loader registered for cfg.Kind.
func New(cfg Config) (Loader, error) {
	registryMu.RLock()
	f, ok := registry[cfg.Kind]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown source kind %q (known: %v)", cfg.Kind, Kinds())
	}
	return f(cfg)
}

// Kinds returns the registered kinds, sorted.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func init() {
	Register("file", func(cfg Config) (Loader, error) { return NewFileLoader(cfg) })
	Register("http", func(cfg Config) (Loader, error) { return NewHTTPLoader(cfg) })
	Register("postgres", func(cfg Config) (Loader, error) { return NewPostgresLoader(cfg) })
}
