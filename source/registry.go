package source

import (
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// A Constructor builds a concrete source from a config.
type Constructor func(cfg Config, logger golog.Logger) (Source, error)

var (
	registryMu sync.RWMutex
	registry   = map[Type]Constructor{}
)

// Register installs the constructor for a source type. Concrete packages
// call this from init; a backend that is not linked in is simply absent.
func Register(t Type, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = c
}

// Open constructs a source of the given type. An unregistered type means the
// backend is unavailable in this build.
func Open(t Type, cfg Config, logger golog.Logger) (Source, error) {
	registryMu.RLock()
	c, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("no %s backend available", t)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s config", t)
	}
	return c(cfg, logger)
}

// Registered reports whether a backend for the given type is available.
func Registered(t Type) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[t]
	return ok
}
