package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type cache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	loaded = &cache{values: make(map[reflect.Type]any)}

	dotenvOnce sync.Once
)

// Load fills v from environment variables using `env` struct tags.
// Subsequent calls for the same type return the cached copy.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// a missing .env file is the normal case outside local development
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	loaded.mu.Lock()
	defer loaded.mu.Unlock()

	if cached, ok := loaded.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded.values[key] = parsed
	*v = parsed

	return nil
}
