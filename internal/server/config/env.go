package config

import (
	"errors"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// dotenvPath is the optional file loaded into the process environment
// before env tags are read. Existing variables are never overridden.
var dotenvPath = ".env"

// parseEnv overlays values from environment variables named by the `env`
// struct tags. Unset variables keep the current value. A malformed .env
// file or an unparsable value panics.
func parseEnv(config *Config) {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		panic(err)
	}
}
