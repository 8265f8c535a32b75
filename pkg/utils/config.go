package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration. ADMIN_ID and ADMIN_PW have no
// defaults on purpose: the server must not come up without them.
type Config struct {
	AdminID    string        `env:"ADMIN_ID,notEmpty"`
	AdminPW    string        `env:"ADMIN_PW,notEmpty"`
	Addr       string        `env:"BLOGHUB_ADDR" envDefault:":8080"`
	SessionTTL time.Duration `env:"BLOGHUB_SESSION_TTL" envDefault:"168h"`
}

func LoadConfig() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
