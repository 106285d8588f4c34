package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Server is the process configuration of the HTTP server.
type Server struct {
	Addr           string        `env:"SYNAP_ADDR"            envDefault:":8080"`
	SQLitePath     string        `env:"SYNAP_SQLITE_PATH"     envDefault:"data/synap.db"`
	MigrationsDir  string        `env:"SYNAP_MIGRATIONS_DIR"`
	JWTSecret      string        `env:"SYNAP_JWT_SECRET"      envDefault:"synap-dev-secret"`
	TokenTTL       time.Duration `env:"SYNAP_TOKEN_TTL"       envDefault:"720h"`
	LogLevel       string        `env:"SYNAP_LOG_LEVEL"       envDefault:"info"`
	AnalysisConfig string        `env:"SYNAP_ANALYSIS_CONFIG"`
	StaticDir      string        `env:"SYNAP_STATIC_DIR"`
	CORSOrigins    []string      `env:"SYNAP_CORS_ORIGINS"    envSeparator:","`
	Commit         string        `env:"SYNAP_COMMIT"          envDefault:"dev"`
	BuildTime      string        `env:"SYNAP_BUILD_TIME"`
}

// LoadServer parses Server from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if cfg.TokenTTL <= 0 {
		return Server{}, fmt.Errorf("token ttl must be positive, got %s", cfg.TokenTTL)
	}
	return cfg, nil
}
