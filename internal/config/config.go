package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config is the process environment of the server.
type Config struct {
	Addr         string
	TLSCert      string
	TLSKey       string
	DatabaseURL  string
	TokenKey     string
	SolverConfig string
	Env          string
	LogLevel     string
	StaticDir    string
}

var ErrNoTokenKey = errors.New("TOKEN_KEY environment variable is not set")

// Load reads .env files (when present) and then the environment.
func Load(files ...string) (Config, error) {
	// a missing .env is fine, the variables may come from the environment
	_ = godotenv.Load(files...)

	c := Config{
		Addr:         getenv("ADDR", ":8443"),
		TLSCert:      os.Getenv("TLS_CERT"),
		TLSKey:       os.Getenv("TLS_KEY"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		TokenKey:     os.Getenv("TOKEN_KEY"),
		SolverConfig: getenv("SOLVER_CONFIG", "conf/solver.ini"),
		Env:          getenv("ENV", "development"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		StaticDir:    getenv("STATIC_DIR", "./static"),
	}
	if c.TokenKey == "" {
		return c, ErrNoTokenKey
	}
	return c, nil
}

func (c Config) TLS() bool { return c.TLSCert != "" && c.TLSKey != "" }

func (c Config) Production() bool { return c.Env == "production" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
