package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// NewLogger returns a JSON logger in production and a text logger otherwise.
// Unknown levels fall back to info.
func NewLogger(env, level string) *log.Logger {
	l := log.New()
	l.SetOutput(os.Stderr)
	if env == "production" {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}
