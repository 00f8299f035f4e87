package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/ini.v1"

	"Rodcalc/internal/calc/section"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "SOLVER_CONFIG", "ENV", "LOG_LEVEL", "STATIC_DIR", "TLS_CERT", "TLS_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("TOKEN_KEY", "secret")
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Addr != ":8443" || c.SolverConfig != "conf/solver.ini" || c.TLS() || c.Production() {
		t.Errorf("unexpected defaults %+v", c)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("TOKEN_KEY", "")
	t.Setenv("ADDR", "")
	os.Unsetenv("TOKEN_KEY")
	os.Unsetenv("ADDR")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TOKEN_KEY=abc\nADDR=:9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.TokenKey != "abc" || c.Addr != ":9000" {
		t.Errorf("expected values from .env, got %+v", c)
	}
}

func TestLoadRequiresTokenKey(t *testing.T) {
	t.Setenv("TOKEN_KEY", "")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != ErrNoTokenKey {
		t.Errorf("expected ErrNoTokenKey, got %v", err)
	}
}

func TestParseSolver(t *testing.T) {
	file, err := ini.Load([]byte("[solver]\nmax_iterations = 50\ntolerance = 0.0005\n[network]\natmosphere = 0.1\n"))
	if err != nil {
		t.Fatal(err)
	}
	s := ParseSolver(file)
	if s.Section.MaxIterations != 50 || s.Section.Tolerance != 0.0005 || s.Atmosphere != 0.1 {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.Section.StartVelocity != section.DefaultOptions().StartVelocity {
		t.Errorf("expected default start velocity, got %g", s.Section.StartVelocity)
	}
}

func TestLoadSolverFile(t *testing.T) {
	s, err := LoadSolver("../../conf/solver.ini", nil)
	if err != nil {
		t.Fatal(err)
	}
	if s != DefaultSolver() {
		t.Errorf("shipped config differs from defaults: %+v", s)
	}
}

func TestLoadSolverMissingFile(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s, err := LoadSolver(filepath.Join(t.TempDir(), "none.ini"), logger)
	if err != nil {
		t.Fatal(err)
	}
	if s != DefaultSolver() {
		t.Errorf("expected defaults, got %+v", s)
	}
	if e := hook.LastEntry(); e == nil || e.Level != log.WarnLevel {
		t.Error("expected a warning")
	}
}

func TestNewLogger(t *testing.T) {
	l := NewLogger("production", "debug")
	if _, ok := l.Formatter.(*log.JSONFormatter); !ok || l.Level != log.DebugLevel {
		t.Errorf("unexpected production logger %T %v", l.Formatter, l.Level)
	}
	l = NewLogger("development", "nonsense")
	if _, ok := l.Formatter.(*log.TextFormatter); !ok || l.Level != log.InfoLevel {
		t.Errorf("unexpected development logger %T %v", l.Formatter, l.Level)
	}
}
