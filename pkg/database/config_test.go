package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/labelsort/pkg/database"
)

var testEnv = &database.Env{
	URL:          "TEST_DB_URL",
	Host:         "TEST_DB_HOST",
	Port:         "TEST_DB_PORT",
	Name:         "TEST_DB_NAME",
	User:         "TEST_DB_USER",
	MaxOpenConns: "TEST_DB_MAX_OPEN_CONNS",
}

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{Name: "labelsort", User: "labelsort"}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "localhost" || cfg.Port != 5432 || cfg.SSLMode != "disable" {
		t.Errorf("connection defaults = %s:%d %s", cfg.Host, cfg.Port, cfg.SSLMode)
	}
	if cfg.ConnMaxLifetimeDuration() != 15*time.Minute {
		t.Errorf("conn max lifetime = %v, want 15m", cfg.ConnMaxLifetimeDuration())
	}
	if cfg.ConnTimeoutDuration() != 5*time.Second {
		t.Errorf("conn timeout = %v, want 5s", cfg.ConnTimeoutDuration())
	}
}

func TestFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_PORT", "6543")
	t.Setenv("TEST_DB_NAME", "labels")
	t.Setenv("TEST_DB_USER", "sorter")
	t.Setenv("TEST_DB_MAX_OPEN_CONNS", "40")

	cfg := database.Config{}
	if err := cfg.Finalize(testEnv); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	dsn := cfg.Dsn()
	for _, part := range []string{"host=db.internal", "port=6543", "dbname=labels", "user=sorter"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("Dsn() = %q, missing %q", dsn, part)
		}
	}
	if cfg.MaxOpenConns != 40 {
		t.Errorf("max open conns = %d, want 40", cfg.MaxOpenConns)
	}
}

func TestURLOverridesFields(t *testing.T) {
	t.Setenv("TEST_DB_URL", "postgres://u:p@h:5432/d?sslmode=disable")

	cfg := database.Config{}
	if err := cfg.Finalize(testEnv); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.Dsn() != "postgres://u:p@h:5432/d?sslmode=disable" {
		t.Errorf("Dsn() = %q", cfg.Dsn())
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
	}{
		{"missing name", database.Config{User: "u"}},
		{"missing user", database.Config{Name: "n"}},
		{"bad lifetime", database.Config{Name: "n", User: "u", ConnMaxLifetime: "soon"}},
		{"idle exceeds open", database.Config{Name: "n", User: "u", MaxOpenConns: 2, MaxIdleConns: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{Host: "a", Port: 1, Name: "n"}
	base.Merge(&database.Config{Host: "b", MaxOpenConns: 3})

	if base.Host != "b" || base.Port != 1 || base.Name != "n" || base.MaxOpenConns != 3 {
		t.Errorf("Merge() = %+v", base)
	}
}
