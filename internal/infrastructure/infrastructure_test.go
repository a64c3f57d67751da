package infrastructure_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/JaimeStill/labelsort/internal/config"
	"github.com/JaimeStill/labelsort/internal/infrastructure"
	"github.com/JaimeStill/labelsort/pkg/database"
	"github.com/JaimeStill/labelsort/pkg/storage"
)

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Database: database.Config{
			Name: "labelsort",
			User: "labelsort",
		},
		Storage: storage.Config{
			Provider: storage.ProviderLocal,
			Root:     t.TempDir(),
		},
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize config: %v", err)
	}
	return cfg
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Sorter == nil {
		t.Error("Sorter is nil")
	}
	if infra.Verifier != nil {
		t.Error("Verifier set with auth disabled")
	}

	conn := infra.Database.Connection()
	if conn == nil {
		t.Fatal("Database.Connection() returned nil")
	}
	conn.Close()
}

func TestNewSorterUsesConfiguredRules(t *testing.T) {
	cfg := validConfig(t)
	cfg.Labels.Marketplace = "shopmart"

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := infra.Sorter.Rules().Marketplace; got != "shopmart" {
		t.Errorf("marketplace = %q, want shopmart", got)
	}
}

func TestNewInvalidStorageProvider(t *testing.T) {
	cfg := validConfig(t)
	cfg.Storage.Provider = "ftp"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for unknown storage provider")
	}
}

func TestNewInvalidCourierPattern(t *testing.T) {
	cfg := validConfig(t)
	cfg.Labels.Couriers[0].Pattern = "("

	_, err := infrastructure.New(cfg)
	if err == nil || !strings.Contains(err.Error(), "labels") {
		t.Fatalf("New() error = %v, want labels init error", err)
	}
}

func TestStartRegistersReadiness(t *testing.T) {
	var buf bytes.Buffer
	infra, err := infrastructure.NewWithWriter(validConfig(t), &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	infra.Lifecycle.WaitForStartup()

	readiness := infra.Lifecycle.Readiness()
	if _, ok := readiness["database"]; !ok {
		t.Errorf("readiness = %v, want database check", readiness)
	}
	if !strings.Contains(buf.String(), "system=storage") {
		t.Errorf("log output missing storage system: %s", buf.String())
	}
}
