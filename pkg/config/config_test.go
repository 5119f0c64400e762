package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Version != "test-version" {
		t.Errorf("expected version 'test-version', got %q", cfg.Version)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %q", cfg.Port)
	}
	if cfg.Analyze.PreviewLines != 20 {
		t.Errorf("expected default preview_lines 20, got %d", cfg.Analyze.PreviewLines)
	}
	if cfg.Analyze.SampleSize != 1000 {
		t.Errorf("expected default sample_size 1000, got %d", cfg.Analyze.SampleSize)
	}
	if cfg.Query.DefaultRowLimit != 100 {
		t.Errorf("expected default row limit 100, got %d", cfg.Query.DefaultRowLimit)
	}
	if cfg.Database.StatementTimeoutSeconds != 30 {
		t.Errorf("expected default statement timeout 30s, got %d", cfg.Database.StatementTimeoutSeconds)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("LLM_MODEL", "qwen2.5-coder")
	t.Setenv("QUERY_DEFAULT_ROW_LIMIT", "250")

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected host db.internal, got %q", cfg.Database.Host)
	}
	if cfg.LLM.Model != "qwen2.5-coder" {
		t.Errorf("expected model qwen2.5-coder, got %q", cfg.LLM.Model)
	}
	if cfg.Query.DefaultRowLimit != 250 {
		t.Errorf("expected row limit 250, got %d", cfg.Query.DefaultRowLimit)
	}
}

func TestValidateRejectsBadBounds(t *testing.T) {
	t.Setenv("ANALYZE_PREVIEW_LINES", "0")

	if _, err := Load("dev"); err == nil {
		t.Fatal("expected error for preview_lines=0, got nil")
	}
}

func TestConnectionString(t *testing.T) {
	dbCfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "analytics",
		Password: "secret",
		Database: "analytics",
		SSLMode:  "disable",
	}

	got := dbCfg.ConnectionString()
	want := "host=localhost port=5432 user=analytics password=secret dbname=analytics sslmode=disable"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
