package config

import (
	"os"
	"testing"
)

func unsetBuildEnv() {
	_ = os.Unsetenv("WELLNESS_BUILD_TARGET")
	_ = os.Unsetenv("WELLNESS_DB_DRIVER")
	_ = os.Unsetenv("WELLNESS_POSTGRES_DSN")
}

func TestConfigLoad_Defaults(t *testing.T) {
	unsetBuildEnv()
	_ = os.Unsetenv("WELLNESS_EMBED_PROVIDER")
	_ = os.Unsetenv("WELLNESS_EMBED_MODEL")
	_ = os.Unsetenv("WELLNESS_MAX_TOKEN_LIMIT")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.EmbedProvider != "ollama" || cfg.EmbedModel != "nomic-embed-text" {
		t.Fatalf("unexpected default embed config: %+v", cfg)
	}
	if cfg.MaxTokenLimit != 2000 {
		t.Fatalf("unexpected default token limit: %d", cfg.MaxTokenLimit)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("WELLNESS_EMBED_MODEL", "test-model")
	defer func() { _ = os.Unsetenv("WELLNESS_EMBED_MODEL") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.EmbedModel != "test-model" {
		t.Fatalf("embed model env override failed, got %s", cfg.EmbedModel)
	}
}

func TestResolveDefaultsLocal(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("WELLNESS_BUILD_TARGET", "local")
	defer unsetBuildEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected mapping for local: %s", cfg.DBDriver)
	}
}

func TestResolveDefaultsCloudRequiresDSN(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("WELLNESS_BUILD_TARGET", "cloud")
	defer unsetBuildEnv()

	if _, err := New(); err == nil {
		t.Fatalf("expected error when postgres DSN is missing")
	}

	_ = os.Setenv("WELLNESS_POSTGRES_DSN", "postgres://localhost/wellness")
	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("unexpected mapping for cloud: %s", cfg.DBDriver)
	}
}

func TestResolveDefaultsRejectsUnknownTarget(t *testing.T) {
	unsetBuildEnv()
	_ = os.Setenv("WELLNESS_BUILD_TARGET", "mainframe")
	defer unsetBuildEnv()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for unknown build target")
	}
}
