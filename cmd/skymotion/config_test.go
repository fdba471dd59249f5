package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/SLASHOO/SkyMotion-Library/internal/apiclient"
	"github.com/SLASHOO/SkyMotion-Library/internal/catalog"
	"github.com/SLASHOO/SkyMotion-Library/internal/identity"
)

func clearSkymotionEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SKYMOTION_API_BASE",
		"SKYMOTION_CATALOG_URL",
		"SKYMOTION_LOCATION",
		"SKYMOTION_MEMBER_ID",
		"SKYMOTION_MEMBER_TOKEN",
		"SKYMOTION_TOKEN_SECRET",
		"SKYMOTION_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearSkymotionEnv(t)

	cfg, err := loadConfig("", flagValues{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.APIBase != apiclient.DefaultBaseURL {
		t.Errorf("expected default api base, got %q", cfg.APIBase)
	}
	if cfg.CatalogURL != catalog.DefaultIndexURL {
		t.Errorf("expected default catalog url, got %q", cfg.CatalogURL)
	}
	if cfg.Location != defaultLocation {
		t.Errorf("expected default location, got %q", cfg.Location)
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	clearSkymotionEnv(t)
	t.Setenv("SKYMOTION_API_BASE", "https://env.example")
	t.Setenv("SKYMOTION_CATALOG_URL", "https://env.example/index.json")

	cfg, err := loadConfig("", flagValues{
		api:     "https://flag.example",
		session: " s-1 ",
	})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.APIBase != "https://flag.example" {
		t.Errorf("expected flag api base, got %q", cfg.APIBase)
	}
	if cfg.CatalogURL != "https://env.example/index.json" {
		t.Errorf("expected env catalog url, got %q", cfg.CatalogURL)
	}
	if cfg.SessionID != "s-1" {
		t.Errorf("expected trimmed session id, got %q", cfg.SessionID)
	}
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	clearSkymotionEnv(t)
	os.Unsetenv("SKYMOTION_MEMBER_ID")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SKYMOTION_MEMBER_ID=mem_file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("SKYMOTION_MEMBER_ID") })

	cfg, err := loadConfig(path, flagValues{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.MemberID != "mem_file" {
		t.Errorf("expected member id from env file, got %q", cfg.MemberID)
	}
}

func TestLoadConfigMissingEnvFileIsIgnored(t *testing.T) {
	clearSkymotionEnv(t)

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"), flagValues{}); err != nil {
		t.Errorf("expected missing env file to be ignored, got %v", err)
	}
}

func TestConfigLocationAddsSession(t *testing.T) {
	cfg := config{Location: "https://skymotion.app/library?mode=free", SessionID: "abc"}

	got, err := cfg.location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if got != "https://skymotion.app/library?mode=session&sess=abc" {
		t.Errorf("unexpected location %q", got)
	}

	cfg.SessionID = ""
	if got, _ := cfg.location(); got != cfg.Location {
		t.Errorf("expected location unchanged, got %q", got)
	}
}

func TestConfigCatalogSource(t *testing.T) {
	cfg := config{APIBase: "https://api.example/", CatalogURL: catalogFromAPI}
	src, ok := cfg.catalogSource().(*catalog.HTTPSource)
	if !ok {
		t.Fatalf("expected HTTP source, got %T", cfg.catalogSource())
	}
	if src.URL != "https://api.example/v1/catalog" {
		t.Errorf("unexpected catalog url %q", src.URL)
	}

	cfg.CatalogURL = "https://cdn.example/index.json"
	if src := cfg.catalogSource().(*catalog.HTTPSource); src.URL != cfg.CatalogURL {
		t.Errorf("unexpected catalog url %q", src.URL)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"error": slog.LevelError,
		"":      slog.LevelWarn,
		"loud":  slog.LevelWarn,
	}
	for raw, want := range tests {
		if got := parseLogLevel(raw); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestIdentitySource(t *testing.T) {
	if _, ok := identitySource(config{MemberID: "mem_1"}).(identity.Static); !ok {
		t.Error("expected static source for a member id")
	}
	if _, ok := identitySource(config{MemberToken: "tok", TokenSecret: "secret"}).(identity.TokenSource); !ok {
		t.Error("expected token source when token and secret are set")
	}
	if _, ok := identitySource(config{MemberToken: "tok"}).(identity.Static); !ok {
		t.Error("expected static source when the secret is missing")
	}
}
