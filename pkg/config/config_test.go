package config

import (
	"os"
	"testing"
	"time"

	"github.com/angelmondragon/pantryshare-backend/pkg/enums"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.DocStore.Driver != enums.DocStoreDriverMemory {
		t.Fatalf("expected memory driver by default, got %q", cfg.DocStore.Driver)
	}
	if cfg.Ledger.DuplicatePolicy != enums.DuplicatePolicyReject {
		t.Fatalf("expected reject duplicate policy by default, got %q", cfg.Ledger.DuplicatePolicy)
	}
	if got := cfg.RateLimit.Window; got != time.Minute {
		t.Fatalf("expected rate limit window 1m, got %v", got)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without url or address")
	}
	if cfg.Groups.Fanout != 8 {
		t.Fatalf("unexpected fanout %d", cfg.Groups.Fanout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_DriverRequirements(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDocStoreDriver, "mongo")

	if _, err := Load(); err == nil {
		t.Fatal("expected mongo driver without uri to fail")
	}

	t.Setenv(EnvMongoURI, "mongodb://localhost:27017")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DocStore.MongoDatabase != "pantryshare" {
		t.Fatalf("unexpected mongo database %q", cfg.DocStore.MongoDatabase)
	}

	t.Setenv(EnvDocStoreDriver, "firestore")
	if _, err := Load(); err == nil {
		t.Fatal("expected firestore driver without project to fail")
	}
}

func TestLoad_RejectsUnknownDuplicatePolicy(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvLedgerDuplicatePolicy, "merge")

	if _, err := Load(); err == nil {
		t.Fatal("expected merge policy to be rejected")
	}

	t.Setenv(EnvLedgerDuplicatePolicy, "overwrite")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ledger.DuplicatePolicy != enums.DuplicatePolicyOverwrite {
		t.Fatalf("unexpected policy %q", cfg.Ledger.DuplicatePolicy)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvJWTSecret, "secret")
	t.Setenv(EnvJWTIssuer, "pantryshare")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
