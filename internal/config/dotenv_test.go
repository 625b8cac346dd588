package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadDotEnv_LoadsValuesAndIgnoresComments(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "")

	path := writeDotEnv(t, `
# local store

STORE_DRIVER=redis
export REDIS_ADDR=localhost:6380
LOG_LEVEL="debug"
`)

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("STORE_DRIVER"); got != "redis" {
		t.Fatalf("STORE_DRIVER=%q, want %q", got, "redis")
	}
	if got := os.Getenv("REDIS_ADDR"); got != "localhost:6380" {
		t.Fatalf("REDIS_ADDR=%q, want %q", got, "localhost:6380")
	}
	if got := os.Getenv("LOG_LEVEL"); got != "debug" {
		t.Fatalf("LOG_LEVEL=%q, want %q", got, "debug")
	}
}

func TestLoadDotEnv_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	if err := loadDotEnv(writeDotEnv(t, "PORT=8081\n")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("PORT"); got != "9000" {
		t.Fatalf("PORT=%q, want %q", got, "9000")
	}
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
}
