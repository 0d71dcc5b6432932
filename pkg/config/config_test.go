package config

import (
	"os"
	"testing"
)

var allKeys = []string{
	"PORT", "ENVIRONMENT", "DATABASE_PATH", "JWT_SECRET", "CORS_ORIGINS",
	"MAX_UPLOAD_SIZE", "FILE_STORAGE_PATH", "PUBLIC_BASE_URL",
	"REQUIRE_EMAIL_CONFIRMATION", "REDIS_ADDR", "VAPID_PUBLIC_KEY", "VAPID_PRIVATE_KEY",
}

func clearEnv() {
	for _, key := range allKeys {
		_ = os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv()

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.Environment != "development" {
		t.Fatalf("Environment = %q, want %q", cfg.Environment, "development")
	}
	if cfg.DatabasePath != "./data/famchat.db" {
		t.Fatalf("DatabasePath = %q, want default", cfg.DatabasePath)
	}
	if cfg.FileStoragePath != "./data/media" {
		t.Fatalf("FileStoragePath = %q, want default", cfg.FileStoragePath)
	}
	if cfg.MaxUploadSize != 10485760 {
		t.Fatalf("MaxUploadSize = %d, want 10485760", cfg.MaxUploadSize)
	}
	if cfg.RequireEmailConfirmation {
		t.Fatal("RequireEmailConfirmation should default to false")
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("RedisAddr = %q, want empty", cfg.RedisAddr)
	}
}

func TestLoadReadsEnv(t *testing.T) {
	clearEnv()

	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_PATH", "/var/lib/famchat/famchat.db")
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("CORS_ORIGINS", "https://example.com")
	t.Setenv("MAX_UPLOAD_SIZE", "2048")
	t.Setenv("FILE_STORAGE_PATH", "/var/lib/famchat/media")
	t.Setenv("PUBLIC_BASE_URL", "https://chat.example.com")
	t.Setenv("REQUIRE_EMAIL_CONFIRMATION", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.Environment != "production" {
		t.Fatalf("Environment = %q, want %q", cfg.Environment, "production")
	}
	if cfg.DatabasePath != "/var/lib/famchat/famchat.db" {
		t.Fatalf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.JWTSecret != "super-secret" {
		t.Fatalf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.CORSOrigins != "https://example.com" {
		t.Fatalf("CORSOrigins = %q", cfg.CORSOrigins)
	}
	if cfg.MaxUploadSize != 2048 {
		t.Fatalf("MaxUploadSize = %d, want 2048", cfg.MaxUploadSize)
	}
	if cfg.FileStoragePath != "/var/lib/famchat/media" {
		t.Fatalf("FileStoragePath = %q", cfg.FileStoragePath)
	}
	if cfg.PublicBaseURL != "https://chat.example.com" {
		t.Fatalf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	if !cfg.RequireEmailConfirmation {
		t.Fatal("RequireEmailConfirmation = false, want true")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("RedisAddr = %q", cfg.RedisAddr)
	}
}

func TestLoadIgnoresGarbageNumbers(t *testing.T) {
	clearEnv()

	t.Setenv("MAX_UPLOAD_SIZE", "not-a-number")
	t.Setenv("REQUIRE_EMAIL_CONFIRMATION", "maybe")

	cfg := Load()

	if cfg.MaxUploadSize != 10485760 {
		t.Fatalf("MaxUploadSize = %d, want default on parse failure", cfg.MaxUploadSize)
	}
	if cfg.RequireEmailConfirmation {
		t.Fatal("RequireEmailConfirmation should fall back to false on parse failure")
	}
}
