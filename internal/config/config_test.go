package config_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/devtrails/campdir/internal/config"
)

func TestLoad_FallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("MAX_FILE_UPLOAD", "huge")
	t.Setenv("JWT_EXPIRE", "eventually")

	cfg := config.Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want fallback 8080", cfg.Port)
	}
	if cfg.MaxFileUpload != 1_000_000 {
		t.Errorf("MaxFileUpload = %d, want fallback 1000000", cfg.MaxFileUpload)
	}
	if cfg.JWTExpire != 30*24*time.Hour {
		t.Errorf("JWTExpire = %s, want fallback 720h", cfg.JWTExpire)
	}
}

func TestLoad_SplitsCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg := config.Load()

	want := []string{"https://a.example", "https://b.example"}

	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
}
