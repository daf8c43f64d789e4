package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("R2_ENDPOINT", "https://accountid.r2.cloudflarestorage.com")
	t.Setenv("R2_ACCESS_KEY", "key")
	t.Setenv("R2_SECRET_KEY", "secret")
	t.Setenv("DB_HOST", "db.example.supabase.co")
	t.Setenv("DB_PASSWORD", "pw")
}

func clearFallbackEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"S3_ENDPOINT", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
		"R2_BUCKET_NAME", "S3_REGION", "S3_USE_PATH_STYLE",
		"DB_PORT", "DB_DATABASE", "DB_USERNAME", "DB_SSLMODE",
		"POTREE_CONVERTER_PATH", "PY3DTILES_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	clearFallbackEnv(t)

	cfg := Load()

	if cfg.S3Bucket != "hekamap-assets" {
		t.Errorf("bucket = %q, want hekamap-assets", cfg.S3Bucket)
	}
	if cfg.S3Region != "auto" {
		t.Errorf("region = %q, want auto", cfg.S3Region)
	}
	if cfg.PotreeBin != "PotreeConverter" {
		t.Errorf("potree bin = %q, want PotreeConverter", cfg.PotreeBin)
	}
	if cfg.Py3dtilesBin != "py3dtiles" {
		t.Errorf("py3dtiles bin = %q, want py3dtiles", cfg.Py3dtilesBin)
	}
	if !strings.Contains(cfg.DatabaseURL, "host=db.example.supabase.co") {
		t.Errorf("database url missing host: %q", cfg.DatabaseURL)
	}
	if !strings.Contains(cfg.DatabaseURL, "sslmode=require") {
		t.Errorf("database url missing sslmode default: %q", cfg.DatabaseURL)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed on complete config: %v", err)
	}
}

func TestLoadAWSFallbackVars(t *testing.T) {
	setRequiredEnv(t)
	clearFallbackEnv(t)
	t.Setenv("R2_ACCESS_KEY", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "aws-key")

	cfg := Load()

	if cfg.S3AccessKey != "aws-key" {
		t.Errorf("access key = %q, want aws-key", cfg.S3AccessKey)
	}
}

func TestValidateReportsAllMissing(t *testing.T) {
	setRequiredEnv(t)
	clearFallbackEnv(t)
	t.Setenv("R2_ACCESS_KEY", "")
	t.Setenv("DB_PASSWORD", "")

	err := Load().Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"R2_ACCESS_KEY", "DB_PASSWORD"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not name %s", err.Error(), want)
		}
	}
	if strings.Contains(err.Error(), "R2_ENDPOINT") {
		t.Errorf("error %q names a value that is present", err.Error())
	}
}
