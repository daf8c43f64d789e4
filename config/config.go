package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UsePathStyle bool
	DatabaseHost   string
	DatabasePass   string
	DatabaseURL    string
	PotreeBin      string
	Py3dtilesBin   string
}

func Load() *Config {
	dbHost := getEnv("DB_HOST", "")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_DATABASE", "hekamap")
	dbUser := getEnv("DB_USERNAME", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "")
	dbSSLMode := getEnv("DB_SSLMODE", "require")

	// lib/pq supports "key=value" connection strings and this avoids
	// URI escaping issues for special characters in passwords.
	dbURL := fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		dbHost, dbPort, dbName, dbUser, dbPassword, dbSSLMode,
	)

	return &Config{
		// Prefer R2_* vars, fall back to generic S3/AWS vars for compatibility
		S3Endpoint:     getEnvWithFallback("R2_ENDPOINT", "S3_ENDPOINT", ""),
		S3Region:       getEnv("S3_REGION", "auto"),
		S3AccessKey:    getEnvWithFallback("R2_ACCESS_KEY", "AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:    getEnvWithFallback("R2_SECRET_KEY", "AWS_SECRET_ACCESS_KEY", ""),
		S3Bucket:       getEnv("R2_BUCKET_NAME", "hekamap-assets"),
		S3UsePathStyle: getEnvBool("S3_USE_PATH_STYLE", false),
		DatabaseHost:   dbHost,
		DatabasePass:   dbPassword,
		DatabaseURL:    dbURL,
		PotreeBin:      getEnv("POTREE_CONVERTER_PATH", "PotreeConverter"),
		Py3dtilesBin:   getEnv("PY3DTILES_PATH", "py3dtiles"),
	}
}

// Validate reports every missing required value at once. It runs before any
// storage or database client is constructed, so a misconfigured job fails
// without side effects.
func (c *Config) Validate() error {
	var missing []string

	if c.S3Endpoint == "" {
		missing = append(missing, "R2_ENDPOINT")
	}
	if c.S3AccessKey == "" {
		missing = append(missing, "R2_ACCESS_KEY")
	}
	if c.S3SecretKey == "" {
		missing = append(missing, "R2_SECRET_KEY")
	}
	if c.S3Bucket == "" {
		missing = append(missing, "R2_BUCKET_NAME")
	}
	if c.DatabaseHost == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.DatabasePass == "" {
		missing = append(missing, "DB_PASSWORD")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvWithFallback(primaryKey, secondaryKey, fallback string) string {
	if value := os.Getenv(primaryKey); value != "" {
		return value
	}
	if value := os.Getenv(secondaryKey); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return fallback
}
