package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	TokensDir string
	StorePath string
	StoreDSN  string
	Export    ExportConfig
}

// ExportConfig points at the S3-compatible bucket snapshot exports are
// written to.
type ExportConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8084", "server port")
	tokensDir := flag.String("tokens", "tokens", "directory holding *.tokens.json files")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	dir := strings.TrimSpace(os.Getenv("RAFTERS_TOKENS_DIR"))
	if dir == "" {
		dir = *tokensDir
	}

	return &Config{
		Port:      *port,
		Env:       env,
		TokensDir: dir,
		StorePath: firstNonEmpty(strings.TrimSpace(os.Getenv("TOKEN_STORE_PATH")), "tmp/token_sets.json"),
		StoreDSN:  strings.TrimSpace(os.Getenv("TOKEN_STORE_PG_DSN")),
		Export:    loadExportConfig(env),
	}, nil
}

func loadExportConfig(env string) ExportConfig {
	endpoint := resolveExportEndpoint(env)
	return ExportConfig{
		Enabled:   strings.EqualFold(strings.TrimSpace(env), "local") || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_BUCKET")), "rafters-snapshots"),
		UseSSL:    resolveExportUseSSL(env),
	}
}

func resolveExportEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_MINIO_ENDPOINT")), "minio:9000")
	}
	return strings.TrimSpace(os.Getenv("EXPORT_S3_ENDPOINT"))
}

func resolveExportUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("EXPORT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
