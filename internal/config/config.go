package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MongoConfig points at the clinical database the dashboard counts are read from.
type MongoConfig struct {
	URI      string
	Database string
}

// DashboardConfig selects where aggregate statistics come from.
type DashboardConfig struct {
	// Source is "http" (upstream admin API) or "mongo" (direct counts).
	Source  string
	URL     string
	Timeout time.Duration
	// RefreshCron is a 5-field cron spec; empty disables scheduled refreshes.
	RefreshCron string
}

// ReportConfig controls report generation and archiving.
type ReportConfig struct {
	Archive        bool
	ImageMaxBytes  int64
	PresignExpiry  time.Duration
	ArchivePrefix  string
	ImageKeyPrefix string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port      string
	Timezone  string
	LogLevel  string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Mongo     MongoConfig
	Dashboard DashboardConfig
	Report    ReportConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017/"),
			Database: getEnv("MONGO_DATABASE", "healthcare_system"),
		},
		Dashboard: DashboardConfig{
			Source:      getEnv("DASHBOARD_SOURCE", "http"),
			URL:         getEnv("DASHBOARD_URL", "http://localhost:5001/api/admin/dashboard"),
			Timeout:     getEnvDuration("DASHBOARD_TIMEOUT", 10*time.Second),
			RefreshCron: getEnv("DASHBOARD_REFRESH_CRON", ""),
		},
		Report: ReportConfig{
			Archive:        getEnvBool("REPORT_ARCHIVE", true),
			ImageMaxBytes:  int64(getEnvInt("REPORT_IMAGE_MAX_BYTES", 16<<20)),
			PresignExpiry:  getEnvDuration("REPORT_PRESIGN_EXPIRY", 15*time.Minute),
			ArchivePrefix:  getEnv("REPORT_ARCHIVE_PREFIX", "reports"),
			ImageKeyPrefix: getEnv("REPORT_IMAGE_PREFIX", "mri_images/"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("30s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
