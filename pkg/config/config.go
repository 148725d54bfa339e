package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration for the postgres store driver
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// StoreConfig selects the record store backend: memory, file, sqlite or postgres.
// ImportDir names a directory of <key>.json files copied into an empty backend at startup.
type StoreConfig struct {
	Driver     string
	DataDir    string
	SQLitePath string
	ImportDir  string
}

// HostedConfig points at the hosted backend serving the organizations table.
// An empty URL keeps organizations in the local record store.
type HostedConfig struct {
	URL     string
	APIKey  string
	Table   string
	Timeout time.Duration
}

// BlobConfig holds export storage configuration
type BlobConfig struct {
	Driver      string
	Dir         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
	URLExpiry   time.Duration
}

// AuthConfig holds the bootstrap super admin seeded into an empty user collection
type AuthConfig struct {
	BootstrapEmail    string
	BootstrapPassword string
	BootstrapName     string
}

// NotifyConfig bounds the per-session notification list
type NotifyConfig struct {
	Capacity   int
	MaxVisible int
	ToastTTL   time.Duration
}

// DialogConfig holds confirmation dialog settings
type DialogConfig struct {
	TTL time.Duration
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Store       StoreConfig
	Hosted      HostedConfig
	Blob        BlobConfig
	Auth        AuthConfig
	Notify      NotifyConfig
	Dialog      DialogConfig
}

// Load loads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: getEnv("SERVICE_NAME", "casedesk"),
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "casedesk"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "casedesk"),
		},
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", "file"),
			DataDir:    getEnv("STORE_DATA_DIR", "data"),
			SQLitePath: getEnv("STORE_SQLITE_PATH", "casedesk.db"),
			ImportDir:  getEnv("STORE_IMPORT_DIR", ""),
		},
		Hosted: HostedConfig{
			URL:     getEnv("HOSTED_URL", ""),
			APIKey:  getEnv("HOSTED_API_KEY", ""),
			Table:   getEnv("HOSTED_TABLE", "organizations"),
			Timeout: getEnvAsDuration("HOSTED_TIMEOUT", 10*time.Second),
		},
		Blob: BlobConfig{
			Driver:      getEnv("BLOB_DRIVER", "fs"),
			Dir:         getEnv("BLOB_DIR", "exports"),
			S3Bucket:    getEnv("BLOB_S3_BUCKET", ""),
			S3Region:    getEnv("BLOB_S3_REGION", "us-east-1"),
			S3Endpoint:  getEnv("BLOB_S3_ENDPOINT", ""),
			S3PathStyle: getEnvAsBool("BLOB_S3_PATH_STYLE", false),
			URLExpiry:   getEnvAsDuration("BLOB_URL_EXPIRY", 15*time.Minute),
		},
		Auth: AuthConfig{
			BootstrapEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
			BootstrapPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
			BootstrapName:     getEnv("BOOTSTRAP_ADMIN_NAME", "Super Admin"),
		},
		Notify: NotifyConfig{
			Capacity:   getEnvAsInt("NOTIFY_CAPACITY", 100),
			MaxVisible: getEnvAsInt("NOTIFY_MAX_VISIBLE", 5),
			ToastTTL:   getEnvAsDuration("TOAST_TTL", 3*time.Second),
		},
		Dialog: DialogConfig{
			TTL: getEnvAsDuration("DIALOG_TTL", 5*time.Minute),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory", "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Server.Env == "production" && c.JWT.SigningKey == "defaultsecretkey" {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	if c.Blob.Driver == "s3" && c.Blob.S3Bucket == "" {
		return fmt.Errorf("BLOB_S3_BUCKET is required for the s3 blob driver")
	}
	return nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	fields := []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("store_driver", c.Store.Driver),
		zap.String("blob_driver", c.Blob.Driver),
		zap.Bool("hosted_organizations", c.Hosted.URL != ""),
	}
	if c.Store.Driver == "postgres" {
		fields = append(fields,
			zap.String("db_host", c.DB.Host),
			zap.String("db_port", c.DB.Port),
			zap.String("db_user", c.DB.User),
			zap.String("db_name", c.DB.DBName),
		)
	}
	return fields
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as booleans
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as gorm log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
