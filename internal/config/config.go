package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port          string `yaml:"port" env:"SERVER_PORT"`
		Mode          string `yaml:"mode" env:"SERVER_MODE"`
		CORSOrigins   string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
		MaxUploadSize int64  `yaml:"max_upload_size" env:"SERVER_MAX_UPLOAD_SIZE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Firebase struct {
		Enabled         bool   `yaml:"enabled" env:"FIREBASE_ENABLED"`
		ProjectID       string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
		CredentialsFile string `yaml:"credentials_file" env:"FIREBASE_CREDENTIALS_FILE"`
	} `yaml:"firebase"`

	// DevAuth is used to verify locally issued tokens when Firebase is disabled.
	DevAuth struct {
		Secret string `yaml:"secret" env:"DEV_AUTH_SECRET"`
		Issuer string `yaml:"issuer" env:"DEV_AUTH_ISSUER"`
		TTL    string `yaml:"ttl" env:"DEV_AUTH_TTL"`
	} `yaml:"dev_auth"`

	Notifications struct {
		Enabled      bool   `yaml:"enabled" env:"NOTIFICATIONS_ENABLED"`
		BatchSize    int    `yaml:"batch_size" env:"NOTIFICATIONS_BATCH_SIZE"`
		WelcomeDelay string `yaml:"welcome_delay" env:"NOTIFICATIONS_WELCOME_DELAY"`
		Timeout      string `yaml:"timeout" env:"NOTIFICATIONS_TIMEOUT"`
	} `yaml:"notifications"`

	Seed struct {
		OnStartup   bool   `yaml:"on_startup" env:"SEED_ON_STARTUP"`
		CatalogFile string `yaml:"catalog_file" env:"SEED_CATALOG_FILE"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.CORSOrigins = "http://localhost:5173"
	config.Server.MaxUploadSize = 50 << 20

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "educareway"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.DevAuth.Issuer = "educareway.dev"
	config.DevAuth.TTL = "24h"

	config.Notifications.Enabled = true
	config.Notifications.BatchSize = 500
	config.Notifications.WelcomeDelay = "2s"
	config.Notifications.Timeout = "30s"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("server max upload size must be positive")
	}

	if config.Firebase.Enabled {
		if config.Firebase.ProjectID == "" && config.Firebase.CredentialsFile == "" {
			return fmt.Errorf("firebase project id or credentials file is required when firebase is enabled")
		}
	} else {
		// Locally signed tokens are never accepted in production
		if config.IsProduction() {
			return fmt.Errorf("firebase must be enabled in production mode")
		}
		if config.DevAuth.Secret == "" {
			return fmt.Errorf("dev auth secret is required when firebase is disabled")
		}
	}

	for name, value := range map[string]string{
		"database conn_max_lifetime":  config.Database.ConnMaxLifetime,
		"dev_auth ttl":                config.DevAuth.TTL,
		"notifications welcome_delay": config.Notifications.WelcomeDelay,
		"notifications timeout":       config.Notifications.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	// url.URL escapes credentials containing reserved characters
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return dsn.String()
}

// AllowedOrigins splits the comma separated CORS origin list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
