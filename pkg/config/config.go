package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Classifier ClassifierConfig
	Alerts     AlertsConfig
	Reference  ReferenceConfig
	OTEL       OTELConfig
	Env        string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ClassifierConfig holds clinical classifier configuration.
// An empty APIKey selects the rule-based classifier.
type ClassifierConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	RateLimitRPM   int
	RateLimitBurst int
}

// AlertsConfig holds emergency alert transport configuration.
// An empty GatewayURL selects the simulated sender.
type AlertsConfig struct {
	ManagerPhone  string
	GatewayURL    string
	GatewayAPIKey string
	SenderID      string
}

// ReferenceConfig holds paths to the clinic reference data files
type ReferenceConfig struct {
	LocationsPath      string
	CliniciansPath     string
	PatientHistoryPath string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "voicemail_triage"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Classifier: ClassifierConfig{
			APIKey:         getEnv("CLASSIFIER_API_KEY", ""),
			Model:          getEnv("CLASSIFIER_MODEL", "gpt-4o-mini"),
			BaseURL:        getEnv("CLASSIFIER_BASE_URL", ""),
			RateLimitRPM:   getEnvAsInt("CLASSIFIER_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("CLASSIFIER_RATE_LIMIT_BURST", 5),
		},
		Alerts: AlertsConfig{
			ManagerPhone:  getEnv("ALERTS_MANAGER_PHONE", "+61400000001"),
			GatewayURL:    getEnv("ALERTS_GATEWAY_URL", ""),
			GatewayAPIKey: getEnv("ALERTS_GATEWAY_API_KEY", ""),
			SenderID:      getEnv("ALERTS_SENDER_ID", "HeidiCalls"),
		},
		Reference: ReferenceConfig{
			LocationsPath:      getEnv("REFERENCE_LOCATIONS_PATH", "config/clinic_locations.json"),
			CliniciansPath:     getEnv("REFERENCE_CLINICIANS_PATH", "config/clinicians.json"),
			PatientHistoryPath: getEnv("REFERENCE_PATIENT_HISTORY_PATH", "config/patient_history.json"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "voicemail-triage"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
