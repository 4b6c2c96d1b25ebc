package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Server ServerConfig
	Data   DataConfig
	Mongo  MongoConfig
	JWT    JWTConfig
	Logger LoggerConfig
}

type ServerConfig struct {
	Port string
}

type DataConfig struct {
	Dir string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	BackupInterval time.Duration
	InitialDelay   time.Duration
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// Load reads configuration from the environment, falling back to defaults
// suitable for a local single-store deployment.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "3000"),
		},
		Data: DataConfig{
			Dir: getEnv("DATA_DIR", "data"),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017/salesManagement"),
			Database:       getEnv("MONGODB_DATABASE", "salesManagement"),
			ConnectTimeout: getEnvDuration("MONGODB_CONNECT_TIMEOUT_SECONDS", 5*time.Second),
			BackupInterval: getEnvDuration("BACKUP_INTERVAL_SECONDS", 5*time.Minute),
			InitialDelay:   getEnvDuration("BACKUP_INITIAL_DELAY_SECONDS", 2*time.Second),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
			ExpiresIn: getEnvDuration("JWT_EXPIRES_IN_SECONDS", 7*24*time.Hour),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
