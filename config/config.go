package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv             string
	AppPort            string
	AllowedOrigins     string
	DBDriver           string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBPath             string
	DBMaxIdleConns     int
	DBMaxOpenConns     int
	NatsURL            string
	EventPollInterval  time.Duration
	JWTSecret          string
	JWTExpirationHours int
	ShutdownTimeout    time.Duration

	// Client settings
	APIURL              string
	APIToken            string
	UndoWindow          time.Duration
	ToastDuration       time.Duration
	CelebrationDuration time.Duration
}

// AuthEnabled reports whether bearer tokens are required on the API.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("%s not set, defaulting to %s", key, defaultValue)
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Invalid integer value for %s, defaulting to %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration value for %s, defaulting to %s", key, defaultValue)
	}
	return defaultValue
}

func Load() Config {
	log.Println("Loading configuration...")

	return Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		AppPort:            getEnv("APP_PORT", "5000"),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", "*"),
		DBDriver:           getEnv("DB_DRIVER", "postgres"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "tasktracker"),
		DBPassword:         getEnv("DB_PASSWORD", "tasktracker"),
		DBName:             getEnv("DB_NAME", "tasktracker"),
		DBPath:             getEnv("DB_PATH", "tasktracker.db"),
		DBMaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		EventPollInterval:  getEnvAsDuration("EVENT_POLL_INTERVAL", time.Second),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		APIURL:              getEnv("API_URL", "http://localhost:5000"),
		APIToken:            getEnv("API_TOKEN", ""),
		UndoWindow:          getEnvAsDuration("UNDO_WINDOW", 5*time.Second),
		ToastDuration:       getEnvAsDuration("TOAST_DURATION", 3*time.Second),
		CelebrationDuration: getEnvAsDuration("CELEBRATION_DURATION", 3*time.Second),
	}
}
