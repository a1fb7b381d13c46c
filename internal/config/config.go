package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"wefix.backend/pkg/crypto"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	NotifierLog = "log"
	NotifierSMS = "sms"
)

// Config holds all configuration values
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Verification VerificationConfig
	Notifier     NotifierConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// IsProduction reports whether the service runs in production
func (c ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// VerificationConfig holds the phone verification policy
type VerificationConfig struct {
	CodeTTL            time.Duration
	MaxAttempts        int
	ResendCooldown     time.Duration
	DeterministicCode  bool
	TestCode           string
	ReturnCodeToClient bool
	BcryptCost         int
	Store              string
	RedisRetention     time.Duration
	LockTimeout        time.Duration
	DefaultCountryCode string
}

// NotifierConfig holds code delivery configuration
type NotifierConfig struct {
	Kind          string
	SMSGatewayURL string
	SMSAPIKey     string
	SMSSenderID   string
	SMSTimeout    time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvAsInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "wefix"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Verification: VerificationConfig{
			CodeTTL:            getEnvAsDuration("OTP_CODE_TTL", 10*time.Minute),
			MaxAttempts:        getEnvAsInt("OTP_MAX_ATTEMPTS", 3),
			ResendCooldown:     getEnvAsDuration("OTP_RESEND_COOLDOWN", 60*time.Second),
			DeterministicCode:  getEnvAsBool("OTP_DETERMINISTIC_CODE", false),
			TestCode:           getEnv("OTP_TEST_CODE", "123456"),
			ReturnCodeToClient: getEnvAsBool("OTP_RETURN_TO_CLIENT", false),
			BcryptCost:         getEnvAsInt("OTP_BCRYPT_COST", 10),
			Store:              strings.ToLower(getEnv("VERIFICATION_STORE", StoreMemory)),
			RedisRetention:     getEnvAsDuration("OTP_REDIS_RETENTION", 10*time.Minute),
			LockTimeout:        getEnvAsDuration("OTP_LOCK_TIMEOUT", 2*time.Second),
			DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "94"),
		},
		Notifier: NotifierConfig{
			Kind:          strings.ToLower(getEnv("NOTIFIER", NotifierLog)),
			SMSGatewayURL: getEnv("SMS_GATEWAY_URL", ""),
			SMSAPIKey:     getEnv("SMS_GATEWAY_API_KEY", ""),
			SMSSenderID:   getEnv("SMS_SENDER_ID", "WeFix"),
			SMSTimeout:    getEnvAsDuration("SMS_TIMEOUT", 10*time.Second),
		},
	}
}

// Validate rejects settings that are unsafe or unusable
func (c *Config) Validate() error {
	var errs []error
	v := c.Verification

	if c.Server.IsProduction() {
		if v.DeterministicCode {
			errs = append(errs, errors.New("OTP_DETERMINISTIC_CODE must be false in production"))
		}
		if v.ReturnCodeToClient {
			errs = append(errs, errors.New("OTP_RETURN_TO_CLIENT must be false in production"))
		}
	}
	if v.CodeTTL <= 0 {
		errs = append(errs, fmt.Errorf("OTP_CODE_TTL must be positive, got %s", v.CodeTTL))
	}
	if v.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("OTP_MAX_ATTEMPTS must be positive, got %d", v.MaxAttempts))
	}
	if v.ResendCooldown < 0 {
		errs = append(errs, fmt.Errorf("OTP_RESEND_COOLDOWN must not be negative, got %s", v.ResendCooldown))
	}
	if v.DeterministicCode && !crypto.IsNumericCode(v.TestCode) {
		errs = append(errs, errors.New("OTP_TEST_CODE must be 6 digits"))
	}
	switch v.Store {
	case StoreMemory, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("VERIFICATION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, v.Store))
	}
	switch c.Notifier.Kind {
	case NotifierLog:
	case NotifierSMS:
		if c.Notifier.SMSAPIKey == "" || c.Notifier.SMSGatewayURL == "" {
			errs = append(errs, errors.New("NOTIFIER=sms requires SMS_GATEWAY_URL and SMS_GATEWAY_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("NOTIFIER must be %q or %q, got %q", NotifierLog, NotifierSMS, c.Notifier.Kind))
	}
	return errors.Join(errs...)
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
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
