package config

import (
	"os"
	"strconv"
	"strings"
)

// Server configuration
type ServerConfig struct {
	Port string
	Host string
}

// MongoDB configuration
type MongoConfig struct {
	URI      string
	Database string
}

// Auth configuration
type AuthConfig struct {
	JWTSecret        string
	AccessTTLMin     int
	RefreshTTLHours  int
	OTPTTLMin        int
	OTPMaxAttempts   int
	EmailTokenTTLHrs int
}

// Upload configuration
type UploadConfig struct {
	Dir         string
	MaxSizeMB   int64
	AllowedExts []string
}

// Payment configuration
type PaymentConfig struct {
	SettleDelaySec      int
	SettleIntervalSec   int
	StripeSecretKey     string
	StripeWebhookSecret string
}

// Mail configuration
type MailConfig struct {
	Enabled  bool
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

// Config holds all application configuration
type Config struct {
	Server         ServerConfig
	Mongo          MongoConfig
	Auth           AuthConfig
	Upload         UploadConfig
	Payment        PaymentConfig
	Mail           MailConfig
	AllowedOrigins []string
}

// Default configuration values
const (
	DefaultServerPort       = "5000"
	DefaultServerHost       = ""
	DefaultMongoURI         = "mongodb://localhost:27017/nexus"
	DefaultMongoDB          = "nexus"
	DefaultJWTSecret        = "change-me-in-production"
	DefaultAccessTTLMin     = 15
	DefaultRefreshTTLHours  = 24 * 7
	DefaultOTPTTLMin        = 5
	DefaultOTPMaxAttempts   = 5
	DefaultEmailTokenTTLHrs = 24
	DefaultUploadDir        = "./uploads"
	DefaultUploadMaxSizeMB  = 10
	DefaultUploadExts       = ".pdf,.doc,.docx,.png,.jpg,.jpeg,.txt"
	DefaultSettleDelaySec   = 10
	DefaultSettleInterval   = 5
	DefaultMailFrom         = "no-reply@nexus.local"
	// Pagination defaults
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// New returns a new Config with default values
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", DefaultServerPort),
			Host: getEnv("SERVER_HOST", DefaultServerHost),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", DefaultMongoURI),
			Database: getEnv("MONGO_DB", DefaultMongoDB),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", DefaultJWTSecret),
			AccessTTLMin:     getEnvInt("ACCESS_TOKEN_TTL_MIN", DefaultAccessTTLMin),
			RefreshTTLHours:  getEnvInt("REFRESH_TOKEN_TTL_HOURS", DefaultRefreshTTLHours),
			OTPTTLMin:        getEnvInt("OTP_TTL_MIN", DefaultOTPTTLMin),
			OTPMaxAttempts:   getEnvInt("OTP_MAX_ATTEMPTS", DefaultOTPMaxAttempts),
			EmailTokenTTLHrs: getEnvInt("EMAIL_TOKEN_TTL_HOURS", DefaultEmailTokenTTLHrs),
		},
		Upload: UploadConfig{
			Dir:         getEnv("UPLOAD_DIR", DefaultUploadDir),
			MaxSizeMB:   int64(getEnvInt("UPLOAD_MAX_SIZE_MB", DefaultUploadMaxSizeMB)),
			AllowedExts: splitList(getEnv("UPLOAD_ALLOWED_EXTS", DefaultUploadExts)),
		},
		Payment: PaymentConfig{
			SettleDelaySec:      getEnvInt("PAYMENT_SETTLE_DELAY_SEC", DefaultSettleDelaySec),
			SettleIntervalSec:   getEnvInt("PAYMENT_SETTLE_INTERVAL_SEC", DefaultSettleInterval),
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Mail: MailConfig{
			Enabled:  getEnvBool("MAIL_ENABLED", false),
			Host:     getEnv("MAIL_HOST", ""),
			Port:     getEnv("MAIL_PORT", "587"),
			From:     getEnv("MAIL_FROM", DefaultMailFrom),
			Username: getEnv("MAIL_USERNAME", ""),
			Password: getEnv("MAIL_PASSWORD", ""),
		},
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(value) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
