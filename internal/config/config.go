package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Log          LogConfig
	Notification NotificationConfig
	SMTP         SMTPConfig
	Idempotency  IdempotencyConfig

	// EnvFile is the .env file that was read, empty when only the
	// environment was used
	EnvFile string
}

type AppConfig struct {
	Name            string
	Env             string
	Port            string
	Debug           bool
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	Timezone        string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	SlowThreshold   time.Duration
	AutoMigrate     bool
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
	Issuer      string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type NotificationConfig struct {
	Enabled     bool
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type IdempotencyConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	envFile := ""
	if err := viper.ReadInConfig(); err == nil {
		envFile = viper.ConfigFileUsed()
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "bizops-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_SHUTDOWN_TIMEOUT", "15s")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "bizops")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Africa/Nairobi")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	viper.SetDefault("DB_LOG_LEVEL", "warn")
	viper.SetDefault("DB_SLOW_THRESHOLD", "200ms")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_ISSUER", "bizops-api")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_RPS", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("NOTIFICATION_ENABLED", true)
	viper.SetDefault("NOTIFICATION_QUEUE_SIZE", 256)
	viper.SetDefault("NOTIFICATION_WORKERS", 2)
	viper.SetDefault("NOTIFICATION_SEND_TIMEOUT", "10s")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_FROM_NAME", "BizOps")
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("IDEMPOTENCY_CLEANUP_INTERVAL", "1h")

	return &Config{
		App: AppConfig{
			Name:            viper.GetString("APP_NAME"),
			Env:             viper.GetString("APP_ENV"),
			Port:            viper.GetString("APP_PORT"),
			Debug:           viper.GetBool("APP_DEBUG"),
			ShutdownTimeout: viper.GetDuration("APP_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			Name:            viper.GetString("DB_NAME"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			SSLMode:         viper.GetString("DB_SSL_MODE"),
			Timezone:        viper.GetString("DB_TIMEZONE"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			LogLevel:        viper.GetString("DB_LOG_LEVEL"),
			SlowThreshold:   viper.GetDuration("DB_SLOW_THRESHOLD"),
			AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			Issuer:      viper.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetStringSlice("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(viper.GetStringSlice("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(viper.GetStringSlice("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		Notification: NotificationConfig{
			Enabled:     viper.GetBool("NOTIFICATION_ENABLED"),
			QueueSize:   viper.GetInt("NOTIFICATION_QUEUE_SIZE"),
			Workers:     viper.GetInt("NOTIFICATION_WORKERS"),
			SendTimeout: viper.GetDuration("NOTIFICATION_SEND_TIMEOUT"),
		},
		SMTP: SMTPConfig{
			Host:      viper.GetString("SMTP_HOST"),
			Port:      viper.GetInt("SMTP_PORT"),
			Username:  viper.GetString("SMTP_USERNAME"),
			Password:  viper.GetString("SMTP_PASSWORD"),
			FromEmail: viper.GetString("SMTP_FROM_EMAIL"),
			FromName:  viper.GetString("SMTP_FROM_NAME"),
		},
		Idempotency: IdempotencyConfig{
			TTL:             viper.GetDuration("IDEMPOTENCY_TTL"),
			CleanupInterval: viper.GetDuration("IDEMPOTENCY_CLEANUP_INTERVAL"),
		},
		EnvFile: envFile,
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// splitList accepts both repeated values and a single comma separated value
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// IsProduction reports whether the app runs in the production environment
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
