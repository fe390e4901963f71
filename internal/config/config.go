package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. It is read once at startup.
type Config struct {
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBSQLitePath   string
	DBMaxOpenConns int
	DBMaxIdleConns int

	Host        string
	Port        int
	Debug       bool
	LogLevel    string
	UploadDir   string
	MaxFileSize int
	StaticDir   string
	CORSOrigins string

	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookieName string

	BotToken        string
	BotSessionTTL   time.Duration
	NotifyInterval  time.Duration
	NotifySendDelay time.Duration

	RedisURL    string
	RabbitMQURL string
}

const insecureSecret = "dev-secret-change-me"

// SetDefaults registers the default value for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rukami_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "rukami.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)

	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", 8000)
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_FILE_SIZE", 10485760)
	v.SetDefault("STATIC_DIR", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000")

	v.SetDefault("SESSION_SECRET", insecureSecret)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_COOKIE_NAME", "rukami_session")

	v.SetDefault("BOT_TOKEN", "")
	v.SetDefault("BOT_SESSION_TTL", "720h")
	v.SetDefault("NOTIFY_INTERVAL", "60s")
	v.SetDefault("NOTIFY_SEND_DELAY", "100ms")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
}

// Load reads configuration from the environment and an optional config file.
// An empty configFile looks for ./config.yaml and ignores it when missing.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DBDriver:       v.GetString("DB_DRIVER"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBSSLMode:      v.GetString("DB_SSLMODE"),
		DBSQLitePath:   v.GetString("DB_SQLITE_PATH"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),

		Host:        v.GetString("HOST"),
		Port:        v.GetInt("PORT"),
		Debug:       v.GetBool("DEBUG"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		UploadDir:   v.GetString("UPLOAD_DIR"),
		MaxFileSize: v.GetInt("MAX_FILE_SIZE"),
		StaticDir:   v.GetString("STATIC_DIR"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),

		SessionSecret:     v.GetString("SESSION_SECRET"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		SessionCookieName: v.GetString("SESSION_COOKIE_NAME"),

		BotToken:        v.GetString("BOT_TOKEN"),
		BotSessionTTL:   v.GetDuration("BOT_SESSION_TTL"),
		NotifyInterval:  v.GetDuration("NOTIFY_INTERVAL"),
		NotifySendDelay: v.GetDuration("NOTIFY_SEND_DELAY"),

		RedisURL:    v.GetString("REDIS_URL"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.NotifyInterval <= 0 {
		return fmt.Errorf("NOTIFY_INTERVAL must be positive")
	}
	return nil
}

// UsesDefaultSecret reports whether the session secret was left at its insecure default.
func (c *Config) UsesDefaultSecret() bool {
	return c.SessionSecret == insecureSecret
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PostgresDSN builds a key/value DSN for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
