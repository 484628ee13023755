package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Auth     AuthConfig     `mapstructure:"auth"`
	OTP      OTPConfig      `mapstructure:"otp"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BaseURL      string        `mapstructure:"base_url"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// StorageConfig selects and configures the object store backend
type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // "local" or "gcs"
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// SMTPConfig holds mail relay configuration
type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
	SenderName string `mapstructure:"sender_name"`
}

// LarkConfig holds the optional ops-channel credentials. The channel is
// disabled while AppID is empty.
type LarkConfig struct {
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	ChatID    string `mapstructure:"chat_id"`
}

// AuthConfig holds token and bootstrap-admin configuration
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

// OTPConfig holds one-time-passcode configuration
type OTPConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// NotifyConfig holds dispatcher configuration
type NotifyConfig struct {
	QueueSize   int           `mapstructure:"queue_size"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.base_url", "http://localhost:8080")

	viper.SetDefault("database.path", "data/docuflow.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.local_dir", "data/objects")

	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.sender_name", "Docuflow")

	viper.SetDefault("otp.ttl", 5*time.Minute)
	viper.SetDefault("otp.sweep_interval", time.Minute)

	viper.SetDefault("notify.queue_size", 64)
	viper.SetDefault("notify.send_timeout", 15*time.Second)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

func bindEnvVars() {
	// Sensitive credentials come from the environment.
	viper.BindEnv("smtp.username", "SMTP_USERNAME")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("smtp.from", "SMTP_FROM")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("auth.admin_username", "ADMIN_USERNAME")
	viper.BindEnv("auth.admin_password", "ADMIN_PASSWORD")
	viper.BindEnv("storage.gcs_bucket", "GCS_BUCKET")
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("lark.chat_id", "LARK_CHAT_ID")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required for the local backend")
		}
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend: %s", c.Storage.Backend)
	}

	if c.SMTP.Host == "" {
		return fmt.Errorf("smtp.host is required")
	}
	if c.SMTP.From == "" {
		return fmt.Errorf("smtp.from is required")
	}

	if c.Lark.AppID != "" && c.Lark.ChatID == "" {
		return fmt.Errorf("lark.chat_id is required when lark.app_id is set")
	}
	return nil
}

// LarkEnabled reports whether the ops channel is configured
func (c *Config) LarkEnabled() bool {
	return c.Lark.AppID != ""
}
