package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Log       LogConfig       `yaml:"log"`
	Penalty   PenaltyConfig   `yaml:"penalty"`
	Severity  SeverityConfig  `yaml:"severity"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains the outbound event queue settings
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Queue   string `yaml:"queue"`
	Channel string `yaml:"channel"`
}

// SendGridConfig contains email notifier settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// JWTConfig contains token validation settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// StorageConfig contains damage-photo storage settings
type StorageConfig struct {
	UploadDir         string   `yaml:"upload_dir"`
	BaseURL           string   `yaml:"base_url"`
	URLSecret         string   `yaml:"url_secret"`
	MaxFileSizeMB     int64    `yaml:"max_file_size_mb"`
	AllowedTypes      []string `yaml:"allowed_types"`
	URLExpiryMinutes  int      `yaml:"url_expiry_minutes"`
}

// PaymentsConfig locates the external payment/fleet platform
type PaymentsConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// PenaltyConfig holds the late-return penalty knobs. Defaults reproduce the
// production policy: 60-minute grace, 10% of the daily rate per late hour up
// to six hours, 150% of the daily rate per late day beyond that, severely
// late at 24 raw hours, everything capped at five daily rates.
type PenaltyConfig struct {
	GracePeriodMinutes         int     `yaml:"grace_period_minutes"`
	HourlyRate                 float64 `yaml:"hourly_rate"`
	DailyPenaltyRate           float64 `yaml:"daily_penalty_rate"`
	SeverelyLateThresholdHours int     `yaml:"severely_late_threshold_hours"`
	PenaltyCapMultiplier       float64 `yaml:"penalty_cap_multiplier"`
}

// SeverityConfig holds the repair-cost boundaries for inferred damage
// severity. Must satisfy minor < moderate < major.
type SeverityConfig struct {
	MinorMaxCents    int64 `yaml:"minor_max_cents"`
	ModerateMaxCents int64 `yaml:"moderate_max_cents"`
	MajorMaxCents    int64 `yaml:"major_max_cents"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ApplyLatePenalties string `yaml:"apply_late_penalties"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}
	if val := os.Getenv("PAYMENTS_BASE_URL"); val != "" {
		c.Payments.BaseURL = val
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills policy defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.Payments.BaseURL == "" {
		return fmt.Errorf("payments base URL is required")
	}
	if c.Payments.TimeoutSeconds <= 0 {
		c.Payments.TimeoutSeconds = 10
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}
	if c.Storage.MaxFileSizeMB <= 0 {
		c.Storage.MaxFileSizeMB = 10
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/heic"}
	}
	if c.Storage.URLExpiryMinutes <= 0 {
		c.Storage.URLExpiryMinutes = 15
	}

	if c.Redis.Queue == "" {
		c.Redis.Queue = "adjustments:events"
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "adjustments.events"
	}

	// Penalty policy defaults
	if c.Penalty.GracePeriodMinutes <= 0 {
		c.Penalty.GracePeriodMinutes = 60
	}
	if c.Penalty.HourlyRate <= 0 {
		c.Penalty.HourlyRate = 0.10
	}
	if c.Penalty.DailyPenaltyRate <= 0 {
		c.Penalty.DailyPenaltyRate = 1.50
	}
	if c.Penalty.SeverelyLateThresholdHours <= 0 {
		c.Penalty.SeverelyLateThresholdHours = 24
	}
	if c.Penalty.PenaltyCapMultiplier <= 0 {
		c.Penalty.PenaltyCapMultiplier = 5.0
	}

	// Severity thresholds
	if c.Severity.MinorMaxCents <= 0 {
		c.Severity.MinorMaxCents = 50_000 // $500
	}
	if c.Severity.ModerateMaxCents <= 0 {
		c.Severity.ModerateMaxCents = 200_000 // $2,000
	}
	if c.Severity.MajorMaxCents <= 0 {
		c.Severity.MajorMaxCents = 1_000_000 // $10,000
	}
	if !(c.Severity.MinorMaxCents < c.Severity.ModerateMaxCents && c.Severity.ModerateMaxCents < c.Severity.MajorMaxCents) {
		return fmt.Errorf("severity thresholds must satisfy minor < moderate < major")
	}

	if c.Scheduler.ApplyLatePenalties == "" {
		c.Scheduler.ApplyLatePenalties = "0 0 2 * * *" // 2 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
