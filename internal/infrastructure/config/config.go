package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Ledger      LedgerConfig   `mapstructure:"ledger"`
	Clock       ClockConfig    `mapstructure:"clock"`
	Registry    RegistryConfig `mapstructure:"registry"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port" validate:"min=1,max=65535"`
	Mode              string        `mapstructure:"mode"`              // gin mode: debug, release, test
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	Path            string        `mapstructure:"path"` // sqlite file or DSN
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
	LogLevel        string        `mapstructure:"logLevel"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"` // json or console
	Development bool   `mapstructure:"development"`
}

// RedisConfig contains the optional redis connection used for event
// publishing and idempotency keys
type RedisConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	EventChannel   string        `mapstructure:"eventChannel"`
	IdempotencyTTL time.Duration `mapstructure:"idempotencyTTL"` // seconds
}

// LedgerConfig contains account ledger settings
type LedgerConfig struct {
	UnitDecimals  int32             `mapstructure:"unitDecimals" validate:"min=0,max=36"`
	AllowDeposits bool              `mapstructure:"allowDeposits"`
	SeedAccounts  map[string]string `mapstructure:"seedAccounts"` // principal -> whole units
}

// ClockConfig selects the time source
type ClockConfig struct {
	Mode  string `mapstructure:"mode" validate:"oneof=real manual"`
	Start string `mapstructure:"start" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"` // start of the manual clock
}

// RegistryConfig contains loan registry settings
type RegistryConfig struct {
	QueueSize int  `mapstructure:"queueSize" validate:"min=0"`
	LogEvents bool `mapstructure:"logEvents"` // also publish events to the structured log
}

// Clock modes
const (
	ClockModeReal   = "real"
	ClockModeManual = "manual"
)
