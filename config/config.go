package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Campus    CampusConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
}

// CampusConfig holds the queueing and QR lifecycle knobs.
type CampusConfig struct {
	Timezone        string        `mapstructure:"APP_TIMEZONE"`
	CongestionTick  time.Duration `mapstructure:"CONGESTION_TICK_INTERVAL"`
	QRSweepInterval time.Duration `mapstructure:"QR_SWEEP_INTERVAL"`
	QRTTL           time.Duration `mapstructure:"QR_TTL"`
	GeofenceRadiusM float64       `mapstructure:"GEOFENCE_RADIUS_M"`
	HistoryLimit    int           `mapstructure:"HISTORY_LIMIT"`
}

// PostgresConfig holds PostgreSQL connection settings.
// The order archive is only wired when Enabled is true.
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"POSTGRES_ENABLED"`
	Host     string `mapstructure:"POSTGRES_HOST"`
	Port     int    `mapstructure:"POSTGRES_PORT"`
	User     string `mapstructure:"POSTGRES_USER"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	DBName   string `mapstructure:"POSTGRES_DB"`
	SSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	MaxConns int32  `mapstructure:"POSTGRES_MAX_CONNS"`
	MinConns int32  `mapstructure:"POSTGRES_MIN_CONNS"`
}

// RedisConfig holds Redis connection settings.
// The congestion snapshot publisher is only wired when Enabled is true.
type RedisConfig struct {
	Enabled     bool          `mapstructure:"REDIS_ENABLED"`
	Host        string        `mapstructure:"REDIS_HOST"`
	Port        int           `mapstructure:"REDIS_PORT"`
	Password    string        `mapstructure:"REDIS_PASSWORD"`
	DB          int           `mapstructure:"REDIS_DB"`
	PoolSize    int           `mapstructure:"REDIS_POOL_SIZE"`
	SnapshotTTL time.Duration `mapstructure:"REDIS_SNAPSHOT_TTL"`
}

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure     bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Location resolves the configured timezone. "Today" and time slots are
// evaluated in this location.
func (c *CampusConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// ── Defaults ────────────────────────────────────────
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "5s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	viper.SetDefault("APP_TIMEZONE", "Asia/Seoul")
	viper.SetDefault("CONGESTION_TICK_INTERVAL", "30s")
	viper.SetDefault("QR_SWEEP_INTERVAL", "10s")
	viper.SetDefault("QR_TTL", "3m")
	viper.SetDefault("GEOFENCE_RADIUS_M", 50)
	viper.SetDefault("HISTORY_LIMIT", 10)

	viper.SetDefault("POSTGRES_ENABLED", false)
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "campusq")
	viper.SetDefault("POSTGRES_PASSWORD", "campusq_secret")
	viper.SetDefault("POSTGRES_DB", "campusq_db")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_MAX_CONNS", 10)
	viper.SetDefault("POSTGRES_MIN_CONNS", 2)

	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 20)
	viper.SetDefault("REDIS_SNAPSHOT_TTL", "90s")

	viper.SetDefault("OTEL_SERVICE_NAME", "campusq")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	viper.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	// Try to read .env file. If it doesn't exist (e.g., inside Docker),
	// env vars injected by docker-compose env_file are used instead.
	_ = viper.ReadInConfig()

	cfg := &Config{}

	// ── Server ──────────────────────────────────────────
	cfg.Server = ServerConfig{
		Host:         viper.GetString("SERVER_HOST"),
		Port:         viper.GetInt("SERVER_PORT"),
		ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  viper.GetDuration("SERVER_IDLE_TIMEOUT"),
	}

	// ── Campus ──────────────────────────────────────────
	cfg.Campus = CampusConfig{
		Timezone:        viper.GetString("APP_TIMEZONE"),
		CongestionTick:  viper.GetDuration("CONGESTION_TICK_INTERVAL"),
		QRSweepInterval: viper.GetDuration("QR_SWEEP_INTERVAL"),
		QRTTL:           viper.GetDuration("QR_TTL"),
		GeofenceRadiusM: viper.GetFloat64("GEOFENCE_RADIUS_M"),
		HistoryLimit:    viper.GetInt("HISTORY_LIMIT"),
	}
	if cfg.Campus.CongestionTick <= 0 || cfg.Campus.QRSweepInterval <= 0 {
		return nil, fmt.Errorf("config: tick intervals must be positive")
	}
	if cfg.Campus.HistoryLimit <= 0 {
		return nil, fmt.Errorf("config: HISTORY_LIMIT must be positive, got %d", cfg.Campus.HistoryLimit)
	}

	// ── Postgres ────────────────────────────────────────
	cfg.Postgres = PostgresConfig{
		Enabled:  viper.GetBool("POSTGRES_ENABLED"),
		Host:     viper.GetString("POSTGRES_HOST"),
		Port:     viper.GetInt("POSTGRES_PORT"),
		User:     viper.GetString("POSTGRES_USER"),
		Password: viper.GetString("POSTGRES_PASSWORD"),
		DBName:   viper.GetString("POSTGRES_DB"),
		SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		MaxConns: viper.GetInt32("POSTGRES_MAX_CONNS"),
		MinConns: viper.GetInt32("POSTGRES_MIN_CONNS"),
	}

	// ── Redis ───────────────────────────────────────────
	cfg.Redis = RedisConfig{
		Enabled:     viper.GetBool("REDIS_ENABLED"),
		Host:        viper.GetString("REDIS_HOST"),
		Port:        viper.GetInt("REDIS_PORT"),
		Password:    viper.GetString("REDIS_PASSWORD"),
		DB:          viper.GetInt("REDIS_DB"),
		PoolSize:    viper.GetInt("REDIS_POOL_SIZE"),
		SnapshotTTL: viper.GetDuration("REDIS_SNAPSHOT_TTL"),
	}

	// ── Telemetry ───────────────────────────────────────
	cfg.Telemetry = TelemetryConfig{
		ServiceName:  viper.GetString("OTEL_SERVICE_NAME"),
		OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Insecure:     viper.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
	}

	return cfg, nil
}
