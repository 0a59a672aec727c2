// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Camunda       CamundaConfig      `mapstructure:"camunda"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Agent         AgentConfig        `mapstructure:"agent"`
	Workers       WorkersConfig      `mapstructure:"workers"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Registry      RegistryConfig     `mapstructure:"registry"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Enabled   bool     `mapstructure:"enabled"`
	Index     string   `mapstructure:"index"`
}

// --- Assistant Config ---

// AgentConfig holds tunables for the natural-language command interpreter.
type AgentConfig struct {
	// ContextTTLSeconds bounds how long a pending clarification is kept
	// per session before the conversation starts fresh.
	ContextTTLSeconds int `mapstructure:"context_ttl_seconds"`
	// IntentCacheSize bounds the classification memo cache.
	IntentCacheSize int `mapstructure:"intent_cache_size"`
	// GuestLanguage is the language preference assigned to auto-created
	// guest customers.
	GuestLanguage string `mapstructure:"guest_language"`
	// InvoiceDownloadBase prefixes invoice download URLs in responses.
	InvoiceDownloadBase string `mapstructure:"invoice_download_base"`
}

// WorkersConfig holds the per-task-type worker settings.
type WorkersConfig struct {
	ProcessMessage WorkerConfig `mapstructure:"process_message"`
	DetectIntent   WorkerConfig `mapstructure:"detect_intent"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// NotificationConfig holds settings for low-stock alerts and payment
// reminder channels.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	// LowStockSweepSeconds is the interval between low-stock sweeps.
	LowStockSweepSeconds int `mapstructure:"low_stock_sweep_seconds"`
	// CooldownSeconds suppresses repeat alerts for the same product.
	CooldownSeconds int `mapstructure:"cooldown_seconds"`
}

// RegistryConfig points at the task registry file.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
