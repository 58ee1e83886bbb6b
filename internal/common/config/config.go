package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	ManyChat  ManyChatConfig  `mapstructure:"manychat"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	RequestTimeout int `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
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

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ManyChatConfig holds settings for the outbound ManyChat messaging API.
type ManyChatConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// OpenAIConfig holds settings for the agent pipeline LLM backend.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// WebSearchConfig holds settings for the Brave Search API.
type WebSearchConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// KnowledgeConfig holds settings for the Elasticsearch knowledge index.
type KnowledgeConfig struct {
	Index string `mapstructure:"index"`
}

// AlertsConfig holds settings for hot-lead notifications to the sales team.
type AlertsConfig struct {
	AWSRegion     string `mapstructure:"aws_region"`
	EmailEnabled  bool   `mapstructure:"email_enabled"`
	FromEmail     string `mapstructure:"from_email"`
	SalesEmail    string `mapstructure:"sales_email"`
	EmailMinScore int    `mapstructure:"email_min_score"`
	SMSEnabled    bool   `mapstructure:"sms_enabled"`
	SalesPhone    string `mapstructure:"sales_phone"`
	SMSMinScore   int    `mapstructure:"sms_min_score"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
