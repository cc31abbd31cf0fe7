package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewFromFile("")
}

// NewFromFile creates a configuration instance reading the given file, or
// searching the default locations when path is empty
func NewFromFile(path string) (*Config, error) {
	// Variables from a local .env file, as the mailbox credentials are usually kept there
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/staffing-agent/")
		v.AddConfigPath("$HOME/.staffing-agent")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("STAFFING_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// bindLegacyEnv keeps the historical mailbox variables working
func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string]string{
		"imap.server":   "IMAP_SERVER",
		"imap.username": "EMAIL_USER",
		"imap.password": "EMAIL_PASSWORD",
	}
	for key, env := range legacy {
		if err := v.BindEnv(key, "STAFFING_AGENT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Recognizer defaults
	v.SetDefault("recognizer.provider", "rules")
	v.SetDefault("recognizer.known_places", []string{
		"Montréal", "Québec", "Laval", "Longueuil", "Gatineau", "Sherbrooke",
		"Trois-Rivières", "Saguenay", "Lévis", "Terrebonne", "Rimouski",
	})

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.0)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.0)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Domain pattern defaults
	v.SetDefault("patterns.professions", []string{"infirmier", "infirmière", "inf", "pab", "auxiliaire"})
	v.SetDefault("patterns.shift_periods", []string{"jour", "soir", "nuit"})
	v.SetDefault("patterns.urgency_lemmas", []string{"urgent", "immédiat", "urgence", "asap"})

	// Extraction defaults
	v.SetDefault("extraction.location_blacklist", []string{"bonjour", "merci", "service", "rh", "cordialement"})
	v.SetDefault("extraction.urgency_keywords", []string{"urgent", "urgence", "immédiat", "asap", "rapidement"})
	v.SetDefault("extraction.min_year", 2020)
	v.SetDefault("extraction.max_year", 2030)

	// Mailbox defaults
	v.SetDefault("mailbox.type", "imap")
	v.SetDefault("imap.server", "")
	v.SetDefault("imap.port", 993)
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("imap.folder", "INBOX")
	v.SetDefault("imap.processed_folder", "Processed")
	v.SetDefault("imap.max_body_size", 1024*1024)

	// SMTP ingress defaults
	v.SetDefault("smtp.listen_address", "0.0.0.0:10026")
	v.SetDefault("smtp.headers.classification", "X-Staffing-Classification")
	v.SetDefault("smtp.headers.urgent", "X-Staffing-Urgent")
	v.SetDefault("smtp.headers.requirements", "X-Staffing-Requirements")
	v.SetDefault("smtp.forward.enabled", false)
	v.SetDefault("smtp.forward.address", "127.0.0.1")
	v.SetDefault("smtp.forward.port", 10027)

	// Agent defaults
	v.SetDefault("agent.poll_interval", "5m")
	v.SetDefault("agent.run_once", false)

	// Sender defaults
	v.SetDefault("senders.ignored_domains", []string{})

	// Result store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.ttl", "720h")
	v.SetDefault("store.cleanup_frequency", "1h")
	v.SetDefault("store.sqlite_path", "/data/staffing_results.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/staffing")

	// Publisher defaults
	v.SetDefault("publisher.type", "log")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "staffing-requirements")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
