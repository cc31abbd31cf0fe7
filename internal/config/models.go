package config

import (
	"fmt"
	"time"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// RecognizerConfig represents the configuration of the entity recognizer
type RecognizerConfig struct {
	Provider    string
	KnownPlaces []string
}

// LLMConfig represents the configuration shared by the LLM-backed recognizers
type LLMConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// IMAPConfig represents the mailbox connection settings
type IMAPConfig struct {
	Server          string
	Port            int
	Username        string
	Password        string
	Folder          string
	ProcessedFolder string
	MaxBodySize     int
}

// Address returns the host:port of the IMAP server
func (c IMAPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

// SMTPConfig represents the SMTP ingress settings
type SMTPConfig struct {
	ListenAddress        string
	ClassificationHeader string
	UrgentHeader         string
	RequirementsHeader   string
	ForwardEnabled       bool
	ForwardAddress       string
	ForwardPort          int
}

// AgentConfig represents the polling agent settings
type AgentConfig struct {
	PollInterval time.Duration
	RunOnce      bool
}

// KafkaConfig represents the Kafka publisher settings
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// GetRecognizer returns the recognizer configuration
func (c *Config) GetRecognizer() RecognizerConfig {
	return RecognizerConfig{
		Provider:    c.GetString("recognizer.provider"),
		KnownPlaces: c.GetStringSlice("recognizer.known_places"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() LLMConfig {
	return c.getLLM("gemini")
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() LLMConfig {
	return c.getLLM("openai")
}

func (c *Config) getLLM(section string) LLMConfig {
	return LLMConfig{
		APIKey:      c.GetString(section + ".api_key"),
		ModelName:   c.GetString(section + ".model_name"),
		MaxTokens:   c.GetInt(section + ".max_tokens"),
		Temperature: float32(c.GetFloat64(section + ".temperature")),
		TopP:        float32(c.GetFloat64(section + ".top_p")),
		MaxBodySize: c.GetInt(section + ".max_body_size"),
	}
}

// GetPatterns returns the domain pattern vocabularies
func (c *Config) GetPatterns() core.PatternConfig {
	return core.PatternConfig{
		Professions:   c.GetStringSlice("patterns.professions"),
		ShiftPeriods:  c.GetStringSlice("patterns.shift_periods"),
		UrgencyLemmas: c.GetStringSlice("patterns.urgency_lemmas"),
	}
}

// GetExtraction returns the extraction settings
func (c *Config) GetExtraction() core.ExtractionConfig {
	return core.ExtractionConfig{
		LocationBlacklist: c.GetStringSlice("extraction.location_blacklist"),
		UrgencyKeywords:   c.GetStringSlice("extraction.urgency_keywords"),
		MinYear:           c.GetInt("extraction.min_year"),
		MaxYear:           c.GetInt("extraction.max_year"),
	}
}

// GetIMAP returns the IMAP configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Server:          c.GetString("imap.server"),
		Port:            c.GetInt("imap.port"),
		Username:        c.GetString("imap.username"),
		Password:        c.GetString("imap.password"),
		Folder:          c.GetString("imap.folder"),
		ProcessedFolder: c.GetString("imap.processed_folder"),
		MaxBodySize:     c.GetInt("imap.max_body_size"),
	}
}

// GetSMTP returns the SMTP ingress configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		ListenAddress:        c.GetString("smtp.listen_address"),
		ClassificationHeader: c.GetString("smtp.headers.classification"),
		UrgentHeader:         c.GetString("smtp.headers.urgent"),
		RequirementsHeader:   c.GetString("smtp.headers.requirements"),
		ForwardEnabled:       c.GetBool("smtp.forward.enabled"),
		ForwardAddress:       c.GetString("smtp.forward.address"),
		ForwardPort:          c.GetInt("smtp.forward.port"),
	}
}

// GetAgent returns the polling agent configuration
func (c *Config) GetAgent() (AgentConfig, error) {
	interval, err := c.GetDuration("agent.poll_interval")
	if err != nil {
		return AgentConfig{}, fmt.Errorf("invalid agent poll interval: %w", err)
	}
	return AgentConfig{
		PollInterval: interval,
		RunOnce:      c.GetBool("agent.run_once"),
	}, nil
}

// GetKafka returns the Kafka publisher configuration
func (c *Config) GetKafka() KafkaConfig {
	return KafkaConfig{
		Brokers: c.GetStringSlice("kafka.brokers"),
		Topic:   c.GetString("kafka.topic"),
	}
}
