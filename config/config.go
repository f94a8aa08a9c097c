package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the retrieval gateway
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Answer    AnswerConfig    `mapstructure:"answer"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig selects the active extraction backend. Exactly one of the
// use_* flags must be set; anything else is a startup configuration error.
type LLMConfig struct {
	UseOpenAI bool `mapstructure:"use_openai"`
	UseOllama bool `mapstructure:"use_ollama"`
	UseGroq   bool `mapstructure:"use_groq"`

	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	Timeout      time.Duration `mapstructure:"timeout"`

	OpenAI OpenAIConfig `mapstructure:"openai"`
	Ollama OllamaConfig `mapstructure:"ollama"`
	Groq   GroqConfig   `mapstructure:"groq"`
}

// OpenAIConfig contains OpenAI API settings
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// OllamaConfig contains local inference settings
type OllamaConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

// GroqConfig contains Groq API settings (OpenAI-compatible endpoint)
type GroqConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

func (l LLMConfig) Validate() error {
	n := 0
	for _, f := range []bool{l.UseOpenAI, l.UseOllama, l.UseGroq} {
		if f {
			n++
		}
	}
	if n == 0 {
		return fmt.Errorf("llm: no backend selected (set exactly one of llm.use_openai, llm.use_ollama, llm.use_groq)")
	}
	if n > 1 {
		return fmt.Errorf("llm: %d backends selected, want exactly one", n)
	}
	if l.UseOpenAI && strings.TrimSpace(l.OpenAI.APIKey) == "" {
		return fmt.Errorf("llm.openai.api_key required when llm.use_openai is set")
	}
	if l.UseGroq && strings.TrimSpace(l.Groq.APIKey) == "" {
		return fmt.Errorf("llm.groq.api_key required when llm.use_groq is set")
	}
	if l.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries cannot be negative")
	}
	return nil
}

// SearchConfig contains search backend settings
type SearchConfig struct {
	Backend    string        `mapstructure:"backend"` // searxng, serper
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func (s SearchConfig) Validate() error {
	if s.Backend == "searxng" && strings.TrimSpace(s.Endpoint) == "" {
		return fmt.Errorf("search.endpoint required for the searxng backend")
	}
	if s.Backend == "serper" && strings.TrimSpace(s.APIKey) == "" {
		return fmt.Errorf("search.api_key required for the serper backend")
	}
	return nil
}

// FetchConfig contains page fetch settings
type FetchConfig struct {
	Fetcher     string        `mapstructure:"fetcher"` // http, chromedp
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxChars    int           `mapstructure:"max_chars"`
	RPS         float64       `mapstructure:"rps"` // outbound requests per second, 0 = unlimited
}

func (f FetchConfig) Validate() error {
	if f.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be > 0")
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	return nil
}

// AnswerConfig bounds the distilled answer
type AnswerConfig struct {
	NumberOfPoints int `mapstructure:"number_of_points"`
}

func (a AnswerConfig) Validate() error {
	if a.NumberOfPoints <= 0 {
		return fmt.Errorf("answer.number_of_points must be > 0")
	}
	return nil
}

// CacheConfig contains result cache settings
type CacheConfig struct {
	Store string        `mapstructure:"store"` // inmemory, redis
	TTL   time.Duration `mapstructure:"ttl"`
}

func (c CacheConfig) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0")
	}
	return nil
}

// StorageConfig contains storage settings for the redis cache store
type StorageConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Validate checks cross-section invariants. It is called by LoadConfig and
// again by tests constructing configs by hand.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Fetch.Validate(); err != nil {
		return err
	}
	if err := c.Answer.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if c.Cache.Store == "redis" {
		if err := c.Storage.Redis.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", 30*time.Second)
	viper.SetDefault("server.address", ":10080")
	viper.SetDefault("llm.max_retries", 2)
	viper.SetDefault("llm.retry_backoff", 300*time.Millisecond)
	viper.SetDefault("llm.timeout", 30*time.Second)
	viper.SetDefault("llm.openai.model", "gpt-4o-mini")
	viper.SetDefault("llm.openai.temperature", 0.1)
	viper.SetDefault("llm.openai.max_tokens", 2000)
	viper.SetDefault("llm.ollama.base_url", "http://localhost:11434")
	viper.SetDefault("llm.ollama.temperature", 0.1)
	viper.SetDefault("llm.groq.model", "llama-3.1-8b-instant")
	viper.SetDefault("llm.groq.temperature", 0.1)
	viper.SetDefault("llm.groq.max_tokens", 2000)
	viper.SetDefault("search.backend", "searxng")
	viper.SetDefault("search.max_results", 6)
	viper.SetDefault("search.timeout", 10*time.Second)
	viper.SetDefault("fetch.fetcher", "http")
	viper.SetDefault("fetch.concurrency", 5)
	viper.SetDefault("fetch.timeout", 10*time.Second)
	viper.SetDefault("fetch.max_chars", 20000)
	viper.SetDefault("answer.number_of_points", 5)
	viper.SetDefault("cache.store", "inmemory")
	viper.SetDefault("cache.ttl", 5*time.Minute)
	viper.SetDefault("storage.redis.timeout", 5*time.Second)

	if path == "" {
		viper.AddConfigPath("./config") // path to look for the config file in
		viper.AddConfigPath(".")        // optionally look for config in the working directory
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)                                // bin/
		viper.AddConfigPath(filepath.Join(exeDir, ".."))           // repo root
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config")) // repo root/config
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("WEBDISTILL")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (WEBDISTILL_*)

	// AutomaticEnv only resolves keys viper already knows from a default or
	// the config file. Keys that exist in neither are bound explicitly so
	// env-only operation works for credentials and backend selection.
	for _, key := range []string{
		"llm.use_openai", "llm.use_ollama", "llm.use_groq",
		"llm.openai.api_key", "llm.groq.api_key",
		"search.endpoint", "search.api_key",
		"storage.redis.host", "storage.redis.port", "storage.redis.password",
		"telemetry.enabled",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Env-only operation is fine; a broken file is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	// unmarshal config
	var config Config

	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(err)
	}
	return &config
}
