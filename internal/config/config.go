package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when WHOYAP_CONFIG is not set.
const DefaultPath = "configs/config.yml"

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"` // gin mode: debug, release, test
	} `yaml:"server"`
	Database struct {
		Type string `yaml:"type"` // "postgres" or "sqlite"
		URL  string `yaml:"url"`  // PostgreSQL URL or SQLite path
	} `yaml:"database"`
	Embedding struct {
		Provider     string        `yaml:"provider"` // "ollama", "gemini" or "none"
		Backfill     bool          `yaml:"backfill"`
		BatchSize    int           `yaml:"batch_size"`
		PollInterval time.Duration `yaml:"poll_interval"`
		CallTimeout  time.Duration `yaml:"call_timeout"`
	} `yaml:"embedding"`
	Ollama struct {
		Host           string        `yaml:"host"`
		EmbeddingModel string        `yaml:"embedding_model"`
		ChatModel      string        `yaml:"chat_model"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"ollama"`
	Gemini struct {
		APIKey         string        `yaml:"api_key"`
		EmbeddingModel string        `yaml:"embedding_model"`
		ChatModel      string        `yaml:"chat_model"`
		MaxRetries     int           `yaml:"max_retries"`
		RetryDelay     time.Duration `yaml:"retry_delay"`
	} `yaml:"gemini"`
	LLM struct {
		Providers         []string `yaml:"providers"` // tried in order
		RequestsPerMinute int      `yaml:"requests_per_minute"`
		MaxFailures       int      `yaml:"max_failures_before_switch"`
	} `yaml:"llm"`
	Uploads struct {
		Backend  string `yaml:"backend"` // "local" or "minio"
		Dir      string `yaml:"dir"`
		MaxBytes int64  `yaml:"max_bytes"`
		Minio    struct {
			Endpoint  string `yaml:"endpoint"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			UseSSL    bool   `yaml:"use_ssl"`
			Bucket    string `yaml:"bucket"`
		} `yaml:"minio"`
	} `yaml:"uploads"`
	Quiz struct {
		RoundSecret       string        `yaml:"round_secret"`
		RoundTTL          time.Duration `yaml:"round_ttl"`
		RequireRoundToken bool          `yaml:"require_round_token"`
		Seed              int64         `yaml:"seed"` // 0 seeds from the clock
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"` // empty disables the replay guard
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Telegram struct {
		Enabled    bool   `yaml:"enabled"`
		BotToken   string `yaml:"bot_token"`
		HostChatID int64  `yaml:"host_chat_id"`
	} `yaml:"telegram"`
}

// Path returns the config file location.
func Path() string {
	if p := os.Getenv("WHOYAP_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.expandEnv()
	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) expandEnv() {
	c.Database.URL = os.ExpandEnv(c.Database.URL)
	c.Gemini.APIKey = os.ExpandEnv(c.Gemini.APIKey)
	c.Uploads.Minio.AccessKey = os.ExpandEnv(c.Uploads.Minio.AccessKey)
	c.Uploads.Minio.SecretKey = os.ExpandEnv(c.Uploads.Minio.SecretKey)
	c.Quiz.RoundSecret = os.ExpandEnv(c.Quiz.RoundSecret)
	c.Redis.Password = os.ExpandEnv(c.Redis.Password)
	c.Telegram.BotToken = os.ExpandEnv(c.Telegram.BotToken)
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.URL == "" && c.Database.Type == "sqlite" {
		c.Database.URL = "./data/whoyap.db"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "none"
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 64
	}
	if c.Embedding.PollInterval == 0 {
		c.Embedding.PollInterval = time.Minute
	}
	if c.Embedding.CallTimeout == 0 {
		c.Embedding.CallTimeout = 30 * time.Second
	}
	if c.Gemini.MaxRetries == 0 {
		c.Gemini.MaxRetries = 3
	}
	if c.LLM.RequestsPerMinute == 0 {
		c.LLM.RequestsPerMinute = 30
	}
	if c.LLM.MaxFailures == 0 {
		c.LLM.MaxFailures = 3
	}
	if c.Uploads.Backend == "" {
		c.Uploads.Backend = "local"
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "./data/uploads"
	}
	if c.Uploads.MaxBytes == 0 {
		c.Uploads.MaxBytes = 32 << 20
	}
	if c.Uploads.Minio.Bucket == "" {
		c.Uploads.Minio.Bucket = "whoyap-uploads"
	}
	if c.Quiz.RoundTTL == 0 {
		c.Quiz.RoundTTL = 10 * time.Minute
	}
}

func (c *Config) validate() error {
	switch c.Database.Type {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required for %s", c.Database.Type)
	}
	switch c.Embedding.Provider {
	case "ollama", "gemini", "none":
	default:
		return fmt.Errorf("unsupported embedding provider %q", c.Embedding.Provider)
	}
	for _, p := range c.LLM.Providers {
		if p != "ollama" && p != "gemini" {
			return fmt.Errorf("unsupported llm provider %q", p)
		}
	}
	switch c.Uploads.Backend {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported upload backend %q", c.Uploads.Backend)
	}
	if c.Telegram.Enabled && c.Telegram.HostChatID == 0 {
		return fmt.Errorf("telegram.host_chat_id is required when telegram is enabled")
	}
	return nil
}
