package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultUser = "local"

type Config struct {
	DataDir    string           `mapstructure:"data_dir"`
	User       string           `mapstructure:"user"`
	LogLevel   string           `mapstructure:"log_level"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Enrich     EnrichConfig     `mapstructure:"enrich"`
	Server     ServerConfig     `mapstructure:"server"`
}

type ExtractorConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type ClassifierConfig struct {
	// TablesFile replaces the built-in keyword tables when set.
	TablesFile string `mapstructure:"tables_file"`
}

type LLMConfig struct {
	Provider      string            `mapstructure:"provider"`
	Model         string            `mapstructure:"model"`
	BaseURL       string            `mapstructure:"base_url"`
	APIKey        string            `mapstructure:"api_key"`
	Headers       map[string]string `mapstructure:"headers"`
	SummaryPrompt string            `mapstructure:"summary_prompt"`
}

type EnrichConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func Load() (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	defaultDataDir := filepath.Join(homeDir, ".linkfind")

	viper.SetDefault("data_dir", defaultDataDir)
	viper.SetDefault("user", DefaultUser)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("extractor.timeout", 5*time.Second)
	viper.SetDefault("extractor.max_body_bytes", 2<<20)
	viper.SetDefault("llm.provider", "anthropic")
	viper.SetDefault("llm.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("enrich.enabled", false)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.cors_origins", []string{"*"})
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Environment variable overrides
	viper.SetEnvPrefix("LINKFIND")
	viper.AutomaticEnv()
	viper.BindEnv("data_dir", "LINKFIND_DATA_DIR")
	viper.BindEnv("user", "LINKFIND_USER")
	viper.BindEnv("log_level", "LINKFIND_LOG_LEVEL")
	viper.BindEnv("llm.provider", "LINKFIND_LLM_PROVIDER")
	viper.BindEnv("llm.model", "LINKFIND_LLM_MODEL")
	viper.BindEnv("llm.base_url", "LINKFIND_LLM_BASE_URL")
	viper.BindEnv("enrich.enabled", "LINKFIND_ENRICH_ENABLED")
	viper.BindEnv("server.addr", "LINKFIND_SERVER_ADDR")

	// Config file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(viper.GetString("data_dir"))
	viper.AddConfigPath(defaultDataDir)

	// Read config file if exists (ignore error if not found)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.User == "" {
		cfg.User = DefaultUser
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}
