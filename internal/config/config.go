package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EmbedderConfig configures the OpenAI-compatible embedding client.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxAttempts int    `yaml:"max_attempts"`
	CacheSize   int    `yaml:"cache_size"`
}

// ChunkerConfig configures how report text is split into windows.
// Overlap is a pointer so an explicit zero survives defaulting.
type ChunkerConfig struct {
	MaxLength int  `yaml:"max_length"`
	Overlap   *int `yaml:"overlap"`
}

// RetrieverConfig configures chunk ranking.
type RetrieverConfig struct {
	TopK         int     `yaml:"top_k"`
	LexicalBonus float64 `yaml:"lexical_bonus"`
}

// LLMConfig configures the chat-completion client used for analysis and answers.
type LLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EvaluationConfig configures the optional answer evaluator.
type EvaluationConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

// CacheConfig configures the on-disk embedding cache.
type CacheConfig struct {
	Dir           string `yaml:"dir"`
	SchemeVersion string `yaml:"scheme_version"`
}

// QuotesConfig configures the best-effort stock quote lookup.
type QuotesConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OutputConfig configures where exported answers are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig configures the HTTP API binary.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	AllowedOrigins string `yaml:"allowed_origins"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Retriever  RetrieverConfig  `yaml:"retriever"`
	LLM        LLMConfig        `yaml:"llm"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Cache      CacheConfig      `yaml:"cache"`
	Quotes     QuotesConfig     `yaml:"quotes"`
	Output     OutputConfig     `yaml:"output"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/rapport/config.yaml.
// If neither exists, it writes defaults to ~/.config/rapport/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rapport", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Embedder.MaxAttempts == 0 {
		cfg.Embedder.MaxAttempts = 6
	}
	if cfg.Embedder.CacheSize == 0 {
		cfg.Embedder.CacheSize = 512
	}
	if cfg.Chunker.MaxLength == 0 {
		cfg.Chunker.MaxLength = 1500
	}
	if cfg.Chunker.Overlap == nil {
		overlap := 200
		cfg.Chunker.Overlap = &overlap
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 7
	}
	if cfg.Retriever.LexicalBonus == 0 {
		cfg.Retriever.LexicalBonus = 0.005
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 120
	}
	if cfg.Evaluation.Model == "" {
		cfg.Evaluation.Model = "gpt-4o-mini"
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join("data", "embeddings")
	}
	if cfg.Cache.SchemeVersion == "" {
		cfg.Cache.SchemeVersion = "v5"
	}
	if cfg.Quotes.BaseURL == "" {
		cfg.Quotes.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Quotes.TimeoutSecs == 0 {
		cfg.Quotes.TimeoutSecs = 10
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = filepath.Join("data", "outputs")
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.AllowedOrigins == "" {
		cfg.Server.AllowedOrigins = "*"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join("data", "rapport.log")
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
