package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	Server ServerConfig `yaml:"server"`

	GitHubToken   string        `yaml:"github_token"`
	GitHubBaseURL string        `yaml:"github_base_url"`
	GitHubTimeout time.Duration `yaml:"github_timeout"`

	LLMBaseURL string        `yaml:"llm_base_url"`
	LLMAPIKey  string        `yaml:"llm_api_key"`
	LLMModel   string        `yaml:"llm_model"`
	LLMTimeout time.Duration `yaml:"llm_timeout"`

	// Technologies maps a file suffix (".py") to the tag reported for it ("py").
	Technologies map[string]string `yaml:"technologies"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // debug, release

	// SeedCredentials pre-fills new browser sessions with the configured keys.
	SeedCredentials bool `yaml:"seed_credentials"`
}

// DefaultTechnologies is the recognized suffix table used when the config
// file does not provide one.
func DefaultTechnologies() map[string]string {
	return map[string]string{
		".py":   "py",
		".js":   "js",
		".java": "java",
		".cpp":  "cpp",
	}
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	path := os.Getenv("READMEDRAFTER_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			klog.Warningf("ignoring malformed config file %s: %v", path, err)
		}
	}

	setString(&cfg.GitHubToken, "GITHUB_TOKEN")
	setString(&cfg.GitHubBaseURL, "GITHUB_BASE_URL")
	setDuration(&cfg.GitHubTimeout, "GITHUB_TIMEOUT")

	setString(&cfg.LLMAPIKey, "OPENAI_API_KEY")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setDuration(&cfg.LLMTimeout, "LLM_TIMEOUT")

	setString(&cfg.Server.Addr, "LISTEN_ADDR")
	setString(&cfg.Server.Mode, "GIN_MODE")

	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.openai.com/v1"
	}
	cfg.LLMBaseURL = strings.TrimSuffix(cfg.LLMBaseURL, "/")
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 60 * time.Second
	}
	if cfg.GitHubTimeout <= 0 {
		cfg.GitHubTimeout = 15 * time.Second
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if len(cfg.Technologies) == 0 {
		cfg.Technologies = DefaultTechnologies()
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		klog.Warningf("ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = d
}
