package config

import "time"

// Config is the top-level YAML structure.
type Config struct {
	Server        ServerConf     `yaml:"server"`
	Store         StoreConf      `yaml:"store"`
	Engine        EngineConf     `yaml:"engine"`
	Notifications NotifyConf     `yaml:"notifications"`
	Ollama        OllamaConf     `yaml:"ollama"`
	Facts         map[string]any `yaml:"facts"`
}

type ServerConf struct {
	Addr string `yaml:"addr"`
}

// StoreConf selects the rule store backend.
type StoreConf struct {
	Backend string `yaml:"backend"` // "memory" | "sqlite"
	Path    string `yaml:"path"`    // sqlite database file
}

// EngineConf holds evaluation tunables.
type EngineConf struct {
	// PassIntervalMs enables periodic evaluation when > 0.
	PassIntervalMs int `yaml:"pass_interval_ms"`
	// ActionTimeoutMs bounds each action execution.
	ActionTimeoutMs int `yaml:"action_timeout_ms"`
}

func (e EngineConf) PassInterval() time.Duration {
	return time.Duration(e.PassIntervalMs) * time.Millisecond
}

func (e EngineConf) ActionTimeout() time.Duration {
	return time.Duration(e.ActionTimeoutMs) * time.Millisecond
}

// NotifyConf bounds the notification feed.
type NotifyConf struct {
	Retention int `yaml:"retention"`
}

// OllamaConf points at the text-generation collaborator.
type OllamaConf struct {
	Host      string `yaml:"host"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

func (o OllamaConf) Timeout() time.Duration {
	return time.Duration(o.TimeoutMs) * time.Millisecond
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.Backend == "sqlite" && cfg.Store.Path == "" {
		cfg.Store.Path = "data/rules.db"
	}
	if cfg.Engine.ActionTimeoutMs == 0 {
		cfg.Engine.ActionTimeoutMs = 10000
	}
	if cfg.Notifications.Retention == 0 {
		cfg.Notifications.Retention = 1000
	}
	if cfg.Ollama.Host == "" {
		cfg.Ollama.Host = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "llama3"
	}
	if cfg.Ollama.TimeoutMs == 0 {
		cfg.Ollama.TimeoutMs = 120000
	}
}
