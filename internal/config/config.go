package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend struct {
		BaseURL           string  `yaml:"base_url"`
		BearerToken       string  `yaml:"bearer_token"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		CacheTTLSeconds   int     `yaml:"cache_ttl_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"backend"`

	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"api_key"`
	} `yaml:"server"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Preferences struct {
		Path string `yaml:"path"`
	} `yaml:"preferences"`

	Print struct {
		OutputDir      string `yaml:"output_dir"`
		SettleDelayMs  int    `yaml:"settle_delay_ms"`
		Command        string `yaml:"command"`
		IndicatorsPath string `yaml:"indicators_path"`
	} `yaml:"print"`

	Export struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"export"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Preferences.Path == "" {
		cfg.Preferences.Path = "data/gastrocal.db"
	}
	if cfg.Print.OutputDir == "" {
		cfg.Print.OutputDir = "data/print"
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = "data/export"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	for _, dir := range []string{filepath.Dir(cfg.Preferences.Path), cfg.Print.OutputDir, cfg.Export.OutputDir} {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) BackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Backend.CacheTTLSeconds) * time.Second
}

func (c *Config) PrintSettleDelay() time.Duration {
	if c.Print.SettleDelayMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Print.SettleDelayMs) * time.Millisecond
}
