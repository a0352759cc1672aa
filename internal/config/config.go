package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int      `yaml:"port"`
		FrontendOrigins []string `yaml:"frontend_origins"`
		PublicBaseURL   string   `yaml:"public_base_url"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address        string `yaml:"address"`
		Password       string `yaml:"password"`
		DB             int    `yaml:"db"`
		SlotTTLSeconds int    `yaml:"slot_ttl_seconds"`
	} `yaml:"redis"`

	Firebase struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"firebase"`

	Email struct {
		Enabled       bool    `yaml:"enabled"`
		BaseURL       string  `yaml:"base_url"`
		APIKey        string  `yaml:"api_key"`
		SenderName    string  `yaml:"sender_name"`
		SenderEmail   string  `yaml:"sender_email"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"email"`

	Storage struct {
		ArtifactsDir string `yaml:"artifacts_dir"`
	} `yaml:"storage"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
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

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.FrontendOrigins) == 0 {
		cfg.Server.FrontendOrigins = []string{"http://localhost:5500", "http://127.0.0.1:5500"}
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/parksmart.db"
	}
	if cfg.Storage.ArtifactsDir == "" {
		cfg.Storage.ArtifactsDir = "data/artifacts"
	}
	if cfg.Email.BaseURL == "" {
		cfg.Email.BaseURL = "https://api.brevo.com"
	}
	if cfg.Email.SenderName == "" {
		cfg.Email.SenderName = "ParkSmart"
	}

	for _, dir := range []string{filepath.Dir(cfg.Database.Path), cfg.Storage.ArtifactsDir} {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// SlotCacheTTL returns the booked-slots cache TTL; zero disables caching.
func (c *Config) SlotCacheTTL() time.Duration {
	if c.Redis.SlotTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.SlotTTLSeconds) * time.Second
}

// BackupInterval returns how often database backups run.
func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}
