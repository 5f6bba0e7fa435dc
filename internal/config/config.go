package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/cbm-calculator/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultCacheSize      = 1024
	defaultLogLevel       = "info"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string                 `yaml:"port"`
	InitialPallets       []storage.PalletPreset `yaml:"pallets"`
	ShutdownGracePeriod  time.Duration          `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    time.Duration          `yaml:"read_header_timeout"`
	WriteTimeout         time.Duration          `yaml:"write_timeout"`
	IdleTimeout          time.Duration          `yaml:"idle_timeout"`
	EnableRequestLogging bool                   `yaml:"enable_request_logging"`
	EnableMetrics        bool                   `yaml:"enable_metrics"`
	CacheSize            int                    `yaml:"cache_size"`
	LogLevel             string                 `yaml:"log_level"`
	RateLimitRPS         float64                `yaml:"-"`
	RateLimitBurst       int                    `yaml:"-"`
}

// yamlConfig represents the YAML configuration file structure.
// Pointer fields distinguish "absent" from an explicit zero.
type yamlConfig struct {
	Port                 string                 `yaml:"port"`
	Pallets              []storage.PalletPreset `yaml:"pallets"`
	ShutdownGracePeriod  string                 `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string                 `yaml:"read_header_timeout"`
	WriteTimeout         string                 `yaml:"write_timeout"`
	IdleTimeout          string                 `yaml:"idle_timeout"`
	EnableRequestLogging *bool                  `yaml:"enable_request_logging"`
	EnableMetrics        *bool                  `yaml:"enable_metrics"`
	CacheSize            *int                   `yaml:"cache_size"`
	LogLevel             string                 `yaml:"log_level"`
	RateLimit            yamlRateLimit          `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	PalletsStr     *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	CacheSize      *int
	LogLevel       *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()
	var presetNames []string

	names, err := applyEnvConfig(&cfg)
	if err != nil {
		return Config{}, err
	}
	if len(names) > 0 {
		presetNames = names
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		names, err := applyCLIOverrides(&cfg, overrides)
		if err != nil {
			return Config{}, err
		}
		if len(names) > 0 {
			presetNames = names
		}
	}

	if len(presetNames) > 0 {
		selected, err := selectPresets(cfg.InitialPallets, presetNames)
		if err != nil {
			return Config{}, err
		}
		cfg.InitialPallets = selected
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		InitialPallets:       storage.DefaultPallets(),
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		EnableMetrics:        true,
		CacheSize:            defaultCacheSize,
		LogLevel:             defaultLogLevel,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if len(yamlCfg.Pallets) > 0 {
		cfg.InitialPallets = yamlCfg.Pallets
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = value
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.EnableMetrics != nil {
		cfg.EnableMetrics = *yamlCfg.EnableMetrics
	}
	if yamlCfg.CacheSize != nil {
		cfg.CacheSize = *yamlCfg.CacheSize
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(yamlCfg.LogLevel)
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	return nil
}

// applyEnvConfig applies environment variable configuration and returns any
// preset names selected through PALLET_PRESETS.
func applyEnvConfig(cfg *Config) ([]string, error) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if size := strings.TrimSpace(os.Getenv("CACHE_SIZE")); size != "" {
		if value, err := strconv.Atoi(size); err == nil && value >= 0 {
			cfg.CacheSize = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	if raw := strings.TrimSpace(os.Getenv("PALLET_PRESETS")); raw != "" {
		names, err := parsePresetNames(raw)
		if err != nil {
			return nil, fmt.Errorf("parse PALLET_PRESETS: %w", err)
		}
		return names, nil
	}
	return nil, nil
}

// applyCLIOverrides applies command-line flag overrides and returns any
// preset names selected through --pallets.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) ([]string, error) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.CacheSize != nil && *overrides.CacheSize >= 0 {
		cfg.CacheSize = *overrides.CacheSize
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(*overrides.LogLevel)
	}

	if overrides.PalletsStr != nil && *overrides.PalletsStr != "" {
		names, err := parsePresetNames(*overrides.PalletsStr)
		if err != nil {
			return nil, fmt.Errorf("parse pallets: %w", err)
		}
		return names, nil
	}

	return nil, nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("cache size must be >= 0")
	}
	if _, ok := validLogLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("log level must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}
	if len(cfg.InitialPallets) == 0 {
		return fmt.Errorf("pallet presets cannot be empty")
	}
	return nil
}

// parsePresetNames parses a comma-separated list of pallet preset names.
func parsePresetNames(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		names = append(names, part)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no pallet presets provided")
	}
	return names, nil
}

// selectPresets keeps the named presets, matching names case-insensitively.
func selectPresets(all []storage.PalletPreset, names []string) ([]storage.PalletPreset, error) {
	selected := make([]storage.PalletPreset, 0, len(names))
	for _, name := range names {
		found := false
		for _, p := range all {
			if strings.EqualFold(p.Name, name) {
				selected = append(selected, p)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: pallet %q", storage.ErrPresetNotFound, name)
		}
	}
	return selected, nil
}
