// Package config provides configuration management for the analysis
// application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"vegalens/internal/ivmodel"
)

// Config holds all application configuration.
type Config struct {
	Model   ModelConfig   `mapstructure:"model"`
	Data    DataConfig    `mapstructure:"data"`
	History HistoryConfig `mapstructure:"history"`
	UI      UIConfig      `mapstructure:"ui"`
}

// ModelConfig holds the default IV model parameters. Each field has a
// documented working range; values are caller-suppliable per run via
// flags, these are only the defaults.
type ModelConfig struct {
	Beta               float64 `mapstructure:"beta"`                 // typical -5 to -2
	SkewFactor         float64 `mapstructure:"skew_factor"`          // typical 0 to 1.5
	TermSlope          float64 `mapstructure:"term_slope"`           // ~1
	ReferenceTenorDays float64 `mapstructure:"reference_tenor_days"` // > 0
	VolgaScalar        float64 `mapstructure:"volga_scalar"`         // typical 0.3 to 0.7
	ReferenceSpot      float64 `mapstructure:"reference_spot"`       // > 0
}

// DataConfig holds grid data location configuration.
type DataConfig struct {
	Dir        string `mapstructure:"dir"`
	FilePrefix string `mapstructure:"file_prefix"`
}

// HistoryConfig holds run history persistence configuration.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/vegalens"
	}
	return filepath.Join(home, ".config", "vegalens")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// Config file not found, write the template for next time
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	defaults := ivmodel.DefaultParams()
	v.SetDefault("model.beta", defaults.Beta)
	v.SetDefault("model.skew_factor", defaults.SkewFactor)
	v.SetDefault("model.term_slope", defaults.TermSlope)
	v.SetDefault("model.reference_tenor_days", defaults.ReferenceTenor)
	v.SetDefault("model.volga_scalar", defaults.VolgaScalar)
	v.SetDefault("model.reference_spot", 100.0)
	v.SetDefault("data.dir", filepath.Join(configDir, "grids"))
	v.SetDefault("data.file_prefix", "SPX")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db_path", filepath.Join(configDir, "vegalens.db"))
	v.SetDefault("ui.color_enabled", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VEGALENS_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("VEGALENS_FILE_PREFIX"); v != "" {
		cfg.Data.FilePrefix = v
	}
	if v := os.Getenv("VEGALENS_DB_PATH"); v != "" {
		cfg.History.DBPath = v
	}
	if v := os.Getenv("VEGALENS_BETA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Model.Beta = f
		}
	}
}

// Validate validates the configuration against the documented parameter
// ranges.
func (c *Config) Validate() error {
	if c.Model.ReferenceTenorDays <= 0 {
		return fmt.Errorf("model.reference_tenor_days must be positive")
	}
	if c.Model.ReferenceSpot <= 0 {
		return fmt.Errorf("model.reference_spot must be positive")
	}
	if c.Model.Beta < -10 || c.Model.Beta > 0 {
		return fmt.Errorf("model.beta must be between -10 and 0 (typical -5 to -2)")
	}
	if c.Model.SkewFactor < -2 || c.Model.SkewFactor > 2 {
		return fmt.Errorf("model.skew_factor must be between -2 and 2")
	}
	if c.Model.TermSlope < 0 || c.Model.TermSlope > 3 {
		return fmt.Errorf("model.term_slope must be between 0 and 3")
	}
	if c.Model.VolgaScalar < 0 || c.Model.VolgaScalar > 1 {
		return fmt.Errorf("model.volga_scalar must be between 0 and 1")
	}
	return nil
}

// Params returns the configured model defaults as an ivmodel parameter
// set.
func (c *Config) Params() ivmodel.Params {
	return ivmodel.Params{
		Beta:           c.Model.Beta,
		SkewFactor:     c.Model.SkewFactor,
		TermSlope:      c.Model.TermSlope,
		ReferenceTenor: c.Model.ReferenceTenorDays,
		VolgaScalar:    c.Model.VolgaScalar,
	}
}
