package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "framescan"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "FRAMESCAN"
)

// Loader handles loading configuration from files, environment variables and
// bound flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader backed by the global viper
// instance so that cobra flag bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from the search paths, environment variables and
// defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshal()
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Maps cannot carry per-key viper defaults; fall back to the built-in
	// catalog and profiles when the file defines none.
	defaults := DefaultConfig()
	if len(cfg.Detection.Papers) == 0 {
		cfg.Detection.Papers = defaults.Detection.Papers
	}
	if len(cfg.Detection.Profiles) == 0 {
		cfg.Detection.Profiles = defaults.Detection.Profiles
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/framescan")
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "framescan"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "framescan"))
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("detection.min_frame_dim", defaults.Detection.MinFrameDim)
	l.v.SetDefault("detection.max_candidates", defaults.Detection.MaxCandidates)
	l.v.SetDefault("detection.anchor.primary_text", defaults.Detection.Anchor.PrimaryText)
	l.v.SetDefault("detection.anchor.secondary_text", defaults.Detection.Anchor.SecondaryText)
	l.v.SetDefault("detection.anchor.roi_field", defaults.Detection.Anchor.ROIField)
	l.v.SetDefault("detection.anchor.match_policy", defaults.Detection.Anchor.MatchPolicy)
	l.v.SetDefault("detection.anchor.locate_mode", defaults.Detection.Anchor.LocateMode)
	l.v.SetDefault("detection.anchor.max_insert_depth", defaults.Detection.Anchor.MaxInsertDepth)
	l.v.SetDefault("detection.fit.allow_rotation", defaults.Detection.Fit.AllowRotation)
	l.v.SetDefault("detection.fit.uniform_scale_required", defaults.Detection.Fit.UniformScaleRequired)
	l.v.SetDefault("detection.fit.uniform_scale_tol", defaults.Detection.Fit.UniformScaleTol)
	l.v.SetDefault("detection.tolerances.coord", defaults.Detection.Tolerances.Coord)
	l.v.SetDefault("detection.tolerances.orthogonality_deg", defaults.Detection.Tolerances.OrthogonalityDeg)
	l.v.SetDefault("detection.tolerances.roi_margin_percent", defaults.Detection.Tolerances.ROIMarginPercent)
	l.v.SetDefault("detection.tolerances.scale_mismatch", defaults.Detection.Tolerances.ScaleMismatch)

	l.v.SetDefault("sheetset.gap_factor", defaults.SheetSet.GapFactor)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.overlay_ppu", defaults.Output.OverlayPPU)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)

	l.v.SetDefault("batch.workers", defaults.Batch.Workers)
	l.v.SetDefault("batch.output_dir", defaults.Batch.OutputDir)
	l.v.SetDefault("batch.continue_on_error", defaults.Batch.ContinueOnError)
}
