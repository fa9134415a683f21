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
	// DirName is the per-project and per-user configuration directory.
	DirName = ".methodex"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "METHODEX"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from files and environment variables.
	// Priority: defaults → user file → project file (or explicit file) → environment
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	userDir    string
	configFile string
}

// LoaderOption customises a Loader.
type LoaderOption func(*loader)

// WithConfigFile loads the given file instead of <root>/.methodex/config.yml.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) { l.configFile = path }
}

// WithUserDir overrides the user config directory (default ~/.methodex).
// An empty dir disables the user layer.
func WithUserDir(dir string) LoaderOption {
	return func(l *loader) { l.userDir = dir }
}

// NewLoader creates a new configuration loader for the given project root.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	if home, err := os.UserHomeDir(); err == nil {
		l.userDir = filepath.Join(home, DirName)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// METHODEX_EXTRACT_WORKERS -> extract.workers
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnv(v)

	setDefaults(v)

	if l.userDir != "" {
		if err := mergeFile(v, l.userDir, "", false); err != nil {
			return nil, err
		}
	}

	if l.configFile != "" {
		if err := mergeFile(v, "", l.configFile, true); err != nil {
			return nil, err
		}
	} else if l.rootDir != "" {
		if err := mergeFile(v, filepath.Join(l.rootDir, DirName), "", false); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// mergeFile merges a config file into v. With dir set it searches for
// config.yml/config.yaml there; a missing file is only an error when required.
func mergeFile(v *viper.Viper, dir, file string, required bool) error {
	layer := viper.New()
	if file != "" {
		layer.SetConfigFile(file)
	} else {
		layer.SetConfigName("config")
		layer.SetConfigType("yaml")
		layer.AddConfigPath(dir)
	}

	if err := layer.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !required && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.MergeConfigMap(layer.AllSettings()); err != nil {
		return fmt.Errorf("failed to merge config file %s: %w", layer.ConfigFileUsed(), err)
	}
	return nil
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("extract.extensions")
	v.BindEnv("extract.ignore")
	v.BindEnv("extract.workers")
	v.BindEnv("extract.follow_symlinks")

	v.BindEnv("output.mode")
	v.BindEnv("output.format")

	v.BindEnv("watch.debounce_ms")

	v.BindEnv("log.level")
	v.BindEnv("log.format")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extract.extensions", defaults.Extract.Extensions)
	v.SetDefault("extract.ignore", defaults.Extract.Ignore)
	v.SetDefault("extract.workers", defaults.Extract.Workers)
	v.SetDefault("extract.follow_symlinks", defaults.Extract.FollowSymlinks)

	v.SetDefault("output.mode", defaults.Output.Mode)
	v.SetDefault("output.format", defaults.Output.Format)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
}
