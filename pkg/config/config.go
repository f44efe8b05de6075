// Package config handles pipeline configuration loading and validation
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/packwright/packwright/pkg/types"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config carries every input the pipeline reads. It is constructed once
// at startup and passed by reference; no component consults ambient
// state. Paths are relative to the project root unless absolute.
type Config struct {
	EngineURL    string `json:"engineUrl" yaml:"engineUrl"`
	TemplatesURL string `json:"templatesUrl" yaml:"templatesUrl"`
	ProjectPath  string `json:"projectPath" yaml:"projectPath"`
	OutputPath   string `json:"outputPath" yaml:"outputPath"`

	Archive       bool `json:"archive" yaml:"archive"`
	UsePresetPath bool `json:"usePresetPath" yaml:"usePresetPath"`
	StripRoot     bool `json:"stripRoot" yaml:"stripRoot"`

	EngineMajor types.EngineMajor `json:"engineMajor" yaml:"engineMajor"`
	Debug       bool              `json:"debug" yaml:"debug"`
	PackOnly    bool              `json:"packOnly" yaml:"packOnly"`
	Verbose     bool              `json:"verbose" yaml:"verbose"`

	// WinePath points at a Windows cross-compilation toolchain root.
	// Empty disables the editor-settings append step.
	WinePath string `json:"winePath" yaml:"winePath"`

	// SDKLibraries maps desktop platforms to a third-party SDK shared
	// library to place inside exported artifacts.
	SDKLibraries    map[types.Platform]string `json:"sdkLibraries" yaml:"sdkLibraries"`
	SDKIdentityFile string                    `json:"sdkIdentityFile" yaml:"sdkIdentityFile"`

	Notify  bool   `json:"notify" yaml:"notify"`
	Workdir string `json:"workdir" yaml:"workdir"`
}

// Manager handles configuration operations
type Manager struct{}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{}
}

// LoadConfig loads configuration from a file, trying JSON first and
// falling back to YAML.
func (m *Manager) LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config

	if err := json.Unmarshal(data, &cfg); err == nil {
		return m.validate(&cfg)
	}

	if err := yaml.Unmarshal(data, &cfg); err == nil {
		return m.validate(&cfg)
	}

	return nil, fmt.Errorf("failed to parse config as JSON or YAML")
}

// FromViper builds a Config from bound flags and PACKWRIGHT_* environment
// variables.
func (m *Manager) FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		EngineURL:       v.GetString("engine_url"),
		TemplatesURL:    v.GetString("templates_url"),
		ProjectPath:     v.GetString("project_path"),
		OutputPath:      v.GetString("output_path"),
		Archive:         v.GetBool("archive"),
		UsePresetPath:   v.GetBool("use_preset_path"),
		StripRoot:       v.GetBool("strip_root"),
		EngineMajor:     types.EngineMajor(v.GetString("engine_major")),
		Debug:           v.GetBool("debug"),
		PackOnly:        v.GetBool("pack_only"),
		Verbose:         v.GetBool("verbose"),
		WinePath:        v.GetString("wine_path"),
		SDKIdentityFile: v.GetString("sdk_identity_file"),
		Notify:          v.GetBool("notify"),
		Workdir:         v.GetString("workdir"),
	}

	if raw := v.GetStringMapString("sdk_libraries"); len(raw) > 0 {
		cfg.SDKLibraries = make(map[types.Platform]string, len(raw))
		for platform, path := range raw {
			cfg.SDKLibraries[types.NormalizePlatform(platform)] = path
		}
	}

	return m.validate(cfg)
}

// ValidateConfig validates a configuration
func (m *Manager) ValidateConfig(cfg *Config) error {
	if cfg.EngineURL == "" {
		return fmt.Errorf("missing engine download URL")
	}
	if cfg.TemplatesURL == "" {
		return fmt.Errorf("missing export templates download URL")
	}
	if cfg.ProjectPath == "" {
		return fmt.Errorf("missing project path")
	}

	switch cfg.EngineMajor {
	case types.EngineLegacy, types.EngineCurrent:
	case "":
		cfg.EngineMajor = types.EngineCurrent
	default:
		return fmt.Errorf("unsupported engine major version: %s", cfg.EngineMajor)
	}

	if cfg.OutputPath == "" {
		cfg.OutputPath = "dist"
	}

	return nil
}

// SDKLibrary returns the configured SDK library for a platform, if any.
func (c *Config) SDKLibrary(platform types.Platform) (string, bool) {
	path, ok := c.SDKLibraries[platform]
	return path, ok && path != ""
}

func (m *Manager) validate(cfg *Config) (*Config, error) {
	if err := m.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
