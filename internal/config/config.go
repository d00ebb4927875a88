package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/logfields"
)

// DefaultConfigFile is the configuration file looked up in the working directory.
const DefaultConfigFile = "distbuilder.yaml"

// Config is the pipeline configuration. It is assembled once at startup from
// defaults, the optional YAML file and command-line flags, validated, and then
// only read.
type Config struct {
	Assets     []string        `yaml:"assets"`
	Files      []string        `yaml:"files"`
	Targets    []Target        `yaml:"targets"`
	Toolchain  ToolchainConfig `yaml:"toolchain"`
	StagingDir string          `yaml:"staging_dir"`
	DistDir    string          `yaml:"dist_dir"`
	History    HistoryConfig   `yaml:"history"`
	Events     EventsConfig    `yaml:"events"`

	// Run options, set from the command line.
	WorkDir     string `yaml:"-"`
	ArchivePath string `yaml:"-"`
	CleanCache  bool   `yaml:"-"`
	Platform    string `yaml:"-"` // GOOS-style name used for the executable suffix
}

// Target is a compilation unit and the binary it produces.
type Target struct {
	Package string `yaml:"package"`
	Binary  string `yaml:"binary,omitempty"` // defaults to Package
}

// ToolchainConfig describes how the external build tool is invoked.
type ToolchainConfig struct {
	Command   string `yaml:"command"`
	Profile   string `yaml:"profile"`
	OutputDir string `yaml:"output_dir"` // where the toolchain leaves binaries for Profile
}

// HistoryConfig controls the local run history database.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"` // defaults to the XDG state directory
}

// EventsConfig controls run-completion event publishing.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Assets: []string{
			"templates",
			"tools",
			"engine_assets/shaders",
			"engine_assets/fonts",
			"engine_assets/textures",
		},
		Files: []string{"HIKARI_VERSION", "imgui.ini"},
		Targets: []Target{
			{Package: "hikari_editor"},
			{Package: "hikari_cli"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configPath and merges it over the defaults. When required is
// false a missing file is not an error and the defaults are returned.
//
// Variables from .env files in the working directory are loaded first and
// ${VAR} references in the YAML are expanded.
func Load(configPath string, required bool) (*Config, error) {
	if err := loadEnvFiles(filepath.Dir(configPath)); err != nil {
		slog.Debug("No .env file loaded", logfields.Error(err))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			slog.Debug("Configuration file not found, using defaults", logfields.Path(configPath))
			return Default(), nil
		}
		return nil, fe.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fe.ConfigError("failed to parse config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	def := Default()
	if cfg.Assets == nil {
		cfg.Assets = def.Assets
	}
	if cfg.Files == nil {
		cfg.Files = def.Files
	}
	if cfg.Targets == nil {
		cfg.Targets = def.Targets
	}
	cfg.applyDefaults()

	slog.Debug("Loaded configuration", logfields.Path(configPath),
		"assets", len(cfg.Assets),
		"files", len(cfg.Files),
		"targets", len(cfg.Targets))
	return &cfg, nil
}

// applyDefaults fills zero-valued scalar fields.
func (c *Config) applyDefaults() {
	if c.Toolchain.Command == "" {
		c.Toolchain.Command = "cargo"
	}
	if c.Toolchain.Profile == "" {
		c.Toolchain.Profile = "dist"
	}
	if c.Toolchain.OutputDir == "" {
		c.Toolchain.OutputDir = filepath.Join("target", c.Toolchain.Profile)
	}
	if c.StagingDir == "" {
		c.StagingDir = ".dist"
	}
	if c.DistDir == "" {
		c.DistDir = "dist"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "distbuilder.runs"
	}
	if c.Platform == "" {
		c.Platform = runtime.GOOS
	}
	for i := range c.Targets {
		if c.Targets[i].Binary == "" {
			c.Targets[i].Binary = c.Targets[i].Package
		}
	}
}

// HistoryEnabled reports whether runs are recorded; enabled unless set to false.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// ArchiveMode reports whether the run packages into an archive instead of
// promoting to DistDir.
func (c *Config) ArchiveMode() bool {
	return c.ArchivePath != ""
}

// ExecutableName applies the platform executable suffix to binary.
func ExecutableName(binary, platform string) string {
	if platform == "windows" {
		return binary + ".exe"
	}
	return binary
}

// BinaryName returns the platform-specific file name of t's binary.
func (c *Config) BinaryName(t Target) string {
	return ExecutableName(t.Binary, c.Platform)
}

// Resolve returns p joined to the working directory unless it is absolute.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.WorkDir, p)
}

// StagingPath is the absolute staging directory.
func (c *Config) StagingPath() string { return c.Resolve(c.StagingDir) }

// DistPath is the absolute permanent distribution directory.
func (c *Config) DistPath() string { return c.Resolve(c.DistDir) }

// ToolchainOutputPath is the absolute directory the toolchain writes binaries to.
func (c *Config) ToolchainOutputPath() string { return c.Resolve(c.Toolchain.OutputDir) }

// ArchiveDestination is the absolute archive path, or "" outside archive mode.
func (c *Config) ArchiveDestination() string {
	if !c.ArchiveMode() {
		return ""
	}
	return c.Resolve(c.ArchivePath)
}

// String renders a one-line summary for logs.
func (c *Config) String() string {
	mode := "move"
	if c.ArchiveMode() {
		mode = "archive"
	}
	return fmt.Sprintf("mode=%s workdir=%s targets=%d assets=%d files=%d", mode, c.WorkDir, len(c.Targets), len(c.Assets), len(c.Files))
}
