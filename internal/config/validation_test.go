package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := Default()
	cfg.WorkDir = t.TempDir()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, validConfig(t).Validate())
}

func TestValidate_ArchiveFormat(t *testing.T) {
	cfg := validConfig(t)
	cfg.ArchivePath = "out.zip"
	require.NoError(t, cfg.Validate())

	cfg.ArchivePath = "out.tar"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, fe.ErrUnsupportedArchiveFormat)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no workdir", func(c *Config) { c.WorkDir = "" }},
		{"no targets", func(c *Config) { c.Targets = nil }},
		{"empty package", func(c *Config) { c.Targets = []Target{{Package: " "}} }},
		{"duplicate binaries", func(c *Config) {
			c.Targets = []Target{{Package: "a", Binary: "tool"}, {Package: "b", Binary: "tool"}}
		}},
		{"absolute asset", func(c *Config) { c.Assets = []string{filepath.Join(c.WorkDir, "abs")} }},
		{"escaping asset", func(c *Config) { c.Assets = []string{"../outside"} }},
		{"escaping file", func(c *Config) { c.Files = []string{"../../etc/passwd"} }},
		{"dot asset", func(c *Config) { c.Assets = []string{"."} }},
		{"empty file", func(c *Config) { c.Files = []string{""} }},
		{"same staging and dist", func(c *Config) { c.DistDir = c.StagingDir }},
		{"dist is workdir", func(c *Config) { c.DistDir = "." }},
		{"archive in staging", func(c *Config) { c.ArchivePath = filepath.Join(".dist", "out.zip") }},
		{"no toolchain command", func(c *Config) { c.Toolchain.Command = "" }},
		{"staging inside dist", func(c *Config) { c.StagingDir = filepath.Join("dist", ".stage") }},
		{"dist inside staging", func(c *Config) { c.DistDir = filepath.Join(".dist", "out") }},
		{"staging inside asset", func(c *Config) { c.StagingDir = filepath.Join("tools", ".stage") }},
		{"dist inside asset", func(c *Config) { c.DistDir = filepath.Join("templates", "out") }},
		{"asset inside dist", func(c *Config) { c.Assets = []string{filepath.Join("dist", "shaders")} }},
		{"file inside staging", func(c *Config) { c.Files = []string{filepath.Join(".dist", "VERSION")} }},
		{"output dir inside staging", func(c *Config) { c.StagingDir = "target" }},
		{"files share a base name", func(c *Config) { c.Files = []string{"VERSION", filepath.Join("a", "VERSION")} }},
		{"file named like a binary", func(c *Config) { c.Files = []string{filepath.Join("bin", "hikari_cli")} }},
		{"file named like an asset root", func(c *Config) { c.Files = []string{filepath.Join("docs", "templates")} }},
		{"binary named like an asset root", func(c *Config) {
			c.Targets = []Target{{Package: "cli", Binary: "engine_assets"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, fe.HasCategory(err, fe.CategoryConfig), "got %v", err)
		})
	}
}

func TestValidate_WindowsSuffixDuplicates(t *testing.T) {
	cfg := validConfig(t)
	cfg.Platform = "windows"
	cfg.Targets = []Target{{Package: "a", Binary: "tool"}, {Package: "b", Binary: "tool.exe"}}
	require.NoError(t, cfg.Validate(), "tool.exe and tool.exe.exe are distinct")

	cfg.Targets = []Target{{Package: "a", Binary: "tool"}, {Package: "b", Binary: "tool"}}
	require.Error(t, cfg.Validate())
}

func TestValidate_AssetsMayShareParent(t *testing.T) {
	cfg := validConfig(t)
	cfg.Assets = []string{"engine_assets/shaders", "engine_assets/fonts", "templates"}
	require.NoError(t, cfg.Validate())
}

func TestValidate_RootCollisionNamesBothEntries(t *testing.T) {
	cfg := validConfig(t)
	cfg.Files = []string{"VERSION", filepath.Join("a", "VERSION")}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"VERSION"`)
	assert.Contains(t, err.Error(), filepath.Join("a", "VERSION"))
}
