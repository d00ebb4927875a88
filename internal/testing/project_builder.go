package testing

import (
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/distbuilder/internal/config"
)

// ProjectBuilder provides a fluent interface for creating a working directory
// and the configuration that distributes it.
type ProjectBuilder struct {
	t      *testing.T
	dir    string
	config *config.Config
}

// NewProjectBuilder creates an empty project in a temporary directory. The
// configuration starts with no assets, files or targets, history disabled and
// a Linux platform.
func NewProjectBuilder(t *testing.T) *ProjectBuilder {
	t.Helper()
	cfg := config.Default()
	cfg.WorkDir = t.TempDir()
	cfg.Assets = nil
	cfg.Files = nil
	cfg.Targets = nil
	cfg.Platform = "linux"
	disabled := false
	cfg.History.Enabled = &disabled
	return &ProjectBuilder{t: t, dir: cfg.WorkDir, config: cfg}
}

// WithAsset creates an asset folder holding files (relative path -> content)
// and adds it to the configuration.
func (pb *ProjectBuilder) WithAsset(name string, files map[string]string) *ProjectBuilder {
	pb.t.Helper()
	if err := os.MkdirAll(filepath.Join(pb.dir, name), testDirPermissions); err != nil {
		pb.t.Fatalf("Failed to create asset folder %s: %v", name, err)
	}
	for rel, content := range files {
		pb.write(filepath.Join(name, rel), content)
	}
	pb.config.Assets = append(pb.config.Assets, name)
	return pb
}

// WithFile creates a loose file and adds it to the configuration.
func (pb *ProjectBuilder) WithFile(name, content string) *ProjectBuilder {
	pb.t.Helper()
	pb.write(name, content)
	pb.config.Files = append(pb.config.Files, name)
	return pb
}

// WithTarget adds a build target producing binary.
func (pb *ProjectBuilder) WithTarget(pkg, binary string) *ProjectBuilder {
	pb.config.Targets = append(pb.config.Targets, config.Target{Package: pkg, Binary: binary})
	return pb
}

// WithPlatform sets the platform used for executable suffixes.
func (pb *ProjectBuilder) WithPlatform(platform string) *ProjectBuilder {
	pb.config.Platform = platform
	return pb
}

// WithArchive switches the configuration to archive mode.
func (pb *ProjectBuilder) WithArchive(path string) *ProjectBuilder {
	pb.config.ArchivePath = path
	return pb
}

// Dir returns the working directory.
func (pb *ProjectBuilder) Dir() string {
	return pb.dir
}

// Build returns the configuration.
func (pb *ProjectBuilder) Build() *config.Config {
	return pb.config
}

func (pb *ProjectBuilder) write(rel, content string) {
	pb.t.Helper()
	path := filepath.Join(pb.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), testDirPermissions); err != nil {
		pb.t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), testFilePermissions); err != nil {
		pb.t.Fatalf("Failed to write %s: %v", rel, err)
	}
}
