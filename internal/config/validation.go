package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/distbuilder/internal/archive"
	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/util/sets"
)

// Validate checks the configuration before any side effect happens. It is
// the fail-fast gate for the archive format: an unsupported extension is
// reported here, before the toolchain or the filesystem is touched.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return fe.ConfigError("working directory is not set").Build()
	}

	if c.ArchiveMode() {
		if _, err := archive.FormatOf(c.ArchivePath); err != nil {
			return err
		}
	}

	if len(c.Targets) == 0 {
		return fe.ConfigError("at least one build target is required").Build()
	}
	binaries := sets.New[string]()
	for i, t := range c.Targets {
		if strings.TrimSpace(t.Package) == "" {
			return fe.ConfigError(fmt.Sprintf("target %d has no package", i+1)).Build()
		}
		if !binaries.Add(c.BinaryName(t)) {
			return fe.ConfigError(fmt.Sprintf("duplicate binary name %q", c.BinaryName(t))).Build()
		}
	}

	for _, a := range c.Assets {
		if err := checkRelative("asset folder", a); err != nil {
			return err
		}
	}
	for _, f := range c.Files {
		if err := checkRelative("file", f); err != nil {
			return err
		}
	}

	if c.Toolchain.Command == "" || c.Toolchain.Profile == "" {
		return fe.ConfigError("toolchain command and profile are required").Build()
	}

	if err := c.validatePaths(); err != nil {
		return err
	}
	return c.validateRootEntries()
}

// validatePaths rejects layouts where one run directory contains another or
// an input, so that recreating staging or promoting it cannot destroy data
// the run still needs.
func (c *Config) validatePaths() error {
	workDir := filepath.Clean(c.WorkDir)
	staging, dist := c.StagingPath(), c.DistPath()
	if staging == dist {
		return fe.ConfigError("staging_dir and dist_dir must differ").
			WithContext("path", staging).
			Build()
	}
	if staging == workDir || dist == workDir {
		return fe.ConfigError("staging_dir and dist_dir must not be the working directory").Build()
	}
	if within(staging, dist) || within(dist, staging) {
		return fe.ConfigError("staging_dir and dist_dir must not be nested in each other").
			WithContext("staging", staging).
			WithContext("dist", dist).
			Build()
	}
	if within(c.ToolchainOutputPath(), staging) {
		return fe.ConfigError("toolchain output_dir must be outside the staging directory").
			WithContext("path", c.ToolchainOutputPath()).
			Build()
	}
	if c.ArchiveMode() && within(c.ArchiveDestination(), staging) {
		return fe.ConfigError("archive destination must be outside the staging directory").
			WithContext("path", c.ArchiveDestination()).
			Build()
	}

	for _, a := range c.Assets {
		asset := c.Resolve(a)
		if within(staging, asset) || within(dist, asset) {
			return fe.ConfigError(fmt.Sprintf("staging_dir and dist_dir must be outside asset folder %q", a)).Build()
		}
		if within(asset, staging) || within(asset, dist) {
			return fe.ConfigError(fmt.Sprintf("asset folder %q must be outside staging_dir and dist_dir", a)).Build()
		}
	}
	for _, f := range c.Files {
		file := c.Resolve(f)
		if within(file, staging) || within(file, dist) {
			return fe.ConfigError(fmt.Sprintf("file %q must be outside staging_dir and dist_dir", f)).Build()
		}
	}
	return nil
}

// validateRootEntries rejects configurations whose loose files, binaries and
// top-level asset folders would land on the same name in the staging root.
// Asset folders may share a parent (engine_assets/shaders, engine_assets/fonts).
func (c *Config) validateRootEntries() error {
	owners := make(map[string]string)
	claim := func(name, owner string) error {
		if prev, ok := owners[name]; ok {
			return fe.ConfigError(fmt.Sprintf("%s and %s both map to %q in the distribution root", prev, owner, name)).Build()
		}
		owners[name] = owner
		return nil
	}

	assetRoots := sets.New[string]()
	for _, a := range c.Assets {
		assetRoots.Add(strings.SplitN(filepath.ToSlash(filepath.Clean(a)), "/", 2)[0])
	}
	for _, name := range assetRoots.Sorted() {
		owners[name] = fmt.Sprintf("asset folder %q", name)
	}
	for _, f := range c.Files {
		if err := claim(filepath.Base(f), fmt.Sprintf("file %q", f)); err != nil {
			return err
		}
	}
	for _, t := range c.Targets {
		if err := claim(c.BinaryName(t), fmt.Sprintf("binary of target %q", t.Package)); err != nil {
			return err
		}
	}
	return nil
}

// checkRelative rejects empty, absolute and escaping entries so every copy
// stays inside the working and staging directories.
func checkRelative(kind, p string) error {
	clean := filepath.Clean(p)
	switch {
	case strings.TrimSpace(p) == "":
		return fe.ConfigError(fmt.Sprintf("empty %s entry", kind)).Build()
	case filepath.IsAbs(p):
		return fe.ConfigError(fmt.Sprintf("%s %q must be relative to the working directory", kind, p)).Build()
	case clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)):
		return fe.ConfigError(fmt.Sprintf("%s %q escapes the working directory", kind, p)).Build()
	}
	return nil
}

// within reports whether path is dir or below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
