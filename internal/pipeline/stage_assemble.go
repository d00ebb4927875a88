package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/fsutil"
	"git.home.luguber.info/inful/distbuilder/internal/logfields"
	"git.home.luguber.info/inful/distbuilder/internal/workspace"
)

// assemble recreates the staging directory and fills it with asset folders,
// loose files and built binaries, in that order.
func (r *Runner) assemble(ctx context.Context, log *slog.Logger, staging *workspace.Staging) error {
	if err := staging.Begin(); err != nil {
		return fe.FileSystemError("failed to prepare staging directory").
			WithCause(err).
			WithContext("path", staging.Path()).
			Build()
	}
	root := staging.Path()

	for _, asset := range r.cfg.Assets {
		if err := ctx.Err(); err != nil {
			return canceled(err)
		}
		if err := copyAsset(r.cfg.Resolve(asset), filepath.Join(root, asset), asset); err != nil {
			return err
		}
		log.Debug("Copied asset folder", logfields.Path(asset))
	}

	for _, file := range r.cfg.Files {
		if err := copyLooseFile(r.cfg.Resolve(file), filepath.Join(root, filepath.Base(file)), file); err != nil {
			return err
		}
		log.Debug("Copied file", logfields.Path(file))
	}

	outDir := r.cfg.ToolchainOutputPath()
	for _, t := range r.cfg.Targets {
		name := r.cfg.BinaryName(t)
		src := filepath.Join(outDir, name)
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			if err == nil {
				err = fmt.Errorf("%s is a directory", src)
			}
			return fe.ArtifactMissing(t.Package, src, err)
		}
		if err := fsutil.CopyFile(src, filepath.Join(root, name)); err != nil {
			return fe.FileSystemError(fmt.Sprintf("failed to copy binary %s", name)).
				WithCause(err).
				WithContext("target", t.Package).
				WithContext("path", src).
				Build()
		}
		log.Debug("Copied binary", logfields.Target(t.Package), logfields.Binary(name))
	}

	log.Info("Assembled staging directory", logfields.Path(root),
		"assets", len(r.cfg.Assets),
		"files", len(r.cfg.Files),
		"binaries", len(r.cfg.Targets))
	return nil
}

func copyAsset(src, dst, name string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fe.AssetMissing(name, err)
	}
	if !info.IsDir() {
		return fe.AssetMissing(name, fmt.Errorf("%s is not a directory", src))
	}
	if err := fsutil.CopyDir(src, dst); err != nil {
		return fe.FileSystemError(fmt.Sprintf("failed to copy asset folder %s", name)).
			WithCause(err).
			WithContext("path", src).
			Build()
	}
	return nil
}

func copyLooseFile(src, dst, name string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fe.FileMissing(name, err)
	}
	if info.IsDir() {
		return fe.FileMissing(name, fmt.Errorf("%s is a directory", src))
	}
	if err := fsutil.CopyFile(src, dst); err != nil {
		return fe.FileSystemError(fmt.Sprintf("failed to copy file %s", name)).
			WithCause(err).
			WithContext("path", src).
			Build()
	}
	return nil
}
