// Package archive packages a staging directory into a distributable archive.
package archive

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/fsutil"
	"git.home.luguber.info/inful/distbuilder/internal/logfields"
	"git.home.luguber.info/inful/distbuilder/internal/util/sets"
)

// FormatZip is the only supported container format.
const FormatZip = "zip"

// SupportedFormats is the archive format allow-list, keyed by file extension.
var SupportedFormats = sets.New(FormatZip)

// FormatOf returns the archive format implied by destination's extension, or
// an UnsupportedArchiveFormat error when the extension is not allowed.
func FormatOf(destination string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(destination), "."))
	if !SupportedFormats.Has(ext) {
		return "", fe.UnsupportedArchiveFormat(destination, ext, SupportedFormats.Sorted())
	}
	return ext, nil
}

// Create writes the contents of srcDir into a zip archive at destination. The
// archive root is srcDir itself, so extracting it reproduces srcDir's top level
// without a wrapping folder.
//
// The archive is written to a temporary sibling and renamed into place, so a
// failed run never leaves a truncated archive at destination.
func Create(srcDir, destination string) error {
	if _, err := FormatOf(destination); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destination), fsutil.DefaultDirMode); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destination), "."+filepath.Base(destination)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary archive: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	entries, err := writeZip(tmp, srcDir)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmpName, destination); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}
	committed = true

	slog.Debug("Wrote archive", logfields.Path(destination), "entries", entries)
	return nil
}

// writeZip streams srcDir into w and returns the number of entries written.
func writeZip(w io.Writer, srcDir string) (int, error) {
	zw := zip.NewWriter(w)
	entries := 0

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if err := writeEntry(zw, path, filepath.ToSlash(rel), d); err != nil {
			return fmt.Errorf("add %s: %w", rel, err)
		}
		entries++
		return nil
	})
	if walkErr != nil {
		_ = zw.Close()
		return entries, walkErr
	}

	return entries, zw.Close()
}

// writeEntry adds a single file, directory or symlink to the archive.
func writeEntry(zw *zip.Writer, hostPath, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name

	switch {
	case info.IsDir():
		header.Name += "/"
		header.Method = zip.Store
		_, err = zw.CreateHeader(header)
		return err

	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(hostPath)
		if err != nil {
			return err
		}
		header.Method = zip.Store
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		_, err = io.WriteString(fw, target)
		return err

	default:
		header.Method = zip.Deflate
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(fw, f)
		return err
	}
}
