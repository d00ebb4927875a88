package workspace

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/distbuilder/internal/fsutil"
	"git.home.luguber.info/inful/distbuilder/internal/logfields"
)

// Staging is the exclusively owned work-in-progress output directory.
type Staging struct {
	dir    string
	active bool
}

// NewStaging returns a Staging for dir. Nothing is created until Begin.
func NewStaging(dir string) *Staging {
	return &Staging{dir: dir}
}

// Path returns the staging directory path.
func (s *Staging) Path() string {
	return s.dir
}

// Active reports whether Begin succeeded and the directory has not been consumed.
func (s *Staging) Active() bool {
	return s.active
}

// Begin deletes any leftover staging directory and creates it fresh.
func (s *Staging) Begin() error {
	if fsutil.Exists(s.dir) {
		slog.Info("Removing leftover staging directory", logfields.Path(s.dir))
	}
	if err := fsutil.EnsureCleanDir(s.dir); err != nil {
		return fmt.Errorf("recreate staging directory: %w", err)
	}
	s.active = true
	slog.Debug("Initialized staging directory", logfields.Path(s.dir))
	return nil
}

// Abort removes the staging directory after a failed run. It removes the path
// even if Begin was never called, so a stale directory from an earlier run
// does not survive a failure either.
func (s *Staging) Abort() error {
	s.active = false
	if err := fsutil.RemoveAll(s.dir); err != nil {
		return err
	}
	slog.Debug("Removed staging directory after abort", logfields.Path(s.dir))
	return nil
}

// Discard removes a staging directory whose contents have been consumed.
func (s *Staging) Discard() error {
	if err := s.requireActive(); err != nil {
		return err
	}
	if err := fsutil.RemoveAll(s.dir); err != nil {
		return err
	}
	s.active = false
	slog.Debug("Discarded staging directory", logfields.Path(s.dir))
	return nil
}

// Promote replaces target with the staging directory.
//
// Strategy:
//  1. Move an existing target aside to target.prev (removing an older .prev first).
//  2. Rename staging -> target, falling back to copy+delete across devices.
//  3. Remove target.prev. If step 2 failed, target.prev is moved back instead.
func (s *Staging) Promote(target string) error {
	if err := s.requireActive(); err != nil {
		return err
	}

	prev := target + ".prev"
	if err := fsutil.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove stale backup: %w", err)
	}

	hadPrevious := fsutil.Exists(target)
	if hadPrevious {
		if err := os.Rename(target, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
	}

	if err := fsutil.Move(s.dir, target); err != nil {
		if hadPrevious {
			if restoreErr := os.Rename(prev, target); restoreErr != nil {
				slog.Error("Failed to restore previous output", logfields.Path(target), logfields.Error(restoreErr))
			}
		}
		return fmt.Errorf("promote staging: %w", err)
	}
	s.active = false

	if hadPrevious {
		if err := fsutil.RemoveAll(prev); err != nil {
			slog.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
		}
	}

	slog.Info("Promoted staging directory", "output", target)
	return nil
}

func (s *Staging) requireActive() error {
	if !s.active {
		return fmt.Errorf("staging directory %s is not active", s.dir)
	}
	return nil
}
