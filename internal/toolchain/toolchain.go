// Package toolchain invokes the external build tool that compiles targets.
//
// The tool is opaque: it is started with a profile selector and a target
// selector, and its exit status is the only success signal consulted.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/distbuilder/internal/logfields"
)

var (
	// ErrToolchainNotFound indicates the toolchain executable was not found on PATH.
	ErrToolchainNotFound = errors.New("toolchain binary not found")
	// ErrToolchainFailed indicates the toolchain returned a non-zero exit status.
	ErrToolchainFailed = errors.New("toolchain execution failed")
)

// Toolchain compiles build targets and manages the tool's own cache.
type Toolchain interface {
	// Build compiles a single target for the configured profile.
	Build(ctx context.Context, target string) error
	// Clean removes the tool's cached output for the configured profile.
	Clean(ctx context.Context) error
}

// CommandToolchain runs a cargo-compatible command line:
//
//	<command> build --profile=<profile> -p <target>
//	<command> clean --profile=<profile>
type CommandToolchain struct {
	Command string
	Profile string
	Dir     string
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewCommandToolchain returns a toolchain running command in dir, streaming its
// output to the process stdout and stderr.
func NewCommandToolchain(command, profile, dir string) *CommandToolchain {
	return &CommandToolchain{
		Command: command,
		Profile: profile,
		Dir:     dir,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// BuildArgs returns the arguments passed to the toolchain for target.
func (t *CommandToolchain) BuildArgs(target string) []string {
	return []string{"build", "--profile=" + t.Profile, "-p", target}
}

// CleanArgs returns the arguments passed to the toolchain for a cache clean.
func (t *CommandToolchain) CleanArgs() []string {
	return []string{"clean", "--profile=" + t.Profile}
}

func (t *CommandToolchain) Build(ctx context.Context, target string) error {
	return t.run(ctx, t.BuildArgs(target))
}

func (t *CommandToolchain) Clean(ctx context.Context) error {
	return t.run(ctx, t.CleanArgs())
}

func (t *CommandToolchain) run(ctx context.Context, args []string) error {
	path, err := exec.LookPath(t.commandPath())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrToolchainNotFound, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = t.Dir
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr

	slog.Debug("Invoking toolchain", "command", t.Command, "args", strings.Join(args, " "), logfields.Path(t.Dir))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s %s: exit status %d", ErrToolchainFailed, t.Command, strings.Join(args, " "), exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %w", ErrToolchainFailed, err)
	}
	return nil
}

// commandPath resolves a command given as a relative path, such as
// ./build.sh, against Dir. Bare names are left for the PATH lookup.
func (t *CommandToolchain) commandPath() string {
	if filepath.IsAbs(t.Command) || !strings.ContainsRune(filepath.ToSlash(t.Command), '/') {
		return t.Command
	}
	path := filepath.Join(t.Dir, t.Command)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
