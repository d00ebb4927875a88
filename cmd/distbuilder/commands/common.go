package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/distbuilder/internal/config"
	fe "git.home.luguber.info/inful/distbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/distbuilder/internal/version"
)

// LogLevelEnv overrides the default log level when --verbose is absent.
const LogLevelEnv = "DISTBUILDER_LOG_LEVEL"

// Global carries process-wide state shared by subcommands.
type Global struct {
	Stdout    io.Writer
	LogOutput io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path (default: <workdir>/distbuilder.yaml, optional)"`
	Workdir     string           `short:"C" help:"Working directory holding assets and the toolchain project" default:"."`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	ShowVersion kong.VersionFlag `name:"version" help:"Show version and exit"`

	Dist    DistCmd    `cmd:"" default:"withargs" help:"Build all targets and assemble the distribution (default command)"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	History HistoryCmd `cmd:"" help:"Show recent distribution runs"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if env := strings.TrimSpace(os.Getenv(LogLevelEnv)); env != "" {
		if err := level.UnmarshalText([]byte(env)); err != nil {
			return fe.ValidationError(fmt.Sprintf("invalid %s %q", LogLevelEnv, env)).WithCause(err).Build()
		}
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	out := g.LogOutput
	if out == nil {
		out = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return nil
}

// workDir returns the absolute working directory.
func (c *CLI) workDir() (string, error) {
	dir, err := filepath.Abs(c.Workdir)
	if err != nil {
		return "", fe.ConfigError("invalid working directory").WithCause(err).Build()
	}
	return dir, nil
}

// configPath returns the configuration file and whether it must exist. An
// explicitly given file is required; the default one is optional.
func (c *CLI) configPath(workDir string) (string, bool) {
	if c.Config != "" {
		return c.Config, true
	}
	return filepath.Join(workDir, config.DefaultConfigFile), false
}

// loadConfig loads the configuration for the working directory.
func (c *CLI) loadConfig() (*config.Config, error) {
	workDir, err := c.workDir()
	if err != nil {
		return nil, err
	}
	path, required := c.configPath(workDir)
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}
	cfg.WorkDir = workDir
	return cfg, nil
}

// Execute parses args, runs the selected command and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli := &CLI{}
	g := &Global{Stdout: stdout, LogOutput: stderr}

	parser, err := kong.New(cli,
		kong.Name("distbuilder"),
		kong.Description("Build native targets and assemble them with assets into a distribution directory or zip archive."),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version.String()},
		kong.Bind(g),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return fe.ExitInternal
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return fe.ExitUsage
	}

	code := fe.ExitSuccess
	adapter := fe.NewCLIErrorAdapter(cli.Verbose, slog.Default()).
		WithOutput(stderr, func(c int) { code = c })
	adapter.HandleError(kctx.Run())
	return code
}
