// Package cmd implements the vdomtrace CLI commands.
//
// vdomtrace builds scope trees described by scenario files, tears them down,
// and prints or checks the recorded teardown steps. The root command resolves
// vdom.yaml once and hands the result to each subcommand (run, check, show,
// version).
package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/go-drift/vdom/cmd/vdomtrace/internal/config"
	"github.com/go-drift/vdom/pkg/core"
	"github.com/go-drift/vdom/pkg/errors"
	"github.com/go-drift/vdom/pkg/log"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// session is the state shared by the subcommands of one invocation.
type session struct {
	cfg      *config.Resolved
	colorize bool
}

func (s *session) domOptions() []core.Option {
	return []core.Option{
		core.WithElementCapacity(s.cfg.InitialElements),
		core.WithScopeCapacity(s.cfg.InitialScopes),
	}
}

// NewRootCommand returns the vdomtrace command tree.
func NewRootCommand() *cobra.Command {
	s := &session{}

	root := &cobra.Command{
		Use:   "vdomtrace",
		Short: "Replay and check virtual DOM teardown scenarios",
		Long: `vdomtrace mounts the scope trees described by scenario files, drops
them, and reports every teardown step in order: props severed, listeners
cleared, element identifiers reclaimed, hooks torn down, scopes removed.

Scenario files are YAML or TOML. Settings are read from vdom.yaml in the
project root, if present.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "project directory holding vdom.yaml (default: nearest parent with vdom.yaml or go.mod)")
	flags.String("color", "", "colorize output (auto|on|off)")
	flags.String("log-level", "", "log diagnostics at this level (debug|info|warn|error)")

	root.AddCommand(
		newRunCommand(s),
		newCheckCommand(s),
		newShowCommand(s),
		newVersionCommand(s),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (s *session) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()

	dir, _ := flags.GetString("config")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if dir, err = config.FindProjectRoot(wd); err != nil {
			return err
		}
	}

	cfg, err := config.Resolve(dir)
	if err != nil {
		return &errors.VdomError{Op: "config.Resolve", Kind: errors.KindConfig, Source: dir, Err: err}
	}

	if flags.Changed("color") {
		mode, _ := flags.GetString("color")
		if cfg.Color, err = config.ParseColor(mode); err != nil {
			return err
		}
	}

	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		if cfg.LogLevel, err = log.ParseLevel(level); err != nil {
			return err
		}
	}
	log.Init(log.Options{
		Enabled: true,
		Writer:  cmd.ErrOrStderr(),
		Level:   cfg.LogLevel,
		JSON:    cfg.LogJSON,
	})
	errors.SetHandler(&errors.LogHandler{Verbose: cfg.LogLevel <= slog.LevelDebug})

	s.cfg = cfg
	s.colorize = useColor(cfg.Color, cmd.OutOrStdout())
	log.Debug("config resolved", "root", cfg.Root, "project", cfg.Project, "color", s.colorize)
	return nil
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
