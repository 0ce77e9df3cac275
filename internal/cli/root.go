package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/resprobe/internal/app"
	"github.com/specialistvlad/resprobe/internal/config"
	"github.com/specialistvlad/resprobe/internal/probe"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/spf13/cobra"
)

// Version is reported by the version command.
var Version = "0.1.0-dev"

// Streams are the process outputs. Module output and diagnostics go to
// Stdout unless a log file is configured; the probe result goes to Stderr.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs the command line args and returns an *ExitError for any
// outcome that should change the process exit code.
func Execute(ctx context.Context, streams Streams, args []string, modules ...registry.Module) error {
	root := NewRootCmd(streams, modules...)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything cobra reports itself is a usage problem.
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// NewRootCmd builds the resprobe command. modules replace the core modules
// when given.
//
// The single positional argument is always a module name, so the other
// actions are flags rather than subcommands: a module may be called "list"
// or "run".
func NewRootCmd(streams Streams, modules ...registry.Module) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resprobe [flags] MODULE",
		Short: "Discover the resource file a model module would open",
		Long: `resprobe loads a model module with every dependency intercepted and
reports the file name the module passes to the probed entry point
(h5py::File by default) without opening it.

The basename is written to standard error with no trailing newline.
Module output and diagnostics go to standard output.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			switch {
			case flagSet(flags, flagList):
				return runList(cmd, streams, args, modules)
			case flagSet(flags, flagDeps):
				return runDeps(cmd, streams, args, modules)
			case flagSet(flags, flagRun):
				if len(args) == 0 {
					return &ExitError{Code: ExitUsage, Message: fmt.Sprintf("--%s needs a module", flagRun)}
				}
				return runModule(cmd, streams, args[0], modules)
			case len(args) == 0:
				return cmd.Help()
			default:
				return runProbe(cmd, streams, args[0], modules)
			}
		},
	}
	rootCmd.SetOut(streams.Stdout)
	rootCmd.SetErr(streams.Stderr)
	rootCmd.SetVersionTemplate("resprobe version {{.Version}}\n")

	addGlobalFlags(rootCmd.PersistentFlags())
	addProbeFlags(rootCmd.Flags())
	addActionFlags(rootCmd.Flags())
	rootCmd.MarkFlagsMutuallyExclusive(flagRun, flagList, flagDeps)
	return rootCmd
}

// withApp loads the configuration, opens the log destination and builds an
// App for the duration of fn.
func withApp(cmd *cobra.Command, streams Streams, needModels bool, modules []registry.Module, fn func(*app.App, *config.Config) error) error {
	cfg, err := loadConfig(cmd, needModels)
	if err != nil {
		return err
	}
	logW, closeLog, err := logWriter(cfg, streams.Stdout)
	if err != nil {
		return err
	}
	defer closeLog()

	a := app.NewApp(app.Streams{Stdout: streams.Stdout, Result: streams.Stderr, Log: logW}, cfg, modules...)
	return fn(a, cfg)
}

func runProbe(cmd *cobra.Command, streams Streams, target string, modules []registry.Module) error {
	return withApp(cmd, streams, true, modules, func(a *app.App, cfg *config.Config) error {
		_, err := a.Probe(cmd.Context(), target)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, probe.ErrResourceNotFound):
			if cfg.Strict {
				return &ExitError{Code: ExitNotFound, Message: err.Error()}
			}
			return nil
		default:
			return &ExitError{Code: ExitFailure, Message: err.Error()}
		}
	})
}

func runModule(cmd *cobra.Command, streams Streams, name string, modules []registry.Module) error {
	return withApp(cmd, streams, true, modules, func(a *app.App, _ *config.Config) error {
		if err := a.RunModule(cmd.Context(), name); err != nil {
			return &ExitError{Code: ExitFailure, Message: err.Error()}
		}
		return nil
	})
}

func runList(cmd *cobra.Command, streams Streams, args []string, modules []registry.Module) error {
	if len(args) > 0 {
		return &ExitError{Code: ExitUsage, Message: fmt.Sprintf("--%s takes no module, got %q", flagList, args[0])}
	}
	return withApp(cmd, streams, true, modules, func(a *app.App, _ *config.Config) error {
		names, err := a.ListModules()
		if err != nil {
			return &ExitError{Code: ExitFailure, Message: err.Error()}
		}
		for _, name := range names {
			fmt.Fprintln(streams.Stdout, name)
		}
		return nil
	})
}

func runDeps(cmd *cobra.Command, streams Streams, args []string, modules []registry.Module) error {
	if len(args) > 0 {
		return &ExitError{Code: ExitUsage, Message: fmt.Sprintf("--%s takes no module, got %q", flagDeps, args[0])}
	}
	return withApp(cmd, streams, false, modules, func(a *app.App, _ *config.Config) error {
		for _, dep := range a.Dependencies() {
			fmt.Fprintf(streams.Stdout, "%-10s %s\n", dep.Name, dep.Description)
		}
		return nil
	})
}
