package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specialistvlad/resprobe/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag names shared by the commands.
const (
	flagConfig     = "config"
	flagModelsPath = "models-path"
	flagLogLevel   = "log-level"
	flagLogFormat  = "log-format"
	flagLogFile    = "log-file"
	flagDependency = "dependency"
	flagEntry      = "entry"
	flagStrict     = "strict"

	flagRun  = "run"
	flagList = "list"
	flagDeps = "deps"
)

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "Path to a YAML config file (default $"+config.EnvConfig+").")
	fs.StringP(flagModelsPath, "m", "", "Directory target modules are loaded from (default $"+config.EnvModelsPath+" or $"+config.EnvHBP+"/Models/brain_model).")
	fs.String(flagLogLevel, "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fs.String(flagLogFormat, "text", "Log output format. Options: 'text' or 'json'.")
	fs.String(flagLogFile, "", "Write diagnostics to this file instead of standard output.")
}

func addProbeFlags(fs *pflag.FlagSet) {
	fs.String(flagDependency, "", "Dependency whose entry point is recorded (default \"h5py\").")
	fs.String(flagEntry, "", "Entry point of the probed dependency (default \"File\").")
	fs.Bool(flagStrict, false, fmt.Sprintf("Exit with code %d when no resource path is found.", ExitNotFound))
}

func addActionFlags(fs *pflag.FlagSet) {
	fs.Bool(flagRun, false, "Execute MODULE for real, with every dependency resolved normally.")
	fs.Bool(flagList, false, "List the modules under the models path.")
	fs.Bool(flagDeps, false, "List the Go-native dependencies modules can import.")
}

func flagSet(fs *pflag.FlagSet, name string) bool {
	v, _ := fs.GetBool(name)
	return v
}

// applyFlags copies every flag the user set onto cfg. Flags win over the
// config file and the environment.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *pflag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case flagModelsPath:
			cfg.ModelsPath = v
		case flagLogLevel:
			cfg.Logging.Level = strings.ToLower(v)
		case flagLogFormat:
			cfg.Logging.Format = strings.ToLower(v)
		case flagLogFile:
			cfg.Logging.File = v
		case flagDependency:
			cfg.Probe.Dependency = v
		case flagEntry:
			cfg.Probe.Entry = v
		case flagStrict:
			cfg.Strict = v == "true"
		}
	})
}

// loadConfig builds the configuration for cmd: defaults, config file,
// environment, then flags. needModels relaxes validation for commands that
// never touch the models path.
func loadConfig(cmd *cobra.Command, needModels bool) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	applyFlags(cmd.Flags(), cfg)

	if !needModels && cfg.ModelsPath == "" {
		cfg.ModelsPath = "."
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return cfg, nil
}

// logWriter opens the diagnostics destination. The returned close function
// is always safe to call.
func logWriter(cfg *config.Config, fallback io.Writer) (io.Writer, func() error, error) {
	if cfg.Logging.File == "" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("opening log file: %v", err)}
	}
	return f, f.Close, nil
}
