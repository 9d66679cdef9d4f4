package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/efaps/efql/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	EnvFile string

	// Model, DB, Dialect and Ambiguity override the loaded configuration
	// when set on the command line.
	Model     string
	DB        string
	Dialect   string
	Ambiguity string

	// Config is resolved before any subcommand runs.
	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the efql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "efql",
		Short: "efql - eFaps query compiler",
		Long: `Compile and run eFaps queries against an admin model.

Queries are YAML documents naming types, selection strings and where
terms. The admin model (types, attributes, tables, status groups) is read
from CUE files. Settings come from EFQL_* environment variables, a .env
file and the flags below, in increasing priority.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if err := opts.resolveConfig(); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load (default .env)")
	cmd.PersistentFlags().StringVarP(&opts.Model, "model", "m", "", "admin model directory or .cue file")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "database path or libsql URL")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "", "SQL dialect (sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&opts.Ambiguity, "ambiguity", "", "ambiguous attribute policy (first|error)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolveConfig loads the environment configuration and applies flag
// overrides.
func (o *RootOptions) resolveConfig() error {
	var envFiles []string
	if o.EnvFile != "" {
		envFiles = append(envFiles, o.EnvFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	if o.Model != "" {
		cfg.Model = o.Model
	}
	if o.DB != "" {
		cfg.DB = o.DB
	}
	if o.Dialect != "" {
		cfg.Dialect = o.Dialect
	}
	if o.Ambiguity != "" {
		cfg.Ambiguity = o.Ambiguity
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	o.Config = cfg
	return nil
}

// logger returns a stderr logger at the configured level.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level, err := o.Config.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
