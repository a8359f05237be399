package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ltuala/student-management/internal/config"
	"github.com/ltuala/student-management/internal/roster"
	"github.com/ltuala/student-management/internal/store"
)

// RootOptions holds global flags for all commands and the state resolved
// from them before a command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // --db, overrides config and environment
	Driver     string // --driver
	ConfigFile string // --config

	// EnvFile overrides the .env path (for testing).
	EnvFile string

	// TraceIDs allows overriding the trace id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TraceIDs TraceIDGenerator

	cfg     *config.Config
	logger  *slog.Logger
	traceID string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the students CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Student records manager",
		Long: `Keep a roster of students (name, course, mobile) in a SQLite file.

Run "students shell" for the interactive list view, or use the one-shot
commands below. Create the table once with "students init".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config, STUDENTS_DB or database.db)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "SQLite driver (sqlite3|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to YAML config file")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// resolve validates flags, loads configuration and sets up logging.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(config.LoadOptions{ConfigFile: o.ConfigFile, EnvFile: o.EnvFile})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.DatabaseFile = o.Database
	}
	if o.Driver != "" {
		cfg.Driver = o.Driver
	}
	if !store.IsValidDriver(cfg.Driver) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid driver %q: must be one of %v", cfg.Driver, store.ValidDrivers))
	}
	o.cfg = cfg

	gen := o.TraceIDs
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	o.traceID = gen.Generate()

	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	o.logger = slog.New(handler).With("trace_id", o.traceID)
	o.logger.Debug("config resolved", "db", cfg.DatabaseFile, "driver", cfg.Driver)

	return nil
}

// Logger returns the invocation logger.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// TraceID returns the id of the current invocation.
func (o *RootOptions) TraceID() string {
	return o.traceID
}

// Connector returns the store connector for the resolved configuration.
func (o *RootOptions) Connector() *store.Connector {
	if o.cfg == nil {
		return store.NewConnector(o.Database, store.WithDriver(o.Driver))
	}
	return o.cfg.Connector()
}

// Records returns the record controller bound to the resolved store.
func (o *RootOptions) Records() *roster.Controller {
	return roster.NewController(o.Connector(), o.Logger())
}

// Formatter returns an output formatter writing to cmd's streams.
func (o *RootOptions) Formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		TraceID:   o.traceID,
	}
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
