// Package cli implements the deliverynote command-line interface.
//
// Commands create, render, export and edit delivery notes (Bon de
// Livraison). A note is read from a TOML or JSON file; commands that take an
// optional [file] argument fall back to the default document when it is
// omitted. The CLI is built using cobra and logs with charmbracelet/log.
//
// # Commands
//
//   - init: Write a new note with default values
//   - render: Produce PDF, PNG, JPEG, JSON, XLSX or text outputs
//   - export: Save the note as Bon_Livraison_<number>.pdf
//   - edit: Edit the note in an interactive form with a live preview
//   - serve: Serve the note over HTTP
//   - cache: Manage the logo and artifact cache
//
// # Configuration
//
// Settings come from flags, then DELIVERYNOTE_* environment variables, then
// a .env file in the working directory, then defaults. See
// internal/config for the variables.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deliverynote/internal/config"
	"github.com/matzehuels/deliverynote/pkg/buildinfo"
	"github.com/matzehuels/deliverynote/pkg/cache"
	"github.com/matzehuels/deliverynote/pkg/logo"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// dotenv lists the .env files read before the environment.
	dotenv []string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		dotenv: []string{".env"},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Deliverynote creates and exports delivery notes",
		Long:         `Deliverynote edits delivery notes (Bon de Livraison), previews them and exports them as a single-page PDF named after the note number.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(commandContext(cmd), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.initCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// =============================================================================
// Errors
// =============================================================================

// ReportedError wraps an error the command already showed to the user.
// main exits non-zero without printing it again.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *ReportedError
	return errors.As(err, &r)
}

// =============================================================================
// Configuration & Runner Factory
// =============================================================================

// loadConfig reads the .env files and the environment.
func (c *CLI) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(c.dotenv...); err != nil {
		return config.Config{}, err
	}
	return config.Load()
}

// openCache opens the configured cache, or a NullCache when noCache is set.
func (c *CLI) openCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		cfg.Cache = config.CacheNone
	}
	cc, err := cfg.OpenCache(ctx)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cache opened", "backend", cfg.Cache)
	return cc, nil
}

// newFetcher creates a logo fetcher backed by cc.
func (c *CLI) newFetcher(cc cache.Cache, cfg config.Config) *logo.Fetcher {
	return logo.NewFetcher(
		logo.WithCache(cc, cfg.LogoTTL),
		logo.WithLogger(c.Logger),
	)
}

// newRunner creates a pipeline runner for CLI use. Close the runner to
// release the cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, c.newFetcher(cc, cfg), c.Logger), nil
}

// =============================================================================
// Documents
// =============================================================================

// loadNote reads the note at path, or returns the default note when path is
// empty.
func loadNote(path string) (note.DeliveryNote, error) {
	if path == "" {
		return note.Default(time.Now()), nil
	}
	return note.ReadFile(path)
}

// fileArg returns the optional [file] argument.
func fileArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
