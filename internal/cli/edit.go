package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deliverynote/internal/config"
	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/logo"
	"github.com/matzehuels/deliverynote/pkg/shell"
)

// editOpts holds the command-line flags for the edit command.
type editOpts struct {
	dir     string // export directory
	noCache bool   // disable the logo cache
}

// editCommand creates the interactive form command.
func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a delivery note in an interactive form",
		Long: `Edit a delivery note in an interactive form with a live preview.

Edits live in memory until the form is closed; ctrl+s exports the PDF into
the output directory. The file itself is never written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dir") {
				opts.dir = cfg.OutputDir
			}
			return c.runEdit(cmd.Context(), cfg, fileArg(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", config.DefaultOutputDir, "export directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the logo cache")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, cfg config.Config, input string, opts editOpts) error {
	n, err := loadNote(input)
	if err != nil {
		return err
	}

	cc, err := c.openCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	// The form owns the terminal, so library logging is discarded.
	quiet := discardLogger()
	notifier, notices := noticeChannel()
	exporter := export.New(
		export.WithNotifier(notifier),
		export.WithLogger(quiet),
		export.WithPixelRatio(cfg.PixelRatio),
		export.WithJPEGQuality(cfg.JPEGQuality),
	)
	sh := shell.New(n,
		shell.WithLogoSource(logo.NewFetcher(logo.WithCache(cc, cfg.LogoTTL), logo.WithLogger(quiet))),
		shell.WithExporter(exporter),
		shell.WithLogger(quiet),
	)

	model := NewEditorModel(ctx, sh, export.FileSaver{Dir: opts.dir}, notices)
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	if m, ok := final.(EditorModel); ok && m.Exporting() {
		printWarning("Closed while an export was running; the PDF may be missing")
	}
	loggerFromContext(ctx).Debug("editor closed", "revision", sh.Revision())
	return nil
}

// noticeChannel returns a notifier that hands the export notice to the form.
// The exporter notifies before Export returns, so the form finds the notice
// when the export result arrives.
func noticeChannel() (export.Notifier, <-chan string) {
	ch := make(chan string, 1)
	return export.NotifierFunc(func(msg string) {
		select {
		case ch <- msg:
		default:
		}
	}), ch
}
