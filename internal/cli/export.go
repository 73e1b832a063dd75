package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deliverynote/internal/config"
	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/shell"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	dir     string // output directory
	noCache bool   // disable the logo cache
}

// exportCommand creates the export command that saves the PDF download.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a delivery note as Bon_Livraison_<number>.pdf",
		Long: `Export a delivery note as a single-page PDF.

The page is A4 wide and as tall as the rendered note. The file is named
Bon_Livraison_<number>.pdf and written to the output directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dir") {
				opts.dir = cfg.OutputDir
			}
			return c.runExport(cmd.Context(), cfg, fileArg(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", config.DefaultOutputDir, "output directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the logo cache")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, cfg config.Config, input string, opts exportOpts) error {
	logger := loggerFromContext(ctx)

	n, err := loadNote(input)
	if err != nil {
		return err
	}

	cc, err := c.openCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	var notice string
	exporter := export.New(
		export.WithNotifier(export.NotifierFunc(func(msg string) { notice = msg })),
		export.WithLogger(logger),
		export.WithPixelRatio(cfg.PixelRatio),
		export.WithJPEGQuality(cfg.JPEGQuality),
	)
	sh := shell.New(n,
		shell.WithLogoSource(c.newFetcher(cc, cfg)),
		shell.WithExporter(exporter),
		shell.WithLogger(logger),
	)

	spinner := newSpinner(ctx, "Génération...")
	spinner.Start()
	res, err := sh.Export(ctx, export.FileSaver{Dir: opts.dir})
	if err != nil {
		if notice == "" {
			spinner.Stop()
			return err
		}
		spinner.StopWithError(notice)
		return &ReportedError{Err: err}
	}

	spinner.StopWithSuccess("Exported " + res.Filename)
	printFile(export.FileSaver{Dir: opts.dir}.Path(res.Filename))
	if res.Fallback {
		printWarning("Capture size unreadable, page height set to A4")
	}
	printDetail("%.1f × %.1f mm · %d bytes", export.A4WidthMM, res.PageHeightMM, res.Size)
	return nil
}
