package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deliverynote/internal/config"
	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output base path
	formats    []string // pdf, png, jpeg, json, xlsx, txt
	pixelRatio float64  // raster resolution multiplier
	quality    int      // JPEG quality
	width      int      // text preview width
	noCache    bool     // disable the logo and artifact cache
	refresh    bool     // ignore cached artifacts
}

// renderCommand creates the render command for producing note outputs.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{width: pipeline.DefaultTextWidth}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a delivery note to PDF, images, JSON, XLSX or text",
		Long: `Render a delivery note to one or more formats.

Each output is written to <base>.<ext>. The base defaults to the input path
without its extension, or Bon_Livraison_<number> for the default note.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("pixel-ratio") {
				opts.pixelRatio = cfg.PixelRatio
			}
			if !cmd.Flags().Changed("quality") {
				opts.quality = cfg.JPEGQuality
			}
			return c.runRender(cmd.Context(), cfg, fileArg(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", pipeline.FormatPDF, "output format(s): "+strings.Join(pipeline.FormatNames, ", ")+" (comma-separated)")
	cmd.Flags().Float64Var(&opts.pixelRatio, "pixel-ratio", pipeline.DefaultPixelRatio, "raster resolution multiplier (2 to 6)")
	cmd.Flags().IntVar(&opts.quality, "quality", pipeline.DefaultJPEGQuality, "JPEG quality (1 to 100)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "text preview width in columns")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cfg config.Config, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	n, err := loadNote(input)
	if err != nil {
		return err
	}
	if input == "" {
		logger.Info("Rendering the default note")
	} else {
		logger.Infof("Rendering %s", input)
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, n, pipeline.Options{
		Formats:     opts.formats,
		PixelRatio:  opts.pixelRatio,
		JPEGQuality: opts.quality,
		TextWidth:   opts.width,
		Refresh:     opts.refresh,
		Logger:      logger,
	})
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d output(s)", len(result.Artifacts)))

	base := basePath(opts.output, input, result.Note.Number)
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var written []string
	for _, format := range pipeline.FormatNames {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := base + pipeline.Extension(format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %s", result.Note.Number)
	printStats(result.Stats.ItemCount, len(written), result.RenderHit)
	for _, path := range written {
		printFile(path)
	}
	printTotals(result.Totals)
	return nil
}

// basePath derives the output base path. An explicit output keeps its
// directory and loses a known format extension; otherwise the input path
// without extension is used, or the export file name for the default note.
func basePath(output, input, number string) string {
	if output != "" {
		ext := filepath.Ext(output)
		format := strings.TrimPrefix(strings.ToLower(ext), ".")
		if format == "jpg" || pipeline.ValidFormats[format] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input != "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	name := export.Filename(number)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
