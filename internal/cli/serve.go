package cli

import (
	"context"
	"net"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deliverynote/internal/config"
	"github.com/matzehuels/deliverynote/internal/server"
	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/pipeline"
	"github.com/matzehuels/deliverynote/pkg/shell"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the serve command that exposes the note over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a delivery note over HTTP",
		Long: `Serve a delivery note over HTTP.

The server edits one note in memory. Routes live under /api/note; POST
/api/note/export returns the PDF download.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				opts.addr = cfg.Addr
			}
			return c.runServe(cmd.Context(), cfg, fileArg(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, input string, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	n, err := loadNote(input)
	if err != nil {
		return err
	}

	cc, err := c.openCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	logos := c.newFetcher(cc, cfg)
	runner := pipeline.NewRunner(cc, logos, logger)
	defer runner.Close()

	exporter := export.New(
		export.WithNotifier(export.NotifierFunc(func(msg string) { logger.Warn(msg) })),
		export.WithLogger(logger),
		export.WithPixelRatio(cfg.PixelRatio),
		export.WithJPEGQuality(cfg.JPEGQuality),
	)
	sh := shell.New(n,
		shell.WithLogoSource(logos),
		shell.WithExporter(exporter),
		shell.WithLogger(logger),
	)

	printInfo("Serving %s on %s", n.Number, StyleHighlight.Render(opts.addr))
	printNextStep("Export", "curl -X POST -OJ http://localhost"+listenPort(opts.addr)+"/api/note/export")
	return server.New(sh, runner, logger).ListenAndServe(ctx, opts.addr)
}

// listenPort returns the ":port" part of a listen address.
func listenPort(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	return ":" + port
}
