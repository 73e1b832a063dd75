package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deliverynote/internal/config"
	"github.com/matzehuels/deliverynote/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the logo and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear cached logos and rendered outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return runCacheClear(cmd.Context(), cfg)
		},
	}
}

func runCacheClear(ctx context.Context, cfg config.Config) error {
	switch cfg.Cache {
	case config.CacheNone:
		printInfo("Caching is disabled")
		return nil
	case config.CacheRedis:
		printWarning("Redis entries expire on their own; clear them with your Redis tooling")
		printDetail("Keys: %s:*", appName)
		return nil
	}

	if _, err := os.Stat(cfg.CacheDir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	count, err := fc.Len()
	if err != nil {
		return err
	}
	if err := fc.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	loggerFromContext(ctx).Debug("cache cleared", "dir", cfg.CacheDir, "entries", count)

	printSuccess("Cleared %d cached entries", count)
	printDetail("Directory: %s", cfg.CacheDir)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(cfg.CacheDir)
			return nil
		},
	}
}
