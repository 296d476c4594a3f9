package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/telcoscope/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Maintain the cache of backend answers",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer closeCache(c)

		if err := c.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintln(os.Stderr, "✓ cache cleared")
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer closeCache(c)

		p, ok := c.(cache.Pruner)
		if !ok {
			fmt.Fprintln(os.Stderr, "this cache backend expires entries on its own")
			return nil
		}
		n, err := p.Prune(cmd.Context())
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ removed %d expired entries\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd, cachePruneCmd)
}

func openCache() (cache.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	// maintenance applies even when lookups run with the cache off
	cfg.Cache.Enabled = true

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, err
	}
	logger().Debug("cache opened", zap.String("backend", cfg.Cache.Backend), zap.String("dir", cfg.Cache.Dir))
	return c, nil
}

func closeCache(c cache.Cache) {
	if closer, ok := c.(io.Closer); ok {
		_ = closer.Close()
	}
}
