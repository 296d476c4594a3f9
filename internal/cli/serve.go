package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/telcoscope/internal/logging"
	"github.com/ppiankov/telcoscope/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lookups over HTTP",
	Long: `Serve starts an HTTP server exposing:
  POST /api/search   {"query": "<operator>"} -> profile JSON
  GET  /healthz      liveness probe
  GET  /metrics      Prometheus metrics

Example:
  telcoscope serve --llm-provider openai
  telcoscope serve --addr 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.pipeline.Backend().IsAvailable(cmd.Context()) {
		logger().Warn("search backend is not reachable yet", zap.String("provider", a.pipeline.Backend().Name()))
	}

	if used := viper.ConfigFileUsed(); used != "" {
		v := viper.GetViper()
		v.OnConfigChange(func(e fsnotify.Event) { reloadLogLevel(v, e) })
		v.WatchConfig()
		logger().Debug("watching config file", zap.String("path", used))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Serving on %s (backend: %s)\n", cfg.Server.Addr, a.pipeline.Backend().Name())
	return server.New(a.pipeline, a.metrics, cfg.Server).ListenAndServe(ctx)
}

// reloadLogLevel applies logging.level from a rewritten config file; the rest of
// the configuration is fixed for the life of the server
func reloadLogLevel(v *viper.Viper, e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		logger().Warn("ignoring config change", zap.String("file", e.Name), zap.Error(err))
		return
	}
	if err := logging.SetLevel(cfg.Logging.Level); err != nil {
		logger().Warn("ignoring config change", zap.String("file", e.Name), zap.Error(err))
		return
	}
	logger().Info("log level reloaded", zap.String("level", cfg.Logging.Level))
}
