package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planops/rosterd/api"
	"github.com/planops/rosterd/app"
	"github.com/planops/rosterd/config"
	"github.com/planops/rosterd/infra/logger"
	"github.com/planops/rosterd/infra/metrics"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the solve endpoint over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("serve")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}

	if cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusPort); err != nil {
				logg.Errorf("prom server: %v", err)
			}
		}()
	}

	return api.NewServer(svc, logg).Start(ctx, serveAddr)
}
