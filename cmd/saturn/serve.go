package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/audit/retention"
	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/enrichment"
	"mercator-hq/saturn/pkg/policy"
	"mercator-hq/saturn/pkg/telemetry/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the decision engine daemon",
	Long: `Run the decision engine with its background services: the rules
file watcher, the cache sweeper, audit retention pruning, and the
Prometheus metrics endpoint. The daemon runs until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	logger := slog.Default().With("component", "serve")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cache sweeper.
	if cfg.Enrichment.SweepSchedule != "" {
		sweeper := enrichment.NewSweeper(rt.cache, cfg.Enrichment.SweepSchedule)
		if err := sweeper.Start(ctx); err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	// Audit retention.
	if rt.storage != nil && cfg.Audit.PruneSchedule != "" {
		pruner := retention.NewPruner(rt.storage, retention.Policy{MaxAge: cfg.Audit.RetentionMaxAge})
		scheduler := retention.NewScheduler(pruner, cfg.Audit.PruneSchedule)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	// Rules hot reload.
	if rt.source != nil && cfg.Policy.WatchRules {
		watcher, err := policy.NewFileWatcher(cfg.Policy.RulesFile, cfg.Policy.DebounceInterval, nil)
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Watch(ctx, rt.source.Reload); err != nil {
				logger.Error("rules watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	// Metrics endpoint.
	var metricsSrv *http.Server
	if cfg.Telemetry.MetricsEnabled {
		collector := metrics.NewCollector(nil)
		collector.Cache.Watch(rt.cache)
		collector.Enrichment.Watch(rt.tracker)
		rt.composer.SetMetrics(collector.Decisions)

		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		metricsSrv = &http.Server{
			Addr:              cfg.Telemetry.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics endpoint listening", "address", cfg.Telemetry.MetricsAddress)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	logger.Info("saturn started",
		"rules_file", cfg.Policy.RulesFile,
		"orggraph", cfg.OrgGraph.BaseURL != "",
		"audit", cfg.Audit.Enabled,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
	}
	return nil
}
