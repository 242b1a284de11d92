package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/chase-predictor/internal/config"
	"github.com/yourusername/chase-predictor/internal/datasource"
	"github.com/yourusername/chase-predictor/internal/health"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/pipeline"
	"github.com/yourusername/chase-predictor/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile     string
	matchesFlag    string
	deliveriesFlag string
	runNow         bool
	appLogger      *logrus.Logger
	cfg            *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&matchesFlag, "matches", "", "Override the matches table location")
	rootCmd.PersistentFlags().StringVar(&deliveriesFlag, "deliveries", "", "Override the deliveries table location")
	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "Run the pipeline once before waiting for the first tick")

	rootCmd.AddCommand(runCmd, featuresCmd, scheduleCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: "Build chase features and train the win probability model",
	Long: `Replays second-innings deliveries into a per-ball feature table,
records the allowed-values catalog and fits the win probability classifier.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		return setup()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run feature engineering and model training",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, factory := newPipeline()
		defer factory.Close()

		manifest, err := p.Run(ctx)
		if err != nil {
			return err
		}
		printManifest(manifest)
		return nil
	},
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Build the feature table and catalog without training",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, factory := newPipeline()
		defer factory.Close()

		manifest, err := p.BuildFeatures(ctx)
		if err != nil {
			return err
		}
		printManifest(manifest)
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Retrain on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Schedule.Retrain == "" {
			return fmt.Errorf("schedule.retrain is not set")
		}
		return runSchedule()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trainer %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if matchesFlag != "" {
		cfg.Data.Matches = matchesFlag
	}
	if deliveriesFlag != "" {
		cfg.Data.Deliveries = deliveriesFlag
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return err
	}

	appLogger = logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	appLogger.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
	}).Debug("Configuration loaded")
	return nil
}

func newPipeline() (*pipeline.Pipeline, *datasource.Factory) {
	factory := datasource.NewFactory(cfg.HTTPClient(), appLogger)
	reader := datasource.NewTableReader(factory)
	return pipeline.New(reader, pipeline.OptionsFromConfig(cfg), appLogger), factory
}

func runSchedule() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, factory := newPipeline()
	defer factory.Close()

	paths := pipeline.ArtifactPathsFromConfig(cfg)
	healthCfg := health.Config{
		ServiceName: cfg.App.Name + "-trainer",
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Schedule.HealthPort,
		Logger:      appLogger,
		Checks: map[string]health.Checker{
			"artifacts": health.FilesCheck{paths.Catalog, paths.Encoder, paths.Model},
		},
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port > 0 {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			metricsServer = &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					appLogger.WithError(err).Error("Metrics server error")
				}
			}()
		} else {
			healthCfg.Metrics = metrics.Handler()
		}
	}

	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	sched := scheduler.NewScheduler(p, appLogger)
	sched.OnSuccess(func(m *pipeline.Manifest) {
		healthServer.MarkRun(health.RunInfo{RunID: m.RunID, ModelVersion: m.ModelVersion, FinishedAt: m.FinishedAt})
	})
	if err := sched.ScheduleRetrain(cfg.Schedule.Retrain); err != nil {
		return err
	}
	if runNow {
		// a failed first run leaves the service not ready until a later tick succeeds
		_ = sched.RunOnce(ctx)
	}
	if err := sched.Start(); err != nil {
		return err
	}
	appLogger.WithField("next_run", sched.GetNextRun().Format(time.RFC3339)).Info("Waiting for scheduled retraining")

	<-ctx.Done()
	appLogger.Info("Shutdown signal received")

	if err := sched.Stop(); err != nil {
		appLogger.WithError(err).Warn("Scheduler did not stop cleanly")
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	return healthServer.Shutdown()
}

func printManifest(m *pipeline.Manifest) {
	fmt.Printf("Run %s (%s)\n", m.RunID, m.Mode)
	fmt.Printf("  Matches:          %d (%d eligible)\n", m.Counts.Matches, m.Counts.EligibleMatches)
	fmt.Printf("  Chase deliveries: %d of %d\n", m.Counts.ChaseDeliveries, m.Counts.Deliveries)
	fmt.Printf("  Feature rows:     %d\n", m.Counts.FeatureRows)
	fmt.Printf("  Catalog tuples:   %d\n", m.Counts.CatalogTuples)
	if m.Holdout != nil {
		fmt.Printf("  Model version:    %s\n", m.ModelVersion)
		fmt.Printf("  Train/test rows:  %d/%d\n", m.Counts.TrainRows, m.Counts.TestRows)
		fmt.Printf("  Holdout accuracy: %.4f\n", m.Holdout.Accuracy)
		fmt.Printf("  Holdout log-loss: %.4f\n", m.Holdout.LogLoss)
	}
	fmt.Printf("  Manifest:         %s\n", m.Artifacts.Manifest)
}
