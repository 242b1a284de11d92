package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/chase-predictor/internal/config"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/pipeline"
	"github.com/yourusername/chase-predictor/internal/predictor"
)

var (
	configFile string
	input      predictor.Input
	lenient    bool
	jsonOutput bool
	barWidth   int
	battingFor string
	appLogger  *logrus.Logger
	cfg        *config.Config
	pred       *predictor.Predictor
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	f := predictCmd.Flags()
	f.StringVar(&input.BattingTeam, "batting-team", "", "Chasing team")
	f.StringVar(&input.BowlingTeam, "bowling-team", "", "Defending team")
	f.StringVar(&input.Venue, "venue", "", "Match venue")
	f.StringVar(&input.Season, "season", "", "Season")
	f.IntVar(&input.RunsLeft, "runs-left", 0, "Runs still needed")
	f.IntVar(&input.BallsLeft, "balls-left", 0, "Balls remaining in the chase (1-120)")
	f.IntVar(&input.WicketsLeft, "wickets-left", 10, "Wickets in hand (0-10)")
	f.IntVar(&input.TotalRuns, "total-runs", 0, "Runs scored so far in the chase")
	f.BoolVar(&lenient, "lenient", false, "Accept values outside the catalog")
	f.BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	f.IntVar(&barWidth, "width", 40, "Width of the probability bars")
	for _, name := range []string{"batting-team", "bowling-team", "venue", "season", "runs-left", "balls-left"} {
		_ = predictCmd.MarkFlagRequired(name)
	}

	catalogCmd.Flags().StringVar(&battingFor, "batting-team", "", "List only the opponents of this team")

	rootCmd.AddCommand(predictCmd, catalogCmd)
}

var rootCmd = &cobra.Command{
	Use:   "predictor",
	Short: "Estimate the chasing side's win probability",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return loadPredictor()
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the outcome of a chase from its current state",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := pred.Predict(context.Background(), input)
		if err != nil {
			if errors.Is(err, predictor.ErrOutOfCatalog) {
				return fmt.Errorf("%w (use --lenient to predict anyway)", err)
			}
			return err
		}
		if err := result.UnknownError(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		return printResult(result)
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the values the predictor accepts",
	Run: func(cmd *cobra.Command, args []string) {
		choices := pred.Choices()
		bowling := choices.BowlingTeams
		if battingFor != "" {
			bowling = pred.BowlingChoices(battingFor)
		}

		printList("Batting teams", choices.BattingTeams)
		printList("Bowling teams", bowling)
		printList("Venues", choices.Venues)
		printList("Seasons", choices.Seasons)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return err
	}
	appLogger = logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()
	return nil
}

func loadPredictor() error {
	paths := pipeline.ArtifactPathsFromConfig(cfg)
	opts := predictor.Options{
		StrictCatalog: cfg.Predictor.StrictCatalog && !lenient,
		CacheTTL:      cfg.CacheTTL(),
		CacheMaxSize:  cfg.Predictor.CacheMaxSize,
	}

	var err error
	pred, err = predictor.Load(predictor.ArtifactPaths{
		Catalog: paths.Catalog,
		Encoder: paths.Encoder,
		Model:   paths.Model,
	}, opts, appLogger)
	if err != nil {
		return fmt.Errorf("failed to load model artifacts (run the trainer first): %w", err)
	}
	return nil
}

func printResult(r *predictor.Result) error {
	fmt.Printf("\n%s need %d off %d balls with %d wickets in hand\n",
		r.Input.BattingTeam, r.Input.RunsLeft, r.Input.BallsLeft, r.Input.WicketsLeft)
	fmt.Printf("Current run rate: %.2f  Required run rate: %.2f\n\n", r.RunRate, r.RequiredRunRate)

	if err := predictor.RenderBars(os.Stdout, r, barWidth); err != nil {
		return err
	}

	fmt.Printf("\nFair odds: %s %s, %s %s\n",
		r.Input.BattingTeam, r.WinOdds.StringFixed(2), r.Input.BowlingTeam, r.LoseOdds.StringFixed(2))
	if !r.SeenCombination {
		fmt.Println("Note: this team, venue and season combination never appeared in training")
	}
	return nil
}

func printList(title string, values []string) {
	fmt.Printf("%s (%d):\n", title, len(values))
	if len(values) > 0 {
		fmt.Printf("  %s\n", strings.Join(values, "\n  "))
	}
}
