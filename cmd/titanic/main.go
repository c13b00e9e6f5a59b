// Command titanic runs the crossval evaluation harness against the
// Kaggle Titanic survival dataset: download the CSV cache, run
// stratified k-fold cross-validation with the built-in logistic
// regression, sweep its regularization strength, or drive a
// feature-selection search.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/crossval/core/model"
	"github.com/YuminosukeSato/crossval/dataset"
	"github.com/YuminosukeSato/crossval/linear_model"
	"github.com/YuminosukeSato/crossval/model_selection"
	"github.com/YuminosukeSato/crossval/pkg/log"
)

type config struct {
	DataDir  string `envconfig:"DATA_DIR" default:"data"`
	DataURL  string `envconfig:"DATA_URL"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
}

var (
	cfg config

	flagFolds    int
	flagSeed     uint64
	flagMetric   string
	flagC        float64
	flagMaxIter  int
	flagBoxPlot  string
	flagValues   string
	flagBackward bool
)

var rootCmd = &cobra.Command{
	Use:   "titanic",
	Short: "Cross-validation harness for the Titanic survival dataset",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := envconfig.Process("titanic", &cfg); err != nil {
			return err
		}
		if cfg.DataURL == "" {
			cfg.DataURL = dataset.DefaultURL
		}
		log.Setup(os.Stderr, cfg.LogLevel)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the dataset CSV into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := ensureData(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var cvCmd = &cobra.Command{
	Use:   "cv",
	Short: "Run stratified k-fold cross-validation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadData(cmd.Context())
		if err != nil {
			return err
		}

		result, err := model_selection.CrossValidate(cmd.Context(), ds.X, ds.Y, newClassifier,
			model_selection.WithShuffledSplits(flagFolds, flagSeed),
			model_selection.WithMetric(flagMetric),
		)
		if err != nil {
			return err
		}

		for _, fold := range result.Folds {
			fmt.Printf("fold %d: train %s = %v, test %s = %v\n",
				fold.Fold, flagMetric, fold.TrainScore, flagMetric, fold.TestScore)
		}
		fmt.Printf("mean test %s: %.4f (+/- %.4f)\n", flagMetric, result.MeanTestScore(), result.StdTestScore())

		if flagBoxPlot != "" {
			if err := result.SaveBoxPlot(flagBoxPlot); err != nil {
				return err
			}
			fmt.Printf("box plot written to %s\n", flagBoxPlot)
		}
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep the regularization strength C over a list of values",
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValues(flagValues)
		if err != nil {
			return err
		}

		ds, err := loadData(cmd.Context())
		if err != nil {
			return err
		}

		results, err := model_selection.ParamSweep(cmd.Context(), ds.X, ds.Y, values,
			func(c float64) model.Classifier {
				return linear_model.NewLogisticRegression(
					linear_model.WithC(c),
					linear_model.WithMaxIter(flagMaxIter),
					linear_model.WithSeed(flagSeed),
				)
			},
			model_selection.WithShuffledSplits(flagFolds, flagSeed),
			model_selection.WithMetric(flagMetric),
		)
		if err != nil {
			return err
		}

		for _, r := range results {
			fmt.Printf("C=%-10g mean %s = %.4f (+/- %.4f)\n", r.Value, flagMetric, r.MeanScore, r.StdScore)
		}
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run greedy feature selection over the dataset columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadData(cmd.Context())
		if err != nil {
			return err
		}

		search := model_selection.ForwardSelection
		action := "added"
		if flagBackward {
			search = model_selection.BackwardElimination
			action = "removed"
		}

		result, err := search(cmd.Context(), ds.X, ds.Y, ds.FeatureNames, newClassifier,
			model_selection.WithShuffledSplits(flagFolds, flagSeed),
			model_selection.WithMetric(flagMetric),
		)
		if err != nil {
			return err
		}

		for i, step := range result.Steps {
			fmt.Printf("step %2d: %s %-24s mean %s = %.4f\n", i+1, action, step.Feature, flagMetric, step.Score)
		}
		best, score := result.Best()
		fmt.Printf("best step: %d (%.4f)\n", best+1, score)
		return nil
	},
}

func newClassifier() model.Classifier {
	return linear_model.NewLogisticRegression(
		linear_model.WithC(flagC),
		linear_model.WithMaxIter(flagMaxIter),
		linear_model.WithSeed(flagSeed),
	)
}

func ensureData(ctx context.Context) (string, error) {
	path := filepath.Join(cfg.DataDir, "processed_data.csv")
	return dataset.Ensure(ctx, path, cfg.DataURL, http.DefaultClient)
}

func loadData(ctx context.Context) (*dataset.Dataset, error) {
	path, err := ensureData(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.Load(path)
}

func parseValues(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sweep value %q: %w", p, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func init() {
	for _, cmd := range []*cobra.Command{cvCmd, sweepCmd, selectCmd} {
		cmd.Flags().IntVar(&flagFolds, "folds", 5, "number of stratified folds")
		cmd.Flags().Uint64Var(&flagSeed, "seed", 42, "seed for fold shuffling and weight initialization")
		cmd.Flags().StringVar(&flagMetric, "metric", "accuracy", "metric to aggregate across folds")
		cmd.Flags().Float64Var(&flagC, "c", 1.0, "inverse regularization strength")
		cmd.Flags().IntVar(&flagMaxIter, "max-iter", 1000, "gradient descent iteration limit")
	}
	cvCmd.Flags().StringVar(&flagBoxPlot, "boxplot", "", "write a fold-score box plot to this file")
	sweepCmd.Flags().StringVar(&flagValues, "values", "0.001,0.01,0.1,1,10,100", "comma-separated C values")
	selectCmd.Flags().BoolVar(&flagBackward, "backward", false, "run backward elimination instead of forward selection")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(cvCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(selectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
