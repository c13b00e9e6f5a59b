package model_selection

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/crossval/core/model"
	"github.com/YuminosukeSato/crossval/metrics"
	"github.com/YuminosukeSato/crossval/pkg/errors"
	"github.com/YuminosukeSato/crossval/pkg/log"
	"github.com/YuminosukeSato/crossval/preprocessing"
)

// ClassifierFactory constructs a fresh, unfitted classifier for one
// fold. A new instance per fold keeps folds independent.
type ClassifierFactory func() model.Classifier

// ScalerFactory constructs a fresh feature scaler for one fold. The
// harness fits it on the training fold only.
type ScalerFactory func() model.Transformer

// FoldResult holds the evaluation of a single fold: the full metric
// report on the training fold (the overfitting diagnostic) and on the
// held-out fold, plus the scalar score for the configured metric.
type FoldResult struct {
	Fold       int
	Train      metrics.Report
	Test       metrics.Report
	TrainScore metrics.Value
	TestScore  metrics.Value
}

// CVResult is the ordered sequence of per-fold results. Per-fold
// spread is part of the contract: with small datasets the fold-to-fold
// variance is itself a diagnostic, so individual scores stay exposed
// alongside the mean.
type CVResult struct {
	Metric string
	Folds  []FoldResult
}

// TestScores returns the defined held-out scores in fold order.
func (r *CVResult) TestScores() []float64 {
	return definedScores(r.Folds, func(f FoldResult) metrics.Value { return f.TestScore })
}

// TrainScores returns the defined training-fold scores in fold order.
func (r *CVResult) TrainScores() []float64 {
	return definedScores(r.Folds, func(f FoldResult) metrics.Value { return f.TrainScore })
}

// MeanTestScore returns the arithmetic mean of the defined held-out
// scores. Undefined fold scores are excluded from the mean; NaN is
// returned if every fold was undefined.
func (r *CVResult) MeanTestScore() float64 {
	return mean(r.TestScores())
}

// StdTestScore returns the sample standard deviation of the defined
// held-out scores.
func (r *CVResult) StdTestScore() float64 {
	scores := r.TestScores()
	if len(scores) <= 1 {
		return 0.0
	}
	m := mean(scores)
	sumSq := 0.0
	for _, s := range scores {
		diff := s - m
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(scores)-1))
}

func definedScores(folds []FoldResult, pick func(FoldResult) metrics.Value) []float64 {
	scores := make([]float64, 0, len(folds))
	for _, f := range folds {
		if v, ok := pick(f).Float64(); ok {
			scores = append(scores, v)
		}
	}
	return scores
}

func mean(scores []float64) float64 {
	if len(scores) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

type cvConfig struct {
	splitter  Splitter
	newScaler ScalerFactory
	metric    string
}

// CVOption configures CrossValidate.
type CVOption func(*cvConfig)

// WithSplitter replaces the default stratified 5-fold splitter.
func WithSplitter(s Splitter) CVOption {
	return func(c *cvConfig) { c.splitter = s }
}

// WithNSplits sets the fold count on the default stratified splitter.
func WithNSplits(k int) CVOption {
	return func(c *cvConfig) { c.splitter = NewStratifiedKFold(k, false, 0) }
}

// WithShuffledSplits sets a shuffled stratified splitter with the
// given fold count and seed.
func WithShuffledSplits(k int, seed uint64) CVOption {
	return func(c *cvConfig) { c.splitter = NewStratifiedKFold(k, true, seed) }
}

// WithScaler replaces the default StandardScaler factory. Pass nil to
// disable scaling entirely.
func WithScaler(f ScalerFactory) CVOption {
	return func(c *cvConfig) { c.newScaler = f }
}

// WithMetric selects which report entry becomes the per-fold scalar
// score. Defaults to accuracy.
func WithMetric(name string) CVOption {
	return func(c *cvConfig) { c.metric = name }
}

// CrossValidate runs the k-fold evaluation harness: for each fold it
// fits the scaler on the training slice only, transforms both slices,
// fits a fresh classifier, predicts on both slices, and scores the
// predictions with the metrics package. Folds run strictly
// sequentially; the first classifier error aborts the remaining folds.
// The context is checked between folds.
func CrossValidate(ctx context.Context, X mat.Matrix, y mat.Vector, newClassifier ClassifierFactory, opts ...CVOption) (*CVResult, error) {
	if X == nil || y == nil {
		return nil, errors.NewModelError("CrossValidate", "nil input", errors.ErrEmptyData)
	}
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return nil, errors.NewModelError("CrossValidate", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != nSamples {
		return nil, errors.NewDimensionError("CrossValidate", nSamples, y.Len(), 0)
	}
	if newClassifier == nil {
		return nil, errors.NewValueError("CrossValidate", "classifier factory is required")
	}

	cfg := cvConfig{
		splitter: NewStratifiedKFold(5, false, 0),
		newScaler: func() model.Transformer {
			return preprocessing.NewStandardScaler()
		},
		metric: metrics.Acc,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	folds, err := cfg.splitter.Split(X, y)
	if err != nil {
		return nil, err
	}

	logger := log.With("model_selection")
	logger.Debug().
		Int(log.SamplesKey, nSamples).
		Int(log.FeaturesKey, nFeatures).
		Int(log.NSplitsKey, len(folds)).
		Str(log.MetricKey, cfg.metric).
		Msg("cross-validation started")

	result := &CVResult{Metric: cfg.metric, Folds: make([]FoldResult, 0, len(folds))}

	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "cross-validation cancelled before fold %d", i)
		}

		foldResult, err := evaluateFold(X, y, fold, i, newClassifier, &cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", i)
		}

		logger.Debug().
			Int(log.FoldKey, i).
			Float64(log.TrainScoreKey, foldResult.TrainScore.Or(math.NaN())).
			Float64(log.TestScoreKey, foldResult.TestScore.Or(math.NaN())).
			Msg("fold evaluated")

		result.Folds = append(result.Folds, foldResult)
	}

	return result, nil
}

func evaluateFold(X mat.Matrix, y mat.Vector, fold CVFold, i int, newClassifier ClassifierFactory, cfg *cvConfig) (FoldResult, error) {
	trainX, trainY := subset(X, y, fold.TrainIndices)
	testX, testY := subset(X, y, fold.TestIndices)

	var scaledTrain, scaledTest mat.Matrix = trainX, testX
	if cfg.newScaler != nil {
		scaler := cfg.newScaler()
		if scaler != nil {
			// Train-fold statistics only; the held-out fold must not
			// influence the fitted transform.
			var err error
			scaledTrain, err = scaler.FitTransform(trainX)
			if err != nil {
				return FoldResult{}, err
			}
			scaledTest, err = scaler.Transform(testX)
			if err != nil {
				return FoldResult{}, err
			}
		}
	}

	clf := newClassifier()
	if err := clf.Fit(scaledTrain, columnVec(trainY)); err != nil {
		return FoldResult{}, errors.Wrap(err, "classifier fit failed")
	}

	trainReport, trainScore, err := scorePredictions(clf, scaledTrain, trainY, cfg.metric)
	if err != nil {
		return FoldResult{}, err
	}
	testReport, testScore, err := scorePredictions(clf, scaledTest, testY, cfg.metric)
	if err != nil {
		return FoldResult{}, err
	}

	return FoldResult{
		Fold:       i,
		Train:      trainReport,
		Test:       testReport,
		TrainScore: trainScore,
		TestScore:  testScore,
	}, nil
}

func scorePredictions(clf model.Classifier, X mat.Matrix, y *mat.VecDense, metric string) (metrics.Report, metrics.Value, error) {
	if metric == ROCAUCMetric {
		prob, ok := clf.(model.ProbabilityPredictor)
		if !ok {
			return nil, metrics.Undef(), errors.NewValidationError("metric", "roc_auc requires a classifier with PredictProba", metric)
		}
		proba, err := prob.PredictProba(X)
		if err != nil {
			return nil, metrics.Undef(), errors.Wrap(err, "classifier predict_proba failed")
		}
		_, cols := proba.Dims()
		auc, err := metrics.ROCAUC(y, matColumn(proba, cols-1))
		if err != nil {
			return nil, metrics.Undef(), err
		}
		return nil, metrics.Def(auc), nil
	}

	pred, err := clf.Predict(X)
	if err != nil {
		return nil, metrics.Undef(), errors.Wrap(err, "classifier predict failed")
	}
	report, err := metrics.ClassificationVec(y, matColumn(pred, 0))
	if err != nil {
		return nil, metrics.Undef(), err
	}
	score, ok := report[metric]
	if !ok {
		return nil, metrics.Undef(), errors.NewValidationError("metric", "unknown metric name", metric)
	}
	return report, score, nil
}

// ROCAUCMetric selects threshold-independent ROC-AUC scoring from
// predicted probabilities instead of a confusion-matrix report entry.
const ROCAUCMetric = "roc_auc"

// matColumn views column j of m as a vector.
func matColumn(m mat.Matrix, j int) mat.Vector {
	r, _ := m.Dims()
	col := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		col.SetVec(i, m.At(i, j))
	}
	return col
}

// columnVec views a vector as an n x 1 matrix for Fitter interfaces.
func columnVec(v *mat.VecDense) mat.Matrix {
	out := mat.NewDense(v.Len(), 1, nil)
	for i := 0; i < v.Len(); i++ {
		out.Set(i, 0, v.AtVec(i))
	}
	return out
}
