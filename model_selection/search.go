package model_selection

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/crossval/core/model"
	"github.com/YuminosukeSato/crossval/pkg/errors"
	"github.com/YuminosukeSato/crossval/pkg/log"
)

// SelectionStep records one iteration of a feature-selection search:
// the feature acted on and the mean held-out score of the resulting
// feature set.
type SelectionStep struct {
	Feature string
	Score   float64
}

// SelectionResult is the ordered sequence of steps taken by a search.
// The score path of the greedy searches is not guaranteed monotone; it
// may decline past a local optimum.
type SelectionResult struct {
	Steps []SelectionStep
}

// Features returns the feature names in step order.
func (r *SelectionResult) Features() []string {
	names := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		names[i] = s.Feature
	}
	return names
}

// Scores returns the mean held-out scores in step order.
func (r *SelectionResult) Scores() []float64 {
	scores := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		scores[i] = s.Score
	}
	return scores
}

// Best returns the step index and score of the highest-scoring step.
func (r *SelectionResult) Best() (int, float64) {
	best, bestScore := -1, 0.0
	for i, s := range r.Steps {
		if best == -1 || s.Score > bestScore {
			best, bestScore = i, s.Score
		}
	}
	return best, bestScore
}

// ForwardSelection greedily grows a feature set: at each step every
// not-yet-selected feature is evaluated by cross-validating on the
// selected set plus that candidate, and the best candidate (ties
// broken by feature order) is added. It runs until every feature has
// been added, recording the realized score at each step.
func ForwardSelection(ctx context.Context, X mat.Matrix, y mat.Vector, featureNames []string, newClassifier ClassifierFactory, opts ...CVOption) (*SelectionResult, error) {
	if err := validateFeatureNames(X, featureNames); err != nil {
		return nil, err
	}

	logger := log.With("model_selection")
	nFeatures := len(featureNames)
	selected := make([]int, 0, nFeatures)
	remaining := make([]int, nFeatures)
	for i := range remaining {
		remaining[i] = i
	}

	result := &SelectionResult{Steps: make([]SelectionStep, 0, nFeatures)}
	for len(remaining) > 0 {
		bestPos := -1
		bestScore := 0.0
		for pos, candidate := range remaining {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "forward selection cancelled")
			}
			trial := append(append([]int(nil), selected...), candidate)
			score, err := meanScoreFor(ctx, X, y, trial, newClassifier, opts)
			if err != nil {
				return nil, errors.Wrapf(err, "evaluating feature %q", featureNames[candidate])
			}
			// Strict > keeps the earliest candidate on ties.
			if bestPos == -1 || score > bestScore {
				bestPos, bestScore = pos, score
			}
		}

		chosen := remaining[bestPos]
		selected = append(selected, chosen)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
		result.Steps = append(result.Steps, SelectionStep{Feature: featureNames[chosen], Score: bestScore})

		logger.Debug().
			Str("feature", featureNames[chosen]).
			Float64(log.TestScoreKey, bestScore).
			Int("selected", len(selected)).
			Msg("forward selection step")
	}

	return result, nil
}

// BackwardElimination starts from the full feature set and repeatedly
// removes the feature whose removal costs the least mean held-out
// score, until a single feature remains. Each step records the removed
// feature and the score of the set that remains after removal.
func BackwardElimination(ctx context.Context, X mat.Matrix, y mat.Vector, featureNames []string, newClassifier ClassifierFactory, opts ...CVOption) (*SelectionResult, error) {
	if err := validateFeatureNames(X, featureNames); err != nil {
		return nil, err
	}

	logger := log.With("model_selection")
	remaining := make([]int, len(featureNames))
	for i := range remaining {
		remaining[i] = i
	}

	result := &SelectionResult{Steps: make([]SelectionStep, 0, len(featureNames)-1)}
	for len(remaining) > 1 {
		bestPos := -1
		bestScore := 0.0
		for pos := range remaining {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "backward elimination cancelled")
			}
			trial := make([]int, 0, len(remaining)-1)
			trial = append(trial, remaining[:pos]...)
			trial = append(trial, remaining[pos+1:]...)
			score, err := meanScoreFor(ctx, X, y, trial, newClassifier, opts)
			if err != nil {
				return nil, errors.Wrapf(err, "evaluating removal of feature %q", featureNames[remaining[pos]])
			}
			if bestPos == -1 || score > bestScore {
				bestPos, bestScore = pos, score
			}
		}

		removed := remaining[bestPos]
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
		result.Steps = append(result.Steps, SelectionStep{Feature: featureNames[removed], Score: bestScore})

		logger.Debug().
			Str("feature", featureNames[removed]).
			Float64(log.TestScoreKey, bestScore).
			Int("remaining", len(remaining)).
			Msg("backward elimination step")
	}

	return result, nil
}

// SweepResult records the harness aggregate for one swept value.
type SweepResult struct {
	Value      float64
	MeanScore  float64
	StdScore   float64
	TestScores []float64
}

// ParamSweep cross-validates a classifier at each value of a
// caller-supplied scalar list, e.g. a regularization constant. Every
// value is evaluated and reported; there is no elimination.
func ParamSweep(ctx context.Context, X mat.Matrix, y mat.Vector, values []float64, newClassifier func(value float64) model.Classifier, opts ...CVOption) ([]SweepResult, error) {
	if len(values) == 0 {
		return nil, errors.NewValueError("ParamSweep", "no sweep values supplied")
	}
	if newClassifier == nil {
		return nil, errors.NewValueError("ParamSweep", "classifier factory is required")
	}

	results := make([]SweepResult, 0, len(values))
	for _, value := range values {
		value := value
		cv, err := CrossValidate(ctx, X, y, func() model.Classifier { return newClassifier(value) }, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "sweep value %g", value)
		}
		results = append(results, SweepResult{
			Value:      value,
			MeanScore:  cv.MeanTestScore(),
			StdScore:   cv.StdTestScore(),
			TestScores: cv.TestScores(),
		})
	}

	return results, nil
}

func validateFeatureNames(X mat.Matrix, featureNames []string) error {
	if X == nil {
		return errors.NewModelError("selection", "nil input", errors.ErrEmptyData)
	}
	_, cols := X.Dims()
	if len(featureNames) != cols {
		return errors.NewDimensionError("selection", cols, len(featureNames), 1)
	}
	if cols == 0 {
		return errors.NewModelError("selection", "no features", errors.ErrEmptyData)
	}
	return nil
}

// meanScoreFor cross-validates on the given column subset of X.
func meanScoreFor(ctx context.Context, X mat.Matrix, y mat.Vector, cols []int, newClassifier ClassifierFactory, opts []CVOption) (float64, error) {
	sub := takeColumns(X, cols)
	cv, err := CrossValidate(ctx, sub, y, newClassifier, opts...)
	if err != nil {
		return 0, err
	}
	return cv.MeanTestScore(), nil
}

// takeColumns copies the given columns of X, in order, into a new matrix.
func takeColumns(X mat.Matrix, cols []int) *mat.Dense {
	rows, _ := X.Dims()
	out := mat.NewDense(rows, len(cols), nil)
	for j, col := range cols {
		for i := 0; i < rows; i++ {
			out.Set(i, j, X.At(i, col))
		}
	}
	return out
}
