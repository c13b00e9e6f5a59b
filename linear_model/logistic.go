// Package linear_model provides the binary logistic regression used as
// the reference classifier for the cross-validation harness. Any model
// satisfying core/model.Classifier can take its place.
package linear_model

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/crossval/core/model"
	"github.com/YuminosukeSato/crossval/pkg/errors"
)

// LogisticRegression is a binary logistic-regression classifier fitted
// by full-batch gradient descent with L2 regularization. With a fixed
// seed, Fit is deterministic for the same data.
type LogisticRegression struct {
	model.BaseEstimator

	// Hyperparameters
	c            float64 // inverse regularization strength
	fitIntercept bool
	maxIter      int
	tol          float64
	seed         uint64

	// Fitted parameters
	coef      []float64
	intercept float64
	nFeatures int
	nIter     int
}

// LogisticRegressionOption is a functional option for LogisticRegression.
type LogisticRegressionOption func(*LogisticRegression)

// WithC sets the inverse regularization strength (default 1.0).
func WithC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.c = c }
}

// WithFitIntercept sets whether to fit an intercept term (default true).
func WithFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.fitIntercept = fit }
}

// WithMaxIter sets the maximum number of gradient-descent iterations
// (default 100).
func WithMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.maxIter = maxIter }
}

// WithTol sets the gradient-norm stopping tolerance (default 1e-4).
func WithTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.tol = tol }
}

// WithSeed sets the seed for weight initialization, making training
// reproducible.
func WithSeed(seed uint64) LogisticRegressionOption {
	return func(lr *LogisticRegression) { lr.seed = seed }
}

// NewLogisticRegression creates a LogisticRegression classifier.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		c:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
		seed:         1,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit trains the classifier on X (n_samples x n_features) and binary
// labels y (n_samples x 1, values 0 or 1).
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}
	for i := 0; i < nSamples; i++ {
		if v := y.At(i, 0); v != 0 && v != 1 {
			return errors.Wrapf(errors.ErrLabelNotBinary, "LogisticRegression.Fit: sample %d", i)
		}
	}

	lr.nFeatures = nFeatures
	lr.coef = make([]float64, nFeatures)
	lr.intercept = 0

	r := rand.New(rand.NewPCG(lr.seed, lr.seed))
	for j := range lr.coef {
		lr.coef[j] = r.NormFloat64() * 0.01
	}

	lambda := 1.0 / lr.c
	baseLearningRate := 1.0
	converged := false

	for iter := 0; iter < lr.maxIter; iter++ {
		gradWeights := make([]float64, nFeatures)
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := lr.intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * lr.coef[j]
			}
			residual := sigmoid(z) - y.At(i, 0)
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				gradWeights[j] += residual * X.At(i, j)
			}
		}

		for j := range gradWeights {
			gradWeights[j] = gradWeights[j]/float64(nSamples) + lambda*lr.coef[j]
		}
		gradIntercept /= float64(nSamples)

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range lr.coef {
			lr.coef[j] -= learningRate * gradWeights[j]
		}
		if lr.fitIntercept {
			lr.intercept -= learningRate * gradIntercept
		}

		lr.nIter = iter + 1

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.nIter))
	}

	lr.SetFitted()
	return nil
}

// Predict returns the n_samples x 1 matrix of 0/1 predicted labels.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "Predict")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.Predict", lr.nFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if lr.decision(X, i) >= 0 {
			predictions.Set(i, 0, 1)
		}
	}
	return predictions, nil
}

// PredictProba returns the n_samples x 2 matrix of class probabilities
// (column 0 for label 0, column 1 for label 1).
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.nFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		p := sigmoid(lr.decision(X, i))
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Coef returns a copy of the fitted coefficients.
func (lr *LogisticRegression) Coef() []float64 {
	return append([]float64(nil), lr.coef...)
}

// Intercept returns the fitted intercept term.
func (lr *LogisticRegression) Intercept() float64 {
	return lr.intercept
}

// NIter returns the number of gradient-descent iterations run by Fit.
func (lr *LogisticRegression) NIter() int {
	return lr.nIter
}

// GetParams returns the model hyperparameters.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":             lr.c,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
		"seed":          lr.seed,
	}
}

func (lr *LogisticRegression) decision(X mat.Matrix, i int) float64 {
	z := lr.intercept
	for j := 0; j < lr.nFeatures; j++ {
		z += X.At(i, j) * lr.coef[j]
	}
	return z
}

// sigmoid computes the logistic function.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
