// Package model provides the estimator interfaces and base types that
// the rest of the library is written against. The cross-validation
// harness is polymorphic over anything satisfying Classifier.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for trainable estimators.
type Fitter interface {
	// Fit trains the estimator on X (n_samples x n_features) and
	// labels y (n_samples x 1).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for estimators that produce predictions.
type Predictor interface {
	// Predict returns an n_samples x 1 matrix of predicted labels.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// ProbabilityPredictor is the interface for classifiers that expose
// per-class probability estimates, needed for ROC-AUC.
type ProbabilityPredictor interface {
	// PredictProba returns an n_samples x n_classes matrix of class
	// probabilities.
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for estimators that can score themselves.
type Scorer interface {
	// Score returns the mean accuracy on the given test data and labels.
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier combines the capabilities the cross-validation harness
// requires of an injected model.
type Classifier interface {
	Fitter
	Predictor
}

// Transformer is the interface for feature transformers such as the
// preprocessing scalers.
type Transformer interface {
	// Fit learns transform parameters from training data only.
	Fit(X mat.Matrix) error

	// Transform applies the fitted parameters to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and returns the transformed X.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter is the interface for estimators that expose their
// hyperparameters.
type ParameterGetter interface {
	// GetParams returns the estimator's hyperparameters.
	GetParams() map[string]interface{}
}
