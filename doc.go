// Package crossval provides reusable evaluation tooling for binary
// classifiers: a classification-metrics calculator, stratified k-fold
// cross-validation, and feature-selection/hyperparameter-sweep search
// loops, together with loading helpers for the Kaggle Titanic survival
// dataset.
//
// The library exists to replace the per-notebook copies of the same
// metrics and cross-validation bookkeeping with one canonical, tested
// implementation that any classifier satisfying the core/model
// interfaces can plug into.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/crossval/linear_model"
//	    "github.com/YuminosukeSato/crossval/model_selection"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(6, 1, []float64{0, 1, 2, 3, 4, 5})
//	    y := mat.NewVecDense(6, []float64{0, 0, 0, 1, 1, 1})
//
//	    result, err := model_selection.CrossValidate(context.Background(), X, y,
//	        func() model_selection.Classifier {
//	            return linear_model.NewLogisticRegression(linear_model.WithSeed(42))
//	        },
//	        model_selection.WithNSplits(3),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("accuracy: %.3f (+/- %.3f)\n", result.MeanTestScore(), result.StdTestScore())
//	}
//
// # Packages
//
//   - metrics: confusion-matrix derived classification metrics and ROC-AUC
//   - model_selection: stratified k-fold splitting, cross-validation,
//     forward/backward feature selection, hyperparameter sweeps
//   - preprocessing: StandardScaler and MinMaxScaler (fit on training
//     folds only)
//   - linear_model: binary logistic regression used as the reference
//     classifier
//   - dataset: Titanic CSV download cache and loader
//   - core/model: estimator interfaces and fitted-state tracking
//   - pkg/errors, pkg/log: structured errors and logging
package crossval
