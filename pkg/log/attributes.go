// Standard attribute keys for cross-validation logging. Using the same
// keys everywhere keeps fold-level log lines filterable.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "LogisticRegression", "StandardScaler"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score", "split"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "model_selection", "metrics", "dataset"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of rows in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"
)

// Cross-validation context.
const (
	// FoldKey is the zero-based index of the held-out fold.
	FoldKey = "cv.fold"

	// NSplitsKey is the number of folds in the run.
	NSplitsKey = "cv.n_splits"

	// MetricKey names the metric being aggregated, e.g. "accuracy".
	MetricKey = "cv.metric"

	// TrainScoreKey and TestScoreKey carry per-fold scores. A test
	// score well below the train score is the overfitting diagnostic.
	TrainScoreKey = "cv.train_score"
	TestScoreKey  = "cv.test_score"
)

// Standard operation values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
	OperationSplit     = "split"
)
