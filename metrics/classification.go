// Package metrics provides evaluation metrics for binary classifiers:
// the full confusion-matrix report used by the cross-validation
// harness, plus accuracy and ROC-AUC helpers.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/crossval/pkg/errors"
)

// Metric names reported by Classification. Precision is duplicated
// under PositivePredictiveValue: the two names are the information-
// retrieval and clinical terms for the same ratio, and downstream
// report consumers use both.
const (
	ObservedPositiveRate    = "observed_positive_rate"
	ObservedNegativeRate    = "observed_negative_rate"
	PredictedPositiveRate   = "predicted_positive_rate"
	PredictedNegativeRate   = "predicted_negative_rate"
	Acc                     = "accuracy"
	Precision               = "precision"
	PositivePredictiveValue = "positive_predictive_value"
	Recall                  = "recall"
	Sensitivity             = "sensitivity"
	TruePositiveRate        = "true_positive_rate"
	Specificity             = "specificity"
	TrueNegativeRate        = "true_negative_rate"
	F1                      = "f1"
	PositiveLikelihood      = "positive_likelihood"
	NegativeLikelihood      = "negative_likelihood"
	FalsePositiveRate       = "false_positive_rate"
	FalseNegativeRate       = "false_negative_rate"
	NegativePredictiveValue = "negative_predictive_value"
)

// Report maps metric names to their values for one (observed,
// predicted) pair. It is a plain value mapping with no identity beyond
// its contents; recompute it rather than mutating it.
type Report map[string]Value

// Get returns the named metric and whether it is present and defined.
func (r Report) Get(name string) (float64, bool) {
	v, ok := r[name]
	if !ok {
		return 0, false
	}
	return v.Float64()
}

// ConfusionMatrix holds the 2x2 counts of predicted against observed
// binary labels.
type ConfusionMatrix struct {
	TP int
	FP int
	TN int
	FN int
}

// N returns the total number of samples.
func (c ConfusionMatrix) N() int {
	return c.TP + c.FP + c.TN + c.FN
}

// NewConfusionMatrix crosses predicted against observed labels.
// Both slices must be the same non-zero length and contain only 0 or 1.
func NewConfusionMatrix(observed, predicted []float64) (ConfusionMatrix, error) {
	var cm ConfusionMatrix

	if len(observed) == 0 {
		return cm, errors.NewModelError("metrics.NewConfusionMatrix", "empty input", errors.ErrEmptyData)
	}
	if len(observed) != len(predicted) {
		return cm, errors.NewDimensionError("metrics.NewConfusionMatrix", len(observed), len(predicted), 0)
	}

	for i := range observed {
		o, p := observed[i], predicted[i]
		if (o != 0 && o != 1) || (p != 0 && p != 1) {
			return cm, errors.Wrapf(errors.ErrLabelNotBinary, "metrics.NewConfusionMatrix: sample %d", i)
		}
		switch {
		case p == 1 && o == 1:
			cm.TP++
		case p == 1 && o == 0:
			cm.FP++
		case p == 0 && o == 0:
			cm.TN++
		default:
			cm.FN++
		}
	}

	return cm, nil
}

// Classification computes the full metric report for a pair of binary
// label slices. Sample-proportion metrics (observed/predicted rates,
// accuracy) are always defined for non-empty input; ratio metrics with
// a zero denominator come back undefined and raise an
// UndefinedMetricWarning through pkg/errors.
func Classification(observed, predicted []float64) (Report, error) {
	cm, err := NewConfusionMatrix(observed, predicted)
	if err != nil {
		return nil, err
	}
	return cm.Report(), nil
}

// ClassificationVec is the mat.Vector form of Classification. It
// produces identical results to the slice form for the same values.
func ClassificationVec(observed, predicted mat.Vector) (Report, error) {
	if observed == nil || predicted == nil {
		return nil, errors.NewModelError("metrics.ClassificationVec", "nil input", errors.ErrEmptyData)
	}
	return Classification(vecToSlice(observed), vecToSlice(predicted))
}

// Report derives the named metrics from the counts.
func (c ConfusionMatrix) Report() Report {
	n := float64(c.N())
	tp, fp, tn, fn := float64(c.TP), float64(c.FP), float64(c.TN), float64(c.FN)

	r := Report{
		ObservedPositiveRate:  Def((tp + fn) / n),
		ObservedNegativeRate:  Def((tn + fp) / n),
		PredictedPositiveRate: Def((tp + fp) / n),
		PredictedNegativeRate: Def((tn + fn) / n),
		Acc:                   Def((tp + tn) / n),
	}

	precision := ratio(tp, tp+fp, Precision, "no predicted positives")
	r[Precision] = precision
	r[PositivePredictiveValue] = precision

	recall := ratio(tp, tp+fn, Recall, "no observed positives")
	r[Recall] = recall
	r[Sensitivity] = recall
	r[TruePositiveRate] = recall

	specificity := ratio(tn, tn+fp, Specificity, "no observed negatives")
	r[Specificity] = specificity
	r[TrueNegativeRate] = specificity

	r[F1] = f1Score(precision, recall)

	r[FalsePositiveRate] = complement(specificity)
	r[FalseNegativeRate] = complement(recall)

	if sens, ok := recall.Float64(); ok {
		if spec, ok := specificity.Float64(); ok {
			r[PositiveLikelihood] = ratio(sens, 1-spec, PositiveLikelihood, "specificity is 1")
			r[NegativeLikelihood] = ratio(1-sens, spec, NegativeLikelihood, "specificity is 0")
		} else {
			r[PositiveLikelihood] = Undef()
			r[NegativeLikelihood] = Undef()
		}
	} else {
		r[PositiveLikelihood] = Undef()
		r[NegativeLikelihood] = Undef()
	}

	r[NegativePredictiveValue] = ratio(tn, tn+fn, NegativePredictiveValue, "no predicted negatives")

	return r
}

// ratio divides num by den, reporting an undefined metric when den is
// zero instead of producing a non-finite float.
func ratio(num, den float64, metric, condition string) Value {
	if den == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(metric, condition))
		return Undef()
	}
	return Def(num / den)
}

func f1Score(precision, recall Value) Value {
	p, pok := precision.Float64()
	rec, rok := recall.Float64()
	if !pok || !rok {
		return Undef()
	}
	return ratio(2*p*rec, p+rec, F1, "precision and recall are both 0")
}

func complement(v Value) Value {
	f, ok := v.Float64()
	if !ok {
		return Undef()
	}
	return Def(1 - f)
}

// Accuracy returns the fraction of predictions equal to the observed
// labels.
func Accuracy(observed, predicted mat.Vector) (float64, error) {
	if observed == nil || predicted == nil {
		return 0, errors.NewModelError("metrics.Accuracy", "nil input", errors.ErrEmptyData)
	}
	n := observed.Len()
	if n == 0 {
		return 0, errors.NewModelError("metrics.Accuracy", "empty input", errors.ErrEmptyData)
	}
	if predicted.Len() != n {
		return 0, errors.NewDimensionError("metrics.Accuracy", n, predicted.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if observed.AtVec(i) == predicted.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ROCAUC returns the area under the receiver-operating-characteristic
// curve for binary labels against predicted positive-class scores.
// When the labels are all-positive or all-negative the ranking is
// undefined and 0.5 is returned.
func ROCAUC(observed, scores mat.Vector) (float64, error) {
	if observed == nil || scores == nil {
		return 0, errors.NewModelError("metrics.ROCAUC", "nil input", errors.ErrEmptyData)
	}
	n := observed.Len()
	if n == 0 {
		return 0, errors.NewModelError("metrics.ROCAUC", "empty input", errors.ErrEmptyData)
	}
	if scores.Len() != n {
		return 0, errors.NewDimensionError("metrics.ROCAUC", n, scores.Len(), 0)
	}

	y := make([]float64, n)
	classes := make([]bool, n)
	positives := 0
	for i := 0; i < n; i++ {
		label := observed.AtVec(i)
		if label != 0 && label != 1 {
			return 0, errors.Wrapf(errors.ErrLabelNotBinary, "metrics.ROCAUC: sample %d", i)
		}
		y[i] = scores.AtVec(i)
		classes[i] = label == 1
		if classes[i] {
			positives++
		}
	}

	if positives == 0 || positives == n {
		errors.Warn(errors.NewUndefinedMetricWarning("roc_auc", "only one class present"))
		return 0.5, nil
	}

	// stat.ROC requires scores in ascending order.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return y[idx[i]] < y[idx[j]] })
	sortedY := make([]float64, n)
	sortedClasses := make([]bool, n)
	for i, j := range idx {
		sortedY[i] = y[j]
		sortedClasses[i] = classes[j]
	}

	tpr, fpr, _ := stat.ROC(nil, sortedY, sortedClasses, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

func vecToSlice(v mat.Vector) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
