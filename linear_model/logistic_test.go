package linear_model

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/crossval/pkg/errors"
)

// separable returns a small linearly separable problem: positives sit
// well above zero on the only informative feature.
func separable() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 2, []float64{
		-2, 0.1,
		-1.5, -0.2,
		-1, 0.3,
		-0.5, -0.1,
		0.5, 0.2,
		1, -0.3,
		1.5, 0.1,
		2, -0.2,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestLogisticRegressionFitPredict(t *testing.T) {
	X, y := separable()

	lr := NewLogisticRegression(WithC(100), WithMaxIter(1000), WithSeed(42))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !lr.IsFitted() {
		t.Error("IsFitted() = false after Fit()")
	}

	predictions, err := lr.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < 8; i++ {
		if got, want := predictions.At(i, 0), y.At(i, 0); got != want {
			t.Errorf("prediction[%d] = %v, want %v", i, got, want)
		}
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score != 1.0 {
		t.Errorf("Score() = %v, want 1.0 on separable data", score)
	}
}

func TestLogisticRegressionSeedDeterminism(t *testing.T) {
	X, y := separable()

	fit := func(seed uint64) []float64 {
		lr := NewLogisticRegression(WithSeed(seed), WithMaxIter(200))
		if err := lr.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		return lr.Coef()
	}

	if !reflect.DeepEqual(fit(7), fit(7)) {
		t.Error("same seed produced different coefficients")
	}
}

func TestLogisticRegressionPredictProba(t *testing.T) {
	X, y := separable()

	lr := NewLogisticRegression(WithC(100), WithMaxIter(1000), WithSeed(1))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	probas, err := lr.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	rows, cols := probas.Dims()
	if rows != 8 || cols != 2 {
		t.Fatalf("PredictProba() dims = %dx%d, want 8x2", rows, cols)
	}
	for i := 0; i < rows; i++ {
		p0, p1 := probas.At(i, 0), probas.At(i, 1)
		if p0 < 0 || p0 > 1 || p1 < 0 || p1 > 1 {
			t.Errorf("row %d probabilities = (%v, %v), want within [0, 1]", i, p0, p1)
		}
		if math.Abs(p0+p1-1) > 1e-12 {
			t.Errorf("row %d probabilities sum to %v, want 1", i, p0+p1)
		}
	}

	// The most negative sample should carry a lower positive-class
	// probability than the most positive one.
	if probas.At(0, 1) >= probas.At(7, 1) {
		t.Errorf("p(1|x=-2) = %v not below p(1|x=2) = %v", probas.At(0, 1), probas.At(7, 1))
	}
}

func TestLogisticRegressionRegularizationShrinksCoef(t *testing.T) {
	X, y := separable()

	weak := NewLogisticRegression(WithC(100), WithMaxIter(1000), WithSeed(3))
	strong := NewLogisticRegression(WithC(0.01), WithMaxIter(1000), WithSeed(3))
	if err := weak.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if err := strong.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(strong.Coef()[0]) >= math.Abs(weak.Coef()[0]) {
		t.Errorf("stronger regularization did not shrink the coefficient: |%v| >= |%v|",
			strong.Coef()[0], weak.Coef()[0])
	}
}

func TestLogisticRegressionErrors(t *testing.T) {
	X, y := separable()

	lr := NewLogisticRegression()
	if _, err := lr.Predict(X); err == nil {
		t.Error("Predict() before Fit() did not return an error")
	} else {
		var nfe *errors.NotFittedError
		if !errors.As(err, &nfe) {
			t.Errorf("Predict() error = %v, want NotFittedError", err)
		}
	}
	if _, err := lr.PredictProba(X); err == nil {
		t.Error("PredictProba() before Fit() did not return an error")
	}

	bad := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 2})
	if err := lr.Fit(X, bad); !errors.Is(err, errors.ErrLabelNotBinary) {
		t.Errorf("Fit() with non-binary labels error = %v, want ErrLabelNotBinary", err)
	}

	if err := lr.Fit(X, mat.NewDense(3, 1, nil)); err == nil {
		t.Error("Fit() with mismatched label rows did not return an error")
	}

	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := lr.Predict(mat.NewDense(2, 5, nil)); err == nil {
		t.Error("Predict() with wrong feature count did not return an error")
	}
}

func TestLogisticRegressionConvergenceWarning(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(nil)

	X, y := separable()
	lr := NewLogisticRegression(WithMaxIter(2), WithTol(1e-12))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if lr.NIter() != 2 {
		t.Errorf("NIter() = %d, want 2", lr.NIter())
	}

	found := false
	for _, w := range warnings {
		var cw *errors.ConvergenceWarning
		if errors.As(w, &cw) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("no ConvergenceWarning raised after hitting the iteration cap, got %v", warnings)
	}
}

func TestLogisticRegressionGetParams(t *testing.T) {
	lr := NewLogisticRegression(WithC(10), WithMaxIter(50))
	params := lr.GetParams()
	if params["C"] != 10.0 {
		t.Errorf("params[C] = %v, want 10", params["C"])
	}
	if params["max_iter"] != 50 {
		t.Errorf("params[max_iter] = %v, want 50", params["max_iter"])
	}
}
