package errors

import (
	"strings"
	"testing"
)

func TestWarnRoutesToHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(nil)

	warning := NewUndefinedMetricWarning("recall", "no observed positives")
	Warn(warning)

	if len(got) != 1 {
		t.Fatalf("handler received %d warnings, want 1", len(got))
	}
	var umw *UndefinedMetricWarning
	if !As(got[0], &umw) {
		t.Fatalf("handler received %T, want UndefinedMetricWarning", got[0])
	}
	if umw.Metric != "recall" || umw.Condition != "no observed positives" {
		t.Errorf("warning fields = %+v", umw)
	}
}

func TestWarnZerologSinkTakesPrecedence(t *testing.T) {
	var handled, sunk int
	SetWarningHandler(func(error) { handled++ })
	SetZerologWarnFunc(func(error) { sunk++ })
	defer func() {
		SetWarningHandler(nil)
		SetZerologWarnFunc(nil)
	}()

	Warn(NewConvergenceWarning("LogisticRegression", 100))

	if sunk != 1 || handled != 0 {
		t.Errorf("sink got %d, handler got %d; want 1 and 0", sunk, handled)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "NotFittedError",
			err:  NewNotFittedError("StandardScaler", "Transform"),
			want: "not fitted yet",
		},
		{
			name: "DimensionError columns",
			err:  NewDimensionError("Fit", 3, 5, 1),
			want: "features",
		},
		{
			name: "DimensionError rows",
			err:  NewDimensionError("Fit", 3, 5, 0),
			want: "rows",
		},
		{
			name: "ValidationError",
			err:  NewValidationError("metric", "unknown metric name", "bogus"),
			want: "validation failed for parameter 'metric'",
		},
		{
			name: "ValueError",
			err:  NewValueError("ROCAUC", "labels must be 0 or 1"),
			want: "ROCAUC",
		},
		{
			name: "ModelError with cause",
			err:  NewModelError("Fit", "empty data", ErrEmptyData),
			want: "empty data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.want) {
				t.Errorf("Error() = %q, want substring %q", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestErrorChains(t *testing.T) {
	err := NewModelError("Fit", "empty data", ErrEmptyData)
	if !Is(err, ErrEmptyData) {
		t.Error("ModelError does not unwrap to its cause")
	}

	var me *ModelError
	if !As(err, &me) {
		t.Fatal("As() failed through the stack-trace wrapper")
	}
	if me.Op != "Fit" {
		t.Errorf("Op = %q, want %q", me.Op, "Fit")
	}

	wrapped := Wrapf(ErrLabelNotBinary, "fold %d", 2)
	if !Is(wrapped, ErrLabelNotBinary) {
		t.Error("Wrapf broke the error chain")
	}
	if !strings.Contains(wrapped.Error(), "fold 2") {
		t.Errorf("Wrapf message = %q", wrapped.Error())
	}
}
