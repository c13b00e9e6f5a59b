package metrics

import "strconv"

// Value is a metric result that is either a defined float64 or
// undefined. Ratios whose denominator is zero for the given inputs
// (e.g. recall on a fold with no observed positives) are undefined
// rather than NaN or Inf; callers decide how to render or aggregate
// undefined entries.
type Value struct {
	val     float64
	defined bool
}

// Def returns a defined Value.
func Def(v float64) Value {
	return Value{val: v, defined: true}
}

// Undef returns an undefined Value.
func Undef() Value {
	return Value{}
}

// Float64 returns the metric value and whether it is defined.
func (v Value) Float64() (float64, bool) {
	return v.val, v.defined
}

// IsDefined reports whether the metric is defined.
func (v Value) IsDefined() bool {
	return v.defined
}

// Or returns the metric value, or fallback if it is undefined.
func (v Value) Or(fallback float64) float64 {
	if !v.defined {
		return fallback
	}
	return v.val
}

// String renders the value for reports; undefined renders as "undefined".
func (v Value) String() string {
	if !v.defined {
		return "undefined"
	}
	return strconv.FormatFloat(v.val, 'g', -1, 64)
}
