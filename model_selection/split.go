// Package model_selection provides k-fold dataset splitting, the
// cross-validation harness, and the feature-selection and
// hyperparameter-sweep search loops built on top of it.
package model_selection

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/crossval/pkg/errors"
)

// CVFold holds the train/test index partition for a single
// cross-validation iteration. TestIndices is the held-out fold.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// Splitter generates cross-validation folds for a dataset.
type Splitter interface {
	// Split partitions the row indices of X into folds. The folds are
	// disjoint and collectively exhaustive.
	Split(X mat.Matrix, y mat.Vector) ([]CVFold, error)

	// NSplits returns the number of folds this splitter produces.
	NSplits() int
}

// KFold splits samples into k contiguous (optionally shuffled) folds
// without regard to label balance.
type KFold struct {
	K       int
	Shuffle bool
	Seed    uint64
}

// NewKFold creates a k-fold splitter. k below 2 falls back to 5.
func NewKFold(k int, shuffle bool, seed uint64) *KFold {
	if k < 2 {
		k = 5
	}
	return &KFold{K: k, Shuffle: shuffle, Seed: seed}
}

// NSplits returns the number of folds.
func (kf *KFold) NSplits() int {
	return kf.K
}

// Split generates train/test indices for each fold.
func (kf *KFold) Split(X mat.Matrix, _ mat.Vector) ([]CVFold, error) {
	nSamples, _ := X.Dims()
	if nSamples < kf.K {
		return nil, errors.NewValidationError("n_splits", "cannot exceed the number of samples", kf.K)
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.Seed, kf.Seed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.K)
	foldSize := nSamples / kf.K
	remainder := nSamples % kf.K

	current := 0
	for i := 0; i < kf.K; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		folds[i].TestIndices = append([]int(nil), indices[current:current+testSize]...)
		current += testSize
	}
	fillTrainIndices(folds, nSamples)

	return folds, nil
}

// StratifiedKFold splits samples into k folds so that every fold's
// class balance matches the whole dataset's to within rounding: the
// indices of each label are dealt across the folds so per-fold class
// counts differ by at most one.
type StratifiedKFold struct {
	K       int
	Shuffle bool
	Seed    uint64
}

// NewStratifiedKFold creates a stratified k-fold splitter. k below 2
// falls back to 5.
func NewStratifiedKFold(k int, shuffle bool, seed uint64) *StratifiedKFold {
	if k < 2 {
		k = 5
	}
	return &StratifiedKFold{K: k, Shuffle: shuffle, Seed: seed}
}

// NSplits returns the number of folds.
func (skf *StratifiedKFold) NSplits() int {
	return skf.K
}

// Split generates stratified train/test indices for each fold.
func (skf *StratifiedKFold) Split(X mat.Matrix, y mat.Vector) ([]CVFold, error) {
	nSamples, _ := X.Dims()
	if y == nil {
		return nil, errors.NewValueError("StratifiedKFold.Split", "y is required for stratification")
	}
	if y.Len() != nSamples {
		return nil, errors.NewDimensionError("StratifiedKFold.Split", nSamples, y.Len(), 0)
	}
	if nSamples < skf.K {
		return nil, errors.NewValidationError("n_splits", "cannot exceed the number of samples", skf.K)
	}

	// Bucket row indices by label. Iteration over sorted labels keeps
	// the assignment deterministic.
	classIndices := make(map[float64][]int)
	for i := 0; i < nSamples; i++ {
		label := y.AtVec(i)
		classIndices[label] = append(classIndices[label], i)
	}
	labels := make([]float64, 0, len(classIndices))
	for label := range classIndices {
		labels = append(labels, label)
	}
	sort.Float64s(labels)

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(skf.Seed, skf.Seed))
		for _, label := range labels {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	// Deal each label bucket round-robin across the folds.
	folds := make([]CVFold, skf.K)
	offset := 0
	for _, label := range labels {
		for j, idx := range classIndices[label] {
			fold := (offset + j) % skf.K
			folds[fold].TestIndices = append(folds[fold].TestIndices, idx)
		}
		offset += len(classIndices[label])
	}
	fillTrainIndices(folds, nSamples)

	return folds, nil
}

// fillTrainIndices sets each fold's train set to every sample index
// not held out by that fold.
func fillTrainIndices(folds []CVFold, nSamples int) {
	for i := range folds {
		inTest := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			inTest[idx] = true
		}
		folds[i].TrainIndices = make([]int, 0, nSamples-len(folds[i].TestIndices))
		for j := 0; j < nSamples; j++ {
			if !inTest[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}
}

// subset extracts the given rows of X and y into fresh matrices.
// Indices are accessed in sorted order.
func subset(X mat.Matrix, y mat.Vector, indices []int) (*mat.Dense, *mat.VecDense) {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	_, cols := X.Dims()
	xSub := mat.NewDense(len(sorted), cols, nil)
	ySub := mat.NewVecDense(len(sorted), nil)
	for i, idx := range sorted {
		for j := 0; j < cols; j++ {
			xSub.Set(i, j, X.At(idx, j))
		}
		ySub.SetVec(i, y.AtVec(idx))
	}
	return xSub, ySub
}
