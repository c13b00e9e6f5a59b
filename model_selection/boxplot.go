package model_selection

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/crossval/pkg/errors"
)

// SaveBoxPlot renders the per-fold held-out scores of a run as a box
// plot and writes it to path (format chosen by extension, e.g. .png).
// The spread across folds is the variance diagnostic the notebooks
// relied on, so it is plotted rather than just the mean.
func (r *CVResult) SaveBoxPlot(path string) error {
	scores := r.TestScores()
	if len(scores) == 0 {
		return errors.NewModelError("CVResult.SaveBoxPlot", "no defined fold scores", errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = "Cross-validation fold scores"
	p.Y.Label.Text = r.Metric

	box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(scores))
	if err != nil {
		return errors.Wrap(err, "building box plot")
	}
	p.Add(box)
	p.NominalX("held-out folds")

	if err := p.Save(4*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving box plot to %s", path)
	}
	return nil
}
