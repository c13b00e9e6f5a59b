// Package dataset loads the preprocessed Kaggle Titanic survival CSV:
// one header row, a PassengerId column that is dropped before
// modelling, a Survived 0/1 label column, and already-encoded numeric
// feature columns. It also provides the download-then-cache fetch the
// notebooks performed inline.
package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/crossval/pkg/errors"
	"github.com/YuminosukeSato/crossval/pkg/log"
)

// DefaultURL is the raw-content location of the preprocessed Titanic
// dataset.
const DefaultURL = "https://raw.githubusercontent.com/MichaelAllen1966/1804_python_healthcare/master/titanic/data/processed_data.csv"

const (
	idColumn    = "PassengerId"
	labelColumn = "Survived"
)

// Dataset is a loaded feature matrix with its aligned binary label
// vector and feature column names.
type Dataset struct {
	FeatureNames []string
	X            *mat.Dense
	Y            *mat.VecDense
}

// NSamples returns the number of rows.
func (d *Dataset) NSamples() int {
	r, _ := d.X.Dims()
	return r
}

// NFeatures returns the number of feature columns.
func (d *Dataset) NFeatures() int {
	_, c := d.X.Dims()
	return c
}

// Select returns a new Dataset restricted to the named feature
// columns, in the given order. The label vector is shared.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	if len(names) == 0 {
		return nil, errors.NewValueError("Dataset.Select", "no feature names given")
	}

	byName := make(map[string]int, len(d.FeatureNames))
	for i, n := range d.FeatureNames {
		byName[n] = i
	}

	rows := d.NSamples()
	out := mat.NewDense(rows, len(names), nil)
	for j, name := range names {
		col, ok := byName[name]
		if !ok {
			return nil, errors.NewValidationError("feature", "unknown feature name", name)
		}
		for i := 0; i < rows; i++ {
			out.Set(i, j, d.X.At(i, col))
		}
	}

	return &Dataset{FeatureNames: append([]string(nil), names...), X: out, Y: d.Y}, nil
}

// Ensure returns path if the file already exists; otherwise it fetches
// url with the given client, writes the body verbatim to path, and
// returns path. One plain GET, no retries and no checksum — the cache
// file is the only artifact.
func Ensure(ctx context.Context, path, url string, client *http.Client) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "stat %s", path)
	}

	if client == nil {
		client = http.DefaultClient
	}

	logger := log.With("dataset")
	logger.Info().Str("url", url).Str("path", path).Msg("downloading dataset")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "building dataset request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetching %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("dataset fetch: unexpected status %s for %s", resp.Status, url)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, resp.Body); err != nil {
		// A partial file would satisfy the existence check next run.
		_ = os.Remove(path)
		return "", errors.Wrapf(err, "writing %s", path)
	}

	return path, nil
}

// Load reads a Titanic-format CSV from path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}

// Read parses a Titanic-format CSV from r. PassengerId is dropped,
// Survived becomes the label vector, and every remaining column is
// parsed as a float64 feature. Non-numeric feature cells are an error:
// imputation and encoding happen upstream of this library.
func Read(r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parsing dataset csv")
	}
	if len(records) < 2 {
		return nil, errors.NewModelError("dataset.Read", "no data rows", errors.ErrEmptyData)
	}

	header := records[0]
	labelIdx := -1
	featureIdx := make([]int, 0, len(header))
	featureNames := make([]string, 0, len(header))
	for i, name := range header {
		switch name {
		case labelColumn:
			labelIdx = i
		case idColumn:
			// dropped before modelling
		default:
			featureIdx = append(featureIdx, i)
			featureNames = append(featureNames, name)
		}
	}
	if labelIdx == -1 {
		return nil, errors.NewValueError("dataset.Read", "missing Survived column")
	}
	if len(featureIdx) == 0 {
		return nil, errors.NewValueError("dataset.Read", "no feature columns")
	}

	rows := len(records) - 1
	X := mat.NewDense(rows, len(featureIdx), nil)
	Y := mat.NewVecDense(rows, nil)

	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, errors.NewDimensionError("dataset.Read", len(header), len(record), 1)
		}

		label, err := strconv.ParseFloat(record[labelIdx], 64)
		if err != nil {
			return nil, errors.NewValueError("dataset.Read", "non-numeric Survived value: "+record[labelIdx])
		}
		if label != 0 && label != 1 {
			return nil, errors.Wrapf(errors.ErrLabelNotBinary, "dataset.Read: row %d", i+1)
		}
		Y.SetVec(i, label)

		for j, col := range featureIdx {
			v, err := strconv.ParseFloat(record[col], 64)
			if err != nil {
				return nil, errors.NewValueError("dataset.Read",
					"non-numeric value in column "+featureNames[j]+": "+record[col])
			}
			X.Set(i, j, v)
		}
	}

	return &Dataset{FeatureNames: featureNames, X: X, Y: Y}, nil
}
