package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/crossval/pkg/errors"
)

const sampleCSV = `PassengerId,Survived,Pclass,Age,Fare
1,0,3,22,7.25
2,1,1,38,71.2833
3,1,3,26,7.925
4,0,1,35,53.1
`

func TestRead(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got := ds.NSamples(); got != 4 {
		t.Errorf("NSamples() = %d, want 4", got)
	}
	if got := ds.NFeatures(); got != 3 {
		t.Errorf("NFeatures() = %d, want 3", got)
	}

	// PassengerId is dropped, Survived becomes the label.
	wantNames := []string{"Pclass", "Age", "Fare"}
	for i, want := range wantNames {
		if ds.FeatureNames[i] != want {
			t.Errorf("FeatureNames[%d] = %q, want %q", i, ds.FeatureNames[i], want)
		}
	}
	wantLabels := []float64{0, 1, 1, 0}
	for i, want := range wantLabels {
		if got := ds.Y.AtVec(i); got != want {
			t.Errorf("Y[%d] = %v, want %v", i, got, want)
		}
	}
	if got := ds.X.At(1, 2); got != 71.2833 {
		t.Errorf("X[1][Fare] = %v, want 71.2833", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "Header only",
			csv:  "PassengerId,Survived,Age\n",
		},
		{
			name: "Missing label column",
			csv:  "PassengerId,Age\n1,22\n",
		},
		{
			name: "No feature columns",
			csv:  "PassengerId,Survived\n1,0\n",
		},
		{
			name: "Non-binary label",
			csv:  "Survived,Age\n2,22\n",
		},
		{
			name: "Non-numeric feature",
			csv:  "Survived,Name\n1,Smith\n",
		},
		{
			name: "Ragged row",
			csv:  "Survived,Age\n1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.csv)); err == nil {
				t.Error("Read() did not return an error")
			}
		})
	}
}

func TestReadNonBinaryLabelError(t *testing.T) {
	_, err := Read(strings.NewReader("Survived,Age\n2,22\n"))
	if !errors.Is(err, errors.ErrLabelNotBinary) {
		t.Errorf("Read() error = %v, want ErrLabelNotBinary", err)
	}
}

func TestSelect(t *testing.T) {
	ds, err := Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	// Selection reorders columns and shares the label vector.
	sub, err := ds.Select("Fare", "Pclass")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got := sub.NFeatures(); got != 2 {
		t.Errorf("NFeatures() = %d, want 2", got)
	}
	if got := sub.X.At(0, 0); got != 7.25 {
		t.Errorf("X[0][Fare] = %v, want 7.25", got)
	}
	if got := sub.X.At(0, 1); got != 3 {
		t.Errorf("X[0][Pclass] = %v, want 3", got)
	}
	if sub.Y != ds.Y {
		t.Error("Select() copied the label vector")
	}

	if _, err := ds.Select("Cabin"); err == nil {
		t.Error("Select() with unknown name did not return an error")
	}
	if _, err := ds.Select(); err == nil {
		t.Error("Select() with no names did not return an error")
	}
}

func TestEnsureDownloadsAndCaches(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cache", "titanic.csv")

	got, err := Ensure(context.Background(), path, srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if got != path {
		t.Errorf("Ensure() = %q, want %q", got, path)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}

	ds, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.NSamples() != 4 {
		t.Errorf("NSamples() = %d, want 4", ds.NSamples())
	}

	// Second call finds the cache file and never touches the network.
	if _, err := Ensure(context.Background(), path, srv.URL, srv.Client()); err != nil {
		t.Fatalf("Ensure() on cached file error = %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times after cached call, want 1", hits)
	}
}

func TestEnsureBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "titanic.csv")

	if _, err := Ensure(context.Background(), path, srv.URL, srv.Client()); err == nil {
		t.Fatal("Ensure() with 404 response did not return an error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Ensure() left a file behind after a failed fetch")
	}
}

func TestEnsureNilClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "titanic.csv")

	if _, err := Ensure(context.Background(), path, srv.URL, nil); err != nil {
		t.Fatalf("Ensure() with nil client error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("cache file missing: %v", err)
	}
}
