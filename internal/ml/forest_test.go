package ml

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"tanabbah/pkg/logger"
)

// fixtureArtifact is a three-stump forest over two features. Two stumps
// split on feature 0 at 15, the third on feature 1 at 2.
const fixtureArtifact = `{
	"num_features": 2,
	"trees": [
		{
			"feature": 0, "threshold": 15, "is_leaf": false,
			"left":  {"is_leaf": true, "prediction": 0, "probability": [0.8, 0.2]},
			"right": {"is_leaf": true, "prediction": 1, "probability": [0.1, 0.9]}
		},
		{
			"feature": 0, "threshold": 15, "is_leaf": false,
			"left":  {"is_leaf": true, "prediction": 0, "probability": [0.8, 0.2]},
			"right": {"is_leaf": true, "prediction": 1, "probability": [0.1, 0.9]}
		},
		{
			"feature": 1, "threshold": 2, "is_leaf": false,
			"left":  {"is_leaf": true, "prediction": 0, "probability": [1.0, 0.0]},
			"right": {"is_leaf": true, "prediction": 1, "probability": [0.0, 1.0]}
		}
	]
}`

func newForestTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forest.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadErrors(t *testing.T) {
	log := newForestTestLogger()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json"), log); err == nil {
		t.Error("Load should fail for a missing file")
	}
	if _, err := Load(writeFixture(t, "{not json"), log); err == nil {
		t.Error("Load should fail for malformed JSON")
	}
	if _, err := Load(writeFixture(t, `{"num_features": 2, "trees": []}`), log); err == nil {
		t.Error("Load should fail for an empty forest")
	}
}

func TestLoadFixture(t *testing.T) {
	forest, err := Load(writeFixture(t, fixtureArtifact), newForestTestLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := forest.NumFeatures(); got != 2 {
		t.Errorf("NumFeatures() = %d, want 2", got)
	}
}

func TestPredictMajorityVote(t *testing.T) {
	forest, err := Load(writeFixture(t, fixtureArtifact), newForestTestLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name  string
		point []float64
		want  int
	}{
		// Feature 0 at 20 flips the two stumps, feature 1 at 1 stays left.
		{"two of three phishing votes", []float64{20, 1}, 1},
		{"one of three phishing votes", []float64{10, 5}, 0},
		{"all benign", []float64{10, 1}, 0},
		{"all phishing", []float64{20, 5}, 1},
		{"threshold not inclusive", []float64{15, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := forest.Predict(tt.point); got != tt.want {
				t.Errorf("Predict(%v) = %d, want %d", tt.point, got, tt.want)
			}
		})
	}
}

func TestPredictProbaAveragesTrees(t *testing.T) {
	forest, err := Load(writeFixture(t, fixtureArtifact), newForestTestLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name  string
		point []float64
		want  float64
	}{
		{"phishing leaning", []float64{20, 1}, (0.9 + 0.9 + 0.0) / 3},
		{"benign leaning", []float64{10, 5}, (0.2 + 0.2 + 1.0) / 3},
		{"all benign", []float64{10, 1}, (0.2 + 0.2 + 0.0) / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := forest.PredictProba(tt.point)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PredictProba(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}
