package ml

import (
	"encoding/json"
	"fmt"
	"os"

	"tanabbah/pkg/logger"
)

// Forest is a pre-trained binary random-forest classifier loaded from a
// JSON artifact. It only performs inference; training happens offline.
type Forest struct {
	trees       []*decisionTree
	numFeatures int
	logger      *logger.Logger
}

// decisionTree represents a single tree in the forest
type decisionTree struct {
	root *dtNode
}

// dtNode represents a node in a decision tree
type dtNode struct {
	Feature     int       `json:"feature"`
	Threshold   float64   `json:"threshold"`
	Left        *dtNode   `json:"left,omitempty"`
	Right       *dtNode   `json:"right,omitempty"`
	IsLeaf      bool      `json:"is_leaf"`
	Prediction  int       `json:"prediction"`
	Probability []float64 `json:"probability,omitempty"` // [P(benign), P(phishing)]
}

type forestArtifact struct {
	NumFeatures int       `json:"num_features"`
	Trees       []*dtNode `json:"trees"`
}

// Load reads a forest artifact from disk
func Load(path string, log *logger.Logger) (*Forest, error) {
	log = log.WithComponent("forest")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var artifact forestArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model file: %w", err)
	}

	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("model file contains no trees")
	}

	trees := make([]*decisionTree, len(artifact.Trees))
	for i, root := range artifact.Trees {
		trees[i] = &decisionTree{root: root}
	}

	log.Info().
		Int("trees", len(trees)).
		Int("features", artifact.NumFeatures).
		Msg("random forest loaded")

	return &Forest{
		trees:       trees,
		numFeatures: artifact.NumFeatures,
		logger:      log,
	}, nil
}

// NumFeatures returns the feature dimension the model expects
func (f *Forest) NumFeatures() int {
	return f.numFeatures
}

// Predict returns the majority-vote class label (1 = phishing)
func (f *Forest) Predict(point []float64) int {
	votes := 0
	for _, tree := range f.trees {
		if treePredictClass(tree.root, point) == 1 {
			votes++
		}
	}
	if votes*2 > len(f.trees) {
		return 1
	}
	return 0
}

// PredictProba returns the averaged P(phishing) across all trees
func (f *Forest) PredictProba(point []float64) float64 {
	total := 0.0
	for _, tree := range f.trees {
		probs := treePredictProba(tree.root, point)
		if len(probs) > 1 {
			total += probs[1]
		}
	}
	return total / float64(len(f.trees))
}

// treePredictClass walks one tree to a leaf prediction
func treePredictClass(node *dtNode, point []float64) int {
	if node == nil {
		return 0
	}

	for !node.IsLeaf {
		if node.Feature < len(point) && point[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
		if node == nil {
			return 0
		}
	}

	return node.Prediction
}

// treePredictProba walks one tree to its leaf class distribution
func treePredictProba(node *dtNode, point []float64) []float64 {
	if node == nil {
		return nil
	}

	for !node.IsLeaf {
		if node.Feature < len(point) && point[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
		if node == nil {
			return nil
		}
	}

	return node.Probability
}
