package modelstore

import (
	"errors"
	"fmt"

	"github.com/okian/attrition/internal/domain/employee"
)

const leafChild = -1

var errNoNodes = errors.New("tree has no nodes")

// TreeNode is one node of a flattened binary decision tree. Value holds the
// per-class sample weights reaching the node.
type TreeNode struct {
	Feature   int        `json:"feature"`
	Threshold float64    `json:"threshold"`
	Left      int        `json:"left"`
	Right     int        `json:"right"`
	Value     [2]float64 `json:"value"`
}

func (n TreeNode) isLeaf() bool { return n.Left == leafChild }

// DecisionTree walks from node 0; x[feature] <= threshold goes left.
type DecisionTree struct {
	FeatureNames []string   `json:"feature_names,omitempty"`
	Nodes        []TreeNode `json:"nodes"`
}

func (t *DecisionTree) validate() error {
	if err := checkFeatureNames(t.FeatureNames); err != nil {
		return err
	}
	if len(t.Nodes) == 0 {
		return errNoNodes
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			if n.Value[0]+n.Value[1] <= 0 {
				return fmt.Errorf("leaf %d has no samples", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= employee.FeatureCount {
			return fmt.Errorf("node %d splits on feature %d", i, n.Feature)
		}
		// Children always come after their parent in a flattened tree, which
		// also rules out cycles.
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has children out of range (%d, %d)", i, n.Left, n.Right)
		}
	}
	return nil
}

// PredictProba returns the class distribution of the leaf reached by features.
func (t *DecisionTree) PredictProba(features []float64) ([]float64, error) {
	if len(features) != employee.FeatureCount {
		return nil, fmt.Errorf("%w: decision tree expects %d features, got %d", ErrInference, employee.FeatureCount, len(features))
	}
	if len(t.Nodes) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInference, errNoNodes)
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.isLeaf() {
			total := node.Value[0] + node.Value[1]
			if total <= 0 {
				return nil, fmt.Errorf("%w: empty leaf %d", ErrInference, idx)
			}
			return []float64{node.Value[0] / total, node.Value[1] / total}, nil
		}
		if node.Feature < 0 || node.Feature >= len(features) {
			return nil, fmt.Errorf("%w: feature index %d out of range", ErrInference, node.Feature)
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return nil, fmt.Errorf("%w: invalid tree state at node %d", ErrInference, idx)
		}
	}
}
