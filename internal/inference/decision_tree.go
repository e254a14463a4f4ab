package inference

import (
	"errors"
	"fmt"
)

// TreeNode is one node of a flattened binary decision tree. Node 0 is the root.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

// DecisionTree walks x[feature] <= threshold to the left child, otherwise right.
type DecisionTree struct {
	nodes       []TreeNode
	classes     []int
	numFeatures int
}

// NewDecisionTree checks that every split references a valid feature and
// child, and every leaf carries one of classes.
func NewDecisionTree(nodes []TreeNode, classes []int, numFeatures int) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, errors.New("decision tree has no nodes")
	}
	known := make(map[int]bool, len(classes))
	for _, c := range classes {
		known[c] = true
	}
	for i, n := range nodes {
		if n.IsLeaf {
			if !known[n.ClassLabel] {
				return nil, fmt.Errorf("leaf %d has label %d outside classes %v", i, n.ClassLabel, classes)
			}
			continue
		}
		if n.FeatureIdx < 0 || n.FeatureIdx >= numFeatures {
			return nil, fmt.Errorf("node %d splits on feature %d, model has %d", i, n.FeatureIdx, numFeatures)
		}
		// children always come after their parent, so the walk terminates
		if n.LeftChild <= i || n.LeftChild >= len(nodes) || n.RightChild <= i || n.RightChild >= len(nodes) {
			return nil, fmt.Errorf("node %d has invalid children %d/%d", i, n.LeftChild, n.RightChild)
		}
	}
	return &DecisionTree{
		nodes:       append([]TreeNode(nil), nodes...),
		classes:     append([]int(nil), classes...),
		numFeatures: numFeatures,
	}, nil
}

func (dt *DecisionTree) Kind() string     { return "decision_tree" }
func (dt *DecisionTree) NumFeatures() int { return dt.numFeatures }
func (dt *DecisionTree) Classes() []int   { return append([]int(nil), dt.classes...) }

func (dt *DecisionTree) Predict(v ScaledVector) (int, error) {
	if len(v) != dt.numFeatures {
		return 0, &DimensionMismatchError{Stage: "classifier", Got: len(v), Want: dt.numFeatures}
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(v) {
			return 0, errors.New("feature index out of range")
		}
		if v[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}
