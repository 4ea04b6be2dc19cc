// Package editor implements the structural edits on tree blocks: indent, outdent, sibling insertion
// and whole-document normalization. Every edit re-parses, mutates a copy, and re-renders the block.
package editor

import (
	"sort"

	"github.com/temirov/treetext/internal/treemodel"
	"github.com/temirov/treetext/internal/types"
)

// Targets returns the sorted node indices an edit applies to.
// When includeSubtree is set every selected node pulls in all of its descendants.
func Targets(nodes []types.Node, selected []int, includeSubtree bool) []int {
	targeted := map[int]struct{}{}
	for _, nodeIndex := range selected {
		if nodeIndex < 0 || nodeIndex >= len(nodes) {
			continue
		}
		targeted[nodeIndex] = struct{}{}
		if !includeSubtree {
			continue
		}
		for descendantIndex := nodeIndex + 1; descendantIndex < treemodel.SubtreeEnd(nodes, nodeIndex); descendantIndex++ {
			targeted[descendantIndex] = struct{}{}
		}
	}
	result := make([]int, 0, len(targeted))
	for nodeIndex := range targeted {
		result = append(result, nodeIndex)
	}
	sort.Ints(result)
	return result
}

// Shift moves the depth of every target by delta and returns a new slice.
//
// Negative deltas clamp at zero. Positive deltas resolve left to right: a target whose new depth
// would sit more than one level below the already resolved depth of the node before it keeps its
// depth. The first node of a block has no predecessor and is never rejected.
func Shift(nodes []types.Node, targets []int, delta int) []types.Node {
	shifted := make([]types.Node, len(nodes))
	copy(shifted, nodes)
	if delta == 0 {
		return shifted
	}
	isTarget := make([]bool, len(nodes))
	for _, nodeIndex := range targets {
		if nodeIndex >= 0 && nodeIndex < len(nodes) {
			isTarget[nodeIndex] = true
		}
	}
	for nodeIndex := range shifted {
		if !isTarget[nodeIndex] {
			continue
		}
		proposed := shifted[nodeIndex].Depth + delta
		if delta < 0 {
			if proposed < 0 {
				proposed = 0
			}
			shifted[nodeIndex].Depth = proposed
			continue
		}
		if nodeIndex > 0 && proposed > shifted[nodeIndex-1].Depth+1 {
			continue
		}
		shifted[nodeIndex].Depth = proposed
	}
	return shifted
}

// InsertSibling inserts an empty synthetic node at the depth of nodes[index], either right before
// it or right after its whole subtree. It returns the new slice and the index of the inserted node.
func InsertSibling(nodes []types.Node, index int, before bool) ([]types.Node, int) {
	depth := nodes[index].Depth
	position := index
	if !before {
		position = treemodel.SubtreeEnd(nodes, index)
	}
	inserted := make([]types.Node, 0, len(nodes)+1)
	inserted = append(inserted, nodes[:position]...)
	inserted = append(inserted, types.Node{SourceLine: types.SyntheticLine, Depth: depth})
	inserted = append(inserted, nodes[position:]...)
	return inserted, position
}
