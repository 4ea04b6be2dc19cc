// Package treemodel turns blocks of tree lines into ordered nodes and derives sibling and leaf facts.
package treemodel

import (
	"github.com/temirov/treetext/internal/treeline"
	"github.com/temirov/treetext/internal/types"
)

// ParseBlock parses every line of block in source order.
// Lines the parser rejects are skipped, so SourceLine values may have gaps.
func ParseBlock(lines []string, block types.Block) []types.Node {
	var nodes []types.Node
	for lineIndex := block.Start; lineIndex <= block.End && lineIndex < len(lines); lineIndex++ {
		if lineIndex < 0 {
			continue
		}
		parsed, ok := treeline.ParseLine(lines[lineIndex])
		if !ok {
			continue
		}
		nodes = append(nodes, types.Node{
			SourceLine: lineIndex,
			Depth:      parsed.Depth,
			Text:       parsed.Text,
		})
	}
	return nodes
}

// ComputeIsLast flags each node that has no later sibling at its depth before a shallower node appears.
func ComputeIsLast(nodes []types.Node) []bool {
	isLast := make([]bool, len(nodes))
	for nodeIndex, node := range nodes {
		isLast[nodeIndex] = true
		for laterIndex := nodeIndex + 1; laterIndex < len(nodes); laterIndex++ {
			laterDepth := nodes[laterIndex].Depth
			if laterDepth < node.Depth {
				break
			}
			if laterDepth == node.Depth {
				isLast[nodeIndex] = false
				break
			}
		}
	}
	return isLast
}

// ComputeIsLeaf flags each node whose successor is not deeper.
func ComputeIsLeaf(nodes []types.Node) []bool {
	isLeaf := make([]bool, len(nodes))
	for nodeIndex := range nodes {
		isLeaf[nodeIndex] = nodeIndex+1 >= len(nodes) || nodes[nodeIndex+1].Depth <= nodes[nodeIndex].Depth
	}
	return isLeaf
}

// SubtreeEnd returns the index one past the last descendant of nodes[index].
func SubtreeEnd(nodes []types.Node, index int) int {
	end := index + 1
	for end < len(nodes) && nodes[end].Depth > nodes[index].Depth {
		end++
	}
	return end
}

// NodeAtLine returns the index of the node parsed from line.
func NodeAtLine(nodes []types.Node, line int) (int, bool) {
	for nodeIndex, node := range nodes {
		if node.SourceLine == line {
			return nodeIndex, true
		}
	}
	return 0, false
}

// Depths lists the depth of every node.
func Depths(nodes []types.Node) []int {
	depths := make([]int, len(nodes))
	for nodeIndex, node := range nodes {
		depths[nodeIndex] = node.Depth
	}
	return depths
}
