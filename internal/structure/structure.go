// Package structure answers folding and decoration queries over parsed tree blocks.
package structure

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/temirov/treetext/internal/block"
	"github.com/temirov/treetext/internal/treeline"
	"github.com/temirov/treetext/internal/treemodel"
	"github.com/temirov/treetext/internal/types"
)

const (
	commentMarker  = '#'
	pathSeparators = "/\\"
)

// Query scans every block of a document and gathers its folding ranges and decorations.
func Query(lines []string, kind string) types.StructureOutput {
	result := types.StructureOutput{
		Blocks:  []types.Block{},
		Folding: []types.FoldingRange{},
		Decorations: types.Decorations{
			Prefixes: []types.Span{},
			Folders:  []types.Span{},
			Files:    []types.Span{},
			Comments: []types.Span{},
		},
	}
	for _, treeBlock := range block.Scan(lines, kind) {
		nodes := treemodel.ParseBlock(lines, treeBlock)
		result.Blocks = append(result.Blocks, treeBlock)
		result.Folding = append(result.Folding, Folding(nodes)...)
		decorations := Decorate(lines, nodes)
		result.Decorations.Prefixes = append(result.Decorations.Prefixes, decorations.Prefixes...)
		result.Decorations.Folders = append(result.Decorations.Folders, decorations.Folders...)
		result.Decorations.Files = append(result.Decorations.Files, decorations.Files...)
		result.Decorations.Comments = append(result.Decorations.Comments, decorations.Comments...)
	}
	return result
}

// Folding returns one range for every node whose subtree covers more than its own line.
func Folding(nodes []types.Node) []types.FoldingRange {
	var ranges []types.FoldingRange
	for nodeIndex, node := range nodes {
		if node.IsSynthetic() {
			continue
		}
		subtreeEnd := treemodel.SubtreeEnd(nodes, nodeIndex)
		lastLine := node.SourceLine
		for descendantIndex := subtreeEnd - 1; descendantIndex > nodeIndex; descendantIndex-- {
			if !nodes[descendantIndex].IsSynthetic() {
				lastLine = nodes[descendantIndex].SourceLine
				break
			}
		}
		if lastLine > node.SourceLine {
			ranges = append(ranges, types.FoldingRange{StartLine: node.SourceLine, EndLine: lastLine})
		}
	}
	return ranges
}

// Decorate computes prefix, folder, file and comment spans for nodes parsed from lines.
func Decorate(lines []string, nodes []types.Node) types.Decorations {
	var decorations types.Decorations
	isLeaf := treemodel.ComputeIsLeaf(nodes)
	for nodeIndex, node := range nodes {
		if node.IsSynthetic() || node.SourceLine >= len(lines) {
			continue
		}
		columns, ok := treeline.LineColumns(lines[node.SourceLine])
		if !ok {
			continue
		}
		if columns.MarkerEnd > 0 {
			decorations.Prefixes = append(decorations.Prefixes, types.Span{Line: node.SourceLine, Start: 0, End: columns.MarkerEnd})
		}

		visible, commentStart, hasComment := SplitComment(node.Text)
		if visible != "" {
			payloadSpan := types.Span{
				Line:  node.SourceLine,
				Start: columns.PayloadStart,
				End:   columns.PayloadStart + utf8.RuneCountInString(visible),
			}
			if !isLeaf[nodeIndex] || IsFolderName(visible) {
				decorations.Folders = append(decorations.Folders, payloadSpan)
			} else {
				decorations.Files = append(decorations.Files, payloadSpan)
			}
		}
		if hasComment {
			start := columns.PayloadStart + utf8.RuneCountInString(node.Text[:commentStart])
			decorations.Comments = append(decorations.Comments, types.Span{
				Line:  node.SourceLine,
				Start: start,
				End:   start + utf8.RuneCountInString(node.Text[commentStart:]),
			})
		}
	}
	return decorations
}

// SplitComment separates the visible name from a trailing comment. A comment starts at the
// first '#' that opens the text or follows whitespace. commentStart is a byte offset into text.
func SplitComment(text string) (visible string, commentStart int, hasComment bool) {
	previous := ' '
	for byteIndex, current := range text {
		if current == commentMarker && unicode.IsSpace(previous) {
			return strings.TrimRightFunc(text[:byteIndex], unicode.IsSpace), byteIndex, true
		}
		previous = current
	}
	return text, len(text), false
}

// IsFolderName reports whether a visible name ends with a path separator.
func IsFolderName(visible string) bool {
	return visible != "" && strings.ContainsAny(visible[len(visible)-1:], pathSeparators)
}
