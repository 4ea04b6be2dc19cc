package editor

import (
	"unicode/utf8"

	"github.com/temirov/treetext/internal/block"
	"github.com/temirov/treetext/internal/output"
	"github.com/temirov/treetext/internal/treeline"
	"github.com/temirov/treetext/internal/treemodel"
	"github.com/temirov/treetext/internal/types"
)

// Options configures how edits locate blocks and render them.
type Options struct {
	Style                       string
	Kind                        string
	IndentSubtreeOnSingleCursor bool
}

// DefaultOptions returns the Unicode style, standalone documents and subtree indentation.
func DefaultOptions() Options {
	return Options{
		Style:                       types.StyleUnicode,
		Kind:                        types.KindTree,
		IndentSubtreeOnSingleCursor: true,
	}
}

// Indent moves the selected nodes one level deeper.
// The boolean result is false when the selection is not on a tree line and the host should
// fall back to its default behaviour.
func Indent(lines []string, selection types.Selection, options Options) (types.Replacement, bool) {
	return ShiftSelection(lines, selection, 1, options)
}

// Outdent moves the selected nodes one level up.
func Outdent(lines []string, selection types.Selection, options Options) (types.Replacement, bool) {
	return ShiftSelection(lines, selection, -1, options)
}

// ShiftSelection applies Shift to the nodes under selection and re-renders the whole block.
func ShiftSelection(lines []string, selection types.Selection, delta int, options Options) (types.Replacement, bool) {
	selection = selection.Normalized()
	treeBlock, ok := block.Locate(lines, selection.Start.Line, options.Kind)
	if !ok {
		return types.Replacement{}, false
	}
	nodes := treemodel.ParseBlock(lines, treeBlock)

	lastLine := selection.End.Line
	if lastLine > selection.Start.Line && selection.End.Character == 0 {
		lastLine--
	}
	var selected []int
	for nodeIndex, node := range nodes {
		if node.SourceLine >= selection.Start.Line && node.SourceLine <= lastLine {
			selected = append(selected, nodeIndex)
		}
	}
	if len(selected) == 0 {
		return types.Replacement{}, false
	}

	includeSubtree := len(selected) > 1 || options.IndentSubtreeOnSingleCursor
	shifted := Shift(nodes, Targets(nodes, selected, includeSubtree), delta)
	return types.Replacement{
		Block: treeBlock,
		Lines: output.FormatNodes(shifted, options.Style),
	}, true
}

// Insert adds an empty sibling next to the node under cursor.
//
// A cursor between the branch marker and the payload inserts the sibling above the node;
// anywhere else it goes after the node's subtree. The returned position is the end of the
// rendered line of the new node.
func Insert(lines []string, cursor types.Position, options Options) (types.Replacement, types.Position, bool) {
	if cursor.Line < 0 || cursor.Line >= len(lines) {
		return types.Replacement{}, types.Position{}, false
	}
	columns, ok := treeline.LineColumns(lines[cursor.Line])
	if !ok {
		return types.Replacement{}, types.Position{}, false
	}
	before := cursor.Character >= columns.MarkerEnd && cursor.Character < columns.PayloadStart
	return InsertAt(lines, cursor.Line, before, options)
}

// InsertAt adds an empty sibling of the node on line, above it when before is set and after
// its subtree otherwise.
func InsertAt(lines []string, line int, before bool, options Options) (types.Replacement, types.Position, bool) {
	treeBlock, ok := block.Locate(lines, line, options.Kind)
	if !ok {
		return types.Replacement{}, types.Position{}, false
	}
	nodes := treemodel.ParseBlock(lines, treeBlock)
	nodeIndex, ok := treemodel.NodeAtLine(nodes, line)
	if !ok {
		return types.Replacement{}, types.Position{}, false
	}

	inserted, insertedIndex := InsertSibling(nodes, nodeIndex, before)
	rendered := output.FormatNodes(inserted, options.Style)
	position := types.Position{
		Line:      treeBlock.Start + insertedIndex,
		Character: utf8.RuneCountInString(rendered[insertedIndex]),
	}
	return types.Replacement{Block: treeBlock, Lines: rendered}, position, true
}

// Normalize re-renders every block of the document and reports the lines whose text changes.
// Changes are keyed by the source line of each node, so lines the parser skipped stay untouched.
func Normalize(lines []string, options Options) []types.LineChange {
	var changes []types.LineChange
	for _, treeBlock := range block.Scan(lines, options.Kind) {
		nodes := treemodel.ParseBlock(lines, treeBlock)
		rendered := output.FormatNodes(nodes, options.Style)
		for nodeIndex, node := range nodes {
			if lines[node.SourceLine] != rendered[nodeIndex] {
				changes = append(changes, types.LineChange{Line: node.SourceLine, Text: rendered[nodeIndex]})
			}
		}
	}
	return changes
}
