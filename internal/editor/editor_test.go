package editor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/temirov/treetext/internal/treemodel"
	"github.com/temirov/treetext/internal/types"
)

func nodesWithDepths(depths ...int) []types.Node {
	nodes := make([]types.Node, len(depths))
	for index, depth := range depths {
		nodes[index] = types.Node{SourceLine: index, Depth: depth, Text: string(rune('A' + index))}
	}
	return nodes
}

func cursorAt(line int, character int) types.Selection {
	position := types.Position{Line: line, Character: character}
	return types.Selection{Start: position, End: position}
}

func TestShift(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		depths   []int
		targets  []int
		delta    int
		expected []int
	}{
		{name: "subtree_indent", depths: []int{0, 1, 2, 0}, targets: []int{0, 1, 2}, delta: 1, expected: []int{1, 2, 3, 0}},
		{name: "jump_prevented", depths: []int{0, 1}, targets: []int{1}, delta: 2, expected: []int{0, 1}},
		{name: "first_child_cannot_indent", depths: []int{0, 1}, targets: []int{1}, delta: 1, expected: []int{0, 1}},
		{name: "second_sibling_indents", depths: []int{0, 1, 1}, targets: []int{2}, delta: 1, expected: []int{0, 1, 2}},
		{name: "rejection_cascades_left_to_right", depths: []int{0, 0, 1}, targets: []int{2}, delta: 2, expected: []int{0, 0, 1}},
		{name: "resolved_predecessor_unblocks", depths: []int{0, 0, 0}, targets: []int{1, 2}, delta: 1, expected: []int{0, 1, 1}},
		{name: "outdent_clamps_at_zero", depths: []int{0, 1, 2}, targets: []int{0, 1, 2}, delta: -1, expected: []int{0, 0, 1}},
		{name: "outdent_only_targets", depths: []int{0, 1, 1}, targets: []int{2}, delta: -1, expected: []int{0, 1, 0}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			nodes := nodesWithDepths(testCase.depths...)
			shifted := Shift(nodes, testCase.targets, testCase.delta)
			if actual := treemodel.Depths(shifted); !reflect.DeepEqual(actual, testCase.expected) {
				t.Fatalf("Shift depths = %v, expected %v", actual, testCase.expected)
			}
			if !reflect.DeepEqual(treemodel.Depths(nodes), testCase.depths) {
				t.Fatalf("Shift mutated its input")
			}
		})
	}
}

func TestTargets(t *testing.T) {
	t.Parallel()

	nodes := nodesWithDepths(0, 1, 2, 0, 1)
	testCases := []struct {
		name           string
		selected       []int
		includeSubtree bool
		expected       []int
	}{
		{name: "single_with_subtree", selected: []int{0}, includeSubtree: true, expected: []int{0, 1, 2}},
		{name: "single_without_subtree", selected: []int{0}, includeSubtree: false, expected: []int{0}},
		{name: "overlapping_selection", selected: []int{1, 0}, includeSubtree: true, expected: []int{0, 1, 2}},
		{name: "leaf", selected: []int{4}, includeSubtree: true, expected: []int{4}},
		{name: "out_of_range_ignored", selected: []int{9}, includeSubtree: true, expected: []int{}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			if actual := Targets(nodes, testCase.selected, testCase.includeSubtree); !reflect.DeepEqual(actual, testCase.expected) {
				t.Fatalf("Targets = %v, expected %v", actual, testCase.expected)
			}
		})
	}
}

func TestInsertSibling(t *testing.T) {
	t.Parallel()

	nodes := nodesWithDepths(0, 1, 0)

	after, afterIndex := InsertSibling(nodes, 0, false)
	if afterIndex != 2 {
		t.Fatalf("insert after subtree index = %d, expected 2", afterIndex)
	}
	if !reflect.DeepEqual(treemodel.Depths(after), []int{0, 1, 0, 0}) || !after[2].IsSynthetic() || after[2].Text != "" {
		t.Fatalf("insert after = %+v", after)
	}

	before, beforeIndex := InsertSibling(nodes, 1, true)
	if beforeIndex != 1 || !reflect.DeepEqual(treemodel.Depths(before), []int{0, 1, 1, 0}) {
		t.Fatalf("insert before = %+v at %d", before, beforeIndex)
	}
}

func TestIndentReplacesWholeBlock(t *testing.T) {
	t.Parallel()

	lines := []string{
		"Layout",
		"├─ a",
		"├─ b",
		"│  └─ c",
		"└─ d",
		"",
	}

	replacement, handled := Indent(lines, cursorAt(2, 4), DefaultOptions())
	if !handled {
		t.Fatalf("expected indent to be handled")
	}
	expected := types.Replacement{
		Block: types.Block{Start: 1, End: 4},
		Lines: []string{
			"├─ a",
			"│  └─ b",
			"│     └─ c",
			"└─ d",
		},
	}
	if !reflect.DeepEqual(replacement, expected) {
		t.Fatalf("Indent = %#v, expected %#v", replacement, expected)
	}

	singleNode := DefaultOptions()
	singleNode.IndentSubtreeOnSingleCursor = false
	replacement, handled = Indent(lines, cursorAt(2, 4), singleNode)
	if !handled {
		t.Fatalf("expected indent to be handled")
	}
	expectedSingle := []string{
		"├─ a",
		"│  ├─ b",
		"│  └─ c",
		"└─ d",
	}
	if !reflect.DeepEqual(replacement.Lines, expectedSingle) {
		t.Fatalf("single-node Indent = %q, expected %q", replacement.Lines, expectedSingle)
	}
}

func TestOutdentMultiLineSelectionTakesSubtrees(t *testing.T) {
	t.Parallel()

	lines := []string{
		"├─ a",
		"│  ├─ b",
		"│  │  └─ c",
		"│  └─ d",
		"└─ e",
	}
	selection := types.Selection{
		Start: types.Position{Line: 1, Character: 0},
		End:   types.Position{Line: 4, Character: 0},
	}

	replacement, handled := Outdent(lines, selection, DefaultOptions())
	if !handled {
		t.Fatalf("expected outdent to be handled")
	}
	expected := []string{
		"├─ a",
		"├─ b",
		"│  └─ c",
		"├─ d",
		"└─ e",
	}
	if !reflect.DeepEqual(replacement.Lines, expected) {
		t.Fatalf("Outdent = %q, expected %q", replacement.Lines, expected)
	}
}

func TestEditsPassThroughOutsideTrees(t *testing.T) {
	t.Parallel()

	lines := []string{"plain text", "├─ a"}
	if _, handled := Indent(lines, cursorAt(0, 3), DefaultOptions()); handled {
		t.Fatalf("indent on prose should pass through")
	}
	if _, _, handled := Insert(lines, types.Position{Line: 0, Character: 0}, DefaultOptions()); handled {
		t.Fatalf("insert on prose should pass through")
	}
	if _, _, handled := Insert(lines, types.Position{Line: 7, Character: 0}, DefaultOptions()); handled {
		t.Fatalf("insert past the document should pass through")
	}

	misaligned := []string{"    ├─ classifier accepts, parser rejects"}
	if _, _, handled := Insert(misaligned, types.Position{Line: 0, Character: 10}, DefaultOptions()); handled {
		t.Fatalf("insert on an unparseable tree line should pass through")
	}
}

func TestInsert(t *testing.T) {
	t.Parallel()

	lines := []string{
		"├─ A",
		"│  └─ B",
		"└─ C",
	}

	testCases := []struct {
		name             string
		cursor           types.Position
		expectedLines    []string
		expectedPosition types.Position
	}{
		{
			name:   "payload_cursor_inserts_after_subtree",
			cursor: types.Position{Line: 0, Character: 4},
			expectedLines: []string{
				"├─ A",
				"│  └─ B",
				"├─ ",
				"└─ C",
			},
			expectedPosition: types.Position{Line: 2, Character: 3},
		},
		{
			name:   "prefix_cursor_inserts_before",
			cursor: types.Position{Line: 2, Character: 2},
			expectedLines: []string{
				"├─ A",
				"│  └─ B",
				"├─ ",
				"└─ C",
			},
			expectedPosition: types.Position{Line: 2, Character: 3},
		},
		{
			name:   "nested_before",
			cursor: types.Position{Line: 1, Character: 5},
			expectedLines: []string{
				"├─ A",
				"│  ├─ ",
				"│  └─ B",
				"└─ C",
			},
			expectedPosition: types.Position{Line: 1, Character: 6},
		},
		{
			name:   "ancestor_column_counts_as_elsewhere",
			cursor: types.Position{Line: 1, Character: 0},
			expectedLines: []string{
				"├─ A",
				"│  ├─ B",
				"│  └─ ",
				"└─ C",
			},
			expectedPosition: types.Position{Line: 2, Character: 6},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			replacement, position, handled := Insert(lines, testCase.cursor, DefaultOptions())
			if !handled {
				t.Fatalf("expected insert to be handled")
			}
			if !reflect.DeepEqual(replacement.Lines, testCase.expectedLines) {
				t.Fatalf("Insert lines = %q, expected %q", replacement.Lines, testCase.expectedLines)
			}
			if replacement.Block != (types.Block{Start: 0, End: 2}) {
				t.Fatalf("Insert block = %+v", replacement.Block)
			}
			if position != testCase.expectedPosition {
				t.Fatalf("Insert position = %+v, expected %+v", position, testCase.expectedPosition)
			}
		})
	}
}

func TestInsertAtMarkerOnlyLine(t *testing.T) {
	t.Parallel()

	lines := []string{
		"├─ a",
		"├─",
		"└─ c",
	}

	testCases := []struct {
		name             string
		before           bool
		expectedLines    []string
		expectedPosition types.Position
	}{
		{
			name:             "before",
			before:           true,
			expectedLines:    []string{"├─ a", "├─ ", "├─ ", "└─ c"},
			expectedPosition: types.Position{Line: 1, Character: 3},
		},
		{
			name:             "after",
			expectedLines:    []string{"├─ a", "├─ ", "├─ ", "└─ c"},
			expectedPosition: types.Position{Line: 2, Character: 3},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			replacement, position, handled := InsertAt(lines, 1, testCase.before, DefaultOptions())
			if !handled {
				t.Fatalf("expected insert to be handled")
			}
			if !reflect.DeepEqual(replacement.Lines, testCase.expectedLines) {
				t.Fatalf("InsertAt lines = %q, expected %q", replacement.Lines, testCase.expectedLines)
			}
			if position != testCase.expectedPosition {
				t.Fatalf("InsertAt position = %+v, expected %+v", position, testCase.expectedPosition)
			}
		})
	}

	if _, _, handled := InsertAt(lines, 7, true, DefaultOptions()); handled {
		t.Fatalf("line outside the document should not be handled")
	}
}

func TestInsertInsideMarkdownFence(t *testing.T) {
	t.Parallel()

	lines := []string{
		"```tree",
		"+-- a",
		"```",
	}
	options := DefaultOptions()
	options.Kind = types.KindMarkdown
	options.Style = types.StyleASCII

	replacement, position, handled := Insert(lines, types.Position{Line: 1, Character: 5}, options)
	if !handled {
		t.Fatalf("expected insert to be handled")
	}
	if replacement.Block != (types.Block{Start: 1, End: 1}) {
		t.Fatalf("block = %+v", replacement.Block)
	}
	if !reflect.DeepEqual(replacement.Lines, []string{"+-- a", "`-- "}) {
		t.Fatalf("lines = %q", replacement.Lines)
	}
	if position != (types.Position{Line: 2, Character: 4}) {
		t.Fatalf("position = %+v", position)
	}
}

func TestNormalizeReportsOnlyChangedLines(t *testing.T) {
	t.Parallel()

	lines := []string{
		"├── a",
		"│  └─ b",
		"├─ c",
		"text between",
		"+-- x",
		"+-- y",
	}
	changes := Normalize(lines, DefaultOptions())
	expected := []types.LineChange{
		{Line: 0, Text: "├─ a"},
		{Line: 2, Text: "└─ c"},
		{Line: 4, Text: "├─ x"},
		{Line: 5, Text: "└─ y"},
	}
	if !reflect.DeepEqual(changes, expected) {
		t.Fatalf("Normalize = %+v, expected %+v", changes, expected)
	}

	canonical := []string{"├─ a", "└─ b"}
	if changes := Normalize(canonical, DefaultOptions()); len(changes) != 0 {
		t.Fatalf("canonical document produced changes: %+v", changes)
	}
}

func TestSessionGuardAndHeuristic(t *testing.T) {
	t.Parallel()

	session := NewSession()
	if session.ShouldNormalize(Change{DocumentID: "doc", LineCount: 5}) {
		t.Fatalf("first observation should not trigger")
	}
	if session.ShouldNormalize(Change{DocumentID: "doc", LineCount: 7}) {
		t.Fatalf("growth should not trigger")
	}
	if !session.ShouldNormalize(Change{DocumentID: "doc", LineCount: 6}) {
		t.Fatalf("line count drop should trigger")
	}
	if !session.ShouldNormalize(Change{DocumentID: "doc", LineCount: 6, DeletedLineBreak: true}) {
		t.Fatalf("deleted line break should trigger")
	}

	effectError := errors.New("apply failed")
	applyError := session.Apply(context.Background(), func(ctx context.Context) error {
		if !session.Applying() {
			t.Fatalf("guard should be raised during the effect")
		}
		if session.ShouldNormalize(Change{DocumentID: "doc", LineCount: 2, DeletedLineBreak: true}) {
			t.Fatalf("self-inflicted change should not trigger")
		}
		return effectError
	})
	if !errors.Is(applyError, effectError) {
		t.Fatalf("Apply error = %v", applyError)
	}
	if session.Applying() {
		t.Fatalf("guard should be cleared after a failed effect")
	}
	if session.ShouldNormalize(Change{DocumentID: "doc", LineCount: 2}) {
		t.Fatalf("line count recorded during the effect should be the new baseline")
	}

	session.Forget("doc")
	if session.ShouldNormalize(Change{DocumentID: "doc", LineCount: 1}) {
		t.Fatalf("forgotten document should start fresh")
	}
}
