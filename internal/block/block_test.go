package block

import (
	"reflect"
	"strings"
	"testing"

	"github.com/temirov/treetext/internal/types"
)

var mixedDocument = []string{
	"Project layout:",
	"├─ cmd",
	"│  └─ main.go",
	"└─ internal",
	"",
	"+-- second",
	"`-- tree",
	"trailing prose",
}

func TestFind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		around        int
		expectedOK    bool
		expectedBlock types.Block
	}{
		{name: "first_line_of_block", around: 1, expectedOK: true, expectedBlock: types.Block{Start: 1, End: 3}},
		{name: "middle_line_of_block", around: 2, expectedOK: true, expectedBlock: types.Block{Start: 1, End: 3}},
		{name: "ascii_block", around: 6, expectedOK: true, expectedBlock: types.Block{Start: 5, End: 6}},
		{name: "prose_line", around: 0, expectedOK: false},
		{name: "blank_line", around: 4, expectedOK: false},
		{name: "out_of_range", around: 42, expectedOK: false},
		{name: "negative_index", around: -1, expectedOK: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			found, ok := Find(mixedDocument, testCase.around)
			if ok != testCase.expectedOK {
				t.Fatalf("Find(%d) ok = %t, expected %t", testCase.around, ok, testCase.expectedOK)
			}
			if ok && found != testCase.expectedBlock {
				t.Fatalf("Find(%d) = %+v, expected %+v", testCase.around, found, testCase.expectedBlock)
			}
		})
	}
}

func TestFindInRange(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		start    int
		end      int
		expected []types.Block
	}{
		{name: "whole_document", start: 0, end: len(mixedDocument) - 1, expected: []types.Block{{Start: 1, End: 3}, {Start: 5, End: 6}}},
		{name: "window_cuts_block", start: 2, end: 5, expected: []types.Block{{Start: 2, End: 3}, {Start: 5, End: 5}}},
		{name: "window_beyond_document", start: -3, end: 100, expected: []types.Block{{Start: 1, End: 3}, {Start: 5, End: 6}}},
		{name: "prose_only", start: 7, end: 7, expected: nil},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			actual := FindInRange(mixedDocument, testCase.start, testCase.end)
			if !reflect.DeepEqual(actual, testCase.expected) {
				t.Fatalf("FindInRange(%d, %d) = %+v, expected %+v", testCase.start, testCase.end, actual, testCase.expected)
			}
		})
	}
}

func TestFencedRegions(t *testing.T) {
	t.Parallel()

	lines := []string{
		"# Layout",
		"",
		"```tree",
		"├─ cmd",
		"└─ internal",
		"```",
		"",
		"```go",
		"├─ not a tree fence",
		"```",
		"",
		"````TREE extra info",
		"+-- ascii",
		"```",
		"`-- still inside",
		"````",
		"",
		"```tree",
		"```",
	}

	expected := []types.Block{{Start: 3, End: 4}, {Start: 12, End: 14}}
	actual := FencedRegions(lines)
	if !reflect.DeepEqual(actual, expected) {
		t.Fatalf("FencedRegions = %+v, expected %+v", actual, expected)
	}
}

func TestFencedRegionsSkipsUnusableFences(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		text     string
		expected []types.Block
	}{
		{
			name: "unclosed_fence_runs_to_end",
			text: "```tree\n├─ a\n└─ b\n\n├─ tail",
		},
		{
			name: "closing_fence_too_short",
			text: "````tree\n├─ a\n```",
		},
		{
			name:     "closing_fence_with_indent_and_trailing_space",
			text:     "~~~tree\n├─ a\n└─ b\n  ~~~~ \nafter",
			expected: []types.Block{{Start: 1, End: 2}},
		},
		{
			name: "fence_inside_list_item",
			text: "- item\n\n  ```tree\n  ├─ a\n  ```",
		},
		{
			name: "fence_inside_block_quote",
			text: "> ```tree\n> ├─ a\n> ```",
		},
		{
			name:     "unclosed_fence_after_closed_one",
			text:     "```tree\n├─ a\n```\n\n```tree\n├─ b",
			expected: []types.Block{{Start: 1, End: 1}},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			lines := strings.Split(testCase.text, "\n")
			actual := FencedRegions(lines)
			if !reflect.DeepEqual(actual, testCase.expected) {
				t.Fatalf("FencedRegions = %+v, expected %+v", actual, testCase.expected)
			}
			if testCase.expected == nil {
				if blocks := Scan(lines, types.KindMarkdown); len(blocks) != 0 {
					t.Fatalf("Scan markdown = %+v, expected no blocks", blocks)
				}
			}
		})
	}
}

func TestScanMarkdownNeverTouchesFenceLines(t *testing.T) {
	t.Parallel()

	lines := []string{
		"Intro ├─ looks like a tree but is prose",
		"```tree",
		"├─ a",
		"│  └─ b",
		"└─ c",
		"```",
		"└─ outside any fence",
	}

	blocks := Scan(lines, types.KindMarkdown)
	expected := []types.Block{{Start: 2, End: 4}}
	if !reflect.DeepEqual(blocks, expected) {
		t.Fatalf("Scan markdown = %+v, expected %+v", blocks, expected)
	}

	standalone := Scan(lines, types.KindTree)
	if len(standalone) != 3 {
		t.Fatalf("Scan tree found %d blocks, expected 3: %+v", len(standalone), standalone)
	}

	if _, ok := Locate(lines, 6, types.KindMarkdown); ok {
		t.Fatalf("Locate outside fence should not find a block")
	}
	located, ok := Locate(lines, 3, types.KindMarkdown)
	if !ok || located != (types.Block{Start: 2, End: 4}) {
		t.Fatalf("Locate inside fence = %+v, %t", located, ok)
	}
}

func TestKindForPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path     string
		expected string
	}{
		{path: "README.md", expected: types.KindMarkdown},
		{path: "docs/Guide.MARKDOWN", expected: types.KindMarkdown},
		{path: "layout.tree", expected: types.KindTree},
		{path: "notes.txt", expected: types.KindTree},
		{path: "-", expected: types.KindTree},
	}

	for _, testCase := range testCases {
		if actual := KindForPath(testCase.path); actual != testCase.expected {
			t.Fatalf("KindForPath(%q) = %q, expected %q", testCase.path, actual, testCase.expected)
		}
	}
}
