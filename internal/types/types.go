// Package types defines every cross-package data structure used by treetext.
package types

import "encoding/xml"

const (
	StyleUnicode = "unicode"
	StyleASCII   = "ascii"

	KindTree     = "tree"
	KindMarkdown = "markdown"

	CommandFormat    = "format"
	CommandIndent    = "indent"
	CommandOutdent   = "outdent"
	CommandInsert    = "insert"
	CommandStructure = "structure"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"

	// SyntheticLine marks a node that has no source line because an edit created it.
	SyntheticLine = -1
)

// Node is one parsed tree entry.
type Node struct {
	SourceLine int    `json:"sourceLine" xml:"sourceLine"`
	Depth      int    `json:"depth" xml:"depth"`
	Text       string `json:"text" xml:"text"`
}

// IsSynthetic reports whether the node was created by an edit rather than read from text.
func (node Node) IsSynthetic() bool {
	return node.SourceLine == SyntheticLine
}

// Block is an inclusive range of contiguous tree lines.
type Block struct {
	Start int `json:"start" xml:"start"`
	End   int `json:"end" xml:"end"`
}

// Contains reports whether line lies within the block.
func (block Block) Contains(line int) bool {
	return line >= block.Start && line <= block.End
}

// Len returns the number of source lines covered by the block.
func (block Block) Len() int {
	return block.End - block.Start + 1
}

// Position addresses a character within a line. Both fields are zero-based and Character counts runes.
type Position struct {
	Line      int `json:"line" xml:"line"`
	Character int `json:"character" xml:"character"`
}

// Selection is a caret range. An empty selection has Start equal to End.
type Selection struct {
	Start Position `json:"start" xml:"start"`
	End   Position `json:"end" xml:"end"`
}

// IsEmpty reports whether the selection is a bare cursor.
func (selection Selection) IsEmpty() bool {
	return selection.Start == selection.End
}

// Normalized returns the selection with Start ordered before End.
func (selection Selection) Normalized() Selection {
	if selection.End.Line < selection.Start.Line ||
		(selection.End.Line == selection.Start.Line && selection.End.Character < selection.Start.Character) {
		return Selection{Start: selection.End, End: selection.Start}
	}
	return selection
}

// Replacement replaces every line of Block with Lines as a single edit.
type Replacement struct {
	Block Block    `json:"block" xml:"block"`
	Lines []string `json:"lines" xml:"lines>line"`
}

// LineChange replaces the text of a single line.
type LineChange struct {
	Line int    `json:"line" xml:"line"`
	Text string `json:"text" xml:"text"`
}

// FoldingRange spans a node line and the last line of its subtree.
type FoldingRange struct {
	StartLine int `json:"startLine" xml:"startLine"`
	EndLine   int `json:"endLine" xml:"endLine"`
}

// Span is a half-open rune range [Start, End) on a single line.
type Span struct {
	Line  int `json:"line" xml:"line"`
	Start int `json:"start" xml:"start"`
	End   int `json:"end" xml:"end"`
}

// Decorations buckets spans by how a host is expected to paint them.
type Decorations struct {
	Prefixes []Span `json:"prefixes" xml:"prefixes>span"`
	Folders  []Span `json:"folders" xml:"folders>span"`
	Files    []Span `json:"files" xml:"files>span"`
	Comments []Span `json:"comments" xml:"comments>span"`
}

// StructureOutput is the answer to a structure query over a whole document.
type StructureOutput struct {
	XMLName     xml.Name       `json:"-" xml:"structure"`
	Path        string         `json:"path,omitempty" xml:"path,omitempty"`
	Blocks      []Block        `json:"blocks" xml:"blocks>block"`
	Folding     []FoldingRange `json:"folding" xml:"folding>range"`
	Decorations Decorations    `json:"decorations" xml:"decorations"`
}
