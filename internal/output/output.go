// Package output renders tree nodes back into prefixed text and encodes structure queries.
package output

import (
	"strings"

	"github.com/temirov/treetext/internal/treemodel"
	"github.com/temirov/treetext/internal/types"
)

const (
	unicodeBranchConnector = "├─ "
	unicodeLastConnector   = "└─ "
	unicodeBranchPadding   = "│  "
	unicodeLastPadding     = "   "

	asciiBranchConnector = "+-- "
	asciiLastConnector   = "`-- "
	asciiBranchPadding   = "|  "
	asciiLastPadding     = "   "
)

// Glyphs is the set of prefix pieces used to draw one visual style.
type Glyphs struct {
	BranchConnector string
	LastConnector   string
	BranchPadding   string
	LastPadding     string
}

// GlyphsForStyle returns the glyph set of style, falling back to Unicode for unknown names.
func GlyphsForStyle(style string) Glyphs {
	if style == types.StyleASCII {
		return Glyphs{
			BranchConnector: asciiBranchConnector,
			LastConnector:   asciiLastConnector,
			BranchPadding:   asciiBranchPadding,
			LastPadding:     asciiLastPadding,
		}
	}
	return Glyphs{
		BranchConnector: unicodeBranchConnector,
		LastConnector:   unicodeLastConnector,
		BranchPadding:   unicodeBranchPadding,
		LastPadding:     unicodeLastPadding,
	}
}

// IsSupportedStyle reports whether style names a known glyph set.
func IsSupportedStyle(style string) bool {
	switch style {
	case types.StyleUnicode, types.StyleASCII:
		return true
	default:
		return false
	}
}

// FormatNodes renders one line per node. The original prefix text is never consulted.
func FormatNodes(nodes []types.Node, style string) []string {
	glyphs := GlyphsForStyle(style)
	isLast := treemodel.ComputeIsLast(nodes)

	// ancestorIsLast[level] tracks the most recent node seen at that level. Deeper levels are
	// kept when a shallower node is rendered, so a later depth jump reuses them.
	var ancestorIsLast []bool
	rendered := make([]string, len(nodes))
	for nodeIndex, node := range nodes {
		depth := node.Depth
		if depth < 0 {
			depth = 0
		}
		var lineBuilder strings.Builder
		for level := 0; level < depth; level++ {
			if level < len(ancestorIsLast) && ancestorIsLast[level] {
				lineBuilder.WriteString(glyphs.LastPadding)
			} else {
				lineBuilder.WriteString(glyphs.BranchPadding)
			}
		}
		if isLast[nodeIndex] {
			lineBuilder.WriteString(glyphs.LastConnector)
		} else {
			lineBuilder.WriteString(glyphs.BranchConnector)
		}
		lineBuilder.WriteString(node.Text)
		rendered[nodeIndex] = lineBuilder.String()

		for len(ancestorIsLast) <= depth {
			ancestorIsLast = append(ancestorIsLast, false)
		}
		ancestorIsLast[depth] = isLast[nodeIndex]
	}
	return rendered
}
