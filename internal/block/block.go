// Package block finds contiguous runs of tree lines inside a document.
package block

import (
	"path/filepath"
	"strings"

	"github.com/temirov/treetext/internal/treeline"
	"github.com/temirov/treetext/internal/types"
)

var markdownExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
	".mdx":      {},
}

// KindForPath picks the document shape from a file name.
// Markdown files only carry trees inside fenced regions.
func KindForPath(path string) string {
	if _, isMarkdown := markdownExtensions[strings.ToLower(filepath.Ext(path))]; isMarkdown {
		return types.KindMarkdown
	}
	return types.KindTree
}

// Find returns the maximal block of tree lines containing the line at around.
func Find(lines []string, around int) (types.Block, bool) {
	if len(lines) == 0 {
		return types.Block{}, false
	}
	return FindWithin(lines, around, types.Block{Start: 0, End: len(lines) - 1})
}

// FindWithin behaves like Find but never expands past window.
func FindWithin(lines []string, around int, window types.Block) (types.Block, bool) {
	window = clampWindow(window, len(lines))
	if !window.Contains(around) || !treeline.IsTreeLine(lines[around]) {
		return types.Block{}, false
	}
	start := around
	for start > window.Start && treeline.IsTreeLine(lines[start-1]) {
		start--
	}
	end := around
	for end < window.End && treeline.IsTreeLine(lines[end+1]) {
		end++
	}
	return types.Block{Start: start, End: end}, true
}

// FindInRange scans forward through [start, end] and collects every maximal run of tree lines.
func FindInRange(lines []string, start int, end int) []types.Block {
	window := clampWindow(types.Block{Start: start, End: end}, len(lines))
	var blocks []types.Block
	lineIndex := window.Start
	for lineIndex <= window.End {
		if !treeline.IsTreeLine(lines[lineIndex]) {
			lineIndex++
			continue
		}
		runStart := lineIndex
		for lineIndex+1 <= window.End && treeline.IsTreeLine(lines[lineIndex+1]) {
			lineIndex++
		}
		blocks = append(blocks, types.Block{Start: runStart, End: lineIndex})
		lineIndex++
	}
	return blocks
}

// Scan returns every block of a document of the given kind.
func Scan(lines []string, kind string) []types.Block {
	if kind != types.KindMarkdown {
		return FindInRange(lines, 0, len(lines)-1)
	}
	var blocks []types.Block
	for _, region := range FencedRegions(lines) {
		blocks = append(blocks, FindInRange(lines, region.Start, region.End)...)
	}
	return blocks
}

// Locate is the kind-aware form of Find. In markdown documents the line must sit inside a tree fence.
func Locate(lines []string, around int, kind string) (types.Block, bool) {
	if kind != types.KindMarkdown {
		return Find(lines, around)
	}
	for _, region := range FencedRegions(lines) {
		if region.Contains(around) {
			return FindWithin(lines, around, region)
		}
	}
	return types.Block{}, false
}

func clampWindow(window types.Block, lineCount int) types.Block {
	if window.Start < 0 {
		window.Start = 0
	}
	if window.End > lineCount-1 {
		window.End = lineCount - 1
	}
	return window
}
