package block

import (
	"sort"
	"strings"

	"github.com/temirov/treetext/internal/types"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	treeLanguageTag        = "tree"
	backtickFence          = '`'
	tildeFence             = '~'
	maximumFenceIndent     = 3
	fenceIndentCharacter   = " "
	fenceTrailingCharacter = " \t"
)

// FencedRegions returns the content lines of every fenced code block tagged as tree.
// Fence lines are never part of a region and empty fences yield nothing. A fence that is never
// closed, or that opens inside a list item, block quote or indentation, yields no region.
func FencedRegions(lines []string) []types.Block {
	if len(lines) == 0 {
		return nil
	}
	source := []byte(strings.Join(lines, "\n"))
	lineStarts := make([]int, len(lines))
	offset := 0
	for lineIndex, line := range lines {
		lineStarts[lineIndex] = offset
		offset += len(line) + 1
	}

	document := goldmark.New().Parser().Parse(text.NewReader(source))

	var regions []types.Block
	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fencedBlock, isFenced := node.(*ast.FencedCodeBlock)
		if !isFenced {
			return ast.WalkContinue, nil
		}
		if !strings.EqualFold(string(fencedBlock.Language(source)), treeLanguageTag) {
			return ast.WalkSkipChildren, nil
		}
		contentLines := fencedBlock.Lines()
		if contentLines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		first := contentLines.At(0)
		last := contentLines.At(contentLines.Len() - 1)
		lastOffset := last.Stop - 1
		if lastOffset < last.Start {
			lastOffset = last.Start
		}
		region := types.Block{
			Start: lineAt(lineStarts, first.Start),
			End:   lineAt(lineStarts, lastOffset),
		}
		fenceCharacter, fenceLength, ok := openingFence(lines[lineAt(lineStarts, fencedBlock.Info.Segment.Start)])
		if !ok || region.End+1 >= len(lines) || !isClosingFence(lines[region.End+1], fenceCharacter, fenceLength) {
			return ast.WalkSkipChildren, nil
		}
		regions = append(regions, region)
		return ast.WalkSkipChildren, nil
	})
	return regions
}

// openingFence reports the fence character and run length of a fence starting in column zero.
func openingFence(line string) (byte, int, bool) {
	if line == "" || (line[0] != backtickFence && line[0] != tildeFence) {
		return 0, 0, false
	}
	return line[0], fenceRun(line, line[0]), true
}

func isClosingFence(line string, fenceCharacter byte, fenceLength int) bool {
	trimmed := strings.TrimLeft(line, fenceIndentCharacter)
	if len(line)-len(trimmed) > maximumFenceIndent {
		return false
	}
	run := fenceRun(trimmed, fenceCharacter)
	return run >= fenceLength && strings.Trim(trimmed[run:], fenceTrailingCharacter) == ""
}

func fenceRun(line string, fenceCharacter byte) int {
	run := 0
	for run < len(line) && line[run] == fenceCharacter {
		run++
	}
	return run
}

func lineAt(lineStarts []int, offset int) int {
	return sort.Search(len(lineStarts), func(index int) bool {
		return lineStarts[index] > offset
	}) - 1
}
