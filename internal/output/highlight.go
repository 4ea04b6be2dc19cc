package output

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/treetext/internal/types"
)

// Palette holds one style per decoration bucket.
type Palette struct {
	Prefix  lipgloss.Style
	Folder  lipgloss.Style
	File    lipgloss.Style
	Comment lipgloss.Style
}

// DefaultPalette mirrors the usual file-tree colouring: muted prefixes, bold folders.
func DefaultPalette() Palette {
	return Palette{
		Prefix:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "240"}),
		Folder:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "75"}),
		File:    lipgloss.NewStyle(),
		Comment: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"}),
	}
}

type paintedSpan struct {
	span  types.Span
	style lipgloss.Style
}

// Highlight paints every decorated span of lines and returns the painted lines.
// Lines without decorations are returned unchanged.
func Highlight(lines []string, decorations types.Decorations, palette Palette) []string {
	spansByLine := map[int][]paintedSpan{}
	collect := func(spans []types.Span, style lipgloss.Style) {
		for _, span := range spans {
			spansByLine[span.Line] = append(spansByLine[span.Line], paintedSpan{span: span, style: style})
		}
	}
	collect(decorations.Prefixes, palette.Prefix)
	collect(decorations.Folders, palette.Folder)
	collect(decorations.Files, palette.File)
	collect(decorations.Comments, palette.Comment)

	painted := make([]string, len(lines))
	copy(painted, lines)
	for lineIndex, spans := range spansByLine {
		if lineIndex < 0 || lineIndex >= len(lines) {
			continue
		}
		painted[lineIndex] = paintLine(lines[lineIndex], spans)
	}
	return painted
}

func paintLine(line string, spans []paintedSpan) string {
	sort.Slice(spans, func(left, right int) bool {
		return spans[left].span.Start < spans[right].span.Start
	})
	runes := []rune(line)
	var lineBuilder strings.Builder
	cursor := 0
	for _, painted := range spans {
		start := clamp(painted.span.Start, cursor, len(runes))
		end := clamp(painted.span.End, start, len(runes))
		lineBuilder.WriteString(string(runes[cursor:start]))
		if end > start {
			lineBuilder.WriteString(painted.style.Render(string(runes[start:end])))
		}
		cursor = end
	}
	lineBuilder.WriteString(string(runes[cursor:]))
	return lineBuilder.String()
}

func clamp(value int, lower int, upper int) int {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
