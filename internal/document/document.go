// Package document splits text files into lines for the editor and joins them back with the
// original line endings.
package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/temirov/treetext/internal/types"
)

const (
	lineFeed               = "\n"
	carriageReturnLineFeed = "\r\n"
	carriageReturn         = "\r"

	readDocumentErrorFormat  = "read document %s: %w"
	statDocumentErrorFormat  = "stat document %s: %w"
	writeDocumentErrorFormat = "write document %s: %w"
	replacementRangeFormat   = "replacement %d-%d is outside a document of %d lines"
)

// Document is a text file held as lines without their terminators. Endings keeps the terminator
// of every line so files mixing line endings are written back byte for byte.
type Document struct {
	Lines        []string
	Endings      []string
	LineEnding   string
	FinalNewline bool
}

// Parse splits text into lines. The first line break decides the line ending given to new lines.
func Parse(text string) Document {
	document := Document{LineEnding: lineFeed}
	if text == "" {
		return document
	}
	if firstBreak := strings.Index(text, lineFeed); firstBreak > 0 && text[firstBreak-1] == '\r' {
		document.LineEnding = carriageReturnLineFeed
	}
	document.FinalNewline = strings.HasSuffix(text, lineFeed)
	rawLines := strings.Split(text, lineFeed)
	if document.FinalNewline {
		rawLines = rawLines[:len(rawLines)-1]
	}
	document.Lines = make([]string, len(rawLines))
	document.Endings = make([]string, len(rawLines))
	for lineIndex, rawLine := range rawLines {
		ending := lineFeed
		if strings.HasSuffix(rawLine, carriageReturn) {
			ending = carriageReturnLineFeed
		}
		if lineIndex == len(rawLines)-1 && !document.FinalNewline {
			ending = ""
		}
		document.Lines[lineIndex] = strings.TrimSuffix(rawLine, carriageReturn)
		document.Endings[lineIndex] = ending
	}
	return document
}

// String joins the lines back with their own endings.
func (document Document) String() string {
	if len(document.Lines) == 0 {
		return ""
	}
	if len(document.Endings) != len(document.Lines) {
		joined := strings.Join(document.Lines, document.LineEnding)
		if document.FinalNewline {
			joined += document.LineEnding
		}
		return joined
	}
	var builder strings.Builder
	for lineIndex, line := range document.Lines {
		builder.WriteString(line)
		builder.WriteString(document.Endings[lineIndex])
	}
	return builder.String()
}

// ApplyReplacement swaps the lines of replacement.Block for replacement.Lines. Replacement lines
// keep the endings of the lines they overwrite; extra lines take the ending of the line before
// them, and the last one keeps the ending of the block's last line.
func (document Document) ApplyReplacement(replacement types.Replacement) (Document, error) {
	block := replacement.Block
	if block.Start < 0 || block.End < block.Start || block.End >= len(document.Lines) {
		return document, fmt.Errorf(replacementRangeFormat, block.Start, block.End, len(document.Lines))
	}
	endings := document.lineEndings()
	size := len(document.Lines) - block.Len() + len(replacement.Lines)

	lines := make([]string, 0, size)
	lines = append(lines, document.Lines[:block.Start]...)
	lines = append(lines, replacement.Lines...)
	lines = append(lines, document.Lines[block.End+1:]...)

	updatedEndings := make([]string, 0, size)
	updatedEndings = append(updatedEndings, endings[:block.Start]...)
	updatedEndings = append(updatedEndings, document.replacementEndings(endings[block.Start:block.End+1], len(replacement.Lines))...)
	updatedEndings = append(updatedEndings, endings[block.End+1:]...)

	document.Lines = lines
	document.Endings = updatedEndings
	return document, nil
}

func (document Document) replacementEndings(blockEndings []string, count int) []string {
	endings := make([]string, count)
	for lineIndex := range endings {
		var ending string
		switch {
		case lineIndex == count-1:
			ending = blockEndings[len(blockEndings)-1]
		case lineIndex < len(blockEndings)-1:
			ending = blockEndings[lineIndex]
		case lineIndex > 0:
			ending = endings[lineIndex-1]
		default:
			ending = blockEndings[0]
		}
		if ending == "" && lineIndex != count-1 {
			ending = document.LineEnding
		}
		endings[lineIndex] = ending
	}
	return endings
}

// lineEndings returns one terminator per line, deriving them for documents built without Parse.
func (document Document) lineEndings() []string {
	if len(document.Endings) == len(document.Lines) {
		return document.Endings
	}
	endings := make([]string, len(document.Lines))
	for lineIndex := range endings {
		endings[lineIndex] = document.LineEnding
	}
	if len(endings) > 0 && !document.FinalNewline {
		endings[len(endings)-1] = ""
	}
	return endings
}

// ApplyLineChanges rewrites individual lines. Changes past the end of the document are ignored.
func (document Document) ApplyLineChanges(changes []types.LineChange) Document {
	if len(changes) == 0 {
		return document
	}
	lines := append([]string(nil), document.Lines...)
	for _, change := range changes {
		if change.Line >= 0 && change.Line < len(lines) {
			lines[change.Line] = change.Text
		}
	}
	document.Lines = lines
	return document
}

// ReadFile loads and parses the document at path.
func ReadFile(path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf(readDocumentErrorFormat, path, err)
	}
	return Parse(string(content)), nil
}

// WriteFile stores document at path keeping the existing file mode.
func WriteFile(path string, document Document) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf(statDocumentErrorFormat, path, err)
	}
	if err := os.WriteFile(path, []byte(document.String()), info.Mode().Perm()); err != nil {
		return fmt.Errorf(writeDocumentErrorFormat, path, err)
	}
	return nil
}
