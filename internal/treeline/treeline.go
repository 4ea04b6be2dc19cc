// Package treeline classifies and parses single lines of tree notation.
//
// Classification is permissive and parsing is strict: a line accepted by
// IsTreeLine may still be rejected by ParseLine, and callers treat such lines
// as not being tree content.
package treeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// UnitWidth is the rune width of one ancestor column group.
	UnitWidth = 3

	unicodeBranchGlyphs = "│├└"
)

var (
	asciiTreeLinePattern   = regexp.MustCompile("^(?:\\|  |   )*(?:\\+--|`--)(?:\\s|$)")
	asciiColumnLinePattern = regexp.MustCompile("^(?:[| ][ \\t]{2})*[+`]--(?:\\s|$)")

	// Groups: 1 prefix, 2 marker, 3 separating spaces, 4 payload.
	unicodeLinePattern = regexp.MustCompile("^((?:│  |   )*)([├└][─━-]{1,2})(?:( +)(.*))?$")
	asciiLinePattern   = regexp.MustCompile("^((?:\\|  |   )*)([+`]--)(?:( +)(.*))?$")
)

// Parsed is the structural reading of one tree line.
type Parsed struct {
	Depth int
	Text  string
}

// Columns holds rune offsets inside a tree line.
type Columns struct {
	// MarkerEnd is the offset right after the branch marker.
	MarkerEnd int
	// PayloadStart is the offset of the first payload rune, after the separating spaces.
	PayloadStart int
}

// IsTreeLine reports whether line looks like part of a tree in either style.
func IsTreeLine(line string) bool {
	trimmed := trimTrailing(line)
	if trimmed == "" {
		return false
	}
	if strings.ContainsAny(trimmed, unicodeBranchGlyphs) {
		return true
	}
	return asciiTreeLinePattern.MatchString(trimmed) || asciiColumnLinePattern.MatchString(trimmed)
}

// ParseLine extracts depth and payload text, trying the Unicode grammar before the ASCII one.
func ParseLine(line string) (Parsed, bool) {
	trimmed := trimTrailing(line)
	submatches := match(trimmed)
	if submatches == nil {
		return Parsed{}, false
	}
	prefix := trimmed[submatches[2]:submatches[3]]
	text := ""
	if submatches[8] >= 0 {
		text = trimmed[submatches[8]:submatches[9]]
	}
	return Parsed{
		Depth: utf8.RuneCountInString(prefix) / UnitWidth,
		Text:  text,
	}, true
}

// LineColumns locates the end of the branch marker and the start of the payload on the raw line.
func LineColumns(line string) (Columns, bool) {
	raw := strings.TrimRight(line, "\r\n")
	submatches := match(trimTrailing(raw))
	if submatches == nil {
		return Columns{}, false
	}
	markerEndByte := submatches[5]
	rest := raw[markerEndByte:]
	spaceCount := len(rest) - len(strings.TrimLeft(rest, " "))
	markerEnd := utf8.RuneCountInString(raw[:markerEndByte])
	return Columns{MarkerEnd: markerEnd, PayloadStart: markerEnd + spaceCount}, true
}

func match(trimmed string) []int {
	if submatches := unicodeLinePattern.FindStringSubmatchIndex(trimmed); submatches != nil {
		return submatches
	}
	return asciiLinePattern.FindStringSubmatchIndex(trimmed)
}

func trimTrailing(line string) string {
	return strings.TrimRightFunc(line, unicode.IsSpace)
}
