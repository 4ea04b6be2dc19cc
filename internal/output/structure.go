package output

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/temirov/treetext/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader = xml.Header

	blockLineFormat   = "block %d-%d\n"
	foldingLineFormat = "fold %d-%d\n"
	spanLineFormat    = "%s %d:%d-%d\n"

	prefixSpanLabel  = "prefix"
	folderSpanLabel  = "folder"
	fileSpanLabel    = "file"
	commentSpanLabel = "comment"

	pathHeaderFormat = "--- %s ---\n"
)

// RenderStructureRaw returns a line-oriented listing of blocks, folding ranges and spans.
func RenderStructureRaw(data types.StructureOutput) string {
	var buffer bytes.Buffer
	if data.Path != "" {
		fmt.Fprintf(&buffer, pathHeaderFormat, data.Path)
	}
	for _, treeBlock := range data.Blocks {
		fmt.Fprintf(&buffer, blockLineFormat, treeBlock.Start, treeBlock.End)
	}
	for _, foldingRange := range data.Folding {
		fmt.Fprintf(&buffer, foldingLineFormat, foldingRange.StartLine, foldingRange.EndLine)
	}
	writeSpans(&buffer, prefixSpanLabel, data.Decorations.Prefixes)
	writeSpans(&buffer, folderSpanLabel, data.Decorations.Folders)
	writeSpans(&buffer, fileSpanLabel, data.Decorations.Files)
	writeSpans(&buffer, commentSpanLabel, data.Decorations.Comments)
	return buffer.String()
}

// RenderStructureJSON marshals structure results as a JSON array.
func RenderStructureJSON(data []types.StructureOutput) (string, error) {
	if data == nil {
		data = []types.StructureOutput{}
	}
	encoded, jsonEncodeError := json.MarshalIndent(data, indentPrefix, indentSpacer)
	return string(encoded), jsonEncodeError
}

// RenderStructureXML marshals structure results as an XML document.
func RenderStructureXML(data []types.StructureOutput) (string, error) {
	wrapper := struct {
		XMLName    xml.Name                `xml:"results"`
		Structures []types.StructureOutput `xml:"structure"`
	}{Structures: data}
	encoded, xmlMarshalError := xml.MarshalIndent(wrapper, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return "", xmlMarshalError
	}
	return xmlHeader + string(encoded), nil
}

// RenderStructure dispatches on format.
func RenderStructure(format string, data []types.StructureOutput) (string, error) {
	switch format {
	case types.FormatJSON:
		return RenderStructureJSON(data)
	case types.FormatXML:
		return RenderStructureXML(data)
	case types.FormatRaw:
		var buffer bytes.Buffer
		for index, structure := range data {
			if index > 0 {
				buffer.WriteString("\n")
			}
			buffer.WriteString(RenderStructureRaw(structure))
		}
		return buffer.String(), nil
	default:
		return "", fmt.Errorf(unsupportedFormatMessage, format)
	}
}

// IsSupportedFormat reports whether format names a structure encoding.
func IsSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

const unsupportedFormatMessage = "unsupported output format '%s'"

func writeSpans(buffer *bytes.Buffer, label string, spans []types.Span) {
	for _, span := range spans {
		fmt.Fprintf(buffer, spanLineFormat, label, span.Line, span.Start, span.End)
	}
}
