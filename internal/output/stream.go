package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/temirov/treetext/internal/types"
)

const (
	listedPathFormat   = "%s\n"
	rawSummaryFormat   = "%d of %d documents changed, %d lines rewritten\n"
	jsonStreamDocument = "documents"
)

// StreamRenderer consumes the events of a batch format run.
type StreamRenderer interface {
	Handle(event types.Event) error
	Flush() error
}

// RawStreamOptions tunes the plain text renderer.
type RawStreamOptions struct {
	// ShowHeaders prints a path header before each document.
	ShowHeaders bool
	// ListOnly prints the paths of changed documents instead of their text.
	ListOnly bool
	// IncludeSummary prints a totals line on Flush.
	IncludeSummary bool
}

// NewStreamRenderer selects the renderer for format.
func NewStreamRenderer(format string, stdout, stderr io.Writer, rawOptions RawStreamOptions) (StreamRenderer, error) {
	switch format {
	case types.FormatRaw:
		return NewRawStreamRenderer(stdout, stderr, rawOptions), nil
	case types.FormatJSON:
		return NewJSONStreamRenderer(stdout, stderr), nil
	case types.FormatXML:
		return NewXMLStreamRenderer(stdout, stderr), nil
	default:
		return nil, fmt.Errorf(unsupportedFormatMessage, format)
	}
}

type rawStreamRenderer struct {
	stdout  io.Writer
	stderr  io.Writer
	options RawStreamOptions
	summary types.SummaryEvent
}

// NewRawStreamRenderer writes formatted documents, or changed paths, as plain text.
func NewRawStreamRenderer(stdout, stderr io.Writer, options RawStreamOptions) StreamRenderer {
	return &rawStreamRenderer{stdout: stdout, stderr: stderr, options: options}
}

func (renderer *rawStreamRenderer) Handle(event types.Event) error {
	switch event.Kind {
	case types.EventKindWarning:
		return writeWarning(renderer.stderr, event)
	case types.EventKindFile:
		return renderer.handleFile(event.File)
	case types.EventKindSummary:
		if event.Summary != nil {
			renderer.summary = *event.Summary
		}
	}
	return nil
}

func (renderer *rawStreamRenderer) handleFile(file *types.FileEvent) error {
	if renderer.stdout == nil || file == nil {
		return nil
	}
	if renderer.options.ListOnly {
		if !file.Changed() {
			return nil
		}
		_, err := fmt.Fprintf(renderer.stdout, listedPathFormat, file.Path)
		return err
	}
	if renderer.options.ShowHeaders {
		if _, err := fmt.Fprintf(renderer.stdout, pathHeaderFormat, file.Path); err != nil {
			return err
		}
	}
	text := file.Formatted
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(renderer.stdout, text)
	return err
}

func (renderer *rawStreamRenderer) Flush() error {
	if !renderer.options.IncludeSummary || renderer.stderr == nil {
		return nil
	}
	_, err := fmt.Fprintf(renderer.stderr, rawSummaryFormat, renderer.summary.ChangedFiles, renderer.summary.Files, renderer.summary.ChangedLines)
	return err
}

type jsonStreamRenderer struct {
	stdout    io.Writer
	stderr    io.Writer
	documents []types.FileEvent
	summary   *types.SummaryEvent
}

// NewJSONStreamRenderer collects file events and writes one JSON object on Flush.
func NewJSONStreamRenderer(stdout, stderr io.Writer) StreamRenderer {
	return &jsonStreamRenderer{stdout: stdout, stderr: stderr, documents: []types.FileEvent{}}
}

func (renderer *jsonStreamRenderer) Handle(event types.Event) error {
	switch event.Kind {
	case types.EventKindWarning:
		return writeWarning(renderer.stderr, event)
	case types.EventKindFile:
		if event.File != nil {
			document := *event.File
			if document.Changes == nil {
				document.Changes = []types.LineChange{}
			}
			renderer.documents = append(renderer.documents, document)
		}
	case types.EventKindSummary:
		renderer.summary = event.Summary
	}
	return nil
}

func (renderer *jsonStreamRenderer) Flush() error {
	if renderer.stdout == nil {
		return nil
	}
	payload := map[string]interface{}{jsonStreamDocument: renderer.documents}
	if renderer.summary != nil {
		payload["summary"] = renderer.summary
	}
	encoded, err := json.MarshalIndent(payload, indentPrefix, indentSpacer)
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')
	_, err = renderer.stdout.Write(encoded)
	return err
}

func writeWarning(stderr io.Writer, event types.Event) error {
	if event.Message == nil || stderr == nil {
		return nil
	}
	_, err := fmt.Fprintln(stderr, event.Message.Message)
	return err
}
