package output

import (
	"encoding/xml"
	"io"

	"github.com/temirov/treetext/internal/types"
)

const (
	xmlEventsOpen  = "<events>\n"
	xmlEventsClose = "</events>\n"
)

type xmlStreamRenderer struct {
	stdout  io.Writer
	stderr  io.Writer
	encoder *xml.Encoder
	started bool
}

// NewXMLStreamRenderer writes every event as it arrives inside an <events> root.
func NewXMLStreamRenderer(stdout, stderr io.Writer) StreamRenderer {
	return &xmlStreamRenderer{stdout: stdout, stderr: stderr}
}

func (renderer *xmlStreamRenderer) Handle(event types.Event) error {
	if event.Kind == types.EventKindWarning {
		if err := writeWarning(renderer.stderr, event); err != nil {
			return err
		}
	}
	if renderer.stdout == nil {
		return nil
	}
	if err := renderer.ensureEncoder(); err != nil {
		return err
	}
	if err := renderer.encoder.Encode(event); err != nil {
		return err
	}
	_, err := io.WriteString(renderer.stdout, "\n")
	return err
}

func (renderer *xmlStreamRenderer) Flush() error {
	if renderer.stdout == nil {
		return nil
	}
	if err := renderer.ensureEncoder(); err != nil {
		return err
	}
	if err := renderer.encoder.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(renderer.stdout, xmlEventsClose)
	return err
}

func (renderer *xmlStreamRenderer) ensureEncoder() error {
	if renderer.started {
		return nil
	}
	if _, err := io.WriteString(renderer.stdout, xmlHeader+xmlEventsOpen); err != nil {
		return err
	}
	renderer.encoder = xml.NewEncoder(renderer.stdout)
	renderer.encoder.Indent(indentSpacer, indentSpacer)
	renderer.started = true
	return nil
}
