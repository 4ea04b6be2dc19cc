package types

import (
	"encoding/xml"
	"time"
)

// StreamSchemaVersion is stamped on every event of a batch format run.
const StreamSchemaVersion = 1

// EventKind names the payload carried by an Event.
type EventKind string

const (
	EventKindStart   EventKind = "start"
	EventKindFile    EventKind = "file"
	EventKindWarning EventKind = "warning"
	EventKindSummary EventKind = "summary"
	EventKindDone    EventKind = "done"
)

// Event is one step of a batch format run, produced by the stream service and consumed by renderers.
type Event struct {
	XMLName   xml.Name  `json:"-" xml:"event"`
	Version   int       `json:"version" xml:"version,attr"`
	Kind      EventKind `json:"kind" xml:"kind,attr"`
	Command   string    `json:"command,omitempty" xml:"command,attr,omitempty"`
	Path      string    `json:"path,omitempty" xml:"path,attr,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty" xml:"emittedAt,attr,omitempty"`

	File    *FileEvent    `json:"file,omitempty" xml:"file,omitempty"`
	Summary *SummaryEvent `json:"summary,omitempty" xml:"summary,omitempty"`
	Message *LogEvent     `json:"message,omitempty" xml:"message,omitempty"`
}

// FileEvent reports the normalization of one document.
type FileEvent struct {
	Path      string       `json:"path" xml:"path,attr"`
	Kind      string       `json:"kind" xml:"kind,attr"`
	Blocks    int          `json:"blocks" xml:"blocks,attr"`
	Written   bool         `json:"written" xml:"written,attr"`
	Changes   []LineChange `json:"changes" xml:"changes>change"`
	Formatted string       `json:"formatted,omitempty" xml:"formatted,omitempty"`
}

// Changed reports whether normalization rewrote any line.
func (file FileEvent) Changed() bool {
	return len(file.Changes) > 0
}

// SummaryEvent totals a batch run.
type SummaryEvent struct {
	Files        int `json:"files" xml:"files,attr"`
	ChangedFiles int `json:"changedFiles" xml:"changedFiles,attr"`
	ChangedLines int `json:"changedLines" xml:"changedLines,attr"`
}

// LogEvent carries a warning about a document that could not be processed.
type LogEvent struct {
	Level   string `json:"level,omitempty" xml:"level,attr,omitempty"`
	Message string `json:"message" xml:",chardata"`
}
