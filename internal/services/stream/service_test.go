package stream_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/treetext/internal/services/stream"
	"github.com/temirov/treetext/internal/types"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func collectEvents(t *testing.T, produce func(chan<- types.Event) error) []types.Event {
	t.Helper()
	channel := make(chan types.Event)
	var events []types.Event
	done := make(chan struct{})
	go func() {
		for event := range channel {
			events = append(events, event)
		}
		close(done)
	}()
	err := produce(channel)
	close(channel)
	<-done
	if err != nil {
		t.Fatalf("producer error: %v", err)
	}
	return events
}

func TestStreamFormatEmitsEventsInArgumentOrder(t *testing.T) {
	root := t.TempDir()
	loosePath := filepath.Join(root, "b.tree")
	canonicalPath := filepath.Join(root, "a.tree")
	writeFile(t, loosePath, "├── a\n├── b\n")
	writeFile(t, canonicalPath, "├─ a\n└─ b\n")

	events := collectEvents(t, func(channel chan<- types.Event) error {
		return stream.StreamFormat(context.Background(), stream.FormatOptions{Paths: []string{loosePath, canonicalPath}}, channel)
	})

	var kinds []types.EventKind
	var files []*types.FileEvent
	var summary *types.SummaryEvent
	for _, event := range events {
		kinds = append(kinds, event.Kind)
		if event.Version != types.StreamSchemaVersion || event.Command != types.CommandFormat {
			t.Fatalf("unexpected envelope: %+v", event)
		}
		switch event.Kind {
		case types.EventKindFile:
			files = append(files, event.File)
		case types.EventKindSummary:
			summary = event.Summary
		}
	}
	expectedKinds := []types.EventKind{types.EventKindStart, types.EventKindFile, types.EventKindFile, types.EventKindSummary, types.EventKindDone}
	if !reflect.DeepEqual(kinds, expectedKinds) {
		t.Fatalf("kinds = %v, expected %v", kinds, expectedKinds)
	}
	if files[0].Path != loosePath || files[1].Path != canonicalPath {
		t.Fatalf("files out of order: %s, %s", files[0].Path, files[1].Path)
	}
	if files[0].Formatted != "├─ a\n└─ b\n" || len(files[0].Changes) != 2 || files[0].Written {
		t.Fatalf("unexpected loose result: %+v", files[0])
	}
	if files[1].Changed() {
		t.Fatalf("canonical document reported changes: %+v", files[1].Changes)
	}
	if *summary != (types.SummaryEvent{Files: 2, ChangedFiles: 1, ChangedLines: 2}) {
		t.Fatalf("summary = %+v", summary)
	}

	content, _ := os.ReadFile(loosePath)
	if string(content) != "├── a\n├── b\n" {
		t.Fatalf("document rewritten without write option")
	}
}

func TestStreamFormatWritesMarkdownFences(t *testing.T) {
	root := t.TempDir()
	documentPath := filepath.Join(root, "notes.md")
	writeFile(t, documentPath, "# Layout\n\n```tree\n+-- a\n+-- b\n```\n\n+-- outside\n")

	events := collectEvents(t, func(channel chan<- types.Event) error {
		return stream.StreamFormat(context.Background(), stream.FormatOptions{Paths: []string{documentPath}, Style: types.StyleASCII, Write: true}, channel)
	})

	var file *types.FileEvent
	for _, event := range events {
		if event.Kind == types.EventKindFile {
			file = event.File
		}
	}
	if file == nil || !file.Written || file.Kind != types.KindMarkdown || file.Blocks != 1 {
		t.Fatalf("unexpected file event: %+v", file)
	}
	content, _ := os.ReadFile(documentPath)
	expected := "# Layout\n\n```tree\n+-- a\n`-- b\n```\n\n+-- outside\n"
	if string(content) != expected {
		t.Fatalf("content = %q, expected %q", content, expected)
	}
}

func TestFormatFileReportsUnreadableDocument(t *testing.T) {
	t.Parallel()

	if _, err := stream.FormatFile(filepath.Join(t.TempDir(), "missing.tree"), types.StyleUnicode, false); err == nil {
		t.Fatalf("expected error for missing document")
	}
}

func TestCollectDocumentsExpandsDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "layout.tree"), "")
	writeFile(t, filepath.Join(root, "docs", "guide.md"), "")
	writeFile(t, filepath.Join(root, "docs", "image.png"), "")
	writeFile(t, filepath.Join(root, ".git", "config.tree"), "")
	explicit := filepath.Join(root, "docs", "image.png")

	collected, err := stream.CollectDocuments([]string{root, explicit, root})
	if err != nil {
		t.Fatalf("CollectDocuments error: %v", err)
	}
	expected := []string{
		filepath.Join(root, "docs", "guide.md"),
		filepath.Join(root, "layout.tree"),
		explicit,
	}
	if !reflect.DeepEqual(collected, expected) {
		t.Fatalf("collected = %v, expected %v", collected, expected)
	}

	if _, err := stream.CollectDocuments([]string{filepath.Join(root, "missing")}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
