// Package stream normalizes batches of documents and reports each one as an event.
package stream

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/treetext/internal/block"
	"github.com/temirov/treetext/internal/document"
	"github.com/temirov/treetext/internal/editor"
	"github.com/temirov/treetext/internal/types"
)

const (
	// DefaultConcurrency bounds how many documents are processed at once.
	DefaultConcurrency = 8

	treeFileExtension = ".tree"

	nilChannelMessage     = "stream: event channel is nil"
	noDocumentsMessage    = "stream: no documents to format"
	walkErrorFormat       = "walk %s: %w"
	statPathErrorFormat   = "stat %s: %w"
	warningLevel          = "warning"
	warningMessageFormat  = "Warning: skipping %s: %v"
	absolutePathErrFormat = "resolve absolute path for %s: %w"
)

// FormatOptions configures a batch format run.
type FormatOptions struct {
	Paths       []string
	Style       string
	Write       bool
	Concurrency int
}

type emitter struct {
	ctx     context.Context
	out     chan<- types.Event
	command string
}

func newEmitter(ctx context.Context, out chan<- types.Event, command string) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out, command: command}
}

func (e *emitter) send(event types.Event) error {
	if e.out == nil {
		return fmt.Errorf(nilChannelMessage)
	}
	event.Version = types.StreamSchemaVersion
	if event.Command == "" {
		event.Command = e.command
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

func (e *emitter) warn(path string, cause error) error {
	return e.send(types.Event{
		Kind:    types.EventKindWarning,
		Path:    path,
		Message: &types.LogEvent{Level: warningLevel, Message: fmt.Sprintf(warningMessageFormat, path, cause)},
	})
}

type formatResult struct {
	file types.FileEvent
	err  error
}

// StreamFormat normalizes every document named by options.Paths and emits one file event per
// document in argument order. Documents are processed concurrently. A document that cannot be read
// or written yields a warning event and does not stop the run.
func StreamFormat(ctx context.Context, options FormatOptions, out chan<- types.Event) error {
	emitter := newEmitter(ctx, out, types.CommandFormat)
	paths, err := CollectDocuments(options.Paths)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf(noDocumentsMessage)
	}
	if err := emitter.send(types.Event{Kind: types.EventKindStart}); err != nil {
		return err
	}

	concurrency := options.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]formatResult, len(paths))
	group, groupCtx := errgroup.WithContext(emitter.ctx)
	group.SetLimit(concurrency)
	for pathIndex, path := range paths {
		pathIndex, path := pathIndex, path
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			file, formatErr := FormatFile(path, options.Style, options.Write)
			results[pathIndex] = formatResult{file: file, err: formatErr}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	var summary types.SummaryEvent
	for pathIndex, result := range results {
		if result.err != nil {
			if err := emitter.warn(paths[pathIndex], result.err); err != nil {
				return err
			}
			continue
		}
		summary.Files++
		if result.file.Changed() {
			summary.ChangedFiles++
			summary.ChangedLines += len(result.file.Changes)
		}
		file := result.file
		if err := emitter.send(types.Event{Kind: types.EventKindFile, Path: file.Path, File: &file}); err != nil {
			return err
		}
	}
	if err := emitter.send(types.Event{Kind: types.EventKindSummary, Summary: &summary}); err != nil {
		return err
	}
	return emitter.send(types.Event{Kind: types.EventKindDone})
}

// FormatFile normalizes the document at path and, when write is set and something changed,
// stores the result back.
func FormatFile(path string, style string, write bool) (types.FileEvent, error) {
	loaded, err := document.ReadFile(path)
	if err != nil {
		return types.FileEvent{}, err
	}
	file, normalized := formatDocument(path, loaded, editorOptions(path, style))
	if write && file.Changed() {
		if err := document.WriteFile(path, normalized); err != nil {
			return types.FileEvent{}, err
		}
		file.Written = true
	}
	return file, nil
}

// FormatText normalizes a document that did not come from a file, such as standard input.
// name is only reported back in the event.
func FormatText(name string, loaded document.Document, options editor.Options) types.FileEvent {
	file, _ := formatDocument(name, loaded, options)
	return file
}

func formatDocument(path string, loaded document.Document, options editor.Options) (types.FileEvent, document.Document) {
	normalized, changes := document.Normalize(loaded, options)
	if changes == nil {
		changes = []types.LineChange{}
	}
	return types.FileEvent{
		Path:      path,
		Kind:      options.Kind,
		Blocks:    document.BlockCount(normalized, options.Kind),
		Changes:   changes,
		Formatted: normalized.String(),
	}, normalized
}

// CollectDocuments expands directories into the tree and markdown documents below them.
// Explicit file arguments are kept whatever their extension. Duplicates are dropped.
func CollectDocuments(inputs []string) ([]string, error) {
	seen := map[string]struct{}{}
	var collected []string
	add := func(path string) {
		if _, duplicate := seen[path]; duplicate {
			return
		}
		seen[path] = struct{}{}
		collected = append(collected, path)
	}
	for _, input := range inputs {
		absolutePath, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf(absolutePathErrFormat, input, err)
		}
		info, err := os.Stat(absolutePath)
		if err != nil {
			return nil, fmt.Errorf(statPathErrorFormat, input, err)
		}
		if !info.IsDir() {
			add(absolutePath)
			continue
		}
		walkErr := filepath.WalkDir(absolutePath, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				if path != absolutePath && strings.HasPrefix(entry.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if IsDocumentPath(path) {
				add(path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf(walkErrorFormat, input, walkErr)
		}
	}
	return collected, nil
}

// IsDocumentPath reports whether a directory walk should pick up path.
func IsDocumentPath(path string) bool {
	if strings.EqualFold(filepath.Ext(path), treeFileExtension) {
		return true
	}
	return block.KindForPath(path) == types.KindMarkdown
}

func editorOptions(path string, style string) editor.Options {
	options := editor.DefaultOptions()
	if style != "" {
		options.Style = style
	}
	options.Kind = block.KindForPath(path)
	return options
}
