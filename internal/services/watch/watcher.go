// Package watch keeps tree documents normalized while they are edited by other programs.
//
// A document is re-rendered when an edit removes lines from it. The watcher writes the result back
// through an editor.Session, so the write it causes itself is never taken for a user edit.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/temirov/treetext/internal/block"
	"github.com/temirov/treetext/internal/document"
	"github.com/temirov/treetext/internal/editor"
	"github.com/temirov/treetext/internal/services/stream"
)

const (
	createWatcherErrorFormat = "create fsnotify watcher: %w"
	watchDirectoryFormat     = "watch directory %s: %w"
	noDocumentsMessage       = "watch: nothing to watch"

	watchingMessage       = "watching documents"
	normalizedMessage     = "normalized document"
	processFailedMessage  = "could not normalize document"
	watcherErrorMessage   = "file watcher error"
	pathField             = "path"
	documentsField        = "documents"
	changedLinesField     = "changed_lines"
	triggerLineCountField = "line_count"
)

// Options configures a Watcher.
type Options struct {
	Paths    []string
	Style    string
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watcher normalizes documents after edits that remove lines.
// All document state is owned by the goroutine running Run.
type Watcher struct {
	watcher     *fsnotify.Watcher
	session     *editor.Session
	logger      *zap.Logger
	style       string
	debounce    time.Duration
	documents   map[string]struct{}
	directories map[string]struct{}
	pending     map[string]time.Time
	ready       chan string
	done        chan struct{}
	closeOnce   sync.Once
}

// New resolves the documents named by options.Paths and subscribes to their directories.
// Directory arguments also pick up documents created in them later.
func New(options Options) (*Watcher, error) {
	paths, err := stream.CollectDocuments(options.Paths)
	if err != nil {
		return nil, err
	}
	directories := map[string]struct{}{}
	for _, input := range options.Paths {
		absolutePath, absErr := filepath.Abs(input)
		if absErr != nil {
			continue
		}
		if info, statErr := os.Stat(absolutePath); statErr == nil && info.IsDir() {
			directories[absolutePath] = struct{}{}
		}
	}
	if len(paths) == 0 && len(directories) == 0 {
		return nil, fmt.Errorf(noDocumentsMessage)
	}

	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf(createWatcherErrorFormat, err)
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher := &Watcher{
		watcher:     fileWatcher,
		session:     editor.NewSession(),
		logger:      logger,
		style:       options.Style,
		debounce:    options.Debounce,
		documents:   map[string]struct{}{},
		directories: directories,
		pending:     map[string]time.Time{},
		ready:       make(chan string, 16),
		done:        make(chan struct{}),
	}

	subscribed := map[string]struct{}{}
	subscribe := func(directory string) error {
		if _, done := subscribed[directory]; done {
			return nil
		}
		subscribed[directory] = struct{}{}
		if addErr := fileWatcher.Add(directory); addErr != nil {
			return fmt.Errorf(watchDirectoryFormat, directory, addErr)
		}
		return nil
	}
	for directory := range directories {
		if subscribeErr := subscribe(directory); subscribeErr != nil {
			_ = fileWatcher.Close()
			return nil, subscribeErr
		}
	}
	for _, path := range paths {
		watcher.documents[path] = struct{}{}
		if subscribeErr := subscribe(filepath.Dir(path)); subscribeErr != nil {
			_ = fileWatcher.Close()
			return nil, subscribeErr
		}
		if loaded, readErr := document.ReadFile(path); readErr == nil {
			watcher.session.Observe(path, len(loaded.Lines))
		}
	}
	return watcher, nil
}

// Documents returns how many documents are tracked.
func (watcher *Watcher) Documents() int {
	return len(watcher.documents)
}

// Close releases the underlying file watcher.
func (watcher *Watcher) Close() error {
	watcher.closeOnce.Do(func() {
		close(watcher.done)
	})
	return watcher.watcher.Close()
}

// Run processes file events until ctx is cancelled or the watcher is closed.
func (watcher *Watcher) Run(ctx context.Context) error {
	watcher.logger.Info(watchingMessage, zap.Int(documentsField, len(watcher.documents)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watcher.done:
			return nil
		case event, ok := <-watcher.watcher.Events:
			if !ok {
				return nil
			}
			watcher.handleEvent(event)
		case path := <-watcher.ready:
			watcher.flush(ctx, path)
		case watchErr, ok := <-watcher.watcher.Errors:
			if !ok {
				return nil
			}
			watcher.logger.Warn(watcherErrorMessage, zap.Error(watchErr))
		}
	}
}

func (watcher *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if event.Op&fsnotify.Remove != 0 || event.Op&fsnotify.Rename != 0 {
		if _, tracked := watcher.documents[path]; tracked {
			if _, err := os.Stat(path); err != nil {
				watcher.session.Forget(path)
			}
		}
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !watcher.tracks(path) {
		return
	}
	watcher.documents[path] = struct{}{}
	watcher.pending[path] = time.Now()
	time.AfterFunc(watcher.debounce, func() {
		select {
		case watcher.ready <- path:
		case <-watcher.done:
		}
	})
}

func (watcher *Watcher) tracks(path string) bool {
	if _, tracked := watcher.documents[path]; tracked {
		return true
	}
	if _, watchedDirectory := watcher.directories[filepath.Dir(path)]; watchedDirectory {
		return stream.IsDocumentPath(path)
	}
	return false
}

func (watcher *Watcher) flush(ctx context.Context, path string) {
	lastEvent, pending := watcher.pending[path]
	if !pending || time.Since(lastEvent) < watcher.debounce {
		return
	}
	delete(watcher.pending, path)
	if _, err := watcher.Process(ctx, path); err != nil {
		watcher.logger.Warn(processFailedMessage, zap.String(pathField, path), zap.Error(err))
	}
}

// Process reads the document at path and rewrites it normalized when the session decides the
// last edit calls for it. It reports whether the file was rewritten.
func (watcher *Watcher) Process(ctx context.Context, path string) (bool, error) {
	loaded, err := document.ReadFile(path)
	if err != nil {
		return false, err
	}
	change := editor.Change{DocumentID: path, LineCount: len(loaded.Lines)}
	if !watcher.session.ShouldNormalize(change) {
		return false, nil
	}
	options := editor.DefaultOptions()
	if watcher.style != "" {
		options.Style = watcher.style
	}
	options.Kind = block.KindForPath(path)
	normalized, changes := document.Normalize(loaded, options)
	if len(changes) == 0 {
		return false, nil
	}
	applyErr := watcher.session.Apply(ctx, func(context.Context) error {
		if writeErr := document.WriteFile(path, normalized); writeErr != nil {
			return writeErr
		}
		watcher.session.Observe(path, len(normalized.Lines))
		return nil
	})
	if applyErr != nil {
		return false, applyErr
	}
	watcher.logger.Info(normalizedMessage,
		zap.String(pathField, path),
		zap.Int(changedLinesField, len(changes)),
		zap.Int(triggerLineCountField, change.LineCount),
	)
	return true, nil
}
