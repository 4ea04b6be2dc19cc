package editor

import "context"

// Change describes an edit the host observed on a document.
type Change struct {
	DocumentID       string
	LineCount        int
	DeletedLineBreak bool
}

// Session carries the only state that outlives a single edit: the guard that marks a
// replacement as self-inflicted and the last line count seen per document.
// A Session is meant to be driven by one goroutine, the same one that serializes document writes.
type Session struct {
	applying   bool
	lineCounts map[string]int
}

// NewSession returns an idle session with an empty line-count cache.
func NewSession() *Session {
	return &Session{lineCounts: map[string]int{}}
}

// Applying reports whether a replacement produced by this session is being applied.
func (session *Session) Applying() bool {
	return session.applying
}

// Apply runs effect with the guard raised. The guard drops when effect returns, whatever the outcome.
func (session *Session) Apply(ctx context.Context, effect func(context.Context) error) error {
	session.applying = true
	defer func() {
		session.applying = false
	}()
	return effect(ctx)
}

// ShouldNormalize records the change and reports whether the document needs re-normalizing.
//
// Changes observed while a replacement is in flight are our own and never trigger. Otherwise the
// trigger is a deleted line break or a drop in line count. Growth in line count does not trigger.
func (session *Session) ShouldNormalize(change Change) bool {
	previousCount, seen := session.lineCounts[change.DocumentID]
	session.lineCounts[change.DocumentID] = change.LineCount
	if session.applying {
		return false
	}
	if change.DeletedLineBreak {
		return true
	}
	return seen && change.LineCount < previousCount
}

// Observe records the line count of a document without evaluating a trigger.
func (session *Session) Observe(documentID string, lineCount int) {
	session.lineCounts[documentID] = lineCount
}

// Forget drops the cached line count of a closed document.
func (session *Session) Forget(documentID string) {
	delete(session.lineCounts, documentID)
}
