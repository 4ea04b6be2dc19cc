package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/temirov/treetext/internal/block"
	"github.com/temirov/treetext/internal/document"
	"github.com/temirov/treetext/internal/editor"
	"github.com/temirov/treetext/internal/output"
	"github.com/temirov/treetext/internal/structure"
	"github.com/temirov/treetext/internal/types"
)

const (
	invalidBodyMessage  = "invalid request body: "
	invalidStyleMessage = "unsupported style: "
	badReplacementError = "replacement does not fit the document: "
)

// DocumentRequest carries a whole document. Path is optional and only selects the document kind.
type DocumentRequest struct {
	Text  string `json:"text"`
	Path  string `json:"path,omitempty"`
	Style string `json:"style,omitempty"`
}

// ShiftRequest asks for an indent or outdent of the nodes under Selection.
type ShiftRequest struct {
	DocumentRequest
	Selection                   types.Selection `json:"selection"`
	IndentSubtreeOnSingleCursor *bool           `json:"indentSubtreeOnSingleCursor,omitempty"`
}

// InsertRequest asks for a new sibling next to the node under Cursor. Before, when present,
// overrides the placement the cursor column would choose.
type InsertRequest struct {
	DocumentRequest
	Cursor types.Position `json:"cursor"`
	Before *bool          `json:"before,omitempty"`
}

// FormatResponse is the normalized document and the lines that changed.
type FormatResponse struct {
	Text    string             `json:"text"`
	Blocks  int                `json:"blocks"`
	Changes []types.LineChange `json:"changes"`
}

// EditResponse reports a structural edit. Handled is false when the request did not address a
// tree line, in which case the document is returned untouched.
type EditResponse struct {
	Handled     bool               `json:"handled"`
	Replacement *types.Replacement `json:"replacement,omitempty"`
	Cursor      *types.Position    `json:"cursor,omitempty"`
	Text        string             `json:"text"`
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var request DocumentRequest
	if !decodeRequest(w, r, &request) {
		return
	}
	options, ok := s.optionsFor(w, request, nil)
	if !ok {
		return
	}
	normalized, changes := document.Normalize(document.Parse(request.Text), options)
	if changes == nil {
		changes = []types.LineChange{}
	}
	writeJSON(w, http.StatusOK, FormatResponse{
		Text:    normalized.String(),
		Blocks:  document.BlockCount(normalized, options.Kind),
		Changes: changes,
	})
}

func (s *Server) handleShift(delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request ShiftRequest
		if !decodeRequest(w, r, &request) {
			return
		}
		options, ok := s.optionsFor(w, request.DocumentRequest, request.IndentSubtreeOnSingleCursor)
		if !ok {
			return
		}
		parsed := document.Parse(request.Text)
		replacement, handled := editor.ShiftSelection(parsed.Lines, request.Selection, delta, options)
		if !handled {
			writeJSON(w, http.StatusOK, EditResponse{Text: request.Text})
			return
		}
		updated, err := parsed.ApplyReplacement(replacement)
		if err != nil {
			jsonError(w, badReplacementError+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, EditResponse{Handled: true, Replacement: &replacement, Text: updated.String()})
	}
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var request InsertRequest
	if !decodeRequest(w, r, &request) {
		return
	}
	options, ok := s.optionsFor(w, request.DocumentRequest, nil)
	if !ok {
		return
	}
	parsed := document.Parse(request.Text)
	var replacement types.Replacement
	var cursor types.Position
	var handled bool
	if request.Before != nil {
		replacement, cursor, handled = editor.InsertAt(parsed.Lines, request.Cursor.Line, *request.Before, options)
	} else {
		replacement, cursor, handled = editor.Insert(parsed.Lines, request.Cursor, options)
	}
	if !handled {
		writeJSON(w, http.StatusOK, EditResponse{Text: request.Text})
		return
	}
	updated, err := parsed.ApplyReplacement(replacement)
	if err != nil {
		jsonError(w, badReplacementError+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, EditResponse{Handled: true, Replacement: &replacement, Cursor: &cursor, Text: updated.String()})
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var request DocumentRequest
	if !decodeRequest(w, r, &request) {
		return
	}
	result := structure.Query(document.Parse(request.Text).Lines, block.KindForPath(request.Path))
	result.Path = request.Path
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) optionsFor(w http.ResponseWriter, request DocumentRequest, indentSubtree *bool) (editor.Options, bool) {
	options := s.defaults
	if request.Style != "" {
		if !output.IsSupportedStyle(request.Style) {
			jsonError(w, invalidStyleMessage+request.Style, http.StatusBadRequest)
			return options, false
		}
		options.Style = request.Style
	}
	if indentSubtree != nil {
		options.IndentSubtreeOnSingleCursor = *indentSubtree
	}
	options.Kind = block.KindForPath(request.Path)
	return options, true
}

func decodeRequest(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		jsonError(w, invalidBodyMessage+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
