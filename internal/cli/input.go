package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/treetext/internal/block"
	"github.com/temirov/treetext/internal/document"
)

const (
	standardInputArgument = "-"
	readInputErrorFormat  = "read standard input: %w"
)

// documentSource is a document together with where it came from.
type documentSource struct {
	path     string
	kind     string
	document document.Document
}

func (source documentSource) fromStandardInput() bool {
	return source.path == ""
}

func (source documentSource) name() string {
	if source.fromStandardInput() {
		return stdinDocumentName
	}
	return source.path
}

// loadDocument reads path, or standard input when path is empty or "-". The kind of a file comes
// from its extension; stdinKind applies to standard input only.
func loadDocument(command *cobra.Command, path string, stdinKind string) (documentSource, error) {
	if path == "" || path == standardInputArgument {
		if !isSupportedKind(stdinKind) {
			return documentSource{}, fmt.Errorf(invalidKindMessage, stdinKind)
		}
		content, err := io.ReadAll(command.InOrStdin())
		if err != nil {
			return documentSource{}, fmt.Errorf(readInputErrorFormat, err)
		}
		return documentSource{kind: stdinKind, document: document.Parse(string(content))}, nil
	}
	loaded, err := document.ReadFile(path)
	if err != nil {
		return documentSource{}, err
	}
	return documentSource{path: path, kind: block.KindForPath(path), document: loaded}, nil
}

func firstArgument(arguments []string) string {
	if len(arguments) == 0 {
		return ""
	}
	return arguments[0]
}
