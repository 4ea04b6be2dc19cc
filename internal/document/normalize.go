package document

import (
	"github.com/temirov/treetext/internal/block"
	"github.com/temirov/treetext/internal/editor"
	"github.com/temirov/treetext/internal/types"
)

// Normalize re-renders every tree block of document and returns the result with the changes applied.
func Normalize(document Document, options editor.Options) (Document, []types.LineChange) {
	changes := editor.Normalize(document.Lines, options)
	return document.ApplyLineChanges(changes), changes
}

// BlockCount reports how many tree blocks document holds for the given kind.
func BlockCount(document Document, kind string) int {
	return len(block.Scan(document.Lines, kind))
}
