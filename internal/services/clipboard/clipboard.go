// Package clipboard puts formatted trees on the system clipboard.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

const (
	unsupportedClipboardMessage = "system clipboard is not available"
	clipboardWriteErrorFormat   = "copy to clipboard: %w"
)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier with github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard Service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf(clipboardWriteErrorFormat, fmt.Errorf(unsupportedClipboardMessage))
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf(clipboardWriteErrorFormat, err)
	}
	return nil
}

var _ Copier = (*Service)(nil)
