package sources

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// ClipboardReader reads the system clipboard. The content is tried as JSON
// first, then segmented as text, and finally returned as raw text.
type ClipboardReader struct {
	paste       func() (string, error)
	unsupported func() bool
}

func NewClipboardReader() *ClipboardReader {
	return &ClipboardReader{
		paste:       clipboard.ReadAll,
		unsupported: func() bool { return clipboard.Unsupported },
	}
}

// NewClipboardReaderFunc creates a reader backed by paste instead of the
// system clipboard.
func NewClipboardReaderFunc(paste func() (string, error)) *ClipboardReader {
	return &ClipboardReader{
		paste:       paste,
		unsupported: func() bool { return false },
	}
}

// Read ignores the locator.
func (r *ClipboardReader) Read(_ string) ([]entities.RawPayload, error) {
	if r.unsupported() {
		return nil, fmt.Errorf("%w: clipboard access is not available on this system", entities.ErrMissingSource)
	}

	content, err := r.paste()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read clipboard: %v", entities.ErrMissingSource, err)
	}

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: clipboard is empty", entities.ErrEmptyInput)
	}

	if doc, err := DecodeStructured([]byte(content), ".json"); err == nil {
		if payloads := PayloadsFromStructured(doc, entities.SourceKindClipboard, entities.SourceClipboard); len(payloads) > 0 {
			return payloads, nil
		}
	}

	return payloadsFromText(content, entities.SourceKindClipboard, entities.SourceClipboard), nil
}
