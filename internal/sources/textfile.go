package sources

import (
	"fmt"
	"os"

	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/segmenter"
)

// TextFileReader reads .txt and .md files. The file is always run through
// the segmenter; when no structure is found the whole text becomes a single
// payload.
type TextFileReader struct{}

func NewTextFileReader() *TextFileReader {
	return &TextFileReader{}
}

func (r *TextFileReader) Read(path string) ([]entities.RawPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrMissingSource, path)
		}
		return nil, fmt.Errorf("failed to read text file %s: %w", path, err)
	}

	return payloadsFromText(string(data), entities.SourceKindTextFile, entities.SourceTextFile), nil
}

// payloadsFromText segments text into one payload per unit, or returns the
// raw text as a single unsegmented payload.
func payloadsFromText(text string, kind entities.SourceKind, source string) []entities.RawPayload {
	units := segmenter.Segment(text)
	if len(units) == 0 {
		return []entities.RawPayload{{
			Kind:   kind,
			Text:   text,
			Source: source,
		}}
	}

	payloads := make([]entities.RawPayload, 0, len(units))
	for _, unit := range units {
		unitSource := source
		if unit.Source != "" {
			unitSource = unit.Source
		}
		payloads = append(payloads, entities.RawPayload{
			Kind:      kind,
			Text:      unit.Content,
			Segmented: true,
			Title:     unit.Title,
			Level:     unit.Level,
			Source:    unitSource,
		})
	}
	return payloads
}
