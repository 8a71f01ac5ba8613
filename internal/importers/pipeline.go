package importers

import (
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/services"
	"github.com/mrlokans/notecompiler/internal/sources"
)

// Source is one place to extract notes from: a reader and the locator it
// should read (file, directory or database path; ignored by the clipboard).
type Source struct {
	Name    string
	Reader  sources.Reader
	Locator string
}

// Exporter persists canonical notes.
//
// Implementations:
//   - notestore.Store - the canonical collection file
//   - database.Database - the SQLite search index
type Exporter interface {
	Export(notes []entities.CanonicalNote) (services.ExportResult, error)
}

// Pipeline handles the common extraction workflow:
// read → clean → segment → normalize → export.
//
// Every source is read independently. A source that fails is logged and
// counted, and extraction carries on with the others. Only a failure to
// persist the result is returned to the caller.
type Pipeline struct {
	exporter   Exporter
	normalizer *Normalizer
}

// NewPipeline creates a new extraction pipeline with the given exporter.
func NewPipeline(exporter Exporter, normalizer *Normalizer) *Pipeline {
	return &Pipeline{exporter: exporter, normalizer: normalizer}
}

// Extract reads and normalizes every source without exporting.
// Site numbering runs across all sources of the call.
func (p *Pipeline) Extract(srcs ...Source) ([]entities.CanonicalNote, services.ImportResult) {
	var result services.ImportResult
	var notes []entities.CanonicalNote
	counter := make(SiteCounter)

	for _, src := range srcs {
		payloads, err := src.Reader.Read(src.Locator)
		if err != nil {
			logSourceError(src, err)
			result.SourcesFailed++
			continue
		}
		result.SourcesRead++
		result.PayloadsRead += len(payloads)

		normalized, discarded := p.NormalizeAll(payloads, counter)
		result.NotesDiscarded += discarded
		notes = append(notes, normalized...)

		log.Printf("Extracted %d notes from %s (%d discarded)", len(normalized), src.Name, discarded)
	}

	return notes, result
}

// NormalizeAll normalizes payloads in order, dropping those with no
// content. It returns the notes and the number dropped.
func (p *Pipeline) NormalizeAll(payloads []entities.RawPayload, counter SiteCounter) ([]entities.CanonicalNote, int) {
	notes := make([]entities.CanonicalNote, 0, len(payloads))
	discarded := 0
	for _, payload := range payloads {
		note, ok := p.normalizer.Normalize(payload, counter)
		if !ok {
			discarded++
			continue
		}
		notes = append(notes, note)
	}
	return notes, discarded
}

// Import extracts from every source and exports the result.
// The returned error, if any, wraps entities.ErrWriteFailure.
func (p *Pipeline) Import(srcs ...Source) (services.ImportResult, error) {
	notes, result := p.Extract(srcs...)
	if len(notes) == 0 {
		return result, nil
	}

	exportResult, err := p.ImportNotes(notes)
	result.NotesAdded = exportResult.NotesAdded
	result.NotesSkipped = exportResult.NotesSkipped
	return result, err
}

// ImportNotes directly exports already normalized notes.
func (p *Pipeline) ImportNotes(notes []entities.CanonicalNote) (services.ExportResult, error) {
	if len(notes) == 0 {
		return services.ExportResult{}, nil
	}

	exportResult, err := p.exporter.Export(notes)
	if err != nil {
		if errors.Is(err, entities.ErrWriteFailure) {
			return services.ExportResult{}, err
		}
		return services.ExportResult{}, fmt.Errorf("%w: %v", entities.ErrWriteFailure, err)
	}

	return exportResult, nil
}

func logSourceError(src Source, err error) {
	switch {
	case errors.Is(err, entities.ErrMissingSource), errors.Is(err, entities.ErrEmptyInput):
		log.Printf("WARNING: %s: %v", src.Name, err)
	default:
		log.Printf("ERROR: %s: %v", src.Name, err)
	}
}
