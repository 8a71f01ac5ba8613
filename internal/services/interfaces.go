package services

import "github.com/mrlokans/notecompiler/internal/entities"

// NoteReader provides read-only access to the canonical collection.
type NoteReader interface {
	Load() ([]entities.CanonicalNote, error)
}

// NoteSearcher answers text and site queries over stored notes.
type NoteSearcher interface {
	SearchNotes(query, site string) ([]entities.CanonicalNote, error)
	GetSites() ([]string, error)
}

// NoteExporter persists canonical notes.
// Use this interface when you need to write notes.
type NoteExporter interface {
	Export(notes []entities.CanonicalNote) (ExportResult, error)
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	NotesProcessed int
	NotesAdded     int
	// NotesSkipped counts notes already present in the collection.
	NotesSkipped int
}

// ImportResult contains the outcome of an extraction followed by an export.
type ImportResult struct {
	SourcesRead    int
	SourcesFailed  int
	PayloadsRead   int
	NotesDiscarded int
	NotesAdded     int
	NotesSkipped   int
}
