// Package exporters writes canonical notes out of the collection file into
// other layouts: a per-site tree of plain text files, or one markdown
// document per site.
package exporters

import "github.com/mrlokans/notecompiler/internal/entities"

type NoteExporter interface {
	Export(notes []entities.CanonicalNote) (ExportResult, error)
}

type ExportResult struct {
	SitesProcessed int `json:"sites_processed"`
	NotesProcessed int `json:"notes_processed"`
	SitesFailed    int `json:"sites_failed"`
	FilesWritten   int `json:"files_written"`
}

// Compile-time interface checks
var (
	_ NoteExporter = (*SiteTreeExporter)(nil)
	_ NoteExporter = (*MarkdownExporter)(nil)
)
