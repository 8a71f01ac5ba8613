package exporters

import (
	"fmt"
	"log"

	"github.com/mrlokans/notecompiler/internal/database"
	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/notestore"
	"github.com/mrlokans/notecompiler/internal/services"
)

// CollectionExporter saves notes to the canonical collection and then keeps
// the optional follow-up outputs (search index, markdown export) in step
// with the whole collection.
//
// Only a collection write failure is returned. Follow-up failures are
// logged, because both outputs can be rebuilt from the collection.
type CollectionExporter struct {
	store    *notestore.Store
	index    *database.Database
	markdown *MarkdownExporter
}

func NewCollectionExporter(store *notestore.Store) *CollectionExporter {
	return &CollectionExporter{store: store}
}

func (e *CollectionExporter) WithIndex(index *database.Database) *CollectionExporter {
	e.index = index
	return e
}

func (e *CollectionExporter) WithMarkdown(markdown *MarkdownExporter) *CollectionExporter {
	e.markdown = markdown
	return e
}

func (e *CollectionExporter) Export(notes []entities.CanonicalNote) (services.ExportResult, error) {
	result, err := e.store.Export(notes)
	if err != nil {
		return result, err
	}
	if result.NotesAdded == 0 || (e.index == nil && e.markdown == nil) {
		return result, nil
	}

	all, err := e.store.Load()
	if err != nil {
		log.Printf("WARNING: collection saved but could not be reloaded: %v", err)
		return result, nil
	}

	if e.index != nil {
		if err := e.index.ReplaceNotes(all); err != nil {
			log.Printf("WARNING: failed to refresh search index: %v", err)
		} else {
			log.Printf("Search index refreshed with %d notes", len(all))
		}
	}

	if e.markdown != nil {
		if _, err := e.markdown.Export(all); err != nil {
			log.Printf("WARNING: %v", fmt.Errorf("failed to export to markdown: %w", err))
		}
	}

	return result, nil
}

// Load implements services.NoteReader over the canonical collection.
func (e *CollectionExporter) Load() ([]entities.CanonicalNote, error) {
	return e.store.Load()
}

var (
	_ services.NoteExporter = (*CollectionExporter)(nil)
	_ services.NoteReader   = (*CollectionExporter)(nil)
)
