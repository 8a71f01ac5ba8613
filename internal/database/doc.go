// Package database provides the SQLite search index kept alongside the
// canonical note collection.
//
// The collection file is the source of truth. The index is a disposable
// copy that can be rebuilt at any time with ReplaceNotes; it also holds a
// small settings table for the scheduler.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup, migrations, delegating helpers
//	├── notes/           # Indexed notes: search, sites, incremental export
//	└── settings/        # Key/value settings and run status
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./notes_index.db")
//
//	notesRepo := notes.NewRepository(db.DB)
//	found, err := notesRepo.SearchNotes("pump", "")
//
// # Interface Implementations
//
//   - notes.Repository: implements services.NoteSearcher and services.NoteExporter
//   - Database: implements the same interfaces by delegation
package database
