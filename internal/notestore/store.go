// Package notestore persists the canonical note collection as a single JSON
// or YAML document and answers queries over it.
//
// The collection is always read and written whole. Store serializes its own
// read-modify-write cycles with a mutex; separate processes writing the same
// file are not coordinated.
package notestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/services"
)

// ConsolidateFunc produces the initial collection when the collection file
// does not exist yet.
type ConsolidateFunc func() ([]entities.CanonicalNote, error)

type Store struct {
	path        string
	consolidate ConsolidateFunc
	now         func() time.Time
	mu          sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// WithConsolidation sets the fallback used to seed a missing collection.
func (s *Store) WithConsolidation(fn ConsolidateFunc) *Store {
	s.consolidate = fn
	return s
}

// WithClock replaces the clock used for default dates.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the whole collection. A missing file is seeded from the
// consolidation fallback (or left empty) and written back so later loads
// read it directly. A file that cannot be parsed yields an empty collection
// and an error wrapping ErrUnreadableFormat; it is never overwritten.
func (s *Store) Load() ([]entities.CanonicalNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]entities.CanonicalNote, error) {
	notes, err := ReadCollection(s.path)
	if err == nil {
		return notes, nil
	}
	if !errors.Is(err, entities.ErrMissingSource) {
		log.Printf("ERROR: failed to load notes from %s: %v", s.path, err)
		return []entities.CanonicalNote{}, err
	}

	notes = []entities.CanonicalNote{}
	if s.consolidate != nil {
		consolidated, cerr := s.consolidate()
		if cerr != nil {
			log.Printf("WARNING: could not consolidate notes: %v", cerr)
		} else {
			notes = consolidated
		}
	}

	if werr := WriteCollection(s.path, notes); werr != nil {
		log.Printf("WARNING: could not create %s: %v", s.path, werr)
	}
	return notes, nil
}

// Save replaces the collection with notes.
func (s *Store) Save(notes []entities.CanonicalNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteCollection(s.path, notes)
}

// Append validates note, fills in a missing date and adds it to the end of
// the collection. Existing notes are never modified.
func (s *Store) Append(note entities.CanonicalNote) (entities.CanonicalNote, error) {
	note.Content = strings.TrimSpace(note.Content)
	note.Site = strings.TrimSpace(note.Site)
	if note.Content == "" {
		return note, fmt.Errorf("%w: content is required", entities.ErrInvalidNote)
	}
	if note.Site == "" {
		return note, fmt.Errorf("%w: site is required", entities.ErrInvalidNote)
	}
	if strings.TrimSpace(note.Date) == "" {
		note.Date = entities.FormatDate(s.now())
	}
	if note.Source == "" {
		note.Source = entities.SourceManual
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load()
	if err != nil {
		return note, fmt.Errorf("%w: refusing to rewrite unreadable collection: %v", entities.ErrWriteFailure, err)
	}

	notes = append(notes, note)
	if err := WriteCollection(s.path, notes); err != nil {
		return note, err
	}
	return note, nil
}

// Export merges notes into the collection, skipping any note whose Key is
// already present. Order is preserved: existing notes first, then new ones
// in the order given.
func (s *Store) Export(notes []entities.CanonicalNote) (services.ExportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := services.ExportResult{NotesProcessed: len(notes)}

	existing, err := s.load()
	if err != nil {
		return result, fmt.Errorf("%w: refusing to rewrite unreadable collection: %v", entities.ErrWriteFailure, err)
	}

	merged, added := Merge(existing, notes)
	result.NotesAdded = added
	result.NotesSkipped = len(notes) - added

	if added == 0 {
		log.Printf("No new notes for %s (%d already present)", s.path, result.NotesSkipped)
		return result, nil
	}

	if err := WriteCollection(s.path, merged); err != nil {
		return result, err
	}

	log.Printf("Saved %d new notes to %s (%d already present)", added, s.path, result.NotesSkipped)
	return result, nil
}

// Search loads the collection and applies filter.
func (s *Store) Search(filter Filter) ([]entities.CanonicalNote, error) {
	notes, err := s.Load()
	if filter.Now.IsZero() {
		filter.Now = s.now()
	}
	return Query(notes, filter), err
}

// Merge appends the notes of incoming whose Key is not in existing (or
// earlier in incoming) and returns the result and the number added.
func Merge(existing, incoming []entities.CanonicalNote) ([]entities.CanonicalNote, int) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, note := range existing {
		seen[note.Key()] = struct{}{}
	}

	merged := make([]entities.CanonicalNote, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	added := 0
	for _, note := range incoming {
		key := note.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, note)
		added++
	}
	return merged, added
}

// ReadCollection reads a collection file. JSON is assumed unless the
// extension is .yaml or .yml. An empty file is an empty collection.
func ReadCollection(path string) ([]entities.CanonicalNote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrMissingSource, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	notes := []entities.CanonicalNote{}
	if len(bytes.TrimSpace(data)) == 0 {
		return notes, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &notes)
	default:
		err = json.Unmarshal(data, &notes)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entities.ErrUnreadableFormat, path, err)
	}
	if notes == nil {
		notes = []entities.CanonicalNote{}
	}
	return notes, nil
}

// WriteCollection writes notes to path in the format implied by its
// extension: .json, .yaml/.yml, or .txt/.md as indented JSON text. The file
// is written to a temporary sibling and renamed into place. Every failure
// wraps ErrWriteFailure.
func WriteCollection(path string, notes []entities.CanonicalNote) error {
	if notes == nil {
		notes = []entities.CanonicalNote{}
	}

	data, err := EncodeCollection(filepath.Ext(path), notes)
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrWriteFailure, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", entities.ErrWriteFailure, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrWriteFailure, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to write %s: %v", entities.ErrWriteFailure, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to write %s: %v", entities.ErrWriteFailure, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to replace %s: %v", entities.ErrWriteFailure, path, err)
	}
	return nil
}

// EncodeCollection serializes notes for a file with extension ext.
func EncodeCollection(ext string, notes []entities.CanonicalNote) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json", ".txt", ".md", "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(notes); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".yaml", ".yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(notes); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", entities.ErrUnsupportedFormat, ext)
	}
}
