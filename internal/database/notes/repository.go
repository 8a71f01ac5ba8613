// Package notes provides database operations for the note search index.
//
// This package implements the NoteSearcher and NoteExporter interfaces
// defined in internal/services/interfaces.go.
//
// # Usage
//
//	repo := notes.NewRepository(db)
//	found, err := repo.SearchNotes("pump", "711")
package notes

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/services"
)

// Repository handles all note index operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new notes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceAll rebuilds the index from notes in a single transaction.
func (r *Repository) ReplaceAll(notes []entities.CanonicalNote) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.NoteRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear notes: %w", err)
		}
		if len(notes) == 0 {
			return nil
		}

		records := make([]entities.NoteRecord, 0, len(notes))
		for _, note := range notes {
			records = append(records, entities.NewNoteRecord(note))
		}
		if err := tx.CreateInBatches(records, 200).Error; err != nil {
			return fmt.Errorf("failed to insert notes: %w", err)
		}
		return nil
	})
}

// Export inserts notes not yet indexed, deduplicating by site, date and
// content.
func (r *Repository) Export(notes []entities.CanonicalNote) (services.ExportResult, error) {
	result := services.ExportResult{NotesProcessed: len(notes)}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, note := range notes {
			var count int64
			err := tx.Model(&entities.NoteRecord{}).
				Where("site = ? AND equipment = ? AND date = ? AND content = ?", note.Site, note.Equipment, note.Date, note.Content).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("failed to check for existing note: %w", err)
			}
			if count > 0 {
				result.NotesSkipped++
				continue
			}

			record := entities.NewNoteRecord(note)
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to index note: %w", err)
			}
			result.NotesAdded++
		}
		return nil
	})
	if err != nil {
		return services.ExportResult{NotesProcessed: len(notes)}, err
	}

	log.Printf("Indexed %d notes (%d already present)", result.NotesAdded, result.NotesSkipped)
	return result, nil
}

// SearchNotes returns notes whose content contains query
// (case-insensitive) and, when site is not empty, whose site equals it.
// Results are ordered by date, newest first.
func (r *Repository) SearchNotes(query, site string) ([]entities.CanonicalNote, error) {
	var records []entities.NoteRecord

	tx := r.db.Model(&entities.NoteRecord{})
	if query != "" {
		tx = tx.Where("search_text LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(query))+"%")
	}
	if site != "" {
		tx = tx.Where("site = ?", site)
	}
	if err := tx.Order("date DESC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	return toNotes(records), nil
}

// AllNotes returns every indexed note in insertion order.
func (r *Repository) AllNotes() ([]entities.CanonicalNote, error) {
	var records []entities.NoteRecord
	if err := r.db.Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return toNotes(records), nil
}

// GetSites returns the distinct indexed sites, sorted.
func (r *Repository) GetSites() ([]string, error) {
	var sites []string
	err := r.db.Model(&entities.NoteRecord{}).
		Distinct("site").
		Order("site ASC").
		Pluck("site", &sites).Error
	return sites, err
}

// SiteCount is the number of indexed notes for one site.
type SiteCount struct {
	Site  string
	Count int64
}

// CountBySite returns per-site note counts, sorted by site.
func (r *Repository) CountBySite() ([]SiteCount, error) {
	var counts []SiteCount
	err := r.db.Model(&entities.NoteRecord{}).
		Select("site, COUNT(*) AS count").
		Group("site").
		Order("site ASC").
		Scan(&counts).Error
	return counts, err
}

// Count returns the number of indexed notes.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.NoteRecord{}).Count(&count).Error
	return count, err
}

func toNotes(records []entities.NoteRecord) []entities.CanonicalNote {
	notes := make([]entities.CanonicalNote, 0, len(records))
	for _, record := range records {
		notes = append(notes, record.Note())
	}
	return notes
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// Compile-time interface checks
var (
	_ services.NoteSearcher = (*Repository)(nil)
	_ services.NoteExporter = (*Repository)(nil)
)
