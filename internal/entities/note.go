package entities

import (
	"strings"
	"time"
)

// DateLayout is the timestamp format used for every date field in the
// canonical collection.
const DateLayout = "2006-01-02 15:04:05"

// UncategorizedSite is assigned when no site could be inferred for a note.
const UncategorizedSite = "Uncategorized"

// Source tags written to CanonicalNote.Source.
const (
	SourceStickyNotes    = "windows_sticky_notes"
	SourceTextExtraction = "text_extraction"
	SourceTextFile       = "text_file"
	SourceTabularFile    = "csv_file"
	SourceStructuredFile = "structured_file"
	SourceHTMLFile       = "html_file"
	SourceClipboard      = "clipboard"
	SourceEquipmentFile  = "equipment_file"
	SourceManual         = "manual"
)

// CanonicalNote is the normalized record every extraction produces,
// independent of where the note came from.
type CanonicalNote struct {
	Site        string `json:"site" yaml:"site"`
	Equipment   string `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Content     string `json:"content" yaml:"content"`
	Date        string `json:"date" yaml:"date"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	ExtractedAt string `json:"extracted_at,omitempty" yaml:"extracted_at,omitempty"`
}

// Key identifies a note for merge purposes. Two notes with the same site,
// equipment, content and date are considered the same record.
func (n CanonicalNote) Key() string {
	return n.Site + "|" + n.Equipment + "|" + n.Date + "|" + n.Content
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NoteRecord is the indexed copy of a CanonicalNote kept in the SQLite
// search database.
type NoteRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Site        string    `gorm:"index;size:256" json:"site"`
	Equipment   string    `gorm:"index;size:256" json:"equipment,omitempty"`
	Title       string    `gorm:"size:128" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	SearchText  string    `gorm:"type:text" json:"-"` // strings.ToLower(Content); SQLite LOWER() folds ASCII only
	Date        string    `gorm:"index;size:19" json:"date"`
	Source      string    `gorm:"size:50" json:"source"`
	ExtractedAt string    `gorm:"size:32" json:"extracted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (NoteRecord) TableName() string {
	return "notes"
}

// NewNoteRecord copies a canonical note into its indexed form.
func NewNoteRecord(n CanonicalNote) NoteRecord {
	return NoteRecord{
		Site:        n.Site,
		Equipment:   n.Equipment,
		Title:       n.Title,
		Content:     n.Content,
		SearchText:  strings.ToLower(n.Content),
		Date:        n.Date,
		Source:      n.Source,
		ExtractedAt: n.ExtractedAt,
	}
}

// Note converts the record back to its canonical form.
func (r NoteRecord) Note() CanonicalNote {
	return CanonicalNote{
		Site:        r.Site,
		Equipment:   r.Equipment,
		Title:       r.Title,
		Content:     r.Content,
		Date:        r.Date,
		Source:      r.Source,
		ExtractedAt: r.ExtractedAt,
	}
}
