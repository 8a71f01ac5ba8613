package exporters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/notecompiler/internal/database"
	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/notestore"
)

func sampleNotes() []entities.CanonicalNote {
	return []entities.CanonicalNote{
		{Title: "Pump", Content: "Replaced pump", Site: "711", Date: "2024-01-01 09:00:00", Source: entities.SourceStickyNotes},
		{Title: "Printer", Content: "Fixed receipt printer", Site: "712", Date: "2024-01-02 09:00:00", Source: entities.SourceStickyNotes},
		{Title: "E-stop", Content: "Tested E-stop\nAll good", Site: "711", Date: "2024-01-03 09:00:00", Source: "manual"},
	}
}

// --- SiteTreeExporter ---

func TestSiteTreeExporter_WritesNumberedFilesPerSite(t *testing.T) {
	dir := t.TempDir()

	result, err := NewSiteTreeExporter(dir).Export(sampleNotes())

	require.NoError(t, err)
	assert.Equal(t, ExportResult{SitesProcessed: 2, NotesProcessed: 3, FilesWritten: 3}, result)

	first, err := os.ReadFile(filepath.Join(dir, "711", "note_1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Replaced pump", string(first))

	second, err := os.ReadFile(filepath.Join(dir, "711", "note_2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Tested E-stop\nAll good", string(second))

	assert.FileExists(t, filepath.Join(dir, "712", "note_1.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "712", "note_2.txt"))
}

func TestSiteTreeExporter_SanitizesSiteDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := NewSiteTreeExporter(dir).Export([]entities.CanonicalNote{
		{Content: "escape attempt", Site: "../outside"},
	})

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "outside", "note_1.txt"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dir), "outside", "note_1.txt"))
}

func TestSiteTreeExporter_Empty(t *testing.T) {
	result, err := NewSiteTreeExporter(t.TempDir()).Export(nil)

	require.NoError(t, err)
	assert.Equal(t, ExportResult{}, result)
}

// --- GenerateMarkdown ---

func TestGenerateMarkdown(t *testing.T) {
	exportedAt := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
	notes := sampleNotes()

	t.Run("frontmatter", func(t *testing.T) {
		markdown := GenerateMarkdown("711", []entities.CanonicalNote{notes[0], notes[2]}, exportedAt)

		assert.Contains(t, markdown, "content_type: site_notes\n")
		assert.Contains(t, markdown, "created_at: 2024-06-15\n")
		assert.Contains(t, markdown, "site: \"711\"\n")
		assert.Contains(t, markdown, "note_count: 2\n")
		assert.Contains(t, markdown, "sources: [manual, windows_sticky_notes]\n")
		assert.Contains(t, markdown, "# 711\n")
	})

	t.Run("newest first with quoted multiline content", func(t *testing.T) {
		markdown := GenerateMarkdown("711", []entities.CanonicalNote{notes[0], notes[2]}, exportedAt)

		assert.Contains(t, markdown, "> Tested E-stop\n> All good\n")
		assert.Less(t, strings.Index(markdown, "## E-stop"), strings.Index(markdown, "## Pump"))
	})

	t.Run("escapes quotes in site", func(t *testing.T) {
		markdown := GenerateMarkdown(`Store "North"`, nil, exportedAt)

		assert.Contains(t, markdown, `site: "Store \"North\""`)
		assert.Contains(t, markdown, "note_count: 0\n")
	})
}

// --- MarkdownExporter ---

func TestMarkdownExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	exporter := NewMarkdownExporter(dir)

	result, err := exporter.Export(sampleNotes())

	require.NoError(t, err)
	assert.Equal(t, 2, result.SitesProcessed)
	assert.Equal(t, 3, result.NotesProcessed)
	assert.Equal(t, 3, result.FilesWritten)

	assert.FileExists(t, filepath.Join(dir, "711.md"))
	assert.FileExists(t, filepath.Join(dir, "712.md"))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Sites\n\n- [[711]] (2 notes)\n- [[712]] (1 notes)\n", string(index))
}

func TestMarkdownExporter_UnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := NewMarkdownExporter(filepath.Join(file, "export")).Export(sampleNotes())

	assert.ErrorIs(t, err, entities.ErrWriteFailure)
}

// --- CollectionExporter ---

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	database.LogLevel = logger.Silent

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCollectionExporter_RefreshesFollowUps(t *testing.T) {
	dir := t.TempDir()
	store := notestore.New(filepath.Join(dir, "notes.json"))
	db := setupTestDB(t)
	markdownDir := filepath.Join(dir, "md")

	exporter := NewCollectionExporter(store).WithIndex(db).WithMarkdown(NewMarkdownExporter(markdownDir))

	result, err := exporter.Export(sampleNotes())

	require.NoError(t, err)
	assert.Equal(t, 3, result.NotesAdded)

	count, err := db.CountNotes()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.FileExists(t, filepath.Join(markdownDir, "711.md"))

	loaded, err := exporter.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 3)
}

func TestCollectionExporter_NothingNewSkipsFollowUps(t *testing.T) {
	dir := t.TempDir()
	store := notestore.New(filepath.Join(dir, "notes.json"))
	require.NoError(t, store.Save(sampleNotes()))
	markdownDir := filepath.Join(dir, "md")

	result, err := NewCollectionExporter(store).WithMarkdown(NewMarkdownExporter(markdownDir)).Export(sampleNotes())

	require.NoError(t, err)
	assert.Equal(t, 0, result.NotesAdded)
	assert.Equal(t, 3, result.NotesSkipped)
	assert.NoDirExists(t, markdownDir)
}

func TestCollectionExporter_CorruptCollectionIsWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewCollectionExporter(notestore.New(path)).Export(sampleNotes())

	assert.ErrorIs(t, err, entities.ErrWriteFailure)
}
