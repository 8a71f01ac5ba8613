package cli

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/database"
	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/notestore"
	"github.com/mrlokans/notecompiler/internal/settingsstore"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	database.LogLevel = logger.Silent

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	return &config.Config{
		Storage: config.Storage{
			DataDir:   dataDir,
			NotesFile: filepath.Join(dataDir, "notes.json"),
		},
		Sources: config.Sources{
			StickyNotesDBPath: filepath.Join(dir, "missing", "plum.sqlite"),
		},
		Extraction:  config.Extraction{ClassifySites: true},
		Schedule:    config.Schedule{ExtractSchedule: config.DefaultExtractSchedule},
		Database:    config.Database{Path: filepath.Join(dir, "index.db")},
		Preferences: config.Preferences{Path: filepath.Join(dir, "prefs.json")},
	}
}

func run(t *testing.T, cfg *config.Config, name string, args ...string) (string, error) {
	t.Helper()
	entry, ok := Lookup(name)
	require.True(t, ok, "command %s not registered", name)

	var out bytes.Buffer
	cmd := entry.New(cfg, &out)
	if err := cmd.ParseFlags(args); err != nil {
		return out.String(), err
	}
	err := cmd.Run()
	return out.String(), err
}

func loadNotes(t *testing.T, cfg *config.Config) []entities.CanonicalNote {
	t.Helper()
	notes, err := notestore.ReadCollection(cfg.NotesFile)
	require.NoError(t, err)
	return notes
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"extract", "extract-source", "consolidate", "search", "add", "index", "export", "prefs", "watch"} {
		_, ok := Lookup(name)
		assert.True(t, ok, name)
	}
	_, ok := Lookup("serve")
	assert.False(t, ok)
}

func TestExtract_MissingDatabaseIsNotFatal(t *testing.T) {
	cfg := newTestConfig(t)

	out, err := run(t, cfg, "extract")

	require.NoError(t, err)
	assert.Contains(t, out, "Sources read: 0 (failed: 1)")
	assert.Contains(t, out, "Notes added: 0")
}

func TestExtractSource_TextFileIntoCollection(t *testing.T) {
	cfg := newTestConfig(t)
	input := filepath.Join(t.TempDir(), "log.md")
	writeFile(t, input, "# Pump\nSite: 711\nReplaced pump\n# Printer\nSite: 712\nFixed printer")

	out, err := run(t, cfg, "extract-source", "-path", input)

	require.NoError(t, err)
	assert.Contains(t, out, "Notes added: 2")

	notes := loadNotes(t, cfg)
	require.Len(t, notes, 2)
	assert.Equal(t, "711", notes[0].Site)
	assert.Equal(t, "Replaced pump", notes[0].Content)

	// A second run adds nothing.
	out, err = run(t, cfg, "extract-source", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Notes already present: 2")
	assert.Len(t, loadNotes(t, cfg), 2)
}

func TestExtractSource_OutputByExtension(t *testing.T) {
	cfg := newTestConfig(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.csv")
	writeFile(t, input, "content,site,date\nReplaced pump,711,2024-01-01\n")

	output := filepath.Join(dir, "out.yaml")
	_, err := run(t, cfg, "extract-source", "-path", input, "-output", output)
	require.NoError(t, err)

	notes, err := notestore.ReadCollection(output)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "711", notes[0].Site)
	assert.NoFileExists(t, cfg.NotesFile)

	_, err = run(t, cfg, "extract-source", "-path", input, "-output", filepath.Join(dir, "out.xml"))
	assert.ErrorIs(t, err, entities.ErrUnsupportedFormat)
}

func TestExtractSource_Directory(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.DirectoryExclude = []string{"**/skip"}
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "Site: 1\nfirst")
	writeFile(t, filepath.Join(root, "nested", "b.txt"), "Site: 2\nsecond")
	writeFile(t, filepath.Join(root, "skip", "c.txt"), "Site: 3\nthird")

	_, err := run(t, cfg, "extract-source", "-path", root)

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, notestore.Sites(loadNotes(t, cfg)))
}

func TestExtractSource_Clipboard(t *testing.T) {
	cfg := newTestConfig(t)
	var out bytes.Buffer
	cmd := NewExtractSourceCommand(cfg, &out)
	require.NoError(t, cmd.ParseFlags([]string{"-clipboard"}))
	cmd.paste = func() (string, error) { return "Site: 9\npasted note", nil }

	require.NoError(t, cmd.Run())

	notes := loadNotes(t, cfg)
	require.Len(t, notes, 1)
	assert.Equal(t, "9", notes[0].Site)
	assert.Equal(t, entities.SourceClipboard, notes[0].Source)
}

func TestExtractSource_FlagValidation(t *testing.T) {
	cfg := newTestConfig(t)

	_, err := run(t, cfg, "extract-source")
	assert.Error(t, err)

	_, err = run(t, cfg, "extract-source", "-clipboard", "-path", "x.txt")
	assert.Error(t, err)

	_, err = run(t, cfg, "extract-source", "-path", filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestAdd(t *testing.T) {
	cfg := newTestConfig(t)

	out, err := run(t, cfg, "add", "-site", "711", "-content", "Checked pump seals\nNo leaks", "-date", "2024-02-03")

	require.NoError(t, err)
	assert.Contains(t, out, `Added note "Checked pump seals" for site 711 (2024-02-03 00:00:00)`)

	notes := loadNotes(t, cfg)
	require.Len(t, notes, 1)
	assert.Equal(t, entities.SourceManual, notes[0].Source)
}

func TestAdd_Validation(t *testing.T) {
	cfg := newTestConfig(t)

	_, err := run(t, cfg, "add", "-content", "no site")
	assert.ErrorIs(t, err, entities.ErrInvalidNote)

	_, err = run(t, cfg, "add", "-site", "711", "-content", "x", "-date", "someday")
	assert.Error(t, err)
	assert.NoFileExists(t, cfg.NotesFile)
}

func seedCollection(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, notestore.WriteCollection(cfg.NotesFile, []entities.CanonicalNote{
		{Title: "Pump", Content: "Replaced pump", Site: "711", Date: "2024-01-01 09:00:00", Source: entities.SourceManual},
		{Title: "Printer", Content: "Fixed printer", Site: "712", Date: "2024-01-02 09:00:00", Source: entities.SourceManual},
		{Title: "Pump again", Content: "Pump primed", Site: "712", Date: "2024-01-03 09:00:00", Source: entities.SourceManual},
	}))
}

func TestSearch_Collection(t *testing.T) {
	cfg := newTestConfig(t)
	seedCollection(t, cfg)

	out, err := run(t, cfg, "search", "PUMP")
	require.NoError(t, err)
	assert.Contains(t, out, "=== 711 (1) ===")
	assert.Contains(t, out, "=== 712 (1) ===")
	assert.Contains(t, out, "2 notes in 2 sites")

	out, err = run(t, cfg, "search", "-site", "712", "-format", "json", "pump")
	require.NoError(t, err)
	var notes []entities.CanonicalNote
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "Pump primed", notes[0].Content)
}

func TestSearch_Sites(t *testing.T) {
	cfg := newTestConfig(t)
	seedCollection(t, cfg)

	out, err := run(t, cfg, "search", "-sites")

	require.NoError(t, err)
	assert.Equal(t, "711\n712\n", out)
}

func TestSearch_InvalidFlags(t *testing.T) {
	cfg := newTestConfig(t)

	_, err := run(t, cfg, "search", "-date", "yesterday")
	assert.Error(t, err)

	_, err = run(t, cfg, "search", "-format", "xml")
	assert.Error(t, err)
}

func TestIndexAndSearchIndex(t *testing.T) {
	cfg := newTestConfig(t)
	seedCollection(t, cfg)

	out, err := run(t, cfg, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 3 notes")
	assert.Contains(t, out, "(3 notes)")

	out, err = run(t, cfg, "search", "-index", "-site", "712", "pump")
	require.NoError(t, err)
	assert.Contains(t, out, "Pump primed")
	assert.NotContains(t, out, "Replaced pump")

	out, err = run(t, cfg, "index", "-status")
	require.NoError(t, err)
	assert.NotContains(t, out, "Indexed")
	assert.Contains(t, out, "Last built:")
}

func TestIndex_StatusBeforeBuild(t *testing.T) {
	cfg := newTestConfig(t)

	out, err := run(t, cfg, "index", "-status")

	require.NoError(t, err)
	assert.Contains(t, out, "Index has never been built")
}

func TestConsolidate(t *testing.T) {
	cfg := newTestConfig(t)
	writeFile(t, filepath.Join(cfg.DataDir, "711", "pump.json"),
		`[{"content": "Replaced seal", "date": "2024-01-05 10:00:00"}]`)
	writeFile(t, filepath.Join(cfg.DataDir, "712", "printer.json"),
		`[{"content": "New ribbon", "date": "2024-01-06 10:00:00"}]`)

	out, err := run(t, cfg, "consolidate")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 notes in 2 sites")
	assert.Contains(t, out, "Added 2 notes")

	out, err = run(t, cfg, "consolidate")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 0 notes")
	assert.Len(t, loadNotes(t, cfg), 2)
}

func TestExport(t *testing.T) {
	cfg := newTestConfig(t)
	seedCollection(t, cfg)
	dir := t.TempDir()

	out, err := run(t, cfg, "export", "-output", filepath.Join(dir, "md"))
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 notes for 2 sites")
	assert.FileExists(t, filepath.Join(dir, "md", "711.md"))

	_, err = run(t, cfg, "export", "-output", filepath.Join(dir, "tree"), "-format", "tree", "-site", "712")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "tree", "712", "note_2.txt"))
	assert.NoDirExists(t, filepath.Join(dir, "tree", "711"))

	_, err = run(t, cfg, "export")
	assert.Error(t, err)
}

func TestPrefs(t *testing.T) {
	cfg := newTestConfig(t)

	out, err := run(t, cfg, "prefs", "get", "notesPerPage")
	require.NoError(t, err)
	assert.Equal(t, "20", strings.TrimSpace(out))

	_, err = run(t, cfg, "prefs", "set", "notifications.sound", "false")
	require.NoError(t, err)

	out, err = run(t, cfg, "prefs", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "notifications.sound = false\n")
	assert.Contains(t, out, "theme = light\n")

	_, err = run(t, cfg, "prefs", "get", "missing.key")
	assert.Error(t, err)

	_, err = run(t, cfg, "prefs", "remove", "theme")
	assert.Error(t, err)
}

func TestWatch_StatusAndScheduleOverride(t *testing.T) {
	cfg := newTestConfig(t)

	out, err := run(t, cfg, "watch", "-schedule", "*/5 * * * *", "-status")
	require.NoError(t, err)
	assert.Contains(t, out, "Schedule: */5 * * * * (Every 5 minutes, from database)")
	assert.Contains(t, out, "Last run: never")

	out, err = run(t, cfg, "watch", "-clear-schedule", "-status")
	require.NoError(t, err)
	assert.Contains(t, out, "from config")

	_, err = run(t, cfg, "watch", "-schedule", "whenever")
	assert.Error(t, err)
}

func TestWatch_OnceRecordsFailureForMissingDatabase(t *testing.T) {
	cfg := newTestConfig(t)

	out, err := run(t, cfg, "watch", "-once")

	require.NoError(t, err)
	assert.Contains(t, out, "(failed) Source sticky notes could not be read")
}

func TestRecordIndexStatus(t *testing.T) {
	cfg := newTestConfig(t)
	db, err := database.NewDatabase(cfg.Database.Path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.ReplaceNotes([]entities.CanonicalNote{{Site: "711", Content: "a"}, {Site: "712", Content: "b"}}))

	recordIndexStatus(db, cfg)

	status := settingsstore.New(db, cfg).GetIndexStatus()
	assert.Equal(t, cfg.NotesFile, status.Source)
	assert.Equal(t, 2, status.Entries)
}

func TestRecordIndexStatus_LogsFailures(t *testing.T) {
	cfg := newTestConfig(t)
	db, err := database.NewDatabase(cfg.Database.Path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	recordIndexStatus(db, cfg)

	assert.Contains(t, logs.String(), "WARNING: Extract:")
}
