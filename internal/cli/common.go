// Package cli implements the note compiler's subcommands. Each command
// parses its own flags and then runs against the shared configuration.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/database"
	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/importers"
	"github.com/mrlokans/notecompiler/internal/notestore"
	"github.com/mrlokans/notecompiler/internal/services"
	"github.com/mrlokans/notecompiler/internal/settingsstore"
	"github.com/mrlokans/notecompiler/internal/sources"
)

// Command is a single subcommand.
type Command interface {
	ParseFlags(args []string) error
	Run() error
}

// Entry describes a registered subcommand.
type Entry struct {
	Name        string
	Description string
	New         func(cfg *config.Config, out io.Writer) Command
}

// Commands lists every subcommand in the order shown by help.
var Commands = []Entry{
	{"extract", "Extract notes from the Windows Sticky Notes database", func(c *config.Config, w io.Writer) Command { return NewExtractCommand(c, w) }},
	{"extract-source", "Extract notes from a file, directory or the clipboard", func(c *config.Config, w io.Writer) Command { return NewExtractSourceCommand(c, w) }},
	{"consolidate", "Merge per-equipment note files into the collection", func(c *config.Config, w io.Writer) Command { return NewConsolidateCommand(c, w) }},
	{"search", "Search notes by text, site and date", func(c *config.Config, w io.Writer) Command { return NewSearchCommand(c, w) }},
	{"add", "Add a note by hand", func(c *config.Config, w io.Writer) Command { return NewAddCommand(c, w) }},
	{"index", "Rebuild the SQLite search index from the collection", func(c *config.Config, w io.Writer) Command { return NewIndexCommand(c, w) }},
	{"export", "Export the collection as markdown or a per-site text tree", func(c *config.Config, w io.Writer) Command { return NewExportCommand(c, w) }},
	{"prefs", "Show or change user preferences", func(c *config.Config, w io.Writer) Command { return NewPrefsCommand(c, w) }},
	{"watch", "Extract on a schedule and when sticky notes change", func(c *config.Config, w io.Writer) Command { return NewWatchCommand(c, w) }},
}

// Lookup returns the registered subcommand called name.
func Lookup(name string) (Entry, bool) {
	for _, entry := range Commands {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}

func usageHeader(name, args string) {
	fmt.Fprintf(os.Stderr, "Usage: %s %s %s\n\n", os.Args[0], name, args)
}

func newNormalizer(cfg *config.Config) *importers.Normalizer {
	return importers.NewNormalizer(importers.NormalizerOptions{
		ClassifySites:  cfg.ClassifySites,
		StripCodeLines: cfg.StripCodeLines,
	})
}

// openStore returns the canonical collection. When the collection file
// does not exist yet it is seeded from the per-equipment files.
func openStore(cfg *config.Config, normalizer *importers.Normalizer) *notestore.Store {
	return notestore.New(cfg.NotesFile).WithConsolidation(func() ([]entities.CanonicalNote, error) {
		return importers.ConsolidateEquipment(cfg.DataDir, normalizer)
	})
}

func openIndex(cfg *config.Config) (*database.Database, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize index database: %w", err)
	}
	return db, nil
}

// recordIndexStatus notes the refreshed index size after an extract. The
// index is a disposable mirror, so failures are only logged.
func recordIndexStatus(index *database.Database, cfg *config.Config) {
	count, err := index.CountNotes()
	if err != nil {
		log.Printf("WARNING: Extract: failed to count indexed notes: %v", err)
		return
	}
	if err := settingsstore.New(index, cfg).SetIndexStatus(cfg.NotesFile, int(count)); err != nil {
		log.Printf("WARNING: Extract: failed to record index status: %v", err)
	}
}

func stickySource(cfg *config.Config, dbPath string) importers.Source {
	if dbPath == "" {
		dbPath = cfg.StickyNotesDBPath
	}
	reader := sources.NewStickyNotesReader(dbPath)
	return importers.Source{Name: "sticky notes", Reader: reader, Locator: reader.DBPath()}
}

func printImportResult(out io.Writer, result services.ImportResult) {
	fmt.Fprintln(out, "\n=== Extraction Summary ===")
	fmt.Fprintf(out, "Sources read: %d (failed: %d)\n", result.SourcesRead, result.SourcesFailed)
	fmt.Fprintf(out, "Payloads read: %d\n", result.PayloadsRead)
	fmt.Fprintf(out, "Notes discarded (empty): %d\n", result.NotesDiscarded)
	fmt.Fprintf(out, "Notes added: %d\n", result.NotesAdded)
	if result.NotesSkipped > 0 {
		fmt.Fprintf(out, "Notes already present: %d\n", result.NotesSkipped)
	}
}

// printNotes writes notes grouped by site, sites in sorted order.
func printNotes(out io.Writer, notes []entities.CanonicalNote, format string) error {
	if format == "json" {
		if notes == nil {
			notes = []entities.CanonicalNote{}
		}
		return printJSON(out, notes)
	}

	if len(notes) == 0 {
		fmt.Fprintln(out, "No notes found")
		return nil
	}

	grouped := notestore.GroupBySite(notes)
	sites := notestore.Sites(notes)

	for _, site := range sites {
		fmt.Fprintf(out, "\n=== %s (%d) ===\n", site, len(grouped[site]))
		for _, note := range grouped[site] {
			fmt.Fprintf(out, "[%s] %s\n", note.Date, note.Title)
			fmt.Fprintf(out, "  %s\n", strings.ReplaceAll(note.Content, "\n", "\n  "))
		}
	}
	fmt.Fprintf(out, "\n%d notes in %d sites\n", len(notes), len(sites))
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
