package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/database"
	"github.com/mrlokans/notecompiler/internal/exporters"
	"github.com/mrlokans/notecompiler/internal/importers"
)

// ExtractCommand extracts notes from the Windows Sticky Notes database
type ExtractCommand struct {
	cfg *config.Config
	out io.Writer

	DBPath      string
	Legacy      bool
	UpdateIndex bool
	MarkdownDir string
	DryRun      bool
	Verbose     bool
}

func NewExtractCommand(cfg *config.Config, out io.Writer) *ExtractCommand {
	return &ExtractCommand{cfg: cfg, out: out}
}

func (cmd *ExtractCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)

	fs.StringVar(&cmd.DBPath, "db", cmd.cfg.StickyNotesDBPath, "Path to plum.sqlite (default: the standard Sticky Notes location)")
	fs.BoolVar(&cmd.Legacy, "legacy", false, "Write one note_N.txt per note under <data>/<site>/ instead of the collection")
	fs.BoolVar(&cmd.UpdateIndex, "index", false, "Refresh the SQLite search index after saving")
	fs.StringVar(&cmd.MarkdownDir, "markdown", "", "Also export the collection as markdown to this directory")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be extracted without saving")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every extracted note")

	fs.Usage = func() {
		usageHeader("extract", "[options]")
		fmt.Fprintf(os.Stderr, "Extract notes from the Windows Sticky Notes database into the note collection.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s extract\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s extract -db ./plum.sqlite -index\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s extract -legacy\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *ExtractCommand) Run() error {
	fmt.Fprintln(cmd.out, "Sticky Notes Extraction")
	fmt.Fprintln(cmd.out, "=======================")

	source := stickySource(cmd.cfg, cmd.DBPath)
	fmt.Fprintf(cmd.out, "Database: %s\n", source.Locator)

	if cmd.Legacy {
		return cmd.runLegacy(source)
	}

	normalizer := newNormalizer(cmd.cfg)
	exporter := exporters.NewCollectionExporter(openStore(cmd.cfg, normalizer))

	if cmd.DryRun {
		notes, result := importers.NewPipeline(exporter, normalizer).Extract(source)
		fmt.Fprintf(cmd.out, "\nDRY RUN: %d notes from %d payloads would be saved to %s\n",
			len(notes), result.PayloadsRead, cmd.cfg.NotesFile)
		if cmd.Verbose {
			return printNotes(cmd.out, notes, "text")
		}
		return nil
	}

	var index *database.Database
	if cmd.UpdateIndex {
		db, err := openIndex(cmd.cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		index = db
		exporter.WithIndex(db)
	}
	if cmd.MarkdownDir != "" {
		exporter.WithMarkdown(exporters.NewMarkdownExporter(cmd.MarkdownDir))
	}

	result, err := importers.NewPipeline(exporter, normalizer).Import(source)
	if err != nil {
		return err
	}
	printImportResult(cmd.out, result)

	if index != nil && result.NotesAdded > 0 {
		recordIndexStatus(index, cmd.cfg)
	}

	fmt.Fprintf(cmd.out, "\nCollection: %s\n", cmd.cfg.NotesFile)
	return nil
}

// runLegacy writes a per-site tree of text files. Code-marker lines are
// dropped and sites are always classified.
func (cmd *ExtractCommand) runLegacy(source importers.Source) error {
	normalizer := importers.NewNormalizer(importers.NormalizerOptions{
		ClassifySites:  true,
		StripCodeLines: true,
	})

	notes, result := importers.NewPipeline(nil, normalizer).Extract(source)
	if len(notes) == 0 {
		fmt.Fprintln(cmd.out, "No notes extracted")
		return nil
	}

	if cmd.DryRun {
		fmt.Fprintf(cmd.out, "\nDRY RUN: %d notes would be written under %s\n", len(notes), cmd.cfg.DataDir)
		return nil
	}

	exportResult, err := exporters.NewSiteTreeExporter(cmd.cfg.DataDir).Export(notes)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "\nRead %d payloads, wrote %d notes for %d sites under %s\n",
		result.PayloadsRead, exportResult.FilesWritten, exportResult.SitesProcessed, cmd.cfg.DataDir)
	return nil
}
