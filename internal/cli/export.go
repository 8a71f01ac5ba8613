package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/exporters"
	"github.com/mrlokans/notecompiler/internal/notestore"
)

// ExportCommand writes the collection, or a filtered part of it, to
// another layout.
type ExportCommand struct {
	cfg *config.Config
	out io.Writer

	Output string
	Format string
	Site   string
}

func NewExportCommand(cfg *config.Config, out io.Writer) *ExportCommand {
	return &ExportCommand{cfg: cfg, out: out}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	fs.StringVar(&cmd.Output, "output", "", "Output directory (required)")
	fs.StringVar(&cmd.Format, "format", "markdown", "markdown (one document per site) or tree (<site>/note_N.txt)")
	fs.StringVar(&cmd.Site, "site", "", "Only export this site")

	fs.Usage = func() {
		usageHeader("export", "-output <dir> [options]")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Output == "" {
		return fmt.Errorf("required flag -output not provided")
	}
	if cmd.Format != "markdown" && cmd.Format != "tree" {
		return fmt.Errorf("unknown format %q (use markdown or tree)", cmd.Format)
	}
	return nil
}

func (cmd *ExportCommand) Run() error {
	notes, err := openStore(cmd.cfg, newNormalizer(cmd.cfg)).Search(notestore.Filter{Site: cmd.Site})
	if err != nil {
		return err
	}

	var exporter exporters.NoteExporter = exporters.NewMarkdownExporter(cmd.Output)
	if cmd.Format == "tree" {
		exporter = exporters.NewSiteTreeExporter(cmd.Output)
	}

	result, err := exporter.Export(notes)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "Exported %d notes for %d sites to %s\n", result.NotesProcessed, result.SitesProcessed, cmd.Output)
	if result.SitesFailed > 0 {
		fmt.Fprintf(cmd.out, "%d sites failed to export\n", result.SitesFailed)
	}
	return nil
}
