package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/importers"
	"github.com/mrlokans/notecompiler/internal/segmenter"
)

// AddCommand appends one hand-written note to the collection
type AddCommand struct {
	cfg *config.Config
	out io.Writer

	Content string
	Site    string
	Title   string
	Date    string
}

func NewAddCommand(cfg *config.Config, out io.Writer) *AddCommand {
	return &AddCommand{cfg: cfg, out: out}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)

	fs.StringVar(&cmd.Content, "content", "", "Note text (required)")
	fs.StringVar(&cmd.Site, "site", "", "Site the note belongs to (required)")
	fs.StringVar(&cmd.Title, "title", "", "Title (default: first line of the content)")
	fs.StringVar(&cmd.Date, "date", "", "Date, e.g. 2024-01-31 or 2024-01-31 14:00:00 (default: now)")

	fs.Usage = func() {
		usageHeader("add", "-site <site> -content <text> [options]")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *AddCommand) Run() error {
	note := entities.CanonicalNote{
		Title:   cmd.Title,
		Content: cmd.Content,
		Site:    cmd.Site,
		Source:  entities.SourceManual,
	}
	if note.Title == "" {
		note.Title = segmenter.ClipTitle(segmenter.FirstLine(cmd.Content))
	}
	if cmd.Date != "" {
		parsed, err := importers.ParseDate(cmd.Date)
		if err != nil {
			return err
		}
		note.Date = entities.FormatDate(parsed)
	}

	saved, err := openStore(cmd.cfg, newNormalizer(cmd.cfg)).Append(note)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "Added note %q for site %s (%s)\n", saved.Title, saved.Site, saved.Date)
	return nil
}
