package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/notestore"
)

// SearchCommand queries the collection, or the search index with -index.
type SearchCommand struct {
	cfg *config.Config
	out io.Writer

	Text      string
	Site      string
	Date      string
	UseIndex  bool
	ListSites bool
	Format    string
}

func NewSearchCommand(cfg *config.Config, out io.Writer) *SearchCommand {
	return &SearchCommand{cfg: cfg, out: out}
}

func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)

	fs.StringVar(&cmd.Site, "site", "", "Only notes for this site (exact match)")
	fs.StringVar(&cmd.Date, "date", "", "Only notes from: today, week or month")
	fs.BoolVar(&cmd.UseIndex, "index", false, "Search the SQLite index instead of the collection file")
	fs.BoolVar(&cmd.ListSites, "sites", false, "List known sites and exit")
	fs.StringVar(&cmd.Format, "format", "text", "Output format: text or json")

	fs.Usage = func() {
		usageHeader("search", "[options] [text]")
		fmt.Fprintf(os.Stderr, "Text matches note content case-insensitively.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Text = strings.Join(fs.Args(), " ")

	if err := notestore.ValidateDateFilter(cmd.Date); err != nil {
		return err
	}
	if cmd.Format != "text" && cmd.Format != "json" {
		return fmt.Errorf("unknown format %q (use text or json)", cmd.Format)
	}
	return nil
}

func (cmd *SearchCommand) Run() error {
	if cmd.UseIndex {
		return cmd.runIndex()
	}

	store := openStore(cmd.cfg, newNormalizer(cmd.cfg))
	if cmd.ListSites {
		notes, err := store.Load()
		if err != nil {
			return err
		}
		return cmd.printSites(notestore.Sites(notes))
	}

	notes, err := store.Search(notestore.Filter{Text: cmd.Text, Site: cmd.Site, Date: cmd.Date})
	if err != nil {
		return err
	}
	return printNotes(cmd.out, notes, cmd.Format)
}

func (cmd *SearchCommand) runIndex() error {
	db, err := openIndex(cmd.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.ListSites {
		sites, err := db.GetSites()
		if err != nil {
			return err
		}
		return cmd.printSites(sites)
	}

	notes, err := db.SearchNotes(cmd.Text, cmd.Site)
	if err != nil {
		return err
	}
	if cmd.Date != notestore.DateAny {
		notes = notestore.Query(notes, notestore.Filter{Date: cmd.Date})
	}
	return printNotes(cmd.out, notes, cmd.Format)
}

func (cmd *SearchCommand) printSites(sites []string) error {
	if cmd.Format == "json" {
		if sites == nil {
			sites = []string{}
		}
		return printJSON(cmd.out, sites)
	}
	for _, site := range sites {
		fmt.Fprintln(cmd.out, site)
	}
	return nil
}
