package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/settingsstore"
)

// IndexCommand rebuilds the search index from the collection, or reports
// on it with -status.
type IndexCommand struct {
	cfg *config.Config
	out io.Writer

	StatusOnly bool
}

func NewIndexCommand(cfg *config.Config, out io.Writer) *IndexCommand {
	return &IndexCommand{cfg: cfg, out: out}
}

func (cmd *IndexCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)

	fs.BoolVar(&cmd.StatusOnly, "status", false, "Show index status without rebuilding")

	fs.Usage = func() {
		usageHeader("index", "[options]")
		fmt.Fprintf(os.Stderr, "The index is a disposable copy of the collection used by 'search -index'.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *IndexCommand) Run() error {
	db, err := openIndex(cmd.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	settings := settingsstore.New(db, cmd.cfg)

	if !cmd.StatusOnly {
		store := openStore(cmd.cfg, newNormalizer(cmd.cfg))
		count, err := db.Rebuild(store)
		if err != nil {
			return err
		}
		if err := settings.SetIndexStatus(store.Path(), count); err != nil {
			return fmt.Errorf("failed to record index status: %w", err)
		}
		fmt.Fprintf(cmd.out, "Indexed %d notes from %s into %s\n", count, store.Path(), cmd.cfg.Database.Path)
	}

	status := settings.GetIndexStatus()
	if status.LastBuiltAt == nil {
		fmt.Fprintln(cmd.out, "Index has never been built")
		return nil
	}
	fmt.Fprintf(cmd.out, "Last built: %s from %s (%d notes)\n",
		status.LastBuiltAt.Local().Format("2006-01-02 15:04:05"), status.Source, status.Entries)

	counts, err := db.Notes().CountBySite()
	if err != nil {
		return err
	}
	for _, c := range counts {
		fmt.Fprintf(cmd.out, "  %-30s %d\n", c.Site, c.Count)
	}
	return nil
}
