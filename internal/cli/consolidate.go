package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/importers"
	"github.com/mrlokans/notecompiler/internal/notestore"
)

// ConsolidateCommand gathers <data>/<site>/<equipment>.json files into the
// collection.
type ConsolidateCommand struct {
	cfg *config.Config
	out io.Writer

	DataDir string
	Replace bool
}

func NewConsolidateCommand(cfg *config.Config, out io.Writer) *ConsolidateCommand {
	return &ConsolidateCommand{cfg: cfg, out: out}
}

func (cmd *ConsolidateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("consolidate", flag.ContinueOnError)

	fs.StringVar(&cmd.DataDir, "data", cmd.cfg.DataDir, "Data directory holding one subdirectory per site")
	fs.BoolVar(&cmd.Replace, "replace", false, "Replace the collection instead of merging into it")

	fs.Usage = func() {
		usageHeader("consolidate", "[options]")
		fmt.Fprintf(os.Stderr, "Each <data>/<site>/<equipment>.json (or .yaml) holds a list of {content, date}.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ConsolidateCommand) Run() error {
	normalizer := newNormalizer(cmd.cfg)

	notes, err := importers.ConsolidateEquipment(cmd.DataDir, normalizer)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "Found %d notes in %d sites under %s\n", len(notes), len(notestore.Sites(notes)), cmd.DataDir)

	store := notestore.New(cmd.cfg.NotesFile)
	if cmd.Replace {
		if err := store.Save(notes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "Replaced %s with %d notes\n", store.Path(), len(notes))
		return nil
	}

	result, err := importers.NewPipeline(store, normalizer).ImportNotes(notes)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "Added %d notes to %s (%d already present)\n", result.NotesAdded, store.Path(), result.NotesSkipped)
	return nil
}
