package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/importers"
	"github.com/mrlokans/notecompiler/internal/notestore"
	"github.com/mrlokans/notecompiler/internal/sources"
)

// ExtractSourceCommand extracts notes from a single file, a directory tree
// or the clipboard.
type ExtractSourceCommand struct {
	cfg *config.Config
	out io.Writer

	Path      string
	Clipboard bool
	Recursive bool
	Output    string
	Verbose   bool

	// paste replaces the system clipboard in tests.
	paste func() (string, error)
}

func NewExtractSourceCommand(cfg *config.Config, out io.Writer) *ExtractSourceCommand {
	return &ExtractSourceCommand{cfg: cfg, out: out}
}

func (cmd *ExtractSourceCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("extract-source", flag.ContinueOnError)

	fs.StringVar(&cmd.Path, "path", "", "File or directory to extract from")
	fs.BoolVar(&cmd.Clipboard, "clipboard", false, "Extract from the system clipboard instead of a path")
	fs.BoolVar(&cmd.Recursive, "recursive", true, "Descend into subdirectories when -path is a directory")
	fs.StringVar(&cmd.Output, "output", "", "Write the extracted notes to this file (.json, .yaml, .txt or .md) instead of the collection")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every extracted note")

	fs.Usage = func() {
		usageHeader("extract-source", "(-path <file|dir> | -clipboard) [options]")
		fmt.Fprintf(os.Stderr, "Supported files: %v\n\n", sources.SupportedExtensions)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Path == "" && fs.NArg() > 0 {
		cmd.Path = fs.Arg(0)
	}
	if cmd.Path == "" && !cmd.Clipboard {
		return fmt.Errorf("required flag -path or -clipboard not provided")
	}
	if cmd.Path != "" && cmd.Clipboard {
		return fmt.Errorf("-path and -clipboard are mutually exclusive")
	}
	return nil
}

func (cmd *ExtractSourceCommand) source() (importers.Source, error) {
	if cmd.Clipboard {
		reader := sources.NewClipboardReader()
		if cmd.paste != nil {
			reader = sources.NewClipboardReaderFunc(cmd.paste)
		}
		return importers.Source{Name: "clipboard", Reader: reader}, nil
	}

	info, err := os.Stat(cmd.Path)
	if err != nil {
		return importers.Source{}, fmt.Errorf("source not found: %s", cmd.Path)
	}
	if info.IsDir() {
		reader := sources.NewDirectoryReader(cmd.Recursive, cmd.cfg.DirectoryExclude)
		return importers.Source{Name: cmd.Path, Reader: reader, Locator: cmd.Path}, nil
	}
	return importers.Source{Name: cmd.Path, Reader: sources.NewFileReader(), Locator: cmd.Path}, nil
}

func (cmd *ExtractSourceCommand) Run() error {
	source, err := cmd.source()
	if err != nil {
		return err
	}

	normalizer := newNormalizer(cmd.cfg)

	if cmd.Output != "" {
		notes, result := importers.NewPipeline(nil, normalizer).Extract(source)
		if err := notestore.WriteCollection(cmd.Output, notes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "Wrote %d notes from %d payloads to %s\n", len(notes), result.PayloadsRead, cmd.Output)
		if cmd.Verbose {
			return printNotes(cmd.out, notes, "text")
		}
		return nil
	}

	store := openStore(cmd.cfg, normalizer)
	result, err := importers.NewPipeline(store, normalizer).Import(source)
	if err != nil {
		return err
	}
	printImportResult(cmd.out, result)
	fmt.Fprintf(cmd.out, "\nCollection: %s\n", store.Path())
	return nil
}
