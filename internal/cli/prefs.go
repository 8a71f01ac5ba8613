package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/preferences"
)

// PrefsCommand reads and writes the preferences tree:
//
//	prefs show
//	prefs get <dotted.key>
//	prefs set <dotted.key> <value>
type PrefsCommand struct {
	cfg *config.Config
	out io.Writer

	Path   string
	Action string
	Key    string
	Value  string
}

func NewPrefsCommand(cfg *config.Config, out io.Writer) *PrefsCommand {
	return &PrefsCommand{cfg: cfg, out: out}
}

func (cmd *PrefsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("prefs", flag.ContinueOnError)

	fs.StringVar(&cmd.Path, "file", cmd.cfg.Preferences.Path, "Preferences file")

	fs.Usage = func() {
		usageHeader("prefs", "[options] show | get <key> | set <key> <value>")
		fmt.Fprintf(os.Stderr, "Keys are dotted paths, e.g. notifications.sound.\n")
		fmt.Fprintf(os.Stderr, "Values are parsed as JSON when possible (true, 20, {\"a\":1}), otherwise kept as text.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	cmd.Action = "show"
	if len(rest) > 0 {
		cmd.Action = rest[0]
	}

	switch cmd.Action {
	case "show":
	case "get":
		if len(rest) != 2 {
			return fmt.Errorf("usage: prefs get <key>")
		}
		cmd.Key = rest[1]
	case "set":
		if len(rest) != 3 {
			return fmt.Errorf("usage: prefs set <key> <value>")
		}
		cmd.Key, cmd.Value = rest[1], rest[2]
	default:
		return fmt.Errorf("unknown prefs action %q (use show, get or set)", cmd.Action)
	}
	return nil
}

func (cmd *PrefsCommand) Run() error {
	prefs := preferences.Load(cmd.Path)

	switch cmd.Action {
	case "get":
		value, ok := prefs.Get(cmd.Key)
		if !ok {
			return fmt.Errorf("preference %q not set", cmd.Key)
		}
		return printJSON(cmd.out, value)
	case "set":
		if err := prefs.Set(cmd.Key, preferences.ParseValue(cmd.Value)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "Set %s in %s\n", cmd.Key, prefs.Path())
		return nil
	default:
		for _, entry := range prefs.Flatten() {
			fmt.Fprintf(cmd.out, "%s = %v\n", entry.Key, entry.Value)
		}
		return nil
	}
}
