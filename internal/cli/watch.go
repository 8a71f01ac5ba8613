package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/notecompiler/internal/config"
	"github.com/mrlokans/notecompiler/internal/exporters"
	"github.com/mrlokans/notecompiler/internal/importers"
	"github.com/mrlokans/notecompiler/internal/scheduler"
	"github.com/mrlokans/notecompiler/internal/settingsstore"
)

// WatchCommand keeps the collection in step with Sticky Notes until
// interrupted.
type WatchCommand struct {
	cfg *config.Config
	out io.Writer

	DBPath        string
	Schedule      string
	ClearSchedule bool
	Watch         bool
	Debounce      time.Duration
	Status        bool
	Once          bool
}

func NewWatchCommand(cfg *config.Config, out io.Writer) *WatchCommand {
	return &WatchCommand{cfg: cfg, out: out}
}

func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)

	fs.StringVar(&cmd.DBPath, "db", cmd.cfg.StickyNotesDBPath, "Path to plum.sqlite (default: the standard Sticky Notes location)")
	fs.StringVar(&cmd.Schedule, "schedule", "", "Save a cron schedule override (e.g. \"*/5 * * * *\")")
	fs.BoolVar(&cmd.ClearSchedule, "clear-schedule", false, "Remove the saved schedule override")
	fs.BoolVar(&cmd.Watch, "watch", cmd.cfg.Watch, "Also extract when the sticky notes database changes")
	fs.DurationVar(&cmd.Debounce, "debounce", cmd.cfg.WatchDebounce, "Quiet period before a change triggers extraction")
	fs.BoolVar(&cmd.Status, "status", false, "Show schedule and last run, then exit")
	fs.BoolVar(&cmd.Once, "once", false, "Run a single extraction and exit")

	fs.Usage = func() {
		usageHeader("watch", "[options]")
		fmt.Fprintf(os.Stderr, "Schedule priority: saved override > EXTRACT_SCHEDULE > %s\n\n", config.DefaultExtractSchedule)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Schedule != "" {
		if err := settingsstore.ValidateCronSchedule(cmd.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s': %w", cmd.Schedule, err)
		}
	}
	return nil
}

func (cmd *WatchCommand) Run() error {
	db, err := openIndex(cmd.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	settings := settingsstore.New(db, cmd.cfg)

	if cmd.ClearSchedule {
		if err := settings.ClearExtractSchedule(); err != nil {
			return err
		}
	}
	if cmd.Schedule != "" {
		if err := settings.SetExtractSchedule(cmd.Schedule); err != nil {
			return err
		}
	}

	if cmd.Status {
		cmd.printStatus(settings)
		return nil
	}

	normalizer := newNormalizer(cmd.cfg)
	store := openStore(cmd.cfg, normalizer)
	source := stickySource(cmd.cfg, cmd.DBPath)

	pipeline := importers.NewPipeline(exporters.NewCollectionExporter(store), normalizer)
	sched := scheduler.NewExtractScheduler(pipeline, source, settings).WithIndex(db, store)

	if cmd.Once {
		if err := sched.RunOnce(); err != nil {
			return err
		}
		cmd.printStatus(settings)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	if cmd.Watch {
		watcher := scheduler.NewFileWatcher(source.Locator, cmd.Debounce, func() { _ = sched.RunOnce() })
		if err := watcher.Start(ctx); err != nil {
			fmt.Fprintf(cmd.out, "File watching unavailable, relying on the schedule: %v\n", err)
		} else {
			defer watcher.Stop()
		}
	}

	sched.RunNow()
	fmt.Fprintf(cmd.out, "Watching %s. Press Ctrl+C to stop.\n", source.Locator)
	<-ctx.Done()
	fmt.Fprintln(cmd.out, "\nStopping...")
	return nil
}

func (cmd *WatchCommand) printStatus(settings *settingsstore.SettingsStore) {
	info := settings.GetExtractScheduleInfo()
	fmt.Fprintf(cmd.out, "Schedule: %s (%s, from %s)\n", info.Schedule, settingsstore.GetCronDescription(info.Schedule), info.Source)
	if next, err := settingsstore.GetNextRunTime(info.Schedule, time.Now()); err == nil {
		fmt.Fprintf(cmd.out, "Next run: %s\n", next.Format("2006-01-02 15:04"))
	}

	status := settings.GetExtractStatus()
	if status.LastRunAt == nil {
		fmt.Fprintln(cmd.out, "Last run: never")
		return
	}
	fmt.Fprintf(cmd.out, "Last run: %s (%s) %s\n", status.LastRunAt.Local().Format("2006-01-02 15:04:05"), status.Status, status.Message)
}
