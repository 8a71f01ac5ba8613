package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Storage
		Sources
		Extraction
		Schedule
		Database
		Preferences
		Global
	}

	Storage struct {
		DataDir   string
		NotesFile string // Canonical collection; .json, .yaml or .yml
	}
	Sources struct {
		StickyNotesDBPath string   // Empty means the standard plum.sqlite location
		DirectoryExclude  []string // doublestar patterns relative to the walked root
	}
	Extraction struct {
		ClassifySites  bool
		StripCodeLines bool
	}
	Schedule struct {
		ExtractSchedule string // Cron format: "*/15 * * * *" = every 15 minutes
		Watch           bool   // Also extract when the sticky notes database changes
		WatchDebounce   time.Duration
	}
	Database struct {
		Path string
	}
	Preferences struct {
		Path string
	}
	Global struct {
		Verbose bool
	}
)

// LoadEnvFile loads variables from an env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func NewConfig() *Config {
	if err := LoadEnvFile(".env"); err != nil {
		log.Printf("WARNING: failed to load .env: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("notes_file", "")
	v.SetDefault("sticky_notes_db_path", "")
	v.SetDefault("directory_exclude", DefaultDirectoryExclude)
	v.SetDefault("classify_sites", true)
	v.SetDefault("strip_code_lines", false)
	v.SetDefault("extract_schedule", DefaultExtractSchedule)
	v.SetDefault("extract_watch", true)
	v.SetDefault("watch_debounce", "2s")
	v.SetDefault("index_database_path", DefaultIndexDatabasePath)
	v.SetDefault("preferences_path", DefaultPreferencesPath)
	v.SetDefault("log_verbose", false)

	dataDir := v.GetString("DATA_DIR")
	notesFile := v.GetString("NOTES_FILE")
	if notesFile == "" {
		notesFile = filepath.Join(dataDir, DefaultNotesFileName)
	}

	return &Config{
		Storage: Storage{
			DataDir:   dataDir,
			NotesFile: notesFile,
		},
		Sources: Sources{
			StickyNotesDBPath: v.GetString("STICKY_NOTES_DB_PATH"),
			DirectoryExclude:  splitList(v.GetString("DIRECTORY_EXCLUDE")),
		},
		Extraction: Extraction{
			ClassifySites:  v.GetBool("CLASSIFY_SITES"),
			StripCodeLines: v.GetBool("STRIP_CODE_LINES"),
		},
		Schedule: Schedule{
			ExtractSchedule: v.GetString("EXTRACT_SCHEDULE"),
			Watch:           v.GetBool("EXTRACT_WATCH"),
			WatchDebounce:   v.GetDuration("WATCH_DEBOUNCE"),
		},
		Database: Database{
			Path: v.GetString("INDEX_DATABASE_PATH"),
		},
		Preferences: Preferences{
			Path: v.GetString("PREFERENCES_PATH"),
		},
		Global: Global{
			Verbose: v.GetBool("LOG_VERBOSE"),
		},
	}
}

// splitList splits a comma-separated setting, dropping empty entries.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
