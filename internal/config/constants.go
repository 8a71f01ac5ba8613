package config

// Default locations and schedules
const (
	// DefaultDataDir holds the canonical collection and per-equipment files
	DefaultDataDir = "./data"

	// DefaultNotesFileName is the canonical collection inside the data directory
	DefaultNotesFileName = "notes.json"

	// DefaultIndexDatabasePath is the default path for the SQLite search index
	DefaultIndexDatabasePath = "./notes-index.db"

	// DefaultPreferencesPath is the default location of the preferences tree
	DefaultPreferencesPath = "./config/user_preferences.json"

	// DefaultExtractSchedule runs scheduled extraction every 15 minutes
	DefaultExtractSchedule = "*/15 * * * *"

	// DefaultDirectoryExclude is skipped when walking note directories
	DefaultDirectoryExclude = "**/.git,**/node_modules,**/.*.tmp"
)
