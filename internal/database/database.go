package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/notecompiler/internal/database/notes"
	"github.com/mrlokans/notecompiler/internal/database/settings"
	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/services"
)

// LogLevel is the gorm logger level used by NewDatabase.
var LogLevel = logger.Warn

type Database struct {
	DB *gorm.DB

	notes    *notes.Repository
	settings *settings.Repository
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.NoteRecord{},
		&entities.Setting{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{
		DB:       db,
		notes:    notes.NewRepository(db),
		settings: settings.NewRepository(db),
	}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) Notes() *notes.Repository {
	return d.notes
}

func (d *Database) Settings() *settings.Repository {
	return d.settings
}

// ReplaceNotes rebuilds the search index from the canonical collection.
func (d *Database) ReplaceNotes(notes []entities.CanonicalNote) error {
	return d.notes.ReplaceAll(notes)
}

// Rebuild replaces the index with everything reader currently holds and
// returns the number of indexed notes.
func (d *Database) Rebuild(reader services.NoteReader) (int, error) {
	notes, err := reader.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load notes for indexing: %w", err)
	}
	if err := d.notes.ReplaceAll(notes); err != nil {
		return 0, err
	}
	return len(notes), nil
}

func (d *Database) Export(notes []entities.CanonicalNote) (services.ExportResult, error) {
	return d.notes.Export(notes)
}

func (d *Database) SearchNotes(query, site string) ([]entities.CanonicalNote, error) {
	return d.notes.SearchNotes(query, site)
}

func (d *Database) GetSites() ([]string, error) {
	return d.notes.GetSites()
}

func (d *Database) CountNotes() (int64, error) {
	return d.notes.Count()
}

func (d *Database) GetSetting(key string) (*entities.Setting, error) {
	return d.settings.GetSetting(key)
}

func (d *Database) SetSetting(key, value string) error {
	return d.settings.SetSetting(key, value)
}

func (d *Database) DeleteSetting(key string) error {
	return d.settings.DeleteSetting(key)
}

// Compile-time interface checks
var (
	_ services.NoteSearcher = (*Database)(nil)
	_ services.NoteExporter = (*Database)(nil)
)
