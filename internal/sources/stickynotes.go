package sources

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// Sticky Notes stores CreatedAt as .NET ticks: 100ns intervals since
// 0001-01-01 00:00:00 UTC. unixEpochTicks is the tick count at 1970-01-01.
const (
	unixEpochTicks = 621_355_968_000_000_000
	ticksPerSecond = 10_000_000
)

// schemaProbe is one known layout of the Sticky Notes database. Probes are
// tried in order until one query succeeds.
type schemaProbe struct {
	name  string
	query string
	scan  func(rows *sql.Rows, index int) (entities.RawPayload, error)
}

var stickyNotesProbes = []schemaProbe{
	{
		name:  "modern",
		query: `SELECT Text, WindowPosition, Theme, Id, CreatedAt FROM Note`,
		scan:  scanModernNote,
	},
	{
		name:  "legacy",
		query: `SELECT Text, WindowPosition, Theme FROM Notes`,
		scan:  scanLegacyNote,
	},
}

// StickyNotesReader reads notes from a Windows Sticky Notes plum.sqlite
// database.
type StickyNotesReader struct {
	dbPath string
}

// DefaultStickyNotesDBPath returns the standard location of plum.sqlite for
// the current user.
func DefaultStickyNotesDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, "AppData", "Local", "Packages",
		"Microsoft.MicrosoftStickyNotes_8wekyb3d8bbwe", "LocalState", "plum.sqlite"), nil
}

// NewStickyNotesReader creates a reader. When dbPath is empty the default
// location is used.
func NewStickyNotesReader(dbPath string) *StickyNotesReader {
	if dbPath == "" {
		if path, err := DefaultStickyNotesDBPath(); err == nil {
			dbPath = path
		}
	}
	return &StickyNotesReader{dbPath: dbPath}
}

func (r *StickyNotesReader) DBPath() string {
	return r.dbPath
}

// Read opens the database at locator (or the reader's configured path when
// locator is empty), runs the first compatible schema probe and closes the
// database before returning.
func (r *StickyNotesReader) Read(locator string) ([]entities.RawPayload, error) {
	dbPath := locator
	if dbPath == "" {
		dbPath = r.dbPath
	}

	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%w: sticky notes database %s", entities.ErrMissingSource, dbPath)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open sticky notes database: %w", err)
	}
	defer db.Close()

	for _, probe := range stickyNotesProbes {
		payloads, err := runProbe(db, probe)
		if err != nil {
			log.Printf("Sticky notes %s schema not usable: %v", probe.name, err)
			continue
		}
		log.Printf("Extracted %d notes from sticky notes database (%s schema)", len(payloads), probe.name)
		return payloads, nil
	}

	return nil, fmt.Errorf("%w: %s matches neither the modern nor the legacy sticky notes layout",
		entities.ErrSchemaMismatch, dbPath)
}

func runProbe(db *sql.DB, probe schemaProbe) ([]entities.RawPayload, error) {
	rows, err := db.Query(probe.query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payloads []entities.RawPayload
	for i := 0; rows.Next(); i++ {
		payload, err := probe.scan(rows, i)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		payloads = append(payloads, payload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return payloads, nil
}

func scanModernNote(rows *sql.Rows, index int) (entities.RawPayload, error) {
	var text, position, theme, id sql.NullString
	var createdAt any

	if err := rows.Scan(&text, &position, &theme, &id, &createdAt); err != nil {
		return entities.RawPayload{}, err
	}

	return entities.RawPayload{
		Kind:      entities.SourceKindStickyNotes,
		Text:      text.String,
		Source:    entities.SourceStickyNotes,
		Position:  position.String,
		Theme:     theme.String,
		RecordID:  id.String,
		CreatedAt: formatCreatedAt(createdAt),
	}, nil
}

// scanLegacyNote reads the older layout, which has no id or creation time.
// Ids are synthesized from the row order.
func scanLegacyNote(rows *sql.Rows, index int) (entities.RawPayload, error) {
	var text, position, theme sql.NullString

	if err := rows.Scan(&text, &position, &theme); err != nil {
		return entities.RawPayload{}, err
	}

	return entities.RawPayload{
		Kind:     entities.SourceKindStickyNotes,
		Text:     text.String,
		Source:   entities.SourceStickyNotes,
		Position: position.String,
		Theme:    theme.String,
		RecordID: strconv.Itoa(index + 1),
		Ordinal:  index + 1,
	}, nil
}

// formatCreatedAt renders the CreatedAt column, which is an integer tick
// count in current Sticky Notes builds but may also hold text.
func formatCreatedAt(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case int64:
		return formatTimestampNumber(v)
	case float64:
		return formatTimestampNumber(int64(v))
	case time.Time:
		return entities.FormatDate(v)
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// formatTimestampNumber guesses the unit of a numeric timestamp by its
// magnitude: .NET ticks, Unix milliseconds or Unix seconds.
func formatTimestampNumber(n int64) string {
	switch {
	case n <= 0:
		return ""
	case n > 100_000_000_000_000_000:
		ticks := n - unixEpochTicks
		return entities.FormatDate(time.Unix(ticks/ticksPerSecond, (ticks%ticksPerSecond)*100).UTC())
	case n > 100_000_000_000:
		return entities.FormatDate(time.UnixMilli(n).UTC())
	default:
		return entities.FormatDate(time.Unix(n, 0).UTC())
	}
}
