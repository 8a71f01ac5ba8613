// Command generate_demo creates a Sticky Notes database with sample field
// service notes, for trying the extractor without a Windows machine. With
// -data it also writes per-equipment note files for consolidate.
// Usage: go run ./cmd/generate_demo [-db path/to/plum.sqlite] [-data ./data]
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/utils"
)

const defaultDemoDatabasePath = "./demo/plum.sqlite"

// .NET ticks at the Unix epoch
const unixEpochTicks = 621_355_968_000_000_000

type demoNote struct {
	text    string
	theme   string
	daysAgo int
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo sticky notes database")
	legacy := flag.Bool("legacy", false, "use the older Notes table layout")
	dataDir := flag.String("data", "", "also write per-equipment note files under this directory")
	count := flag.Int("count", 20, "number of per-equipment notes to generate with -data")
	flag.Parse()

	log.Printf("Generating demo sticky notes database at %s...", *dbPath)

	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	notes := demoNotes()
	if *legacy {
		err = writeLegacy(db, notes)
	} else {
		err = writeModern(db, notes, time.Now().UTC())
	}
	if err != nil {
		log.Fatalf("Failed to write demo notes: %v", err)
	}

	log.Printf("Demo database generated with %d notes", len(notes))

	if *dataDir != "" {
		files, err := writeEquipmentFiles(*dataDir, *count, time.Now())
		if err != nil {
			log.Fatalf("Failed to write equipment files: %v", err)
		}
		log.Printf("Wrote %d equipment files under %s", files, *dataDir)
	}
}

func writeModern(db *sql.DB, notes []demoNote, now time.Time) error {
	if _, err := db.Exec(`CREATE TABLE Note (Text TEXT, WindowPosition TEXT, Theme TEXT, Id TEXT, CreatedAt INTEGER)`); err != nil {
		return err
	}

	for i, note := range notes {
		created := now.AddDate(0, 0, -note.daysAgo)
		ticks := created.Unix()*10_000_000 + unixEpochTicks
		_, err := db.Exec(`INSERT INTO Note VALUES (?, ?, ?, ?, ?)`,
			note.text, fmt.Sprintf("ManagedPosition=DeviceId:\\\\?\\DISPLAY#%d", i), note.theme,
			fmt.Sprintf("demo-%04d", i+1), ticks)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeLegacy(db *sql.DB, notes []demoNote) error {
	if _, err := db.Exec(`CREATE TABLE Notes (Text TEXT, WindowPosition TEXT, Theme TEXT)`); err != nil {
		return err
	}
	for _, note := range notes {
		if _, err := db.Exec(`INSERT INTO Notes VALUES (?, ?, ?)`, note.text, "", note.theme); err != nil {
			return err
		}
	}
	return nil
}

func demoNotes() []demoNote {
	return []demoNote{
		{text: "SiteID: 711\nReplaced PPU board on dispenser 3.\nTested all grades.", theme: "Yellow", daysAgo: 0},
		{text: "Site: 712\n- Purged CRIND on FP 5\n- Replaced receipt printer\n- Checked E-stop", theme: "Blue", daysAgo: 1},
		{text: `{\rtf1\ansi {\b SiteID: 715} Card reader on FP 2 intermittent.}`, theme: "Pink", daysAgo: 3},
		{text: "<p>SiteID: 711</p><p>Backlight out on FP 7 &amp; ordered part.</p>", theme: "Green", daysAgo: 6},
		{text: "# Parts to order\nRibbon cable x2\n# Follow up\nCall site 712 about the tank monitor", theme: "Purple", daysAgo: 12},
		{text: "Reminder: timesheet due Friday", theme: "Yellow", daysAgo: 20},
		{text: "", theme: "Charcoal", daysAgo: 30},
	}
}

var (
	demoSites = []string{
		"711 #36064 - King NC",
		"Great Stop 18 - Jamestown NC",
		"Fedex Ground 274 - Kernersville NC",
		"Site Alpha - Charlotte NC",
	}
	demoEquipment = []string{"FP 1", "FP 5", "FP 10", "EN339811", "GILM12893A001", "T18699-G1"}
	demoWork      = []string{
		"Replaced the PPU in the premium position. Tested successfully.",
		"Purged the CRIND to restore card reader functionality.",
		"Troubleshot and cleaned the door node PPUs and ribbon cable.",
		"Fixed E-stop circuit by replacing a blown fuse.",
		"Identified water intrusion in the electrical housing.",
		"Replaced faulty backlights for premium and plus displays.",
		"Fixed communication issues between D-Box and CRINDs.",
	}
)

type equipmentEntry struct {
	Content string `json:"content"`
	Date    string `json:"date"`
}

// writeEquipmentFiles writes <dataDir>/<site>/<equipment>.json files. The
// generator is seeded so repeated runs produce the same notes.
func writeEquipmentFiles(dataDir string, count int, now time.Time) (int, error) {
	rng := rand.New(rand.NewPCG(1, 2))
	files := make(map[string][]equipmentEntry)

	for i := 0; i < count; i++ {
		site := demoSites[rng.IntN(len(demoSites))]
		equipment := demoEquipment[rng.IntN(len(demoEquipment))]

		var content strings.Builder
		fmt.Fprintf(&content, "Work performed on %s:\n\n", equipment)
		for _, j := range rng.Perm(len(demoWork))[:1+rng.IntN(3)] {
			fmt.Fprintf(&content, "- %s\n", demoWork[j])
		}

		path := filepath.Join(dataDir, utils.SanitizeFilename(site), utils.SanitizeFilename(equipment)+".json")
		files[path] = append(files[path], equipmentEntry{
			Content: strings.TrimSpace(content.String()),
			Date:    entities.FormatDate(now.AddDate(0, 0, -rng.IntN(31))),
		})
	}

	for path, entries := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return 0, err
		}
		data, err := json.MarshalIndent(entries, "", "    ")
		if err != nil {
			return 0, err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}
