package exporters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/notestore"
	"github.com/mrlokans/notecompiler/internal/utils"
)

// SiteTreeExporter writes every note to <DataDir>/<site>/note_N.txt, with N
// counting from 1 per site within one Export call. Existing files with the
// same name are overwritten.
type SiteTreeExporter struct {
	DataDir string
}

func NewSiteTreeExporter(dataDir string) *SiteTreeExporter {
	return &SiteTreeExporter{DataDir: dataDir}
}

func (e *SiteTreeExporter) Export(notes []entities.CanonicalNote) (ExportResult, error) {
	result := ExportResult{}
	if err := os.MkdirAll(e.DataDir, 0755); err != nil {
		return result, fmt.Errorf("%w: failed to create data directory: %v", entities.ErrWriteFailure, err)
	}

	grouped := notestore.GroupBySite(notes)
	for _, site := range notestore.Sites(notes) {
		siteDir := filepath.Join(e.DataDir, utils.SanitizeFilename(site))
		if err := os.MkdirAll(siteDir, 0755); err != nil {
			log.Printf("ERROR: failed to create directory for site %s: %v", site, err)
			result.SitesFailed++
			continue
		}

		written, err := writeSiteNotes(siteDir, grouped[site])
		result.FilesWritten += written
		result.NotesProcessed += written
		if err != nil {
			log.Printf("ERROR: failed to write notes for site %s: %v", site, err)
			result.SitesFailed++
			continue
		}
		result.SitesProcessed++
	}

	log.Printf("Wrote %d notes for %d sites under %s", result.FilesWritten, result.SitesProcessed, e.DataDir)
	if result.SitesFailed > 0 {
		return result, fmt.Errorf("%w: %d sites could not be written", entities.ErrWriteFailure, result.SitesFailed)
	}
	return result, nil
}

func writeSiteNotes(siteDir string, notes []entities.CanonicalNote) (int, error) {
	count := 0
	for _, note := range notes {
		count++
		path := filepath.Join(siteDir, fmt.Sprintf("note_%d.txt", count))
		if err := os.WriteFile(path, []byte(note.Content), 0644); err != nil {
			return count - 1, err
		}
	}
	return count, nil
}
