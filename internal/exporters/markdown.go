package exporters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/notestore"
	"github.com/mrlokans/notecompiler/internal/utils"
)

// MarkdownExporter writes one markdown document per site plus an index
// linking to each of them.
type MarkdownExporter struct {
	ExportDir     string
	IndexFileName string
	now           func() time.Time
}

func NewMarkdownExporter(exportDir string) *MarkdownExporter {
	return &MarkdownExporter{
		ExportDir:     exportDir,
		IndexFileName: "index.md",
		now:           time.Now,
	}
}

// GenerateMarkdown renders the document for one site. Notes are listed
// newest first.
func GenerateMarkdown(site string, notes []entities.CanonicalNote, exportedAt time.Time) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: site_notes\n")
	fmt.Fprintf(&builder, "created_at: %s\n", exportedAt.Format("2006-01-02"))
	fmt.Fprintf(&builder, "site: \"%s\"\n", strings.ReplaceAll(site, "\"", "\\\""))
	fmt.Fprintf(&builder, "note_count: %d\n", len(notes))
	fmt.Fprintf(&builder, "sources: [%s]\n", strings.Join(noteSources(notes), ", "))
	fmt.Fprintf(&builder, "tags: [notes, field-service]\n")
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "# %s\n\n", site)

	sorted := make([]entities.CanonicalNote, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	for _, note := range sorted {
		fmt.Fprintf(&builder, "## %s\n\n", note.Title)
		if note.Date != "" {
			fmt.Fprintf(&builder, "*%s* (%s)\n\n", note.Date, note.Source)
		}
		fmt.Fprintf(&builder, "> %s\n\n", strings.ReplaceAll(note.Content, "\n", "\n> "))
	}

	return builder.String()
}

func noteSources(notes []entities.CanonicalNote) []string {
	seen := make(map[string]bool)
	var out []string
	for _, note := range notes {
		if note.Source == "" || seen[note.Source] {
			continue
		}
		seen[note.Source] = true
		out = append(out, note.Source)
	}
	sort.Strings(out)
	return out
}

func (e *MarkdownExporter) Export(notes []entities.CanonicalNote) (ExportResult, error) {
	result := ExportResult{}

	if err := os.MkdirAll(e.ExportDir, 0755); err != nil {
		return result, fmt.Errorf("%w: failed to create export directory: %v", entities.ErrWriteFailure, err)
	}

	exportedAt := e.now()
	grouped := notestore.GroupBySite(notes)
	sites := notestore.Sites(notes)
	written := make([]string, 0, len(sites))

	for _, site := range sites {
		fileName := utils.SanitizeFilename(site) + ".md"
		path := filepath.Join(e.ExportDir, fileName)

		content := GenerateMarkdown(site, grouped[site], exportedAt)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			log.Printf("ERROR: failed to export site %s to %s: %v", site, path, err)
			result.SitesFailed++
			continue
		}

		written = append(written, site)
		result.SitesProcessed++
		result.NotesProcessed += len(grouped[site])
		result.FilesWritten++
	}

	if err := e.writeIndex(written, grouped); err != nil {
		return result, err
	}
	result.FilesWritten++

	log.Printf("Exported %d notes for %d sites to %s", result.NotesProcessed, result.SitesProcessed, e.ExportDir)
	return result, nil
}

func (e *MarkdownExporter) writeIndex(sites []string, grouped map[string][]entities.CanonicalNote) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "# Sites\n\n")
	for _, site := range sites {
		fmt.Fprintf(&builder, "- [[%s]] (%d notes)\n", utils.SanitizeFilename(site), len(grouped[site]))
	}

	path := filepath.Join(e.ExportDir, e.IndexFileName)
	if err := os.WriteFile(path, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("%w: failed to write index %s: %v", entities.ErrWriteFailure, path, err)
	}
	return nil
}
