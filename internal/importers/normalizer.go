package importers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/notecompiler/internal/cleaner"
	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/segmenter"
)

var (
	siteLabelPattern = regexp.MustCompile(`(?i)^\s*site(?:id)?\s*:(.*)$`)
	codeLinePattern  = regexp.MustCompile(`^\s*(//|#|/\*|\*\s)`)
)

// Default source tags per payload kind, used when a payload carries none.
var defaultSources = map[entities.SourceKind]string{
	entities.SourceKindStickyNotes: entities.SourceStickyNotes,
	entities.SourceKindTextFile:    entities.SourceTextFile,
	entities.SourceKindTabularFile: entities.SourceTabularFile,
	entities.SourceKindStructured:  entities.SourceStructuredFile,
	entities.SourceKindHTMLFile:    entities.SourceHTMLFile,
	entities.SourceKindClipboard:   entities.SourceClipboard,
	entities.SourceKindEquipment:   entities.SourceEquipmentFile,
}

// Layouts accepted for source-provided dates, tried in order.
var dateLayouts = []string{
	entities.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// SiteCounter numbers notes per site. A fresh counter is created for every
// extraction run and threaded through each Normalize call.
type SiteCounter map[string]int

// Next increments and returns the count for site.
func (c SiteCounter) Next(site string) int {
	c[site]++
	return c[site]
}

// NormalizerOptions toggles the optional normalization steps.
type NormalizerOptions struct {
	// ClassifySites looks for a "Site:" or "SiteID:" label in the content
	// of payloads that have no site of their own.
	ClassifySites bool
	// StripCodeLines drops lines that start with a code comment marker.
	StripCodeLines bool
}

// Normalizer turns raw payloads into canonical notes.
type Normalizer struct {
	options NormalizerOptions
	now     func() time.Time
}

func NewNormalizer(options NormalizerOptions) *Normalizer {
	return &Normalizer{options: options, now: time.Now}
}

// WithClock replaces the clock used for default dates.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Normalize converts a payload into a canonical note. The second return
// value is false when the payload has no content left after cleaning, in
// which case the note must be discarded.
//
// A site already set on the payload (structured records, equipment files)
// wins over a label found in the content; label classification only runs
// when the payload has no site.
func (n *Normalizer) Normalize(p entities.RawPayload, counter SiteCounter) (entities.CanonicalNote, bool) {
	content := p.Text
	if p.Segmented {
		content = strings.TrimSpace(content)
	} else {
		content = cleaner.Clean(content)
	}

	if n.options.StripCodeLines {
		content = StripCodeLines(content)
	}

	site := strings.TrimSpace(p.Site)
	if site == "" && n.options.ClassifySites {
		site, content = ClassifySite(content)
	}
	if site == "" {
		site = entities.UncategorizedSite
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return entities.CanonicalNote{}, false
	}

	number := counter.Next(site)

	source := p.Source
	if source == "" {
		source = defaultSources[p.Kind]
	}

	now := n.now()
	return entities.CanonicalNote{
		Site:        site,
		Equipment:   strings.TrimSpace(p.Equipment),
		Title:       n.title(p, content, number),
		Content:     content,
		Date:        n.date(p, now),
		Source:      source,
		ExtractedAt: entities.FormatDate(now),
	}, true
}

func (n *Normalizer) title(p entities.RawPayload, content string, number int) string {
	if title := strings.TrimSpace(p.Title); title != "" {
		return segmenter.ClipTitle(title)
	}
	if line := segmenter.FirstLine(content); line != "" {
		return segmenter.ClipTitle(line)
	}
	if p.Ordinal > 0 {
		return fmt.Sprintf("Sticky Note %d", p.Ordinal)
	}
	if p.Kind == entities.SourceKindStickyNotes {
		return fmt.Sprintf("Sticky Note %d", number)
	}
	return "Untitled Note"
}

// date prefers the payload's own date, then its creation time, then now.
// A value that cannot be parsed is kept as given.
func (n *Normalizer) date(p entities.RawPayload, now time.Time) string {
	for _, raw := range []string{p.Date, p.CreatedAt} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if t, err := ParseDate(raw); err == nil {
			return entities.FormatDate(t)
		}
		return raw
	}
	return entities.FormatDate(now)
}

// ParseDate parses a source-provided date in any of the accepted layouts.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}

// ClassifySite finds the first "Site:" or "SiteID:" label line in content
// and returns its value along with the content minus every labeled line.
// When no label is present the site is UncategorizedSite and content is
// returned unchanged.
func ClassifySite(content string) (site, remaining string) {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	found := false

	for _, line := range lines {
		match := siteLabelPattern.FindStringSubmatch(line)
		if match == nil {
			kept = append(kept, line)
			continue
		}
		if !found {
			site = strings.TrimSpace(match[1])
			found = true
		}
	}

	if !found {
		return entities.UncategorizedSite, content
	}
	if site == "" {
		site = entities.UncategorizedSite
	}
	return site, strings.TrimSpace(strings.Join(kept, "\n"))
}

// StripCodeLines removes lines starting with a comment marker (//, #, /*
// or "* ").
func StripCodeLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if codeLinePattern.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
