package notestore

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// Date filter values.
const (
	DateAny   = ""
	DateToday = "today"
	DateWeek  = "week"
	DateMonth = "month"
)

// Filter selects notes. Zero-valued fields match everything.
type Filter struct {
	// Text matches content case-insensitively as a substring.
	Text string
	// Site must equal the note's site exactly.
	Site string
	// Date is one of DateToday, DateWeek (the last seven days) or
	// DateMonth (the current calendar month).
	Date string
	// Now anchors the date filter. Defaults to the current time.
	Now time.Time
}

// ValidateDateFilter reports whether value is an accepted date filter.
func ValidateDateFilter(value string) error {
	switch value {
	case DateAny, DateToday, DateWeek, DateMonth:
		return nil
	default:
		return fmt.Errorf("unknown date filter %q (use today, week or month)", value)
	}
}

// Query returns the notes matching filter, in collection order.
func Query(notes []entities.CanonicalNote, filter Filter) []entities.CanonicalNote {
	text := strings.ToLower(filter.Text)
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := make([]entities.CanonicalNote, 0, len(notes))
	for _, note := range notes {
		if text != "" && !strings.Contains(strings.ToLower(note.Content), text) {
			continue
		}
		if filter.Site != "" && note.Site != filter.Site {
			continue
		}
		if filter.Date != DateAny && !matchesDate(note.Date, filter.Date, now) {
			continue
		}
		result = append(result, note)
	}
	return result
}

// matchesDate compares in now's location. Notes whose date cannot be
// parsed never match a date filter.
func matchesDate(date, filter string, now time.Time) bool {
	t, err := time.ParseInLocation(entities.DateLayout, date, now.Location())
	if err != nil {
		return false
	}

	switch filter {
	case DateToday:
		y1, m1, d1 := t.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case DateWeek:
		return !t.Before(now.AddDate(0, 0, -7)) && !t.After(now)
	case DateMonth:
		return t.Year() == now.Year() && t.Month() == now.Month()
	default:
		return false
	}
}

// Sites returns the distinct sites of notes, sorted.
func Sites(notes []entities.CanonicalNote) []string {
	seen := make(map[string]struct{})
	for _, note := range notes {
		seen[note.Site] = struct{}{}
	}

	sites := make([]string, 0, len(seen))
	for site := range seen {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// GroupBySite buckets notes by site, keeping collection order within each
// bucket.
func GroupBySite(notes []entities.CanonicalNote) map[string][]entities.CanonicalNote {
	groups := make(map[string][]entities.CanonicalNote)
	for _, note := range notes {
		groups[note.Site] = append(groups[note.Site], note)
	}
	return groups
}
