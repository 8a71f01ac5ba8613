package importers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/notecompiler/internal/entities"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestNormalizer(options NormalizerOptions) *Normalizer {
	return NewNormalizer(options).WithClock(func() time.Time { return fixedNow })
}

func TestNormalize_SiteLabelIsStripped(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{ClassifySites: true})

	note, ok := n.Normalize(entities.RawPayload{
		Kind: entities.SourceKindStickyNotes,
		Text: "SiteID: 711 #36064\nReplaced pump.",
	}, make(SiteCounter))

	require.True(t, ok)
	assert.Equal(t, "711 #36064", note.Site)
	assert.Equal(t, "Replaced pump.", note.Content)
	assert.Equal(t, "Replaced pump.", note.Title)
	assert.Equal(t, entities.SourceStickyNotes, note.Source)
	assert.Equal(t, "2024-05-01 12:00:00", note.Date)
	assert.Equal(t, "2024-05-01 12:00:00", note.ExtractedAt)
}

func TestNormalize_NoLabelIsUncategorized(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{ClassifySites: true})

	note, ok := n.Normalize(entities.RawPayload{Kind: entities.SourceKindTextFile, Text: "Checked the tank gauge"}, make(SiteCounter))

	require.True(t, ok)
	assert.Equal(t, entities.UncategorizedSite, note.Site)
	assert.Equal(t, "Checked the tank gauge", note.Content)
}

func TestNormalize_ClassificationDisabled(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{})

	note, ok := n.Normalize(entities.RawPayload{Text: "Site: 711\nbody"}, make(SiteCounter))

	require.True(t, ok)
	assert.Equal(t, entities.UncategorizedSite, note.Site)
	assert.Equal(t, "Site: 711\nbody", note.Content)
}

func TestNormalize_PresetSiteWinsOverLabel(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{ClassifySites: true})

	note, ok := n.Normalize(entities.RawPayload{
		Kind:      entities.SourceKindEquipment,
		Text:      "Site: 999\nSeal replaced",
		Site:      "711",
		Equipment: "pump",
		Source:    entities.SourceEquipmentFile,
	}, make(SiteCounter))

	require.True(t, ok)
	assert.Equal(t, "711", note.Site)
	assert.Equal(t, "pump", note.Equipment)
	assert.Equal(t, "Site: 999\nSeal replaced", note.Content)
}

func TestNormalize_EmptyContentIsDiscarded(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{ClassifySites: true})
	counter := make(SiteCounter)

	inputs := []entities.RawPayload{
		{Text: ""},
		{Text: "   \n\t"},
		{Text: "<p>&nbsp;</p>"},
		{Text: "SiteID: 711"},
		{Text: "   ", Segmented: true, Title: "Header only"},
	}

	for _, input := range inputs {
		_, ok := n.Normalize(input, counter)
		assert.False(t, ok, "input %q", input.Text)
	}
	assert.Empty(t, counter)
}

func TestNormalize_CleansRichTextAndMarkup(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{})

	rtf, ok := n.Normalize(entities.RawPayload{Text: `{\rtf\b Fixed\b0  it}`}, make(SiteCounter))
	require.True(t, ok)
	assert.Equal(t, "Fixed0 it", rtf.Content)

	markup, ok := n.Normalize(entities.RawPayload{Text: "<b>Tested</b> &amp; OK"}, make(SiteCounter))
	require.True(t, ok)
	assert.Equal(t, "Tested & OK", markup.Content)
}

func TestNormalize_SegmentedContentKeepsBlankLines(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{})

	note, ok := n.Normalize(entities.RawPayload{
		Kind:      entities.SourceKindTextFile,
		Text:      "Replaced PPU.\n\nTested.",
		Segmented: true,
		Title:     "FP 5",
	}, make(SiteCounter))

	require.True(t, ok)
	assert.Equal(t, "FP 5", note.Title)
	assert.Equal(t, "Replaced PPU.\n\nTested.", note.Content)
	assert.Equal(t, entities.SourceTextFile, note.Source)
}

func TestNormalize_TitleIsClipped(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{})

	note, ok := n.Normalize(entities.RawPayload{Text: strings.Repeat("a", 80) + "\nrest"}, make(SiteCounter))

	require.True(t, ok)
	assert.Equal(t, strings.Repeat("a", 50)+"...", note.Title)
}

func TestNormalize_Dates(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{})

	tests := []struct {
		name     string
		payload  entities.RawPayload
		expected string
	}{
		{"canonical layout", entities.RawPayload{Date: "2024-01-02 03:04:05"}, "2024-01-02 03:04:05"},
		{"date only", entities.RawPayload{Date: "2024-01-02"}, "2024-01-02 00:00:00"},
		{"rfc3339", entities.RawPayload{Date: "2024-01-02T03:04:05Z"}, "2024-01-02 03:04:05"},
		{"us layout", entities.RawPayload{Date: "01/02/2024"}, "2024-01-02 00:00:00"},
		{"created at fallback", entities.RawPayload{CreatedAt: "2023-12-31 23:59:59"}, "2023-12-31 23:59:59"},
		{"date wins over created at", entities.RawPayload{Date: "2024-01-02", CreatedAt: "2023-12-31"}, "2024-01-02 00:00:00"},
		{"unparseable kept", entities.RawPayload{Date: "last tuesday"}, "last tuesday"},
		{"defaults to now", entities.RawPayload{}, "2024-05-01 12:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.payload.Text = "content"
			note, ok := n.Normalize(tt.payload, make(SiteCounter))
			require.True(t, ok)
			assert.Equal(t, tt.expected, note.Date)
		})
	}
}

func TestNormalize_DefaultSourceByKind(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{})

	note, _ := n.Normalize(entities.RawPayload{Kind: entities.SourceKindClipboard, Text: "x"}, make(SiteCounter))
	assert.Equal(t, entities.SourceClipboard, note.Source)

	note, _ = n.Normalize(entities.RawPayload{Kind: entities.SourceKindTextFile, Source: entities.SourceTextExtraction, Text: "x"}, make(SiteCounter))
	assert.Equal(t, entities.SourceTextExtraction, note.Source)
}

func TestNormalize_StripCodeLines(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{StripCodeLines: true, ClassifySites: true})

	note, ok := n.Normalize(entities.RawPayload{
		Text: "Site: 711\n// debug output\nSwapped board\n# old comment",
	}, make(SiteCounter))

	require.True(t, ok)
	assert.Equal(t, "711", note.Site)
	assert.Equal(t, "Swapped board", note.Content)
}

func TestNormalize_CounterIsPerSite(t *testing.T) {
	n := newTestNormalizer(NormalizerOptions{ClassifySites: true})
	counter := make(SiteCounter)

	for _, text := range []string{"Site: A\none", "Site: A\ntwo", "Site: B\nthree", "no label"} {
		_, ok := n.Normalize(entities.RawPayload{Text: text}, counter)
		require.True(t, ok)
	}

	assert.Equal(t, SiteCounter{"A": 2, "B": 1, entities.UncategorizedSite: 1}, counter)
}

func TestClassifySite(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		expectedSite    string
		expectedContent string
	}{
		{"site id label", "SiteID: 711 #36064\nReplaced pump.", "711 #36064", "Replaced pump."},
		{"site label case insensitive", "replaced\nsite:  Depot 4 \nnext", "Depot 4", "replaced\nnext"},
		{"first label wins, all stripped", "Site: A\nfoo\nSITEID: B", "A", "foo"},
		{"label must start the line", "Visited Site: A today", entities.UncategorizedSite, "Visited Site: A today"},
		{"empty label value", "Site:\nbody", entities.UncategorizedSite, "body"},
		{"no label", "body", entities.UncategorizedSite, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, content := ClassifySite(tt.input)
			assert.Equal(t, tt.expectedSite, site)
			assert.Equal(t, tt.expectedContent, content)
		})
	}
}

func TestStripCodeLines(t *testing.T) {
	input := "// comment\nReal note\n  # hash\n/* block\n * star line\n*bold* stays"

	assert.Equal(t, "Real note\n*bold* stays", StripCodeLines(input))
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("not a date")

	assert.Error(t, err)
}
