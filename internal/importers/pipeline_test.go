package importers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/services"
)

type mockExporter struct {
	exportedNotes []entities.CanonicalNote
	calls         int
	returnError   error
}

func (m *mockExporter) Export(notes []entities.CanonicalNote) (services.ExportResult, error) {
	m.calls++
	m.exportedNotes = notes
	if m.returnError != nil {
		return services.ExportResult{}, m.returnError
	}

	return services.ExportResult{
		NotesProcessed: len(notes),
		NotesAdded:     len(notes),
	}, nil
}

type stubReader struct {
	payloads []entities.RawPayload
	err      error
	locators []string
}

func (r *stubReader) Read(locator string) ([]entities.RawPayload, error) {
	r.locators = append(r.locators, locator)
	return r.payloads, r.err
}

func TestPipeline_Import_ExportsNormalizedNotes(t *testing.T) {
	exporter := &mockExporter{}
	pipeline := NewPipeline(exporter, newTestNormalizer(NormalizerOptions{ClassifySites: true}))

	reader := &stubReader{payloads: []entities.RawPayload{
		{Kind: entities.SourceKindStickyNotes, Text: "Site: 711\nReplaced pump"},
		{Kind: entities.SourceKindStickyNotes, Text: "   "},
		{Kind: entities.SourceKindStickyNotes, Text: "Site: 712\nTested E-stop"},
	}}

	result, err := pipeline.Import(Source{Name: "sticky", Reader: reader, Locator: "plum.sqlite"})

	require.NoError(t, err)
	assert.Equal(t, []string{"plum.sqlite"}, reader.locators)
	assert.Equal(t, 1, result.SourcesRead)
	assert.Equal(t, 3, result.PayloadsRead)
	assert.Equal(t, 1, result.NotesDiscarded)
	assert.Equal(t, 2, result.NotesAdded)
	require.Len(t, exporter.exportedNotes, 2)
	assert.Equal(t, "711", exporter.exportedNotes[0].Site)
	assert.Equal(t, "712", exporter.exportedNotes[1].Site)
}

func TestPipeline_Import_FailingSourceDoesNotAbortOthers(t *testing.T) {
	exporter := &mockExporter{}
	pipeline := NewPipeline(exporter, newTestNormalizer(NormalizerOptions{}))

	missing := &stubReader{err: fmt.Errorf("%w: plum.sqlite", entities.ErrMissingSource)}
	broken := &stubReader{err: fmt.Errorf("%w: bad json", entities.ErrUnreadableFormat)}
	good := &stubReader{payloads: []entities.RawPayload{{Text: "kept"}}}

	result, err := pipeline.Import(
		Source{Name: "sticky", Reader: missing},
		Source{Name: "notes.json", Reader: broken},
		Source{Name: "notes.txt", Reader: good},
	)

	require.NoError(t, err)
	assert.Equal(t, 2, result.SourcesFailed)
	assert.Equal(t, 1, result.SourcesRead)
	require.Len(t, exporter.exportedNotes, 1)
	assert.Equal(t, "kept", exporter.exportedNotes[0].Content)
}

func TestPipeline_Import_EmptyInput(t *testing.T) {
	exporter := &mockExporter{}
	pipeline := NewPipeline(exporter, newTestNormalizer(NormalizerOptions{}))

	result, err := pipeline.Import(Source{Name: "empty", Reader: &stubReader{}})

	require.NoError(t, err)
	assert.Equal(t, 0, result.NotesAdded)
	assert.Equal(t, 0, exporter.calls)
}

func TestPipeline_Import_WriteFailureIsSurfaced(t *testing.T) {
	exporter := &mockExporter{returnError: errors.New("disk full")}
	pipeline := NewPipeline(exporter, newTestNormalizer(NormalizerOptions{}))

	_, err := pipeline.Import(Source{Name: "text", Reader: &stubReader{payloads: []entities.RawPayload{{Text: "x"}}}})

	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrWriteFailure)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPipeline_ImportNotes_KeepsWrappedWriteFailure(t *testing.T) {
	wrapped := fmt.Errorf("%w: notes.json: permission denied", entities.ErrWriteFailure)
	pipeline := NewPipeline(&mockExporter{returnError: wrapped}, newTestNormalizer(NormalizerOptions{}))

	_, err := pipeline.ImportNotes([]entities.CanonicalNote{{Site: "A", Content: "x"}})

	assert.Equal(t, wrapped, err)
}

func TestPipeline_Extract_CounterSpansSources(t *testing.T) {
	pipeline := NewPipeline(&mockExporter{}, newTestNormalizer(NormalizerOptions{}))

	first := &stubReader{payloads: []entities.RawPayload{{Kind: entities.SourceKindStickyNotes, Text: "a"}}}
	second := &stubReader{payloads: []entities.RawPayload{{Kind: entities.SourceKindStickyNotes, Text: "b"}}}

	notes, result := pipeline.Extract(Source{Name: "1", Reader: first}, Source{Name: "2", Reader: second})

	require.Len(t, notes, 2)
	assert.Equal(t, 2, result.SourcesRead)
	assert.Equal(t, "a", notes[0].Content)
	assert.Equal(t, "b", notes[1].Content)
}

func TestConsolidateEquipment(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "711"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "712"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "711", "pump.json"),
		[]byte(`[{"content": "Seal replaced", "date": "2024-01-01 08:00:00"}, {"content": ""}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "712", "dispenser.json"),
		[]byte(`[{"content": "Calibrated meter", "date": "2024-01-02"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "712", "broken.json"), []byte("{"), 0644))

	notes, err := ConsolidateEquipment(dataDir, newTestNormalizer(NormalizerOptions{ClassifySites: true}))

	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, entities.CanonicalNote{
		Site:        "711",
		Equipment:   "pump",
		Title:       "Seal replaced",
		Content:     "Seal replaced",
		Date:        "2024-01-01 08:00:00",
		Source:      entities.SourceEquipmentFile,
		ExtractedAt: "2024-05-01 12:00:00",
	}, notes[0])
	assert.Equal(t, "712", notes[1].Site)
	assert.Equal(t, "dispenser", notes[1].Equipment)
	assert.Equal(t, "2024-01-02 00:00:00", notes[1].Date)
}

func TestConsolidateEquipment_MissingDataDir(t *testing.T) {
	_, err := ConsolidateEquipment(filepath.Join(t.TempDir(), "missing"), newTestNormalizer(NormalizerOptions{}))

	assert.ErrorIs(t, err, entities.ErrMissingSource)
}
