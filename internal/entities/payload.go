package entities

// SourceKind tags the origin format of a RawPayload.
type SourceKind string

const (
	SourceKindStickyNotes SourceKind = "embedded_database"
	SourceKindTextFile    SourceKind = "delimited_text_file"
	SourceKindTabularFile SourceKind = "tabular_file"
	SourceKindStructured  SourceKind = "structured_data_file"
	SourceKindHTMLFile    SourceKind = "html_file"
	SourceKindClipboard   SourceKind = "clipboard"
	SourceKindEquipment   SourceKind = "equipment_file"
)

// RawPayload is one unit of source text as returned by a reader, before
// cleaning and normalization. Readers never modify a payload after
// returning it.
type RawPayload struct {
	Kind SourceKind
	Text string

	// Segmented is set when Text is already a plain-text unit produced by
	// the segmenter, so no markup cleaning is required.
	Segmented bool
	Title     string
	Level     int

	// Source overrides the default source tag for the payload kind.
	Source string

	// Optional source metadata.
	Position  string
	Theme     string
	RecordID  string
	CreatedAt string
	Ordinal   int
	Path      string

	// Pre-assigned classification (structured inputs, equipment files).
	Site      string
	Equipment string
	Date      string

	// Fields holds the raw key/value data of tabular rows and structured records.
	Fields map[string]string
}
