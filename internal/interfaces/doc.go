// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Reading
//
//   - sources.Reader: yields raw payloads for a locator (internal/sources/reader.go)
//   - segmenter.Strategy: one way of splitting text into units (internal/segmenter/segmenter.go)
//
// ## Persistence
//
//   - importers.Exporter: persists canonical notes at the end of the pipeline (internal/importers/pipeline.go)
//   - services.NoteReader: read access to the canonical collection (internal/services/interfaces.go)
//   - services.NoteSearcher: text and site queries over the index (internal/services/interfaces.go)
//   - exporters.NoteExporter: writes notes to an external file layout (internal/exporters/generic.go)
//
// ## Commands
//
//   - cli.Command: a subcommand with ParseFlags and Run (internal/cli/common.go)
//
// # Adding a New Source
//
//  1. Implement sources.Reader in internal/sources/. Only fetch and split;
//     leave markup cleaning and field assignment to the normalizer.
//
//     type OneNoteReader struct{}
//
//     func (r *OneNoteReader) Read(locator string) ([]entities.RawPayload, error)
//
//     var _ Reader = (*OneNoteReader)(nil)
//
//  2. Wrap failures in the sentinel errors from internal/entities/errors.go
//     so the pipeline can log them at the right level.
//
//  3. Add a SourceKind and its default source tag in internal/entities and
//     internal/importers/normalizer.go.
//
//  4. If it is a file format, register its extension in ReaderForExtension.
//
// # Adding a New Output
//
// Implement exporters.NoteExporter for a file layout, or importers.Exporter
// when the output should receive notes directly from the pipeline.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
