// Package importers turns raw source payloads into canonical notes.
//
// # Architecture
//
// The extraction pipeline follows a simple flow:
//
//	Source → sources.Reader → RawPayload → Normalizer → CanonicalNote → Exporter → Storage
//
// Readers (package sources) fetch and segment source data. The Normalizer
// cleans each payload, classifies its site, fills in title and date, and
// drops payloads whose content is empty. The Pipeline ties readers and the
// normalizer together and hands the result to an Exporter.
//
// # Site numbering
//
// Notes are numbered per site during a run. The count lives in a
// SiteCounter created by the caller for that run and passed to every
// Normalize call; nothing is kept between runs.
//
// # Consolidation
//
// ConsolidateEquipment reads the <data>/<site>/<equipment>.json layout and
// produces one flat sequence of notes, which the note store then writes as
// the canonical collection.
//
// # Example Usage
//
//	normalizer := importers.NewNormalizer(importers.NormalizerOptions{ClassifySites: true})
//	pipeline := importers.NewPipeline(store, normalizer)
//
//	result, err := pipeline.Import(importers.Source{
//		Name:    "sticky notes",
//		Reader:  sources.NewStickyNotesReader(""),
//	})
//	if errors.Is(err, entities.ErrWriteFailure) {
//		// the collection could not be saved
//	}
package importers
