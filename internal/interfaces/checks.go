package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/notecompiler/internal/cli"
	"github.com/mrlokans/notecompiler/internal/database"
	"github.com/mrlokans/notecompiler/internal/exporters"
	"github.com/mrlokans/notecompiler/internal/importers"
	"github.com/mrlokans/notecompiler/internal/notestore"
	"github.com/mrlokans/notecompiler/internal/services"
	"github.com/mrlokans/notecompiler/internal/sources"
)

// =============================================================================
// Source Readers
// =============================================================================

var _ sources.Reader = (*sources.StickyNotesReader)(nil)
var _ sources.Reader = (*sources.FileReader)(nil)
var _ sources.Reader = (*sources.DirectoryReader)(nil)
var _ sources.Reader = (*sources.ClipboardReader)(nil)
var _ sources.Reader = (*sources.EquipmentFileReader)(nil)

// =============================================================================
// Persistence
// =============================================================================

// Pipeline exporters
var _ importers.Exporter = (*notestore.Store)(nil)
var _ importers.Exporter = (*database.Database)(nil)
var _ importers.Exporter = (*exporters.CollectionExporter)(nil)

// NoteReader implementations
var _ services.NoteReader = (*notestore.Store)(nil)
var _ services.NoteReader = (*exporters.CollectionExporter)(nil)

// NoteSearcher implementations
var _ services.NoteSearcher = (*database.Database)(nil)

// File layout exporters
var _ exporters.NoteExporter = (*exporters.MarkdownExporter)(nil)
var _ exporters.NoteExporter = (*exporters.SiteTreeExporter)(nil)

// =============================================================================
// Commands
// =============================================================================

var _ cli.Command = (*cli.ExtractCommand)(nil)
var _ cli.Command = (*cli.ExtractSourceCommand)(nil)
var _ cli.Command = (*cli.ConsolidateCommand)(nil)
var _ cli.Command = (*cli.SearchCommand)(nil)
var _ cli.Command = (*cli.AddCommand)(nil)
var _ cli.Command = (*cli.IndexCommand)(nil)
var _ cli.Command = (*cli.ExportCommand)(nil)
var _ cli.Command = (*cli.PrefsCommand)(nil)
var _ cli.Command = (*cli.WatchCommand)(nil)
