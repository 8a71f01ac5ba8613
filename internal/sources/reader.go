// Package sources reads raw note payloads from every supported origin:
// the Windows Sticky Notes database, text and markdown files, CSV, JSON and
// YAML documents, HTML files, whole directory trees and the clipboard.
//
// Readers only fetch and split source data. They do not clean markup or
// assign canonical fields; that happens in the importers package.
package sources

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// Reader yields raw payloads for a locator (a file path, directory path or
// database path, depending on the implementation).
//
// Implementations:
//   - StickyNotesReader (stickynotes.go) - Windows Sticky Notes plum.sqlite
//   - TextFileReader (textfile.go) - .txt and .md files, segmented
//   - TabularFileReader (tabular.go) - CSV with a header row
//   - StructuredFileReader (structured.go) - JSON and YAML documents
//   - HTMLFileReader (html.go) - HTML pages
//   - ClipboardReader (clipboard.go) - system clipboard, locator ignored
//   - DirectoryReader (directory.go) - recursive walk dispatching by extension
//   - EquipmentFileReader (equipment.go) - per-equipment note files
type Reader interface {
	Read(locator string) ([]entities.RawPayload, error)
}

// SupportedExtensions lists the file extensions FileReader can dispatch.
var SupportedExtensions = []string{".txt", ".md", ".markdown", ".csv", ".json", ".yaml", ".yml", ".html", ".htm"}

// ReaderForExtension returns the file reader handling ext.
func ReaderForExtension(ext string) (Reader, bool) {
	switch strings.ToLower(ext) {
	case ".txt", ".md", ".markdown":
		return NewTextFileReader(), true
	case ".csv":
		return NewTabularFileReader(), true
	case ".json", ".yaml", ".yml":
		return NewStructuredFileReader(), true
	case ".html", ".htm":
		return NewHTMLFileReader(), true
	default:
		return nil, false
	}
}

// FileReader reads any single supported file by dispatching on its
// extension.
type FileReader struct{}

func NewFileReader() *FileReader {
	return &FileReader{}
}

func (r *FileReader) Read(path string) ([]entities.RawPayload, error) {
	ext := filepath.Ext(path)
	reader, ok := ReaderForExtension(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", entities.ErrUnsupportedFormat, ext, path)
	}
	return reader.Read(path)
}

// Compile-time interface checks
var (
	_ Reader = (*FileReader)(nil)
	_ Reader = (*StickyNotesReader)(nil)
	_ Reader = (*TextFileReader)(nil)
	_ Reader = (*TabularFileReader)(nil)
	_ Reader = (*StructuredFileReader)(nil)
	_ Reader = (*HTMLFileReader)(nil)
	_ Reader = (*ClipboardReader)(nil)
	_ Reader = (*DirectoryReader)(nil)
	_ Reader = (*EquipmentFileReader)(nil)
)
