package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// EquipmentFileReader reads per-equipment note files laid out as
// <data>/<site>/<equipment>.json (or .yaml/.yml). Each file holds a list of
// {content, date} records. The parent directory names the site and the file
// name names the equipment.
type EquipmentFileReader struct{}

func NewEquipmentFileReader() *EquipmentFileReader {
	return &EquipmentFileReader{}
}

func (r *EquipmentFileReader) Read(path string) ([]entities.RawPayload, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: equipment file %s", entities.ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrMissingSource, path)
		}
		return nil, fmt.Errorf("failed to read equipment file %s: %w", path, err)
	}

	doc, err := DecodeStructured(data, ext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	site := filepath.Base(filepath.Dir(path))
	equipment := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	payloads := PayloadsFromStructured(doc, entities.SourceKindEquipment, entities.SourceEquipmentFile)
	for i := range payloads {
		payloads[i].Site = site
		payloads[i].Equipment = equipment
		payloads[i].Path = path
	}
	return payloads, nil
}

// ReadDataDir reads every equipment file found one level below dataDir,
// i.e. <dataDir>/<site>/<equipment>.<ext>. Files that fail to read are
// returned in skipped.
func (r *EquipmentFileReader) ReadDataDir(dataDir string) (payloads []entities.RawPayload, skipped map[string]error, err error) {
	siteDirs, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: data directory %s", entities.ErrMissingSource, dataDir)
		}
		return nil, nil, fmt.Errorf("failed to read data directory %s: %w", dataDir, err)
	}

	skipped = make(map[string]error)
	for _, siteDir := range siteDirs {
		if !siteDir.IsDir() {
			continue
		}
		sitePath := filepath.Join(dataDir, siteDir.Name())
		files, err := os.ReadDir(sitePath)
		if err != nil {
			skipped[sitePath] = err
			continue
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(f.Name())) {
			case ".json", ".yaml", ".yml":
			default:
				continue
			}
			path := filepath.Join(sitePath, f.Name())
			items, err := r.Read(path)
			if err != nil {
				skipped[path] = err
				continue
			}
			payloads = append(payloads, items...)
		}
	}
	return payloads, skipped, nil
}
