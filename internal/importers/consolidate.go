package importers

import (
	"log"

	"github.com/mrlokans/notecompiler/internal/entities"
	"github.com/mrlokans/notecompiler/internal/sources"
)

// ConsolidateEquipment merges every per-equipment file under dataDir into a
// single sequence of canonical notes. Each file contributes its parent
// directory as site and its base name as equipment. Files that cannot be
// read are logged and skipped.
func ConsolidateEquipment(dataDir string, normalizer *Normalizer) ([]entities.CanonicalNote, error) {
	payloads, skipped, err := sources.NewEquipmentFileReader().ReadDataDir(dataDir)
	if err != nil {
		return nil, err
	}

	for path, skipErr := range skipped {
		log.Printf("WARNING: skipping equipment file %s: %v", path, skipErr)
	}

	counter := make(SiteCounter)
	notes := make([]entities.CanonicalNote, 0, len(payloads))
	for _, payload := range payloads {
		if note, ok := normalizer.Normalize(payload, counter); ok {
			notes = append(notes, note)
		}
	}

	log.Printf("Consolidated %d notes from equipment files in %s", len(notes), dataDir)
	return notes, nil
}
