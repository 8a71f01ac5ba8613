package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// StructuredFileReader reads JSON and YAML documents. A list of records
// yields one payload per element; a single object yields one payload.
type StructuredFileReader struct{}

func NewStructuredFileReader() *StructuredFileReader {
	return &StructuredFileReader{}
}

func (r *StructuredFileReader) Read(path string) ([]entities.RawPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrMissingSource, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := DecodeStructured(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return PayloadsFromStructured(doc, entities.SourceKindStructured, entities.SourceStructuredFile), nil
}

// DecodeStructured parses data as YAML when ext is .yaml/.yml and as JSON
// otherwise. Blank input is reported as ErrEmptyInput.
func DecodeStructured(data []byte, ext string) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, entities.ErrEmptyInput
	}

	var doc any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: invalid yaml: %v", entities.ErrUnreadableFormat, err)
		}
	default:
		// Numbers stay json.Number so ids like 36064000 keep their digits.
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: invalid json: %v", entities.ErrUnreadableFormat, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("%w: invalid json: trailing data", entities.ErrUnreadableFormat)
		}
	}

	if doc == nil {
		return nil, entities.ErrEmptyInput
	}
	return doc, nil
}

// PayloadsFromStructured flattens a decoded document into payloads.
func PayloadsFromStructured(doc any, kind entities.SourceKind, source string) []entities.RawPayload {
	switch v := doc.(type) {
	case []any:
		payloads := make([]entities.RawPayload, 0, len(v))
		for _, item := range v {
			payloads = append(payloads, PayloadsFromStructured(item, kind, source)...)
		}
		return payloads
	case map[string]any:
		keys := make([]string, 0, len(v))
		fields := make(map[string]string, len(v))
		for key, value := range v {
			keys = append(keys, key)
			fields[key] = stringifyValue(value)
		}
		sort.Strings(keys)
		return []entities.RawPayload{payloadFromFields(kind, source, keys, fields)}
	case nil:
		return nil
	default:
		return []entities.RawPayload{{
			Kind:   kind,
			Text:   stringifyValue(v),
			Source: source,
		}}
	}
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
