package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// Columns checked, in order, for the note body of a tabular row.
var contentColumns = []string{"content", "text", "note", "body"}

// TabularFileReader reads CSV files with a header row. Each data row
// becomes one payload whose Fields are keyed by header name.
type TabularFileReader struct{}

func NewTabularFileReader() *TabularFileReader {
	return &TabularFileReader{}
}

func (r *TabularFileReader) Read(path string) ([]entities.RawPayload, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrMissingSource, path)
		}
		return nil, fmt.Errorf("failed to open csv file %s: %w", path, err)
	}
	defer file.Close()

	return ParseTabular(file)
}

// ParseTabular parses header-row CSV from r. Rows that cannot be parsed are
// logged and skipped.
func ParseTabular(r io.Reader) ([]entities.RawPayload, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, entities.ErrEmptyInput
		}
		return nil, fmt.Errorf("%w: failed to read header: %v", entities.ErrUnreadableFormat, err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var payloads []entities.RawPayload
	lineNum := 1 // Start at 1 because we already read the header

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARNING: csv line %d: %v", lineNum, err)
			continue
		}

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" || i >= len(record) {
				continue
			}
			fields[name] = strings.TrimSpace(record[i])
		}

		payloads = append(payloads, payloadFromFields(entities.SourceKindTabularFile, entities.SourceTabularFile, header, fields))
	}

	return payloads, nil
}

// payloadFromFields maps a record onto a payload. Well-known keys (content,
// title, site, equipment, date) are lifted into the payload; when there is no
// content column the record is rendered as "key: value" lines in key order.
func payloadFromFields(kind entities.SourceKind, source string, keys []string, fields map[string]string) entities.RawPayload {
	payload := entities.RawPayload{
		Kind:      kind,
		Source:    source,
		Fields:    fields,
		Title:     lookupField(fields, "title"),
		Site:      lookupField(fields, "site"),
		Equipment: lookupField(fields, "equipment"),
		Date:      lookupField(fields, "date", "created_at", "createdat"),
	}

	if s := lookupField(fields, "source"); s != "" {
		payload.Source = s
	}

	for _, column := range contentColumns {
		if text := lookupField(fields, column); text != "" {
			payload.Text = text
			return payload
		}
	}

	var lines []string
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != "" {
			lines = append(lines, key+": "+value)
		}
	}
	payload.Text = strings.Join(lines, "\n")
	return payload
}

// lookupField returns the first non-empty value among names, matching keys
// case-insensitively.
func lookupField(fields map[string]string, names ...string) string {
	for _, name := range names {
		for key, value := range fields {
			if strings.EqualFold(key, name) && value != "" {
				return value
			}
		}
	}
	return ""
}
