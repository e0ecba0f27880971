package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. Sectioned datasets get a
// leading column carrying the section title on every row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	sectioned := len(data.Sections) > 0
	headers := data.Headers
	if sectioned {
		sectionHeader := data.SectionHeader
		if sectionHeader == "" {
			sectionHeader = "Section"
		}
		headers = append([]string{sectionHeader}, data.Headers...)
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, section := range data.sections() {
		for _, row := range section.Rows {
			record := make([]string, 0, len(headers))
			if sectioned {
				record = append(record, section.Title)
			}
			for _, header := range data.Headers {
				record = append(record, row[header])
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
