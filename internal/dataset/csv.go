package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

// CSVParser parses day files exported as CSV. Some batches were converted
// to CSV before archival; the layout matches the spreadsheet files.
type CSVParser struct {
	TimeColumn string
}

func NewCSVParser(timeColumn string) *CSVParser {
	return &CSVParser{TimeColumn: timeColumn}
}

func (p *CSVParser) Parse(r io.Reader) ([]string, []model.Reading, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rawHeader, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}

	header := make([]string, 0, len(rawHeader))
	for i, cell := range rawHeader {
		if i == 0 {
			// Spreadsheet exports prepend a UTF-8 BOM.
			cell = strings.TrimPrefix(cell, "\uFEFF")
		}
		header = append(header, strings.TrimSpace(cell))
	}
	if err := validateHeader(header, p.TimeColumn); err != nil {
		return nil, nil, err
	}

	var readings []model.Reading
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip malformed lines, keep the rest of the file.
			continue
		}
		if rowEmpty(record) {
			continue
		}

		reading := newReading()
		for i, cell := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			fillCell(&reading, header[i], cell)
		}
		readings = append(readings, reading)
	}

	return header, readings, nil
}
