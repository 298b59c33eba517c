package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

// XLSXParser parses the spreadsheet day files the station preprocessing
// emits: a single sheet, header row first, one measurement per row.
type XLSXParser struct {
	// TimeColumn must appear in the header, otherwise this is not a day
	// file and the whole parse fails.
	TimeColumn string
}

func NewXLSXParser(timeColumn string) *XLSXParser {
	return &XLSXParser{TimeColumn: timeColumn}
}

func (p *XLSXParser) Parse(r io.Reader) ([]string, []model.Reading, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	header := make([]string, 0, len(rows[0]))
	for _, cell := range rows[0] {
		header = append(header, strings.TrimSpace(cell))
	}
	if err := validateHeader(header, p.TimeColumn); err != nil {
		return nil, nil, err
	}

	var readings []model.Reading
	for _, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		reading := newReading()
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			fillCell(&reading, header[i], cell)
		}
		readings = append(readings, reading)
	}

	return header, readings, nil
}

func validateHeader(header []string, timeColumn string) error {
	if len(header) == 0 {
		return fmt.Errorf("empty header row")
	}
	for _, col := range header {
		if col == timeColumn {
			return nil
		}
	}
	return fmt.Errorf("header has no %q column", timeColumn)
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
