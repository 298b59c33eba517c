// Package export renders frames as CSV for download. Files carry a UTF-8
// byte order mark so spreadsheet software decodes the Chinese column
// headers correctly.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV streams the frame to w: BOM, header row in the frame's column
// order, then one row per reading. Parsed timestamps render as RFC3339;
// everything else keeps its original text.
func WriteCSV(w io.Writer, f *model.Frame) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(f.Columns))
	for _, r := range f.Rows {
		for i, col := range f.Columns {
			row[i] = cell(f, r, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(f *model.Frame, r model.Reading, col string) string {
	if col == f.TimeColumn && !r.Timestamp.IsZero() {
		return r.Timestamp.Format(time.RFC3339)
	}
	if v, ok := r.Values[col]; ok {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return r.Labels[col]
}

// Filename follows the dashboard's download naming:
// <category>_data_<location>_<start>_<end>.csv with compact dates.
func Filename(loc model.LocationID, cat model.Category, start, end time.Time) string {
	return fmt.Sprintf("%s_data_%s_%s_%s.csv",
		cat, loc, start.Format("20060102"), end.Format("20060102"))
}
