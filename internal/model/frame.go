package model

import (
	"sort"
	"time"
)

// Frame is an ordered collection of rows answering one (location, category,
// date range) query. It is a per-request value: build, transform, discard.
type Frame struct {
	Location LocationID
	Category Category
	// TimeColumn names the raw column carrying row timestamps.
	TimeColumn string
	// Columns preserves header order across all loaded files. Columns seen
	// in later files append after earlier ones.
	Columns []string
	Rows    []Reading

	colSeen map[string]bool
}

func NewFrame(loc LocationID, cat Category) *Frame {
	return &Frame{
		Location:   loc,
		Category:   cat,
		TimeColumn: TimeColumn(cat),
		colSeen:    make(map[string]bool),
	}
}

// AddColumn registers a column name, keeping first-seen order.
func (f *Frame) AddColumn(name string) {
	if f.colSeen == nil {
		f.colSeen = make(map[string]bool)
	}
	if f.colSeen[name] {
		return
	}
	f.colSeen[name] = true
	f.Columns = append(f.Columns, name)
}

func (f *Frame) Append(r Reading) {
	f.Rows = append(f.Rows, r)
}

func (f *Frame) Len() int {
	return len(f.Rows)
}

// WithRows returns a new frame sharing f's metadata but holding rows.
func (f *Frame) WithRows(rows []Reading) *Frame {
	out := NewFrame(f.Location, f.Category)
	out.TimeColumn = f.TimeColumn
	for _, c := range f.Columns {
		out.AddColumn(c)
	}
	out.Rows = rows
	return out
}

// NumericColumns returns columns holding at least one numeric value,
// excluding the time column.
func (f *Frame) NumericColumns() []string {
	var cols []string
	for _, c := range f.Columns {
		if c == f.TimeColumn {
			continue
		}
		for _, r := range f.Rows {
			if _, ok := r.Values[c]; ok {
				cols = append(cols, c)
				break
			}
		}
	}
	return cols
}

// ColumnValues returns col's numeric values in row order, skipping rows
// where the cell is missing.
func (f *Frame) ColumnValues(col string) []float64 {
	var vals []float64
	for _, r := range f.Rows {
		if v, ok := r.Values[col]; ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// SortByTime orders rows by parsed timestamp, earliest first. Rows with a
// zero timestamp sort before everything else; callers drop them beforehand.
func (f *Frame) SortByTime() {
	sort.SliceStable(f.Rows, func(i, j int) bool {
		return f.Rows[i].Timestamp.Before(f.Rows[j].Timestamp)
	})
}

// RowsInRange returns rows with start <= Timestamp < end. Rows must already
// be sorted by timestamp.
func (f *Frame) RowsInRange(start, end time.Time) []Reading {
	if len(f.Rows) == 0 {
		return nil
	}

	startIdx := sort.Search(len(f.Rows), func(i int) bool {
		return !f.Rows[i].Timestamp.Before(start)
	})
	endIdx := sort.Search(len(f.Rows), func(i int) bool {
		return !f.Rows[i].Timestamp.Before(end)
	})

	if startIdx >= endIdx {
		return nil
	}

	result := make([]Reading, endIdx-startIdx)
	copy(result, f.Rows[startIdx:endIdx])
	return result
}

// TimeBounds returns the first and last row timestamps. Rows must already
// be sorted by timestamp.
func (f *Frame) TimeBounds() (TimeRange, bool) {
	if len(f.Rows) == 0 {
		return TimeRange{}, false
	}
	return TimeRange{
		Start: f.Rows[0].Timestamp,
		End:   f.Rows[len(f.Rows)-1].Timestamp,
	}, true
}
