package dataset

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
)

// Parser reads one day file and returns its header plus one Reading per
// data row. Rows keep every cell: numeric cells in Values, everything else
// (timestamps included) in Labels.
type Parser interface {
	Parse(r io.Reader) ([]string, []model.Reading, error)
}

// fillCell routes a raw cell into the reading. Empty cells stay absent;
// NaN/Inf render as missing rather than poisoning later statistics.
func fillCell(reading *model.Reading, col, raw string) {
	cell := strings.TrimSpace(raw)
	if cell == "" {
		return
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		reading.Values[col] = v
		return
	}
	reading.Labels[col] = cell
}

func newReading() model.Reading {
	return model.Reading{
		Values: make(map[string]float64),
		Labels: make(map[string]string),
	}
}
