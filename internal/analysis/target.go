package analysis

import (
	"strings"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/model"
	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/stat"
)

// Two-tier keyword search: exact power vocabulary first, then looser PV
// vocabulary that must also show spread, so a constant status register
// never wins just for having "pv" in its name.
var (
	exactTargetKeywords = []string{"power", "功率", "watt", "pv_power", "mppt_power", "solar_power"}
	broadTargetKeywords = []string{"pv", "mppt", "solar", "panel"}
)

// PickTargetColumn chooses the column the analyses predict and correlate.
// Keyword tiers decide first; when nothing matches, the numeric column with
// the largest variance wins.
func PickTargetColumn(f *model.Frame) (string, error) {
	numeric := f.NumericColumns()
	if len(numeric) == 0 {
		return "", ErrNoTarget
	}

	for _, kw := range exactTargetKeywords {
		for _, col := range numeric {
			if strings.Contains(strings.ToLower(col), kw) {
				return col, nil
			}
		}
	}

	for _, kw := range broadTargetKeywords {
		for _, col := range numeric {
			if strings.Contains(strings.ToLower(col), kw) && stat.PopStd(f.ColumnValues(col)) > 0 {
				return col, nil
			}
		}
	}

	best := numeric[0]
	bestStd := stat.PopStd(f.ColumnValues(best))
	for _, col := range numeric[1:] {
		if s := stat.PopStd(f.ColumnValues(col)); s > bestStd {
			best, bestStd = col, s
		}
	}
	return best, nil
}
