package forecast

import "math"

// Scaler holds per-feature z-score parameters, fit on training rows only.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes column means and population stds. Zero-spread columns
// get std 1 so constant features pass through unchanged.
func FitScaler(rows [][]float64) *Scaler {
	if len(rows) == 0 {
		return &Scaler{}
	}
	p := len(rows[0])
	s := &Scaler{Mean: make([]float64, p), Std: make([]float64, p)}

	n := float64(len(rows))
	for _, row := range rows {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / n)
		if s.Std[j] < 1e-10 {
			s.Std[j] = 1
		}
	}
	return s
}

func (s *Scaler) TransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

func (s *Scaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.TransformRow(row)
	}
	return out
}
