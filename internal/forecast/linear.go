package forecast

import (
	"errors"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/stat"
)

// ridgeScale sets the L2 penalty per training row. Calendar features are
// collinear on a regular sampling grid (timestamp is a linear function of
// day_of_year and hour there, month rarely changes) so plain OLS would be
// singular on most real inputs.
const ridgeScale = 1e-8

// Linear is least squares over the standardized feature matrix, with a tiny
// ridge penalty. It is the baseline candidate and the only one guaranteed to
// be present.
type Linear struct {
	Weights []float64 `json:"weights"` // intercept first
}

func NewLinear() *Linear {
	return &Linear{}
}

func (m *Linear) Name() string { return "linear" }

func (m *Linear) Fit(rows [][]float64, target []float64) error {
	weights, ok := stat.RidgeOLS(rows, target, ridgeScale*float64(len(rows)))
	if !ok {
		return errors.New("normal equations are singular")
	}
	m.Weights = weights
	return nil
}

func (m *Linear) Predict(row []float64) float64 {
	if len(m.Weights) == 0 {
		return 0
	}
	p := m.Weights[0]
	for j, v := range row {
		if j+1 < len(m.Weights) {
			p += m.Weights[j+1] * v
		}
	}
	return p
}
