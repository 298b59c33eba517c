package forecast

import "sync/atomic"

// Model is one forecasting candidate. Fit failures drop the candidate from
// the run; they never abort it.
type Model interface {
	Name() string
	Fit(rows [][]float64, target []float64) error
	Predict(row []float64) float64
}

// boostedTreesEnabled gates the heaviest candidate. Deployments on weak
// hardware turn it off and run linear-only.
var boostedTreesEnabled atomic.Bool

func init() {
	boostedTreesEnabled.Store(true)
}

func BoostedTreesAvailable() bool {
	return boostedTreesEnabled.Load()
}

func SetBoostedTrees(enabled bool) {
	boostedTreesEnabled.Store(enabled)
}

// candidates returns the models to race, baseline first.
func candidates(seed uint64) []Model {
	models := []Model{NewLinear()}
	if BoostedTreesAvailable() {
		models = append(models, NewBoostedTrees(DefaultGBTConfig(seed)))
	}
	return models
}
