package forecast

import (
	"errors"
	"math/rand/v2"
	"sort"

	"github.com/Buzzkiller7/Photovoltaic-Power-and-Weather-Analytics-Platform/internal/stat"
)

// GBTConfig holds the boosted-ensemble hyperparameters.
type GBTConfig struct {
	Trees        int
	MaxDepth     int
	LearningRate float64
	Subsample    float64
	ColSample    float64
	MinLeaf      int
	Seed         uint64
}

// DefaultGBTConfig mirrors the settings the ensemble was tuned with on the
// 2024 archive.
func DefaultGBTConfig(seed uint64) GBTConfig {
	return GBTConfig{
		Trees:        50,
		MaxDepth:     4,
		LearningRate: 0.1,
		Subsample:    0.8,
		ColSample:    0.8,
		MinLeaf:      2,
		Seed:         seed,
	}
}

// BoostedTrees is gradient boosting with squared loss: each regression tree
// fits the running residuals, leaves predict the residual mean, and the
// ensemble advances by LearningRate per tree.
type BoostedTrees struct {
	cfg   GBTConfig
	base  float64
	trees []*treeNode
}

func NewBoostedTrees(cfg GBTConfig) *BoostedTrees {
	return &BoostedTrees{cfg: cfg}
}

func (m *BoostedTrees) Name() string { return "gradient_boosting" }

func (m *BoostedTrees) Fit(rows [][]float64, target []float64) error {
	n := len(rows)
	if n < 2*m.cfg.MinLeaf {
		return errors.New("too few rows to grow a tree")
	}

	rng := rand.New(rand.NewPCG(m.cfg.Seed, 0))

	m.base = stat.Mean(target)
	m.trees = m.trees[:0]

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.base
	}

	residual := make([]float64, n)
	for t := 0; t < m.cfg.Trees; t++ {
		for i := range residual {
			residual[i] = target[i] - pred[i]
		}

		sample := sampleIndices(n, m.cfg.Subsample, rng)
		cols := sampleColumns(len(rows[0]), m.cfg.ColSample, rng)

		tree := m.growTree(rows, residual, sample, cols, 0)
		if tree == nil {
			break
		}
		m.trees = append(m.trees, tree)

		for i := range pred {
			pred[i] += m.cfg.LearningRate * tree.predict(rows[i])
		}
	}

	if len(m.trees) == 0 {
		return errors.New("no trees grown")
	}
	return nil
}

func (m *BoostedTrees) Predict(row []float64) float64 {
	p := m.base
	for _, tree := range m.trees {
		p += m.cfg.LearningRate * tree.predict(row)
	}
	return p
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (t *treeNode) predict(row []float64) float64 {
	for !t.leaf {
		if row[t.feature] <= t.threshold {
			t = t.left
		} else {
			t = t.right
		}
	}
	return t.value
}

// growTree builds a variance-reduction regression tree over the sampled
// rows, splitting only the sampled columns.
func (m *BoostedTrees) growTree(rows [][]float64, residual []float64, sample []int, cols []int, depth int) *treeNode {
	if len(sample) == 0 {
		return nil
	}
	if depth >= m.cfg.MaxDepth || len(sample) < 2*m.cfg.MinLeaf {
		return &treeNode{leaf: true, value: meanAt(residual, sample)}
	}

	feature, threshold, ok := m.bestSplit(rows, residual, sample, cols)
	if !ok {
		return &treeNode{leaf: true, value: meanAt(residual, sample)}
	}

	var left, right []int
	for _, i := range sample {
		if rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      m.growTree(rows, residual, left, cols, depth+1),
		right:     m.growTree(rows, residual, right, cols, depth+1),
	}
}

// bestSplit scans each candidate column in sorted order, tracking running
// sums so every threshold is evaluated in one pass.
func (m *BoostedTrees) bestSplit(rows [][]float64, residual []float64, sample []int, cols []int) (feature int, threshold float64, ok bool) {
	bestGain := 0.0

	var totalSum float64
	for _, i := range sample {
		totalSum += residual[i]
	}
	total := float64(len(sample))

	order := make([]int, len(sample))
	for _, col := range cols {
		copy(order, sample)
		sortByFeature(order, rows, col)

		var leftSum float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			leftSum += residual[i]

			nLeft := float64(pos + 1)
			nRight := total - nLeft
			if int(nLeft) < m.cfg.MinLeaf || int(nRight) < m.cfg.MinLeaf {
				continue
			}
			// Equal adjacent values cannot be separated.
			if rows[i][col] == rows[order[pos+1]][col] {
				continue
			}

			rightSum := totalSum - leftSum
			gain := leftSum*leftSum/nLeft + rightSum*rightSum/nRight - totalSum*totalSum/total
			if gain > bestGain+1e-12 {
				bestGain = gain
				feature = col
				threshold = (rows[i][col] + rows[order[pos+1]][col]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func sortByFeature(order []int, rows [][]float64, col int) {
	sort.Slice(order, func(i, j int) bool {
		return rows[order[i]][col] < rows[order[j]][col]
	})
}

func meanAt(residual []float64, sample []int) float64 {
	var sum float64
	for _, i := range sample {
		sum += residual[i]
	}
	return sum / float64(len(sample))
}

func sampleIndices(n int, frac float64, rng *rand.Rand) []int {
	k := int(frac * float64(n))
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)[:k]
	return perm
}

func sampleColumns(p int, frac float64, rng *rand.Rand) []int {
	k := int(frac * float64(p))
	if k < 1 {
		k = 1
	}
	return rng.Perm(p)[:k]
}
