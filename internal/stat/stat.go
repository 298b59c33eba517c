// Package stat holds the small numeric kernels the analysis and forecasting
// packages share: moments, correlation, regression scores, and a dense
// linear solver.
package stat

import "math"

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// PopStd is the population standard deviation (divisor n).
func PopStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// SampleStd is the sample standard deviation (divisor n-1). Zero for fewer
// than two values.
func SampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Pearson returns the correlation coefficient of two equal-length vectors,
// or 0 when either side has no spread.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

func MAE(pred, actual []float64) float64 {
	if len(pred) == 0 || len(pred) != len(actual) {
		return 0
	}
	var sum float64
	for i := range pred {
		sum += math.Abs(pred[i] - actual[i])
	}
	return sum / float64(len(pred))
}

func MSE(pred, actual []float64) float64 {
	if len(pred) == 0 || len(pred) != len(actual) {
		return 0
	}
	var sum float64
	for i := range pred {
		d := pred[i] - actual[i]
		sum += d * d
	}
	return sum / float64(len(pred))
}

// R2 is the coefficient of determination. A constant actual vector scores 0
// regardless of predictions.
func R2(pred, actual []float64) float64 {
	if len(pred) == 0 || len(pred) != len(actual) {
		return 0
	}
	m := Mean(actual)
	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - pred[i]
		ssRes += r * r
		d := actual[i] - m
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// LinearFit returns the degree-1 least-squares fit y = slope*x + intercept.
// ok is false when x has no spread.
func LinearFit(xs, ys []float64) (slope, intercept float64, ok bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, 0, false
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		sxy += dx * (ys[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, 0, false
	}
	slope = sxy / sxx
	return slope, my - slope*mx, true
}

// OLS fits target = w0 + w1*f1 + ... by normal equations. rows holds one
// feature vector per observation. ok is false when the normal matrix is
// singular.
func OLS(rows [][]float64, target []float64) (weights []float64, ok bool) {
	return RidgeOLS(rows, target, 0)
}

// RidgeOLS is OLS with an L2 penalty of lambda on every non-intercept
// weight. A small lambda keeps the normal equations solvable when feature
// columns are constant or collinear.
func RidgeOLS(rows [][]float64, target []float64, lambda float64) (weights []float64, ok bool) {
	n := len(rows)
	if n == 0 || n != len(target) {
		return nil, false
	}
	p := len(rows[0]) + 1

	a := make([][]float64, p)
	for i := range a {
		a[i] = make([]float64, p)
	}
	b := make([]float64, p)

	for r := 0; r < n; r++ {
		x := make([]float64, p)
		x[0] = 1
		copy(x[1:], rows[r])
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				a[i][j] += x[i] * x[j]
			}
			b[i] += x[i] * target[r]
		}
	}
	for i := 1; i < p; i++ {
		a[i][i] += lambda
	}

	return SolveLinearSystem(a, b)
}

// SolveLinearSystem solves a*x = b in place with partial pivoting.
func SolveLinearSystem(a [][]float64, b []float64) ([]float64, bool) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, true
}
