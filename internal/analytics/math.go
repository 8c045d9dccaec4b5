package analytics

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or NaN for an empty series
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Growth returns the percentage change from the first to the last value.
// Fewer than two values, or a zero starting value, yields 0.
func Growth(values []float64) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	return (values[len(values)-1] - values[0]) / values[0] * 100
}

// Pearson computes the correlation coefficient between two co-indexed
// series. ok is false when fewer than 3 points overlap or either series
// has zero variance; the caller must report the correlation as undefined
// rather than use a meaningless value.
func Pearson(xs, ys []float64) (r float64, ok bool) {
	n := len(xs)
	if n != len(ys) || n < 3 {
		return 0, false
	}

	meanX := Mean(xs)
	meanY := Mean(ys)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

// InterpolateGaps fills interior gaps of up to maxGap consecutive years
// by linear interpolation between the nearest observed neighbours. The
// input map is not modified; leading and trailing gaps stay unfilled.
func InterpolateGaps(series map[int]float64, maxGap int) map[int]float64 {
	filled := make(map[int]float64, len(series))
	years := make([]int, 0, len(series))
	for y, v := range series {
		filled[y] = v
		years = append(years, y)
	}
	if len(years) < 2 {
		return filled
	}
	sort.Ints(years)

	for i := 0; i < len(years)-1; i++ {
		lo, hi := years[i], years[i+1]
		gap := hi - lo - 1
		if gap == 0 || gap > maxGap {
			continue
		}
		step := (series[hi] - series[lo]) / float64(hi-lo)
		for y := lo + 1; y < hi; y++ {
			filled[y] = series[lo] + step*float64(y-lo)
		}
	}
	return filled
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// interpretCorrelation phrases a coefficient for the answer text
func interpretCorrelation(r float64) string {
	level := "weak"
	switch {
	case math.Abs(r) >= 0.7:
		level = "strong"
	case math.Abs(r) >= 0.4:
		level = "moderate"
	}
	direction := "negative"
	if r > 0 {
		direction = "positive"
	}
	return level + " " + direction + " association"
}

// yearsWindow picks the most recent n years out of a descending list and
// returns them ascending
func yearsWindow(desc []int, n int) []int {
	if n <= 0 || n > len(desc) {
		n = len(desc)
	}
	window := make([]int, n)
	copy(window, desc[:n])
	sort.Ints(window)
	return window
}

func containsYear(years []int, y int) bool {
	for _, yr := range years {
		if yr == y {
			return true
		}
	}
	return false
}
