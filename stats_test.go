package emistat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "Empty slice", values: nil, want: 0},
		{name: "Single value", values: []float64{7}, want: 7},
		{name: "Multiple values", values: []float64{2, 4, 6}, want: 4},
		{name: "Negative values", values: []float64{-2, 2}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, mean(tt.values), 1e-9)
		})
	}
}

func TestStdDev(t *testing.T) {
	t.Parallel()

	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	t.Run("Population mode", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 2.0, stdDev(values, StdDevPopulation), 1e-9)
	})

	t.Run("Sample mode", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 2.138089935, stdDev(values, StdDevSample), 1e-6)
	})

	t.Run("Sample mode needs two values", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, stdDev([]float64{5}, StdDevSample))
	})

	t.Run("Population mode with one value", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, stdDev([]float64{5}, StdDevPopulation))
	})

	t.Run("Empty slice", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, stdDev(nil, StdDevSample))
		assert.Zero(t, stdDev(nil, StdDevPopulation))
	})
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "Empty slice", values: nil, p: 0.5, want: 0},
		{name: "Median of even count interpolates", values: []float64{1, 2, 3, 4}, p: 0.5, want: 2.5},
		{name: "Median of odd count", values: []float64{3, 1, 2}, p: 0.5, want: 2},
		{name: "Quarter percentile interpolates", values: []float64{1, 2, 3, 4}, p: 0.25, want: 1.75},
		{name: "Zero percentile is minimum", values: []float64{4, 1, 3}, p: 0, want: 1},
		{name: "Full percentile is maximum", values: []float64{4, 1, 3}, p: 1, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, percentile(tt.values, tt.p), 1e-9)
		})
	}

	t.Run("Input is not mutated", func(t *testing.T) {
		t.Parallel()
		values := []float64{3, 1, 2}
		percentile(values, 0.5)
		assert.Equal(t, []float64{3, 1, 2}, values)
	})
}

func TestMedian(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 100.0, median([]float64{50, 60, 100, 120, 150}), 1e-9)
	assert.InDelta(t, 62.5, median([]float64{40, 45, 80, 90}), 1e-9)
}

func TestDecadeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		year int
		want int
	}{
		{name: "Last year of a decade", year: 1949, want: 1940},
		{name: "First year of a decade", year: 1950, want: 1950},
		{name: "Turn of the millennium", year: 2000, want: 2000},
		{name: "Year 1999", year: 1999, want: 1990},
		{name: "Year zero", year: 0, want: 0},
		{name: "Negative year floors downward", year: -5, want: -10},
		{name: "Negative decade boundary", year: -10, want: -10},
		{name: "Below negative boundary", year: -11, want: -20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, decadeOf(tt.year))
		})
	}
}
