package grid

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// AttrSummary holds descriptive statistics of one layer attribute
// across all cells, for monitoring and model calibration output.
type AttrSummary struct {
	Name   string
	Cells  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
	P95    float64
}

// Summary computes descriptive statistics for the named attribute over
// the whole layer raster.
func (l *Layer) Summary(name string) (AttrSummary, error) {
	vals, err := l.Raster(name)
	if err != nil {
		return AttrSummary{}, fmt.Errorf("summary: %w", err)
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(vals, nil)
	s := AttrSummary{
		Name:   name,
		Cells:  len(vals),
		Mean:   mean,
		StdDev: std,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	return s, nil
}
