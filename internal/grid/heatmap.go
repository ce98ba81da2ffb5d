package grid

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// rasterXYZ adapts a row-major raster to plotter.GridXYZ. Row 0 is
// drawn at the top to match the raster orientation.
type rasterXYZ struct {
	rows, cols int
	vals       []float64
}

func (r rasterXYZ) Dims() (c, rr int)   { return r.cols, r.rows }
func (r rasterXYZ) X(c int) float64     { return float64(c) }
func (r rasterXYZ) Y(rr int) float64    { return float64(rr) }
func (r rasterXYZ) Z(c, rr int) float64 { return r.vals[(r.rows-1-rr)*r.cols+c] }

// SaveHeatmap renders the named attribute raster as a PNG heatmap in
// outputDir and returns the written path. Useful for eyeballing layer
// state between simulation runs.
func (l *Layer) SaveHeatmap(name, outputDir string) (string, error) {
	vals, err := l.Raster(name)
	if err != nil {
		return "", fmt.Errorf("heatmap: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("heatmap: %w", err)
	}

	hm := plotter.NewHeatMap(rasterXYZ{rows: l.rows, cols: l.cols, vals: vals}, palette.Heat(32, 1))

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s", l.LayerID, name)
	p.X.Label.Text = "col"
	p.Y.Label.Text = "row"
	p.Add(hm)

	path := filepath.Join(outputDir, fmt.Sprintf("layer_%s_%s.png", l.LayerID, name))
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("heatmap: save %s: %w", path, err)
	}
	return path, nil
}
