// Package grid implements the raster layer and cell model used by
// agent-based simulations: a Layer owns a row-major arena of Cells,
// each Cell tracks the agents located on it, exposes computed
// attributes as layer-level rasters, and resolves Moore / von Neumann
// neighborhoods over the layer's index space.
package grid
