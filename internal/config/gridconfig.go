// Package config loads grid tuning parameters from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/terralab/patchgrid/internal/grid"
)

// GridConfig represents tunable defaults for layer construction and
// snapshot persistence. Fields are pointers so a partial JSON file
// only overrides what it names; Get* methods supply the defaults.
type GridConfig struct {
	// Layer geometry
	CellWidth  *float64 `json:"cell_width,omitempty"`
	CellHeight *float64 `json:"cell_height,omitempty"`

	// Cell behavior
	MaxAgentsPerCell *int `json:"max_agents_per_cell,omitempty"`

	// Snapshot persistence
	SnapshotInterval *string `json:"snapshot_interval,omitempty"` // duration string like "60s"
	SnapshotReason   *string `json:"snapshot_reason,omitempty"`
	SnapshotDBPath   *string `json:"snapshot_db_path,omitempty"`

	// Heatmap export
	HeatmapOutputDir *string `json:"heatmap_output_dir,omitempty"`
}

// LoadGridConfig loads a GridConfig from a JSON file. The path must
// have a .json extension and stay under the max file size. Omitted
// fields keep their defaults, so partial configs are safe.
func LoadGridConfig(path string) (*GridConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &GridConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *GridConfig) Validate() error {
	if c.CellWidth != nil && *c.CellWidth <= 0 {
		return fmt.Errorf("cell_width must be positive, got %f", *c.CellWidth)
	}
	if c.CellHeight != nil && *c.CellHeight <= 0 {
		return fmt.Errorf("cell_height must be positive, got %f", *c.CellHeight)
	}
	if c.MaxAgentsPerCell != nil && *c.MaxAgentsPerCell < 0 {
		return fmt.Errorf("max_agents_per_cell must be non-negative, got %d", *c.MaxAgentsPerCell)
	}
	if c.SnapshotInterval != nil && *c.SnapshotInterval != "" {
		if _, err := time.ParseDuration(*c.SnapshotInterval); err != nil {
			return fmt.Errorf("invalid snapshot_interval '%s': %w", *c.SnapshotInterval, err)
		}
	}
	return nil
}

// GetCellWidth returns the cell_width value or the default.
func (c *GridConfig) GetCellWidth() float64 {
	if c.CellWidth == nil {
		return 1.0
	}
	return *c.CellWidth
}

// GetCellHeight returns the cell_height value or the default.
func (c *GridConfig) GetCellHeight() float64 {
	if c.CellHeight == nil {
		return 1.0
	}
	return *c.CellHeight
}

// GetMaxAgentsPerCell returns the max_agents_per_cell value or the
// default (0, unbounded).
func (c *GridConfig) GetMaxAgentsPerCell() int {
	if c.MaxAgentsPerCell == nil {
		return 0
	}
	return *c.MaxAgentsPerCell
}

// GetSnapshotInterval parses and returns the snapshot interval.
func (c *GridConfig) GetSnapshotInterval() time.Duration {
	if c.SnapshotInterval == nil || *c.SnapshotInterval == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(*c.SnapshotInterval)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetSnapshotReason returns the snapshot_reason value or the default.
func (c *GridConfig) GetSnapshotReason() string {
	if c.SnapshotReason == nil || *c.SnapshotReason == "" {
		return "periodic_flush"
	}
	return *c.SnapshotReason
}

// GetSnapshotDBPath returns the snapshot_db_path value or the default.
func (c *GridConfig) GetSnapshotDBPath() string {
	if c.SnapshotDBPath == nil || *c.SnapshotDBPath == "" {
		return "patchgrid.db"
	}
	return *c.SnapshotDBPath
}

// GetHeatmapOutputDir returns the heatmap_output_dir value or the default.
func (c *GridConfig) GetHeatmapOutputDir() string {
	if c.HeatmapOutputDir == nil || *c.HeatmapOutputDir == "" {
		return "heatmaps"
	}
	return *c.HeatmapOutputDir
}

// ApplyLayerDefaults fills zero-valued geometry and capacity fields of
// params from the config. Fields the caller already set are left alone.
func (c *GridConfig) ApplyLayerDefaults(params *grid.LayerParams) {
	if params.CellWidth == 0 {
		params.CellWidth = c.GetCellWidth()
	}
	if params.CellHeight == 0 {
		params.CellHeight = c.GetCellHeight()
	}
	if params.MaxAgentsPerCell == 0 {
		params.MaxAgentsPerCell = c.GetMaxAgentsPerCell()
	}
}

// FlusherConfig builds a snapshot flusher config for the given layer
// and store using the configured interval and reason.
func (c *GridConfig) FlusherConfig(layer *grid.Layer, store grid.SnapStore) grid.FlusherConfig {
	return grid.FlusherConfig{
		Layer:    layer,
		Store:    store,
		Interval: c.GetSnapshotInterval(),
		Reason:   c.GetSnapshotReason(),
	}
}
