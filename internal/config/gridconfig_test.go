package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/terralab/patchgrid/internal/grid"
)

func TestGridConfigDefaults(t *testing.T) {
	cfg := &GridConfig{}

	if cfg.GetCellWidth() != 1.0 {
		t.Errorf("GetCellWidth() = %f, want 1.0", cfg.GetCellWidth())
	}
	if cfg.GetCellHeight() != 1.0 {
		t.Errorf("GetCellHeight() = %f, want 1.0", cfg.GetCellHeight())
	}
	if cfg.GetMaxAgentsPerCell() != 0 {
		t.Errorf("GetMaxAgentsPerCell() = %d, want 0", cfg.GetMaxAgentsPerCell())
	}
	if cfg.GetSnapshotInterval() != 60*time.Second {
		t.Errorf("GetSnapshotInterval() = %v, want 60s", cfg.GetSnapshotInterval())
	}
	if cfg.GetSnapshotReason() != "periodic_flush" {
		t.Errorf("GetSnapshotReason() = %q, want periodic_flush", cfg.GetSnapshotReason())
	}
	if cfg.GetSnapshotDBPath() != "patchgrid.db" {
		t.Errorf("GetSnapshotDBPath() = %q, want patchgrid.db", cfg.GetSnapshotDBPath())
	}
	if cfg.GetHeatmapOutputDir() != "heatmaps" {
		t.Errorf("GetHeatmapOutputDir() = %q, want heatmaps", cfg.GetHeatmapOutputDir())
	}
}

func TestLoadGridConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "grid.json")

	testJSON := `{
  "cell_width": 30.0,
  "cell_height": 30.0,
  "max_agents_per_cell": 5,
  "snapshot_interval": "120s",
  "snapshot_db_path": "/var/lib/patchgrid/snapshots.db"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadGridConfig(configPath)
	if err != nil {
		t.Fatalf("LoadGridConfig: %v", err)
	}
	if cfg.GetCellWidth() != 30.0 {
		t.Errorf("GetCellWidth() = %f, want 30.0", cfg.GetCellWidth())
	}
	if cfg.GetMaxAgentsPerCell() != 5 {
		t.Errorf("GetMaxAgentsPerCell() = %d, want 5", cfg.GetMaxAgentsPerCell())
	}
	if cfg.GetSnapshotInterval() != 120*time.Second {
		t.Errorf("GetSnapshotInterval() = %v, want 120s", cfg.GetSnapshotInterval())
	}
	if cfg.GetSnapshotDBPath() != "/var/lib/patchgrid/snapshots.db" {
		t.Errorf("GetSnapshotDBPath() = %q", cfg.GetSnapshotDBPath())
	}
	// Omitted fields keep defaults.
	if cfg.GetSnapshotReason() != "periodic_flush" {
		t.Errorf("GetSnapshotReason() = %q, want default", cfg.GetSnapshotReason())
	}
}

func TestLoadGridConfig_PartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	if err := os.WriteFile(configPath, []byte(`{"max_agents_per_cell": 2}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadGridConfig(configPath)
	if err != nil {
		t.Fatalf("LoadGridConfig: %v", err)
	}
	if cfg.GetMaxAgentsPerCell() != 2 {
		t.Errorf("GetMaxAgentsPerCell() = %d, want 2", cfg.GetMaxAgentsPerCell())
	}
	if cfg.GetCellWidth() != 1.0 {
		t.Errorf("partial config must keep cell_width default")
	}
}

func TestLoadGridConfig_BadExtension(t *testing.T) {
	if _, err := LoadGridConfig("grid.yaml"); err == nil {
		t.Fatalf("expected error for non-json extension")
	}
}

func TestLoadGridConfig_MissingFile(t *testing.T) {
	if _, err := LoadGridConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadGridConfig_InvalidValues(t *testing.T) {
	tmpDir := t.TempDir()

	cases := map[string]string{
		"negative_width.json":  `{"cell_width": -1.0}`,
		"negative_agents.json": `{"max_agents_per_cell": -3}`,
		"bad_interval.json":    `{"snapshot_interval": "soon"}`,
		"bad_json.json":        `{`,
	}
	for name, body := range cases {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := LoadGridConfig(path); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestGridConfig_ValidateZeroValue(t *testing.T) {
	cfg := &GridConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty config must validate: %v", err)
	}
}

func TestGridConfig_ApplyLayerDefaults(t *testing.T) {
	w := 30.0
	n := 5
	cfg := &GridConfig{CellWidth: &w, MaxAgentsPerCell: &n}

	params := grid.LayerParams{Rows: 4, Cols: 4, CellHeight: 2.5}
	cfg.ApplyLayerDefaults(&params)

	if params.CellWidth != 30.0 {
		t.Errorf("CellWidth = %f, want 30.0", params.CellWidth)
	}
	if params.CellHeight != 2.5 {
		t.Errorf("CellHeight = %f, want 2.5 (caller value kept)", params.CellHeight)
	}
	if params.MaxAgentsPerCell != 5 {
		t.Errorf("MaxAgentsPerCell = %d, want 5", params.MaxAgentsPerCell)
	}
}

func TestGridConfig_FlusherConfig(t *testing.T) {
	interval := "5s"
	reason := "model_step"
	cfg := &GridConfig{SnapshotInterval: &interval, SnapshotReason: &reason}

	fc := cfg.FlusherConfig(nil, nil)
	if fc.Interval != 5*time.Second {
		t.Errorf("Interval = %v, want 5s", fc.Interval)
	}
	if fc.Reason != "model_step" {
		t.Errorf("Reason = %q, want model_step", fc.Reason)
	}
}
