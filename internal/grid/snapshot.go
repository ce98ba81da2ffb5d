package grid

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// LayerSnapshot is a point-in-time capture of a layer's raster fields,
// matching the layer_snapshots table structure.
type LayerSnapshot struct {
	SnapshotID     *int64 // set by the database after insert
	LayerID        string
	Kind           string
	Rows           int
	Cols           int
	ParamsJSON     string // layer geometry parameters
	RasterBlob     []byte // gzip-compressed gob of map[attr][]float64
	TakenUnixNanos int64
	Reason         string // "periodic_flush", "final_flush", "manual"
}

// SnapStore persists LayerSnapshot records. Implemented by the sqlite
// snapshot store.
type SnapStore interface {
	InsertSnapshot(s *LayerSnapshot) (int64, error)
}

// snapshotParams is the JSON shape of ParamsJSON.
type snapshotParams struct {
	OriginX    float64 `json:"origin_x"`
	OriginY    float64 `json:"origin_y"`
	CellWidth  float64 `json:"cell_width"`
	CellHeight float64 `json:"cell_height"`
	MaxAgents  int     `json:"max_agents_per_cell"`
}

// serializeRasters compresses the attribute rasters with gob + gzip.
func serializeRasters(rasters map[string][]float64) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(rasters); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeRasters reverses serializeRasters.
func deserializeRasters(blob []byte) (map[string][]float64, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	var rasters map[string][]float64
	if err := gob.NewDecoder(gz).Decode(&rasters); err != nil && err != io.EOF {
		return nil, err
	}
	return rasters, nil
}

// Snapshot captures the layer's exposed attributes plus any extra
// attribute names into a LayerSnapshot ready for persistence. Dynamic
// variables named in extra are refreshed on read like any other access.
func (l *Layer) Snapshot(extra []string, reason string) (*LayerSnapshot, error) {
	names := ExposedAttributeNames(l.Kind)
	names = append(names, extra...)
	if len(names) == 0 {
		return nil, fmt.Errorf("snapshot layer %s: no attributes to capture", l.LayerID)
	}

	rasters := make(map[string][]float64, len(names))
	for _, name := range names {
		if _, dup := rasters[name]; dup {
			continue
		}
		vals, err := l.Raster(name)
		if err != nil {
			return nil, fmt.Errorf("snapshot layer %s: %w", l.LayerID, err)
		}
		rasters[name] = vals
	}

	blob, err := serializeRasters(rasters)
	if err != nil {
		return nil, fmt.Errorf("snapshot layer %s: serialize: %w", l.LayerID, err)
	}

	params, err := json.Marshal(snapshotParams{
		OriginX:    l.originX,
		OriginY:    l.originY,
		CellWidth:  l.cellW,
		CellHeight: l.cellH,
		MaxAgents:  l.maxAgents,
	})
	if err != nil {
		return nil, err
	}

	return &LayerSnapshot{
		LayerID:        l.LayerID,
		Kind:           l.Kind,
		Rows:           l.rows,
		Cols:           l.cols,
		ParamsJSON:     string(params),
		RasterBlob:     blob,
		TakenUnixNanos: time.Now().UnixNano(),
		Reason:         reason,
	}, nil
}

// Persist captures and writes a snapshot via the provided store,
// recording the assigned snapshot ID back on the returned value.
func (l *Layer) Persist(store SnapStore, extra []string, reason string) (*LayerSnapshot, error) {
	if store == nil {
		return nil, fmt.Errorf("persist layer %s: nil store", l.LayerID)
	}
	snap, err := l.Snapshot(extra, reason)
	if err != nil {
		return nil, err
	}
	id, err := store.InsertSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("persist layer %s: %w", l.LayerID, err)
	}
	snap.SnapshotID = &id
	return snap, nil
}

// RestoreSnapshot loads a snapshot's rasters back onto this layer's
// cells. The snapshot must match the layer's dimensions. Exposed
// (computed) attributes are skipped on restore since their getters,
// not stored values, define them.
func (l *Layer) RestoreSnapshot(snap *LayerSnapshot) error {
	if snap.Rows != l.rows || snap.Cols != l.cols {
		return fmt.Errorf("restore snapshot: dims %dx%d do not match layer %dx%d",
			snap.Rows, snap.Cols, l.rows, l.cols)
	}
	rasters, err := deserializeRasters(snap.RasterBlob)
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	for name, vals := range rasters {
		if _, computed := exposedGetter(l.Kind, name); computed {
			continue
		}
		if err := l.ApplyRaster(name, vals); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
	}
	logf("restored snapshot onto layer %s (%d rasters)", l.LayerID, len(rasters))
	return nil
}
