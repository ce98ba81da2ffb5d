package grid

import (
	"context"
	"log"
	"sync"
	"time"
)

// Flusher periodically persists a layer's rasters to a snapshot store.
// It owns no simulation logic; the model decides which attributes to
// capture and how often.
type Flusher struct {
	layer    *Layer
	store    SnapStore
	attrs    []string
	interval time.Duration
	reason   string
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// FlusherConfig configures a Flusher.
type FlusherConfig struct {
	// Layer is the layer to snapshot.
	Layer *Layer
	// Store receives the snapshots.
	Store SnapStore
	// Attrs are extra attribute names to capture beyond the layer's
	// exposed attributes.
	Attrs []string
	// Interval between snapshots, e.g. 60*time.Second.
	Interval time.Duration
	// Reason recorded on periodic snapshots; defaults to
	// "periodic_flush".
	Reason string
	// Logger is optional; nil uses log.Default().
	Logger *log.Logger
}

// NewFlusher creates a Flusher from the config.
func NewFlusher(cfg FlusherConfig) *Flusher {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	reason := cfg.Reason
	if reason == "" {
		reason = "periodic_flush"
	}
	return &Flusher{
		layer:    cfg.Layer,
		store:    cfg.Store,
		attrs:    cfg.Attrs,
		interval: cfg.Interval,
		reason:   reason,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Run blocks, snapshotting on every interval tick, until the context
// is cancelled or Stop is called. A final snapshot is taken on the way
// out. Returns nil on clean shutdown. Stop only affects a loop that
// has already started: calling it before Run is a no-op, and the
// later Run proceeds normally.
func (f *Flusher) Run(ctx context.Context) error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = true
	f.stopCh = make(chan struct{})
	f.doneCh = make(chan struct{})
	f.mu.Unlock()

	defer func() {
		close(f.doneCh)
		f.mu.Lock()
		f.running = false
		f.mu.Unlock()
	}()

	if f.interval <= 0 {
		f.logger.Printf("Flusher: interval is zero or negative, not starting")
		return nil
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Printf("Flusher started: layer=%s interval=%v", f.layer.LayerID, f.interval)

	for {
		select {
		case <-ctx.Done():
			f.flush("final_flush")
			return nil
		case <-f.stopCh:
			f.flush("final_flush")
			return nil
		case <-ticker.C:
			f.flush(f.reason)
		}
	}
}

// Stop requests shutdown and waits for the final snapshot to finish.
// Safe to call multiple times. Returns immediately when the loop is
// not running, so Stop must be ordered after Run to take effect.
func (f *Flusher) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	f.mu.Unlock()

	<-f.doneCh
}

// IsRunning reports whether the flusher loop is active.
func (f *Flusher) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// FlushNow takes an immediate snapshot outside the regular cadence.
func (f *Flusher) FlushNow() {
	f.flush("manual")
}

func (f *Flusher) flush(reason string) {
	if f.layer == nil || f.store == nil {
		return
	}
	if _, err := f.layer.Persist(f.store, f.attrs, reason); err != nil {
		f.logger.Printf("Flusher: error persisting layer %s: %v", f.layer.LayerID, err)
		return
	}
	f.logger.Printf("Flusher: layer %s persisted (%s)", f.layer.LayerID, reason)
}
