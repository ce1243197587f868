package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"superstore-dashboard/internal/dataset"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/pipeline"
)

// Dashboard owns the loaded dataset for the life of the process and runs the
// filter/aggregate pipeline once per request. The dataset is replaced
// wholesale, never modified.
type Dashboard struct {
	mu       sync.RWMutex
	data     *dataset.Dataset
	heatmap  models.ProfitHeatmap
	loadedAt time.Time
	csvPath  string

	snapshots *dataset.SnapshotStore
	logger    *slog.Logger

	runs            atomic.Int64
	emptySelections atomic.Int64
}

// ErrNotLoaded is returned by Run before any order has been loaded.
var ErrNotLoaded = errors.New("dataset not loaded")

type Option func(*Dashboard)

// WithSnapshots enables the on-disk snapshot cache.
func WithSnapshots(store *dataset.SnapshotStore) Option {
	return func(d *Dashboard) {
		d.snapshots = store
	}
}

func NewDashboard(logger *slog.Logger, opts ...Option) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dashboard{
		data:   dataset.New(nil),
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetData installs records as the current dataset.
func (d *Dashboard) SetData(records []models.OrderRecord) {
	ds := dataset.New(records)
	dom := ds.Domain()
	hm := pipeline.ProfitHeatmap(ds.Records(), dom.Regions, dom.ShipModes, pipeline.HeatmapSalesBins)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = ds
	d.heatmap = hm
	d.loadedAt = time.Now()
}

// LoadFromCSV loads the order file, using a fresh snapshot when one exists.
func (d *Dashboard) LoadFromCSV(ctx context.Context, filename string) error {
	d.mu.Lock()
	d.csvPath = filename
	d.mu.Unlock()

	if d.snapshots != nil {
		records, err := d.snapshots.Load(filename)
		if err == nil {
			d.SetData(records)
			d.logger.Info("loaded from snapshot", "records", len(records))
			return nil
		}
		d.logger.Debug("snapshot unavailable", "error", err)
	}

	start := time.Now()
	d.logger.Info("processing CSV file", "filename", filename)

	records, err := dataset.NewLoader(d.logger).Load(ctx, filename)
	if err != nil {
		return fmt.Errorf("load %s: %w", filename, err)
	}
	d.SetData(records)

	if d.snapshots != nil {
		if err := d.snapshots.Save(filename, records); err != nil {
			d.logger.Warn("failed to save snapshot", "error", err)
		}
	}

	duration := time.Since(start)
	d.logger.Info("csv processing complete",
		"records", len(records),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(records))/duration.Seconds()))

	return nil
}

func (d *Dashboard) current() *dataset.Dataset {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data
}

func (d *Dashboard) Records() []models.OrderRecord {
	return d.current().Records()
}

func (d *Dashboard) Domain() models.Domain {
	return d.current().Domain()
}

func (d *Dashboard) DefaultSelection() models.Selection {
	return pipeline.DefaultSelection(d.Domain())
}

// Heatmap returns the profitability heat-map of the full dataset. It does not
// follow the filter selection.
func (d *Dashboard) Heatmap() models.ProfitHeatmap {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.heatmap
}

// Run executes one pipeline run. It returns ErrNotLoaded while the dataset is
// empty and pipeline.ErrEmptySelection when the selection matches no order.
func (d *Dashboard) Run(ctx context.Context, sel models.Selection) (*pipeline.Result, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.run")
	defer span.End(ctx, d.logger)

	records := d.Records()
	if len(records) == 0 {
		span.SetError(ErrNotLoaded)
		return nil, ErrNotLoaded
	}

	d.runs.Add(1)
	span.SetTag("records", strconv.Itoa(len(records)))

	res, err := pipeline.Run(records, sel)
	if errors.Is(err, pipeline.ErrEmptySelection) {
		d.emptySelections.Add(1)
		span.SetTag("filtered", "0")
		return nil, err
	}
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	span.SetTag("filtered", strconv.Itoa(len(res.Filtered)))
	return res, nil
}

// Stats reports dataset and usage counters for monitoring.
func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	ds, loadedAt, source := d.data, d.loadedAt, d.csvPath
	d.mu.RUnlock()

	dom := ds.Domain()
	return map[string]any{
		"record_count":     ds.Len(),
		"source":           source,
		"loaded_at":        loadedAt,
		"min_order_date":   dom.MinDate.Format(time.DateOnly),
		"max_order_date":   dom.MaxDate.Format(time.DateOnly),
		"categories":       len(dom.Categories),
		"segments":         len(dom.Segments),
		"regions":          len(dom.Regions),
		"ship_modes":       len(dom.ShipModes),
		"runs":             d.runs.Load(),
		"empty_selections": d.emptySelections.Load(),
	}
}
