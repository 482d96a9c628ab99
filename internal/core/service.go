package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"
)

// ReloadTimeout bounds a reload requested through the service.
var ReloadTimeout = 2 * time.Minute

// Service is the query facade over the dataset cache. It is what the web
// layer and the CLI talk to.
type Service struct {
	cache *Cache
}

// NewService creates a Service over cache.
func NewService(cache *Cache) *Service {
	return &Service{cache: cache}
}

// Cache returns the underlying cache.
func (s *Service) Cache() *Cache { return s.cache }

// RecordList is the result of a records query.
type RecordList struct {
	Records   []Record  `json:"records"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// ReloadResult summarizes a forced reload.
type ReloadResult struct {
	Count      int       `json:"count"`
	Rejected   int       `json:"rejected"`
	Skipped    int       `json:"skipped"`
	SnapshotID string    `json:"snapshot_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Health reports cache freshness and dataset availability.
type Health struct {
	Valid            bool       `json:"valid"`
	LastCaptureTime  *time.Time `json:"last_capture_time"`
	SecondsRemaining float64    `json:"seconds_remaining"`
	WindowSeconds    float64    `json:"window_seconds"`
	DatasetPath      string     `json:"dataset_path"`
	DatasetExists    bool       `json:"dataset_exists"`
	Records          int        `json:"records"`
	Rejected         int        `json:"rejected"`
	SnapshotID       string     `json:"snapshot_id,omitempty"`
	Fingerprint      string     `json:"fingerprint,omitempty"`
	Reloads          uint64     `json:"reloads"`
	Failures         uint64     `json:"failures"`
	LastError        string     `json:"last_error,omitempty"`
	LastErrorAt      *time.Time `json:"last_error_at,omitempty"`
}

// Diagnostics lists the rows excluded from the current snapshot.
type Diagnostics struct {
	SnapshotID string         `json:"snapshot_id"`
	CapturedAt time.Time      `json:"captured_at"`
	TotalRows  int            `json:"total_rows"`
	Accepted   int            `json:"accepted"`
	Skipped    int            `json:"skipped"`
	Rejections []RowRejection `json:"rejections"`
}

// Records returns the records whose status matches status, in dataset
// order. The filter is case and accent insensitive and accepts the status
// aliases; an empty filter returns every record.
func (s *Service) Records(ctx context.Context, status string) (RecordList, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return RecordList{}, err
	}
	records := snap.Filter(NormalizeStatusFilter(status))
	return RecordList{
		Records:   records,
		Count:     len(records),
		Timestamp: time.Now(),
	}, nil
}

// Record returns the record with the given identifier.
func (s *Service) Record(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, fmt.Errorf("%w: empty identifier", ErrRecordNotFound)
	}
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return Record{}, err
	}
	rec, ok := snap.Lookup(id)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return rec, nil
}

// Reload forces a reload of the dataset. On failure the previous snapshot
// stays in place and the error is returned.
func (s *Service) Reload(ctx context.Context) (ReloadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ReloadTimeout)
	defer cancel()

	snap, err := s.cache.Refresh(ctx)
	if err != nil {
		return ReloadResult{}, err
	}
	return ReloadResult{
		Count:      len(snap.Records),
		Rejected:   len(snap.Rejections),
		Skipped:    snap.Skipped,
		SnapshotID: snap.ID.String(),
		Timestamp:  snap.CapturedAt,
	}, nil
}

// Diagnostics returns the row rejections of the current snapshot, loading
// it first if needed.
func (s *Service) Diagnostics(ctx context.Context) (Diagnostics, error) {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		return Diagnostics{}, err
	}
	rejections := snap.Rejections
	if rejections == nil {
		rejections = []RowRejection{}
	}
	return Diagnostics{
		SnapshotID: snap.ID.String(),
		CapturedAt: snap.CapturedAt,
		TotalRows:  snap.TotalRows,
		Accepted:   len(snap.Records),
		Skipped:    snap.Skipped,
		Rejections: rejections,
	}, nil
}

// Health reports cache state without triggering a load.
func (s *Service) Health() Health {
	st := s.cache.Status()
	h := Health{
		Valid:         st.Valid,
		WindowSeconds: st.Window.Seconds(),
		DatasetPath:   s.cache.Source().Path(),
		Records:       st.Records,
		Rejected:      st.Rejections,
		SnapshotID:    st.SnapshotID,
		Fingerprint:   st.Fingerprint,
		Reloads:       st.Reloads,
		Failures:      st.Failures,
		LastError:     st.LastError,
	}
	if !st.CapturedAt.IsZero() {
		captured := st.CapturedAt
		h.LastCaptureTime = &captured
	}
	if st.Remaining > 0 {
		h.SecondsRemaining = st.Remaining.Seconds()
	}
	if !st.LastErrorAt.IsZero() {
		at := st.LastErrorAt
		h.LastErrorAt = &at
	}

	_, err := s.cache.Source().ModTime()
	h.DatasetExists = err == nil
	return h
}

// Warm loads the dataset once so the first request does not pay for it.
// The error is returned for the caller to log; the service keeps working
// and retries the load on the next request.
func (s *Service) Warm(ctx context.Context) error {
	snap, err := s.cache.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			slog.Warn("dataset not present at startup", "path", s.cache.Source().Path())
		}
		return err
	}
	slog.Info("dataset warmed",
		"records", len(snap.Records),
		"rejected", len(snap.Rejections),
		"snapshot_id", snap.ID.String(),
	)
	return nil
}
