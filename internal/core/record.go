package core

import (
	"time"

	"github.com/google/uuid"
)

// Status is the sale state of a cota.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

// Record is one validated row of the dataset.
type Record struct {
	ID           string  `json:"id" validate:"required"`
	Category     string  `json:"category"`
	Credit       float64 `json:"credit" validate:"gte=0"`
	Installments int     `json:"installments" validate:"gte=0"`
	DownPayment  float64 `json:"down_payment" validate:"gte=0"`
	Status       Status  `json:"status" validate:"oneof=available sold"`
	Organization string  `json:"organization"`
	Group        string  `json:"group"`
}

// Snapshot is the immutable result of one successful load. It is published
// as a whole and never modified afterwards; readers share the Records slice
// and must not write to it.
type Snapshot struct {
	ID          uuid.UUID
	Records     []Record
	Rejections  []RowRejection
	CapturedAt  time.Time
	Window      time.Duration
	Fingerprint string
	TotalRows   int
	Skipped     int

	// SourceModTime is the dataset mtime recorded at capture. The zero
	// value means the mtime could not be established, which fails every
	// freshness check.
	SourceModTime time.Time

	byID map[string]int
}

func newSnapshot(result *LoadResult, fingerprint string, captured, modTime time.Time, window time.Duration) *Snapshot {
	byID := make(map[string]int, len(result.Records))
	for i, rec := range result.Records {
		byID[rec.ID] = i
	}
	return &Snapshot{
		ID:            uuid.New(),
		Records:       result.Records,
		Rejections:    result.Rejections,
		CapturedAt:    captured,
		Window:        window,
		Fingerprint:   fingerprint,
		TotalRows:     result.TotalRows,
		Skipped:       result.Skipped,
		SourceModTime: modTime,
		byID:          byID,
	}
}

// Lookup returns the record with the given identifier.
func (s *Snapshot) Lookup(id string) (Record, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return s.Records[i], true
}

// ExpiresAt is when the validity window of the snapshot ends.
func (s *Snapshot) ExpiresAt() time.Time {
	return s.CapturedAt.Add(s.Window)
}

// Filter returns a new slice with the records whose status equals status.
// An empty status returns a copy of every record.
func (s *Snapshot) Filter(status Status) []Record {
	out := make([]Record, 0, len(s.Records))
	for _, rec := range s.Records {
		if status == "" || rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}
