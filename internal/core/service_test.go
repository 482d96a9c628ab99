package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newSampleService(t *testing.T) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cotas.xlsx")
	if err := WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	cache := NewCache(NewFileLoader(path), CacheConfig{Window: time.Minute, Logger: quietLogger()})
	return NewService(cache), path
}

func TestService_Records(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx := context.Background()

	tests := []struct {
		status    string
		wantCount int
		wantFirst string
	}{
		{status: "", wantCount: 8, wantFirst: "COT001"},
		{status: "available", wantCount: 6, wantFirst: "COT001"},
		{status: " Disponível ", wantCount: 6, wantFirst: "COT001"},
		{status: "SOLD", wantCount: 2, wantFirst: "COT003"},
		{status: "vendida", wantCount: 2, wantFirst: "COT003"},
		{status: "reserved", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			list, err := svc.Records(ctx, tt.status)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if list.Count != tt.wantCount || len(list.Records) != tt.wantCount {
				t.Fatalf("count = %d (len %d), want %d", list.Count, len(list.Records), tt.wantCount)
			}
			if tt.wantCount > 0 && list.Records[0].ID != tt.wantFirst {
				t.Errorf("first = %q, want %q", list.Records[0].ID, tt.wantFirst)
			}
			if list.Records == nil {
				t.Error("Records should never be nil")
			}
		})
	}
}

func TestService_RecordsDoesNotExposeSnapshot(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx := context.Background()

	list, err := svc.Records(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list.Records[0].ID = "mutated"

	again, err := svc.Records(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Records[0].ID != "COT001" {
		t.Errorf("caller mutation leaked into the snapshot: %q", again.Records[0].ID)
	}
}

func TestService_Record(t *testing.T) {
	svc, _ := newSampleService(t)
	ctx := context.Background()

	rec, err := svc.Record(ctx, "COT007")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Category != "Veículo" || rec.Organization != "AutoFlex" || rec.Credit != 45000 {
		t.Errorf("record = %+v", rec)
	}

	for _, id := range []string{"COT999", "", "  "} {
		if _, err := svc.Record(ctx, id); !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("Record(%q): expected ErrRecordNotFound, got %v", id, err)
		}
	}
}

func TestService_MissingDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.xlsx")
	svc := NewService(NewCache(NewFileLoader(path), CacheConfig{Logger: quietLogger()}))
	ctx := context.Background()

	if _, err := svc.Records(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Warm(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Warm: expected ErrNotFound, got %v", err)
	}

	h := svc.Health()
	if h.DatasetExists || h.Valid || h.LastCaptureTime != nil {
		t.Errorf("health = %+v", h)
	}
	if h.LastError == "" {
		t.Error("health should report the last error")
	}
}

func TestService_Reload(t *testing.T) {
	svc, path := newSampleService(t)
	ctx := context.Background()

	first, err := svc.Reload(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Count != 8 || first.Rejected != 0 || first.SnapshotID == "" {
		t.Errorf("reload result = %+v", first)
	}

	second, err := svc.Reload(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.SnapshotID == first.SnapshotID {
		t.Error("forced reload should publish a new snapshot")
	}

	if err := os.WriteFile(path, []byte("not a workbook"), 0o644); err != nil {
		t.Fatal(err)
	}
	var readErr *ReadError
	if _, err := svc.Reload(ctx); !errors.As(err, &readErr) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
	if svc.Health().SnapshotID != second.SnapshotID {
		t.Error("failed reload should keep the previous snapshot")
	}
}

func TestService_HealthAndDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cotas.csv")
	if err := os.WriteFile(path, []byte(validCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := NewService(NewCache(NewFileLoader(path), CacheConfig{Logger: quietLogger()}))
	ctx := context.Background()

	if h := svc.Health(); h.Valid || !h.DatasetExists || h.DatasetPath != path {
		t.Errorf("health before load = %+v", h)
	}

	diag, err := svc.Diagnostics(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diag.TotalRows != 4 || diag.Accepted != 2 || diag.Skipped != 1 {
		t.Errorf("diagnostics = %+v", diag)
	}
	if len(diag.Rejections) != 1 || diag.Rejections[0].ID != "A2" || diag.Rejections[0].Row != 4 {
		t.Errorf("rejections = %+v", diag.Rejections)
	}

	h := svc.Health()
	if !h.Valid || h.Records != 2 || h.Rejected != 1 || h.LastCaptureTime == nil {
		t.Errorf("health after load = %+v", h)
	}
	if h.SecondsRemaining <= 0 || h.SecondsRemaining > h.WindowSeconds {
		t.Errorf("SecondsRemaining = %v, window %v", h.SecondsRemaining, h.WindowSeconds)
	}
	if h.SnapshotID != diag.SnapshotID {
		t.Errorf("SnapshotID = %q, want %q", h.SnapshotID, diag.SnapshotID)
	}
}

func TestService_RefreshSchedulerPicksUpChanges(t *testing.T) {
	svc, path := newSampleService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Warm(ctx); err != nil {
		t.Fatalf("warm: %v", err)
	}
	first := svc.Cache().Current()

	done := make(chan struct{})
	go func() {
		svc.StartRefreshScheduler(ctx, 10*time.Millisecond)
		close(done)
	}()

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for svc.Cache().Current() == first {
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not reload the changed dataset")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}

func TestService_RefreshSchedulerDisabled(t *testing.T) {
	svc, _ := newSampleService(t)
	done := make(chan struct{})
	go func() {
		svc.StartRefreshScheduler(context.Background(), 0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("zero interval should return immediately")
	}
}
