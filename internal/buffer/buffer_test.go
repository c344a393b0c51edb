package buffer

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/agntcy/docs-visits/internal/config"
	"github.com/agntcy/docs-visits/internal/storage"
	"github.com/agntcy/docs-visits/internal/visit"
)

func record(i int) visit.Record {
	return visit.Record{
		Path:   fmt.Sprintf("/page-%d/", i),
		Ref:    "direct",
		Device: visit.Desktop,
		TS:     "2025-10-16T08:00:00.000Z",
		Date:   "2025-10-16",
	}
}

func TestLoadEmpty(t *testing.T) {
	b := New(storage.NewMemoryStore())

	records, err := b.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("Load() = %v, want empty non-nil slice", records)
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	tests := []struct {
		appends int
		want    int
	}{
		{1, 1},
		{50, 50},
		{200, 200},
		{201, 200},
		{250, 200},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d appends", tt.appends), func(t *testing.T) {
			b := New(storage.NewMemoryStore())

			var records []visit.Record
			var err error
			for i := 0; i < tt.appends; i++ {
				records, err = b.Append(record(i))
				if err != nil {
					t.Fatalf("Append(%d) error = %v", i, err)
				}
			}

			if len(records) != tt.want {
				t.Fatalf("len = %d, want %d", len(records), tt.want)
			}
			// The newest record is always last, the oldest kept is appends-want.
			if records[len(records)-1] != record(tt.appends-1) {
				t.Errorf("last = %+v, want record %d", records[len(records)-1], tt.appends-1)
			}
			if records[0] != record(tt.appends-tt.want) {
				t.Errorf("first = %+v, want record %d", records[0], tt.appends-tt.want)
			}

			loaded, err := b.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(loaded) != len(records) {
				t.Errorf("Load() len = %d, want %d", len(loaded), len(records))
			}
		})
	}
}

func TestRoundTripIsLossless(t *testing.T) {
	store := storage.NewMemoryStore()
	b := New(store)

	r := visit.Record{
		Path:   "/a&b/<x>/",
		Ref:    "www.example.com",
		Device: visit.Mobile,
		TS:     "2025-12-31T23:59:59.999Z",
		Date:   "2025-12-31",
	}
	if _, err := b.Append(r); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// A second Buffer over the same store sees the same data.
	got, err := New(store).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0] != r {
		t.Errorf("Load() = %+v, want [%+v]", got, r)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	b := New(storage.NewMemoryStore())
	b.Append(record(1))

	for i := 0; i < 2; i++ {
		if err := b.Clear(); err != nil {
			t.Fatalf("Clear() #%d error = %v", i, err)
		}
		records, _ := b.Load()
		if len(records) != 0 {
			t.Errorf("Load() after Clear() = %d records", len(records))
		}
	}
}

func TestReplaceTruncates(t *testing.T) {
	b := NewWithCapacity(storage.NewMemoryStore(), 3)

	if err := b.Replace([]visit.Record{record(0), record(1), record(2), record(3)}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	records, _ := b.Load()
	if len(records) != 3 || records[0] != record(1) {
		t.Errorf("Load() = %+v", records)
	}
}

func TestStorageFailures(t *testing.T) {
	store := storage.NewMemoryStore()
	b := New(store)
	b.Append(record(1))

	store.FailReads(true)
	if _, err := b.Load(); !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("Load() error = %v, want ErrUnavailable", err)
	}
	if _, err := b.Append(record(2)); !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("Append() error = %v, want ErrUnavailable", err)
	}
	store.FailReads(false)

	store.FailWrites(true)
	if _, err := b.Append(record(2)); !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("Append() error = %v, want ErrUnavailable", err)
	}
	if err := b.Clear(); !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("Clear() error = %v, want ErrUnavailable", err)
	}
	store.FailWrites(false)

	records, _ := b.Load()
	if len(records) != 1 {
		t.Errorf("buffer changed under failing writes: %d records", len(records))
	}
}

func TestCorruptBuffer(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(config.VisitsKey, []byte("{not json"))

	if _, err := New(store).Load(); err == nil {
		t.Error("Load() of corrupt data error = nil, want error")
	}
}

func TestLastSubmit(t *testing.T) {
	store := storage.NewMemoryStore()
	b := New(store)

	last, err := b.LastSubmit()
	if err != nil {
		t.Fatalf("LastSubmit() error = %v", err)
	}
	if last.UnixMilli() != 0 {
		t.Errorf("LastSubmit() on empty store = %v, want epoch", last)
	}

	now := time.UnixMilli(1760600000123)
	if err := b.MarkSubmitted(now); err != nil {
		t.Fatalf("MarkSubmitted() error = %v", err)
	}
	raw, _ := store.Get(config.LastSubmitKey)
	if string(raw) != "1760600000123" {
		t.Errorf("stored last submit = %q", raw)
	}
	last, _ = b.LastSubmit()
	if !last.Equal(now) {
		t.Errorf("LastSubmit() = %v, want %v", last, now)
	}

	store.Set(config.LastSubmitKey, []byte("garbage"))
	last, err = b.LastSubmit()
	if err != nil || last.UnixMilli() != 0 {
		t.Errorf("LastSubmit() with garbage = %v, %v; want epoch, nil", last, err)
	}
}
