// Package buffer keeps the pending visit records and the last-submission
// time in a storage.Store.
//
// STORAGE LAYOUT:
//   - docs_visits: JSON array of visit records, oldest first
//   - docs_last_submit: epoch milliseconds of the last successful submission,
//     as a decimal string
//
// The layout is the one a page script keeps in localStorage, so a buffer
// written by one component (the docsite, the harness, the CLI) reads back
// identically in any other.
//
// EVICTION:
// The buffer holds at most its capacity (default 200). Appending to a full
// buffer drops the oldest records first; nothing is ever rejected.
package buffer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/agntcy/docs-visits/internal/config"
	"github.com/agntcy/docs-visits/internal/storage"
	"github.com/agntcy/docs-visits/internal/visit"
)

// Buffer is a bounded, oldest-evicted-first list of visit records persisted
// as one JSON array. It holds no state of its own; every call reads the
// store, so several Buffers over one store observe each other's writes.
type Buffer struct {
	store    storage.Store
	capacity int
}

// New returns a Buffer over store with the default capacity.
func New(store storage.Store) *Buffer {
	return NewWithCapacity(store, config.BufferCapacity)
}

// NewWithCapacity returns a Buffer holding at most capacity records.
func NewWithCapacity(store storage.Store, capacity int) *Buffer {
	if capacity <= 0 {
		capacity = config.BufferCapacity
	}
	return &Buffer{store: store, capacity: capacity}
}

// Capacity returns the maximum number of records kept.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Load returns the stored records in insertion order. A missing key is an
// empty buffer.
func (b *Buffer) Load() ([]visit.Record, error) {
	raw, err := b.store.Get(config.VisitsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read visit buffer: %w", err)
	}
	if len(raw) == 0 {
		return []visit.Record{}, nil
	}

	var records []visit.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode visit buffer: %w", err)
	}
	if records == nil {
		records = []visit.Record{}
	}
	return records, nil
}

// Append adds r, evicts the oldest records beyond capacity, persists and
// returns the resulting buffer.
//
// Append is a read-modify-write over the store. Callers sharing a store
// across processes accept that two concurrent appends may lose one record;
// within one tracker the tracker mutex serializes them.
func (b *Buffer) Append(r visit.Record) ([]visit.Record, error) {
	records, err := b.Load()
	if err != nil {
		return nil, err
	}

	records = append(records, r)
	if over := len(records) - b.capacity; over > 0 {
		records = records[over:]
	}

	if err := b.save(records); err != nil {
		return nil, err
	}
	return records, nil
}

// Replace persists records as the whole buffer, truncated to capacity by
// keeping the newest. Used by the harness injection endpoint and tests.
func (b *Buffer) Replace(records []visit.Record) error {
	if over := len(records) - b.capacity; over > 0 {
		records = records[over:]
	}
	return b.save(records)
}

// Clear removes all records. Clearing an empty buffer is a no-op.
func (b *Buffer) Clear() error {
	if err := b.store.Delete(config.VisitsKey); err != nil {
		return fmt.Errorf("failed to clear visit buffer: %w", err)
	}
	return nil
}

func (b *Buffer) save(records []visit.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode visit buffer: %w", err)
	}
	if err := b.store.Set(config.VisitsKey, data); err != nil {
		return fmt.Errorf("failed to write visit buffer: %w", err)
	}
	return nil
}

// LastSubmit returns the time of the last successful submission. A missing
// or unparseable value is the Unix epoch, so the interval test passes as
// soon as the buffer is non-empty.
func (b *Buffer) LastSubmit() (time.Time, error) {
	raw, err := b.store.Get(config.LastSubmitKey)
	if err != nil {
		return time.UnixMilli(0), fmt.Errorf("failed to read last submit: %w", err)
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.UnixMilli(0), nil
	}
	return time.UnixMilli(ms), nil
}

// MarkSubmitted records t as the last successful submission.
func (b *Buffer) MarkSubmitted(t time.Time) error {
	val := strconv.FormatInt(t.UnixMilli(), 10)
	if err := b.store.Set(config.LastSubmitKey, []byte(val)); err != nil {
		return fmt.Errorf("failed to write last submit: %w", err)
	}
	return nil
}
