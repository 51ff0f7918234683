package store

import (
	"context"
	"log"
	"sync"
	"time"
)

// Coalescer buffers geometry updates during a drag and flushes one merged
// write per object after the stream goes quiet. Later values for the same
// field overwrite earlier ones; no intermediate positions are persisted.
type Coalescer struct {
	store   *Store
	boardID string
	quiet   time.Duration

	mu      sync.Mutex
	pending map[string]map[string]interface{}
	timer   *time.Timer
	closed  bool
}

// NewCoalescer Coalescer 생성. quiet은 마지막 버퍼링 이후 flush까지의 대기 시간.
func NewCoalescer(store *Store, boardID string, quiet time.Duration) *Coalescer {
	return &Coalescer{
		store:   store,
		boardID: boardID,
		quiet:   quiet,
		pending: make(map[string]map[string]interface{}),
	}
}

// Buffer merges fields into the pending update for the object and restarts
// the quiet-period timer. Distinct objects buffered in the same window flush
// together as one batch.
func (co *Coalescer) Buffer(id string, fields map[string]interface{}) {
	co.mu.Lock()
	defer co.mu.Unlock()

	if co.closed {
		return
	}

	merged, ok := co.pending[id]
	if !ok {
		merged = make(map[string]interface{}, len(fields))
		co.pending[id] = merged
	}
	for k, v := range fields {
		merged[k] = v
	}

	if co.timer != nil {
		co.timer.Stop()
	}
	co.timer = time.AfterFunc(co.quiet, co.flush)
}

// Flush writes out everything currently buffered, regardless of the timer.
func (co *Coalescer) Flush() {
	co.flush()
}

// Close flushes any pending updates and stops the timer. The final position
// of an in-flight drag is persisted rather than dropped.
func (co *Coalescer) Close() {
	co.mu.Lock()
	if co.closed {
		co.mu.Unlock()
		return
	}
	co.closed = true
	if co.timer != nil {
		co.timer.Stop()
		co.timer = nil
	}
	pending := co.pending
	co.pending = nil
	co.mu.Unlock()

	co.write(pending)
}

func (co *Coalescer) flush() {
	co.mu.Lock()
	if co.closed || len(co.pending) == 0 {
		co.mu.Unlock()
		return
	}
	pending := co.pending
	co.pending = make(map[string]map[string]interface{})
	co.mu.Unlock()

	co.write(pending)
}

func (co *Coalescer) write(pending map[string]map[string]interface{}) {
	if len(pending) == 0 {
		return
	}

	entries := make([]FieldUpdate, 0, len(pending))
	for id, fields := range pending {
		entries = append(entries, FieldUpdate{ID: id, Fields: fields})
	}

	if err := co.store.UpdateMany(context.Background(), co.boardID, entries); err != nil {
		log.Printf("[Board %s] Failed to flush coalesced updates: %v", co.boardID, err)
	}
}
