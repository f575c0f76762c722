// Package journal persists engine events in a PebbleDB key-value
// store so a game's night resolutions stay auditable after the fact.
// Keys are 8-byte big-endian sequence numbers increasing
// monotonically. The engine itself never touches the journal: it is
// wired in as an event-bus decorator on the server side.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/werewolf-gm/engine"
)

// Entry is one recorded event.
type Entry struct {
	Seq     uint64          `json:"seq"`
	At      time.Time       `json:"at"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Journal appends events to a pebble store. A nil *Journal is a valid
// no-op.
type Journal struct {
	db   *pebble.DB
	mu   sync.Mutex
	next uint64
}

// Open opens (or creates) a journal at dir. An empty dir disables
// journaling and returns nil.
func Open(dir string) (*Journal, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, err
	}
	j := &Journal{db: db}
	// Discover next sequence by reading the last key.
	it, err := db.NewIter(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	defer func() { _ = it.Close() }()
	if it.Last() {
		if len(it.Key()) >= 8 {
			j.next = binary.BigEndian.Uint64(it.Key()[:8]) + 1
		}
	}
	return j, nil
}

// Append records one event.
func (j *Journal) Append(name string, payload any) error {
	if j == nil || j.db == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	e := Entry{Seq: j.next, At: time.Now(), Name: name, Payload: raw}
	val, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, j.next)
	j.next++
	return j.db.Set(key, val, pebble.Sync)
}

// Recent loads the most recent limit entries, oldest first. A
// non-positive limit loads everything.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	it, err := j.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	out := make([]Entry, 0, 64)
	for it.First(); it.Valid(); it.Next() {
		var e Entry
		if err := json.Unmarshal(it.Value(), &e); err == nil {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Close flushes and closes the store.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Wrap decorates an event bus so every emitted event is journaled
// before being forwarded. Append failures are logged, never surfaced:
// event emission stays fire-and-forget.
func (j *Journal) Wrap(next engine.EventBus) engine.EventBus {
	return &teeBus{journal: j, next: next}
}

type teeBus struct {
	journal *Journal
	next    engine.EventBus
}

func (b *teeBus) Emit(name string, payload any) {
	if err := b.journal.Append(name, payload); err != nil {
		log.Error().Err(err).Str("event", name).Msg("journal append failed")
	}
	if b.next != nil {
		b.next.Emit(name, payload)
	}
}
