// Package nanolog is an embedded, keyed, append-only write-ahead log. It
// persists records tagged by caller-supplied keys to per-key segment files
// with configurable durability and time-based retention, and recovers its
// indexing state from the segment directory alone on every open.
package nanolog

import (
	"github.com/iamNilotpal/nanolog/internal/engine"
	"github.com/iamNilotpal/nanolog/pkg/logger"
	"github.com/iamNilotpal/nanolog/pkg/metrics"
	"github.com/iamNilotpal/nanolog/pkg/options"
	"github.com/prometheus/client_golang/prometheus"
)

// EntryRef is the opaque locator returned by an append and accepted by
// ReadEntryAt. It is copyable, comparable, and remains valid across process
// restarts until compaction deletes the segment it points into.
type EntryRef = engine.EntryRef

// BatchEntry is one item of a call to AppendBatch.
type BatchEntry = engine.BatchEntry

// Wal is a single open write-ahead log directory.
type Wal struct {
	engine *engine.Engine
}

// Open creates the directory if needed, recovers per-key sequence state
// from whatever segment files are already present, and returns a Wal ready
// for appends and reads.
func Open(service string, opts ...options.OptionFunc) (*Wal, error) {
	log := logger.New(service)

	cfg := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := cfg.MetricsRegisterer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	eng, err := engine.New(engine.Config{
		Directory: cfg.Directory,
		Options:   cfg,
		Logger:    log,
		Metrics:   metrics.New(reg),
	})
	if err != nil {
		return nil, err
	}

	return &Wal{engine: eng}, nil
}

// AppendEntry writes one record for key, with an optional header, and
// returns its EntryRef. A header longer than 65535 bytes is rejected before
// any I/O occurs.
func (w *Wal) AppendEntry(key, header, content []byte, durable bool) (EntryRef, error) {
	return w.engine.AppendEntry(key, header, content, durable)
}

// AppendBatch writes every entry non-durably, then, if durable is true,
// issues one sync pass across every active segment touched by the batch.
// An error aborts the batch at the first failure; entries written before
// the failure remain on disk.
func (w *Wal) AppendBatch(entries []BatchEntry, durable bool) ([]EntryRef, error) {
	return w.engine.AppendBatch(entries, durable)
}

// LogEntry is the durable convenience form of AppendEntry.
func (w *Wal) LogEntry(key, header, content []byte) (EntryRef, error) {
	return w.engine.LogEntry(key, header, content)
}

// ReadEntryAt resolves ref to its segment file and returns the record's
// content bytes. Headers are write-only and are never returned here.
func (w *Wal) ReadEntryAt(ref EntryRef) ([]byte, error) {
	return w.engine.ReadEntryAt(ref)
}

// EnumerateKeys returns the set of distinct displayable keys currently
// present on disk.
func (w *Wal) EnumerateKeys() ([]string, error) {
	return w.engine.EnumerateKeys()
}

// EnumerateRecords replays, in append order, the content bytes of every
// record written for key.
func (w *Wal) EnumerateRecords(key []byte) ([][]byte, error) {
	return w.engine.EnumerateRecords(key)
}

// Sync issues a data-fsync on every currently active segment.
func (w *Wal) Sync() error {
	return w.engine.Sync()
}

// Compact deletes every segment file whose expiration has passed, and
// returns how many were removed.
func (w *Wal) Compact() (int, error) {
	return w.engine.Compact()
}

// ActiveSegmentCount returns the number of keys with a currently open
// segment. An expired segment stays open, and counted, until the next
// append for its key rotates it.
func (w *Wal) ActiveSegmentCount() int {
	return w.engine.ActiveSegmentCount()
}

// Close drops all open segment handles without deleting anything on disk.
// It is safe to call more than once.
func (w *Wal) Close() error {
	return w.engine.Close()
}

// Destroy closes the Wal and removes its entire directory, including every
// segment file it contains. Handles are always dropped first.
func (w *Wal) Destroy() error {
	return w.engine.Destroy()
}
