// Package table maintains the active-segment table: at most one open,
// appendable segment per key hash, rotated on a time-based schedule rather
// than by size.
package table

import (
	"sync/atomic"
	"time"

	"github.com/iamNilotpal/nanolog/internal/framing"
	"github.com/iamNilotpal/nanolog/internal/segment"
	nlerrors "github.com/iamNilotpal/nanolog/pkg/errors"
	"github.com/iamNilotpal/nanolog/pkg/metrics"
	"github.com/iamNilotpal/nanolog/pkg/options"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Table owns the in-memory map of key_hash to its currently active
// segment. It is not safe for concurrent mutation, matching the single
// writer model the rest of the engine assumes.
type Table struct {
	directory    string
	opts         options.Options
	log          *zap.SugaredLogger
	metrics      *metrics.Metrics
	active       map[uint64]*segment.Handle
	nextSequence map[uint64]uint64
	closed       atomic.Bool
}

// Config groups the dependencies required to build a Table.
type Config struct {
	Directory    string
	Options      options.Options
	Logger       *zap.SugaredLogger
	Metrics      *metrics.Metrics
	NextSequence map[uint64]uint64
}

// New builds a Table seeded with the per-key next-sequence counters
// produced by the recovery scan. No segment file is opened until the first
// append for a key.
func New(cfg Config) *Table {
	nextSeq := cfg.NextSequence
	if nextSeq == nil {
		nextSeq = make(map[uint64]uint64)
	}
	return &Table{
		directory:    cfg.Directory,
		opts:         cfg.Options,
		log:          cfg.Logger,
		metrics:      cfg.Metrics,
		active:       make(map[uint64]*segment.Handle),
		nextSequence: nextSeq,
	}
}

// AppendResult reports where a just-written record landed.
type AppendResult struct {
	KeyHash  uint64
	Sequence uint64
	Offset   int64
}

// Append routes a record to the active segment for keyHash, rotating or
// creating a segment first if necessary, then writes the frame and
// optionally fsyncs it.
func (t *Table) Append(keyHash uint64, sanitizedKey string, key, header, content []byte, durable bool) (AppendResult, error) {
	if t.closed.Load() {
		return AppendResult{}, nlerrors.NewStorageError(nil, nlerrors.ErrorCodeInternal, "append on closed table").
			WithKeyHash(keyHash)
	}

	handle, err := t.acquireActive(keyHash, sanitizedKey, key)
	if err != nil {
		return AppendResult{}, err
	}

	offset, err := handle.Append(framing.RecordFrame{Header: header, Content: content})
	if err != nil {
		return AppendResult{}, err
	}

	if err := handle.Sync(durable); err != nil {
		if t.metrics != nil {
			t.metrics.SyncsTotal.WithLabelValues("error").Inc()
		}
		return AppendResult{}, err
	}

	if t.metrics != nil {
		if durable {
			t.metrics.SyncsTotal.WithLabelValues("ok").Inc()
		}
		t.metrics.EntryBytesWritten.Add(float64(len(content)))
	}

	return AppendResult{KeyHash: keyHash, Sequence: handle.Sequence(), Offset: offset}, nil
}

// acquireActive returns the active segment for keyHash, closing an expired
// one and creating a fresh one as needed.
func (t *Table) acquireActive(keyHash uint64, sanitizedKey string, key []byte) (*segment.Handle, error) {
	now := time.Now()

	if handle, ok := t.active[keyHash]; ok {
		if !handle.Expired(now) {
			return handle, nil
		}
		if err := handle.Close(); err != nil && t.log != nil {
			t.log.Warnw("failed to close expired segment", "keyHash", keyHash, "error", err)
		}
		delete(t.active, keyHash)
		if t.metrics != nil {
			t.metrics.SegmentRotationsTotal.Inc()
			t.metrics.ActiveSegments.Dec()
		}
	}

	seq := t.nextSequence[keyHash]
	if seq == 0 {
		seq = 1
	}
	t.nextSequence[keyHash] = seq + 1

	expiration := uint64(now.Unix()) + uint64(t.opts.SegmentDuration().Seconds())

	handle, err := segment.Create(segment.Config{
		Directory:    t.directory,
		SanitizedKey: sanitizedKey,
		Key:          key,
		KeyHash:      keyHash,
		Sequence:     seq,
		Expiration:   expiration,
		Logger:       t.log,
	})
	if err != nil {
		return nil, err
	}

	t.active[keyHash] = handle
	if t.metrics != nil {
		t.metrics.ActiveSegments.Inc()
	}

	return handle, nil
}

// SyncAll issues a data-fsync on every currently active segment, used after
// a durable batch append.
func (t *Table) SyncAll() error {
	var errs error
	for _, handle := range t.active {
		if err := handle.Sync(true); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if t.metrics != nil {
		if errs == nil {
			t.metrics.SyncsTotal.WithLabelValues("ok").Inc()
		} else {
			t.metrics.SyncsTotal.WithLabelValues("error").Inc()
		}
	}
	return errs
}

// ActiveCount returns the number of key hashes with a currently open
// segment.
func (t *Table) ActiveCount() int {
	return len(t.active)
}

// Close drops every active segment handle without deleting any files. It is
// idempotent.
func (t *Table) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs error
	for keyHash, handle := range t.active {
		if err := handle.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
		delete(t.active, keyHash)
	}
	if t.metrics != nil {
		t.metrics.ActiveSegments.Set(0)
	}
	return errs
}
