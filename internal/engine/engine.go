// Package engine is the central coordinator for nanolog's storage
// subsystems. It wires together directory recovery, the active-segment
// table, binary framing, the filename codec, and compaction to implement
// the append, read-by-reference, enumeration, sync, and compaction
// operations the public facade exposes.
package engine

import (
	"bufio"
	stdErrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/iamNilotpal/nanolog/internal/compaction"
	"github.com/iamNilotpal/nanolog/internal/framing"
	"github.com/iamNilotpal/nanolog/internal/recovery"
	"github.com/iamNilotpal/nanolog/internal/segment"
	"github.com/iamNilotpal/nanolog/internal/table"
	nlerrors "github.com/iamNilotpal/nanolog/pkg/errors"
	"github.com/iamNilotpal/nanolog/pkg/filesys"
	"github.com/iamNilotpal/nanolog/pkg/keyhash"
	"github.com/iamNilotpal/nanolog/pkg/metrics"
	"github.com/iamNilotpal/nanolog/pkg/options"
	"github.com/iamNilotpal/nanolog/pkg/segname"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrEngineClosed is returned when an operation is attempted after Close or
// Destroy has already run.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// EntryRef is the opaque locator returned by append and accepted by
// read-by-reference. It remains valid across process restarts until
// compaction deletes the segment it points into.
type EntryRef struct {
	KeyHash  uint64
	Sequence uint64
	Offset   int64
}

// BatchEntry is one item of a batch append call.
type BatchEntry struct {
	Key     []byte
	Header  []byte
	Content []byte
}

// Engine coordinates every storage subsystem behind a single directory.
type Engine struct {
	directory string
	log       *zap.SugaredLogger
	metrics   *metrics.Metrics
	table     *table.Table
	closed    atomic.Bool
}

// Config groups the dependencies required to open an Engine.
type Config struct {
	Directory string
	Options   options.Options
	Logger    *zap.SugaredLogger
	Metrics   *metrics.Metrics
}

// New performs open-time recovery and returns an Engine ready to accept
// appends and reads.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}

	result, err := recovery.Scan(cfg.Directory, cfg.Logger)
	if err != nil {
		return nil, err
	}

	tbl := table.New(table.Config{
		Directory:    cfg.Directory,
		Options:      cfg.Options,
		Logger:       cfg.Logger,
		Metrics:      cfg.Metrics,
		NextSequence: result.NextSequence,
	})

	if cfg.Logger != nil {
		cfg.Logger.Infow(
			"engine opened",
			"directory", cfg.Directory,
			"recoveredSegments", result.SegmentCount,
			"recoveredKeys", len(result.NextSequence),
		)
	}

	return &Engine{
		directory: cfg.Directory,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		table:     tbl,
	}, nil
}

// AppendEntry writes one record for key and returns its EntryRef.
func (e *Engine) AppendEntry(key, header, content []byte, durable bool) (EntryRef, error) {
	if e.closed.Load() {
		return EntryRef{}, ErrEngineClosed
	}
	if len(header) > framing.MaxHeaderLen {
		return EntryRef{}, nlerrors.NewHeaderTooLargeError(len(header))
	}

	keyHash := keyhash.Sum64(key)
	sanitized := keyhash.Sanitize(key)

	result, err := e.table.Append(keyHash, sanitized, key, header, content, durable)
	if err != nil {
		if e.metrics != nil {
			e.metrics.AppendsTotal.WithLabelValues("error").Inc()
		}
		return EntryRef{}, err
	}

	if e.metrics != nil {
		e.metrics.AppendsTotal.WithLabelValues("ok").Inc()
	}

	return EntryRef{KeyHash: result.KeyHash, Sequence: result.Sequence, Offset: result.Offset}, nil
}

// AppendBatch writes each entry with durable=false, then, if durable is
// requested, issues a single sync pass over every active segment touched.
// A failure aborts the batch; entries successfully written before the
// failure remain on disk.
func (e *Engine) AppendBatch(entries []BatchEntry, durable bool) ([]EntryRef, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	refs := make([]EntryRef, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Header) > framing.MaxHeaderLen {
			return refs, nlerrors.NewHeaderTooLargeError(len(entry.Header))
		}

		keyHash := keyhash.Sum64(entry.Key)
		sanitized := keyhash.Sanitize(entry.Key)

		result, err := e.table.Append(keyHash, sanitized, entry.Key, entry.Header, entry.Content, false)
		if err != nil {
			if e.metrics != nil {
				e.metrics.AppendsTotal.WithLabelValues("error").Inc()
			}
			return refs, err
		}

		refs = append(refs, EntryRef{KeyHash: result.KeyHash, Sequence: result.Sequence, Offset: result.Offset})
		if e.metrics != nil {
			e.metrics.AppendsTotal.WithLabelValues("ok").Inc()
		}
	}

	if durable {
		if err := e.table.SyncAll(); err != nil {
			return refs, err
		}
	}

	return refs, nil
}

// LogEntry is the durable convenience form of AppendEntry.
func (e *Engine) LogEntry(key, header, content []byte) (EntryRef, error) {
	return e.AppendEntry(key, header, content, true)
}

// ReadEntryAt resolves ref to a segment file and returns the content bytes
// of the record it points to.
func (e *Engine) ReadEntryAt(ref EntryRef) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	path, err := e.findSegment(ref.KeyHash, ref.Sequence)
	if err != nil {
		return nil, err
	}
	if path == "" {
		if e.metrics != nil {
			e.metrics.ReadsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, nlerrors.NewEntryNotFoundError(ref.KeyHash, ref.Sequence)
	}

	file, _, err := segment.OpenForRead(path)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ReadsTotal.WithLabelValues("corrupted").Inc()
		}
		return nil, err
	}
	defer file.Close()

	if _, err := file.Seek(ref.Offset, io.SeekCurrent); err != nil {
		return nil, nlerrors.NewStorageError(err, nlerrors.ErrorCodeIO, "failed to seek to record offset").
			WithPath(path).WithOffset(int(ref.Offset))
	}

	frame, ok, err := framing.ReadRecordFrame(bufio.NewReader(file), path, int(ref.Offset), true)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ReadsTotal.WithLabelValues("corrupted").Inc()
		}
		return nil, err
	}
	if !ok {
		if e.metrics != nil {
			e.metrics.ReadsTotal.WithLabelValues("corrupted").Inc()
		}
		return nil, nlerrors.NewCorruptedDataError(nil, path, int(ref.Offset))
	}

	if e.metrics != nil {
		e.metrics.ReadsTotal.WithLabelValues("ok").Inc()
	}
	return frame.Content, nil
}

// findSegment scans the directory for the segment file matching
// (keyHash, sequence), returning "" if none is found.
func (e *Engine) findSegment(keyHash, sequence uint64) (string, error) {
	names, err := filesys.ListFilesWithSuffix(e.directory, segname.Extension)
	if err != nil {
		return "", nlerrors.NewStorageError(err, nlerrors.ErrorCodeIO, "failed to list segment directory").
			WithPath(e.directory)
	}

	for _, name := range names {
		fileKeyHash, fileSeq, err := segname.Parse(name)
		if err != nil {
			continue
		}
		if fileKeyHash == keyHash && fileSeq == sequence {
			return filepath.Join(e.directory, name), nil
		}
	}
	return "", nil
}

// EnumerateKeys returns the set of distinct displayable keys found by
// reading each segment file's header.
func (e *Engine) EnumerateKeys() ([]string, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	names, err := filesys.ListFilesWithSuffix(e.directory, segname.Extension)
	if err != nil {
		return nil, nlerrors.NewStorageError(err, nlerrors.ErrorCodeIO, "failed to list segment directory").
			WithPath(e.directory)
	}

	seen := make(map[uint64]bool)
	keys := make([]string, 0)

	for _, name := range names {
		keyHash, err := segname.ParseKeyHash(name)
		if err != nil || seen[keyHash] {
			continue
		}

		path := filepath.Join(e.directory, name)
		file, header, err := segment.OpenForRead(path)
		if err != nil {
			if e.log != nil {
				e.log.Warnw("skipping segment during key enumeration", "path", path, "error", err)
			}
			continue
		}
		file.Close()

		seen[keyHash] = true
		keys = append(keys, string(header.Key))
	}

	return keys, nil
}

// EnumerateRecords replays, in append order, the content bytes of every
// record written for key across all of its segments.
func (e *Engine) EnumerateRecords(key []byte) ([][]byte, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	keyHash := keyhash.Sum64(key)

	names, err := filesys.ListFilesWithSuffix(e.directory, segname.Extension)
	if err != nil {
		return nil, nlerrors.NewStorageError(err, nlerrors.ErrorCodeIO, "failed to list segment directory").
			WithPath(e.directory)
	}

	type ordered struct {
		name     string
		sequence uint64
	}
	var matches []ordered
	for _, name := range names {
		fileKeyHash, sequence, err := segname.Parse(name)
		if err != nil || fileKeyHash != keyHash {
			continue
		}
		matches = append(matches, ordered{name: name, sequence: sequence})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].sequence < matches[j].sequence })

	records := make([][]byte, 0)
	for _, m := range matches {
		path := filepath.Join(e.directory, m.name)
		file, _, err := segment.OpenForRead(path)
		if err != nil {
			if e.log != nil {
				e.log.Warnw("skipping segment during record enumeration", "path", path, "error", err)
			}
			continue
		}

		reader := bufio.NewReader(file)
		offset := 0
		for {
			frame, ok, err := framing.ReadRecordFrame(reader, path, offset, false)
			if err != nil {
				file.Close()
				return records, err
			}
			if !ok {
				break
			}
			records = append(records, frame.Content)
			offset += 6 + 2 + len(frame.Header) + 8 + len(frame.Content)
		}
		file.Close()
	}

	return records, nil
}

// Sync issues a data-fsync on every currently active segment.
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.table.SyncAll()
}

// Compact deletes every segment file whose expiration has passed.
func (e *Engine) Compact() (int, error) {
	if e.closed.Load() {
		return 0, ErrEngineClosed
	}
	return compaction.Sweep(compaction.Config{
		Directory: e.directory,
		Logger:    e.log,
		Metrics:   e.metrics,
	}, time.Now())
}

// ActiveSegmentCount returns the number of key hashes with a currently open
// active segment.
func (e *Engine) ActiveSegmentCount() int {
	return e.table.ActiveCount()
}

// Close drops every open handle without removing any files on disk. It is
// idempotent.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return e.table.Close()
}

// Destroy closes the engine and removes its entire directory. Handles are
// always dropped first, even if directory removal subsequently fails.
func (e *Engine) Destroy() error {
	var errs error
	if err := e.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := filesys.DeleteDir(e.directory); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("engine: failed to remove directory %s: %w", e.directory, err))
	}
	return errs
}
