// Package segment owns a single append-mode segment file: the key it
// belongs to, its sequence number, its expiration timestamp, and the open
// file handle records are written to.
package segment

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iamNilotpal/nanolog/internal/framing"
	nlerrors "github.com/iamNilotpal/nanolog/pkg/errors"
	"github.com/iamNilotpal/nanolog/pkg/segname"
	"go.uber.org/zap"
)

// Handle is one open, appendable segment file.
type Handle struct {
	file       *os.File
	path       string
	keyHash    uint64
	sequence   uint64
	expiration uint64
	headerLen  int
}

// Config groups the parameters needed to create a brand-new segment file.
type Config struct {
	Directory     string
	SanitizedKey  string
	Key           []byte
	KeyHash       uint64
	Sequence      uint64
	Expiration    uint64
	Logger        *zap.SugaredLogger
}

// Create opens a new segment file in create+append mode, writes its header,
// and returns the resulting Handle positioned at the start of the record
// area.
func Create(cfg Config) (*Handle, error) {
	filename := segname.Build(cfg.SanitizedKey, cfg.KeyHash, cfg.Sequence)
	path := filepath.Join(cfg.Directory, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, nlerrors.ClassifyFileOpenError(err, path, filename)
	}

	header := framing.SegmentHeader{Sequence: cfg.Sequence, Expiration: cfg.Expiration, Key: cfg.Key}
	if err := framing.WriteSegmentHeader(file, header); err != nil {
		file.Close()
		return nil, nlerrors.NewStorageError(err, nlerrors.ErrorCodeIO, "failed to write segment header").
			WithFileName(filename).
			WithPath(path).
			WithKeyHash(cfg.KeyHash).
			WithSequence(cfg.Sequence)
	}

	if cfg.Logger != nil {
		cfg.Logger.Infow(
			"created segment",
			"path", path, "keyHash", cfg.KeyHash, "sequence", cfg.Sequence, "expiration", cfg.Expiration,
		)
	}

	return &Handle{
		file:       file,
		path:       path,
		keyHash:    cfg.KeyHash,
		sequence:   cfg.Sequence,
		expiration: cfg.Expiration,
		headerLen:  header.Len(),
	}, nil
}

// Append writes one record frame to the segment and returns the in-segment
// offset of the frame's signature, measured from the first byte after the
// segment header.
func (h *Handle) Append(frame framing.RecordFrame) (offset int64, err error) {
	pos, err := h.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, nlerrors.NewStorageError(err, nlerrors.ErrorCodeIO, "failed to query segment write position").
			WithPath(h.path).WithKeyHash(h.keyHash).WithSequence(h.sequence)
	}

	if err := framing.WriteRecordFrame(h.file, frame); err != nil {
		return 0, err
	}

	return pos - int64(h.headerLen), nil
}

// Sync flushes the segment to stable storage. When durable is true it uses
// a platform data-fsync (fdatasync semantics); otherwise it relies on OS
// buffering alone.
func (h *Handle) Sync(durable bool) error {
	if !durable {
		return nil
	}
	if err := fdatasync(h.file); err != nil {
		classified := nlerrors.ClassifySyncError(err, filepath.Base(h.path), h.path, 0)
		if se, ok := nlerrors.AsStorageError(classified); ok {
			se.WithKeyHash(h.keyHash).WithSequence(h.sequence)
		}
		return classified
	}
	return nil
}

// Close releases the file handle without deleting the underlying file.
func (h *Handle) Close() error {
	return h.file.Close()
}

// Path returns the path of the segment file on disk: the configured
// directory joined with the segment filename.
func (h *Handle) Path() string { return h.path }

// KeyHash returns the key hash this segment belongs to.
func (h *Handle) KeyHash() uint64 { return h.keyHash }

// Sequence returns the per-key sequence number of this segment.
func (h *Handle) Sequence() uint64 { return h.sequence }

// Expiration returns the wall-clock unix-seconds instant at which this
// segment becomes eligible for compaction.
func (h *Handle) Expiration() uint64 { return h.expiration }

// Expired reports whether the segment's expiration has passed as of now.
func (h *Handle) Expired(now time.Time) bool {
	return uint64(now.Unix()) >= h.expiration
}

// OpenForRead opens an existing segment file read-only and decodes its
// header. The caller is responsible for closing the returned file.
func OpenForRead(path string) (*os.File, framing.SegmentHeader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, framing.SegmentHeader{}, nlerrors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	header, err := framing.ReadSegmentHeader(file, path)
	if err != nil {
		file.Close()
		return nil, framing.SegmentHeader{}, err
	}

	return file, header, nil
}
