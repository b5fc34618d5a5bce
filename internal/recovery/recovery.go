// Package recovery implements the open-time directory scan that rebuilds
// per-key next-sequence counters from the segment files already on disk.
package recovery

import (
	"path/filepath"

	nlerrors "github.com/iamNilotpal/nanolog/pkg/errors"
	"github.com/iamNilotpal/nanolog/pkg/filesys"
	"github.com/iamNilotpal/nanolog/pkg/segname"
	"go.uber.org/zap"
)

// Result is the outcome of scanning a directory for segment files.
type Result struct {
	// NextSequence maps key_hash to the sequence number the next segment
	// created for that key must use.
	NextSequence map[uint64]uint64
	// SegmentCount is the number of parseable segment filenames found.
	SegmentCount int
}

// Scan creates dir if it does not already exist, then enumerates every
// "*.log" file in it, folding each parsed (key_hash, sequence) pair into
// the returned NextSequence map. Unparseable filenames are skipped; no file
// is opened.
func Scan(dir string, log *zap.SugaredLogger) (*Result, error) {
	if err := filesys.CreateDir(dir, 0755, true); err != nil {
		return nil, nlerrors.ClassifyDirectoryCreationError(err, dir)
	}

	names, err := filesys.ListFilesWithSuffix(dir, segname.Extension)
	if err != nil {
		return nil, err
	}

	result := &Result{NextSequence: make(map[uint64]uint64)}
	for _, name := range names {
		keyHash, seq, err := segname.Parse(name)
		if err != nil {
			if log != nil {
				log.Warnw("skipping unparseable segment filename during recovery", "file", name, "error", err)
			}
			continue
		}

		result.SegmentCount++
		if seq+1 > result.NextSequence[keyHash] {
			result.NextSequence[keyHash] = seq + 1
		}
	}

	if log != nil {
		log.Infow(
			"recovery scan complete",
			"directory", filepath.Clean(dir),
			"segments", result.SegmentCount,
			"distinctKeys", len(result.NextSequence),
		)
	}

	return result, nil
}
