// Package compaction implements whole-segment deletion: files whose
// embedded expiration timestamp has passed are removed outright. Live
// segments are never rewritten or truncated.
package compaction

import (
	"path/filepath"
	"time"

	"github.com/iamNilotpal/nanolog/internal/segment"
	"github.com/iamNilotpal/nanolog/pkg/filesys"
	"github.com/iamNilotpal/nanolog/pkg/metrics"
	"github.com/iamNilotpal/nanolog/pkg/segname"
	"go.uber.org/zap"
)

// Config groups the dependencies a compaction sweep needs.
type Config struct {
	Directory string
	Logger    *zap.SugaredLogger
	Metrics   *metrics.Metrics
}

// Sweep deletes every segment file in cfg.Directory whose expiration
// timestamp is at or before now. Files with a missing or invalid segment
// signature are skipped rather than deleted, since compaction only removes
// segments it can positively confirm have expired.
func Sweep(cfg Config, now time.Time) (deleted int, err error) {
	names, err := filesys.ListFilesWithSuffix(cfg.Directory, segname.Extension)
	if err != nil {
		return 0, err
	}

	nowSeconds := uint64(now.Unix())

	for _, name := range names {
		path := filepath.Join(cfg.Directory, name)

		file, header, err := segment.OpenForRead(path)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warnw("skipping segment during compaction", "path", path, "error", err)
			}
			continue
		}
		file.Close()

		if nowSeconds < header.Expiration {
			continue
		}

		if err := filesys.DeleteFile(path); err != nil {
			return deleted, err
		}
		deleted++

		if cfg.Metrics != nil {
			cfg.Metrics.SegmentsDeletedTotal.Inc()
		}
		if cfg.Logger != nil {
			cfg.Logger.Infow("deleted expired segment", "path", path, "expiration", header.Expiration)
		}
	}

	return deleted, nil
}
