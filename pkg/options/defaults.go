package options

import "time"

const (
	// DefaultDirectory is the default base directory where nanolog will store
	// its segment files if no other directory is specified during Open.
	DefaultDirectory = "/var/lib/nanolog"

	// DefaultEntryRetention is the default retention window that
	// SegmentsPerRetentionPeriod divides into segment durations.
	DefaultEntryRetention = 24 * time.Hour

	// DefaultSegmentsPerRetentionPeriod controls how many segments a single
	// retention window is divided into; segment_duration = EntryRetention /
	// SegmentsPerRetentionPeriod.
	DefaultSegmentsPerRetentionPeriod = 24
)

// Holds the default configuration settings for a nanolog instance.
var defaultOptions = Options{
	Directory:                  DefaultDirectory,
	EntryRetention:             DefaultEntryRetention,
	SegmentsPerRetentionPeriod: DefaultSegmentsPerRetentionPeriod,
}

func NewDefaultOptions() Options {
	return defaultOptions
}
