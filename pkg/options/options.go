// Package options provides data structures and functions for configuring a
// nanolog instance. It defines the parameters that control segment rotation,
// retention, and the on-disk directory layout.
package options

import (
	"strings"
	"time"

	nlerrors "github.com/iamNilotpal/nanolog/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Defines the configuration parameters for a nanolog instance.
type Options struct {
	// Specifies the directory where segment files are stored.
	//
	// Default: "/var/lib/nanolog"
	Directory string `json:"directory"`

	// EntryRetention is the retention window that SegmentsPerRetentionPeriod
	// divides into per-key segment durations. A segment's expiration, after
	// which Compact may delete it, is its creation time plus that segment
	// duration. Must be at least one second.
	//
	// Default: 24h
	EntryRetention time.Duration `json:"entryRetention"`

	// SegmentsPerRetentionPeriod divides EntryRetention into that many
	// per-key segments; segment_duration = max(1s, EntryRetention /
	// SegmentsPerRetentionPeriod). Must be at least 1.
	//
	// Default: 24
	SegmentsPerRetentionPeriod int `json:"segmentsPerRetentionPeriod"`

	// MetricsRegisterer is where the instance's Prometheus collectors are
	// registered. If nil, Open registers against a private registry scoped
	// to that instance rather than the global default, so opening more than
	// one nanolog instance in a process never collides on metric names.
	MetricsRegisterer prometheus.Registerer `json:"-"`
}

// OptionFunc is a function type that modifies a nanolog instance's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.Directory = opts.Directory
		o.EntryRetention = opts.EntryRetention
		o.SegmentsPerRetentionPeriod = opts.SegmentsPerRetentionPeriod
	}
}

// Sets the directory segment files are stored under.
func WithDirectory(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.Directory = directory
		}
	}
}

// Sets the retention window from which the segment duration is derived.
func WithEntryRetention(retention time.Duration) OptionFunc {
	return func(o *Options) {
		if retention > 0 {
			o.EntryRetention = retention
		}
	}
}

// Sets how many segments each retention window is divided into.
func WithSegmentsPerRetentionPeriod(segments int) OptionFunc {
	return func(o *Options) {
		if segments > 0 {
			o.SegmentsPerRetentionPeriod = segments
		}
	}
}

// Sets the Prometheus registerer the instance's metrics are registered
// against. Useful when running several nanolog instances behind one
// /metrics endpoint and wanting distinct label sets or registries per
// instance.
func WithMetricsRegisterer(reg prometheus.Registerer) OptionFunc {
	return func(o *Options) {
		if reg != nil {
			o.MetricsRegisterer = reg
		}
	}
}

// SegmentDuration returns the time-based rotation window derived from
// EntryRetention and SegmentsPerRetentionPeriod, floored at one second.
func (o Options) SegmentDuration() time.Duration {
	if o.SegmentsPerRetentionPeriod <= 0 {
		return time.Second
	}
	d := o.EntryRetention / time.Duration(o.SegmentsPerRetentionPeriod)
	if d < time.Second {
		return time.Second
	}
	return d
}

// Validate enforces the open-time config invariants: EntryRetention must be
// at least one second and SegmentsPerRetentionPeriod must be positive.
func (o Options) Validate() error {
	if o.EntryRetention < time.Second {
		return nlerrors.NewInvalidConfigError("entryRetention", "must_be_at_least_one_second", o.EntryRetention)
	}
	if o.SegmentsPerRetentionPeriod <= 0 {
		return nlerrors.NewInvalidConfigError("segmentsPerRetentionPeriod", "must_be_positive", o.SegmentsPerRetentionPeriod)
	}
	return nil
}
