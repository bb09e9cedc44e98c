package cache

import (
	"time"

	"sweepboard/app/interfaces"
)

// Logger interface for cache logging.
type Logger interface {
	Log(level, message string)
}

// Entry is one cached pipeline result. Rows are shared pointers into the
// snapshot, so the accounted size is dominated by slice overhead rather than
// cell data.
type Entry struct {
	Columns    []string
	Rows       []*interfaces.Row
	Page       int
	TotalPages int
	TotalRows  int
	Size       int64
	AccessTime int64
	CreateTime time.Time
}

// Stats contains cache statistics for the diagnostics panel.
type Stats struct {
	TotalEntries int
	TotalSize    int64
	MaxSize      int64
	UsagePercent float64
	Hits         int64
	Misses       int64
	HitRate      float64
}

// DefaultMaxSize is the default cache size limit (100MB).
const DefaultMaxSize = 100 * 1024 * 1024

// rowOverhead approximates the bookkeeping bytes per cached row pointer.
const rowOverhead = 64
