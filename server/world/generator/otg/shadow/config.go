package shadow

import (
	"log/slog"
	"runtime"
	"time"
)

// Config holds the settings of a Generator. The zero value is usable: unset fields take their defaults.
type Config struct {
	// Log is the logger used for warnings and recovered panics. If nil, slog.Default() is used.
	Log *slog.Logger
	// Workers is the number of goroutines generating chunks ahead of time. If 0 or lower, it is derived from
	// the number of CPUs available.
	Workers int
	// QueueSize limits how many chunks may wait for a worker. If 0 or lower, a size proportional to Workers
	// is chosen.
	QueueSize int
	// WaitTimeout bounds how long GetChunkWithWait waits for a worker before the caller takes over the chunk.
	WaitTimeout time.Duration
	// ChunkCache, ColumnCache and DistanceCache are the capacities of the chunk, block column and structure
	// distance caches.
	ChunkCache, ColumnCache, DistanceCache int
	// SearchRadius is the radius in chunks searched for host structure starts before a chunk is generated
	// ahead of time.
	SearchRadius int
}

func (conf Config) withDefaults() Config {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Workers <= 0 {
		conf.Workers = max(1, runtime.GOMAXPROCS(0)-1)
	}
	if conf.QueueSize <= 0 {
		conf.QueueSize = conf.Workers * 64
	}
	if conf.WaitTimeout <= 0 {
		conf.WaitTimeout = 2 * time.Second
	}
	if conf.ChunkCache <= 0 {
		conf.ChunkCache = 512
	}
	if conf.ColumnCache <= 0 {
		conf.ColumnCache = 1024
	}
	if conf.DistanceCache <= 0 {
		conf.DistanceCache = 2048
	}
	if conf.SearchRadius <= 0 {
		conf.SearchRadius = 4
	}
	return conf
}
