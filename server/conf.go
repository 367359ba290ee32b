package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/otgmc/otg/server/world/generator/otg/preset"
	"github.com/otgmc/otg/server/world/generator/otg/shadow"
)

// Config contains options for starting a generation Engine.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// Seed is the seed of dimensions that do not set their own seed.
	Seed int64
	// Presets holds the presets dimensions may be generated with. If nil, only
	// the built-in preset is available.
	Presets *preset.Store
	// Dimensions lists the worlds the Engine generates. If it holds no
	// dimension, only an overworld with the built-in preset is generated.
	Dimensions DimensionConfig
	// CacheFolder is the folder structure caches of all worlds are stored in.
	// If empty, structure caches are kept in memory only.
	CacheFolder string
	// GeneratorWorkers controls the number of workers per world dedicated to
	// generating chunks ahead of time. If set to 0 or lower, the worker count
	// will be derived from the host's available CPUs.
	GeneratorWorkers int
	// GeneratorQueueSize limits how many chunks may wait for a worker. If set
	// to 0 or lower, a queue size proportional to the worker count is used.
	GeneratorQueueSize int
	// WaitTimeout is how long a chunk being generated ahead of time is waited
	// for before it is generated on the requesting goroutine. If 0, two
	// seconds are used.
	WaitTimeout time.Duration
	// ChunkCache, ColumnCache and DistanceCache are the capacities of the
	// caches of chunks generated ahead of time, of single columns and of
	// structure search results. Values of 0 or lower use the defaults.
	ChunkCache, ColumnCache, DistanceCache int
	// StructureSearchRadius is the radius in chunks searched for structure
	// starts before a chunk is generated ahead of time.
	StructureSearchRadius int
	// DisableDecoration turns off decoration, leaving the terrain bare of
	// resources. This is generally only useful for inspecting base terrain.
	DisableDecoration bool
}

// New creates an Engine using fields of conf. The worlds of all dimensions
// are created and their workers started. An error is returned if a dimension
// names a preset that does not exist, in which case no world is left running.
func (conf Config) New() (*Engine, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if len(conf.Dimensions.Worlds()) == 0 {
		conf.Log.Warn("config: no dimensions set, generating overworld with built-in preset")
		conf.Dimensions = DefaultDimensionConfig()
	}
	if err := conf.Dimensions.Validate(); err != nil {
		return nil, err
	}
	return newEngine(conf)
}

func (conf Config) shadowConfig() shadow.Config {
	return shadow.Config{
		Log:           conf.Log,
		Workers:       conf.GeneratorWorkers,
		QueueSize:     conf.GeneratorQueueSize,
		WaitTimeout:   conf.WaitTimeout,
		ChunkCache:    conf.ChunkCache,
		ColumnCache:   conf.ColumnCache,
		DistanceCache: conf.DistanceCache,
		SearchRadius:  conf.StructureSearchRadius,
	}
}

// UserConfig is the user configuration of the generation engine. It may be
// serialised and can be converted to a Config by calling UserConfig.Config().
type UserConfig struct {
	World struct {
		// Seed is the seed of dimensions that set a seed of -1.
		Seed int64
		// PresetsFolder is the folder that presets are loaded from, one TOML
		// file per preset. The built-in preset is written to it if it does
		// not exist yet.
		PresetsFolder string
		// DimensionConfig is the path to the YAML file listing the dimensions
		// to generate. Leave empty to generate only the overworld.
		DimensionConfig string
		// CacheFolder is the folder structure caches are stored in. Leave
		// empty to keep them in memory only.
		CacheFolder string
		// DisableDecoration turns off the placement of resources.
		DisableDecoration bool
	}
	Generator struct {
		// Workers is the number of background workers per world that generate
		// chunks ahead of time. Set to 0 to select a default based on the
		// host's CPU count.
		Workers int
		// QueueSize determines how many chunks can wait for a worker. Set to 0
		// to use an automatically chosen size.
		QueueSize int
		// WaitTimeout is how long a chunk being generated ahead of time is
		// waited for, for example "2s".
		WaitTimeout string
		// StructureSearchRadius is the radius in chunks searched for structure
		// starts before a chunk is generated ahead of time.
		StructureSearchRadius int
	}
	Cache struct {
		// Chunks is the number of chunks generated ahead of time that are kept
		// until they are used.
		Chunks int
		// Columns is the number of single columns kept for height and block
		// queries on chunks that are not loaded.
		Columns int
		// Distances is the number of structure search results kept.
		Distances int
	}
}

// Config converts a UserConfig to a Config, so that it may be used for
// creating an Engine. An error is returned if loading presets or the
// dimension config failed.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:                   log,
		Seed:                  uc.World.Seed,
		CacheFolder:           uc.World.CacheFolder,
		DisableDecoration:     uc.World.DisableDecoration,
		GeneratorWorkers:      uc.Generator.Workers,
		GeneratorQueueSize:    uc.Generator.QueueSize,
		StructureSearchRadius: uc.Generator.StructureSearchRadius,
		ChunkCache:            uc.Cache.Chunks,
		ColumnCache:           uc.Cache.Columns,
		DistanceCache:         uc.Cache.Distances,
	}
	if s := strings.TrimSpace(uc.Generator.WaitTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return conf, fmt.Errorf("parse wait timeout: %w", err)
		}
		conf.WaitTimeout = d
	}

	var err error
	presetsFolder := strings.TrimSpace(uc.World.PresetsFolder)
	if presetsFolder == "" {
		presetsFolder = "presets"
	}
	if conf.Presets, err = preset.LoadStore(presetsFolder); err != nil {
		return conf, fmt.Errorf("load presets: %w", err)
	}
	if conf.Dimensions, err = LoadDimensionConfig(uc.World.DimensionConfig); err != nil {
		return conf, fmt.Errorf("load dimensions: %w", err)
	}
	return conf, nil
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.World.Seed = 0
	c.World.PresetsFolder = "presets"
	c.World.CacheFolder = "cache"
	c.Generator.WaitTimeout = "2s"
	c.Generator.StructureSearchRadius = 4
	c.Cache.Chunks = 512
	c.Cache.Columns = 1024
	c.Cache.Distances = 2048
	return c
}
