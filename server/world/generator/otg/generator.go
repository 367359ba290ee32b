// Package otg implements a preset driven terrain generator. Base terrain is filled from a noise density field
// shaped by the biomes of a layered biome pipeline, may be generated ahead of time by a pool of workers and is
// decorated with the resources of the biomes found around each decoration unit.
package otg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/carver"
	"github.com/otgmc/otg/server/world/generator/otg/decorate"
	"github.com/otgmc/otg/server/world/generator/otg/density"
	"github.com/otgmc/otg/server/world/generator/otg/layer"
	"github.com/otgmc/otg/server/world/generator/otg/noise"
	"github.com/otgmc/otg/server/world/generator/otg/preset"
	"github.com/otgmc/otg/server/world/generator/otg/shadow"
	"github.com/otgmc/otg/server/world/generator/otg/structcache"
	"github.com/otgmc/otg/server/world/generator/otg/structure"
)

// Config holds the settings of a Generator.
type Config struct {
	// Log is the Logger used by the generator and its workers. If nil, Log is set to slog.Default().
	Log *slog.Logger
	// Name is the name of the world. Together with Seed and the preset it identifies the records of the
	// world in the structure cache.
	Name string
	// Seed is the world seed.
	Seed int64
	// Preset holds the generation settings. If nil, the built-in preset is used.
	Preset *preset.Preset
	// Shadow configures the pool of workers generating chunks ahead of time.
	Shadow shadow.Config
	// BiomeCache is the number of chunks whose biomes are kept in memory. If 0, 1024 is used.
	BiomeCache int
	// CacheDir is the folder the structure cache is stored in. If empty, the cache is kept in memory only.
	CacheDir string
	// DisableDecoration turns Decorate into a no-op, leaving units bare of resources.
	DisableDecoration bool
}

// Generator generates the terrain of a single world. It is safe for concurrent use.
type Generator struct {
	conf Config
	log  *slog.Logger
	cfg  preset.WorldConfig

	biomes     *layer.Provider
	sampler    *density.Sampler
	structures *structure.Spaced
	carver     *carver.Carver
	surface    *noise.Surface

	shadow    *shadow.Generator
	decorator *decorate.Decorator
	cache     *structcache.Cache
}

// New creates a Generator using the Config passed. An error is returned if the preset is invalid, in which
// case no workers are started.
func New(conf Config) (*Generator, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Preset == nil {
		conf.Preset = preset.Default()
	} else if !conf.Preset.Validated() {
		if err := conf.Preset.Validate(); err != nil {
			return nil, fmt.Errorf("new generator: %w", err)
		}
	}
	if conf.BiomeCache <= 0 {
		conf.BiomeCache = 1024
	}
	pr := conf.Preset
	g := &Generator{conf: conf, log: conf.Log.With("world", conf.Name), cfg: pr.World}

	g.biomes = layer.NewProvider(conf.Seed, pr, conf.BiomeCache)
	g.sampler = density.NewSampler(conf.Seed, pr.World, g.biomes)
	g.structures = structure.New(conf.Seed, pr.Spacing(), g.biomes, g.sampler)
	g.carver = carver.New(conf.Seed, pr.World)
	g.surface = noise.NewSurface(conf.Seed)

	g.cache = structcache.Load(conf.CacheDir, structcache.WorldID(conf.Name, conf.Seed, pr.Fingerprint()), g.log)
	g.decorator = decorate.New(decorate.Config{
		Log:         g.log,
		Seed:        conf.Seed,
		Biomes:      g.biomes,
		BorderAware: pr.World.ImprovedBorderDecoration,
		Structures:  g.structures,
		Cache:       g.cache,
	})

	if conf.Shadow.Log == nil {
		conf.Shadow.Log = g.log
	}
	g.shadow = shadow.New(conf.Shadow, g, g.structures)
	return g, nil
}

// Seed returns the world seed.
func (g *Generator) Seed() int64 {
	return g.conf.Seed
}

// Preset returns the preset the generator uses.
func (g *Generator) Preset() *preset.Preset {
	return g.conf.Preset
}

// Biomes returns the biome provider of the world.
func (g *Generator) Biomes() *layer.Provider {
	return g.biomes
}

// Sampler returns the density sampler of the world.
func (g *Generator) Sampler() *density.Sampler {
	return g.sampler
}

// Structures returns the host structure placement of the world.
func (g *Generator) Structures() *structure.Spaced {
	return g.structures
}

// Shadow returns the pool generating chunks ahead of time.
func (g *Generator) Shadow() *shadow.Generator {
	return g.shadow
}

// GenerateChunk moves the base terrain of c's position into c. Terrain generated ahead of time is used if it
// is ready before ctx expires or the wait timeout passes, otherwise the terrain is generated on the calling
// goroutine. Both paths produce equal terrain.
func (g *Generator) GenerateChunk(ctx context.Context, c *world.Chunk) error {
	pos := c.Pos()
	var t *world.Terrain
	if g.shadow.GetChunkWithWait(ctx, pos) != nil {
		t = g.shadow.ConsumeAndEvict(pos)
	}
	if t == nil {
		t = g.BaseTerrain(pos, g.structures.JigsawRecords(pos))
	}
	ids := g.biomes.ChunkBiomes(pos)
	for i, id := range ids {
		c.SetBiome(i>>4, i&0xf, id)
	}
	if err := c.Adopt(t); err != nil {
		return fmt.Errorf("generate chunk %v: %w", pos, err)
	}
	return nil
}

// QueueChunksForWorkerThreads queues the chunks within radius of centre for generation ahead of time.
func (g *Generator) QueueChunksForWorkerThreads(centre world.ChunkPos, radius int) {
	g.shadow.QueueChunksForWorkerThreads(centre, radius)
}

// Decorate decorates the unit at the chunk position passed. r must give access to the chunks at unit,
// unit+(1, 0), unit+(0, 1) and unit+(1, 1).
func (g *Generator) Decorate(r world.Region, unit world.ChunkPos) error {
	if g.conf.DisableDecoration {
		return nil
	}
	return g.decorator.Decorate(r, unit)
}

// Close stops the workers of the generator and saves the structure cache.
func (g *Generator) Close() error {
	g.shadow.StopWorkerThreads()
	if err := g.cache.Close(); err != nil {
		return fmt.Errorf("close generator: %w", err)
	}
	return nil
}
