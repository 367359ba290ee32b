// Package decorate places the resources of biomes in the world. Decoration happens per unit: the 32x32 block
// area offset by half a chunk from a chunk corner, in which resources of the biomes found around the unit are
// placed exactly once per biome.
package decorate

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
	"github.com/otgmc/otg/server/world/generator/otg/resource"
	"github.com/otgmc/otg/server/world/generator/otg/structcache"
)

// BiomeSource classifies columns of the world at a resolution of 4x4 blocks.
type BiomeSource interface {
	NoiseBiome(x4, z4 int) *biome.Biome
}

// StructureSource reports the host structures starting in a chunk. Decorator records them in the structure
// cache.
type StructureSource interface {
	Starts(pos world.ChunkPos) []string
}

// Config holds the settings of a Decorator.
type Config struct {
	// Log is the Logger that failed cache saves are logged to. If nil, Log is set to slog.Default().
	Log *slog.Logger
	// Seed is the world seed.
	Seed int64
	// Biomes classifies the sample points of a unit.
	Biomes BiomeSource
	// BorderAware enables border-aware decoration: resources of every biome found at the unit's samples are
	// placed, instead of only those of the majority biome.
	BorderAware bool
	// Structures, if not nil, is queried for structure starts recorded with every unit.
	Structures StructureSource
	// Cache, if not nil, receives a record for every decorated unit and is saved after each unit.
	Cache *structcache.Cache
}

// Decorator decorates units of a world. Decorate may be called concurrently for units that do not overlap.
type Decorator struct {
	conf Config
}

// New creates a Decorator using the Config passed.
func New(conf Config) *Decorator {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	return &Decorator{conf: conf}
}

// offsets holds the sample points of a unit relative to the noise position of the unit's chunk: the centre
// of the decoration area first, then its corners clockwise starting at the north-west.
var offsets = [5][2]int{{4, 4}, {2, 2}, {6, 2}, {6, 6}, {2, 6}}

// Samples returns the biomes at the five sample points of unit, in sample order.
func (d *Decorator) Samples(unit world.ChunkPos) [5]*biome.Biome {
	x4, z4 := int(unit.X())<<2, int(unit.Z())<<2
	var samples [5]*biome.Biome
	for i, off := range offsets {
		samples[i] = d.conf.Biomes.NoiseBiome(x4+off[0], z4+off[1])
	}
	return samples
}

// Governing returns the biomes whose resources are placed in a unit with the samples passed, in placement
// order. Every biome is returned at most once.
func (d *Decorator) Governing(samples [5]*biome.Biome) []*biome.Biome {
	if !d.conf.BorderAware {
		return []*biome.Biome{majority(samples)}
	}
	governing := make([]*biome.Biome, 0, len(samples))
	seen := make(map[uint16]struct{}, len(samples))
	for _, b := range samples {
		if _, ok := seen[b.ID]; ok {
			continue
		}
		seen[b.ID] = struct{}{}
		governing = append(governing, b)
	}
	return governing
}

// majority returns the biome found most often in samples. Ties go to the biome sampled first.
func majority(samples [5]*biome.Biome) *biome.Biome {
	counts := make(map[uint16]int, len(samples))
	for _, b := range samples {
		counts[b.ID]++
	}
	best := samples[0]
	for _, b := range samples[1:] {
		if counts[b.ID] > counts[best.ID] {
			best = b
		}
	}
	return best
}

// Decorate places the resources of the biomes governing unit in r and runs the snow and ice pass over the
// unit afterwards. If a resource fails, decoration of the unit stops and an *Error is returned. Blocks that
// were placed before the failure stay in place.
func (d *Decorator) Decorate(r world.Region, unit world.ChunkPos) error {
	samples := d.Samples(unit)
	governing := d.Governing(samples)

	rnd := rand.NewRandom(0)
	seed := rnd.DecorationSeed(d.conf.Seed, unit.BlockX(), unit.BlockZ())

	names := make([]string, 0, len(governing))
	for _, b := range governing {
		if err := d.spawn(r, rnd, unit, seed, b); err != nil {
			return err
		}
		names = append(names, b.Name)
	}

	if d.cover(samples) {
		resource.Freeze(r, unit, func(x, z int) bool {
			return d.conf.Biomes.NoiseBiome(x>>2, z>>2).Cold()
		})
	}
	d.record(unit, seed, names)
	return nil
}

// spawn places all resources of b. Panics of resources are returned as errors.
func (d *Decorator) spawn(r world.Region, rnd *rand.Random, unit world.ChunkPos, seed int64, b *biome.Biome) (err error) {
	current := -1
	defer func() {
		if v := recover(); v != nil {
			e := d.error(unit, seed, b, current, fmt.Errorf("panic: %v", v))
			e.Stack = debug.Stack()
			err = e
		}
	}()
	for i, res := range b.Resources {
		current = i
		rnd.FeatureSeed(seed, i, int(b.ID))
		if err := res.Spawn(r, rnd, unit); err != nil {
			return d.error(unit, seed, b, i, err)
		}
	}
	return nil
}

// cover reports if the snow and ice pass should run for a unit with the samples passed. It is skipped only if
// all samples hand cover over to the host.
func (d *Decorator) cover(samples [5]*biome.Biome) bool {
	for _, b := range samples {
		if !b.Template {
			return true
		}
	}
	return false
}

func (d *Decorator) record(unit world.ChunkPos, seed int64, biomes []string) {
	if d.conf.Cache == nil {
		return
	}
	rec := structcache.Record{Seed: seed, Biomes: biomes}
	if d.conf.Structures != nil {
		rec.Structures = d.conf.Structures.Starts(unit)
	}
	d.conf.Cache.Put(unit, rec)
	if err := d.conf.Cache.SaveIfDirty(); err != nil {
		d.conf.Log.Error("decorate: save structure cache", "X", unit.X(), "Z", unit.Z(), "error", err)
	}
}

func (d *Decorator) error(unit world.ChunkPos, seed int64, b *biome.Biome, index int, err error) *Error {
	e := &Error{Unit: unit, X: unit.BlockX() + 16, Z: unit.BlockZ() + 16, WorldSeed: d.conf.Seed, Seed: seed, Biome: b.Name, Err: err}
	if index >= 0 && index < len(b.Resources) {
		e.Resource = b.Resources[index].String()
	}
	return e
}
