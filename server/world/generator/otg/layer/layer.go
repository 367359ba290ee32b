// Package layer implements the biome layer pipeline: a chain of stages that, starting from an ocean-only
// world, places land, marks icy regions, assigns biome groups and biomes, and adds shores and rivers. Every
// stage pulls the samples it needs from the stage before it and draws randomness from a stream that only
// depends on the world seed, the salt of the stage and the coordinates sampled, so the output at a point
// never depends on which points were sampled before it or on which goroutine.
package layer

import "github.com/otgmc/otg/server/world/generator/otg/rand"

// A classification packs the biome ID of a sample together with the flags stages use to communicate.
const (
	// BiomeBits holds the biome ID.
	BiomeBits = 1<<10 - 1
	// LandBit is set for land samples.
	LandBit = 1 << 10
	// IceBit is set for samples in icy regions.
	IceBit = 1 << 11
	// RiverInitBits hold the river seed value, compared between neighbours to find river courses.
	RiverInitBits = 3 << RiverInitShift
	RiverInitShift = 12
	// RiverBit is set for samples a river runs through.
	RiverBit = 1 << 14
	// GroupBits hold the index of the biome group of a land sample plus one, or 0 if no group was assigned.
	GroupBits  = 0xff << GroupShift
	GroupShift = 15
)

// Resolution is the number of blocks covered by a single sample of the final stage.
const Resolution = 4

// Biome returns the biome ID of a classification.
func Biome(c int) uint16 {
	return uint16(c & BiomeBits)
}

// IsLand reports if the LandBit of a classification is set.
func IsLand(c int) bool {
	return c&LandBit != 0
}

// Source is a stage seen from the stage after it.
type Source interface {
	Get(x, z int) int
}

// Context holds the seed of a stage.
type Context struct {
	seed int64
}

// NewContext returns the context of a stage with the salt passed in a world with the seed passed.
func NewContext(worldSeed, salt int64) Context {
	return Context{seed: rand.LayerSeed(worldSeed, salt)}
}

// At returns the random stream of the stage at x, z.
func (c Context) At(x, z int) rand.Point {
	return rand.PointAt(c.seed, x, z)
}

// Stage is a single transformation of the pipeline. Sample must be a pure function of the context, the
// values of parent and the coordinates passed.
type Stage interface {
	Sample(ctx Context, parent Source, x, z int) int
}
