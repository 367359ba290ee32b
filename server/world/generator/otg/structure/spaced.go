// Package structure places host structures on their spacing grid. It only answers where structures start
// and which pieces they are made of; it never generates chunks.
package structure

import (
	"sync"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
	"github.com/otgmc/otg/server/world/generator/otg/fifo"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// BiomeSource resolves the biome at noise coordinates.
type BiomeSource interface {
	NoiseBiome(x4, z4 int) *biome.Biome
}

// HeightSource returns the heightmap value of the first block of a column that satisfies pred, searching
// from the top down. It is used to put pieces of noise affecting structures on the ground.
type HeightSource interface {
	HeightAt(x, z int, pred func(world.Material) bool) int
}

// Spaced is a world.StructureSource placing at most one start of every structure per spacing cell. Spaced
// is safe for concurrent use.
type Spaced struct {
	seed    int64
	spacing []world.StructureSpacing
	biomes  BiomeSource
	heights HeightSource

	mu      sync.Mutex
	layouts *fifo.Cache[layoutKey, []world.JigsawRecord]
}

// New returns a Spaced source for the structures passed. If biomes is nil, starts are placed regardless of
// biome. If heights is nil, pieces of noise affecting structures are put at y 64.
func New(seed int64, spacing []world.StructureSpacing, biomes BiomeSource, heights HeightSource) *Spaced {
	return &Spaced{
		seed:    seed,
		spacing: spacing,
		biomes:  biomes,
		heights: heights,
		layouts: fifo.New[layoutKey, []world.JigsawRecord](256),
	}
}

// Spacing returns the structures the source places.
func (s *Spaced) Spacing() []world.StructureSpacing {
	return s.spacing
}

// StartChunk returns the chunk the start of the structure passed is placed in within the spacing cell holding
// pos. Biomes are not considered.
func (s *Spaced) StartChunk(sp world.StructureSpacing, pos world.ChunkPos) world.ChunkPos {
	cx, cz := world.FloorDiv(pos.X(), sp.Spacing), world.FloorDiv(pos.Z(), sp.Spacing)
	r := rand.NewRandom(0)
	r.LargeFeatureSeed(s.seed, cx, cz, sp.Salt)

	n := sp.Spacing - sp.Separation
	var ox, oz int32
	if sp.Spread == world.SpreadTriangular {
		ox = (r.Int31n(n) + r.Int31n(n)) / 2
		oz = (r.Int31n(n) + r.Int31n(n)) / 2
	} else {
		ox, oz = r.Int31n(n), r.Int31n(n)
	}
	return world.ChunkPos{cx*sp.Spacing + ox, cz*sp.Spacing + oz}
}

// allowed reports if the biome at the centre of the chunk passed allows the structure.
func (s *Spaced) allowed(sp world.StructureSpacing, pos world.ChunkPos) bool {
	if s.biomes == nil {
		return true
	}
	b := s.biomes.NoiseBiome(int(pos.X())<<2+2, int(pos.Z())<<2+2)
	for _, name := range b.Structures {
		if name == sp.Name {
			return true
		}
	}
	return false
}

// StructureStart reports if a structure starts in the chunk passed. If several do, the largest avoidance
// distance among them is returned.
func (s *Spaced) StructureStart(pos world.ChunkPos) (int, bool) {
	dist, found := 0, false
	for _, sp := range s.spacing {
		if s.StartChunk(sp, pos) != pos || !s.allowed(sp, pos) {
			continue
		}
		dist, found = max(dist, sp.AvoidDistance), true
	}
	return dist, found
}

// JigsawRecords returns the pieces and junctions of noise affecting structures whose influence reaches into
// the chunk at pos.
func (s *Spaced) JigsawRecords(pos world.ChunkPos) []world.JigsawRecord {
	var records []world.JigsawRecord
	minX, minZ := pos.BlockX()-beardReach, pos.BlockZ()-beardReach
	maxX, maxZ := pos.BlockX()+15+beardReach, pos.BlockZ()+15+beardReach

	for _, sp := range s.spacing {
		if !sp.NoiseAffecting {
			continue
		}
		cx0, cz0 := world.FloorDiv(pos.X()-layoutReach, sp.Spacing), world.FloorDiv(pos.Z()-layoutReach, sp.Spacing)
		cx1, cz1 := world.FloorDiv(pos.X()+layoutReach, sp.Spacing), world.FloorDiv(pos.Z()+layoutReach, sp.Spacing)
		for cx := cx0; cx <= cx1; cx++ {
			for cz := cz0; cz <= cz1; cz++ {
				start := s.StartChunk(sp, world.ChunkPos{cx * sp.Spacing, cz * sp.Spacing})
				if abs(start.X()-pos.X()) > layoutReach || abs(start.Z()-pos.Z()) > layoutReach || !s.allowed(sp, start) {
					continue
				}
				for _, rec := range s.layout(sp, start) {
					if intersects(rec, minX, minZ, maxX, maxZ) {
						records = append(records, rec)
					}
				}
			}
		}
	}
	return records
}

func abs(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}

// Starts returns the names of the structures starting in the chunk passed.
func (s *Spaced) Starts(pos world.ChunkPos) []string {
	var names []string
	for _, sp := range s.spacing {
		if s.StartChunk(sp, pos) == pos && s.allowed(sp, pos) {
			names = append(names, sp.Name)
		}
	}
	return names
}
