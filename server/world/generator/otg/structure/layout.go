package structure

import (
	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

const (
	// layoutReach is the distance in chunks from its start that a structure layout may influence.
	layoutReach int32 = 4
	// beardReach is the distance in blocks from a piece in which it biases density.
	beardReach = 12
)

type layoutKey struct {
	pos  world.ChunkPos
	name string
}

// layout returns the pieces and junctions of the noise affecting structure starting at start. Layouts are
// cached, as every chunk around a start asks for them.
func (s *Spaced) layout(sp world.StructureSpacing, start world.ChunkPos) []world.JigsawRecord {
	key := layoutKey{pos: start, name: sp.Name}
	s.mu.Lock()
	recs, ok := s.layouts.Get(key)
	s.mu.Unlock()
	if ok {
		return recs
	}

	recs = s.buildLayout(sp, start)
	s.mu.Lock()
	s.layouts.Put(key, recs)
	s.mu.Unlock()
	return recs
}

// buildLayout lays out a rigid centre piece in the start chunk with up to four streets leading away from it.
// Streets follow the terrain and end in a junction.
func (s *Spaced) buildLayout(sp world.StructureSpacing, start world.ChunkPos) []world.JigsawRecord {
	r := rand.NewRandom(0)
	r.LargeFeatureSeed(s.seed, start.X(), start.Z(), sp.Salt+1)

	cx, cz := start.BlockX()+8, start.BlockZ()+8
	ground := s.groundAt(cx, cz)
	recs := []world.JigsawRecord{{
		MinX: cx - 4, MinY: ground - 1, MinZ: cz - 4,
		MaxX: cx + 4, MaxY: ground + 6, MaxZ: cz + 4,
		Rigid: true, GroundLevelDelta: 1,
	}}
	for _, dir := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if r.Intn(4) == 0 {
			continue
		}
		length := 16 + r.Intn(3)*8
		x0, z0 := cx+dir[0]*5, cz+dir[1]*5
		x1, z1 := cx+dir[0]*(5+length), cz+dir[1]*(5+length)
		end := s.groundAt(x1, z1)

		street := world.JigsawRecord{MinY: min(ground, end) - 1, MaxY: max(ground, end) + 1}
		if dir[0] != 0 {
			street.MinX, street.MaxX = min(x0, x1), max(x0, x1)
			street.MinZ, street.MaxZ = cz-1, cz+1
		} else {
			street.MinX, street.MaxX = cx-1, cx+1
			street.MinZ, street.MaxZ = min(z0, z1), max(z0, z1)
		}
		recs = append(recs, street, world.JigsawRecord{Junction: true, JunctionX: x1, JunctionY: end, JunctionZ: z1})
	}
	return recs
}

func (s *Spaced) groundAt(x, z int) int {
	if s.heights == nil {
		return 64
	}
	return s.heights.HeightAt(x, z, func(m world.Material) bool { return m != world.Air })
}

// intersects reports if a record lies within the block area passed.
func intersects(rec world.JigsawRecord, minX, minZ, maxX, maxZ int) bool {
	if rec.Junction {
		return rec.JunctionX >= minX && rec.JunctionX <= maxX && rec.JunctionZ >= minZ && rec.JunctionZ <= maxZ
	}
	return rec.MaxX >= minX && rec.MinX <= maxX && rec.MaxZ >= minZ && rec.MinZ <= maxZ
}
