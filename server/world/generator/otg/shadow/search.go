package shadow

import "github.com/otgmc/otg/server/world"

// CheckHasHostStructureWithoutLoading reports if a host structure starts close enough to pos that pos must
// not be generated ahead of time. Rings of increasing distance around pos, up to radius, are searched for
// structure starts whose avoidance distance covers pos. Only structure starts are queried: no structure is
// generated and no chunk is loaded. Outcomes are memoised per chunk.
func (g *Generator) CheckHasHostStructureWithoutLoading(pos world.ChunkPos, radius int) bool {
	key := pos.Key()
	from := 0
	g.distMu.Lock()
	v, ok := g.distances.get(key)
	g.distMu.Unlock()
	if ok {
		if v >= 0 {
			return int(v) <= radius
		}
		clean := int(-v - 1)
		if radius <= clean {
			return false
		}
		from = clean + 1
	}

	for d := from; d <= radius; d++ {
		if g.ringHasStructure(pos, d) {
			g.distMu.Lock()
			g.distances.put(key, int64(d))
			g.distMu.Unlock()
			return true
		}
	}
	g.distMu.Lock()
	g.distances.put(key, -int64(radius)-1)
	g.distMu.Unlock()
	return false
}

// ringHasStructure reports if any chunk at distance d from pos holds a structure start whose avoidance
// distance reaches d. The distance of a chunk is its Euclidean distance to pos in chunks, rounded down.
func (g *Generator) ringHasStructure(pos world.ChunkPos, d int) bool {
	lo, hi := d*d, (d+1)*(d+1)
	for dx := -d; dx <= d; dx++ {
		for dz := -d; dz <= d; dz++ {
			if n := dx*dx + dz*dz; n < lo || n >= hi {
				continue
			}
			avoid, ok := g.structures.StructureStart(pos.Add(int32(dx), int32(dz)))
			if ok && avoid >= d {
				return true
			}
		}
	}
	return false
}
