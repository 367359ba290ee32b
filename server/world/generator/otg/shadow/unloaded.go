package shadow

import "github.com/otgmc/otg/server/world"

// MaterialInUnloadedChunk returns the base terrain material at an absolute block position, generating the
// chunk holding it if needed. The generated chunk is not kept in the chunk cache: only its columns are
// cached.
func (g *Generator) MaterialInUnloadedChunk(x, y, z int) world.Material {
	col := g.column(x, z)
	if y < 0 || y >= len(col) {
		return world.Air
	}
	return col[y]
}

// HighestBlockYInUnloadedChunk returns the y of the highest non-air base terrain block of the column at x, z,
// or -1 if the column is empty.
func (g *Generator) HighestBlockYInUnloadedChunk(x, z int) int {
	col := g.column(x, z)
	for y := len(col) - 1; y >= 0; y-- {
		if col[y] != world.Air {
			return y
		}
	}
	return -1
}

// ChunkWithoutLoadingOrCaching generates the base terrain of pos without looking at or filling any cache.
// The caller owns the terrain returned.
func (g *Generator) ChunkWithoutLoadingOrCaching(pos world.ChunkPos) *world.Terrain {
	return g.base.BaseTerrain(pos, g.structures.JigsawRecords(pos))
}

func (g *Generator) column(x, z int) []world.Material {
	key := world.BlockPos2D{x, z}
	g.colMu.Lock()
	col, ok := g.columns.Get(key)
	g.colMu.Unlock()
	if ok {
		return col
	}

	pos := world.ChunkPosFromBlock(x, z)
	g.mu.Lock()
	t, cached := g.chunks.Get(pos)
	if cached {
		// Copy while holding the lock, as the terrain may be consumed right after.
		col = t.Column(x, z)
	}
	g.mu.Unlock()
	if cached {
		g.colMu.Lock()
		g.columns.Put(key, col)
		g.colMu.Unlock()
		return col
	}

	t = g.ChunkWithoutLoadingOrCaching(pos)
	g.colMu.Lock()
	defer g.colMu.Unlock()
	for lx := 0; lx < world.ChunkSize; lx++ {
		for lz := 0; lz < world.ChunkSize; lz++ {
			g.columns.Put(world.BlockPos2D{pos.BlockX() + lx, pos.BlockZ() + lz}, t.Column(lx, lz))
		}
	}
	return t.Column(x, z)
}
