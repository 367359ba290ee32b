package world

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Terrain is the block buffer of a single chunk together with its world generation surface heightmap. A
// Terrain has exactly one owner at a time: it is created by a generator, may be held by the shadow cache and
// is finally moved into a live Chunk using Chunk.Adopt. Code that hands a Terrain to someone else must not
// touch it afterwards.
type Terrain struct {
	pos       ChunkPos
	height    int
	blocks    []Material
	heightmap [ChunkSize * ChunkSize]int16
}

// NewTerrain returns an empty Terrain for the chunk at pos with the height passed. All blocks are air.
func NewTerrain(pos ChunkPos, height int) *Terrain {
	return &Terrain{
		pos:    pos,
		height: height,
		blocks: make([]Material, ChunkSize*ChunkSize*height),
	}
}

// Pos returns the position of the chunk the terrain was generated for.
func (t *Terrain) Pos() ChunkPos {
	return t.pos
}

// Height returns the height of the terrain in blocks.
func (t *Terrain) Height() int {
	return t.height
}

func (t *Terrain) index(x, y, z int) int {
	return ((x<<4)|z)*t.height + y
}

// Material returns the material at the chunk local coordinates passed. Positions out of range return Air.
func (t *Terrain) Material(x, y, z int) Material {
	if y < 0 || y >= t.height || x < 0 || x >= ChunkSize || z < 0 || z >= ChunkSize {
		return Air
	}
	return t.blocks[t.index(x, y, z)]
}

// SetMaterial sets the material at the chunk local coordinates passed and keeps the heightmap up to date.
// Positions out of range are ignored.
func (t *Terrain) SetMaterial(x, y, z int, m Material) {
	if y < 0 || y >= t.height || x < 0 || x >= ChunkSize || z < 0 || z >= ChunkSize {
		return
	}
	t.blocks[t.index(x, y, z)] = m

	h := &t.heightmap[(x<<4)|z]
	switch {
	case m != Air && int16(y+1) > *h:
		*h = int16(y + 1)
	case m == Air && int16(y+1) == *h:
		for *h > 0 && t.blocks[t.index(x, int(*h)-1, z)] == Air {
			*h--
		}
	}
}

// HeightAt returns the world generation surface height of the column: the y of the highest non-air block
// plus one, or 0 for an empty column.
func (t *Terrain) HeightAt(x, z int) int {
	return int(t.heightmap[((x&0xf)<<4)|(z&0xf)])
}

// Column copies the materials of a single column, bottom to top, into a new slice.
func (t *Terrain) Column(x, z int) []Material {
	start := t.index(x&0xf, 0, z&0xf)
	col := make([]Material, t.height)
	copy(col, t.blocks[start:start+t.height])
	return col
}

// Clone returns a deep copy of the terrain.
func (t *Terrain) Clone() *Terrain {
	c := &Terrain{pos: t.pos, height: t.height, heightmap: t.heightmap}
	c.blocks = append([]Material(nil), t.blocks...)
	return c
}

// Checksum returns a 64-bit digest of the materials and heightmap of the terrain. Two terrains generated for
// the same seed, configuration and position have equal checksums.
func (t *Terrain) Checksum() uint64 {
	d := xxhash.New()
	buf := make([]byte, 2*ChunkSize*ChunkSize)
	for i, h := range t.heightmap {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(h))
	}
	_, _ = d.Write(buf)

	buf = make([]byte, 2*len(t.blocks))
	for i, m := range t.blocks {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(m))
	}
	_, _ = d.Write(buf)
	return d.Sum64()
}

// Equal reports if two terrains hold exactly the same materials and heightmap.
func (t *Terrain) Equal(o *Terrain) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.pos != o.pos || t.height != o.height || t.heightmap != o.heightmap || len(t.blocks) != len(o.blocks) {
		return false
	}
	for i := range t.blocks {
		if t.blocks[i] != o.blocks[i] {
			return false
		}
	}
	return true
}
