package world

import "errors"

// ErrTerrainAdopted is returned by Chunk.Adopt if the chunk already owns terrain.
var ErrTerrainAdopted = errors.New("chunk already owns terrain")

// Chunk is a live chunk: the container base terrain is moved into once generated, and that carvers and
// decoration write to afterwards.
type Chunk struct {
	pos     ChunkPos
	terrain *Terrain
	biomes  [ChunkSize * ChunkSize]uint16
	// Decorated is set once decoration for the chunk has run.
	Decorated bool
}

// NewChunk returns an empty chunk at pos. The chunk holds no terrain until Adopt is called.
func NewChunk(pos ChunkPos) *Chunk {
	return &Chunk{pos: pos}
}

// Pos returns the position of the chunk.
func (c *Chunk) Pos() ChunkPos {
	return c.pos
}

// Adopt moves ownership of t into the chunk. The caller must not use t after a successful call. Adopt fails if
// the chunk already holds terrain or if t was generated for a different position.
func (c *Chunk) Adopt(t *Terrain) error {
	if c.terrain != nil {
		return ErrTerrainAdopted
	}
	if t.pos != c.pos {
		return errors.New("terrain generated for " + t.pos.String() + " cannot move into chunk " + c.pos.String())
	}
	c.terrain = t
	return nil
}

// Terrain returns the terrain owned by the chunk, or nil if none was adopted yet.
func (c *Chunk) Terrain() *Terrain {
	return c.terrain
}

// Material returns the material at the chunk local position passed.
func (c *Chunk) Material(x, y, z int) Material {
	if c.terrain == nil {
		return Air
	}
	return c.terrain.Material(x, y, z)
}

// SetMaterial sets the material at the chunk local position passed.
func (c *Chunk) SetMaterial(x, y, z int, m Material) {
	if c.terrain == nil {
		return
	}
	c.terrain.SetMaterial(x, y, z, m)
}

// SetBiome stores the biome id of a column.
func (c *Chunk) SetBiome(x, z int, id uint16) {
	c.biomes[((x&0xf)<<4)|(z&0xf)] = id
}

// Biome returns the biome id of a column.
func (c *Chunk) Biome(x, z int) uint16 {
	return c.biomes[((x&0xf)<<4)|(z&0xf)]
}
