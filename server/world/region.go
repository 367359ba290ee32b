package world

// Region gives generation code read and write access to the blocks of a limited set of chunks, such as the
// chunks around a chunk being decorated. Implementations are not required to be safe for concurrent use.
type Region interface {
	// Seed returns the seed of the world the region belongs to.
	Seed() int64
	// HeightCap returns the height of the chunks in the region.
	HeightCap() int
	// Contains reports if the column at the absolute block coordinates x, z can be accessed.
	Contains(x, z int) bool
	// Material returns the material at an absolute block position, or Unknown if the position is not
	// accessible through the region.
	Material(x, y, z int) Material
	// SetMaterial sets the material at an absolute block position. It returns false if the position is not
	// accessible through the region.
	SetMaterial(x, y, z int, m Material) bool
	// HighestBlockY returns the y of the highest non-air block in the column at x, z, or -1 if the column is
	// empty or not accessible.
	HighestBlockY(x, z int) int
}

// MemoryRegion is a Region backed by chunks held in memory.
type MemoryRegion struct {
	seed      int64
	heightCap int
	chunks    map[ChunkPos]*Chunk
}

// NewMemoryRegion creates a region over the chunks passed. Every chunk must have adopted terrain.
func NewMemoryRegion(seed int64, heightCap int, chunks ...*Chunk) *MemoryRegion {
	r := &MemoryRegion{seed: seed, heightCap: heightCap, chunks: make(map[ChunkPos]*Chunk, len(chunks))}
	for _, c := range chunks {
		r.Add(c)
	}
	return r
}

// Add makes the chunk passed accessible through the region.
func (r *MemoryRegion) Add(c *Chunk) {
	r.chunks[c.Pos()] = c
}

// Chunk returns the chunk at pos if the region holds it.
func (r *MemoryRegion) Chunk(pos ChunkPos) (*Chunk, bool) {
	c, ok := r.chunks[pos]
	return c, ok
}

// Seed ...
func (r *MemoryRegion) Seed() int64 {
	return r.seed
}

// HeightCap ...
func (r *MemoryRegion) HeightCap() int {
	return r.heightCap
}

// Contains ...
func (r *MemoryRegion) Contains(x, z int) bool {
	c, ok := r.chunks[ChunkPosFromBlock(x, z)]
	return ok && c.Terrain() != nil
}

// Material ...
func (r *MemoryRegion) Material(x, y, z int) Material {
	c, ok := r.chunks[ChunkPosFromBlock(x, z)]
	if !ok || c.Terrain() == nil {
		return Unknown
	}
	return c.Material(x&0xf, y, z&0xf)
}

// SetMaterial ...
func (r *MemoryRegion) SetMaterial(x, y, z int, m Material) bool {
	c, ok := r.chunks[ChunkPosFromBlock(x, z)]
	if !ok || c.Terrain() == nil || y < 0 || y >= r.heightCap {
		return false
	}
	c.SetMaterial(x&0xf, y, z&0xf, m)
	return true
}

// HighestBlockY ...
func (r *MemoryRegion) HighestBlockY(x, z int) int {
	c, ok := r.chunks[ChunkPosFromBlock(x, z)]
	if !ok || c.Terrain() == nil {
		return -1
	}
	return c.Terrain().HeightAt(x&0xf, z&0xf) - 1
}
