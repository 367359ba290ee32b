package world

// JigsawRecord describes a piece of a host structure that biases terrain density near it, or a single
// junction between two pieces. Records are read only.
type JigsawRecord struct {
	// MinX, MinY, MinZ, MaxX, MaxY and MaxZ hold the bounding box of a piece, in absolute block coordinates.
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
	// GroundLevelDelta is the offset of the ground level from the bottom of the piece. Only used for rigid
	// pieces.
	GroundLevelDelta int
	// Rigid is set for pieces that keep their shape regardless of terrain.
	Rigid bool
	// Junction is set for records describing a junction point rather than a piece.
	Junction bool
	// JunctionX, JunctionY and JunctionZ hold the position of the junction if Junction is set.
	JunctionX, JunctionY, JunctionZ int
}

// SpreadType controls how a structure start is offset within its spacing cell.
type SpreadType uint8

const (
	// SpreadLinear picks the offset uniformly.
	SpreadLinear SpreadType = iota
	// SpreadTriangular averages two draws, pulling starts towards the centre of the cell.
	SpreadTriangular
)

// StructureSpacing holds the placement settings of a single host structure type.
type StructureSpacing struct {
	// Name is the name of the structure, such as "village".
	Name string
	// Spacing is the size of the grid cell, in chunks, that holds at most one start.
	Spacing int32
	// Separation is the minimum distance, in chunks, between starts in neighbouring cells.
	Separation int32
	// Salt is mixed into the seed used to place starts.
	Salt int64
	// Spread controls the distribution of the start within a cell.
	Spread SpreadType
	// AvoidDistance is the distance in chunks around a start in which shadow generation is unsafe. Zero
	// means the structure never affects terrain density.
	AvoidDistance int
	// NoiseAffecting is set for jigsaw structures that bias terrain density around their pieces.
	NoiseAffecting bool
}

// StructureSource is the host structure subsystem as seen by terrain generation. Implementations must be
// safe for concurrent use and must never generate chunks.
type StructureSource interface {
	// JigsawRecords returns the pieces and junctions of noise affecting structures that intersect the chunk.
	JigsawRecords(pos ChunkPos) []JigsawRecord
	// StructureStart reports if a structure start lies in the chunk passed, considering only spacing
	// settings and biomes. If so, the avoidance distance of the structure is returned.
	StructureStart(pos ChunkPos) (avoidDistance int, ok bool)
}

// NopStructures is a StructureSource without any structures.
type NopStructures struct{}

// JigsawRecords ...
func (NopStructures) JigsawRecords(ChunkPos) []JigsawRecord { return nil }

// StructureStart ...
func (NopStructures) StructureStart(ChunkPos) (int, bool) { return 0, false }
