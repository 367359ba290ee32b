package world

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// ChunkSize is the width and depth of a chunk in blocks.
const ChunkSize = 16

// ChunkPos holds the position of a chunk. The type is provided as a utility struct for keeping track of a
// chunk's position. Chunks do not themselves keep track of that. Chunk positions are different from block
// positions in the way that increasing the X/Z by one means increasing the absolute value on the X/Z axis in
// terms of blocks by 16.
type ChunkPos [2]int32

// String implements fmt.Stringer.
func (p ChunkPos) String() string {
	return fmt.Sprintf("(%v, %v)", p[0], p[1])
}

// X returns the X coordinate of the chunk position.
func (p ChunkPos) X() int32 {
	return p[0]
}

// Z returns the Z coordinate of the chunk position.
func (p ChunkPos) Z() int32 {
	return p[1]
}

// BlockX returns the X coordinate of the first block in the chunk.
func (p ChunkPos) BlockX() int {
	return int(p[0]) << 4
}

// BlockZ returns the Z coordinate of the first block in the chunk.
func (p ChunkPos) BlockZ() int {
	return int(p[1]) << 4
}

// Add returns the chunk position offset by dx and dz chunks.
func (p ChunkPos) Add(dx, dz int32) ChunkPos {
	return ChunkPos{p[0] + dx, p[1] + dz}
}

// Key packs the position into a single int64, usable as a key for integer maps.
func (p ChunkPos) Key() int64 {
	return int64(p[0])<<32 | int64(uint32(p[1]))
}

// ChunkPosFromKey unpacks a key produced by ChunkPos.Key.
func ChunkPosFromKey(k int64) ChunkPos {
	return ChunkPos{int32(k >> 32), int32(uint32(k))}
}

// ChunkPosFromBlock returns the position of the chunk that holds the block at x, z.
func ChunkPosFromBlock(x, z int) ChunkPos {
	return ChunkPos{int32(x >> 4), int32(z >> 4)}
}

// BlockPos2D is the horizontal position of a block column.
type BlockPos2D [2]int

// Chunk returns the position of the chunk holding the column.
func (p BlockPos2D) Chunk() ChunkPos {
	return ChunkPosFromBlock(p[0], p[1])
}

// Local returns the column's coordinates relative to its chunk.
func (p BlockPos2D) Local() (x, z int) {
	return p[0] & 0xf, p[1] & 0xf
}

// FloorDiv divides a by b rounding towards negative infinity.
func FloorDiv[T constraints.Integer](a, b T) T {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod returns the modulus of a and b with the sign of b.
func FloorMod[T constraints.Integer](a, b T) T {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
