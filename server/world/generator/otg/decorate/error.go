package decorate

import (
	"fmt"

	"github.com/otgmc/otg/server/world"
)

// Error is returned by Decorate if placing a resource failed. It holds what is needed to reproduce the
// failure.
type Error struct {
	// Unit is the chunk position of the unit that was decorated.
	Unit world.ChunkPos
	// X and Z are the block coordinates of the centre of the unit.
	X, Z int
	// WorldSeed is the seed of the world and Seed the decoration seed derived for the unit.
	WorldSeed, Seed int64
	// Biome is the name of the biome whose resources were placed.
	Biome string
	// Resource describes the resource that failed. It is empty if the failure could not be attributed.
	Resource string
	// Stack is the stack trace of a panic, if the resource panicked.
	Stack []byte
	Err   error
}

func (e *Error) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("decorate unit %v (block %v, %v, world seed %v, decoration seed %v) biome %v: %v", e.Unit, e.X, e.Z, e.WorldSeed, e.Seed, e.Biome, e.Err)
	}
	return fmt.Sprintf("decorate unit %v (block %v, %v, world seed %v, decoration seed %v) biome %v resource %v: %v", e.Unit, e.X, e.Z, e.WorldSeed, e.Seed, e.Biome, e.Resource, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
