package density

import "github.com/otgmc/otg/server/world"

// Fill writes the base terrain the field describes into t: blocks with positive density become the stone
// material of their column, other blocks below the water level the water material of their column. col
// returns those materials for the chunk local column x, z.
func (f *Field) Fill(t *world.Terrain, waterLevel int, col func(x, z int) (stone, water world.Material)) {
	height := min(t.Height(), (f.ySize-1)*f.resY)
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			stone, water := col(x, z)
			for y := 0; y < height; y++ {
				switch State(f.Density(x, y, z), y, waterLevel) {
				case world.Stone:
					t.SetMaterial(x, y, z, stone)
				case world.Water:
					t.SetMaterial(x, y, z, water)
				}
			}
		}
	}
}
