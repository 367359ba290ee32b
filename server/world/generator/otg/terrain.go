package otg

import (
	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// BaseTerrain generates the undecorated terrain of the chunk at pos. The records passed bias the density
// field so that the terrain fits around noise affecting structures. BaseTerrain is a pure function of the
// world seed, the preset, pos and records.
func (g *Generator) BaseTerrain(pos world.ChunkPos, records []world.JigsawRecord) *world.Terrain {
	t := world.NewTerrain(pos, g.cfg.HeightCap)
	reg := g.biomes.Registry()
	ids := g.biomes.ChunkBiomes(pos)
	column := func(x, z int) *biome.Biome {
		return reg.Biome(ids[x<<4|z])
	}

	field := g.sampler.SampleColumn(pos, records)
	field.Fill(t, g.cfg.WaterLevel, func(x, z int) (world.Material, world.Material) {
		b := column(x, z)
		return b.Stone, b.Water
	})

	r := rand.NewRandom(0)
	r.ChunkSeed(pos.X(), pos.Z())
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			g.replaceBlocks(t, r, x, z, column(x, z))
		}
	}
	g.carver.Carve(t)
	return t
}

// replaceBlocks covers the stone of a column with the surface and ground blocks of its biome and places
// bedrock at the bottom. The top surface blocks of the column are replaced, as well as the first blocks below
// every cave or overhang.
func (g *Generator) replaceBlocks(t *world.Terrain, r *rand.Random, x, z int, b *biome.Biome) {
	water := g.cfg.WaterLevel
	depth := int(g.surface.Sample(t.Pos().BlockX()+x, t.Pos().BlockZ()+z)*1.5 + 3 + r.Float64()*0.25)

	top, fill := b.Surface, b.Ground
	run := -1
	for y := t.Height() - 1; y >= 0; y-- {
		if g.bedrock(r, y) {
			t.SetMaterial(x, y, z, world.Bedrock)
			continue
		}
		m := t.Material(x, y, z)
		if m == world.Air {
			run = -1
			continue
		}
		if m != b.Stone {
			continue
		}
		if run == -1 {
			if depth <= 0 {
				top, fill = world.Air, b.Stone
			} else if y >= water-4 && y <= water+1 {
				top, fill = b.Surface, b.Ground
			}
			if y < water && top == world.Air {
				top = b.Water
				if b.Cold() {
					top = b.Ice
				}
			}
			run = depth
			switch {
			case y >= water-1:
				t.SetMaterial(x, y, z, top)
			case y < water-7-depth:
				top, fill = world.Air, b.Stone
				t.SetMaterial(x, y, z, world.Gravel)
			default:
				t.SetMaterial(x, y, z, fill)
			}
			continue
		}
		if run > 0 {
			run--
			t.SetMaterial(x, y, z, fill)
			if run == 0 && fill == world.Sand {
				run = r.Intn(4)
				fill = world.Sandstone
			}
		}
	}
}

// bedrock reports if y holds bedrock. With flat bedrock only the bottom layer does, otherwise the bottom five
// layers do with decreasing chance.
func (g *Generator) bedrock(r *rand.Random, y int) bool {
	if g.cfg.FlatBedrock {
		return y == 0
	}
	return y <= r.Intn(5)
}
