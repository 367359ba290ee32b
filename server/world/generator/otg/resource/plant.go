package resource

import (
	"fmt"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// Plant places single plants between MinAltitude and MaxAltitude on top of any of the Sources.
type Plant struct {
	Frequency
	Plant                    world.Material
	MinAltitude, MaxAltitude int
	Sources                  []world.Material
}

func (p Plant) Spawn(r world.Region, rnd *rand.Random, unit world.ChunkPos) error {
	return p.attempts(rnd, unit, func(x, z int) error {
		y := int(rnd.Range(int32(p.MinAltitude), int32(p.MaxAltitude)))
		if !r.Material(x, y, z).IsAir() || !contains(p.Sources, r.Material(x, y-1, z)) {
			return nil
		}
		r.SetMaterial(x, y, z, p.Plant)
		return nil
	})
}

func (p Plant) String() string {
	return fmt.Sprintf("Plant(%v,%v,%v,%v,%v)", p.Plant, p.Frequency.Frequency, p.Rarity, p.MinAltitude, p.MaxAltitude)
}

// Grass places plants on the highest block of a column if that block is one of the Sources.
type Grass struct {
	Frequency
	Plant   world.Material
	Sources []world.Material
}

func (g Grass) Spawn(r world.Region, rnd *rand.Random, unit world.ChunkPos) error {
	return g.attempts(rnd, unit, func(x, z int) error {
		if y, ok := g.highestWorkableBlock(r, x, z); ok {
			r.SetMaterial(x, y, z, g.Plant)
		}
		return nil
	})
}

func (g Grass) highestWorkableBlock(r world.Region, x, z int) (int, bool) {
	top := r.HighestBlockY(x, z)
	if top < 0 || top+1 >= r.HeightCap() {
		return 0, false
	}
	if contains(g.Sources, r.Material(x, top, z)) {
		return top + 1, true
	}
	return 0, false
}

func (g Grass) String() string {
	return fmt.Sprintf("Grass(%v,%v,%v)", g.Plant, g.Frequency.Frequency, g.Rarity)
}
