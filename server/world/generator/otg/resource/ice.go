package resource

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// Iceberg places at most one iceberg of Material per unit, floating on the highest water in a column.
type Iceberg struct {
	Material world.Material
	Rarity   float64
}

func (i Iceberg) Spawn(r world.Region, rnd *rand.Random, unit world.ChunkPos) error {
	if rnd.Float64()*100 > i.Rarity {
		return nil
	}
	x, z := areaX(unit)+rnd.Intn(16), areaZ(unit)+rnd.Intn(16)
	y := r.HighestBlockY(x, z)
	if y < 0 || r.Material(x, y, z) != world.Water {
		return nil
	}
	radius := 3 + float64(rnd.Intn(4))
	above, below := 2+float64(rnd.Intn(6)), 3+float64(rnd.Intn(8))
	centre := mgl64.Vec3{float64(x), float64(y), float64(z)}

	for xx := x - int(radius); xx <= x+int(radius); xx++ {
		for zz := z - int(radius); zz <= z+int(radius); zz++ {
			if !InArea(unit, xx, zz) {
				continue
			}
			for yy := y - int(below); yy <= y+int(above); yy++ {
				d := mgl64.Vec3{float64(xx), float64(yy), float64(zz)}.Sub(centre)
				height := above
				if d[1] < 0 {
					height = below
				}
				if (d[0]*d[0]+d[2]*d[2])/(radius*radius)+d[1]*d[1]/(height*height) > 1 {
					continue
				}
				if m := r.Material(xx, yy, zz); m == world.Water || m == world.Air {
					r.SetMaterial(xx, yy, zz, i.Material)
				}
			}
		}
	}
	return nil
}

func (i Iceberg) String() string {
	return fmt.Sprintf("Iceberg(%v,%v)", i.Material, i.Rarity)
}

// Freeze runs the snow and ice pass over the decoration area of unit: water at the top of a cold column
// turns to ice and solid ground in a cold column gets a layer of snow. cold reports if the column at the
// absolute block coordinates x, z is cold enough.
func Freeze(r world.Region, unit world.ChunkPos, cold func(x, z int) bool) {
	bx, bz := areaX(unit), areaZ(unit)
	for x := bx; x < bx+16; x++ {
		for z := bz; z < bz+16; z++ {
			if !cold(x, z) {
				continue
			}
			y := r.HighestBlockY(x, z)
			if y < 0 || y+1 >= r.HeightCap() {
				continue
			}
			switch m := r.Material(x, y, z); {
			case m == world.Water:
				r.SetMaterial(x, y, z, world.Ice)
			case m.Solid() && r.Material(x, y+1, z).IsAir():
				r.SetMaterial(x, y+1, z, world.Snow)
			}
		}
	}
}
