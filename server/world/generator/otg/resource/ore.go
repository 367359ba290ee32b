package resource

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// Ore places veins of Material replacing any of the Sources.
type Ore struct {
	Frequency
	Material                 world.Material
	Size                     int
	MinAltitude, MaxAltitude int
	Sources                  []world.Material
}

func (o Ore) Spawn(r world.Region, rnd *rand.Random, unit world.ChunkPos) error {
	return o.attempts(rnd, unit, func(x, z int) error {
		y := int(rnd.Range(int32(o.MinAltitude), int32(o.MaxAltitude)))
		o.place(r, rnd, unit, mgl64.Vec3{float64(x), float64(y), float64(z)})
		return nil
	})
}

func (o Ore) place(r world.Region, rnd *rand.Random, unit world.ChunkPos, vec mgl64.Vec3) {
	size := float64(o.Size)
	angle := rnd.Float64() * math.Pi
	offset := mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(size / 8)
	from := mgl64.Vec3{vec[0] + offset[0], vec[1] + float64(rnd.Int31n(3)) - 2, vec[2] + offset[1]}
	to := mgl64.Vec3{vec[0] - offset[0], vec[1] + float64(rnd.Int31n(3)) - 2, vec[2] - offset[1]}

	for i := float64(0); i <= size; i++ {
		seed := from.Add(to.Sub(from).Mul(i / size))
		radius := ((math.Sin(i*math.Pi/size)+1)*rnd.Float64()*size/16 + 1) / 2

		start := mgl64.Vec3{math.Floor(seed[0] - radius), math.Floor(seed[1] - radius), math.Floor(seed[2] - radius)}
		end := mgl64.Vec3{math.Floor(seed[0] + radius), math.Floor(seed[1] + radius), math.Floor(seed[2] + radius)}

		for xx := start[0]; xx <= end[0]; xx++ {
			sx := (xx + 0.5 - seed[0]) / radius
			sx *= sx
			if sx >= 1 {
				continue
			}
			for yy := start[1]; yy <= end[1]; yy++ {
				sy := (yy + 0.5 - seed[1]) / radius
				sy *= sy
				if yy <= 0 || sx+sy >= 1 {
					continue
				}
				for zz := start[2]; zz <= end[2]; zz++ {
					sz := (zz + 0.5 - seed[2]) / radius
					sz *= sz
					if sx+sy+sz >= 1 {
						continue
					}
					bx, by, bz := int(xx), int(yy), int(zz)
					if !InArea(unit, bx, bz) {
						continue
					}
					if contains(o.Sources, r.Material(bx, by, bz)) {
						r.SetMaterial(bx, by, bz, o.Material)
					}
				}
			}
		}
	}
}

func (o Ore) String() string {
	return fmt.Sprintf("Ore(%v,%v,%v,%v,%v,%v)", o.Material, o.Size, o.Frequency.Frequency, o.Rarity, o.MinAltitude, o.MaxAltitude)
}
