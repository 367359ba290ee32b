// Package carver carves caves and ravines out of base terrain. Carvers started in the chunks around a chunk
// may reach into it, so every chunk replays the carvers of its neighbourhood and only writes to itself.
package carver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/preset"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// reach is the distance in chunks from which carvers may reach into a chunk.
const reach = 8

const lavaLevel = 10

// Carver carves the chunks of a world. It is immutable and safe for concurrent use.
type Carver struct {
	seed int64
	cfg  preset.WorldConfig
}

// New creates a Carver for the world seed and config passed.
func New(seed int64, cfg preset.WorldConfig) *Carver {
	return &Carver{seed: seed, cfg: cfg}
}

// Carve carves the caves and ravines that reach into the chunk of t.
func (c *Carver) Carve(t *world.Terrain) {
	if !c.cfg.Caves && !c.cfg.Ravines {
		return
	}
	pos := t.Pos()
	r := rand.NewRandom(0)
	for dx := int32(-reach); dx <= reach; dx++ {
		for dz := int32(-reach); dz <= reach; dz++ {
			from := pos.Add(dx, dz)
			if c.cfg.Caves {
				r.CarverSeed(c.seed, from.X(), from.Z())
				c.caves(r, from, t)
			}
			if c.cfg.Ravines {
				// Ravines use their own stream so that toggling caves does not move them.
				r.CarverSeed(c.seed^0x5a17, from.X(), from.Z())
				c.ravines(r, from, t)
			}
		}
	}
}

func (c *Carver) caves(r *rand.Random, from world.ChunkPos, t *world.Terrain) {
	if c.cfg.CaveFrequency <= 0 {
		return
	}
	n := r.Intn(r.Intn(r.Intn(c.cfg.CaveFrequency)+1) + 1)
	if r.Intn(100) >= c.cfg.CaveRarity {
		n = 0
	}
	maxY := min(c.cfg.HeightCap-8, 120)
	for i := 0; i < n; i++ {
		start := mgl64.Vec3{
			float64(from.BlockX() + r.Intn(16)),
			float64(r.Intn(r.Intn(maxY)+8)),
			float64(from.BlockZ() + r.Intn(16)),
		}
		tunnels := 1
		if r.Intn(4) == 0 {
			w := tunnel{pos: start, width: 1 + float64(r.Float32())*6, start: -1, end: -1, heightRatio: 0.5}
			w.carve(rand.NewRandom(r.Int63()), t, false)
			tunnels += r.Intn(4)
		}
		for j := 0; j < tunnels; j++ {
			w := tunnel{
				pos:         start,
				yaw:         float64(r.Float32()) * math.Pi * 2,
				pitch:       float64(r.Float32()-0.5) * 2 / 8,
				width:       float64(r.Float32()*2 + r.Float32()),
				heightRatio: 1,
			}
			if r.Intn(10) == 0 {
				w.width *= float64(r.Float32()*r.Float32()*3 + 1)
			}
			w.carve(rand.NewRandom(r.Int63()), t, false)
		}
	}
}

func (c *Carver) ravines(r *rand.Random, from world.ChunkPos, t *world.Terrain) {
	if r.Intn(100) >= c.cfg.RavineRarity {
		return
	}
	w := tunnel{
		pos: mgl64.Vec3{
			float64(from.BlockX() + r.Intn(16)),
			float64(r.Intn(r.Intn(40)+8) + 20),
			float64(from.BlockZ() + r.Intn(16)),
		},
		yaw:         float64(r.Float32()) * math.Pi * 2,
		pitch:       float64(r.Float32()-0.5) * 2 / 8,
		heightRatio: 3,
	}
	w.width = float64(r.Float32()*2+r.Float32()) * 2
	w.carve(rand.NewRandom(r.Int63()), t, true)
}

// tunnel is a single worm carving through terrain.
type tunnel struct {
	pos         mgl64.Vec3
	width       float64
	yaw, pitch  float64
	start, end  int
	heightRatio float64
}

func (w tunnel) carve(r *rand.Random, t *world.Terrain, ravine bool) {
	pos := t.Pos()
	centre := mgl64.Vec2{float64(pos.BlockX() + 8), float64(pos.BlockZ() + 8)}
	if w.end <= 0 {
		n := reach*16 - 16
		w.end = n - r.Intn(n/4)
	}
	room := false
	if w.start == -1 {
		w.start = w.end / 2
		room = true
	}

	var widths []float64
	if ravine {
		widths = make([]float64, t.Height())
		f := 1.0
		for y := range widths {
			if y == 0 || r.Intn(3) == 0 {
				f = 1 + float64(r.Float32()*r.Float32())
			}
			widths[y] = f * f
		}
	}

	branch := r.Intn(w.end/2) + w.end/4
	steep := r.Intn(6) == 0
	var yawTurn, pitchTurn float64
	for ; w.start < w.end; w.start++ {
		rx := 1.5 + math.Sin(float64(w.start)*math.Pi/float64(w.end))*w.width
		ry := rx * w.heightRatio
		if ravine {
			rx *= float64(r.Float32())*0.25 + 0.75
			ry *= float64(r.Float32())*0.25 + 0.75
		}
		cos := math.Cos(w.pitch)
		w.pos = w.pos.Add(mgl64.Vec3{math.Cos(w.yaw) * cos, math.Sin(w.pitch), math.Sin(w.yaw) * cos})

		if ravine {
			w.pitch *= 0.7
			w.pitch += pitchTurn * 0.05
			w.yaw += yawTurn * 0.05
			pitchTurn *= 0.8
			yawTurn *= 0.5
		} else {
			if steep {
				w.pitch *= 0.92
			} else {
				w.pitch *= 0.7
			}
			w.pitch += pitchTurn * 0.1
			w.yaw += yawTurn * 0.1
			pitchTurn *= 0.9
			yawTurn *= 0.75
		}
		pitchTurn += float64((r.Float32()-r.Float32())*r.Float32()) * 2
		yawTurn += float64((r.Float32()-r.Float32())*r.Float32()) * 4

		if !ravine && !room && w.start == branch && w.width > 1 && w.end > 0 {
			for _, side := range [2]float64{-1, 1} {
				sub := tunnel{
					pos:         w.pos,
					width:       float64(r.Float32())*0.5 + 0.5,
					yaw:         w.yaw + side*math.Pi/2,
					pitch:       w.pitch / 3,
					start:       w.start,
					end:         w.end,
					heightRatio: 1,
				}
				sub.carve(rand.NewRandom(r.Int63()), t, false)
			}
			return
		}
		if !room && r.Intn(4) == 0 {
			continue
		}

		left := float64(w.end - w.start)
		limit := w.width + 2 + 16
		if d := (mgl64.Vec2{w.pos.X(), w.pos.Z()}).Sub(centre); d.LenSqr()-left*left > limit*limit {
			return
		}
		if w.pos.X() < centre.X()-16-rx*2 || w.pos.Z() < centre.Y()-16-rx*2 ||
			w.pos.X() > centre.X()+16+rx*2 || w.pos.Z() > centre.Y()+16+rx*2 {
			continue
		}
		carveEllipsoid(t, w.pos, rx, ry, widths)
		if room {
			return
		}
	}
}

// carveEllipsoid removes the blocks of t within the ellipsoid around p with horizontal radius rx and
// vertical radius ry. Ravines pass the squared width factor of every y level in widths.
func carveEllipsoid(t *world.Terrain, p mgl64.Vec3, rx, ry float64, widths []float64) {
	pos := t.Pos()
	bx, bz := pos.BlockX(), pos.BlockZ()
	x0 := max(int(math.Floor(p.X()-rx))-bx-1, 0)
	x1 := min(int(math.Floor(p.X()+rx))-bx+1, 16)
	y0 := max(int(math.Floor(p.Y()-ry))-1, 1)
	y1 := min(int(math.Floor(p.Y()+ry))+1, t.Height()-8)
	z0 := max(int(math.Floor(p.Z()-rx))-bz-1, 0)
	z1 := min(int(math.Floor(p.Z()+rx))-bz+1, 16)
	if x0 >= x1 || y0 >= y1 || z0 >= z1 || touchesWater(t, x0, x1, y0, y1, z0, z1) {
		return
	}
	for x := x0; x < x1; x++ {
		dx := (float64(x+bx) + 0.5 - p.X()) / rx
		for z := z0; z < z1; z++ {
			dz := (float64(z+bz) + 0.5 - p.Z()) / rx
			if dx*dx+dz*dz >= 1 {
				continue
			}
			for y := y1 - 1; y >= y0; y-- {
				dy := (float64(y) + 0.5 - p.Y()) / ry
				if widths != nil {
					if (dx*dx+dz*dz)*widths[y]+dy*dy/6 >= 1 {
						continue
					}
				} else if dy <= -0.7 || dx*dx+dy*dy+dz*dz >= 1 {
					continue
				}
				carveBlock(t, x, y, z)
			}
		}
	}
}

func touchesWater(t *world.Terrain, x0, x1, y0, y1, z0, z1 int) bool {
	for x := x0; x < x1; x++ {
		for z := z0; z < z1; z++ {
			for y := y1; y >= y0-1; y-- {
				if t.Material(x, y, z).Liquid() && t.Material(x, y, z) != world.Lava {
					return true
				}
				// Only the shell of the box needs checking.
				if y != y0-1 && x != x0 && x != x1-1 && z != z0 && z != z1-1 {
					y = y0
				}
			}
		}
	}
	return false
}

func carveBlock(t *world.Terrain, x, y, z int) {
	m := t.Material(x, y, z)
	if m == world.Bedrock || m == world.Air || m.Liquid() {
		return
	}
	if y < lavaLevel {
		t.SetMaterial(x, y, z, world.Lava)
		return
	}
	t.SetMaterial(x, y, z, world.Air)
	if m == world.Grass && t.Material(x, y-1, z) == world.Dirt {
		t.SetMaterial(x, y-1, z, world.Grass)
	}
}
