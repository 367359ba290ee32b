package density

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/otgmc/otg/server/world"
)

// Field is the sampled density of a single chunk. It is not modified after SampleColumn returns and may be
// read from several goroutines.
type Field struct {
	pos              world.ChunkPos
	res, resY, cells int
	ySize            int
	// values holds ySize samples per coarse column, columns ordered by cx*(cells+1)+cz.
	values  []float64
	records []world.JigsawRecord
}

// Pos returns the position of the chunk the field was sampled for.
func (f *Field) Pos() world.ChunkPos {
	return f.pos
}

func (f *Field) column(cx, cz int) []float64 {
	i := (cx*(f.cells+1) + cz) * f.ySize
	return f.values[i : i+f.ySize : i+f.ySize]
}

// Column returns the coarse column at cx, cz, relative to the chunk corner. cx and cz range from 0 up to
// and including 16/NoiseResolutionXZ.
func (f *Field) Column(cx, cz int) Column {
	v := make([]float64, f.ySize)
	copy(v, f.column(cx, cz))
	return Column{
		X: f.pos.BlockX()/f.res + cx, Z: f.pos.BlockZ()/f.res + cz,
		ResolutionXZ: f.res, ResolutionY: f.resY,
		Values: v,
	}
}

// Interpolate returns the density at the chunk local block position passed, interpolated from the eight
// surrounding coarse samples. Interpolation runs along y first, then x, then z.
func (f *Field) Interpolate(x, y, z int) float64 {
	cx, cy, cz := x/f.res, y/f.resY, z/f.res
	fx := float64(x%f.res) / float64(f.res)
	fy := float64(y%f.resY) / float64(f.resY)
	fz := float64(z%f.res) / float64(f.res)

	c00, c10 := f.column(cx, cz), f.column(cx+1, cz)
	c01, c11 := f.column(cx, cz+1), f.column(cx+1, cz+1)
	return lerp3(fy, fx, fz,
		c00[cy], c00[cy+1], c10[cy], c10[cy+1],
		c01[cy], c01[cy+1], c11[cy], c11[cy+1])
}

// Density returns the final density at the chunk local block position passed: the interpolated noise,
// squashed into [-1, 1], plus the bias of the jigsaw records of the field.
func (f *Field) Density(x, y, z int) float64 {
	d := math.Max(-1, math.Min(1, f.Interpolate(x, y, z)/200))
	d = d/2 - d*d*d/24
	if len(f.records) == 0 {
		return d
	}
	bx, bz := f.pos.BlockX()+x, f.pos.BlockZ()+z
	for _, r := range f.records {
		if r.Junction {
			d += beardContribution(bx-r.JunctionX, y-r.JunctionY, bz-r.JunctionZ) * 0.4
			continue
		}
		dx := max(0, r.MinX-bx, bx-r.MaxX)
		dz := max(0, r.MinZ-bz, bz-r.MaxZ)
		ground := r.MinY
		if r.Rigid {
			ground += r.GroundLevelDelta
		}
		d += beardContribution(dx, y-ground, dz) * 0.8
	}
	return d
}

// lerp3 interpolates between eight samples: the first argument is the fraction along y, the second along x
// and the third along z. Samples are passed as pairs of the lower and upper y.
func lerp3(fy, fx, fz, x0z0y0, x0z0y1, x1z0y0, x1z0y1, x0z1y0, x0z1y1, x1z1y0, x1z1y1 float64) float64 {
	x0z0 := lerp(fy, x0z0y0, x0z0y1)
	x1z0 := lerp(fy, x1z0y0, x1z0y1)
	x0z1 := lerp(fy, x0z1y0, x0z1y1)
	x1z1 := lerp(fy, x1z1y0, x1z1y1)
	return lerp(fz, lerp(fx, x0z0, x1z0), lerp(fx, x0z1, x1z1))
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

const (
	beardRadius = 12
	beardSize   = beardRadius * 2
)

var beardKernel = sync.OnceValue(func() []float64 {
	k := make([]float64, beardSize*beardSize*beardSize)
	for z := 0; z < beardSize; z++ {
		for x := 0; x < beardSize; x++ {
			for y := 0; y < beardSize; y++ {
				k[z*beardSize*beardSize+x*beardSize+y] = computeBeard(x-beardRadius, y-beardRadius, z-beardRadius)
			}
		}
	}
	return k
})

// beardContribution returns the density bias at an offset from a structure piece. Offsets outside of the
// kernel contribute nothing.
func beardContribution(x, y, z int) float64 {
	x, y, z = x+beardRadius, y+beardRadius, z+beardRadius
	if x < 0 || x >= beardSize || y < 0 || y >= beardSize || z < 0 || z >= beardSize {
		return 0
	}
	return beardKernel()[z*beardSize*beardSize+x*beardSize+y]
}

func computeBeard(x, y, z int) float64 {
	horizontal := mgl64.Vec2{float64(x), float64(z)}.LenSqr()
	dy := float64(y) + 0.5
	falloff := math.Exp(-(dy*dy/16 + horizontal/16))
	return -dy / math.Sqrt(dy*dy/2+horizontal/2) / 2 * falloff
}
