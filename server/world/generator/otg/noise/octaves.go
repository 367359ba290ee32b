// Package noise provides the octave noise generators sampled by the density field and the surface pass.
package noise

import (
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// Octaves sums several layers of simplex noise. Octave i is sampled at frequency 1/2^i of the base frequency
// and weighted by 2^i, so low frequencies dominate the result. Octaves is safe for concurrent use once
// created.
type Octaves struct {
	layers []opensimplex.Noise
}

// NewOctaves creates n octaves, drawing the seed of every octave from r.
func NewOctaves(r *rand.Random, n int) *Octaves {
	o := &Octaves{layers: make([]opensimplex.Noise, n)}
	for i := range o.layers {
		o.layers[i] = opensimplex.New(r.Int63())
	}
	return o
}

// Sample3 samples the octaves at x, y, z, scaling the coordinates of every octave by sx, sy and sz.
func (o *Octaves) Sample3(x, y, z, sx, sy, sz float64) float64 {
	var (
		sum  float64
		freq = 1.0
	)
	for _, l := range o.layers {
		sum += l.Eval3(x*sx*freq, y*sy*freq, z*sz*freq) / freq
		freq /= 2
	}
	return sum
}

// Sample2 samples the octaves at x, z, scaling the coordinates of every octave by sx and sz.
func (o *Octaves) Sample2(x, z, sx, sz float64) float64 {
	var (
		sum  float64
		freq = 1.0
	)
	for _, l := range o.layers {
		sum += l.Eval2(x*sx*freq, z*sz*freq) / freq
		freq /= 2
	}
	return sum
}

// Surface is the two dimensional noise that varies the depth of surface and ground blocks from column to
// column.
type Surface struct {
	p *perlin.Perlin
}

// NewSurface creates surface noise seeded with the world seed passed.
func NewSurface(seed int64) *Surface {
	return &Surface{p: perlin.NewPerlin(2, 2, 4, seed)}
}

// Sample returns the surface noise at the block column x, z, roughly in [-1, 1].
func (s *Surface) Sample(x, z int) float64 {
	return s.p.Noise2D(float64(x)*0.0625, float64(z)*0.0625)
}
