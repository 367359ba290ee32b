// Package density computes the density field terrain is carved from. Density is sampled on a coarse grid
// and interpolated to block resolution; positive density is solid.
package density

import (
	"math"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
	"github.com/otgmc/otg/server/world/generator/otg/noise"
	"github.com/otgmc/otg/server/world/generator/otg/preset"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// BiomeSource resolves the biome at noise coordinates, one per 4 blocks.
type BiomeSource interface {
	NoiseBiome(x4, z4 int) *biome.Biome
}

const (
	coordinateScale  = 684.412
	heightScale      = 684.412
	mainNoiseScaleX  = 80.0
	mainNoiseScaleY  = 160.0
	mainNoiseScaleZ  = 80.0
	limitScale       = 512.0
	baseSize         = 8.5
	stretchY         = 12.0
	depthNoiseScale  = 200.0
	depthNoiseYScale = 8000.0
)

// Column is the density of a single coarse column: one value per NoiseResolutionY blocks, from y 0 up to and
// including the height cap.
type Column struct {
	X, Z                      int
	ResolutionXZ, ResolutionY int
	Values                    []float64
}

// Sampler samples the density of a world. It is immutable and safe for concurrent use.
type Sampler struct {
	seed   int64
	cfg    preset.WorldConfig
	biomes BiomeSource

	minLimit, maxLimit, main, depth *noise.Octaves

	parabolic [25]float64
	// cells is the number of coarse cells per chunk on the horizontal axes, ySize the number of samples in a
	// column.
	cells, ySize int
}

// NewSampler creates the density sampler of a world. cfg must have been validated.
func NewSampler(seed int64, cfg preset.WorldConfig, biomes BiomeSource) *Sampler {
	r := rand.NewRandom(seed)
	s := &Sampler{
		seed:     seed,
		cfg:      cfg,
		biomes:   biomes,
		minLimit: noise.NewOctaves(r, 16),
		maxLimit: noise.NewOctaves(r, 16),
		main:     noise.NewOctaves(r, 8),
		depth:    noise.NewOctaves(r, 16),
		cells:    16 / cfg.NoiseResolutionXZ,
		ySize:    cfg.HeightCap/cfg.NoiseResolutionY + 1,
	}
	for dx := -2; dx <= 2; dx++ {
		for dz := -2; dz <= 2; dz++ {
			s.parabolic[(dx+2)+(dz+2)*5] = 10 / math.Sqrt(float64(dx*dx+dz*dz)+0.2)
		}
	}
	return s
}

// Config returns the world config the sampler was created with.
func (s *Sampler) Config() preset.WorldConfig {
	return s.cfg
}

// biomeAt returns the biome of the coarse column at nx, nz.
func (s *Sampler) biomeAt(nx, nz int) *biome.Biome {
	res := s.cfg.NoiseResolutionXZ
	return s.biomes.NoiseBiome(world.FloorDiv(nx*res, 4), world.FloorDiv(nz*res, 4))
}

// Column samples the density of the coarse column at nx, nz, where a coarse column is NoiseResolutionXZ
// blocks wide.
func (s *Sampler) Column(nx, nz int) Column {
	col := Column{
		X: nx, Z: nz,
		ResolutionXZ: s.cfg.NoiseResolutionXZ,
		ResolutionY:  s.cfg.NoiseResolutionY,
		Values:       make([]float64, s.ySize),
	}
	s.fillColumn(col.Values, nx, nz)
	return col
}

func (s *Sampler) fillColumn(dst []float64, nx, nz int) {
	// Blend the height and volatility of the surrounding biomes, weighing closer biomes and lower biomes
	// more.
	centre := s.biomeAt(nx, nz)
	var scale, depth, weight float64
	for dx := -2; dx <= 2; dx++ {
		for dz := -2; dz <= 2; dz++ {
			b := s.biomeAt(nx+dx, nz+dz)
			w := s.parabolic[(dx+2)+(dz+2)*5] / (b.Height + 2)
			if b.Height > centre.Height {
				w /= 2
			}
			scale += b.Volatility * w
			depth += b.Height * w
			weight += w
		}
	}
	scale = (scale/weight)*0.9 + 0.1
	depth = (depth/weight*4 - 1) / 8

	d := s.depth.Sample2(float64(nx), float64(nz), depthNoiseScale, depthNoiseScale) / depthNoiseYScale
	if d < 0 {
		d = -d * 0.3
	}
	d = d*3 - 2
	if d < 0 {
		d = max(d/2, -1) / 1.4 / 2
	} else {
		d = min(d, 1) / 8
	}
	depth += d * 0.2
	depth = depth * baseSize / 8
	base := baseSize + depth*4

	h, v := coordinateScale*s.cfg.FractureHorizontal, heightScale*s.cfg.FractureVertical
	resY := float64(s.cfg.NoiseResolutionY)
	fadeStart := s.ySize - 4
	for y := 0; y < s.ySize; y++ {
		// Offsets are computed in units of 8 blocks, so that the terrain shape does not depend on the
		// vertical resolution.
		yb := float64(y) * resY / 8
		offset := (yb - base) * stretchY * 128 / 256 / scale
		if offset < 0 {
			offset *= 4
		}

		fy := float64(y) * resY / 8
		low := s.minLimit.Sample3(float64(nx), fy, float64(nz), h, v, h) / limitScale
		high := s.maxLimit.Sample3(float64(nx), fy, float64(nz), h, v, h) / limitScale
		sel := (s.main.Sample3(float64(nx), fy, float64(nz), h/mainNoiseScaleX, v/mainNoiseScaleY, h/mainNoiseScaleZ)/10 + 1) / 2

		var val float64
		switch {
		case sel < 0:
			val = low
		case sel > 1:
			val = high
		default:
			val = low + (high-low)*sel
		}
		val -= offset
		if y > fadeStart {
			f := float64(y-fadeStart) / 3
			val = val*(1-f) - 10*f
		}
		dst[y] = val
	}
}

// SampleColumn samples the coarse columns of the chunk at pos, including those on its positive edges. The
// structure records passed are folded into Field.Density. Passing no records is only valid if no noise
// affecting structure intersects the chunk.
func (s *Sampler) SampleColumn(pos world.ChunkPos, records []world.JigsawRecord) *Field {
	n := s.cells + 1
	f := &Field{
		pos:     pos,
		res:     s.cfg.NoiseResolutionXZ,
		resY:    s.cfg.NoiseResolutionY,
		cells:   s.cells,
		ySize:   s.ySize,
		values:  make([]float64, n*n*s.ySize),
		records: records,
	}
	nx, nz := pos.BlockX()/f.res, pos.BlockZ()/f.res
	for cx := 0; cx < n; cx++ {
		for cz := 0; cz < n; cz++ {
			s.fillColumn(f.column(cx, cz), nx+cx, nz+cz)
		}
	}
	return f
}

// State returns the material a density at y turns into before surface blocks are placed.
func State(density float64, y, waterLevel int) world.Material {
	switch {
	case density > 0:
		return world.Stone
	case y < waterLevel:
		return world.Water
	}
	return world.Air
}

// HeightAt walks the coarse columns around the block column at x, z from the top down, interpolating the
// density within each band of NoiseResolutionY blocks. It returns the heightmap value of the first block whose
// state satisfies pred: its y plus one, or 0 if no block does. Noise affecting structures are not taken
// into account.
func (s *Sampler) HeightAt(x, z int, pred func(world.Material) bool) int {
	res, resY := s.cfg.NoiseResolutionXZ, s.cfg.NoiseResolutionY
	nx, nz := world.FloorDiv(x, res), world.FloorDiv(z, res)
	fx := float64(world.FloorMod(x, res)) / float64(res)
	fz := float64(world.FloorMod(z, res)) / float64(res)

	c00, c10 := make([]float64, s.ySize), make([]float64, s.ySize)
	c01, c11 := make([]float64, s.ySize), make([]float64, s.ySize)
	s.fillColumn(c00, nx, nz)
	s.fillColumn(c10, nx+1, nz)
	s.fillColumn(c01, nx, nz+1)
	s.fillColumn(c11, nx+1, nz+1)

	for cy := s.ySize - 2; cy >= 0; cy-- {
		for yy := resY - 1; yy >= 0; yy-- {
			fy := float64(yy) / float64(resY)
			d := lerp3(fy, fx, fz,
				c00[cy], c00[cy+1], c10[cy], c10[cy+1],
				c01[cy], c01[cy+1], c11[cy], c11[cy+1])
			y := cy*resY + yy
			if pred(State(d, y, s.cfg.WaterLevel)) {
				return y + 1
			}
		}
	}
	return 0
}
