package density_test

import (
	"math"
	"testing"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
	"github.com/otgmc/otg/server/world/generator/otg/density"
	"github.com/otgmc/otg/server/world/generator/otg/preset"
)

// checker alternates between a low and a high biome every 16 blocks.
type checker struct {
	low, high *biome.Biome
}

func (c checker) NoiseBiome(x4, z4 int) *biome.Biome {
	if (world.FloorDiv(x4, 4)+world.FloorDiv(z4, 4))&1 == 0 {
		return c.low
	}
	return c.high
}

func newSampler(seed int64) *density.Sampler {
	return density.NewSampler(seed, preset.DefaultWorldConfig(), checker{
		low:  &biome.Biome{Height: 0.1, Volatility: 0.2},
		high: &biome.Biome{Height: 1, Volatility: 0.5},
	})
}

func sameBits(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}

func TestColumnIsDeterministic(t *testing.T) {
	a, b := newSampler(12345), newSampler(12345)
	first := a.Column(3, -7)
	for i := 0; i < 100; i++ {
		a.Column(i*13, -i*5)
	}
	if !sameBits(first.Values, a.Column(3, -7).Values) {
		t.Fatalf("column changed after sampling other columns")
	}
	if !sameBits(first.Values, b.Column(3, -7).Values) {
		t.Fatalf("column differs between samplers with the same seed")
	}
	if sameBits(first.Values, newSampler(54321).Column(3, -7).Values) {
		t.Fatalf("column equal for different seeds")
	}
	if len(first.Values) != 256/8+1 || first.ResolutionXZ != 4 || first.ResolutionY != 8 {
		t.Fatalf("unexpected column shape: %v values at resolution %v/%v", len(first.Values), first.ResolutionXZ, first.ResolutionY)
	}
}

func TestDeepestBiomeGivesFiniteDensity(t *testing.T) {
	if _, err := biome.NewRegistry([]biome.Config{{Name: "Trench", Height: -2, Rarity: 100}}, "Trench", 256); err == nil {
		t.Fatalf("expected a height of -2 to be refused")
	}
	reg, err := biome.NewRegistry([]biome.Config{
		{Name: "Trench", Height: -1.999, Volatility: 0.1, Rarity: 100},
		{Name: "Hills", Height: 1, Volatility: 0.5, Rarity: 100},
	}, "Trench", 256)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	trench, _ := reg.ByName("Trench")
	hills, _ := reg.ByName("Hills")
	s := density.NewSampler(7, preset.DefaultWorldConfig(), checker{low: trench, high: hills})
	for _, c := range [][2]int{{0, 0}, {2, 3}, {4, 0}, {-9, 13}} {
		for y, v := range s.Column(c[0], c[1]).Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("column %v: density at y %v is %v", c, y*8, v)
			}
		}
	}
}

func TestFieldColumnsMatchSampler(t *testing.T) {
	s := newSampler(1)
	pos := world.ChunkPos{-2, 5}
	f := s.SampleColumn(pos, nil)
	for cx := 0; cx <= 4; cx++ {
		for cz := 0; cz <= 4; cz++ {
			got := f.Column(cx, cz)
			want := s.Column(pos.BlockX()/4+cx, pos.BlockZ()/4+cz)
			if got.X != want.X || got.Z != want.Z || !sameBits(got.Values, want.Values) {
				t.Fatalf("column %v %v of field differs from sampler", cx, cz)
			}
		}
	}
}

func TestInterpolate(t *testing.T) {
	s := newSampler(99)
	f := s.SampleColumn(world.ChunkPos{0, 0}, nil)

	// Corners of coarse cells take the sampled value exactly.
	for cx := 0; cx < 4; cx++ {
		for cz := 0; cz < 4; cz++ {
			col := f.Column(cx, cz).Values
			for cy := 0; cy < 32; cy++ {
				if got := f.Interpolate(cx*4, cy*8, cz*4); got != col[cy] {
					t.Fatalf("corner (%v, %v, %v): expected %v, got %v", cx, cy, cz, col[cy], got)
				}
			}
		}
	}

	// The centre of a cell is the mean of its eight corners.
	c00, c10, c01, c11 := f.Column(1, 2).Values, f.Column(2, 2).Values, f.Column(1, 3).Values, f.Column(2, 3).Values
	want := (c00[5] + c00[6] + c10[5] + c10[6] + c01[5] + c01[6] + c11[5] + c11[6]) / 8
	if got := f.Interpolate(6, 44, 10); math.Abs(got-want) > 1e-9 {
		t.Fatalf("cell centre: expected %v, got %v", want, got)
	}
}

func TestHeightAtMatchesFill(t *testing.T) {
	s := newSampler(12345)
	for _, pos := range []world.ChunkPos{{0, 0}, {-1, 3}, {7, -9}} {
		f := s.SampleColumn(pos, nil)
		tr := world.NewTerrain(pos, 256)
		f.Fill(tr, 63, func(int, int) (world.Material, world.Material) { return world.Stone, world.Water })

		for x := 0; x < 16; x++ {
			for z := 0; z < 16; z++ {
				want := 0
				for y := 255; y >= 0; y-- {
					if tr.Material(x, y, z) == world.Stone {
						want = y + 1
						break
					}
				}
				got := s.HeightAt(pos.BlockX()+x, pos.BlockZ()+z, func(m world.Material) bool { return m == world.Stone })
				if got != want {
					t.Fatalf("chunk %v column %v %v: expected height %v, got %v", pos, x, z, want, got)
				}
				if h := tr.HeightAt(x, z); h < want {
					t.Fatalf("chunk %v column %v %v: heightmap %v below stone height %v", pos, x, z, h, want)
				}
			}
		}
	}
}

func TestHeightAtWithoutMatch(t *testing.T) {
	s := newSampler(3)
	if got := s.HeightAt(10, 10, func(world.Material) bool { return false }); got != 0 {
		t.Fatalf("expected 0 without a match, got %v", got)
	}
}

func TestJigsawRecordsBiasDensity(t *testing.T) {
	s := newSampler(7)
	pos := world.ChunkPos{0, 0}
	piece := world.JigsawRecord{MinX: 4, MinY: 70, MinZ: 4, MaxX: 10, MaxY: 80, MaxZ: 10, Rigid: true, GroundLevelDelta: 1}
	plain := s.SampleColumn(pos, nil)
	biased := s.SampleColumn(pos, []world.JigsawRecord{piece})

	// Below the ground level of the piece terrain is pushed up, above it terrain is carved away.
	if below, base := biased.Density(6, 70, 6), plain.Density(6, 70, 6); below <= base {
		t.Fatalf("expected density below the piece to increase: %v <= %v", below, base)
	}
	if above, base := biased.Density(6, 73, 6), plain.Density(6, 73, 6); above >= base {
		t.Fatalf("expected density inside the piece to decrease: %v >= %v", above, base)
	}

	far := world.JigsawRecord{Junction: true, JunctionX: 200, JunctionY: 70, JunctionZ: 200}
	if got, want := s.SampleColumn(pos, []world.JigsawRecord{far}).Density(6, 70, 6), plain.Density(6, 70, 6); got != want {
		t.Fatalf("junction out of reach changed density: %v != %v", got, want)
	}
}
