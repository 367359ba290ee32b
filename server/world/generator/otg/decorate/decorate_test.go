package decorate

import (
	"errors"
	"strings"
	"testing"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
	"github.com/otgmc/otg/server/world/generator/otg/resource"
	"github.com/otgmc/otg/server/world/generator/otg/structcache"
)

// counter is a resource counting how often it is spawned.
type counter struct {
	name  string
	calls *int
	err   error
	panic bool
}

func (c counter) Spawn(world.Region, *rand.Random, world.ChunkPos) error {
	*c.calls++
	if c.panic {
		panic("broken resource")
	}
	return c.err
}

func (c counter) String() string { return c.name }

// pointBiomes returns the biome set for a noise position, or fallback.
type pointBiomes struct {
	points   map[[2]int]*biome.Biome
	fallback *biome.Biome
}

func (p pointBiomes) NoiseBiome(x4, z4 int) *biome.Biome {
	if b, ok := p.points[[2]int{x4, z4}]; ok {
		return b
	}
	return p.fallback
}

func newBiome(id uint16, name string, calls *int) *biome.Biome {
	return &biome.Biome{ID: id, Name: name, Temperature: 0.8, Resources: []resource.Resource{counter{name: name + "-res", calls: calls}}}
}

// samplesAt places biomes at the sample points of unit in sample order.
func samplesAt(unit world.ChunkPos, fallback *biome.Biome, biomes ...*biome.Biome) pointBiomes {
	p := pointBiomes{points: map[[2]int]*biome.Biome{}, fallback: fallback}
	for i, b := range biomes {
		p.points[[2]int{int(unit.X())<<2 + offsets[i][0], int(unit.Z())<<2 + offsets[i][1]}] = b
	}
	return p
}

func region(unit world.ChunkPos) *world.MemoryRegion {
	r := world.NewMemoryRegion(1, 64)
	for dx := int32(0); dx <= 1; dx++ {
		for dz := int32(0); dz <= 1; dz++ {
			c := world.NewChunk(unit.Add(dx, dz))
			if err := c.Adopt(world.NewTerrain(c.Pos(), 64)); err != nil {
				panic(err)
			}
			r.Add(c)
		}
	}
	return r
}

func TestBorderBiomeDecoratedOnce(t *testing.T) {
	var plains, forest int
	p, f := newBiome(1, "plains", &plains), newBiome(2, "forest", &forest)
	unit := world.ChunkPos{3, -2}
	d := New(Config{Seed: 5, BorderAware: true, Biomes: samplesAt(unit, f, p, f, p, f, f)})

	if err := d.Decorate(region(unit), unit); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if plains != 1 || forest != 1 {
		t.Fatalf("expected every biome to be decorated once, got plains %v forest %v", plains, forest)
	}
	got := d.Governing(d.Samples(unit))
	if len(got) != 2 || got[0] != p || got[1] != f {
		t.Fatalf("expected centre biome before corner biome, got %v", got)
	}
}

func TestMajorityBiome(t *testing.T) {
	var a, b, c int
	ba, bb, bc := newBiome(1, "a", &a), newBiome(2, "b", &b), newBiome(3, "c", &c)
	unit := world.ChunkPos{}

	tests := []struct {
		name    string
		samples []*biome.Biome
		want    *biome.Biome
	}{
		{"majority", []*biome.Biome{ba, bb, bb, bb, bc}, bb},
		{"tie goes to centre", []*biome.Biome{ba, bb, ba, bb, bc}, ba},
		{"tie goes to first corner", []*biome.Biome{bc, bb, ba, ba, bb}, bb},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(Config{Biomes: samplesAt(unit, bc, tt.samples...)})
			got := d.Governing(d.Samples(unit))
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("expected only %v, got %v", tt.want, got)
			}
		})
	}

	a, b, c = 0, 0, 0
	d := New(Config{Biomes: samplesAt(unit, bc, ba, bb, bb, bb, bc)})
	if err := d.Decorate(region(unit), unit); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if a != 0 || b != 1 || c != 0 {
		t.Fatalf("expected only the majority biome to be decorated, got %v %v %v", a, b, c)
	}
}

// snowCount counts the snow blocks placed in the decoration area of unit.
func snowCount(r *world.MemoryRegion, unit world.ChunkPos) int {
	n := 0
	for x := unit.BlockX() + 8; x < unit.BlockX()+24; x++ {
		for z := unit.BlockZ() + 8; z < unit.BlockZ()+24; z++ {
			if y := r.HighestBlockY(x, z); y >= 0 && r.Material(x, y, z) == world.Snow {
				n++
			}
		}
	}
	return n
}

func groundedRegion(unit world.ChunkPos) *world.MemoryRegion {
	r := region(unit)
	for x := unit.BlockX(); x < unit.BlockX()+32; x++ {
		for z := unit.BlockZ(); z < unit.BlockZ()+32; z++ {
			r.SetMaterial(x, 10, z, world.Stone)
		}
	}
	return r
}

func TestCoverPassSkippedForTemplateBiomes(t *testing.T) {
	var n int
	unit := world.ChunkPos{1, 1}

	cold := newBiome(1, "tundra", &n)
	cold.Temperature, cold.Template = 0, true
	d := New(Config{Biomes: samplesAt(unit, cold)})
	r := groundedRegion(unit)
	if err := d.Decorate(r, unit); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if got := snowCount(r, unit); got != 0 {
		t.Fatalf("expected no snow when all samples are template biomes, got %v", got)
	}

	// A single sample that is not a template biome runs the pass over the whole unit.
	engine := newBiome(2, "ice plains", &n)
	engine.Temperature = 0
	d = New(Config{Biomes: samplesAt(unit, cold, cold, cold, engine)})
	r = groundedRegion(unit)
	if err := d.Decorate(r, unit); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if got := snowCount(r, unit); got != 16*16 {
		t.Fatalf("expected snow on all 256 columns, got %v", got)
	}
}

func TestErrorCarriesContext(t *testing.T) {
	var first, second, third int
	failure := errors.New("no room")
	b := &biome.Biome{ID: 7, Name: "mesa", Resources: []resource.Resource{
		counter{name: "ok", calls: &first},
		counter{name: "failing", calls: &second, err: failure},
		counter{name: "never", calls: &third},
	}}
	unit := world.ChunkPos{-4, 9}
	d := New(Config{Seed: 99, Biomes: samplesAt(unit, b)})

	err := d.Decorate(region(unit), unit)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !errors.Is(err, failure) {
		t.Fatalf("expected error to wrap the resource error")
	}
	wantSeed := rand.NewRandom(0).DecorationSeed(99, unit.BlockX(), unit.BlockZ())
	if e.Unit != unit || e.WorldSeed != 99 || e.Seed != wantSeed || e.Biome != "mesa" || e.Resource != "failing" {
		t.Fatalf("unexpected error context: %+v", e)
	}
	if e.X != unit.BlockX()+16 || e.Z != unit.BlockZ()+16 {
		t.Fatalf("expected unit centre in error, got %v, %v", e.X, e.Z)
	}
	if first != 1 || second != 1 || third != 0 {
		t.Fatalf("expected decoration to stop at the failing resource, got %v %v %v", first, second, third)
	}
}

func TestPanicIsReturned(t *testing.T) {
	var n int
	b := &biome.Biome{ID: 3, Name: "swamp", Resources: []resource.Resource{counter{name: "boom", calls: &n, panic: true}}}
	unit := world.ChunkPos{2, 2}
	d := New(Config{Biomes: samplesAt(unit, b)})

	var e *Error
	if err := d.Decorate(region(unit), unit); !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if e.Resource != "boom" || len(e.Stack) == 0 || !strings.Contains(e.Error(), "broken resource") {
		t.Fatalf("unexpected panic error: %v", e)
	}
}

type starts []string

func (s starts) Starts(world.ChunkPos) []string { return s }

func TestDecorationIsRecorded(t *testing.T) {
	var n int
	p, f := newBiome(1, "plains", &n), newBiome(2, "forest", &n)
	unit := world.ChunkPos{6, 6}
	cache := structcache.Load("", structcache.WorldID("overworld", 3, 0), nil)
	d := New(Config{Seed: 3, BorderAware: true, Biomes: samplesAt(unit, p, f), Structures: starts{"village"}, Cache: cache})

	if err := d.Decorate(region(unit), unit); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	rec, ok := cache.Get(unit)
	if !ok {
		t.Fatalf("expected a record for the unit")
	}
	if len(rec.Biomes) != 2 || rec.Biomes[0] != "forest" || rec.Biomes[1] != "plains" {
		t.Fatalf("unexpected biomes recorded: %v", rec.Biomes)
	}
	if len(rec.Structures) != 1 || rec.Structures[0] != "village" {
		t.Fatalf("unexpected structures recorded: %v", rec.Structures)
	}
	if cache.Dirty() {
		t.Fatalf("expected the cache to be saved after decoration")
	}
}
