package rand_test

import (
	"sync"
	"testing"

	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

func TestRandomMatchesLegacyStream(t *testing.T) {
	r := rand.NewRandom(42)
	want := []int32{30, 63, 48, 84, 70}
	for i, w := range want {
		if got := r.Int31n(100); got != w {
			t.Fatalf("draw %v: expected %v, got %v", i, w, got)
		}
	}

	r.SetSeed(42)
	if got := r.Int63(); got != -5025562857975149833 {
		t.Fatalf("first long: got %v", got)
	}
	if got := r.Int63(); got != -5843495416241995736 {
		t.Fatalf("second long: got %v", got)
	}

	if got := rand.NewRandom(12345).Float64(); got != 0.3618031071604718 {
		t.Fatalf("double: got %v", got)
	}
}

func TestRandomRange(t *testing.T) {
	r := rand.NewRandom(7)
	for i := 0; i < 1000; i++ {
		v := r.Range(-4, 4)
		if v < -4 || v > 4 {
			t.Fatalf("value %v out of range", v)
		}
	}
	if v := r.Range(5, 5); v != 5 {
		t.Fatalf("degenerate range: got %v", v)
	}
}

func TestLayerSeed(t *testing.T) {
	if got := rand.LayerSeed(12345, 1); got != -2202151823110491623 {
		t.Fatalf("layer seed: got %v", got)
	}
}

// TestPointMatchesGoldenVectors pins the per-point stream against values recorded from a replay of the
// shared-state layer generator, initialised at each point in turn.
func TestPointMatchesGoldenVectors(t *testing.T) {
	seed := rand.LayerSeed(12345, 1)
	tests := []struct {
		x, z     int
		rarity   [3]int
		quarters [3]int
	}{
		{0, 0, [3]int{12, 19, 8}, [3]int{0, 3, 1}},
		{1, 0, [3]int{20, 95, 56}, [3]int{3, 3, 1}},
		{-3, 7, [3]int{37, 26, 97}, [3]int{2, 2, 3}},
		{100, -250, [3]int{45, 54, 42}, [3]int{2, 3, 1}},
	}
	for _, tt := range tests {
		p := rand.PointAt(seed, tt.x, tt.z)
		for i, w := range tt.rarity {
			if got := p.Intn(101); got != w {
				t.Errorf("(%v, %v) draw %v of 101: expected %v, got %v", tt.x, tt.z, i, w, got)
			}
		}
		p = rand.PointAt(seed, tt.x, tt.z)
		for i, w := range tt.quarters {
			if got := p.Intn(4); got != w {
				t.Errorf("(%v, %v) draw %v of 4: expected %v, got %v", tt.x, tt.z, i, w, got)
			}
		}
	}
}

func TestPointIsOrderIndependent(t *testing.T) {
	t.Parallel()

	seed := rand.LayerSeed(99, 2001)
	first := make(map[[2]int]int)
	for x := -8; x < 8; x++ {
		for z := -8; z < 8; z++ {
			p := rand.PointAt(seed, x, z)
			first[[2]int{x, z}] = p.Intn(1000)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan [2]int, len(first))
	for x := 7; x >= -8; x-- {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			for z := 7; z >= -8; z-- {
				p := rand.PointAt(seed, x, z)
				if p.Intn(1000) != first[[2]int{x, z}] {
					errs <- [2]int{x, z}
				}
			}
		}(x)
	}
	wg.Wait()
	close(errs)
	for pos := range errs {
		t.Errorf("point %v changed when sampled in a different order", pos)
	}
}
