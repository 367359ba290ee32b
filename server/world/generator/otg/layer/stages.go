package layer

import (
	"github.com/otgmc/otg/server/world/generator/otg/preset"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// Ocean is the first stage of every pipeline. It classifies the whole world as ocean.
type Ocean struct{}

func (Ocean) Sample(Context, Source, int, int) int {
	return 0
}

// Zoom doubles the resolution of its parent. Samples between parent samples take the value of one of
// their neighbours: the most common one for a normal zoom, a random one for a fuzzy zoom.
type Zoom struct {
	Fuzzy bool
}

func (l Zoom) Sample(ctx Context, parent Source, x, z int) int {
	px, pz := x>>1, z>>1
	a := parent.Get(px, pz)
	r := ctx.At(x&^1, z&^1)
	if x&1 == 0 && z&1 == 0 {
		return a
	}
	b := parent.Get(px, pz+1)
	ab := r.Choose(a, b)
	if x&1 == 0 {
		return ab
	}
	c := parent.Get(px+1, pz)
	ac := r.Choose(a, c)
	if z&1 == 0 {
		return ac
	}
	d := parent.Get(px+1, pz+1)
	if l.Fuzzy {
		return r.Choose4(a, c, b, d)
	}
	return modeOrRandom(&r, a, c, b, d)
}

func modeOrRandom(r *rand.Point, a, b, c, d int) int {
	switch {
	case b == c && c == d:
		return b
	case a == b && a == c:
		return a
	case a == b && a == d:
		return a
	case a == c && a == d:
		return a
	case a == b && c != d:
		return a
	case a == c && b != d:
		return a
	case a == d && b != c:
		return a
	case b == c && a != d:
		return b
	case b == d && a != c:
		return b
	case c == d && a != b:
		return c
	}
	return r.Choose4(a, b, c, d)
}

// Land places land. The origin is always land, so that players do not spawn in an ocean.
type Land struct {
	// Rarity is the land rarity of the world config. A rarity of 0 places no land other than the land
	// forced around spawn and draws no randomness.
	Rarity int
	// Old selects the legacy rarity convention, where land is placed with a chance of 1 in 101-Rarity.
	Old bool
	// ForceAtSpawn forces land at all samples within SpawnRadius of the origin.
	ForceAtSpawn bool
	SpawnRadius  int
}

func (l Land) Sample(ctx Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	if x == 0 && z == 0 {
		return c | LandBit
	}
	if l.ForceAtSpawn && abs(x) <= l.SpawnRadius && abs(z) <= l.SpawnRadius {
		return c | LandBit
	}
	if l.Rarity == 0 {
		return c
	}
	r := ctx.At(x, z)
	var land bool
	if l.Old {
		land = r.Intn(101-l.Rarity) == 0
	} else {
		land = r.Intn(101) <= l.Rarity
	}
	if land {
		return c | LandBit
	}
	return c
}

// LandFuzz roughens coastlines: ocean with land in a diagonal neighbour may turn into that land and land
// with ocean in a diagonal neighbour may erode.
type LandFuzz struct{}

func (LandFuzz) Sample(ctx Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	corners := [4]int{parent.Get(x-1, z-1), parent.Get(x+1, z-1), parent.Get(x-1, z+1), parent.Get(x+1, z+1)}
	r := ctx.At(x, z)
	if !IsLand(c) {
		n, pick := 0, c
		for _, v := range corners {
			if IsLand(v) {
				if r.Intn(n+1) == 0 {
					pick = v
				}
				n++
			}
		}
		if n > 0 && r.Intn(3) == 0 {
			return pick
		}
		return c
	}
	if x == 0 && z == 0 {
		// Spawn never erodes.
		return c
	}
	for _, v := range corners {
		if !IsLand(v) {
			if r.Intn(5) == 0 {
				return c &^ LandBit
			}
			break
		}
	}
	return c
}

// Ice marks one in Rarity samples as icy.
type Ice struct {
	Rarity int
}

func (i Ice) Sample(ctx Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	r := ctx.At(x, z)
	if r.Intn(i.Rarity) == 0 {
		return c | IceBit
	}
	return c
}

// Groups assigns a biome group to land samples that have none. Icy samples get a cold group and other
// samples a group that is not cold, unless no group of that kind exists.
type Groups struct {
	Groups []preset.ResolvedGroup
}

func (g Groups) Sample(ctx Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	if !IsLand(c) || c&GroupBits != 0 {
		return c
	}
	cold := c&IceBit != 0
	total := 0
	for _, grp := range g.Groups {
		if grp.Cold == cold {
			total += grp.Rarity
		}
	}
	matchAll := total == 0
	if matchAll {
		for _, grp := range g.Groups {
			total += grp.Rarity
		}
	}
	r := ctx.At(x, z)
	n := r.Intn(total)
	for i, grp := range g.Groups {
		if !matchAll && grp.Cold != cold {
			continue
		}
		if n < grp.Rarity {
			return c | (i+1)<<GroupShift
		}
		n -= grp.Rarity
	}
	return c
}

// Biomes picks a biome for every sample: ocean samples get the ocean biome and land samples a biome of
// their group, weighted by biome rarity.
type Biomes struct {
	Groups []preset.ResolvedGroup
	// Rarity holds the rarity of every biome by ID.
	Rarity             []int
	Ocean, FrozenOcean uint16
}

func (b Biomes) Sample(ctx Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	if !IsLand(c) {
		id := b.Ocean
		if c&IceBit != 0 {
			id = b.FrozenOcean
		}
		return c&^BiomeBits | int(id)
	}
	g := (c & GroupBits) >> GroupShift
	if g == 0 || g > len(b.Groups) {
		g = 1
	}
	grp := b.Groups[g-1]
	r := ctx.At(x, z)
	n := r.Intn(grp.Weight)
	for _, id := range grp.Biomes {
		if n < b.Rarity[id] {
			return c&^BiomeBits | int(id)
		}
		n -= b.Rarity[id]
	}
	return c&^BiomeBits | int(grp.Biomes[len(grp.Biomes)-1])
}

// RiverInit seeds land samples with one of three river values. Rivers later run along the borders between
// areas of different values.
type RiverInit struct{}

func (RiverInit) Sample(ctx Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	if !IsLand(c) {
		return c &^ RiverInitBits
	}
	r := ctx.At(x, z)
	return c&^RiverInitBits | (r.Intn(3)+1)<<RiverInitShift
}

// River sets the RiverBit of samples whose river value differs from that of a direct neighbour.
type River struct{}

func (River) Sample(_ Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	v := riverFilter(c)
	if v == riverFilter(parent.Get(x-1, z)) && v == riverFilter(parent.Get(x+1, z)) &&
		v == riverFilter(parent.Get(x, z-1)) && v == riverFilter(parent.Get(x, z+1)) {
		return c &^ RiverBit
	}
	return c | RiverBit
}

func riverFilter(c int) int {
	v := (c & RiverInitBits) >> RiverInitShift
	if v == 0 {
		return 0
	}
	return 2 + v&1
}

// Smooth removes single sample noise by looking at the four direct neighbours of a sample.
type Smooth struct{}

func (Smooth) Sample(ctx Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	w, e := parent.Get(x-1, z), parent.Get(x+1, z)
	n, s := parent.Get(x, z-1), parent.Get(x, z+1)
	v := c
	switch {
	case w == e && n == s:
		r := ctx.At(x, z)
		v = r.Choose(w, n)
	case w == e:
		v = w
	case n == s:
		v = n
	}
	if x == 0 && z == 0 && IsLand(c) && !IsLand(v) {
		return c
	}
	return v
}

// Shore replaces land samples bordering ocean with the shore biome of their biome.
type Shore struct {
	// Shores holds the shore biome of every biome by ID.
	Shores []uint16
}

func (s Shore) Sample(_ Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	if !IsLand(c) {
		return c
	}
	id := Biome(c)
	shore := s.Shores[id]
	if shore == id {
		return c
	}
	for _, n := range [4]int{parent.Get(x-1, z), parent.Get(x+1, z), parent.Get(x, z-1), parent.Get(x, z+1)} {
		if !IsLand(n) {
			return c&^BiomeBits | int(shore)
		}
	}
	return c
}

// RiverMerge replaces the biome of land samples with the RiverBit set with the river biome of that biome.
type RiverMerge struct {
	// Rivers holds the river biome of every biome by ID.
	Rivers []uint16
}

func (m RiverMerge) Sample(_ Context, parent Source, x, z int) int {
	c := parent.Get(x, z)
	if c&RiverBit == 0 || !IsLand(c) {
		return c
	}
	return c&^BiomeBits | int(m.Rivers[Biome(c)])
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
