package resource

import (
	"fmt"
	"strings"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// TreeKind is the shape of tree grown by a Tree resource.
type TreeKind uint8

const (
	OakTree TreeKind = iota
	BirchTree
	SpruceTree
)

func (k TreeKind) String() string {
	switch k {
	case BirchTree:
		return "birch"
	case SpruceTree:
		return "spruce"
	}
	return "oak"
}

func treeKind(name string) (TreeKind, error) {
	switch strings.ToLower(name) {
	case "", "oak":
		return OakTree, nil
	case "birch":
		return BirchTree, nil
	case "spruce":
		return SpruceTree, nil
	}
	return 0, fmt.Errorf("%w: unknown tree %q", ErrInvalidResource, name)
}

// Tree grows trees of a single kind on dirt or grass.
type Tree struct {
	Frequency
	Kind TreeKind
}

func (t Tree) Spawn(r world.Region, rnd *rand.Random, unit world.ChunkPos) error {
	return t.attempts(rnd, unit, func(x, z int) error {
		y, ok := t.highestWorkableBlock(r, x, z)
		if !ok {
			return nil
		}
		g := grower{r: r, unit: unit, rnd: rnd}
		switch t.Kind {
		case OakTree:
			g.oak(x, y, z)
		case BirchTree:
			g.birch(x, y, z, rnd.Int31n(39) == 0)
		case SpruceTree:
			g.spruce(x, y, z)
		}
		return nil
	})
}

func (t Tree) highestWorkableBlock(r world.Region, x, z int) (int, bool) {
	top := r.HighestBlockY(x, z)
	if top < 0 {
		return 0, false
	}
	if b := r.Material(x, top, z); b == world.Dirt || b == world.Grass {
		return top + 1, true
	}
	return 0, false
}

func (t Tree) String() string {
	return fmt.Sprintf("Tree(%v,%v,%v)", t.Kind, t.Frequency.Frequency, t.Rarity)
}

// grower writes a single tree into a region, never touching columns outside the area of the unit.
type grower struct {
	r    world.Region
	unit world.ChunkPos
	rnd  *rand.Random
}

func (g grower) material(x, y, z int) world.Material {
	if !InArea(g.unit, x, z) {
		return world.Unknown
	}
	return g.r.Material(x, y, z)
}

func (g grower) set(x, y, z int, m world.Material) {
	if InArea(g.unit, x, z) {
		g.r.SetMaterial(x, y, z, m)
	}
}

func overridable(m world.Material) bool {
	switch m {
	case world.Air, world.OakLeaves, world.BirchLeaves, world.SpruceLeaves:
		return true
	}
	return false
}

func (g grower) oak(x, y, z int) {
	if !g.canGrow(x, y, z, 7) {
		return
	}
	height := int(g.rnd.Int31n(3)) + 4
	g.basicTop(x, y, z, world.OakLeaves, height)
	g.trunk(x, y, z, world.OakLog, height-1)
}

func (g grower) birch(x, y, z int, super bool) {
	if !g.canGrow(x, y, z, 7) {
		return
	}
	height := int(g.rnd.Int31n(3)) + 5
	if super {
		height += 5
	}
	g.basicTop(x, y, z, world.BirchLeaves, height)
	g.trunk(x, y, z, world.BirchLog, height-1)
}

func (g grower) spruce(x, y, z int) {
	if !g.canGrow(x, y, z, 10) {
		return
	}
	height := int(g.rnd.Int31n(4) + 6)
	topSize := height - int(1+g.rnd.Int31n(2))
	lr := 2 + int(g.rnd.Int31n(2))

	g.trunk(x, y, z, world.SpruceLog, height-int(g.rnd.Int31n(3)))

	radius := int(g.rnd.Int31n(2))
	minR, maxR := 0, 1
	for yOff := 0; yOff <= topSize; yOff++ {
		yy := y + height - yOff
		for xx := x - radius; xx <= x+radius; xx++ {
			for zz := z - radius; zz <= z+radius; zz++ {
				if abs(xx-x) == radius && abs(zz-z) == radius && radius > 0 {
					continue
				}
				if m := g.material(xx, yy, zz); m != world.Unknown && (overridable(m) || !m.Solid()) {
					g.set(xx, yy, zz, world.SpruceLeaves)
				}
			}
		}
		if radius >= maxR {
			radius = minR
			minR = 1
			if maxR++; maxR > lr {
				maxR = lr
			}
		} else {
			radius++
		}
	}
}

func (g grower) basicTop(x, y, z int, leaves world.Material, height int) {
	for yy := y - 3 + height; yy <= y+height; yy++ {
		yOff := yy - (y + height)
		mid := 1 - yOff/2
		for xx := x - mid; xx <= x+mid; xx++ {
			for zz := z - mid; zz <= z+mid; zz++ {
				if abs(xx-x) == mid && abs(zz-z) == mid && (yOff == 0 || g.rnd.Int31n(2) == 0) {
					continue
				}
				if m := g.material(xx, yy, zz); m != world.Unknown && (overridable(m) || !m.Solid()) {
					g.set(xx, yy, zz, leaves)
				}
			}
		}
	}
}

func (g grower) trunk(x, y, z int, log world.Material, height int) {
	g.set(x, y-1, z, world.Dirt)
	for yOff := 0; yOff < height; yOff++ {
		if overridable(g.material(x, y+yOff, z)) {
			g.set(x, y+yOff, z, log)
		}
	}
}

func (g grower) canGrow(x, y, z, height int) bool {
	if y+height+3 > g.r.HeightCap() {
		return false
	}
	radius := 0
	for yy := 0; yy < height+3; yy++ {
		if yy == 1 || yy == height {
			radius++
		}
		for xx := -radius; xx <= radius; xx++ {
			for zz := -radius; zz <= radius; zz++ {
				m := g.material(x+xx, y+yy, z+zz)
				if m == world.Unknown {
					continue
				}
				if !overridable(m) {
					return false
				}
			}
		}
	}
	return true
}
