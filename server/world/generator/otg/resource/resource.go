// Package resource implements the placement routines biomes decorate the world with.
package resource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/rand"
)

// Resource is a placement routine run once per decoration unit for every biome that decorates the unit.
// Spawn must only draw randomness from rnd so that decoration stays reproducible.
type Resource interface {
	Spawn(r world.Region, rnd *rand.Random, unit world.ChunkPos) error
	fmt.Stringer
}

// ErrInvalidResource is returned when a resource configuration is malformed.
var ErrInvalidResource = errors.New("invalid resource")

// Config is the configuration of a single resource as written in a preset. Only the fields relevant to Type
// are read.
type Config struct {
	Type        string   `toml:"type"`
	Material    string   `toml:"material"`
	Size        int      `toml:"size"`
	Frequency   int      `toml:"frequency"`
	Rarity      float64  `toml:"rarity"`
	MinAltitude int      `toml:"min_altitude"`
	MaxAltitude int      `toml:"max_altitude"`
	Sources     []string `toml:"sources"`
	Tree        string   `toml:"tree"`
}

// New creates the resource described by c. An error wrapping ErrInvalidResource is returned if the
// configuration cannot be turned into a resource.
func New(c Config, heightCap int) (Resource, error) {
	var mat world.Material
	if c.Material != "" {
		m, err := world.MaterialByName(c.Material)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResource, err)
		}
		mat = m
	}
	sources := make([]world.Material, 0, len(c.Sources))
	for _, name := range c.Sources {
		m, err := world.MaterialByName(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResource, err)
		}
		sources = append(sources, m)
	}
	if c.Rarity < 0 || c.Rarity > 100 {
		return nil, fmt.Errorf("%w: rarity %v must be in [0, 100]", ErrInvalidResource, c.Rarity)
	}
	if c.Frequency < 0 {
		return nil, fmt.Errorf("%w: frequency %v must not be negative", ErrInvalidResource, c.Frequency)
	}
	base := Frequency{Frequency: c.Frequency, Rarity: c.Rarity}

	checkAltitude := func() error {
		if c.MinAltitude < 0 || c.MaxAltitude >= heightCap || c.MinAltitude > c.MaxAltitude {
			return fmt.Errorf("%w: altitude range [%v, %v] outside of [0, %v)", ErrInvalidResource, c.MinAltitude, c.MaxAltitude, heightCap)
		}
		return nil
	}
	checkMaterial := func() error {
		if mat == world.Air {
			return fmt.Errorf("%w: %v needs a material to place", ErrInvalidResource, strings.ToLower(c.Type))
		}
		return nil
	}

	switch strings.ToLower(c.Type) {
	case "ore":
		if err := checkMaterial(); err != nil {
			return nil, err
		}
		if err := checkAltitude(); err != nil {
			return nil, err
		}
		if c.Size <= 0 {
			return nil, fmt.Errorf("%w: ore size must be positive", ErrInvalidResource)
		}
		return Ore{Frequency: base, Material: mat, Size: c.Size, MinAltitude: c.MinAltitude, MaxAltitude: c.MaxAltitude, Sources: sources}, nil
	case "plant":
		if err := checkMaterial(); err != nil {
			return nil, err
		}
		if err := checkAltitude(); err != nil {
			return nil, err
		}
		return Plant{Frequency: base, Plant: mat, MinAltitude: c.MinAltitude, MaxAltitude: c.MaxAltitude, Sources: sources}, nil
	case "grass":
		if err := checkMaterial(); err != nil {
			return nil, err
		}
		return Grass{Frequency: base, Plant: mat, Sources: sources}, nil
	case "tree":
		kind, err := treeKind(c.Tree)
		if err != nil {
			return nil, err
		}
		return Tree{Frequency: base, Kind: kind}, nil
	case "iceberg":
		if err := checkMaterial(); err != nil {
			return nil, err
		}
		return Iceberg{Material: mat, Rarity: c.Rarity}, nil
	}
	return nil, fmt.Errorf("%w: unknown resource type %q", ErrInvalidResource, c.Type)
}

// Frequency holds the common frequency and rarity settings: a resource is attempted Frequency times per
// unit and every attempt succeeds with a chance of Rarity percent.
type Frequency struct {
	Frequency int
	Rarity    float64
}

// attempts calls f for every successful attempt with a random column in the decoration area of unit.
func (f Frequency) attempts(rnd *rand.Random, unit world.ChunkPos, fn func(x, z int) error) error {
	for i := 0; i < f.Frequency; i++ {
		if rnd.Float64()*100 > f.Rarity {
			continue
		}
		x, z := areaX(unit)+rnd.Intn(16), areaZ(unit)+rnd.Intn(16)
		if err := fn(x, z); err != nil {
			return err
		}
	}
	return nil
}

// areaX and areaZ return the corner of the decoration area of a unit. The area is offset by half a chunk so
// that resources spill into the neighbouring chunks evenly.
func areaX(unit world.ChunkPos) int { return unit.BlockX() + 8 }
func areaZ(unit world.ChunkPos) int { return unit.BlockZ() + 8 }

// InArea reports if the absolute column x, z lies in the region that decorating unit may write to.
func InArea(unit world.ChunkPos, x, z int) bool {
	bx, bz := unit.BlockX(), unit.BlockZ()
	return x >= bx && x < bx+32 && z >= bz && z < bz+32
}

func contains(set []world.Material, m world.Material) bool {
	for _, s := range set {
		if s == m {
			return true
		}
	}
	return false
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
