package layer

import (
	"github.com/brentp/intintmap"
	"github.com/otgmc/otg/server/world/generator/otg/preset"
)

// Step is a stage of a pipeline together with the salt its random streams are seeded with.
type Step struct {
	Name  string
	Salt  int64
	Stage Stage
}

// Pipeline is a chain of stages. It is immutable and safe for concurrent use; sampling goes through a
// Sampler obtained from Sampler.
type Pipeline struct {
	steps []Step
	ctx   []Context
}

// New creates a pipeline running the steps passed in order for a world with the seed passed. The first
// step reads from an ocean-only world.
func New(seed int64, steps ...Step) *Pipeline {
	p := &Pipeline{steps: steps, ctx: make([]Context, len(steps))}
	for i, s := range steps {
		p.ctx[i] = NewContext(seed, s.Salt)
	}
	return p
}

// Build creates the pipeline of a preset. One zoom step is run per depth; the other stages are inserted at
// the depths the world config of the preset names.
func Build(seed int64, pr *preset.Preset) *Pipeline {
	c := pr.World
	reg := pr.Registry()
	groups := pr.ResolvedGroups()
	ocean, frozenOcean := pr.OceanBiome()
	if !c.Ice {
		frozenOcean = ocean
	}

	rarity := make([]int, reg.Len())
	shores := make([]uint16, reg.Len())
	rivers := make([]uint16, reg.Len())
	for _, b := range reg.All() {
		rarity[b.ID], shores[b.ID], rivers[b.ID] = b.Rarity, b.Shore, b.River
	}

	steps := []Step{{Name: "ocean", Stage: Ocean{}}}
	add := func(name string, salt int64, s Stage) {
		steps = append(steps, Step{Name: name, Salt: salt, Stage: s})
	}
	for depth := 0; depth <= c.GenerationDepth; depth++ {
		if depth > 0 {
			add("zoom", 1000+int64(depth), Zoom{Fuzzy: depth == c.LandSize+1})
		}
		if depth == c.LandSize {
			add("land", 1, Land{Rarity: c.LandRarity, Old: c.OldLandRarity, ForceAtSpawn: c.ForceLandAtSpawn, SpawnRadius: c.SpawnLandRadius})
		}
		if depth > c.LandSize && depth <= c.LandSize+c.LandFuzzy {
			add("land fuzz", 10+int64(depth), LandFuzz{})
		}
		if c.Ice && depth == c.IceSize {
			add("ice", 2, Ice{Rarity: c.IceRarity})
		}
		if c.Rivers && depth == c.RiverSize {
			add("river init", 100, RiverInit{})
		}
		if depth == c.GroupSize {
			add("groups", 3, Groups{Groups: groups})
		}
		if depth == c.BiomeSize {
			add("biomes", 200, Biomes{Groups: groups, Rarity: rarity, Ocean: ocean, FrozenOcean: frozenOcean})
		}
		if depth == c.ShoreSize() {
			add("shore", 1000, Shore{Shores: shores})
		}
	}
	if c.Rivers {
		add("river", 1, River{})
	}
	add("smooth", 1000, Smooth{})
	if c.Rivers {
		add("river merge", 100, RiverMerge{Rivers: rivers})
	}
	return New(seed, steps...)
}

// Steps returns the steps of the pipeline.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Sampler returns a new Sampler of the pipeline.
func (p *Pipeline) Sampler() *Sampler {
	s := &Sampler{p: p, memo: make([]*intintmap.Map, len(p.steps)), sources: make([]source, len(p.steps))}
	for i := range s.memo {
		s.memo[i] = intintmap.New(memoSize, 0.6)
		s.sources[i] = source{s: s, i: i}
	}
	return s
}

const (
	memoSize  = 1 << 10
	memoLimit = 1 << 16
)

// Sampler samples a pipeline. It memoises the output of every stage, which only saves work and never
// changes the output. A Sampler is not safe for concurrent use: every goroutine should use its own.
type Sampler struct {
	p       *Pipeline
	memo    []*intintmap.Map
	sources []source
}

// Get returns the output of the final stage at x, z.
func (s *Sampler) Get(x, z int) int {
	return s.get(len(s.p.steps)-1, x, z)
}

// GetStage returns the output of the stage at index i at x, z.
func (s *Sampler) GetStage(i, x, z int) int {
	return s.get(i, x, z)
}

func (s *Sampler) get(i, x, z int) int {
	if i < 0 {
		return 0
	}
	key := int64(int32(x))<<32 | int64(uint32(int32(z)))
	m := s.memo[i]
	if v, ok := m.Get(key); ok {
		return int(v)
	}
	var parent Source = nilSource{}
	if i > 0 {
		parent = &s.sources[i-1]
	}
	v := s.p.steps[i].Stage.Sample(s.p.ctx[i], parent, x, z)
	if m.Size() >= memoLimit {
		m = intintmap.New(memoSize, 0.6)
		s.memo[i] = m
	}
	m.Put(key, int64(v))
	return v
}

type source struct {
	s *Sampler
	i int
}

func (src *source) Get(x, z int) int {
	return src.s.get(src.i, x, z)
}

type nilSource struct{}

func (nilSource) Get(int, int) int { return 0 }
