package layer

import (
	"sync"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/biome"
	"github.com/otgmc/otg/server/world/generator/otg/fifo"
	"github.com/otgmc/otg/server/world/generator/otg/preset"
)

// Provider resolves biomes from the pipeline of a preset. Biome coordinates are noise coordinates: one per
// Resolution blocks. Provider is safe for concurrent use.
type Provider struct {
	reg      *biome.Registry
	pipeline *Pipeline
	samplers sync.Pool

	mu     sync.Mutex
	chunks *fifo.Cache[world.ChunkPos, [256]uint16]
}

// NewProvider builds the pipeline of the preset for the world seed passed. The biomes of up to chunkCache
// chunks are kept cached.
func NewProvider(seed int64, pr *preset.Preset, chunkCache int) *Provider {
	p := &Provider{reg: pr.Registry(), pipeline: Build(seed, pr), chunks: fifo.New[world.ChunkPos, [256]uint16](chunkCache)}
	p.samplers.New = func() any { return p.pipeline.Sampler() }
	return p
}

// Registry returns the biomes the provider resolves to.
func (p *Provider) Registry() *biome.Registry {
	return p.reg
}

// Pipeline returns the pipeline of the provider.
func (p *Provider) Pipeline() *Pipeline {
	return p.pipeline
}

// Classification returns the output of the pipeline at the noise coordinates x4, z4.
func (p *Provider) Classification(x4, z4 int) int {
	s := p.samplers.Get().(*Sampler)
	c := s.Get(x4, z4)
	p.samplers.Put(s)
	return c
}

// NoiseBiome returns the biome at the noise coordinates x4, z4.
func (p *Provider) NoiseBiome(x4, z4 int) *biome.Biome {
	return p.reg.Biome(Biome(p.Classification(x4, z4)))
}

// BlockBiome returns the biome of the block column at x, z.
func (p *Provider) BlockBiome(x, z int) *biome.Biome {
	return p.NoiseBiome(x>>2, z>>2)
}

// ChunkBiomes returns the biome IDs of the block columns of a chunk, indexed by x<<4|z.
func (p *Provider) ChunkBiomes(pos world.ChunkPos) [256]uint16 {
	p.mu.Lock()
	ids, ok := p.chunks.Get(pos)
	p.mu.Unlock()
	if ok {
		return ids
	}

	s := p.samplers.Get().(*Sampler)
	x4, z4 := pos.BlockX()>>2, pos.BlockZ()>>2
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			ids[x<<4|z] = Biome(s.Get(x4+x>>2, z4+z>>2))
		}
	}
	p.samplers.Put(s)

	p.mu.Lock()
	p.chunks.Put(pos, ids)
	p.mu.Unlock()
	return ids
}
