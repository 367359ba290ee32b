package server

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg"
	"github.com/otgmc/otg/server/world/generator/otg/preset"
)

// ErrUnknownWorld is returned when a world name does not match any dimension of the Engine.
var ErrUnknownWorld = errors.New("unknown world")

// Engine runs the generators of all dimensions of a config. Engine is safe for concurrent use.
type Engine struct {
	conf   Config
	log    *slog.Logger
	names  []string
	worlds map[string]*otg.Generator

	closeOnce sync.Once
	closeErr  error
}

func newEngine(conf Config) (*Engine, error) {
	e := &Engine{conf: conf, log: conf.Log, worlds: make(map[string]*otg.Generator)}
	for _, dim := range conf.Dimensions.Worlds() {
		g, err := e.createWorld(dim)
		if err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("create world %v: %w", dim.Name, err)
		}
		key := strings.ToLower(dim.Name)
		e.worlds[key] = g
		e.names = append(e.names, dim.Name)
		e.log.Info("world created", "world", dim.Name, "preset", g.Preset().Name, "seed", g.Seed())
	}
	return e, nil
}

func (e *Engine) createWorld(dim Dimension) (*otg.Generator, error) {
	p, err := e.preset(dim.Preset)
	if err != nil {
		return nil, err
	}
	seed := dim.Seed
	if seed == -1 {
		seed = e.conf.Seed
	}
	var cacheDir string
	if e.conf.CacheFolder != "" {
		cacheDir = filepath.Join(e.conf.CacheFolder, strings.ToLower(dim.Name))
	}
	return otg.New(otg.Config{
		Log:               e.log,
		Name:              dim.Name,
		Seed:              seed,
		Preset:            p,
		Shadow:            e.conf.shadowConfig(),
		CacheDir:          cacheDir,
		DisableDecoration: e.conf.DisableDecoration,
	})
}

func (e *Engine) preset(name string) (*preset.Preset, error) {
	if e.conf.Presets != nil {
		return e.conf.Presets.Get(name)
	}
	def := preset.Default()
	if n := strings.TrimSpace(name); n != "" && !strings.EqualFold(n, def.Name) {
		return nil, fmt.Errorf("%w: %v", preset.ErrUnknownPreset, name)
	}
	return def, nil
}

// Worlds returns the names of all worlds of the Engine in the order they were configured.
func (e *Engine) Worlds() []string {
	return append([]string(nil), e.names...)
}

// World returns the generator of the world with the name passed. Names are case-insensitive.
func (e *Engine) World(name string) (*otg.Generator, error) {
	g, ok := e.worlds[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownWorld, name)
	}
	return g, nil
}

// Pregenerate generates and decorates the chunks within radius of centre in the world passed. The chunks one
// beyond radius on the positive axes are generated as well, as decoration of the outermost units reaches into
// them. Chunks are queued for generation ahead of time first, so that they are generated in parallel.
func (e *Engine) Pregenerate(ctx context.Context, name string, centre world.ChunkPos, radius int) (*world.MemoryRegion, error) {
	g, err := e.World(name)
	if err != nil {
		return nil, err
	}
	g.QueueChunksForWorkerThreads(centre, radius+1)

	r := world.NewMemoryRegion(g.Seed(), g.Preset().World.HeightCap)
	rad := int32(radius)
	for dx := -rad; dx <= rad+1; dx++ {
		for dz := -rad; dz <= rad+1; dz++ {
			if err := ctx.Err(); err != nil {
				return r, err
			}
			c := world.NewChunk(centre.Add(dx, dz))
			if err := g.GenerateChunk(ctx, c); err != nil {
				return r, err
			}
			r.Add(c)
		}
	}

	var failed int
	for dx := -rad; dx <= rad; dx++ {
		for dz := -rad; dz <= rad; dz++ {
			unit := centre.Add(dx, dz)
			if err := g.Decorate(r, unit); err != nil {
				// A failed unit only lacks some resources: the rest of the area stays usable.
				failed++
				e.log.Error("pregenerate: decorate unit", "world", name, "X", unit.X(), "Z", unit.Z(), "error", err)
				continue
			}
			c, _ := r.Chunk(unit)
			c.Decorated = true
		}
	}
	if failed > 0 {
		e.log.Warn("pregenerate: units left undecorated", "world", name, "count", failed)
	}
	return r, nil
}

// heightmapMagic starts every heightmap written by ExportHeightmap.
var heightmapMagic = [4]byte{'O', 'T', 'G', 'H'}

const heightmapVersion = 1

// ExportHeightmap writes the base terrain heightmap of the chunks within radius of centre to w, compressed
// with zstd. No cache of the world is read or filled, so exporting does not affect generation. The data
// starts with a header of the magic "OTGH", a version, the centre chunk coordinates, the radius and the
// height of the world, followed by one uint16 height per block column, row by row along the z axis. All
// values are little endian.
func (e *Engine) ExportHeightmap(ctx context.Context, w io.Writer, name string, centre world.ChunkPos, radius int) error {
	g, err := e.World(name)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("export heightmap: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	header := []any{heightmapMagic, uint32(heightmapVersion), centre.X(), centre.Z(), uint32(radius), uint32(g.Preset().World.HeightCap)}
	for _, v := range header {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			_ = enc.Close()
			return fmt.Errorf("export heightmap: write header: %w", err)
		}
	}

	rad := int32(radius)
	side := int(2*rad+1) * world.ChunkSize
	row := make([]uint16, side)
	for dz := -rad; dz <= rad; dz++ {
		// Generate a row of chunks at once and write its block rows.
		chunks := make([]*world.Terrain, 0, 2*rad+1)
		for dx := -rad; dx <= rad; dx++ {
			if err := ctx.Err(); err != nil {
				_ = enc.Close()
				return err
			}
			chunks = append(chunks, g.Shadow().ChunkWithoutLoadingOrCaching(centre.Add(dx, dz)))
		}
		for z := 0; z < world.ChunkSize; z++ {
			for i, t := range chunks {
				for x := 0; x < world.ChunkSize; x++ {
					row[i*world.ChunkSize+x] = uint16(t.HeightAt(x, z))
				}
			}
			if err := binary.Write(bw, binary.LittleEndian, row); err != nil {
				_ = enc.Close()
				return fmt.Errorf("export heightmap: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return fmt.Errorf("export heightmap: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("export heightmap: %w", err)
	}
	return nil
}

// ReadHeightmap reads a heightmap written by ExportHeightmap. It returns the centre and radius the heightmap
// was exported with and the heights, indexed by z*side+x where side is (2*radius+1)*16.
func ReadHeightmap(r io.Reader) (centre world.ChunkPos, radius int, heights []uint16, err error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return centre, 0, nil, fmt.Errorf("read heightmap: %w", err)
	}
	defer dec.Close()
	br := bufio.NewReaderSize(dec, 256*1024)

	var (
		magic                [4]byte
		version, rad, height uint32
		x, z                 int32
	)
	for _, v := range []any{&magic, &version, &x, &z, &rad, &height} {
		if err := binary.Read(br, binary.LittleEndian, v); err != nil {
			return centre, 0, nil, fmt.Errorf("read heightmap header: %w", err)
		}
	}
	if magic != heightmapMagic || version != heightmapVersion {
		return centre, 0, nil, fmt.Errorf("read heightmap: unsupported format %q version %v", magic[:], version)
	}
	side := (2*int(rad) + 1) * world.ChunkSize
	heights = make([]uint16, side*side)
	if err := binary.Read(br, binary.LittleEndian, heights); err != nil {
		return centre, 0, nil, fmt.Errorf("read heightmap: %w", err)
	}
	return world.ChunkPos{x, z}, int(rad), heights, nil
}

// Close stops the generators of all worlds and saves their structure caches.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		var errs []error
		for _, name := range e.names {
			if err := e.worlds[strings.ToLower(name)].Close(); err != nil {
				errs = append(errs, err)
			}
		}
		e.closeErr = errors.Join(errs...)
	})
	return e.closeErr
}
