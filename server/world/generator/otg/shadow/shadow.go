// Package shadow generates base terrain ahead of demand. Chunks near the chunks being generated are queued for
// a fixed pool of workers and kept in a bounded cache until the synchronous generation path consumes them.
package shadow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/fifo"
)

// Base generates the base terrain of a chunk: everything up to, but not including, decoration. Base must be
// safe for concurrent use and must produce the same terrain for the same position and records every time.
type Base interface {
	BaseTerrain(pos world.ChunkPos, records []world.JigsawRecord) *world.Terrain
}

// Generator generates chunks ahead of time on a pool of workers. It is safe for concurrent use.
type Generator struct {
	conf       Config
	base       Base
	structures world.StructureSource

	mu       sync.Mutex
	chunks   *fifo.Cache[world.ChunkPos, *world.Terrain]
	inFlight map[world.ChunkPos]*task

	colMu   sync.Mutex
	columns *fifo.Cache[world.BlockPos2D, []world.Material]

	distMu    sync.Mutex
	distances *distanceCache

	queue     chan *task
	closing   chan struct{}
	closeOnce sync.Once
	running   sync.WaitGroup
	// pending tracks goroutines enqueueing tasks that did not fit in the queue.
	pending sync.WaitGroup

	queueSaturation        atomic.Uint64
	lastQueueSaturationLog atomic.Uint64

	hits, misses, timeouts, generated, discarded atomic.Uint64
}

// task is a chunk queued for a worker. done is closed once the task is finished or abandoned.
type task struct {
	pos  world.ChunkPos
	done chan struct{}
	// claimed is set, under Generator.mu, when the synchronous path takes the chunk over. The result of the
	// worker is then dropped.
	claimed bool
}

// New creates a Generator and starts its workers. StopWorkerThreads must be called to stop them.
func New(conf Config, base Base, structures world.StructureSource) *Generator {
	conf = conf.withDefaults()
	if structures == nil {
		structures = world.NopStructures{}
	}
	g := &Generator{
		conf:       conf,
		base:       base,
		structures: structures,
		chunks:     fifo.New[world.ChunkPos, *world.Terrain](conf.ChunkCache),
		inFlight:   make(map[world.ChunkPos]*task),
		columns:    fifo.New[world.BlockPos2D, []world.Material](conf.ColumnCache),
		distances:  newDistanceCache(conf.DistanceCache),
		queue:      make(chan *task, conf.QueueSize),
		closing:    make(chan struct{}),
	}
	g.running.Add(conf.Workers)
	for i := 0; i < conf.Workers; i++ {
		go g.worker()
	}
	return g
}

// QueueChunksForWorkerThreads queues the chunks in the square of the radius passed around centre, except
// centre itself, for generation by the workers. Chunks already cached or queued and chunks near host
// structures are skipped. The call never blocks.
func (g *Generator) QueueChunksForWorkerThreads(centre world.ChunkPos, radius int) {
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			g.queueChunk(centre.Add(int32(dx), int32(dz)))
		}
	}
}

func (g *Generator) queueChunk(pos world.ChunkPos) {
	select {
	case <-g.closing:
		return
	default:
	}
	g.mu.Lock()
	_, queued := g.inFlight[pos]
	skip := queued || g.chunks.Contains(pos)
	g.mu.Unlock()
	if skip || g.CheckHasHostStructureWithoutLoading(pos, g.conf.SearchRadius) {
		return
	}

	t := &task{pos: pos, done: make(chan struct{})}
	g.mu.Lock()
	if _, ok := g.inFlight[pos]; ok || g.chunks.Contains(pos) {
		g.mu.Unlock()
		return
	}
	g.inFlight[pos] = t
	g.mu.Unlock()

	select {
	case <-g.closing:
		g.abandon(t)
	case g.queue <- t:
	default:
		// The queue is full: enqueue asynchronously rather than blocking the caller. pending is only added to
		// under mu before closing is closed, so StopWorkerThreads can wait for it.
		g.mu.Lock()
		select {
		case <-g.closing:
			g.mu.Unlock()
			g.abandon(t)
			return
		default:
		}
		g.pending.Add(1)
		g.mu.Unlock()
		go g.enqueue(t)
		g.handleQueueBackpressure()
	}
}

func (g *Generator) enqueue(t *task) {
	defer g.pending.Done()
	select {
	case <-g.closing:
		g.abandon(t)
		return
	default:
	}
	select {
	case <-g.closing:
		g.abandon(t)
	case g.queue <- t:
	}
}

// abandon removes a task that will never run and wakes up anyone waiting for it.
func (g *Generator) abandon(t *task) {
	g.mu.Lock()
	if g.inFlight[t.pos] == t {
		delete(g.inFlight, t.pos)
	}
	g.mu.Unlock()
	close(t.done)
}

func (g *Generator) worker() {
	defer g.running.Done()
	for {
		select {
		case t := <-g.queue:
			g.run(t)
		case <-g.closing:
			g.drainQueue()
			return
		}
	}
}

func (g *Generator) run(t *task) {
	var terrain *world.Terrain
	defer func() {
		if r := recover(); r != nil {
			g.conf.Log.Error("shadow generate chunk: panic", "error", fmt.Sprint(r), "X", t.pos[0], "Z", t.pos[1])
			terrain = nil
		}
		g.finish(t, terrain)
	}()

	g.mu.Lock()
	claimed := t.claimed
	g.mu.Unlock()
	if claimed {
		return
	}
	terrain = g.base.BaseTerrain(t.pos, g.structures.JigsawRecords(t.pos))
}

// finish stores the result of a task unless the task was claimed or the generator is stopping.
func (g *Generator) finish(t *task, terrain *world.Terrain) {
	closing := false
	select {
	case <-g.closing:
		closing = true
	default:
	}

	g.mu.Lock()
	if g.inFlight[t.pos] == t {
		delete(g.inFlight, t.pos)
	}
	switch {
	case terrain == nil:
	case t.claimed || closing || g.chunks.Contains(t.pos):
		g.discarded.Add(1)
	default:
		g.chunks.Put(t.pos, terrain)
		g.generated.Add(1)
	}
	g.mu.Unlock()
	close(t.done)
}

func (g *Generator) drainQueue() {
	for {
		select {
		case t := <-g.queue:
			g.abandon(t)
		default:
			return
		}
	}
}

// GetChunkWithWait returns the terrain generated ahead of time for pos. If a worker is still generating it,
// GetChunkWithWait waits until it is done, ctx is cancelled or the wait timeout passes. In the latter cases
// the caller takes over the chunk: the worker's result is dropped and nil is returned. nil is also returned
// if the chunk was never queued.
//
// The terrain returned stays owned by the generator and must not be modified. ConsumeAndEvict takes
// ownership of it.
func (g *Generator) GetChunkWithWait(ctx context.Context, pos world.ChunkPos) *world.Terrain {
	g.mu.Lock()
	if t, ok := g.chunks.Get(pos); ok {
		g.mu.Unlock()
		g.hits.Add(1)
		return t
	}
	t, ok := g.inFlight[pos]
	g.mu.Unlock()
	if !ok {
		g.misses.Add(1)
		return nil
	}

	timer := time.NewTimer(g.conf.WaitTimeout)
	defer timer.Stop()
	select {
	case <-t.done:
	case <-timer.C:
	case <-ctx.Done():
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if terrain, ok := g.chunks.Get(pos); ok {
		g.hits.Add(1)
		return terrain
	}
	if g.inFlight[pos] == t {
		t.claimed = true
		delete(g.inFlight, pos)
		g.timeouts.Add(1)
		g.conf.Log.Debug("shadow chunk not ready in time, generating inline", "X", pos[0], "Z", pos[1])
	}
	g.misses.Add(1)
	return nil
}

// ConsumeAndEvict removes the terrain of pos from the cache and returns it, transferring ownership to the
// caller. Only the first call for a chunk gets the terrain; later calls return nil.
func (g *Generator) ConsumeAndEvict(pos world.ChunkPos) *world.Terrain {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.chunks.Get(pos)
	if !ok {
		return nil
	}
	g.chunks.Remove(pos)
	return t
}

// StopWorkerThreads stops the workers. Queued chunks are dropped, chunks being generated may finish but their
// results are not cached. StopWorkerThreads blocks until all workers have returned. Chunks already cached
// remain available.
func (g *Generator) StopWorkerThreads() {
	g.closeOnce.Do(func() {
		g.mu.Lock()
		close(g.closing)
		g.mu.Unlock()
	})
	g.pending.Wait()
	g.running.Wait()
	// Tasks sent by pending goroutines after the workers drained the queue are abandoned here.
	g.drainQueue()
}

// handleQueueBackpressure counts saturation of the queue and logs a warning at most once a minute.
func (g *Generator) handleQueueBackpressure() {
	count := g.queueSaturation.Add(1)
	now := uint64(time.Now().UnixNano())
	last := g.lastQueueSaturationLog.Load()

	if last != 0 && time.Duration(now-last) < time.Minute {
		return
	}
	if !g.lastQueueSaturationLog.CompareAndSwap(last, now) {
		return
	}
	g.conf.Log.Warn(
		"shadow generator queue saturated: consider more workers or a larger queue.",
		"queued_tasks", count,
		"queue_size", cap(g.queue),
		"workers", g.conf.Workers,
	)
}

// Metrics holds counters of a Generator.
type Metrics struct {
	// Hits and Misses count GetChunkWithWait calls that did and did not return terrain.
	Hits, Misses uint64
	// Timeouts counts waits that ended with the caller taking over the chunk.
	Timeouts uint64
	// Generated counts chunks stored by workers, Discarded results dropped because the chunk was taken over,
	// already cached or the generator was stopping.
	Generated, Discarded uint64
	// Saturated counts chunks that could not be queued right away.
	Saturated uint64
	// CachedChunks, CachedColumns and CachedDistances hold the number of entries of the caches.
	CachedChunks, CachedColumns, CachedDistances int
}

// Metrics returns a snapshot of the counters of the generator.
func (g *Generator) Metrics() Metrics {
	m := Metrics{
		Hits:      g.hits.Load(),
		Misses:    g.misses.Load(),
		Timeouts:  g.timeouts.Load(),
		Generated: g.generated.Load(),
		Discarded: g.discarded.Load(),
		Saturated: g.queueSaturation.Load(),
	}
	g.mu.Lock()
	m.CachedChunks = g.chunks.Len()
	g.mu.Unlock()
	g.colMu.Lock()
	m.CachedColumns = g.columns.Len()
	g.colMu.Unlock()
	g.distMu.Lock()
	m.CachedDistances = g.distances.len()
	g.distMu.Unlock()
	return m
}
