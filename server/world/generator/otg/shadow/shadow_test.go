package shadow

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/otgmc/otg/server/world"
)

// fakeBase generates a column of stone whose height depends on the chunk position. If gate is not nil, every
// call blocks until it is closed.
type fakeBase struct {
	calls atomic.Int64
	gate  chan struct{}
}

func (b *fakeBase) BaseTerrain(pos world.ChunkPos, _ []world.JigsawRecord) *world.Terrain {
	b.calls.Add(1)
	if b.gate != nil {
		<-b.gate
	}
	t := world.NewTerrain(pos, 32)
	h := int(uint32(pos[0]*31+pos[1]*17) % 30)
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			for y := 0; y <= h; y++ {
				t.SetMaterial(x, y, z, world.Stone)
			}
		}
	}
	return t
}

// startAt is a structure source with a single structure start.
type startAt struct {
	pos   world.ChunkPos
	avoid int
	calls atomic.Int64
}

func (s *startAt) JigsawRecords(world.ChunkPos) []world.JigsawRecord { return nil }

func (s *startAt) StructureStart(pos world.ChunkPos) (int, bool) {
	s.calls.Add(1)
	return s.avoid, pos == s.pos
}

func TestConsumeAndEvictAtMostOnce(t *testing.T) {
	g := New(Config{Workers: 4, WaitTimeout: 5 * time.Second}, &fakeBase{}, nil)
	defer g.StopWorkerThreads()

	centre := world.ChunkPos{0, 0}
	g.QueueChunksForWorkerThreads(centre, 3)
	for dx := int32(-3); dx <= 3; dx++ {
		for dz := int32(-3); dz <= 3; dz++ {
			pos := centre.Add(dx, dz)
			if pos == centre {
				continue
			}
			if g.GetChunkWithWait(context.Background(), pos) == nil {
				t.Fatalf("expected chunk %v to be generated", pos)
			}
			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if g.ConsumeAndEvict(pos) != nil {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			if wins.Load() != 1 {
				t.Fatalf("chunk %v: expected exactly one winner, got %v", pos, wins.Load())
			}
		}
	}
	if g.GetChunkWithWait(context.Background(), centre) != nil {
		t.Fatalf("expected the centre not to be queued")
	}
}

func TestShadowTerrainMatchesBase(t *testing.T) {
	base := &fakeBase{}
	g := New(Config{Workers: 2, WaitTimeout: 5 * time.Second}, base, nil)
	defer g.StopWorkerThreads()

	g.QueueChunksForWorkerThreads(world.ChunkPos{10, 10}, 2)
	pos := world.ChunkPos{11, 9}
	if g.GetChunkWithWait(context.Background(), pos) == nil {
		t.Fatalf("expected chunk %v to be generated", pos)
	}
	got := g.ConsumeAndEvict(pos)
	if want := base.BaseTerrain(pos, nil); !got.Equal(want) || got.Checksum() != want.Checksum() {
		t.Fatalf("shadow terrain of %v differs from base terrain", pos)
	}
}

func TestGetChunkWithWaitWithoutQueue(t *testing.T) {
	base := &fakeBase{}
	g := New(Config{Workers: 1}, base, nil)
	defer g.StopWorkerThreads()

	if g.GetChunkWithWait(context.Background(), world.ChunkPos{4, 4}) != nil {
		t.Fatalf("expected nil for a chunk never queued")
	}
	if base.calls.Load() != 0 {
		t.Fatalf("expected no generation")
	}
}

func TestTimeoutClaimsChunk(t *testing.T) {
	base := &fakeBase{gate: make(chan struct{})}
	g := New(Config{Workers: 1, WaitTimeout: 20 * time.Millisecond}, base, nil)

	g.QueueChunksForWorkerThreads(world.ChunkPos{0, 0}, 1)
	pos := world.ChunkPos{1, 1}
	if g.GetChunkWithWait(context.Background(), pos) != nil {
		t.Fatalf("expected nil while the worker is blocked")
	}
	close(base.gate)
	g.StopWorkerThreads()

	if g.ConsumeAndEvict(pos) != nil {
		t.Fatalf("expected the worker result for a claimed chunk to be dropped")
	}
	if m := g.Metrics(); m.Timeouts != 1 {
		t.Fatalf("expected one timeout: %+v", m)
	}
}

func TestGetChunkWithWaitHonoursContext(t *testing.T) {
	base := &fakeBase{gate: make(chan struct{})}
	g := New(Config{Workers: 1, WaitTimeout: time.Hour}, base, nil)

	g.QueueChunksForWorkerThreads(world.ChunkPos{0, 0}, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if g.GetChunkWithWait(ctx, world.ChunkPos{-1, 0}) != nil {
		t.Fatalf("expected nil after the context expired")
	}
	close(base.gate)
	g.StopWorkerThreads()
}

func TestStopWorkerThreads(t *testing.T) {
	base := &fakeBase{gate: make(chan struct{})}
	g := New(Config{Workers: 1, WaitTimeout: time.Second}, base, nil)
	g.QueueChunksForWorkerThreads(world.ChunkPos{0, 0}, 2)
	for base.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	stopped := make(chan struct{})
	go func() {
		g.StopWorkerThreads()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatalf("expected StopWorkerThreads to wait for the chunk being generated")
	case <-time.After(20 * time.Millisecond):
	}
	close(base.gate)
	<-stopped

	if m := g.Metrics(); m.Generated != 0 || m.CachedChunks != 0 {
		t.Fatalf("expected no results to be cached after stopping: %+v", m)
	}
	if base.calls.Load() >= 24 {
		t.Fatalf("expected queued chunks to be dropped, %v were generated", base.calls.Load())
	}

	// Queueing after stopping is a no-op.
	g.QueueChunksForWorkerThreads(world.ChunkPos{50, 50}, 1)
	if g.GetChunkWithWait(context.Background(), world.ChunkPos{51, 50}) != nil {
		t.Fatalf("expected nothing to be queued after stopping")
	}
	g.StopWorkerThreads()
}

func TestStopAbandonsOverflowingChunks(t *testing.T) {
	base := &fakeBase{gate: make(chan struct{})}
	g := New(Config{Workers: 1, QueueSize: 1, WaitTimeout: 5 * time.Second}, base, nil)
	// One chunk is generated, one waits in the queue and the rest overflow it.
	g.QueueChunksForWorkerThreads(world.ChunkPos{0, 0}, 2)
	for base.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	if g.Metrics().Saturated == 0 {
		t.Fatalf("expected the queue to overflow")
	}

	stopped := make(chan struct{})
	go func() {
		g.StopWorkerThreads()
		close(stopped)
	}()
	close(base.gate)
	<-stopped

	g.mu.Lock()
	left := len(g.inFlight)
	g.mu.Unlock()
	if left != 0 {
		t.Fatalf("expected no chunk to stay in flight after stopping, %v did", left)
	}
	start := time.Now()
	for dx := int32(-2); dx <= 2; dx++ {
		for dz := int32(-2); dz <= 2; dz++ {
			g.GetChunkWithWait(context.Background(), world.ChunkPos{dx, dz})
		}
	}
	if d := time.Since(start); d > time.Second {
		t.Fatalf("expected lookups after stopping to return at once, took %v", d)
	}
}

func TestQueueSkipsStructureChunks(t *testing.T) {
	structures := &startAt{pos: world.ChunkPos{3, 0}, avoid: 2}
	g := New(Config{Workers: 2, WaitTimeout: 5 * time.Second, SearchRadius: 4}, &fakeBase{}, structures)
	defer g.StopWorkerThreads()

	g.QueueChunksForWorkerThreads(world.ChunkPos{0, 0}, 2)
	for dx := int32(-2); dx <= 2; dx++ {
		for dz := int32(-2); dz <= 2; dz++ {
			pos := world.ChunkPos{dx, dz}
			if pos == (world.ChunkPos{}) {
				continue
			}
			near := dx >= 1
			got := g.GetChunkWithWait(context.Background(), pos) != nil
			if got == near {
				t.Fatalf("chunk %v: expected generated %v, got %v", pos, !near, got)
			}
		}
	}
}

func TestStructureSearchIsMemoised(t *testing.T) {
	structures := &startAt{pos: world.ChunkPos{100, 100}, avoid: 4}
	g := New(Config{Workers: 1}, &fakeBase{}, structures)
	defer g.StopWorkerThreads()

	pos := world.ChunkPos{0, 0}
	if g.CheckHasHostStructureWithoutLoading(pos, 3) {
		t.Fatalf("expected no structure near %v", pos)
	}
	calls := structures.calls.Load()
	if calls != 45 {
		t.Fatalf("expected 45 start checks for radius 3, got %v", calls)
	}
	if g.CheckHasHostStructureWithoutLoading(pos, 2) || structures.calls.Load() != calls {
		t.Fatalf("expected a smaller radius to be answered from the cache")
	}
	// A larger radius only searches the new ring.
	g.CheckHasHostStructureWithoutLoading(pos, 4)
	if got := structures.calls.Load() - calls; got != 24 {
		t.Fatalf("expected 24 start checks for the fifth ring, got %v", got)
	}

	near := world.ChunkPos{97, 100}
	if !g.CheckHasHostStructureWithoutLoading(near, 4) {
		t.Fatalf("expected structure 3 chunks away from %v to be found", near)
	}
	calls = structures.calls.Load()
	if !g.CheckHasHostStructureWithoutLoading(near, 3) || structures.calls.Load() != calls {
		t.Fatalf("expected a memoised hit")
	}
	if g.CheckHasHostStructureWithoutLoading(near, 2) {
		t.Fatalf("expected no hit within 2 chunks")
	}
}

func TestStructureSearchRingsAreRound(t *testing.T) {
	// (3, 3) is 4.24 chunks away from the origin: outside of radius 3 even though it lies in its square.
	structures := &startAt{pos: world.ChunkPos{3, 3}, avoid: 4}
	g := New(Config{Workers: 1}, &fakeBase{}, structures)
	defer g.StopWorkerThreads()

	if g.CheckHasHostStructureWithoutLoading(world.ChunkPos{}, 3) {
		t.Fatalf("expected the diagonal start to lie outside of radius 3")
	}
	if !g.CheckHasHostStructureWithoutLoading(world.ChunkPos{}, 4) {
		t.Fatalf("expected the diagonal start to be found within radius 4")
	}
}

func TestDistanceCacheEvictsInInsertionOrder(t *testing.T) {
	c := newDistanceCache(3)
	for k := int64(1); k <= 3; k++ {
		c.put(k, k)
	}
	c.get(1)
	c.put(2, 20)
	c.put(4, 4)
	if _, ok := c.get(1); ok {
		t.Fatalf("expected the first key to be evicted")
	}
	for k, want := range map[int64]int64{2: 20, 3: 3, 4: 4} {
		if v, ok := c.get(k); !ok || v != want {
			t.Fatalf("key %v: expected %v, got %v %v", k, want, v, ok)
		}
	}
	if c.len() != 3 {
		t.Fatalf("expected 3 entries, got %v", c.len())
	}
}

func TestUnloadedChunkQueries(t *testing.T) {
	base := &fakeBase{}
	g := New(Config{Workers: 1}, base, nil)
	defer g.StopWorkerThreads()

	pos := world.ChunkPos{-2, 7}
	want := base.BaseTerrain(pos, nil)
	base.calls.Store(0)

	x, z := pos.BlockX()+3, pos.BlockZ()+12
	if got := g.HighestBlockYInUnloadedChunk(x, z); got != want.HeightAt(3, 12)-1 {
		t.Fatalf("expected highest block %v, got %v", want.HeightAt(3, 12)-1, got)
	}
	for y := 0; y < 32; y++ {
		if got := g.MaterialInUnloadedChunk(pos.BlockX()+5, y, pos.BlockZ()+5); got != want.Material(5, y, 5) {
			t.Fatalf("y %v: expected %v, got %v", y, want.Material(5, y, 5), got)
		}
	}
	if base.calls.Load() != 1 {
		t.Fatalf("expected the chunk to be generated once, got %v", base.calls.Load())
	}
	if g.ConsumeAndEvict(pos) != nil {
		t.Fatalf("expected unloaded chunk queries not to fill the chunk cache")
	}
}
