package structcache

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/otgmc/otg/server/world"
)

func TestRecordsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	id := WorldID("overworld", 12345, 0xabc)

	c := Load(dir, id, nil)
	if !c.Persistent() {
		t.Fatalf("expected a persistent cache")
	}
	want := Record{Seed: -42, Biomes: []string{"plains", "river"}, Structures: []string{"village"}}
	c.Put(world.ChunkPos{-3, 9}, want)
	if !c.Dirty() {
		t.Fatalf("expected cache to be dirty after a put")
	}
	if err := c.SaveIfDirty(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if c.Dirty() {
		t.Fatalf("expected cache to be clean after saving")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	c = Load(dir, id, nil)
	defer c.Close()
	got, ok := c.Get(world.ChunkPos{-3, 9})
	if !ok || got.Seed != want.Seed || !slices.Equal(got.Biomes, want.Biomes) || !slices.Equal(got.Structures, want.Structures) {
		t.Fatalf("expected %+v, got %+v (%v)", want, got, ok)
	}
	if _, ok := c.Get(world.ChunkPos{0, 0}); ok {
		t.Fatalf("expected no record for an unknown unit")
	}

	other := Load("", WorldID("overworld", 54321, 0xabc), nil)
	if _, ok := other.Get(world.ChunkPos{-3, 9}); ok {
		t.Fatalf("expected a memory only cache to start empty")
	}
}

func TestWorldsDoNotShareRecords(t *testing.T) {
	dir := t.TempDir()
	a := Load(dir, WorldID("a", 1, 1), nil)
	a.Put(world.ChunkPos{1, 1}, Record{Seed: 1})
	if err := a.SaveIfDirty(); err != nil {
		t.Fatalf("save: %v", err)
	}
	b := &Cache{log: a.log, db: a.db, id: WorldID("b", 1, 1), clean: a.clean, dirty: map[world.ChunkPos]Record{}}
	b.clean.Clear()
	if _, ok := b.Get(world.ChunkPos{1, 1}); ok {
		t.Fatalf("expected records of another world to be invisible")
	}
	_ = a.Close()
}

func TestColdStartOnOpenError(t *testing.T) {
	// A regular file where the database folder should be makes opening fail.
	path := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := Load(path, WorldID("overworld", 1, 0), nil)
	if c.Persistent() {
		t.Fatalf("expected the cache not to be persistent")
	}
	c.Put(world.ChunkPos{2, 2}, Record{Seed: 7})
	if err := c.SaveIfDirty(); err != nil {
		t.Fatalf("expected saving a memory only cache to succeed: %v", err)
	}
	if r, ok := c.Get(world.ChunkPos{2, 2}); !ok || r.Seed != 7 {
		t.Fatalf("expected record to stay available in memory")
	}
}

func TestCorruptRecordIsAbsent(t *testing.T) {
	c := Load(t.TempDir(), WorldID("overworld", 1, 0), nil)
	defer c.Close()
	pos := world.ChunkPos{5, -5}
	if err := c.db.Put(c.key(pos), []byte{0xff, 0x00, 0x13}, nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := c.Get(pos); ok {
		t.Fatalf("expected a corrupt record to be treated as absent")
	}
}
