// Package structcache persists what decoration recorded about the units of a world: the biomes that were
// decorated and the host structures that start in them. Records of a world are keyed by a world ID, so that
// several worlds may share one database.
package structcache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/google/uuid"
	"github.com/otgmc/otg/server/world"
	"github.com/otgmc/otg/server/world/generator/otg/fifo"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Record is what is known about a decoration unit.
type Record struct {
	// Seed is the decoration seed the unit was decorated with.
	Seed int64 `nbt:"Seed"`
	// Biomes holds the names of the biomes whose resources were placed, in order.
	Biomes []string `nbt:"Biomes"`
	// Structures holds the names of the host structures starting in the unit.
	Structures []string `nbt:"Structures"`
}

// namespace is the namespace world IDs are derived in.
var namespace = uuid.MustParse("5a0e7c39-8f4e-4b8a-9d9c-0f1e6f2b4a11")

// WorldID derives the ID records of a world are stored under from its name, seed and preset fingerprint.
func WorldID(name string, seed int64, fingerprint uint64) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%v/%v/%x", name, seed, fingerprint)))
}

const keyTag = 's'

// Cache holds the records of a world. Records are kept in memory and written to disk by SaveIfDirty. If the
// database could not be opened, Cache keeps working in memory only. Cache is safe for concurrent use.
type Cache struct {
	log *slog.Logger
	db  *leveldb.DB
	id  uuid.UUID

	mu    sync.Mutex
	clean *fifo.Cache[world.ChunkPos, Record]
	dirty map[world.ChunkPos]Record
}

// Load opens the cache of the world with the ID passed in the folder dir. Errors opening the database are
// logged and result in a cache that starts cold and is not persisted. An empty dir creates a memory only
// cache.
func Load(dir string, id uuid.UUID, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	c := &Cache{log: log, id: id, clean: fifo.New[world.ChunkPos, Record](4096), dirty: make(map[world.ChunkPos]Record)}
	if dir == "" {
		return c
	}
	db, err := leveldb.OpenFile(dir, &opt.Options{Compression: opt.FlateCompression})
	if err != nil {
		log.Warn("structure cache: open failed, starting cold", "dir", dir, "error", err)
		return c
	}
	c.db = db
	return c
}

// Persistent reports if the cache is backed by a database.
func (c *Cache) Persistent() bool {
	return c.db != nil
}

func (c *Cache) key(pos world.ChunkPos) []byte {
	k := make([]byte, 0, 16+9)
	k = append(k, c.id[:]...)
	k = binary.LittleEndian.AppendUint32(k, uint32(pos[0]))
	k = binary.LittleEndian.AppendUint32(k, uint32(pos[1]))
	return append(k, keyTag)
}

// Get returns the record of the unit at pos. Records that cannot be read are logged and treated as absent.
func (c *Cache) Get(pos world.ChunkPos) (Record, bool) {
	c.mu.Lock()
	if r, ok := c.dirty[pos]; ok {
		c.mu.Unlock()
		return r, true
	}
	if r, ok := c.clean.Get(pos); ok {
		c.mu.Unlock()
		return r, true
	}
	c.mu.Unlock()
	if c.db == nil {
		return Record{}, false
	}

	data, err := c.db.Get(c.key(pos), nil)
	if err != nil {
		if !errors.Is(err, leveldb.ErrNotFound) {
			c.log.Warn("structure cache: read failed", "X", pos[0], "Z", pos[1], "error", err)
		}
		return Record{}, false
	}
	var r Record
	if err := nbt.UnmarshalEncoding(data, &r, nbt.LittleEndian); err != nil {
		c.log.Warn("structure cache: decode record", "X", pos[0], "Z", pos[1], "error", err)
		return Record{}, false
	}
	c.mu.Lock()
	if _, ok := c.dirty[pos]; !ok {
		c.clean.Put(pos, r)
	}
	c.mu.Unlock()
	return r, true
}

// Put sets the record of the unit at pos. It is written to disk on the next SaveIfDirty.
func (c *Cache) Put(pos world.ChunkPos, r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clean.Remove(pos)
	c.dirty[pos] = r
}

// Dirty reports if records were changed since the last SaveIfDirty.
func (c *Cache) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dirty) > 0
}

// SaveIfDirty writes changed records to disk. Records stay in memory if writing fails, so that a later call
// may retry.
func (c *Cache) SaveIfDirty() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.dirty) == 0 {
		return nil
	}
	if c.db != nil {
		batch := new(leveldb.Batch)
		for pos, r := range c.dirty {
			data, err := nbt.MarshalEncoding(r, nbt.LittleEndian)
			if err != nil {
				return fmt.Errorf("encode structure record %v: %w", pos, err)
			}
			batch.Put(c.key(pos), data)
		}
		if err := c.db.Write(batch, nil); err != nil {
			return fmt.Errorf("save structure cache: %w", err)
		}
	}
	for pos, r := range c.dirty {
		c.clean.Put(pos, r)
	}
	clear(c.dirty)
	return nil
}

// Close saves changed records and closes the database.
func (c *Cache) Close() error {
	err := c.SaveIfDirty()
	if c.db != nil {
		if cerr := c.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
