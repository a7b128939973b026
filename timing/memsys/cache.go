// Package memsys models the memory system behind the core's instruction
// and data ports: small L1 caches for latency accounting on top of a
// flat backing memory, plus the per-port request/response machinery.
package memsys

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// CacheConfig holds the parameters of one cache level.
type CacheConfig struct {
	// Size in bytes.
	Size int
	// Associativity (number of ways).
	Associativity int
	// BlockSize in bytes.
	BlockSize int
	// HitLatency in cycles.
	HitLatency uint64
	// MissLatency in cycles, including the backing-memory round trip.
	MissLatency uint64
}

// DefaultICacheConfig returns the default instruction-cache parameters:
// 16KB, 2-way, 64B lines.
func DefaultICacheConfig() CacheConfig {
	return CacheConfig{
		Size:          16 * 1024,
		Associativity: 2,
		BlockSize:     64,
		HitLatency:    1,
		MissLatency:   20,
	}
}

// DefaultDCacheConfig returns the default data-cache parameters:
// 16KB, 4-way, 64B lines.
func DefaultDCacheConfig() CacheConfig {
	return CacheConfig{
		Size:          16 * 1024,
		Associativity: 4,
		BlockSize:     64,
		HitLatency:    2,
		MissLatency:   20,
	}
}

// AccessResult is the outcome of one cache access.
type AccessResult struct {
	// Hit indicates whether the access hit.
	Hit bool
	// Latency is the access time in cycles.
	Latency uint64
	// Data is the value read, for reads.
	Data uint64
}

// CacheStats holds cache performance counters.
type CacheStats struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// HitRate returns hits over total accesses.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// BackingStore is the next level in the hierarchy.
type BackingStore interface {
	// Read fetches size bytes from the backing store.
	Read(addr uint64, size int) []byte
	// Write stores data to the backing store.
	Write(addr uint64, data []byte)
}

// Cache is a single cache level. The Akita cache directory manages tags,
// validity, and LRU replacement; block data lives alongside it.
type Cache struct {
	config CacheConfig

	directory *akitacache.DirectoryImpl
	dataStore [][]byte

	stats   CacheStats
	backing BackingStore
}

// NewCache creates a cache over the given backing store.
func NewCache(config CacheConfig, backing BackingStore) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() CacheConfig {
	return c.config
}

// Stats returns the cache counters.
func (c *Cache) Stats() CacheStats {
	return c.stats
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return addr / uint64(c.config.BlockSize) * uint64(c.config.BlockSize)
}

// Read reads size bytes at addr. addr+size must not cross a block
// boundary.
func (c *Cache) Read(addr uint64, size int) AccessResult {
	c.stats.Reads++

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		offset := addr % uint64(c.config.BlockSize)
		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Data:    extractData(c.dataStore[c.blockIndex(block)], offset, size),
		}
	}

	c.stats.Misses++
	return c.fill(addr, func(blockData []byte, offset uint64) uint64 {
		return extractData(blockData, offset, size)
	}, nil)
}

// WriteMasked writes the byte lanes of value selected by the byte-enable
// mask into the 8-byte-aligned location at addr. Write-allocate on miss.
func (c *Cache) WriteMasked(addr uint64, value uint64, byteEnable uint8) AccessResult {
	c.stats.Writes++

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		offset := addr % uint64(c.config.BlockSize)
		storeMasked(c.dataStore[c.blockIndex(block)], offset, value, byteEnable)
		block.IsDirty = true
		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++
	return c.fill(addr, nil, func(blockData []byte, offset uint64) {
		storeMasked(blockData, offset, value, byteEnable)
	})
}

// fill handles a miss: evict a victim, fetch the block, then apply the
// read extraction or the write mutation.
func (c *Cache) fill(
	addr uint64,
	read func(blockData []byte, offset uint64) uint64,
	write func(blockData []byte, offset uint64),
) AccessResult {
	result := AccessResult{Latency: c.config.MissLatency}

	blockAddr := c.blockAddr(addr)
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}
	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		if victim.IsDirty && c.backing != nil {
			c.stats.Writebacks++
			c.backing.Write(victim.Tag, victimData)
		}
	}

	if c.backing != nil {
		copy(victimData, c.backing.Read(blockAddr, c.config.BlockSize))
	} else {
		for i := range victimData {
			victimData[i] = 0
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	offset := addr % uint64(c.config.BlockSize)
	if write != nil {
		write(victimData, offset)
		victim.IsDirty = true
	}
	if read != nil {
		result.Data = read(victimData, offset)
	}

	c.directory.Visit(victim)
	return result
}

// Flush writes back all dirty blocks and invalidates everything.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty && c.backing != nil {
				c.stats.Writebacks++
				c.backing.Write(block.Tag, c.dataStore[c.blockIndex(block)])
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all lines without writeback and clears the counters.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = CacheStats{}
}

// extractData reads a little-endian value out of a block.
func extractData(data []byte, offset uint64, size int) uint64 {
	if int(offset)+size > len(data) {
		return 0
	}
	var result uint64
	for i := 0; i < size; i++ {
		result |= uint64(data[int(offset)+i]) << (i * 8)
	}
	return result
}

// storeMasked writes the enabled byte lanes of value into a block.
func storeMasked(data []byte, offset uint64, value uint64, byteEnable uint8) {
	for i := 0; i < 8; i++ {
		if byteEnable&(1<<i) == 0 {
			continue
		}
		if int(offset)+i >= len(data) {
			return
		}
		data[int(offset)+i] = byte(value >> (i * 8))
	}
}
