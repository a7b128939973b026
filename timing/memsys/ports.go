package memsys

import (
	"github.com/lesc-ufv/RISC-V-Trojan/emu"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/pipeline"
)

// pendingAccess is one in-flight memory access inside a port.
type pendingAccess struct {
	addr    uint64
	readyAt uint64
	seq     uint64
}

// selectReady removes and returns the pending access that completes
// first among those whose latency has elapsed. Accesses with shorter
// latency overtake earlier ones, so responses can arrive out of order.
func selectReady(pending []pendingAccess, now uint64) (pendingAccess, []pendingAccess, bool) {
	best := -1
	for i, p := range pending {
		if p.readyAt > now {
			continue
		}
		if best < 0 ||
			p.readyAt < pending[best].readyAt ||
			(p.readyAt == pending[best].readyAt && p.seq < pending[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return pendingAccess{}, pending, false
	}
	chosen := pending[best]
	pending = append(pending[:best], pending[best+1:]...)
	return chosen, pending, true
}

// InstMemory serves instruction fetch: a latency model through the
// instruction cache over a flat backing memory. It implements
// pipeline.InstPort.
type InstMemory struct {
	cache  *Cache
	memory *emu.Memory

	depth   int
	now     uint64
	seq     uint64
	pending []pendingAccess

	curValid bool
	curPC    uint64
	curData  uint32
}

// NewInstMemory creates an instruction port with the given in-flight
// request capacity.
func NewInstMemory(cache *Cache, memory *emu.Memory, depth int) *InstMemory {
	return &InstMemory{
		cache:  cache,
		memory: memory,
		depth:  depth,
	}
}

// CanAccept reports whether the port has a free request slot.
func (im *InstMemory) CanAccept() bool {
	return len(im.pending) < im.depth
}

// Request submits a fetch for the 4-byte block at pc. The cache access
// determines the latency; the bytes themselves come from the backing
// memory, so a block straddling a cache line still reads correctly.
func (im *InstMemory) Request(pc uint64) {
	res := im.cache.Read(pc&^3, 4)
	im.pending = append(im.pending, pendingAccess{
		addr:    pc,
		readyAt: im.now + res.Latency,
		seq:     im.seq,
	})
	im.seq++
}

// Response returns this cycle's fetch response, if any.
func (im *InstMemory) Response() (pc uint64, data uint32, valid bool) {
	return im.curPC, im.curData, im.curValid
}

// Tick advances the port one cycle and registers at most one completed
// response for the next cycle.
func (im *InstMemory) Tick() {
	im.now++
	im.curValid = false
	chosen, rest, ok := selectReady(im.pending, im.now)
	if !ok {
		return
	}
	im.pending = rest
	im.curValid = true
	im.curPC = chosen.addr
	im.curData = im.memory.Read32(chosen.addr)
}

// DataArbiter serves the core's unified load/store port. Writes are
// applied write-through: the byte-enabled lanes land in both the cache
// and the backing memory in the cycle they are submitted, so reads can
// always take their data from the backing memory while the cache supplies
// the latency. It implements pipeline.DataPort.
type DataArbiter struct {
	cache  *Cache
	memory *emu.Memory

	depth   int
	now     uint64
	seq     uint64
	pending []pendingAccess

	current pipeline.DataResponse
}

// NewDataArbiter creates a data port with the given in-flight read
// capacity.
func NewDataArbiter(cache *Cache, memory *emu.Memory, depth int) *DataArbiter {
	return &DataArbiter{
		cache:  cache,
		memory: memory,
		depth:  depth,
	}
}

// CanAccept reports whether the port has a free request slot.
func (da *DataArbiter) CanAccept() bool {
	return len(da.pending) < da.depth
}

// Submit accepts one request. Writes complete immediately; reads queue a
// response whose latency the cache determines.
func (da *DataArbiter) Submit(req pipeline.DataRequest) {
	if req.Write {
		for i := 0; i < 8; i++ {
			if req.ByteEnable&(1<<i) != 0 {
				da.memory.Write8(req.Addr+uint64(i), byte(req.Data>>(8*i)))
			}
		}
		da.cache.WriteMasked(req.Addr, req.Data, req.ByteEnable)
		return
	}
	res := da.cache.Read(req.Addr&^7, 8)
	da.pending = append(da.pending, pendingAccess{
		addr:    req.Addr,
		readyAt: da.now + res.Latency,
		seq:     da.seq,
	})
	da.seq++
}

// Response returns this cycle's read response, if any.
func (da *DataArbiter) Response() pipeline.DataResponse {
	return da.current
}

// Tick advances the port one cycle and registers at most one completed
// read response for the next cycle.
func (da *DataArbiter) Tick() {
	da.now++
	da.current = pipeline.DataResponse{}
	chosen, rest, ok := selectReady(da.pending, da.now)
	if !ok {
		return
	}
	da.pending = rest
	da.current = pipeline.DataResponse{
		Valid: true,
		Addr:  chosen.addr,
		Data:  da.memory.Read64(chosen.addr),
	}
}
