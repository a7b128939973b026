package memsys

import (
	"github.com/lesc-ufv/RISC-V-Trojan/emu"
)

// MemoryBacking adapts emu.Memory as a cache BackingStore.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking wraps a flat memory as a backing store.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory.
func (m *MemoryBacking) Read(addr uint64, size int) []byte {
	return m.memory.ReadBytes(addr, size)
}

// Write stores data to the backing memory.
func (m *MemoryBacking) Write(addr uint64, data []byte) {
	m.memory.WriteBytes(addr, data)
}
