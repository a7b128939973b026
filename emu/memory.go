package emu

import "encoding/binary"

// pageSize is the granularity of the sparse backing store.
const pageSize = 4096

// Memory is a sparse little-endian byte-addressable memory.
// Unwritten locations read as zero.
type Memory struct {
	pages map[uint64]*[pageSize]byte
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{
		pages: make(map[uint64]*[pageSize]byte),
	}
}

// page returns the page containing addr, allocating it when writing.
func (m *Memory) page(addr uint64, allocate bool) *[pageSize]byte {
	base := addr / pageSize
	p, ok := m.pages[base]
	if !ok && allocate {
		p = &[pageSize]byte{}
		m.pages[base] = p
	}
	return p
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint64) uint8 {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr%pageSize]
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint64, value uint8) {
	m.page(addr, true)[addr%pageSize] = value
}

// ReadBytes reads size bytes starting at addr.
func (m *Memory) ReadBytes(addr uint64, size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = m.Read8(addr + uint64(i))
	}
	return buf
}

// WriteBytes writes data starting at addr.
func (m *Memory) WriteBytes(addr uint64, data []byte) {
	for i, b := range data {
		m.Write8(addr+uint64(i), b)
	}
}

// Read16 reads a little-endian 16-bit value.
func (m *Memory) Read16(addr uint64) uint16 {
	return binary.LittleEndian.Uint16(m.ReadBytes(addr, 2))
}

// Write16 writes a little-endian 16-bit value.
func (m *Memory) Write16(addr uint64, value uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], value)
	m.WriteBytes(addr, buf[:])
}

// Read32 reads a little-endian 32-bit value.
func (m *Memory) Read32(addr uint64) uint32 {
	return binary.LittleEndian.Uint32(m.ReadBytes(addr, 4))
}

// Write32 writes a little-endian 32-bit value.
func (m *Memory) Write32(addr uint64, value uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	m.WriteBytes(addr, buf[:])
}

// Read64 reads a little-endian 64-bit value.
func (m *Memory) Read64(addr uint64) uint64 {
	return binary.LittleEndian.Uint64(m.ReadBytes(addr, 8))
}

// Write64 writes a little-endian 64-bit value.
func (m *Memory) Write64(addr uint64, value uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	m.WriteBytes(addr, buf[:])
}

// LoadProgram copies a raw image into memory at the given base address.
func (m *Memory) LoadProgram(base uint64, image []byte) {
	m.WriteBytes(base, image)
}
