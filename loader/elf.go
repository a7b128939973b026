// Package loader loads RISC-V program images: 64-bit RISC-V ELF
// executables or raw flat binaries.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
	"os"

	"github.com/lesc-ufv/RISC-V-Trojan/emu"
)

// DefaultStackTop is the initial stack pointer for loaded programs.
const DefaultStackTop = 0x7ffffff000

// Segment is one loadable region of a program image.
type Segment struct {
	// VirtAddr is the load address.
	VirtAddr uint64
	// Data is the file-backed content.
	Data []byte
	// MemSize is the in-memory size; the tail past len(Data) is
	// zero-filled (BSS).
	MemSize uint64
}

// Program is a parsed image ready to place into memory.
type Program struct {
	// EntryPoint is the first fetch address.
	EntryPoint uint64
	// Segments are the loadable regions.
	Segments []Segment
	// InitialSP is the initial stack pointer value.
	InitialSP uint64
}

// Load parses a 64-bit RISC-V ELF executable.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("not a 64-bit ELF file")
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		EntryPoint: f.Entry,
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: phdr.Vaddr,
			Data:     data,
			MemSize:  phdr.Memsz,
		})
	}

	return prog, nil
}

// LoadFlat wraps a raw binary as a single segment at the given base.
func LoadFlat(path string, base uint64) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flat binary: %w", err)
	}
	return &Program{
		EntryPoint: base,
		InitialSP:  DefaultStackTop,
		Segments: []Segment{
			{VirtAddr: base, Data: data, MemSize: uint64(len(data))},
		},
	}, nil
}

// Place copies every segment into memory and zero-fills the BSS tails.
func (p *Program) Place(memory *emu.Memory) {
	for _, seg := range p.Segments {
		memory.LoadProgram(seg.VirtAddr, seg.Data)
		for addr := seg.VirtAddr + uint64(len(seg.Data)); addr < seg.VirtAddr+seg.MemSize; addr++ {
			memory.Write8(addr, 0)
		}
	}
}
