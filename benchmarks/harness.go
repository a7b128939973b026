package benchmarks

import (
	"github.com/lesc-ufv/RISC-V-Trojan/emu"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/core"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/params"
)

// BaseAddr is where benchmark programs are loaded.
const BaseAddr = 0x1000

// maxCycles bounds every benchmark run.
const maxCycles = 1_000_000

// Benchmark is one hand-assembled workload.
type Benchmark struct {
	// Name identifies the benchmark.
	Name string
	// Description explains what the benchmark measures.
	Description string
	// Program is the machine-code image, loaded at BaseAddr.
	Program []byte
	// Setup preloads memory before the run.
	Setup func(memory *emu.Memory)
	// ExpectedExit is the expected a0 value at the halt point.
	ExpectedExit int64
}

// Result holds one benchmark run's outcome.
type Result struct {
	// Halted reports whether the program reached its halt instruction.
	Halted bool
	// ExitCode is a0 at the halt point.
	ExitCode int64
	// Stats are the aggregated core counters.
	Stats core.Stats
}

// Run executes a benchmark on a default-parameter core.
func Run(b Benchmark) Result {
	memory := emu.NewMemory()
	memory.LoadProgram(BaseAddr, b.Program)
	if b.Setup != nil {
		b.Setup(memory)
	}

	c := core.New(memory, params.Default())
	c.SetPC(BaseAddr)
	halted := c.Run(maxCycles)

	return Result{
		Halted:   halted,
		ExitCode: c.ExitCode(),
		Stats:    c.Stats(),
	}
}
