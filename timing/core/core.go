// Package core assembles a complete simulated core: the out-of-order
// engine, the L1 caches, the memory ports, and the flat backing memory.
package core

import (
	"io"

	"github.com/lesc-ufv/RISC-V-Trojan/emu"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/memsys"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/params"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/pipeline"
)

// Stats aggregates the counters of every component.
type Stats struct {
	// Engine holds the pipeline counters.
	Engine pipeline.Statistics
	// Predictor holds the branch-predictor counters.
	Predictor pipeline.PredictorStats
	// ICache and DCache hold the L1 counters.
	ICache memsys.CacheStats
	DCache memsys.CacheStats
}

// Core is one simulated core with its private memory system.
type Core struct {
	// Pipeline is the out-of-order engine.
	Pipeline *pipeline.Pipeline

	memory *emu.Memory
	icache *memsys.Cache
	dcache *memsys.Cache
}

// Option is a functional option for configuring the Core.
type Option func(*coreOpts)

type coreOpts struct {
	trace io.Writer
}

// WithTrace enables a per-commit trace on the engine.
func WithTrace(w io.Writer) Option {
	return func(o *coreOpts) {
		o.trace = w
	}
}

// New builds a core over the given memory with the given parameters.
func New(memory *emu.Memory, p *params.Params, opts ...Option) *Core {
	var o coreOpts
	for _, opt := range opts {
		opt(&o)
	}

	backing := memsys.NewMemoryBacking(memory)
	icache := memsys.NewCache(p.ICacheConfig(), backing)
	dcache := memsys.NewCache(p.DCacheConfig(), backing)
	instPort := memsys.NewInstMemory(icache, memory, p.InstPortDepth)
	dataPort := memsys.NewDataArbiter(dcache, memory, p.DataPortDepth)

	pipeOpts := []pipeline.Option{
		pipeline.WithConfig(p.PipelineConfig()),
	}
	if o.trace != nil {
		pipeOpts = append(pipeOpts, pipeline.WithTrace(o.trace))
	}

	return &Core{
		Pipeline: pipeline.NewPipeline(instPort, dataPort, pipeOpts...),
		memory:   memory,
		icache:   icache,
		dcache:   dcache,
	}
}

// Memory returns the backing memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// SetPC sets the fetch entry point.
func (c *Core) SetPC(pc uint64) {
	c.Pipeline.SetPC(pc)
}

// Tick advances the core one cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Halted reports whether the core retired a halting instruction.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// ExitCode returns the value of a0 at the halt point.
func (c *Core) ExitCode() int64 {
	return c.Pipeline.ExitCode()
}

// Run advances the core until it halts or maxCycles elapse.
// It returns true if the core halted.
func (c *Core) Run(maxCycles uint64) bool {
	return c.Pipeline.Run(maxCycles)
}

// Stats returns the aggregated counters.
func (c *Core) Stats() Stats {
	return Stats{
		Engine:    c.Pipeline.Stats(),
		Predictor: c.Pipeline.Predictor().Stats(),
		ICache:    c.icache.Stats(),
		DCache:    c.dcache.Stats(),
	}
}
