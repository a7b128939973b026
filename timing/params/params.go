// Package params provides the JSON-configurable structural and timing
// parameters of the simulated core.
package params

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lesc-ufv/RISC-V-Trojan/timing/memsys"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/pipeline"
)

// Params holds every tunable of the core and its memory system.
type Params struct {
	// ROBSize is the reorder-buffer slot count. Must be a power of 2.
	ROBSize int `json:"rob_size"`

	// IntRSSize is the integer reservation-station slot count.
	IntRSSize int `json:"int_rs_size"`

	// LoadRSSize is the load-address reservation-station slot count.
	LoadRSSize int `json:"load_rs_size"`

	// StoreRSSize is the store-address reservation-station slot count.
	StoreRSSize int `json:"store_rs_size"`

	// MulDivRSSize is the multiply/divide reservation-station slot count.
	MulDivRSSize int `json:"muldiv_rs_size"`

	// LoadBufferSize is the load-buffer slot count.
	LoadBufferSize int `json:"load_buffer_size"`

	// StoreBufferSize is the store-buffer slot count.
	StoreBufferSize int `json:"store_buffer_size"`

	// FetchWindowSize is the in-flight fetch request window.
	FetchWindowSize int `json:"fetch_window_size"`

	// QueueDepth bounds the decoded micro-op queue.
	QueueDepth int `json:"queue_depth"`

	// HazardLineBytes is the load/store hazard comparison granularity.
	HazardLineBytes uint64 `json:"hazard_line_bytes"`

	// BTBEntries is the branch-target-buffer entry count. Must be a
	// power of 2.
	BTBEntries int `json:"btb_entries"`

	// RASDepth is the return-address-stack depth.
	RASDepth int `json:"ras_depth"`

	// ICacheSize and DCacheSize are the L1 cache sizes in bytes.
	ICacheSize int `json:"icache_size"`
	DCacheSize int `json:"dcache_size"`

	// ICacheWays and DCacheWays are the L1 associativities.
	ICacheWays int `json:"icache_ways"`
	DCacheWays int `json:"dcache_ways"`

	// CacheLineBytes is the L1 cache line size.
	CacheLineBytes int `json:"cache_line_bytes"`

	// ICacheHitLatency and DCacheHitLatency are L1 hit times in cycles.
	ICacheHitLatency uint64 `json:"icache_hit_latency"`
	DCacheHitLatency uint64 `json:"dcache_hit_latency"`

	// MissLatency is the L1 miss round trip in cycles.
	MissLatency uint64 `json:"miss_latency"`

	// InstPortDepth and DataPortDepth bound the in-flight requests per
	// memory port.
	InstPortDepth int `json:"inst_port_depth"`
	DataPortDepth int `json:"data_port_depth"`
}

// Default returns the baseline parameter set.
func Default() *Params {
	return &Params{
		ROBSize:          16,
		IntRSSize:        8,
		LoadRSSize:       4,
		StoreRSSize:      4,
		MulDivRSSize:     4,
		LoadBufferSize:   8,
		StoreBufferSize:  8,
		FetchWindowSize:  4,
		QueueDepth:       8,
		HazardLineBytes:  64,
		BTBEntries:       64,
		RASDepth:         8,
		ICacheSize:       16 * 1024,
		DCacheSize:       16 * 1024,
		ICacheWays:       2,
		DCacheWays:       4,
		CacheLineBytes:   64,
		ICacheHitLatency: 1,
		DCacheHitLatency: 2,
		MissLatency:      20,
		InstPortDepth:    4,
		DataPortDepth:    4,
	}
}

// Load reads a parameter file. Missing fields keep their defaults.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}

	p := Default()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse params file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// MarshalIndent serializes the parameter set as indented JSON.
func (p *Params) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize params: %w", err)
	}
	return data, nil
}

// Save writes the parameter set to a JSON file.
func (p *Params) Save(path string) error {
	data, err := p.MarshalIndent()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write params file: %w", err)
	}
	return nil
}

// Validate checks structural constraints.
func (p *Params) Validate() error {
	if p.ROBSize <= 0 || p.ROBSize&(p.ROBSize-1) != 0 {
		return fmt.Errorf("rob_size must be a positive power of 2, got %d", p.ROBSize)
	}
	if p.BTBEntries <= 0 || p.BTBEntries&(p.BTBEntries-1) != 0 {
		return fmt.Errorf("btb_entries must be a positive power of 2, got %d", p.BTBEntries)
	}
	if p.HazardLineBytes == 0 || p.HazardLineBytes&(p.HazardLineBytes-1) != 0 {
		return fmt.Errorf("hazard_line_bytes must be a positive power of 2, got %d", p.HazardLineBytes)
	}
	sizes := map[string]int{
		"int_rs_size":       p.IntRSSize,
		"load_rs_size":      p.LoadRSSize,
		"store_rs_size":     p.StoreRSSize,
		"muldiv_rs_size":    p.MulDivRSSize,
		"load_buffer_size":  p.LoadBufferSize,
		"store_buffer_size": p.StoreBufferSize,
		"fetch_window_size": p.FetchWindowSize,
		"queue_depth":       p.QueueDepth,
		"ras_depth":         p.RASDepth,
		"inst_port_depth":   p.InstPortDepth,
		"data_port_depth":   p.DataPortDepth,
	}
	for name, v := range sizes {
		if v <= 0 {
			return fmt.Errorf("%s must be > 0, got %d", name, v)
		}
	}
	if p.IntRSSize > 64 || p.LoadRSSize > 64 || p.StoreRSSize > 64 || p.MulDivRSSize > 64 {
		return fmt.Errorf("reservation stations are limited to 64 slots")
	}
	if p.QueueDepth < 2 {
		return fmt.Errorf("queue_depth must be >= 2, got %d", p.QueueDepth)
	}
	return nil
}

// PipelineConfig converts the parameters into an engine configuration.
func (p *Params) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		ROBSize:         p.ROBSize,
		IntRSSize:       p.IntRSSize,
		LoadRSSize:      p.LoadRSSize,
		StoreRSSize:     p.StoreRSSize,
		MulDivRSSize:    p.MulDivRSSize,
		LoadBufferSize:  p.LoadBufferSize,
		StoreBufferSize: p.StoreBufferSize,
		FetchWindowSize: p.FetchWindowSize,
		QueueDepth:      p.QueueDepth,
		HazardLineBytes: p.HazardLineBytes,
		Predictor: pipeline.PredictorConfig{
			Entries:  uint32(p.BTBEntries),
			RASDepth: p.RASDepth,
		},
	}
}

// ICacheConfig converts the parameters into the instruction-cache
// configuration.
func (p *Params) ICacheConfig() memsys.CacheConfig {
	return memsys.CacheConfig{
		Size:          p.ICacheSize,
		Associativity: p.ICacheWays,
		BlockSize:     p.CacheLineBytes,
		HitLatency:    p.ICacheHitLatency,
		MissLatency:   p.MissLatency,
	}
}

// DCacheConfig converts the parameters into the data-cache
// configuration.
func (p *Params) DCacheConfig() memsys.CacheConfig {
	return memsys.CacheConfig{
		Size:          p.DCacheSize,
		Associativity: p.DCacheWays,
		BlockSize:     p.CacheLineBytes,
		HitLatency:    p.DCacheHitLatency,
		MissLatency:   p.MissLatency,
	}
}
