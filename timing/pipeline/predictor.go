package pipeline

import "math/bits"

// PredictorConfig holds configuration for the branch/target predictor.
type PredictorConfig struct {
	// Entries is the number of direct-mapped target-buffer entries.
	// Must be a power of 2. Default is 64.
	Entries uint32
	// RASDepth is the return-address stack depth. Default is 8.
	RASDepth int
}

// DefaultPredictorConfig returns the default predictor configuration.
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		Entries:  64,
		RASDepth: 8,
	}
}

// PredictorStats holds statistics for the branch/target predictor.
type PredictorStats struct {
	// Lookups is the total number of predictions made.
	Lookups uint64
	// Hits is the number of lookups that matched a stored entry.
	Hits uint64
	// Updates is the number of retrospective updates applied.
	Updates uint64
	// DirectionHits and DirectionMisses count how often a hitting
	// lookup's taken/not-taken call matched the actual outcome.
	DirectionHits   uint64
	DirectionMisses uint64
	// RASPushes and RASPops count return-address stack activity.
	RASPushes uint64
	RASPops   uint64
}

// HitRate returns the target-buffer hit rate as a percentage.
func (s PredictorStats) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups) * 100
}

// DirectionAccuracy is the percentage of hitting lookups whose direction
// call matched the committed outcome.
func (s PredictorStats) DirectionAccuracy() float64 {
	scored := s.DirectionHits + s.DirectionMisses
	if scored == 0 {
		return 0
	}
	return float64(s.DirectionHits) / float64(scored) * 100
}

// Prediction is the combinational output of a predictor lookup.
type Prediction struct {
	// Hit is true when the stored entry's tag matched the PC.
	Hit bool
	// Taken is the taken/not-taken prediction.
	Taken bool
	// Target is the predicted next fetch address (valid when Taken).
	Target uint64
	// FromRAS is true when the target came from the return-address stack.
	FromRAS bool
}

// PredictorUpdate is the retrospective record applied when a control-flow
// instruction commits.
type PredictorUpdate struct {
	// PC is the committed instruction's address.
	PC uint64
	// Target is the actual next PC.
	Target uint64
	// Taken is the actual outcome; jumps are always taken.
	Taken bool
	// IsJump marks unconditional jumps (JAL/JALR), which bypass the
	// hysteresis counter on later lookups.
	IsJump bool
	// WasHit and PredTaken are the hit flag and direction call from the
	// original lookup, for accuracy accounting.
	WasHit    bool
	PredTaken bool
	// PushLink requests a return-address push (a call-convention link
	// register was written); LinkValue is the return address.
	PushLink  bool
	LinkValue uint64
	// PopLink requests a return-address pop (a call-convention link
	// register was read and not simultaneously written to itself).
	PopLink bool
}

// btbEntry is one direct-mapped target-buffer entry.
type btbEntry struct {
	valid   bool
	tag     uint64
	target  uint64
	isJump  bool
	pop     bool
	counter uint8 // 2-bit saturating taken/not-taken hysteresis
}

// Predictor is a direct-mapped branch target buffer combined with a LIFO
// return-address stack. Aliasing collisions silently mispredict and are
// recovered on the normal mispredict path.
type Predictor struct {
	entries []btbEntry
	mask    uint64

	ras      []uint64
	rasDepth int

	stats PredictorStats
}

// NewPredictor creates a predictor with the given configuration.
func NewPredictor(config PredictorConfig) *Predictor {
	entries := config.Entries
	if entries == 0 {
		entries = 64
	}
	depth := config.RASDepth
	if depth == 0 {
		depth = 8
	}

	return &Predictor{
		entries:  make([]btbEntry, entries),
		mask:     uint64(entries - 1),
		rasDepth: depth,
	}
}

// index hashes a PC into a table index. The low bit is dropped because
// instructions are at least 2-byte aligned.
func (p *Predictor) index(pc uint64) uint64 {
	return (pc >> 1) & p.mask
}

// tagOf returns the stored tag for a PC (the bits above the index).
func (p *Predictor) tagOf(pc uint64) uint64 {
	return pc >> 1 >> uint(bits.OnesCount64(p.mask))
}

// Predict performs a combinational lookup for the given fetch PC.
func (p *Predictor) Predict(pc uint64) Prediction {
	p.stats.Lookups++

	e := p.entries[p.index(pc)]
	if !e.valid || e.tag != p.tagOf(pc) {
		return Prediction{}
	}
	p.stats.Hits++

	pred := Prediction{Hit: true, Target: e.target}

	// A stored return prefers the return-address stack when it has an
	// entry; the direct-mapped target is the fallback.
	if e.pop && len(p.ras) > 0 {
		pred.Target = p.ras[len(p.ras)-1]
		pred.FromRAS = true
	}

	if e.isJump {
		pred.Taken = true
	} else {
		pred.Taken = e.counter >= 2
	}
	return pred
}

// Update applies a retrospective outcome record. One entry is
// unconditionally overwritten per update.
func (p *Predictor) Update(u PredictorUpdate) {
	p.stats.Updates++
	if u.WasHit {
		if u.PredTaken == u.Taken {
			p.stats.DirectionHits++
		} else {
			p.stats.DirectionMisses++
		}
	}

	idx := p.index(u.PC)
	e := &p.entries[idx]

	sameEntry := e.valid && e.tag == p.tagOf(u.PC)
	counter := uint8(1)
	if sameEntry {
		counter = e.counter
	}
	if u.Taken {
		if counter < 3 {
			counter++
		}
	} else if counter > 0 {
		counter--
	}

	*e = btbEntry{
		valid:   true,
		tag:     p.tagOf(u.PC),
		target:  u.Target,
		isJump:  u.IsJump,
		pop:     u.PopLink,
		counter: counter,
	}

	if u.PushLink {
		p.pushRAS(u.LinkValue)
	}
	if u.PopLink {
		p.popRAS()
	}
}

// pushRAS pushes a return address, evicting the oldest entry when full.
func (p *Predictor) pushRAS(addr uint64) {
	p.stats.RASPushes++
	if len(p.ras) == p.rasDepth {
		copy(p.ras, p.ras[1:])
		p.ras[len(p.ras)-1] = addr
		return
	}
	p.ras = append(p.ras, addr)
}

// popRAS removes the most recent return address.
func (p *Predictor) popRAS() {
	if len(p.ras) == 0 {
		return
	}
	p.stats.RASPops++
	p.ras = p.ras[:len(p.ras)-1]
}

// RASDepthNow returns the current number of stacked return addresses.
func (p *Predictor) RASDepthNow() int {
	return len(p.ras)
}

// Stats returns the predictor statistics.
func (p *Predictor) Stats() PredictorStats {
	return p.stats
}

// Reset clears all predictor state and statistics.
func (p *Predictor) Reset() {
	for i := range p.entries {
		p.entries[i] = btbEntry{}
	}
	p.ras = p.ras[:0]
	p.stats = PredictorStats{}
}
