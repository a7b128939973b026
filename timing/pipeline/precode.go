package pipeline

import "github.com/lesc-ufv/RISC-V-Trojan/insts"

// DecodedOp is one decoded micro-operation with its program counter and
// the fetch-time prediction that applies to it.
type DecodedOp struct {
	Inst      *insts.Instruction
	PC        uint64
	PredTaken bool
	PredHit   bool
}

// Precoder turns raw fetch blocks into whole decoded instructions. It
// expands 16-bit compressed parcels, reassembles a 32-bit instruction
// straddling two consecutive blocks, and assigns each instruction its
// fetch-relative PC. The straddling fragment is its only state.
type Precoder struct {
	decoder *insts.Decoder

	fragValid bool
	frag      uint16
	fragPC    uint64
}

// NewPrecoder creates a precoder.
func NewPrecoder() *Precoder {
	return &Precoder{decoder: insts.NewDecoder()}
}

// Process decodes one fetch block into 0..2 instructions.
// When the block's prediction says taken, parcels after the predicted
// instruction are dropped, as fetch already redirected past them.
func (p *Precoder) Process(pc uint64, block uint32, pred Prediction) []DecodedOp {
	var ops []DecodedOp
	offset := uint64(0)

	if p.fragValid {
		word := uint32(p.frag) | block<<16
		inst := p.decoder.Decode(word)
		ops = append(ops, DecodedOp{Inst: inst, PC: p.fragPC})
		p.fragValid = false
		offset = 2
	}

	for offset < FetchBlockBytes {
		parcelPC := pc + offset
		parcel := uint16(block >> (8 * offset))

		if insts.IsCompressed(parcel) {
			word, ok := insts.ExpandCompressed(parcel)
			if !ok {
				word = 0
			}
			inst := p.decoder.Decode(word)
			inst.Compressed = true
			ops = append(ops, DecodedOp{Inst: inst, PC: parcelPC})
			offset += 2
			continue
		}

		if offset+4 > FetchBlockBytes {
			// The instruction continues in the next block; hold the
			// fragment and prefix it when that block arrives.
			p.frag = parcel
			p.fragPC = parcelPC
			p.fragValid = true
			break
		}

		inst := p.decoder.Decode(block >> (8 * offset))
		ops = append(ops, DecodedOp{Inst: inst, PC: parcelPC})
		offset += 4
	}

	if pred.Hit && pred.Taken {
		// The prediction is keyed by the block address, so it names the
		// block's first instruction. Everything after it is not on the
		// predicted path.
		for i := range ops {
			if ops[i].PC == pc {
				ops[i].PredTaken = true
				ops[i].PredHit = true
				ops = ops[:i+1]
				p.fragValid = false
				break
			}
		}
	} else if pred.Hit {
		for i := range ops {
			if ops[i].PC == pc {
				ops[i].PredHit = true
				break
			}
		}
	}

	return ops
}

// Reset drops the straddling fragment (on flush).
func (p *Precoder) Reset() {
	p.fragValid = false
	p.frag = 0
	p.fragPC = 0
}
