package pipeline

import (
	"github.com/lesc-ufv/RISC-V-Trojan/emu"
	"github.com/lesc-ufv/RISC-V-Trojan/insts"
)

// LaneOutput is an execution lane's registered result, held stable for one
// cycle for the common-data-bus listeners.
type LaneOutput struct {
	// Valid marks the output as present this cycle.
	Valid bool
	// Tag is the destination reorder-buffer slot.
	Tag int
	// Value is the produced value: the ALU result, the load address, the
	// link value for JALR, or the actual next PC for branches.
	Value uint64

	// Control-flow results.
	IsControl bool
	NextPC    uint64
	Taken     bool

	// Memory results.
	IsLoad    bool
	IsStore   bool
	Addr      uint64
	StoreData uint64

	// Broadcast marks results that go out on the common data bus
	// (register-producing values; branch outcomes and store addresses
	// complete in the reorder buffer without waking anyone).
	Broadcast bool
}

// ExecLane is a one-deep execution pipeline register with a ready/valid
// handshake toward its reservation station. The multiply/divide lane is
// multi-cycle: it latches its inputs until the unit reports completion.
type ExecLane struct {
	lane insts.Lane

	busy      bool
	slot      RSSlot
	remaining uint64

	out LaneOutput
}

// NewExecLane creates an execution lane of the given kind.
func NewExecLane(lane insts.Lane) *ExecLane {
	return &ExecLane{lane: lane}
}

// CanAccept reports whether the lane can latch a new instruction this
// cycle.
func (l *ExecLane) CanAccept() bool {
	return !l.busy
}

// Accept latches a dispatched reservation-station slot.
func (l *ExecLane) Accept(slot RSSlot) {
	l.busy = true
	l.slot = slot
	if l.lane == insts.LaneMulDiv {
		l.remaining = emu.MulDivLatency(slot.Inst.ALUOp)
	} else {
		l.remaining = 1
	}
}

// Output returns the lane's registered result for this cycle.
func (l *ExecLane) Output() LaneOutput {
	return l.out
}

// Tick advances the lane one cycle: counts down the latch, computes the
// result when the unit finishes, and registers the output for the next
// cycle's broadcast.
func (l *ExecLane) Tick() {
	l.out = LaneOutput{}
	if !l.busy {
		return
	}
	l.remaining--
	if l.remaining > 0 {
		return
	}

	l.out = l.compute()
	l.busy = false
	l.slot = RSSlot{}
}

// compute produces the lane's result from the latched slot.
func (l *ExecLane) compute() LaneOutput {
	s := &l.slot
	out := LaneOutput{
		Valid: true,
		Tag:   s.DestTag,
	}

	a := s.Op1.Value
	b := s.Op2.Value
	if s.Inst.UseImm {
		b = uint64(s.Imm)
	}

	switch l.lane {
	case insts.LaneMulDiv:
		out.Value = emu.MulDivExecute(s.Inst.ALUOp, a, s.Op2.Value)
		out.Broadcast = true
	case insts.LaneLoadAddr:
		out.IsLoad = true
		out.Addr = a + uint64(s.Imm)
		out.Value = out.Addr
	case insts.LaneStoreAddr:
		out.IsStore = true
		out.Addr = a + uint64(s.Imm)
		out.StoreData = s.Op2.Value
		out.Value = out.Addr
	default:
		switch s.Inst.Class {
		case insts.ClassBranch:
			out.IsControl = true
			out.Taken = branchTaken(s.Inst.Op, a, s.Op2.Value)
			if out.Taken {
				out.NextPC = s.PC + uint64(s.Imm)
			} else {
				out.NextPC = s.PC + s.Inst.Len()
			}
		case insts.ClassJALR:
			out.IsControl = true
			out.Taken = true
			out.NextPC = (a + uint64(s.Imm)) &^ 1
			// The link value goes out on the bus; the target is
			// checked at commit.
			out.Value = s.PC + s.Inst.Len()
			out.Broadcast = s.Inst.RegWrite
		default:
			out.Value = emu.ALUExecute(s.Inst.ALUOp, a, b)
			out.Broadcast = s.Inst.RegWrite
		}
	}
	return out
}

// Flush clears the lane, including a multi-cycle operation in progress.
func (l *ExecLane) Flush() {
	l.busy = false
	l.slot = RSSlot{}
	l.remaining = 0
	l.out = LaneOutput{}
}

// branchTaken evaluates a conditional branch.
func branchTaken(op insts.Op, a, b uint64) bool {
	switch op {
	case insts.OpBEQ:
		return a == b
	case insts.OpBNE:
		return a != b
	case insts.OpBLT:
		return int64(a) < int64(b)
	case insts.OpBGE:
		return int64(a) >= int64(b)
	case insts.OpBLTU:
		return a < b
	case insts.OpBGEU:
		return a >= b
	}
	return false
}
