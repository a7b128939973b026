package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lesc-ufv/RISC-V-Trojan/emu"
	"github.com/lesc-ufv/RISC-V-Trojan/insts"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/pipeline"
)

var _ = Describe("ExecLane", func() {
	It("should produce an ALU result one cycle after dispatch", func() {
		lane := pipeline.NewExecLane(insts.LaneInt)
		lane.Accept(pipeline.RSSlot{
			Inst:    &insts.Instruction{ALUOp: insts.ALUAdd, RegWrite: true},
			DestTag: 3,
			Op1:     pipeline.Operand{Value: 4},
			Op2:     pipeline.Operand{Value: 5},
		})

		Expect(lane.Output().Valid).To(BeFalse())
		Expect(lane.CanAccept()).To(BeFalse())

		lane.Tick()
		out := lane.Output()
		Expect(out.Valid).To(BeTrue())
		Expect(out.Tag).To(Equal(3))
		Expect(out.Value).To(Equal(uint64(9)))
		Expect(out.Broadcast).To(BeTrue())
		Expect(lane.CanAccept()).To(BeTrue())
	})

	It("should use the immediate as the second operand when selected", func() {
		lane := pipeline.NewExecLane(insts.LaneInt)
		lane.Accept(pipeline.RSSlot{
			Inst: &insts.Instruction{
				ALUOp:    insts.ALUAdd,
				UseImm:   true,
				RegWrite: true,
			},
			Op1: pipeline.Operand{Value: 10},
			Imm: -3,
		})

		lane.Tick()
		Expect(lane.Output().Value).To(Equal(uint64(7)))
	})

	It("should not broadcast a result nobody reads", func() {
		lane := pipeline.NewExecLane(insts.LaneInt)
		lane.Accept(pipeline.RSSlot{
			Inst: &insts.Instruction{ALUOp: insts.ALUAdd, RegWrite: false},
		})

		lane.Tick()
		Expect(lane.Output().Valid).To(BeTrue())
		Expect(lane.Output().Broadcast).To(BeFalse())
	})

	It("should deassert the output after one cycle", func() {
		lane := pipeline.NewExecLane(insts.LaneInt)
		lane.Accept(pipeline.RSSlot{
			Inst: &insts.Instruction{ALUOp: insts.ALUAdd, RegWrite: true},
		})

		lane.Tick()
		Expect(lane.Output().Valid).To(BeTrue())
		lane.Tick()
		Expect(lane.Output().Valid).To(BeFalse())
	})

	It("should resolve a taken branch to its target", func() {
		lane := pipeline.NewExecLane(insts.LaneInt)
		lane.Accept(pipeline.RSSlot{
			Inst: &insts.Instruction{
				Op:    insts.OpBEQ,
				Class: insts.ClassBranch,
			},
			Op1: pipeline.Operand{Value: 7},
			Op2: pipeline.Operand{Value: 7},
			Imm: 0x40,
			PC:  0x1000,
		})

		lane.Tick()
		out := lane.Output()
		Expect(out.IsControl).To(BeTrue())
		Expect(out.Taken).To(BeTrue())
		Expect(out.NextPC).To(Equal(uint64(0x1040)))
		Expect(out.Broadcast).To(BeFalse())
	})

	It("should resolve a not-taken branch to the fallthrough", func() {
		lane := pipeline.NewExecLane(insts.LaneInt)
		lane.Accept(pipeline.RSSlot{
			Inst: &insts.Instruction{
				Op:    insts.OpBNE,
				Class: insts.ClassBranch,
			},
			Op1: pipeline.Operand{Value: 7},
			Op2: pipeline.Operand{Value: 7},
			Imm: 0x40,
			PC:  0x1000,
		})

		lane.Tick()
		out := lane.Output()
		Expect(out.Taken).To(BeFalse())
		Expect(out.NextPC).To(Equal(uint64(0x1004)))
	})

	It("should compute a JALR target and link value", func() {
		lane := pipeline.NewExecLane(insts.LaneInt)
		lane.Accept(pipeline.RSSlot{
			Inst: &insts.Instruction{
				Class:    insts.ClassJALR,
				RegWrite: true,
			},
			DestTag: 2,
			Op1:     pipeline.Operand{Value: 0x2001},
			Imm:     4,
			PC:      0x1000,
		})

		lane.Tick()
		out := lane.Output()
		Expect(out.IsControl).To(BeTrue())
		Expect(out.Taken).To(BeTrue())
		// The low bit of the computed target is cleared.
		Expect(out.NextPC).To(Equal(uint64(0x2004)))
		Expect(out.Value).To(Equal(uint64(0x1004)))
		Expect(out.Broadcast).To(BeTrue())
	})

	It("should compute a load address", func() {
		lane := pipeline.NewExecLane(insts.LaneLoadAddr)
		lane.Accept(pipeline.RSSlot{
			Inst:    &insts.Instruction{},
			DestTag: 4,
			Op1:     pipeline.Operand{Value: 0x2000},
			Imm:     8,
		})

		lane.Tick()
		out := lane.Output()
		Expect(out.IsLoad).To(BeTrue())
		Expect(out.Addr).To(Equal(uint64(0x2008)))
		Expect(out.Broadcast).To(BeFalse())
	})

	It("should compute a store address and carry the data", func() {
		lane := pipeline.NewExecLane(insts.LaneStoreAddr)
		lane.Accept(pipeline.RSSlot{
			Inst: &insts.Instruction{},
			Op1:  pipeline.Operand{Value: 0x2000},
			Op2:  pipeline.Operand{Value: 0xBEEF},
			Imm:  -8,
		})

		lane.Tick()
		out := lane.Output()
		Expect(out.IsStore).To(BeTrue())
		Expect(out.Addr).To(Equal(uint64(0x1FF8)))
		Expect(out.StoreData).To(Equal(uint64(0xBEEF)))
	})

	It("should hold a multiply for the unit latency", func() {
		lane := pipeline.NewExecLane(insts.LaneMulDiv)
		lane.Accept(pipeline.RSSlot{
			Inst:    &insts.Instruction{ALUOp: insts.MDMul, RegWrite: true},
			DestTag: 6,
			Op1:     pipeline.Operand{Value: 6},
			Op2:     pipeline.Operand{Value: 7},
		})

		latency := emu.MulDivLatency(insts.MDMul)
		for i := uint64(0); i < latency-1; i++ {
			lane.Tick()
			Expect(lane.Output().Valid).To(BeFalse())
			Expect(lane.CanAccept()).To(BeFalse())
		}

		lane.Tick()
		out := lane.Output()
		Expect(out.Valid).To(BeTrue())
		Expect(out.Value).To(Equal(uint64(42)))
		Expect(out.Broadcast).To(BeTrue())
	})

	It("should discard an operation in progress on flush", func() {
		lane := pipeline.NewExecLane(insts.LaneMulDiv)
		lane.Accept(pipeline.RSSlot{
			Inst: &insts.Instruction{ALUOp: insts.MDDiv, RegWrite: true},
			Op1:  pipeline.Operand{Value: 10},
			Op2:  pipeline.Operand{Value: 2},
		})
		lane.Tick()

		lane.Flush()
		Expect(lane.CanAccept()).To(BeTrue())

		for i := 0; i < 20; i++ {
			lane.Tick()
			Expect(lane.Output().Valid).To(BeFalse())
		}
	})
})
