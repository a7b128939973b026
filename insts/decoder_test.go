package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lesc-ufv/RISC-V-Trojan/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("ALU immediate", func() {
		// addi a0, x0, 1
		It("should decode ADDI a0, x0, 1", func() {
			inst := decoder.Decode(0x00100513)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(10)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int64(1)))
			Expect(inst.Lane).To(Equal(insts.LaneInt))
			Expect(inst.ALUOp).To(Equal(insts.ALUAdd))
			Expect(inst.RegWrite).To(BeTrue())
			Expect(inst.UsesRs1).To(BeTrue())
			Expect(inst.UsesRs2).To(BeFalse())
			Expect(inst.UseImm).To(BeTrue())
		})

		// slli a0, a1, 63 (RV64 6-bit shift amount)
		It("should decode SLLI with a 6-bit shift amount", func() {
			inst := decoder.Decode(0x03F59513)

			Expect(inst.Op).To(Equal(insts.OpSLLI))
			Expect(inst.Imm).To(Equal(int64(63)))
			Expect(inst.ALUOp).To(Equal(insts.ALUSll))
		})

		// srai a0, a1, 1
		It("should decode SRAI", func() {
			inst := decoder.Decode(0x4015D513)

			Expect(inst.Op).To(Equal(insts.OpSRAI))
			Expect(inst.Imm).To(Equal(int64(1)))
			Expect(inst.ALUOp).To(Equal(insts.ALUSra))
		})

		// addiw a0, a1, 1
		It("should decode ADDIW", func() {
			inst := decoder.Decode(0x0015851B)

			Expect(inst.Op).To(Equal(insts.OpADDIW))
			Expect(inst.ALUOp).To(Equal(insts.ALUAddW))
			Expect(inst.Imm).To(Equal(int64(1)))
		})
	})

	Describe("ALU register", func() {
		// add x1, x2, x3
		It("should decode ADD x1, x2, x3", func() {
			inst := decoder.Decode(0x003100B3)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Rs2).To(Equal(uint8(3)))
			Expect(inst.UsesRs1).To(BeTrue())
			Expect(inst.UsesRs2).To(BeTrue())
			Expect(inst.UseImm).To(BeFalse())
		})

		// sub a0, a1, a2
		It("should decode SUB", func() {
			inst := decoder.Decode(0x40C58533)

			Expect(inst.Op).To(Equal(insts.OpSUB))
			Expect(inst.ALUOp).To(Equal(insts.ALUSub))
		})

		It("should not write a destination of x0", func() {
			// add x0, x2, x3
			inst := decoder.Decode(0x00310033)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.RegWrite).To(BeFalse())
		})
	})

	Describe("M extension", func() {
		// mul t2, t0, t1
		It("should decode MUL onto the multiply/divide lane", func() {
			inst := decoder.Decode(0x026283B3)

			Expect(inst.Op).To(Equal(insts.OpMUL))
			Expect(inst.Lane).To(Equal(insts.LaneMulDiv))
			Expect(inst.ALUOp).To(Equal(insts.MDMul))
		})

		// divu a0, a1, a2
		It("should decode DIVU", func() {
			inst := decoder.Decode(0x02C5D533)

			Expect(inst.Op).To(Equal(insts.OpDIVU))
			Expect(inst.ALUOp).To(Equal(insts.MDDivu))
		})

		// remw a0, a1, a2
		It("should decode REMW", func() {
			inst := decoder.Decode(0x02C5E53B)

			Expect(inst.Op).To(Equal(insts.OpREMW))
			Expect(inst.Lane).To(Equal(insts.LaneMulDiv))
			Expect(inst.ALUOp).To(Equal(insts.MDRemW))
		})
	})

	Describe("Loads and stores", func() {
		// ld t0, 8(t1)
		It("should decode LD", func() {
			inst := decoder.Decode(0x00833283)

			Expect(inst.Op).To(Equal(insts.OpLD))
			Expect(inst.Class).To(Equal(insts.ClassLoad))
			Expect(inst.Lane).To(Equal(insts.LaneLoadAddr))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Imm).To(Equal(int64(8)))
			Expect(inst.MemWidth).To(Equal(uint8(8)))
			Expect(inst.MemUnsigned).To(BeFalse())
			Expect(inst.IsMemOp()).To(BeTrue())
		})

		// lbu a0, -1(a1)
		It("should decode LBU with a negative offset", func() {
			inst := decoder.Decode(0xFFF5C503)

			Expect(inst.Op).To(Equal(insts.OpLBU))
			Expect(inst.Imm).To(Equal(int64(-1)))
			Expect(inst.MemWidth).To(Equal(uint8(1)))
			Expect(inst.MemUnsigned).To(BeTrue())
		})

		// sd t0, 16(t1)
		It("should decode SD", func() {
			inst := decoder.Decode(0x00533823)

			Expect(inst.Op).To(Equal(insts.OpSD))
			Expect(inst.Class).To(Equal(insts.ClassStore))
			Expect(inst.Lane).To(Equal(insts.LaneStoreAddr))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Rs2).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int64(16)))
			Expect(inst.MemWidth).To(Equal(uint8(8)))
			Expect(inst.RegWrite).To(BeFalse())
		})
	})

	Describe("Control flow", func() {
		// beq x1, x2, +8
		It("should decode BEQ with a positive offset", func() {
			inst := decoder.Decode(0x00208463)

			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Class).To(Equal(insts.ClassBranch))
			Expect(inst.Class.IsControlFlow()).To(BeTrue())
			Expect(inst.Imm).To(Equal(int64(8)))
			Expect(inst.RegWrite).To(BeFalse())
		})

		// bne t0, zero, -8
		It("should decode BNE with a negative offset", func() {
			inst := decoder.Decode(0xFE029CE3)

			Expect(inst.Op).To(Equal(insts.OpBNE))
			Expect(inst.Imm).To(Equal(int64(-8)))
		})

		// jal ra, +16
		It("should decode JAL", func() {
			inst := decoder.Decode(0x010000EF)

			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Class).To(Equal(insts.ClassJAL))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int64(16)))
			Expect(inst.Lane).To(Equal(insts.LaneNone))
		})

		// jal x0, -4
		It("should decode a backward JAL", func() {
			inst := decoder.Decode(0xFFDFF06F)

			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Imm).To(Equal(int64(-4)))
			Expect(inst.RegWrite).To(BeFalse())
		})

		// jalr x0, 0(ra)
		It("should decode JALR", func() {
			inst := decoder.Decode(0x00008067)

			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Class).To(Equal(insts.ClassJALR))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Lane).To(Equal(insts.LaneInt))
			Expect(inst.RegWrite).To(BeFalse())
		})
	})

	Describe("Upper immediates", func() {
		// lui a0, 0x12345
		It("should decode LUI", func() {
			inst := decoder.Decode(0x12345537)

			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Imm).To(Equal(int64(0x12345000)))
			Expect(inst.Lane).To(Equal(insts.LaneNone))
		})

		// auipc a0, 0x1
		It("should decode AUIPC", func() {
			inst := decoder.Decode(0x00001517)

			Expect(inst.Op).To(Equal(insts.OpAUIPC))
			Expect(inst.Class).To(Equal(insts.ClassAUIPC))
			Expect(inst.Imm).To(Equal(int64(0x1000)))
		})

		It("should sign-extend a negative upper immediate", func() {
			// lui a0, 0xFFFFF
			inst := decoder.Decode(0xFFFFF537)

			Expect(inst.Imm).To(Equal(int64(-4096)))
		})
	})

	Describe("System and fence", func() {
		It("should decode ECALL", func() {
			inst := decoder.Decode(0x00000073)
			Expect(inst.Op).To(Equal(insts.OpECALL))
		})

		It("should decode EBREAK", func() {
			inst := decoder.Decode(0x00100073)
			Expect(inst.Op).To(Equal(insts.OpEBREAK))
		})

		It("should decode FENCE as a no-op", func() {
			inst := decoder.Decode(0x0FF0000F)
			Expect(inst.Op).To(Equal(insts.OpFENCE))
			Expect(inst.Lane).To(Equal(insts.LaneNone))
		})
	})

	Describe("Invalid encodings", func() {
		It("should mark an all-zero word unknown", func() {
			inst := decoder.Decode(0x00000000)
			Expect(inst.Op).To(Equal(insts.OpUnknown))
		})

		It("should mark a bad funct7 unknown", func() {
			// R-type with funct7 = 0x7F
			inst := decoder.Decode(0xFE3100B3)
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.RegWrite).To(BeFalse())
		})
	})
})
