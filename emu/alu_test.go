package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lesc-ufv/RISC-V-Trojan/emu"
	"github.com/lesc-ufv/RISC-V-Trojan/insts"
)

var _ = Describe("ALU", func() {
	It("should add with wraparound", func() {
		Expect(emu.ALUExecute(insts.ALUAdd, ^uint64(0), 1)).To(Equal(uint64(0)))
	})

	It("should subtract", func() {
		Expect(emu.ALUExecute(insts.ALUSub, 5, 7)).To(Equal(uint64(0xFFFFFFFFFFFFFFFE)))
	})

	It("should compare signed", func() {
		Expect(emu.ALUExecute(insts.ALUSlt, ^uint64(0), 0)).To(Equal(uint64(1)))
		Expect(emu.ALUExecute(insts.ALUSlt, 0, ^uint64(0))).To(Equal(uint64(0)))
	})

	It("should compare unsigned", func() {
		Expect(emu.ALUExecute(insts.ALUSltu, ^uint64(0), 0)).To(Equal(uint64(0)))
		Expect(emu.ALUExecute(insts.ALUSltu, 0, 1)).To(Equal(uint64(1)))
	})

	It("should mask shift amounts to 6 bits", func() {
		Expect(emu.ALUExecute(insts.ALUSll, 1, 64)).To(Equal(uint64(1)))
		Expect(emu.ALUExecute(insts.ALUSll, 1, 63)).To(Equal(uint64(1) << 63))
	})

	It("should shift right arithmetic", func() {
		Expect(emu.ALUExecute(insts.ALUSra, ^uint64(0), 8)).To(Equal(^uint64(0)))
		Expect(emu.ALUExecute(insts.ALUSrl, ^uint64(0), 60)).To(Equal(uint64(0xF)))
	})

	Describe("32-bit forms", func() {
		It("should sign-extend ADDW results", func() {
			// 0x7FFFFFFF + 1 overflows to the 32-bit minimum.
			got := emu.ALUExecute(insts.ALUAddW, 0x7FFFFFFF, 1)
			Expect(got).To(Equal(uint64(0xFFFFFFFF80000000)))
		})

		It("should ignore the upper operand bits", func() {
			got := emu.ALUExecute(insts.ALUAddW, 0xDEADBEEF00000001, 2)
			Expect(got).To(Equal(uint64(3)))
		})

		It("should mask SLLW shift amounts to 5 bits", func() {
			got := emu.ALUExecute(insts.ALUSllW, 1, 31)
			Expect(got).To(Equal(uint64(0xFFFFFFFF80000000)))
		})

		It("should shift right arithmetic on 32 bits", func() {
			got := emu.ALUExecute(insts.ALUSraW, 0x80000000, 4)
			Expect(got).To(Equal(uint64(0xFFFFFFFFF8000000)))
		})
	})
})
