package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lesc-ufv/RISC-V-Trojan/emu"
	"github.com/lesc-ufv/RISC-V-Trojan/insts"
)

var _ = Describe("MulDiv", func() {
	neg := func(v int64) uint64 { return uint64(v) }

	Describe("Multiplication", func() {
		It("should multiply low", func() {
			Expect(emu.MulDivExecute(insts.MDMul, 7, 6)).To(Equal(uint64(42)))
		})

		It("should produce the signed high word", func() {
			// -1 * 2 = -2: high word is all ones.
			Expect(emu.MulDivExecute(insts.MDMulh, neg(-1), 2)).To(Equal(^uint64(0)))
			// Large positive product.
			Expect(emu.MulDivExecute(insts.MDMulh, 1<<32, 1<<32)).To(Equal(uint64(1)))
		})

		It("should produce the unsigned high word", func() {
			Expect(emu.MulDivExecute(insts.MDMulhu, ^uint64(0), ^uint64(0))).
				To(Equal(^uint64(0) - 1))
		})

		It("should produce the signed-unsigned high word", func() {
			Expect(emu.MulDivExecute(insts.MDMulhsu, neg(-1), 2)).To(Equal(^uint64(0)))
		})

		It("should sign-extend MULW", func() {
			got := emu.MulDivExecute(insts.MDMulW, 0x80000000, 1)
			Expect(got).To(Equal(uint64(0xFFFFFFFF80000000)))
		})
	})

	Describe("Division", func() {
		It("should divide signed", func() {
			Expect(emu.MulDivExecute(insts.MDDiv, neg(-42), 5)).To(Equal(neg(-8)))
		})

		It("should return all ones on division by zero", func() {
			Expect(emu.MulDivExecute(insts.MDDiv, 42, 0)).To(Equal(^uint64(0)))
			Expect(emu.MulDivExecute(insts.MDDivu, 42, 0)).To(Equal(^uint64(0)))
		})

		It("should return the dividend on signed overflow", func() {
			minInt := neg(math.MinInt64)
			Expect(emu.MulDivExecute(insts.MDDiv, minInt, neg(-1))).To(Equal(minInt))
			Expect(emu.MulDivExecute(insts.MDRem, minInt, neg(-1))).To(Equal(uint64(0)))
		})

		It("should handle the remainder by zero", func() {
			Expect(emu.MulDivExecute(insts.MDRem, 42, 0)).To(Equal(uint64(42)))
			Expect(emu.MulDivExecute(insts.MDRemu, 42, 0)).To(Equal(uint64(42)))
		})

		It("should truncate toward zero", func() {
			Expect(emu.MulDivExecute(insts.MDRem, neg(-7), 2)).To(Equal(neg(-1)))
		})

		It("should handle the 32-bit overflow case", func() {
			minInt32 := uint64(0x80000000)
			got := emu.MulDivExecute(insts.MDDivW, minInt32, neg(-1))
			Expect(got).To(Equal(uint64(0xFFFFFFFF80000000)))
		})

		It("should divide unsigned words", func() {
			Expect(emu.MulDivExecute(insts.MDDivuW, 0xFFFFFFFF, 2)).
				To(Equal(uint64(0x7FFFFFFF)))
		})
	})

	Describe("Latency", func() {
		It("should give multiplies the short latency", func() {
			Expect(emu.MulDivLatency(insts.MDMul)).To(Equal(uint64(3)))
			Expect(emu.MulDivLatency(insts.MDMulW)).To(Equal(uint64(3)))
		})

		It("should give divides the long latency", func() {
			Expect(emu.MulDivLatency(insts.MDDiv)).To(Equal(uint64(12)))
			Expect(emu.MulDivLatency(insts.MDRemuW)).To(Equal(uint64(12)))
		})
	})
})
