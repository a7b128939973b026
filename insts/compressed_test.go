package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lesc-ufv/RISC-V-Trojan/insts"
)

var _ = Describe("Compressed", func() {
	Describe("IsCompressed", func() {
		It("should detect a compressed parcel", func() {
			Expect(insts.IsCompressed(0x0505)).To(BeTrue()) // c.addi a0, 1
		})

		It("should detect a full-length parcel", func() {
			Expect(insts.IsCompressed(0x0073)).To(BeFalse()) // low half of ebreak
		})
	})

	DescribeTable("expansion to 32-bit equivalents",
		func(parcel uint16, expected uint32) {
			word, ok := insts.ExpandCompressed(parcel)
			Expect(ok).To(BeTrue())
			Expect(word).To(Equal(expected))
		},
		Entry("c.addi a0, 1 -> addi a0, a0, 1", uint16(0x0505), uint32(0x00150513)),
		Entry("c.li a0, 5 -> addi a0, x0, 5", uint16(0x4515), uint32(0x00500513)),
		Entry("c.mv a0, a1 -> add a0, x0, a1", uint16(0x852E), uint32(0x00B00533)),
		Entry("c.add a0, a1 -> add a0, a0, a1", uint16(0x952E), uint32(0x00B50533)),
		Entry("c.lw a0, 4(a1) -> lw", uint16(0x41C8), uint32(0x0045A503)),
		Entry("c.ld ra, 8(sp) -> ld", uint16(0x60A2), uint32(0x00813083)),
		Entry("c.sd ra, 8(sp) -> sd", uint16(0xE406), uint32(0x00113423)),
		Entry("c.j . -> jal x0, 0", uint16(0xA001), uint32(0x0000006F)),
		Entry("c.beqz a0, 8 -> beq a0, x0, 8", uint16(0xC501), uint32(0x00050463)),
		Entry("c.jr ra -> jalr x0, 0(ra)", uint16(0x8082), uint32(0x00008067)),
		Entry("c.jalr a0 -> jalr ra, 0(a0)", uint16(0x9502), uint32(0x000500E7)),
		Entry("c.lui a0, 1 -> lui a0, 0x1", uint16(0x6505), uint32(0x00001537)),
		Entry("c.slli a0, 2 -> slli a0, a0, 2", uint16(0x050A), uint32(0x00251513)),
		Entry("c.ebreak -> ebreak", uint16(0x9002), uint32(0x00100073)),
	)

	Describe("Illegal encodings", func() {
		It("should reject the all-zero parcel", func() {
			_, ok := insts.ExpandCompressed(0x0000)
			Expect(ok).To(BeFalse())
		})

		It("should reject C.ADDI4SPN with a zero immediate", func() {
			// quadrant 0, funct3 000, all immediate bits clear
			_, ok := insts.ExpandCompressed(0x0008)
			Expect(ok).To(BeFalse())
		})

		It("should reject C.LUI with a zero immediate", func() {
			// c.lui a0, 0 is reserved
			_, ok := insts.ExpandCompressed(0x6501)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Round trip through the decoder", func() {
		It("should decode an expanded C.BNEZ as BNE", func() {
			// c.bnez a0, -4
			word, ok := insts.ExpandCompressed(0xFD75)
			Expect(ok).To(BeTrue())

			inst := insts.NewDecoder().Decode(word)
			Expect(inst.Op).To(Equal(insts.OpBNE))
			Expect(inst.Rs1).To(Equal(uint8(10)))
			Expect(inst.Rs2).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int64(-4)))
		})
	})
})
