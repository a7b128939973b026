package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lesc-ufv/RISC-V-Trojan/timing/pipeline"
)

var _ = Describe("StoreBuffer", func() {
	var sb *pipeline.StoreBuffer

	BeforeEach(func() {
		sb = pipeline.NewStoreBuffer(4)
	})

	It("should start empty", func() {
		Expect(sb.CanAccept()).To(BeTrue())
		Expect(sb.Occupancy()).To(Equal(0))
		Expect(sb.HeadReady(0)).To(BeFalse())
	})

	It("should gate the head on readiness and tag", func() {
		sb.Allocate(3, 8)
		Expect(sb.HeadReady(3)).To(BeFalse())

		sb.Fill(3, 0x2000, 0xAB)
		Expect(sb.HeadReady(3)).To(BeTrue())
		Expect(sb.HeadReady(4)).To(BeFalse())

		slot := sb.Pop()
		Expect(slot.Addr).To(Equal(uint64(0x2000)))
		Expect(slot.Data).To(Equal(uint64(0xAB)))
		Expect(slot.Width).To(Equal(uint8(8)))
		Expect(sb.Occupancy()).To(Equal(0))
	})

	It("should fill out of order but drain in order", func() {
		sb.Allocate(1, 8)
		sb.Allocate(2, 4)

		sb.Fill(2, 0x3000, 20)
		Expect(sb.HeadReady(1)).To(BeFalse())
		Expect(sb.HeadReady(2)).To(BeFalse())

		sb.Fill(1, 0x2000, 10)
		Expect(sb.HeadReady(1)).To(BeTrue())

		Expect(sb.Pop().Addr).To(Equal(uint64(0x2000)))
		Expect(sb.HeadReady(2)).To(BeTrue())
		Expect(sb.Pop().Addr).To(Equal(uint64(0x3000)))
	})

	It("should fill the earliest slot when tags repeat after a wrap", func() {
		for tag := 0; tag < 4; tag++ {
			sb.Allocate(tag, 8)
		}
		Expect(sb.CanAccept()).To(BeFalse())

		sb.Fill(0, 0x1000, 1)
		Expect(sb.HeadReady(0)).To(BeTrue())
		sb.Pop()

		sb.Allocate(0, 8)
		sb.Fill(0, 0x5000, 5)

		// Slots 1..3 then drain, leaving the new tag-0 store.
		for tag := 1; tag < 4; tag++ {
			sb.Fill(tag, uint64(0x1000+tag*8), uint64(tag))
			Expect(sb.HeadReady(tag)).To(BeTrue())
			sb.Pop()
		}
		Expect(sb.HeadReady(0)).To(BeTrue())
		Expect(sb.Pop().Addr).To(Equal(uint64(0x5000)))
	})

	It("should empty on flush", func() {
		sb.Allocate(1, 8)
		sb.Fill(1, 0x2000, 9)
		sb.Flush()

		Expect(sb.Occupancy()).To(Equal(0))
		Expect(sb.HeadReady(1)).To(BeFalse())
		Expect(sb.CanAccept()).To(BeTrue())
	})
})

var _ = Describe("ByteEnable", func() {
	It("should enable all lanes for an aligned doubleword", func() {
		Expect(pipeline.ByteEnable(0x2000, 8)).To(Equal(uint8(0xFF)))
	})

	It("should shift lanes by the address offset", func() {
		Expect(pipeline.ByteEnable(0x2000, 1)).To(Equal(uint8(0x01)))
		Expect(pipeline.ByteEnable(0x2003, 1)).To(Equal(uint8(0x08)))
		Expect(pipeline.ByteEnable(0x2002, 2)).To(Equal(uint8(0x0C)))
		Expect(pipeline.ByteEnable(0x2004, 4)).To(Equal(uint8(0xF0)))
	})

	It("should return zero for misaligned accesses", func() {
		Expect(pipeline.ByteEnable(0x2001, 2)).To(Equal(uint8(0)))
		Expect(pipeline.ByteEnable(0x2002, 4)).To(Equal(uint8(0)))
		Expect(pipeline.ByteEnable(0x2003, 8)).To(Equal(uint8(0)))
	})
})

var _ = Describe("ReplicateData", func() {
	It("should place a byte in its lane", func() {
		Expect(pipeline.ReplicateData(0xAB, 0x2003, 1)).
			To(Equal(uint64(0xAB000000)))
	})

	It("should truncate the value to the access width", func() {
		Expect(pipeline.ReplicateData(0x1FFFF, 0x2000, 2)).
			To(Equal(uint64(0xFFFF)))
	})

	It("should place a word in the upper half", func() {
		Expect(pipeline.ReplicateData(0x11223344, 0x2004, 4)).
			To(Equal(uint64(0x1122334400000000)))
	})

	It("should pass an aligned doubleword through", func() {
		v := uint64(0x8877665544332211)
		Expect(pipeline.ReplicateData(v, 0x2000, 8)).To(Equal(v))
	})
})
