package memsys_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lesc-ufv/RISC-V-Trojan/emu"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/memsys"
	"github.com/lesc-ufv/RISC-V-Trojan/timing/pipeline"
)

var _ = Describe("InstMemory", func() {
	var (
		memory *emu.Memory
		port   *memsys.InstMemory
	)

	BeforeEach(func() {
		memory = emu.NewMemory()
		cache := memsys.NewCache(memsys.CacheConfig{
			Size:          256,
			Associativity: 2,
			BlockSize:     64,
			HitLatency:    1,
			MissLatency:   5,
		}, memsys.NewMemoryBacking(memory))
		port = memsys.NewInstMemory(cache, memory, 4)
	})

	// ticksToResponse advances the port until it asserts a response.
	ticksToResponse := func() (uint64, uint32, uint64) {
		for n := uint64(1); n <= 100; n++ {
			port.Tick()
			if pc, data, ok := port.Response(); ok {
				return pc, data, n
			}
		}
		Fail("no response")
		return 0, 0, 0
	}

	It("should serve a fetch with the miss latency when cold", func() {
		memory.Write32(0x1000, 0x00100513)

		port.Request(0x1000)
		pc, data, ticks := ticksToResponse()

		Expect(pc).To(Equal(uint64(0x1000)))
		Expect(data).To(Equal(uint32(0x00100513)))
		Expect(ticks).To(Equal(uint64(5)))
	})

	It("should serve a warm fetch with the hit latency", func() {
		memory.Write32(0x1000, 0xAA)
		port.Request(0x1000)
		ticksToResponse()

		port.Request(0x1000)
		_, _, ticks := ticksToResponse()
		Expect(ticks).To(Equal(uint64(1)))
	})

	It("should let a fast fetch overtake a slow one", func() {
		memory.Write32(0x1000, 0x11)
		memory.Write32(0x2000, 0x22)
		port.Request(0x2000) // warms the 0x2000 line
		ticksToResponse()

		port.Request(0x1000) // cold, slow
		port.Request(0x2004) // warm, fast

		pc, _, _ := ticksToResponse()
		Expect(pc).To(Equal(uint64(0x2004)))

		pc, data, _ := ticksToResponse()
		Expect(pc).To(Equal(uint64(0x1000)))
		Expect(data).To(Equal(uint32(0x11)))
	})

	It("should deassert the response after one cycle", func() {
		memory.Write32(0x1000, 0x11)
		port.Request(0x1000)
		ticksToResponse()

		port.Tick()
		_, _, ok := port.Response()
		Expect(ok).To(BeFalse())
	})

	It("should track its in-flight capacity", func() {
		for i := 0; i < 4; i++ {
			Expect(port.CanAccept()).To(BeTrue())
			port.Request(uint64(0x1000 + 4*i))
		}
		Expect(port.CanAccept()).To(BeFalse())

		ticksToResponse()
		Expect(port.CanAccept()).To(BeTrue())
	})
})

var _ = Describe("DataArbiter", func() {
	var (
		memory  *emu.Memory
		arbiter *memsys.DataArbiter
	)

	BeforeEach(func() {
		memory = emu.NewMemory()
		cache := memsys.NewCache(memsys.CacheConfig{
			Size:          256,
			Associativity: 2,
			BlockSize:     64,
			HitLatency:    2,
			MissLatency:   5,
		}, memsys.NewMemoryBacking(memory))
		arbiter = memsys.NewDataArbiter(cache, memory, 4)
	})

	readResponse := func() (pipeline.DataResponse, uint64) {
		for n := uint64(1); n <= 100; n++ {
			arbiter.Tick()
			if resp := arbiter.Response(); resp.Valid {
				return resp, n
			}
		}
		Fail("no response")
		return pipeline.DataResponse{}, 0
	}

	It("should apply a write to memory in the submit cycle", func() {
		arbiter.Submit(pipeline.DataRequest{
			Write:      true,
			Addr:       0x2000,
			Data:       0xDEAD,
			ByteEnable: 0xFF,
		})

		Expect(memory.Read64(0x2000)).To(Equal(uint64(0xDEAD)))
	})

	It("should write only the enabled byte lanes", func() {
		memory.Write64(0x2000, 0x1111111111111111)

		arbiter.Submit(pipeline.DataRequest{
			Write:      true,
			Addr:       0x2000,
			Data:       0x0000000000FF0000,
			ByteEnable: 0x04,
		})

		Expect(memory.Read64(0x2000)).To(Equal(uint64(0x1111111111FF1111)))
	})

	It("should answer a cold read with the miss latency", func() {
		memory.Write64(0x2000, 77)

		arbiter.Submit(pipeline.DataRequest{Read: true, Addr: 0x2000})
		resp, ticks := readResponse()

		Expect(resp.Addr).To(Equal(uint64(0x2000)))
		Expect(resp.Data).To(Equal(uint64(77)))
		Expect(ticks).To(Equal(uint64(5)))
	})

	It("should answer a warm read with the hit latency", func() {
		arbiter.Submit(pipeline.DataRequest{Read: true, Addr: 0x2000})
		readResponse()

		arbiter.Submit(pipeline.DataRequest{Read: true, Addr: 0x2008})
		_, ticks := readResponse()
		Expect(ticks).To(Equal(uint64(2)))
	})

	It("should let a fast read overtake a slow one", func() {
		arbiter.Submit(pipeline.DataRequest{Read: true, Addr: 0x3000})
		readResponse() // warm the 0x3000 line

		arbiter.Submit(pipeline.DataRequest{Read: true, Addr: 0x2000}) // cold
		arbiter.Submit(pipeline.DataRequest{Read: true, Addr: 0x3008}) // warm

		resp, _ := readResponse()
		Expect(resp.Addr).To(Equal(uint64(0x3008)))

		resp, _ = readResponse()
		Expect(resp.Addr).To(Equal(uint64(0x2000)))
	})

	It("should return data written after the read was submitted", func() {
		arbiter.Submit(pipeline.DataRequest{Read: true, Addr: 0x2000})
		arbiter.Submit(pipeline.DataRequest{
			Write:      true,
			Addr:       0x2000,
			Data:       123,
			ByteEnable: 0xFF,
		})

		resp, _ := readResponse()
		Expect(resp.Data).To(Equal(uint64(123)))
	})

	It("should track its in-flight read capacity", func() {
		for i := 0; i < 4; i++ {
			arbiter.Submit(pipeline.DataRequest{Read: true, Addr: uint64(0x2000 + 8*i)})
		}
		Expect(arbiter.CanAccept()).To(BeFalse())

		readResponse()
		Expect(arbiter.CanAccept()).To(BeTrue())
	})
})
