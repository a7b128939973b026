package pipeline

// LoadState is the lifecycle state of a load-buffer slot.
type LoadState uint8

// Load-slot states, in lifecycle order.
const (
	LoadEmpty LoadState = iota
	LoadIssued
	LoadAddrReady
	LoadSentToMem
	LoadDataReady
	LoadSentToROB
)

// LoadSlot tracks one in-flight load.
type LoadSlot struct {
	State    LoadState
	Tag      int
	Addr     uint64
	Data     uint64
	Width    uint8
	Unsigned bool
}

// loadStaging is the one-entry buffer between a memory response and its
// delivery to the reorder buffer. It must drain before the next match.
type loadStaging struct {
	valid bool
	tag   int
	value uint64
}

// LoadBuffer tracks in-flight loads in program order. Slots are allocated
// and committed strictly in order; addresses resolve and memory responds
// out of order.
type LoadBuffer struct {
	slots []LoadSlot
	head  int
	tail  int
	count int

	staging loadStaging

	lineShift uint
}

// NewLoadBuffer creates a load buffer. lineBytes is the hazard-comparison
// granularity (a cache line).
func NewLoadBuffer(size int, lineBytes uint64) *LoadBuffer {
	shift := uint(0)
	for b := lineBytes; b > 1; b >>= 1 {
		shift++
	}
	return &LoadBuffer{
		slots:     make([]LoadSlot, size),
		lineShift: shift,
	}
}

// CanAccept reports whether a free slot exists and delivery staging will
// not be overrun.
func (lb *LoadBuffer) CanAccept() bool {
	return lb.count < len(lb.slots)
}

// Allocate claims the next FIFO slot for an issued load.
func (lb *LoadBuffer) Allocate(tag int, width uint8, unsigned bool) {
	lb.slots[lb.tail] = LoadSlot{
		State:    LoadIssued,
		Tag:      tag,
		Width:    width,
		Unsigned: unsigned,
	}
	lb.tail = (lb.tail + 1) % len(lb.slots)
	lb.count++
}

// FillAddress records a resolved address for the tagged load.
func (lb *LoadBuffer) FillAddress(tag int, addr uint64) {
	idx, ok := EarliestInWindow(len(lb.slots), lb.head, lb.count, func(i int) bool {
		return lb.slots[i].State == LoadIssued && lb.slots[i].Tag == tag
	})
	if !ok {
		return
	}
	lb.slots[idx].Addr = addr
	lb.slots[idx].State = LoadAddrReady
}

// NextMemRequest selects the earliest address-ready slot for the memory
// port. MarkSent must be called once the request handshake completes.
func (lb *LoadBuffer) NextMemRequest() (addr uint64, width uint8, ok bool) {
	idx, found := lb.earliestInState(LoadAddrReady)
	if !found {
		return 0, 0, false
	}
	return lb.slots[idx].Addr, lb.slots[idx].Width, true
}

// MarkSent moves the earliest address-ready slot to the sent state.
func (lb *LoadBuffer) MarkSent() {
	if idx, ok := lb.earliestInState(LoadAddrReady); ok {
		lb.slots[idx].State = LoadSentToMem
	}
}

// OnMemResponse matches a memory response by address against the earliest
// outstanding load to that address and records its data.
func (lb *LoadBuffer) OnMemResponse(addr uint64, data uint64) {
	idx, ok := EarliestInWindow(len(lb.slots), lb.head, lb.count, func(i int) bool {
		return lb.slots[i].State == LoadSentToMem && lb.slots[i].Addr == addr
	})
	if !ok {
		// No waiting slot: a response for a flushed load is dropped.
		return
	}
	s := &lb.slots[idx]
	s.Data = extendLoadData(data, s.Width, s.Unsigned)
	s.State = LoadDataReady
}

// Deliver drains the staging buffer and stages the next data-ready slot.
// The returned broadcast carries the load result to the reorder buffer
// and the common data bus.
func (lb *LoadBuffer) Deliver() (out Broadcast) {
	if lb.staging.valid {
		out = Broadcast{Valid: true, Tag: lb.staging.tag, Value: lb.staging.value}
		lb.staging = loadStaging{}
	}

	if idx, ok := lb.earliestInState(LoadDataReady); ok {
		s := &lb.slots[idx]
		lb.staging = loadStaging{valid: true, tag: s.Tag, value: s.Data}
		s.State = LoadSentToROB
	}
	return out
}

// Release frees the head slot when its instruction commits. Commits are
// strictly in allocation order.
func (lb *LoadBuffer) Release(tag int) {
	if lb.count == 0 || lb.slots[lb.head].Tag != tag {
		return
	}
	lb.slots[lb.head] = LoadSlot{}
	lb.head = (lb.head + 1) % len(lb.slots)
	lb.count--
}

// HazardTag reports the earliest uncommitted load whose address line
// matches the given line and whose data may already be stale (the load
// was issued to memory, or its data already returned). The comparison is
// intentionally conservative at cache-line granularity.
func (lb *LoadBuffer) HazardTag(line uint64) (tag int, found bool) {
	idx, ok := EarliestInWindow(len(lb.slots), lb.head, lb.count, func(i int) bool {
		s := &lb.slots[i]
		return s.State >= LoadSentToMem && s.Addr>>lb.lineShift == line
	})
	if !ok {
		return 0, false
	}
	return lb.slots[idx].Tag, true
}

// LineOf maps an address to its hazard-comparison line.
func (lb *LoadBuffer) LineOf(addr uint64) uint64 {
	return addr >> lb.lineShift
}

// Occupancy returns the number of live slots.
func (lb *LoadBuffer) Occupancy() int { return lb.count }

// Flush empties all slots, the staging buffer, and the window pointers.
// Responses still in flight for discarded loads will find no matching
// slot and be dropped.
func (lb *LoadBuffer) Flush() {
	for i := range lb.slots {
		lb.slots[i] = LoadSlot{}
	}
	lb.head = 0
	lb.tail = 0
	lb.count = 0
	lb.staging = loadStaging{}
}

// earliestInState returns the earliest live slot in the given state.
func (lb *LoadBuffer) earliestInState(state LoadState) (index int, ok bool) {
	return EarliestInWindow(len(lb.slots), lb.head, lb.count, func(i int) bool {
		return lb.slots[i].State == state
	})
}

// extendLoadData truncates raw memory data to the access width and
// sign- or zero-extends it.
func extendLoadData(data uint64, width uint8, unsigned bool) uint64 {
	switch width {
	case 1:
		if unsigned {
			return uint64(uint8(data))
		}
		return uint64(int64(int8(data)))
	case 2:
		if unsigned {
			return uint64(uint16(data))
		}
		return uint64(int64(int16(data)))
	case 4:
		if unsigned {
			return uint64(uint32(data))
		}
		return uint64(int64(int32(data)))
	default:
		return data
	}
}
