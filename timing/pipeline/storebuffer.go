package pipeline

// StoreState is the lifecycle state of a store-buffer slot.
type StoreState uint8

// Store-slot states.
const (
	StoreEmpty StoreState = iota
	StoreIssued
	StoreReady
)

// StoreSlot tracks one in-flight store.
type StoreSlot struct {
	State StoreState
	Tag   int
	Addr  uint64
	Data  uint64
	Width uint8
}

// StoreBuffer tracks in-flight stores in program order. A slot becomes
// committable only when its instruction reaches the head of the reorder
// buffer; address and value may resolve out of order before that.
type StoreBuffer struct {
	slots []StoreSlot
	head  int
	tail  int
	count int
}

// NewStoreBuffer creates a store buffer with the given slot count.
func NewStoreBuffer(size int) *StoreBuffer {
	return &StoreBuffer{
		slots: make([]StoreSlot, size),
	}
}

// CanAccept reports whether a free slot exists.
func (sb *StoreBuffer) CanAccept() bool {
	return sb.count < len(sb.slots)
}

// Allocate claims the next FIFO slot for an issued store.
func (sb *StoreBuffer) Allocate(tag int, width uint8) {
	sb.slots[sb.tail] = StoreSlot{
		State: StoreIssued,
		Tag:   tag,
		Width: width,
	}
	sb.tail = (sb.tail + 1) % len(sb.slots)
	sb.count++
}

// Fill records the resolved address and value for the tagged store.
func (sb *StoreBuffer) Fill(tag int, addr, data uint64) {
	idx, ok := EarliestInWindow(len(sb.slots), sb.head, sb.count, func(i int) bool {
		return sb.slots[i].State == StoreIssued && sb.slots[i].Tag == tag
	})
	if !ok {
		return
	}
	sb.slots[idx].Addr = addr
	sb.slots[idx].Data = data
	sb.slots[idx].State = StoreReady
}

// HeadReady reports whether the head slot belongs to the given tag and is
// ready to drain; the reorder buffer gates store commit on this.
func (sb *StoreBuffer) HeadReady(tag int) bool {
	return sb.count > 0 &&
		sb.slots[sb.head].Tag == tag &&
		sb.slots[sb.head].State == StoreReady
}

// Pop removes and returns the head slot at commit.
func (sb *StoreBuffer) Pop() StoreSlot {
	slot := sb.slots[sb.head]
	sb.slots[sb.head] = StoreSlot{}
	sb.head = (sb.head + 1) % len(sb.slots)
	sb.count--
	return slot
}

// Occupancy returns the number of live slots.
func (sb *StoreBuffer) Occupancy() int { return sb.count }

// Flush empties all slots. Stores only write memory at commit, so
// discarding uncommitted slots is side-effect free.
func (sb *StoreBuffer) Flush() {
	for i := range sb.slots {
		sb.slots[i] = StoreSlot{}
	}
	sb.head = 0
	sb.tail = 0
	sb.count = 0
}

// ByteEnable derives the memory-port byte-enable mask from the access
// width and the low address bits. A misaligned access yields zero,
// suppressing the write.
func ByteEnable(addr uint64, width uint8) uint8 {
	offset := addr & 7
	if addr&uint64(width-1) != 0 || offset+uint64(width) > 8 {
		return 0
	}
	mask := uint8(1)<<width - 1
	return mask << offset
}

// ReplicateData positions a store value within the 64-bit write lane
// selected by the byte-enable mask.
func ReplicateData(value uint64, addr uint64, width uint8) uint64 {
	shift := (addr & 7) * 8
	if width < 8 {
		value &= uint64(1)<<(width*8) - 1
	}
	return value << shift
}
