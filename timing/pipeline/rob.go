package pipeline

import "github.com/lesc-ufv/RISC-V-Trojan/insts"

// ROBEntry is one reorder-buffer slot: the in-order record of a single
// in-flight instruction from issue to commit.
type ROBEntry struct {
	// Busy marks the slot as allocated.
	Busy bool
	// Completed marks the instruction's result as present.
	Completed bool

	// Class selects the commit behavior.
	Class insts.Class
	// Op is kept for tracing and halt detection.
	Op insts.Op

	// DestReg and RegWrite describe the register writeback.
	DestReg  uint8
	RegWrite bool
	// Value is the writeback value.
	Value uint64

	// PC is the instruction's address; Len its encoded length.
	PC  uint64
	Len uint64
	// Imm is the decoded immediate (JAL target offset at commit).
	Imm int64

	// NextPC is the actual next program counter, filled at completion
	// for branches and JALR and at issue for JAL. Commit compares it
	// against the PC of the following slot.
	NextPC uint64
	// Taken is the actual branch outcome.
	Taken bool

	// Branch-predictor update bits recorded at issue.
	PredTaken bool
	PredHit   bool
	// Return-address-stack hints: PushLink marks a call, PopLink a return.
	PushLink bool
	PopLink  bool
}

// ROB is the reorder buffer: a circular, in-order window over every
// in-flight instruction. The half-open range [head, tail) holds live
// slots; tail never laps head.
type ROB struct {
	entries []ROBEntry
	head    int
	tail    int
	count   int
}

// NewROB creates a reorder buffer with the given number of slots.
// Size must be a power of 2.
func NewROB(size int) *ROB {
	return &ROB{
		entries: make([]ROBEntry, size),
	}
}

// Size returns the slot count.
func (r *ROB) Size() int { return len(r.entries) }

// Len returns the number of live slots.
func (r *ROB) Len() int { return r.count }

// CanAllocate reports whether a free slot exists.
func (r *ROB) CanAllocate() bool {
	return r.count < len(r.entries)
}

// Allocate claims the tail slot for a new instruction and returns its tag.
// The caller must check CanAllocate first.
func (r *ROB) Allocate(entry ROBEntry) int {
	tag := r.tail
	entry.Busy = true
	r.entries[tag] = entry
	r.tail = (r.tail + 1) % len(r.entries)
	r.count++
	return tag
}

// Complete records an execution result for the tagged slot.
func (r *ROB) Complete(tag int, value uint64) {
	e := &r.entries[tag]
	e.Value = value
	e.Completed = true
}

// CompleteControl records a control-flow outcome for the tagged slot.
// value carries the link value for JALR.
func (r *ROB) CompleteControl(tag int, value, nextPC uint64, taken bool) {
	e := &r.entries[tag]
	e.Value = value
	e.NextPC = nextPC
	e.Taken = taken
	e.Completed = true
}

// Entry returns the slot for a tag.
func (r *ROB) Entry(tag int) *ROBEntry {
	return &r.entries[tag]
}

// Lookup implements the reorder-buffer forward ports: it returns the value
// for a tag when that value is already resident but not yet committed.
func (r *ROB) Lookup(tag int) (value uint64, ok bool) {
	e := &r.entries[tag]
	if e.Busy && e.Completed {
		return e.Value, true
	}
	return 0, false
}

// HeadTag returns the tag of the oldest live slot.
func (r *ROB) HeadTag() int { return r.head }

// Head returns the oldest live slot, or nil when the buffer is empty.
func (r *ROB) Head() *ROBEntry {
	if r.count == 0 {
		return nil
	}
	return &r.entries[r.head]
}

// Next returns the slot one past head, or nil when fewer than two
// instructions are live. Branch commit compares its PC against the
// committed outcome.
func (r *ROB) Next() *ROBEntry {
	if r.count < 2 {
		return nil
	}
	return &r.entries[(r.head+1)%len(r.entries)]
}

// Pop frees the head slot after commit.
func (r *ROB) Pop() {
	r.entries[r.head] = ROBEntry{}
	r.head = (r.head + 1) % len(r.entries)
	r.count--
}

// Flush discards every live slot and resets the window pointers.
func (r *ROB) Flush() {
	for i := range r.entries {
		r.entries[i] = ROBEntry{}
	}
	r.head = 0
	r.tail = 0
	r.count = 0
}
