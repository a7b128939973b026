package pipeline

import "github.com/lesc-ufv/RISC-V-Trojan/insts"

// RSSlot is one reservation-station entry: a decoded instruction waiting
// for its operands.
type RSSlot struct {
	// Busy marks the slot as occupied.
	Busy bool
	// Inst is the decoded instruction.
	Inst *insts.Instruction
	// DestTag is the reorder-buffer slot allocated for the result.
	DestTag int
	// Op1 and Op2 are the source operands; a renamed operand is waiting
	// for a broadcast of its tag.
	Op1 Operand
	Op2 Operand
	// Imm is the address/ALU immediate.
	Imm int64
	// PC is the instruction's address (branch resolution needs it).
	PC uint64
}

// Ready reports whether both operands are available.
func (s *RSSlot) Ready() bool {
	return !s.Op1.Renamed && !s.Op2.Renamed
}

// ReservationStation buffers instructions for one execution lane until
// their operands arrive. Slot selection is priority-encoded on the lowest
// index, not oldest-first; architectural correctness does not depend on
// dispatch order among ready instructions.
type ReservationStation struct {
	slots    []RSSlot
	occupied uint64
}

// NewReservationStation creates a station with the given slot count
// (at most 64).
func NewReservationStation(size int) *ReservationStation {
	return &ReservationStation{
		slots: make([]RSSlot, size),
	}
}

// CanAccept reports whether a free slot exists.
func (rs *ReservationStation) CanAccept() bool {
	return rs.occupied != (uint64(1)<<len(rs.slots))-1
}

// Allocate places an instruction into the lowest free slot.
// The caller must check CanAccept first.
func (rs *ReservationStation) Allocate(slot RSSlot) {
	idx, ok := FirstSet(^rs.occupied & ((uint64(1) << len(rs.slots)) - 1))
	if !ok {
		return
	}
	slot.Busy = true
	rs.slots[idx] = slot
	rs.occupied |= 1 << idx
}

// Wakeup compares every waiting operand tag against this cycle's
// broadcasts and captures matching values.
func (rs *ReservationStation) Wakeup(cdb CDB) {
	for i := range rs.slots {
		s := &rs.slots[i]
		if !s.Busy {
			continue
		}
		if s.Op1.Renamed {
			if v, ok := cdb.Lookup(s.Op1.Tag); ok {
				s.Op1 = Operand{Value: v}
			}
		}
		if s.Op2.Renamed {
			if v, ok := cdb.Lookup(s.Op2.Tag); ok {
				s.Op2 = Operand{Value: v}
			}
		}
	}
}

// SelectReady returns the lowest-index dispatch-eligible slot.
func (rs *ReservationStation) SelectReady() (index int, ok bool) {
	return FindFirst(len(rs.slots), func(i int) bool {
		return rs.slots[i].Busy && rs.slots[i].Ready()
	})
}

// Take removes and returns the slot at index, freeing it.
func (rs *ReservationStation) Take(index int) RSSlot {
	slot := rs.slots[index]
	rs.slots[index] = RSSlot{}
	rs.occupied &^= 1 << index
	return slot
}

// Occupancy returns the number of busy slots.
func (rs *ReservationStation) Occupancy() int {
	n := 0
	for i := range rs.slots {
		if rs.slots[i].Busy {
			n++
		}
	}
	return n
}

// Flush empties every slot.
func (rs *ReservationStation) Flush() {
	for i := range rs.slots {
		rs.slots[i] = RSSlot{}
	}
	rs.occupied = 0
}
