package pipeline

// Operand is the result of a register read: either a concrete value or a
// rename tag pointing at the reorder-buffer slot that will produce it.
type Operand struct {
	// Value is the operand value when Renamed is false.
	Value uint64
	// Tag is the producing reorder-buffer slot when Renamed is true.
	Tag int
	// Renamed indicates the value is still in flight.
	Renamed bool
}

// regEntry is one architectural register's state.
type regEntry struct {
	value   uint64
	tag     int
	renamed bool
}

// RegisterFile holds the 32 architectural integer registers together with
// their renaming metadata. Register 0 is hard-wired to zero and is never
// renamed.
type RegisterFile struct {
	entries [32]regEntry
}

// NewRegisterFile creates a register file with all registers zero.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{}
}

// Read returns the register's committed value or its rename tag.
func (rf *RegisterFile) Read(reg uint8) Operand {
	if reg == 0 {
		return Operand{}
	}
	e := rf.entries[reg]
	if e.renamed {
		return Operand{Tag: e.tag, Renamed: true}
	}
	return Operand{Value: e.value}
}

// Rename points the register at the reorder-buffer slot that will produce
// its next value. Renaming register 0 is ignored.
func (rf *RegisterFile) Rename(reg uint8, tag int) {
	if reg == 0 {
		return
	}
	rf.entries[reg].tag = tag
	rf.entries[reg].renamed = true
}

// CommitWrite applies a committing value. The renamed flag clears only
// when the committing tag is still the one the register points at; a
// younger in-flight rename keeps the register renamed. Callers that
// commit and rename the same register in the same cycle must apply the
// commit first so the rename wins.
func (rf *RegisterFile) CommitWrite(reg uint8, tag int, value uint64) {
	if reg == 0 {
		return
	}
	e := &rf.entries[reg]
	e.value = value
	if e.renamed && e.tag == tag {
		e.renamed = false
	}
}

// SetValue writes a register directly, for architectural setup such as
// the initial stack pointer.
func (rf *RegisterFile) SetValue(reg uint8, value uint64) {
	if reg == 0 {
		return
	}
	rf.entries[reg].value = value
}

// Value returns the committed value of a register, ignoring renaming.
func (rf *RegisterFile) Value(reg uint8) uint64 {
	if reg == 0 {
		return 0
	}
	return rf.entries[reg].value
}

// Renamed reports whether a register currently points at an in-flight tag.
func (rf *RegisterFile) Renamed(reg uint8) bool {
	return rf.entries[reg].renamed
}

// ClearRenames drops all renaming metadata. Committed values survive;
// this is the register file's part of a flush.
func (rf *RegisterFile) ClearRenames() {
	for i := range rf.entries {
		rf.entries[i].renamed = false
	}
}

// Reset clears values and renaming metadata.
func (rf *RegisterFile) Reset() {
	rf.entries = [32]regEntry{}
}
