package pipeline

// Broadcast is one common-data-bus message: a newly produced value tagged
// with its reorder-buffer slot. Every listener observes every broadcast in
// the same cycle; there is no bus arbiter.
type Broadcast struct {
	// Valid indicates the broadcast carries a result this cycle.
	Valid bool
	// Tag is the producing reorder-buffer slot.
	Tag int
	// Value is the produced result.
	Value uint64
}

// CDB is the set of broadcasts asserted in one cycle: the execution lanes'
// ports plus the load-buffer delivery port.
type CDB []Broadcast

// Lookup returns the value broadcast for tag this cycle, if any.
func (c CDB) Lookup(tag int) (value uint64, ok bool) {
	for _, b := range c {
		if b.Valid && b.Tag == tag {
			return b.Value, true
		}
	}
	return 0, false
}
