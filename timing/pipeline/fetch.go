package pipeline

// FetchBlockBytes is the width of one fetch request. The precoder emits
// up to FetchBlockBytes/2 instructions per block.
const FetchBlockBytes = 4

// FetchIssue generates sequential or predicted-target program counters,
// one request per cycle when the receive window has room.
type FetchIssue struct {
	pc        uint64
	predictor *Predictor
}

// NewFetchIssue creates the fetch request generator.
func NewFetchIssue(predictor *Predictor) *FetchIssue {
	return &FetchIssue{predictor: predictor}
}

// SetPC redirects fetch to a new program counter.
func (f *FetchIssue) SetPC(pc uint64) {
	f.pc = pc
}

// PC returns the next fetch address.
func (f *FetchIssue) PC() uint64 {
	return f.pc
}

// Issue attempts one fetch request. It consults the predictor for the
// block address and advances the PC to the predicted target or the next
// sequential block.
func (f *FetchIssue) Issue(port InstPort, window *FetchReceive) {
	if !window.CanAccept() || !port.CanAccept() {
		return
	}

	pc := f.pc
	pred := f.predictor.Predict(pc)

	port.Request(pc)
	window.Allocate(pc, pred)

	if pred.Hit && pred.Taken {
		f.pc = pred.Target
	} else {
		f.pc = pc + FetchBlockBytes
	}
}

// fetchSlot is one in-flight fetch request.
type fetchSlot struct {
	valid bool
	done  bool
	pc    uint64
	data  uint32
	pred  Prediction
}

// FetchReceive is the circular reorder window of in-flight fetch
// requests. Responses arrive out of order and are matched by PC with a
// linear scan; decode consumes strictly in allocation order.
type FetchReceive struct {
	slots []fetchSlot
	head  int
	tail  int
	count int
}

// NewFetchReceive creates a receive window with the given slot count.
func NewFetchReceive(size int) *FetchReceive {
	return &FetchReceive{
		slots: make([]fetchSlot, size),
	}
}

// CanAccept reports whether a free slot exists.
func (fr *FetchReceive) CanAccept() bool {
	return fr.count < len(fr.slots)
}

// Allocate claims the tail slot for an issued request.
func (fr *FetchReceive) Allocate(pc uint64, pred Prediction) {
	fr.slots[fr.tail] = fetchSlot{valid: true, pc: pc, pred: pred}
	fr.tail = (fr.tail + 1) % len(fr.slots)
	fr.count++
}

// OnResponse matches an instruction-source response to the earliest
// waiting request with the same PC. A response that matches no slot
// belongs to a flushed request and is dropped.
func (fr *FetchReceive) OnResponse(pc uint64, data uint32) {
	idx, ok := EarliestInWindow(len(fr.slots), fr.head, fr.count, func(i int) bool {
		s := &fr.slots[i]
		return s.valid && !s.done && s.pc == pc
	})
	if !ok {
		return
	}
	fr.slots[idx].data = data
	fr.slots[idx].done = true
}

// HeadReady reports whether the oldest request has its data.
func (fr *FetchReceive) HeadReady() bool {
	return fr.count > 0 && fr.slots[fr.head].done
}

// PopHead consumes the oldest completed request.
func (fr *FetchReceive) PopHead() (pc uint64, data uint32, pred Prediction) {
	s := fr.slots[fr.head]
	fr.slots[fr.head] = fetchSlot{}
	fr.head = (fr.head + 1) % len(fr.slots)
	fr.count--
	return s.pc, s.data, s.pred
}

// Occupancy returns the number of in-flight requests.
func (fr *FetchReceive) Occupancy() int { return fr.count }

// Flush discards every slot, including those whose fetch is still
// outstanding; their eventual responses will find no match.
func (fr *FetchReceive) Flush() {
	for i := range fr.slots {
		fr.slots[i] = fetchSlot{}
	}
	fr.head = 0
	fr.tail = 0
	fr.count = 0
}
