package pipeline

import (
	"fmt"
	"io"

	"github.com/lesc-ufv/RISC-V-Trojan/insts"
)

// Config holds the structural parameters of the out-of-order engine.
type Config struct {
	// ROBSize is the reorder-buffer slot count. Must be a power of 2.
	ROBSize int
	// Reservation-station slot counts per lane.
	IntRSSize    int
	LoadRSSize   int
	StoreRSSize  int
	MulDivRSSize int
	// LoadBufferSize and StoreBufferSize are the memory-op window sizes.
	LoadBufferSize  int
	StoreBufferSize int
	// FetchWindowSize is the in-flight fetch request window.
	FetchWindowSize int
	// QueueDepth bounds the decoded micro-op queue.
	QueueDepth int
	// HazardLineBytes is the load/store hazard comparison granularity.
	HazardLineBytes uint64
	// Predictor configures the branch/target predictor.
	Predictor PredictorConfig
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		ROBSize:         16,
		IntRSSize:       8,
		LoadRSSize:      4,
		StoreRSSize:     4,
		MulDivRSSize:    4,
		LoadBufferSize:  8,
		StoreBufferSize: 8,
		FetchWindowSize: 4,
		QueueDepth:      8,
		HazardLineBytes: 64,
		Predictor:       DefaultPredictorConfig(),
	}
}

// Statistics holds engine performance counters.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Committed is the number of instructions retired.
	Committed uint64
	// Issued is the number of instructions entered into the window.
	Issued uint64
	// Flushes is the total number of pipeline flushes.
	Flushes uint64
	// Mispredicts is the number of control-flow-triggered flushes.
	Mispredicts uint64
	// HazardFlushes is the number of memory-ordering-hazard flushes.
	HazardFlushes uint64
	// IssueStalls counts cycles where a decoded instruction could not
	// issue for lack of a window or buffer slot.
	IssueStalls uint64
	// MisalignedStores counts suppressed misaligned store writes.
	MisalignedStores uint64
}

// CPI returns the cycles per committed instruction.
func (s Statistics) CPI() float64 {
	if s.Committed == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Committed)
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithConfig replaces the default structural parameters.
func WithConfig(config Config) Option {
	return func(p *Pipeline) {
		p.config = config
	}
}

// WithTrace enables a per-commit trace to the given writer.
func WithTrace(w io.Writer) Option {
	return func(p *Pipeline) {
		p.trace = w
	}
}

// Pipeline is the assembled out-of-order engine. All components advance
// in lock step, once per Tick; cross-component traffic inside a cycle
// flows through explicit snapshots (the common data bus and the lane
// outputs registered in the previous cycle).
type Pipeline struct {
	config Config

	instPort InstPort
	dataPort DataPort

	predictor    *Predictor
	fetchIssue   *FetchIssue
	fetchReceive *FetchReceive
	precoder     *Precoder

	queue []DecodedOp

	regFile *RegisterFile
	rob     *ROB

	intRS    *ReservationStation
	loadRS   *ReservationStation
	storeRS  *ReservationStation
	mulDivRS *ReservationStation

	intLane    *ExecLane
	loadLane   *ExecLane
	storeLane  *ExecLane
	mulDivLane *ExecLane

	loadBuffer  *LoadBuffer
	storeBuffer *StoreBuffer

	halted   bool
	exitCode int64

	trace io.Writer
	stats Statistics
}

// NewPipeline creates the engine around the given instruction and data
// memory ports.
func NewPipeline(instPort InstPort, dataPort DataPort, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:   DefaultConfig(),
		instPort: instPort,
		dataPort: dataPort,
	}
	for _, opt := range opts {
		opt(p)
	}

	cfg := p.config
	p.predictor = NewPredictor(cfg.Predictor)
	p.fetchIssue = NewFetchIssue(p.predictor)
	p.fetchReceive = NewFetchReceive(cfg.FetchWindowSize)
	p.precoder = NewPrecoder()
	p.queue = make([]DecodedOp, 0, cfg.QueueDepth)
	p.regFile = NewRegisterFile()
	p.rob = NewROB(cfg.ROBSize)
	p.intRS = NewReservationStation(cfg.IntRSSize)
	p.loadRS = NewReservationStation(cfg.LoadRSSize)
	p.storeRS = NewReservationStation(cfg.StoreRSSize)
	p.mulDivRS = NewReservationStation(cfg.MulDivRSSize)
	p.intLane = NewExecLane(insts.LaneInt)
	p.loadLane = NewExecLane(insts.LaneLoadAddr)
	p.storeLane = NewExecLane(insts.LaneStoreAddr)
	p.mulDivLane = NewExecLane(insts.LaneMulDiv)
	p.loadBuffer = NewLoadBuffer(cfg.LoadBufferSize, cfg.HazardLineBytes)
	p.storeBuffer = NewStoreBuffer(cfg.StoreBufferSize)
	return p
}

// SetPC redirects fetch to the given entry point.
func (p *Pipeline) SetPC(pc uint64) {
	p.fetchIssue.SetPC(pc)
}

// PC returns the next fetch address.
func (p *Pipeline) PC() uint64 {
	return p.fetchIssue.PC()
}

// RegisterFile exposes the architectural register state.
func (p *Pipeline) RegisterFile() *RegisterFile {
	return p.regFile
}

// Predictor exposes the branch/target predictor.
func (p *Pipeline) Predictor() *Predictor {
	return p.predictor
}

// Halted reports whether the core retired a halting instruction
// (ECALL/EBREAK, left to the surrounding privilege layer).
func (p *Pipeline) Halted() bool {
	return p.halted
}

// ExitCode returns the value of register a0 at the halt point.
func (p *Pipeline) ExitCode() int64 {
	return p.exitCode
}

// Stats returns the engine statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Occupancies returns the live-entry counts of the speculative
// structures. After a flush all counts are zero.
func (p *Pipeline) Occupancies() (rob, rs, loadBuf, storeBuf, fetchWin int) {
	rs = p.intRS.Occupancy() + p.loadRS.Occupancy() +
		p.storeRS.Occupancy() + p.mulDivRS.Occupancy()
	return p.rob.Len(), rs, p.loadBuffer.Occupancy(),
		p.storeBuffer.Occupancy(), p.fetchReceive.Occupancy()
}

// Tick advances the whole engine one cycle.
func (p *Pipeline) Tick() {
	p.stats.Cycles++

	// Gather this cycle's broadcasts: the lane outputs registered at the
	// end of the previous cycle plus the load-buffer delivery port.
	outs := [4]LaneOutput{
		p.intLane.Output(),
		p.loadLane.Output(),
		p.storeLane.Output(),
		p.mulDivLane.Output(),
	}
	loadOut := p.loadBuffer.Deliver()

	cdb := make(CDB, 0, len(outs)+1)
	for _, o := range outs {
		if o.Valid && o.Broadcast {
			cdb = append(cdb, Broadcast{Valid: true, Tag: o.Tag, Value: o.Value})
		}
	}
	if loadOut.Valid {
		cdb = append(cdb, loadOut)
	}

	// Completion: lane results reach the reorder buffer and the memory
	// buffers.
	for _, o := range outs {
		if !o.Valid {
			continue
		}
		switch {
		case o.IsControl:
			p.rob.CompleteControl(o.Tag, o.Value, o.NextPC, o.Taken)
		case o.IsLoad:
			p.loadBuffer.FillAddress(o.Tag, o.Addr)
		case o.IsStore:
			p.storeBuffer.Fill(o.Tag, o.Addr, o.StoreData)
			p.rob.Complete(o.Tag, o.Addr)
		default:
			p.rob.Complete(o.Tag, o.Value)
		}
	}
	if loadOut.Valid {
		p.rob.Complete(loadOut.Tag, loadOut.Value)
	}

	// Data-memory read responses, matched by address.
	if resp := p.dataPort.Response(); resp.Valid {
		p.loadBuffer.OnMemResponse(resp.Addr, resp.Data)
	}

	// Commit, possibly raising a flush.
	flushed, redirect := p.commit()
	if flushed {
		p.flush(redirect)
	} else {
		// Operand wakeup, dispatch, issue, and decode see this cycle's
		// broadcasts.
		p.intRS.Wakeup(cdb)
		p.loadRS.Wakeup(cdb)
		p.storeRS.Wakeup(cdb)
		p.mulDivRS.Wakeup(cdb)
		p.dispatch()
		p.issue(cdb)
		p.decodeBlock()
	}

	// Load buffer -> memory arbiter.
	if addr, _, ok := p.loadBuffer.NextMemRequest(); ok && p.dataPort.CanAccept() {
		p.dataPort.Submit(DataRequest{Read: true, Addr: addr})
		p.loadBuffer.MarkSent()
	}

	// Fetch: responses first, then a new request.
	if pc, data, ok := p.instPort.Response(); ok {
		p.fetchReceive.OnResponse(pc, data)
	}
	if !p.halted {
		p.fetchIssue.Issue(p.instPort, p.fetchReceive)
	}

	// Advance the lanes and memory ports; their outputs become visible
	// next cycle.
	p.intLane.Tick()
	p.loadLane.Tick()
	p.storeLane.Tick()
	p.mulDivLane.Tick()
	p.instPort.Tick()
	p.dataPort.Tick()
}

// commit attempts to retire the head instruction. It returns a flush
// request with the redirect PC when the commit uncovers a misprediction
// or a memory-ordering hazard.
func (p *Pipeline) commit() (flush bool, redirect uint64) {
	e := p.rob.Head()
	if e == nil || !e.Completed || p.halted {
		return false, 0
	}
	tag := p.rob.HeadTag()

	switch {
	case e.Class == insts.ClassStore:
		return p.commitStore(e, tag)
	case e.Class.IsControlFlow():
		return p.commitControl(e, tag)
	case e.Class == insts.ClassLoad:
		p.writeback(e, tag)
		p.loadBuffer.Release(tag)
		p.retire(e)
		return false, 0
	default:
		p.writeback(e, tag)
		if e.Op == insts.OpECALL || e.Op == insts.OpEBREAK {
			p.halted = true
			p.exitCode = int64(p.regFile.Value(10))
		}
		p.retire(e)
		return false, 0
	}
}

// commitStore drains the head store-buffer slot to memory and raises a
// hazard flush when an uncommitted load already speculatively read the
// same address line.
func (p *Pipeline) commitStore(e *ROBEntry, tag int) (bool, uint64) {
	if !p.storeBuffer.HeadReady(tag) || !p.dataPort.CanAccept() {
		return false, 0
	}

	slot := p.storeBuffer.Pop()
	be := ByteEnable(slot.Addr, slot.Width)
	if be == 0 {
		// Misaligned store: the write is suppressed rather than
		// faulted; the counter makes the drop observable.
		p.stats.MisalignedStores++
	} else {
		p.dataPort.Submit(DataRequest{
			Write:      true,
			Addr:       slot.Addr &^ 7,
			Data:       ReplicateData(slot.Data, slot.Addr, slot.Width),
			ByteEnable: be,
		})
	}

	if hazTag, found := p.loadBuffer.HazardTag(p.loadBuffer.LineOf(slot.Addr)); found {
		p.stats.HazardFlushes++
		loadPC := p.rob.Entry(hazTag).PC
		p.retire(e)
		return true, loadPC
	}

	p.retire(e)
	return false, 0
}

// commitControl retires a branch or jump: it updates the predictor and
// compares the actual next PC against the slot one past head. Any
// mismatch, including an empty successor slot, flushes and redirects.
func (p *Pipeline) commitControl(e *ROBEntry, tag int) (bool, uint64) {
	p.predictor.Update(PredictorUpdate{
		PC:        e.PC,
		Target:    e.NextPC,
		Taken:     e.Taken,
		IsJump:    e.Class != insts.ClassBranch,
		WasHit:    e.PredHit,
		PredTaken: e.PredTaken,
		PushLink:  e.PushLink,
		LinkValue: e.PC + e.Len,
		PopLink:   e.PopLink,
	})

	p.writeback(e, tag)

	next := p.rob.Next()
	if next == nil || next.PC != e.NextPC {
		p.stats.Mispredicts++
		target := e.NextPC
		p.retire(e)
		return true, target
	}

	p.retire(e)
	return false, 0
}

// writeback applies a committing register value.
func (p *Pipeline) writeback(e *ROBEntry, tag int) {
	if e.RegWrite {
		p.regFile.CommitWrite(e.DestReg, tag, e.Value)
	}
}

// retire pops the head slot and counts the commit.
func (p *Pipeline) retire(e *ROBEntry) {
	if p.trace != nil {
		fmt.Fprintf(p.trace, "cycle %d commit pc=%#x %s\n",
			p.stats.Cycles, e.PC, e.Op)
	}
	p.stats.Committed++
	p.rob.Pop()
}

// flush discards all speculative state younger than the committed head
// and redirects fetch. It takes effect architecture-wide within the
// cycle it is raised.
func (p *Pipeline) flush(redirect uint64) {
	p.stats.Flushes++

	p.rob.Flush()
	p.intRS.Flush()
	p.loadRS.Flush()
	p.storeRS.Flush()
	p.mulDivRS.Flush()
	p.intLane.Flush()
	p.loadLane.Flush()
	p.storeLane.Flush()
	p.mulDivLane.Flush()
	p.loadBuffer.Flush()
	p.storeBuffer.Flush()
	p.fetchReceive.Flush()
	p.precoder.Reset()
	p.queue = p.queue[:0]
	p.regFile.ClearRenames()
	p.fetchIssue.SetPC(redirect)
}

// dispatch moves one ready reservation-station entry into each free lane.
func (p *Pipeline) dispatch() {
	pairs := [4]struct {
		rs   *ReservationStation
		lane *ExecLane
	}{
		{p.intRS, p.intLane},
		{p.loadRS, p.loadLane},
		{p.storeRS, p.storeLane},
		{p.mulDivRS, p.mulDivLane},
	}
	for _, pair := range pairs {
		if !pair.lane.CanAccept() {
			continue
		}
		if idx, ok := pair.rs.SelectReady(); ok {
			pair.lane.Accept(pair.rs.Take(idx))
		}
	}
}

// issue renames and dispatches the oldest decoded micro-op when every
// required resource has a free slot.
func (p *Pipeline) issue(cdb CDB) {
	if len(p.queue) == 0 || p.halted {
		return
	}
	op := p.queue[0]
	inst := op.Inst

	if !p.rob.CanAllocate() {
		p.stats.IssueStalls++
		return
	}
	rs := p.stationFor(inst.Lane)
	if rs != nil && !rs.CanAccept() {
		p.stats.IssueStalls++
		return
	}
	if inst.Class == insts.ClassLoad && !p.loadBuffer.CanAccept() {
		p.stats.IssueStalls++
		return
	}
	if inst.Class == insts.ClassStore && !p.storeBuffer.CanAccept() {
		p.stats.IssueStalls++
		return
	}

	entry := ROBEntry{
		Class:     inst.Class,
		Op:        inst.Op,
		DestReg:   inst.Rd,
		RegWrite:  inst.RegWrite,
		PC:        op.PC,
		Len:       inst.Len(),
		Imm:       inst.Imm,
		PredTaken: op.PredTaken,
		PredHit:   op.PredHit,
		PushLink:  inst.RegWrite && isLinkReg(inst.Rd) && inst.Class.IsControlFlow(),
		PopLink: inst.Class == insts.ClassJALR && isLinkReg(inst.Rs1) &&
			inst.Rs1 != inst.Rd,
	}
	tag := p.rob.Allocate(entry)

	op1 := p.readOperand(inst.Rs1, inst.UsesRs1, cdb)
	op2 := p.readOperand(inst.Rs2, inst.UsesRs2, cdb)

	if inst.RegWrite {
		p.regFile.Rename(inst.Rd, tag)
	}

	if inst.Lane == insts.LaneNone {
		p.completeAtIssue(tag, inst, op.PC)
	} else {
		rs.Allocate(RSSlot{
			Inst:    inst,
			DestTag: tag,
			Op1:     op1,
			Op2:     op2,
			Imm:     inst.Imm,
			PC:      op.PC,
		})
		if inst.Class == insts.ClassLoad {
			p.loadBuffer.Allocate(tag, inst.MemWidth, inst.MemUnsigned)
		}
		if inst.Class == insts.ClassStore {
			p.storeBuffer.Allocate(tag, inst.MemWidth)
		}
	}

	p.queue = p.queue[:copy(p.queue, p.queue[1:])]
	p.stats.Issued++
}

// completeAtIssue fills in results for instructions that need no
// execution lane: LUI, AUIPC, JAL, and the system no-ops.
func (p *Pipeline) completeAtIssue(tag int, inst *insts.Instruction, pc uint64) {
	e := p.rob.Entry(tag)
	switch inst.Class {
	case insts.ClassJAL:
		e.Value = pc + inst.Len()
		e.NextPC = pc + uint64(inst.Imm)
		e.Taken = true
	case insts.ClassAUIPC:
		e.Value = pc + uint64(inst.Imm)
	default:
		if inst.Op == insts.OpLUI {
			e.Value = uint64(inst.Imm)
		}
	}
	e.Completed = true
}

// readOperand reads a source register: a concrete value, a same-cycle
// broadcast forward, a reorder-buffer forward, or the rename tag.
func (p *Pipeline) readOperand(reg uint8, used bool, cdb CDB) Operand {
	if !used {
		return Operand{}
	}
	o := p.regFile.Read(reg)
	if !o.Renamed {
		return o
	}
	if v, ok := cdb.Lookup(o.Tag); ok {
		return Operand{Value: v}
	}
	if v, ok := p.rob.Lookup(o.Tag); ok {
		return Operand{Value: v}
	}
	return o
}

// stationFor maps a lane to its reservation station.
func (p *Pipeline) stationFor(lane insts.Lane) *ReservationStation {
	switch lane {
	case insts.LaneInt:
		return p.intRS
	case insts.LaneLoadAddr:
		return p.loadRS
	case insts.LaneStoreAddr:
		return p.storeRS
	case insts.LaneMulDiv:
		return p.mulDivRS
	}
	return nil
}

// decodeBlock consumes the oldest completed fetch block and queues its
// decoded micro-ops.
func (p *Pipeline) decodeBlock() {
	if !p.fetchReceive.HeadReady() {
		return
	}
	if len(p.queue)+FetchBlockBytes/2 > p.config.QueueDepth {
		return
	}
	pc, data, pred := p.fetchReceive.PopHead()
	ops := p.precoder.Process(pc, data, pred)
	p.queue = append(p.queue, ops...)
}

// Run advances the engine until it halts or maxCycles elapse.
// It returns true if the core halted.
func (p *Pipeline) Run(maxCycles uint64) bool {
	for i := uint64(0); i < maxCycles; i++ {
		if p.halted {
			return true
		}
		p.Tick()
	}
	return p.halted
}

// Reset restores the engine to its initial state, keeping configuration.
func (p *Pipeline) Reset() {
	p.flush(0)
	p.stats = Statistics{}
	p.regFile.Reset()
	p.predictor.Reset()
	p.halted = false
	p.exitCode = 0
}

// isLinkReg reports whether a register is a call-convention link
// register (ra or the alternate t0).
func isLinkReg(reg uint8) bool {
	return reg == 1 || reg == 5
}
