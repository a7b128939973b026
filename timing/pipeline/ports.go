package pipeline

// InstPort is the contract to the instruction source. Requests carry a
// PC; responses may arrive out of order and are matched by PC. A response
// is asserted for exactly one cycle.
type InstPort interface {
	// CanAccept reports whether a request can be submitted this cycle.
	CanAccept() bool
	// Request submits a fetch request for the block at pc.
	Request(pc uint64)
	// Response returns this cycle's response, if any.
	Response() (pc uint64, data uint32, valid bool)
	// Tick advances the port one cycle.
	Tick()
}

// DataRequest is one unified load/store memory request.
type DataRequest struct {
	Read       bool
	Write      bool
	Addr       uint64
	Data       uint64
	ByteEnable uint8
}

// DataResponse is a read response. The core always accepts a response in
// the cycle it is asserted.
type DataResponse struct {
	Valid bool
	Addr  uint64
	Data  uint64
}

// DataPort is the contract to the data-memory arbiter: at most one
// request per cycle, responses matched by address and possibly reordered.
type DataPort interface {
	// CanAccept reports whether a request can be submitted this cycle.
	CanAccept() bool
	// Submit sends a request. Writes are fire-and-forget; reads produce
	// a response in a later cycle.
	Submit(req DataRequest)
	// Response returns this cycle's read response, if any.
	Response() DataResponse
	// Tick advances the port one cycle.
	Tick()
}
