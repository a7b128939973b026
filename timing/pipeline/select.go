// Package pipeline implements the out-of-order execution engine: register
// renaming, reservation stations, load/store buffers, the reorder buffer,
// and the fetch/decode front end, advanced in lock step one cycle at a time.
package pipeline

import "math/bits"

// This file holds the matching and priority-selection helpers used for
// CAM-style lookups and FIFO-biased arbitration throughout the engine.

// FirstSet returns the index of the lowest set bit in mask.
// ok is false when mask is zero.
func FirstSet(mask uint64) (index int, ok bool) {
	if mask == 0 {
		return 0, false
	}
	return bits.TrailingZeros64(mask), true
}

// FindFirst scans indices 0..n-1 and returns the first index for which
// match returns true.
func FindFirst(n int, match func(int) bool) (index int, ok bool) {
	for i := 0; i < n; i++ {
		if match(i) {
			return i, true
		}
	}
	return 0, false
}

// EarliestInWindow scans a circular window of count entries starting at
// head, in allocation order, and returns the first matching physical index.
// This is the tie-break used wherever "oldest wins" matters even across
// the wraparound point.
func EarliestInWindow(size, head, count int, match func(int) bool) (index int, ok bool) {
	for i := 0; i < count; i++ {
		idx := (head + i) % size
		if match(idx) {
			return idx, true
		}
	}
	return 0, false
}
