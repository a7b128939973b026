package emu

import (
	"math"
	"math/bits"

	"github.com/lesc-ufv/RISC-V-Trojan/insts"
)

// MulDivExecute computes a multiply/divide operation with RISC-V M-extension
// semantics: division by zero returns all ones (quotient) or the dividend
// (remainder), and the signed overflow case MinInt64/-1 returns the dividend
// with remainder zero. The *W forms operate on 32 bits and sign-extend.
func MulDivExecute(op insts.ALUOp, a, b uint64) uint64 {
	switch op {
	case insts.MDMul:
		return a * b
	case insts.MDMulh:
		hi, _ := bits.Mul64(absInt64(a), absInt64(b))
		lo := a * b
		hi = correctedHigh(hi, lo, int64(a) < 0 != (int64(b) < 0))
		return hi
	case insts.MDMulhsu:
		hi, _ := bits.Mul64(absInt64(a), b)
		lo := a * b
		return correctedHigh(hi, lo, int64(a) < 0)
	case insts.MDMulhu:
		hi, _ := bits.Mul64(a, b)
		return hi
	case insts.MDDiv:
		if b == 0 {
			return math.MaxUint64
		}
		if int64(a) == math.MinInt64 && int64(b) == -1 {
			return a
		}
		return uint64(int64(a) / int64(b))
	case insts.MDDivu:
		if b == 0 {
			return math.MaxUint64
		}
		return a / b
	case insts.MDRem:
		if b == 0 {
			return a
		}
		if int64(a) == math.MinInt64 && int64(b) == -1 {
			return 0
		}
		return uint64(int64(a) % int64(b))
	case insts.MDRemu:
		if b == 0 {
			return a
		}
		return a % b
	case insts.MDMulW:
		return signExtend32(uint32(a) * uint32(b))
	case insts.MDDivW:
		aw, bw := int32(a), int32(b)
		if bw == 0 {
			return math.MaxUint64
		}
		if aw == math.MinInt32 && bw == -1 {
			return signExtend32(uint32(aw))
		}
		return signExtend32(uint32(aw / bw))
	case insts.MDDivuW:
		aw, bw := uint32(a), uint32(b)
		if bw == 0 {
			return math.MaxUint64
		}
		return signExtend32(aw / bw)
	case insts.MDRemW:
		aw, bw := int32(a), int32(b)
		if bw == 0 {
			return signExtend32(uint32(aw))
		}
		if aw == math.MinInt32 && bw == -1 {
			return 0
		}
		return signExtend32(uint32(aw % bw))
	case insts.MDRemuW:
		aw, bw := uint32(a), uint32(b)
		if bw == 0 {
			return signExtend32(aw)
		}
		return signExtend32(aw % bw)
	}
	return 0
}

// MulDivLatency returns the unit's cycle count for an operation. Multiplies
// are pipelined short operations; divides iterate.
func MulDivLatency(op insts.ALUOp) uint64 {
	switch op {
	case insts.MDMul, insts.MDMulh, insts.MDMulhsu, insts.MDMulhu, insts.MDMulW:
		return 3
	default:
		return 12
	}
}

// absInt64 returns the magnitude of v interpreted as a signed value.
func absInt64(v uint64) uint64 {
	if int64(v) < 0 {
		return -v
	}
	return v
}

// correctedHigh converts an unsigned 128-bit high word to the signed
// product's high word when the signed product is negative.
func correctedHigh(hi, lo uint64, negative bool) uint64 {
	if !negative {
		return hi
	}
	// Two's complement of the 128-bit magnitude product.
	hi = ^hi
	if lo == 0 {
		hi++
	}
	return hi
}
