// Package emu provides the functional execution units and the flat memory
// model that back the timing simulation. The timing packages treat these
// as opaque collaborators: they compute results, the timing model decides
// when those results become visible.
package emu

import "github.com/lesc-ufv/RISC-V-Trojan/insts"

// ALUExecute computes an integer ALU operation on two operands.
// The *W forms operate on the low 32 bits and sign-extend the result.
func ALUExecute(op insts.ALUOp, a, b uint64) uint64 {
	switch op {
	case insts.ALUAdd:
		return a + b
	case insts.ALUSub:
		return a - b
	case insts.ALUSll:
		return a << (b & 0x3F)
	case insts.ALUSlt:
		if int64(a) < int64(b) {
			return 1
		}
		return 0
	case insts.ALUSltu:
		if a < b {
			return 1
		}
		return 0
	case insts.ALUXor:
		return a ^ b
	case insts.ALUSrl:
		return a >> (b & 0x3F)
	case insts.ALUSra:
		return uint64(int64(a) >> (b & 0x3F))
	case insts.ALUOr:
		return a | b
	case insts.ALUAnd:
		return a & b
	case insts.ALUAddW:
		return signExtend32(uint32(a) + uint32(b))
	case insts.ALUSubW:
		return signExtend32(uint32(a) - uint32(b))
	case insts.ALUSllW:
		return signExtend32(uint32(a) << (b & 0x1F))
	case insts.ALUSrlW:
		return signExtend32(uint32(a) >> (b & 0x1F))
	case insts.ALUSraW:
		return signExtend32(uint32(int32(a) >> (b & 0x1F)))
	}
	return 0
}

// signExtend32 widens a 32-bit value to 64 bits with sign extension.
func signExtend32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}
