package insts

// This file expands RV64C compressed encodings to the equivalent 32-bit
// instruction words, so the rest of the decoder only ever sees one format.
// The expansion is a pure function of the 16-bit parcel.

// IsCompressed reports whether a 16-bit parcel starts a compressed
// instruction. Full-length instructions have the two low bits set.
func IsCompressed(parcel uint16) bool {
	return parcel&0b11 != 0b11
}

// ExpandCompressed expands a 16-bit RV64C parcel to its 32-bit equivalent.
// Illegal or reserved encodings return ok=false; callers should substitute
// an all-zero word, which decodes to OpUnknown.
func ExpandCompressed(parcel uint16) (word uint32, ok bool) {
	if parcel == 0 {
		// The all-zero parcel is defined illegal.
		return 0, false
	}

	switch parcel & 0b11 {
	case 0b00:
		return expandQuadrant0(parcel)
	case 0b01:
		return expandQuadrant1(parcel)
	case 0b10:
		return expandQuadrant2(parcel)
	}
	return 0, false
}

// expandQuadrant0 handles stack-pointer arithmetic and the compressed
// register loads/stores (C.ADDI4SPN, C.LW, C.LD, C.SW, C.SD).
func expandQuadrant0(parcel uint16) (uint32, bool) {
	rdP := cRegPrime(parcel, 2)
	rs1P := cRegPrime(parcel, 7)

	switch parcel >> 13 & 0x7 {
	case 0b000: // C.ADDI4SPN -> addi rd', x2, nzuimm
		imm := uint32(parcel>>11&0x3)<<4 |
			uint32(parcel>>7&0xF)<<6 |
			uint32(parcel>>6&0x1)<<2 |
			uint32(parcel>>5&0x1)<<3
		if imm == 0 {
			return 0, false
		}
		return encodeI(opcodeOpImm, 0b000, rdP, 2, imm), true
	case 0b010: // C.LW -> lw rd', uimm(rs1')
		imm := uint32(parcel>>10&0x7)<<3 |
			uint32(parcel>>6&0x1)<<2 |
			uint32(parcel>>5&0x1)<<6
		return encodeI(opcodeLoad, 0b010, rdP, rs1P, imm), true
	case 0b011: // C.LD -> ld rd', uimm(rs1')
		imm := uint32(parcel>>10&0x7)<<3 |
			uint32(parcel>>5&0x3)<<6
		return encodeI(opcodeLoad, 0b011, rdP, rs1P, imm), true
	case 0b110: // C.SW -> sw rs2', uimm(rs1')
		imm := uint32(parcel>>10&0x7)<<3 |
			uint32(parcel>>6&0x1)<<2 |
			uint32(parcel>>5&0x1)<<6
		return encodeS(opcodeStore, 0b010, rs1P, rdP, imm), true
	case 0b111: // C.SD -> sd rs2', uimm(rs1')
		imm := uint32(parcel>>10&0x7)<<3 |
			uint32(parcel>>5&0x3)<<6
		return encodeS(opcodeStore, 0b011, rs1P, rdP, imm), true
	}
	return 0, false
}

// expandQuadrant1 handles immediate arithmetic, control transfer, and the
// register-register subset (C.ADDI, C.ADDIW, C.LI, C.LUI/ADDI16SP,
// C.SRLI/SRAI/ANDI/SUB/XOR/OR/AND/SUBW/ADDW, C.J, C.BEQZ, C.BNEZ).
func expandQuadrant1(parcel uint16) (uint32, bool) {
	rdFull := uint8(parcel >> 7 & 0x1F)
	rdP := cRegPrime(parcel, 7)
	rs2P := cRegPrime(parcel, 2)

	switch parcel >> 13 & 0x7 {
	case 0b000: // C.ADDI -> addi rd, rd, imm (rd=0 is the canonical NOP)
		return encodeI(opcodeOpImm, 0b000, rdFull, rdFull, immCI(parcel)), true
	case 0b001: // C.ADDIW -> addiw rd, rd, imm (RV64; C.JAL is RV32-only)
		if rdFull == 0 {
			return 0, false
		}
		return encodeI(opcodeOpImmW, 0b000, rdFull, rdFull, immCI(parcel)), true
	case 0b010: // C.LI -> addi rd, x0, imm
		return encodeI(opcodeOpImm, 0b000, rdFull, 0, immCI(parcel)), true
	case 0b011:
		if rdFull == 2 { // C.ADDI16SP -> addi x2, x2, nzimm
			imm := uint32(parcel>>12&0x1)<<9 |
				uint32(parcel>>6&0x1)<<4 |
				uint32(parcel>>5&0x1)<<6 |
				uint32(parcel>>3&0x3)<<7 |
				uint32(parcel>>2&0x1)<<5
			imm = signExtend32(imm, 10)
			if imm == 0 {
				return 0, false
			}
			return encodeI(opcodeOpImm, 0b000, 2, 2, imm), true
		}
		// C.LUI -> lui rd, nzimm
		imm := signExtend32(uint32(parcel>>12&0x1)<<5|uint32(parcel>>2&0x1F), 6)
		if imm == 0 {
			return 0, false
		}
		return opcodeLUI | uint32(rdFull)<<7 | imm<<12, true
	case 0b100:
		switch parcel >> 10 & 0x3 {
		case 0b00: // C.SRLI -> srli rd', rd', shamt
			return encodeI(opcodeOpImm, 0b101, rdP, rdP, shamtCI(parcel)), true
		case 0b01: // C.SRAI -> srai rd', rd', shamt
			return encodeI(opcodeOpImm, 0b101, rdP, rdP, shamtCI(parcel)|0x400), true
		case 0b10: // C.ANDI -> andi rd', rd', imm
			return encodeI(opcodeOpImm, 0b111, rdP, rdP, immCI(parcel)), true
		case 0b11:
			if parcel>>12&0x1 == 0 {
				funct := [4]struct {
					f7 uint32
					f3 uint32
				}{{0x20, 0b000}, {0x00, 0b100}, {0x00, 0b110}, {0x00, 0b111}}
				f := funct[parcel>>5&0x3] // SUB, XOR, OR, AND
				return encodeR(opcodeOp, f.f7, f.f3, rdP, rdP, rs2P), true
			}
			switch parcel >> 5 & 0x3 {
			case 0b00: // C.SUBW
				return encodeR(opcodeOpW, 0x20, 0b000, rdP, rdP, rs2P), true
			case 0b01: // C.ADDW
				return encodeR(opcodeOpW, 0x00, 0b000, rdP, rdP, rs2P), true
			}
			return 0, false
		}
	case 0b101: // C.J -> jal x0, offset
		return encodeJ(0, immCJ(parcel)), true
	case 0b110: // C.BEQZ -> beq rs1', x0, offset
		return encodeB(0b000, rdP, 0, immCB(parcel)), true
	case 0b111: // C.BNEZ -> bne rs1', x0, offset
		return encodeB(0b001, rdP, 0, immCB(parcel)), true
	}
	return 0, false
}

// expandQuadrant2 handles stack-pointer-relative accesses and the
// jump/move/add subset (C.SLLI, C.LWSP, C.LDSP, C.JR, C.MV, C.EBREAK,
// C.JALR, C.ADD, C.SWSP, C.SDSP).
func expandQuadrant2(parcel uint16) (uint32, bool) {
	rdFull := uint8(parcel >> 7 & 0x1F)
	rs2Full := uint8(parcel >> 2 & 0x1F)

	switch parcel >> 13 & 0x7 {
	case 0b000: // C.SLLI -> slli rd, rd, shamt
		return encodeI(opcodeOpImm, 0b001, rdFull, rdFull, shamtCI(parcel)), true
	case 0b010: // C.LWSP -> lw rd, uimm(x2)
		if rdFull == 0 {
			return 0, false
		}
		imm := uint32(parcel>>12&0x1)<<5 |
			uint32(parcel>>4&0x7)<<2 |
			uint32(parcel>>2&0x3)<<6
		return encodeI(opcodeLoad, 0b010, rdFull, 2, imm), true
	case 0b011: // C.LDSP -> ld rd, uimm(x2)
		if rdFull == 0 {
			return 0, false
		}
		imm := uint32(parcel>>12&0x1)<<5 |
			uint32(parcel>>5&0x3)<<3 |
			uint32(parcel>>2&0x7)<<6
		return encodeI(opcodeLoad, 0b011, rdFull, 2, imm), true
	case 0b100:
		if parcel>>12&0x1 == 0 {
			if rs2Full == 0 { // C.JR -> jalr x0, rs1, 0
				if rdFull == 0 {
					return 0, false
				}
				return encodeI(opcodeJALR, 0b000, 0, rdFull, 0), true
			}
			// C.MV -> add rd, x0, rs2
			return encodeR(opcodeOp, 0, 0b000, rdFull, 0, rs2Full), true
		}
		if rs2Full == 0 {
			if rdFull == 0 { // C.EBREAK
				return opcodeSystem | 1<<20, true
			}
			// C.JALR -> jalr x1, rs1, 0
			return encodeI(opcodeJALR, 0b000, 1, rdFull, 0), true
		}
		// C.ADD -> add rd, rd, rs2
		return encodeR(opcodeOp, 0, 0b000, rdFull, rdFull, rs2Full), true
	case 0b110: // C.SWSP -> sw rs2, uimm(x2)
		imm := uint32(parcel>>9&0xF)<<2 |
			uint32(parcel>>7&0x3)<<6
		return encodeS(opcodeStore, 0b010, 2, rs2Full, imm), true
	case 0b111: // C.SDSP -> sd rs2, uimm(x2)
		imm := uint32(parcel>>10&0x7)<<3 |
			uint32(parcel>>7&0x7)<<6
		return encodeS(opcodeStore, 0b011, 2, rs2Full, imm), true
	}
	return 0, false
}

// cRegPrime extracts a 3-bit compressed register field at the given bit
// position and maps it to x8-x15.
func cRegPrime(parcel uint16, shift uint) uint8 {
	return uint8(parcel>>shift&0x7) + 8
}

// immCI extracts the sign-extended 6-bit CI-format immediate.
func immCI(parcel uint16) uint32 {
	return signExtend32(uint32(parcel>>12&0x1)<<5|uint32(parcel>>2&0x1F), 6)
}

// shamtCI extracts the 6-bit shift amount from the CI format (unsigned).
func shamtCI(parcel uint16) uint32 {
	return uint32(parcel>>12&0x1)<<5 | uint32(parcel>>2&0x1F)
}

// immCJ extracts the sign-extended CJ-format jump offset.
// Parcel bits [12:2] hold offset[11|4|9:8|10|6|7|3:1|5].
func immCJ(parcel uint16) uint32 {
	imm := uint32(parcel>>12&0x1)<<11 |
		uint32(parcel>>11&0x1)<<4 |
		uint32(parcel>>9&0x3)<<8 |
		uint32(parcel>>8&0x1)<<10 |
		uint32(parcel>>7&0x1)<<6 |
		uint32(parcel>>6&0x1)<<7 |
		uint32(parcel>>3&0x7)<<1 |
		uint32(parcel>>2&0x1)<<5
	return signExtend32(imm, 12)
}

// immCB extracts the sign-extended CB-format branch offset.
// Parcel bits hold offset[8|4:3] in [12:10] and offset[7:6|2:1|5] in [6:2].
func immCB(parcel uint16) uint32 {
	imm := uint32(parcel>>12&0x1)<<8 |
		uint32(parcel>>10&0x3)<<3 |
		uint32(parcel>>5&0x3)<<6 |
		uint32(parcel>>3&0x3)<<1 |
		uint32(parcel>>2&0x1)<<5
	return signExtend32(imm, 9)
}

// signExtend32 sign-extends a value occupying the low `bits` bits.
func signExtend32(value uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}

// Instruction word encoders for the expanded forms.

func encodeR(opcode, funct7, funct3 uint32, rd, rs1, rs2 uint8) uint32 {
	return opcode | uint32(rd)<<7 | funct3<<12 | uint32(rs1)<<15 |
		uint32(rs2)<<20 | funct7<<25
}

func encodeI(opcode, funct3 uint32, rd, rs1 uint8, imm uint32) uint32 {
	return opcode | uint32(rd)<<7 | funct3<<12 | uint32(rs1)<<15 | imm<<20
}

func encodeS(opcode, funct3 uint32, rs1, rs2 uint8, imm uint32) uint32 {
	return opcode | (imm&0x1F)<<7 | funct3<<12 | uint32(rs1)<<15 |
		uint32(rs2)<<20 | (imm>>5&0x7F)<<25
}

func encodeB(funct3 uint32, rs1, rs2 uint8, imm uint32) uint32 {
	return opcodeBranch |
		(imm>>11&0x1)<<7 | (imm>>1&0xF)<<8 |
		funct3<<12 | uint32(rs1)<<15 | uint32(rs2)<<20 |
		(imm>>5&0x3F)<<25 | (imm>>12&0x1)<<31
}

func encodeJ(rd uint8, imm uint32) uint32 {
	return opcodeJAL | uint32(rd)<<7 |
		(imm>>12&0xFF)<<12 | (imm>>11&0x1)<<20 |
		(imm>>1&0x3FF)<<21 | (imm>>20&0x1)<<31
}
