package insts

// RISC-V major opcode values (bits [6:0] of the 32-bit encoding).
const (
	opcodeLUI    = 0b0110111
	opcodeAUIPC  = 0b0010111
	opcodeJAL    = 0b1101111
	opcodeJALR   = 0b1100111
	opcodeBranch = 0b1100011
	opcodeLoad   = 0b0000011
	opcodeStore  = 0b0100011
	opcodeOpImm  = 0b0010011
	opcodeOpImmW = 0b0011011
	opcodeOp     = 0b0110011
	opcodeOpW    = 0b0111011
	opcodeFence  = 0b0001111
	opcodeSystem = 0b1110011
)

// Decoder decodes RISC-V machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RISC-V instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RISC-V instruction word.
// Compressed encodings must be expanded with ExpandCompressed first.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Op:   OpUnknown,
		Lane: LaneNone,
		Raw:  word,
		Rd:   rd(word),
		Rs1:  rs1(word),
		Rs2:  rs2(word),
	}

	switch word & 0x7F {
	case opcodeLUI:
		inst.Op = OpLUI
		inst.Imm = immU(word)
		inst.RegWrite = inst.Rd != 0
	case opcodeAUIPC:
		inst.Op = OpAUIPC
		inst.Class = ClassAUIPC
		inst.Imm = immU(word)
		inst.RegWrite = inst.Rd != 0
	case opcodeJAL:
		inst.Op = OpJAL
		inst.Class = ClassJAL
		inst.Imm = immJ(word)
		inst.RegWrite = inst.Rd != 0
	case opcodeJALR:
		inst.Op = OpJALR
		inst.Class = ClassJALR
		inst.Lane = LaneInt
		inst.Imm = immI(word)
		inst.RegWrite = inst.Rd != 0
		inst.UsesRs1 = true
		inst.UseImm = true
	case opcodeBranch:
		d.decodeBranch(word, inst)
	case opcodeLoad:
		d.decodeLoad(word, inst)
	case opcodeStore:
		d.decodeStore(word, inst)
	case opcodeOpImm:
		d.decodeOpImm(word, inst)
	case opcodeOpImmW:
		d.decodeOpImmW(word, inst)
	case opcodeOp:
		d.decodeOp(word, inst)
	case opcodeOpW:
		d.decodeOpW(word, inst)
	case opcodeFence:
		// Memory ordering is already strict in this core; FENCE retires
		// as a no-op.
		inst.Op = OpFENCE
	case opcodeSystem:
		// ECALL/EBREAK belong to the surrounding privilege layer and
		// retire without architectural effect here.
		if word>>20&0x1 == 1 {
			inst.Op = OpEBREAK
		} else {
			inst.Op = OpECALL
		}
	}

	return inst
}

// decodeBranch decodes conditional branches (B-type).
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	branchOps := [8]Op{OpBEQ, OpBNE, OpUnknown, OpUnknown, OpBLT, OpBGE, OpBLTU, OpBGEU}
	op := branchOps[funct3(word)]
	if op == OpUnknown {
		return
	}
	inst.Op = op
	inst.Class = ClassBranch
	inst.Lane = LaneInt
	inst.Imm = immB(word)
	inst.UsesRs1 = true
	inst.UsesRs2 = true
}

// decodeLoad decodes load instructions (I-type).
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) {
	type loadSpec struct {
		op       Op
		width    uint8
		unsigned bool
	}
	loads := [8]loadSpec{
		{OpLB, 1, false},
		{OpLH, 2, false},
		{OpLW, 4, false},
		{OpLD, 8, false},
		{OpLBU, 1, true},
		{OpLHU, 2, true},
		{OpLWU, 4, true},
		{OpUnknown, 0, false},
	}
	spec := loads[funct3(word)]
	if spec.op == OpUnknown {
		return
	}
	inst.Op = spec.op
	inst.Class = ClassLoad
	inst.Lane = LaneLoadAddr
	inst.Imm = immI(word)
	inst.RegWrite = inst.Rd != 0
	inst.UsesRs1 = true
	inst.UseImm = true
	inst.MemWidth = spec.width
	inst.MemUnsigned = spec.unsigned
}

// decodeStore decodes store instructions (S-type).
func (d *Decoder) decodeStore(word uint32, inst *Instruction) {
	storeOps := [8]Op{OpSB, OpSH, OpSW, OpSD, OpUnknown, OpUnknown, OpUnknown, OpUnknown}
	op := storeOps[funct3(word)]
	if op == OpUnknown {
		return
	}
	inst.Op = op
	inst.Class = ClassStore
	inst.Lane = LaneStoreAddr
	inst.Imm = immS(word)
	inst.UsesRs1 = true
	inst.UsesRs2 = true
	inst.UseImm = true
	inst.MemWidth = 1 << funct3(word)
}

// decodeOpImm decodes ALU-immediate instructions (I-type).
func (d *Decoder) decodeOpImm(word uint32, inst *Instruction) {
	inst.Class = ClassOther
	inst.Lane = LaneInt
	inst.Imm = immI(word)
	inst.RegWrite = inst.Rd != 0
	inst.UsesRs1 = true
	inst.UseImm = true

	switch funct3(word) {
	case 0b000:
		inst.Op, inst.ALUOp = OpADDI, ALUAdd
	case 0b010:
		inst.Op, inst.ALUOp = OpSLTI, ALUSlt
	case 0b011:
		inst.Op, inst.ALUOp = OpSLTIU, ALUSltu
	case 0b100:
		inst.Op, inst.ALUOp = OpXORI, ALUXor
	case 0b110:
		inst.Op, inst.ALUOp = OpORI, ALUOr
	case 0b111:
		inst.Op, inst.ALUOp = OpANDI, ALUAnd
	case 0b001:
		// RV64 shift amount spans bits [25:20].
		inst.Op, inst.ALUOp = OpSLLI, ALUSll
		inst.Imm = int64(word >> 20 & 0x3F)
	case 0b101:
		inst.Imm = int64(word >> 20 & 0x3F)
		if word>>30&1 == 1 {
			inst.Op, inst.ALUOp = OpSRAI, ALUSra
		} else {
			inst.Op, inst.ALUOp = OpSRLI, ALUSrl
		}
	}
}

// decodeOpImmW decodes 32-bit ALU-immediate instructions (ADDIW, shifts).
func (d *Decoder) decodeOpImmW(word uint32, inst *Instruction) {
	inst.Class = ClassOther
	inst.Lane = LaneInt
	inst.Imm = immI(word)
	inst.RegWrite = inst.Rd != 0
	inst.UsesRs1 = true
	inst.UseImm = true

	switch funct3(word) {
	case 0b000:
		inst.Op, inst.ALUOp = OpADDIW, ALUAddW
	case 0b001:
		inst.Op, inst.ALUOp = OpSLLIW, ALUSllW
		inst.Imm = int64(word >> 20 & 0x1F)
	case 0b101:
		inst.Imm = int64(word >> 20 & 0x1F)
		if word>>30&1 == 1 {
			inst.Op, inst.ALUOp = OpSRAIW, ALUSraW
		} else {
			inst.Op, inst.ALUOp = OpSRLIW, ALUSrlW
		}
	default:
		inst.Op = OpUnknown
		inst.Lane = LaneNone
		inst.RegWrite = false
		inst.UsesRs1 = false
		inst.UseImm = false
	}
}

// decodeOp decodes register-register ALU and M-extension instructions (R-type).
func (d *Decoder) decodeOp(word uint32, inst *Instruction) {
	inst.Class = ClassOther
	inst.Lane = LaneInt
	inst.RegWrite = inst.Rd != 0
	inst.UsesRs1 = true
	inst.UsesRs2 = true

	f3 := funct3(word)
	switch funct7(word) {
	case 0b0000000:
		ops := [8]Op{OpADD, OpSLL, OpSLT, OpSLTU, OpXOR, OpSRL, OpOR, OpAND}
		alu := [8]ALUOp{ALUAdd, ALUSll, ALUSlt, ALUSltu, ALUXor, ALUSrl, ALUOr, ALUAnd}
		inst.Op, inst.ALUOp = ops[f3], alu[f3]
	case 0b0100000:
		switch f3 {
		case 0b000:
			inst.Op, inst.ALUOp = OpSUB, ALUSub
		case 0b101:
			inst.Op, inst.ALUOp = OpSRA, ALUSra
		default:
			d.markUnknown(inst)
		}
	case 0b0000001:
		ops := [8]Op{OpMUL, OpMULH, OpMULHSU, OpMULHU, OpDIV, OpDIVU, OpREM, OpREMU}
		alu := [8]ALUOp{MDMul, MDMulh, MDMulhsu, MDMulhu, MDDiv, MDDivu, MDRem, MDRemu}
		inst.Op, inst.ALUOp = ops[f3], alu[f3]
		inst.Lane = LaneMulDiv
	default:
		d.markUnknown(inst)
	}
}

// decodeOpW decodes 32-bit register-register instructions (R-type, *W forms).
func (d *Decoder) decodeOpW(word uint32, inst *Instruction) {
	inst.Class = ClassOther
	inst.Lane = LaneInt
	inst.RegWrite = inst.Rd != 0
	inst.UsesRs1 = true
	inst.UsesRs2 = true

	f3 := funct3(word)
	switch funct7(word) {
	case 0b0000000:
		switch f3 {
		case 0b000:
			inst.Op, inst.ALUOp = OpADDW, ALUAddW
		case 0b001:
			inst.Op, inst.ALUOp = OpSLLW, ALUSllW
		case 0b101:
			inst.Op, inst.ALUOp = OpSRLW, ALUSrlW
		default:
			d.markUnknown(inst)
		}
	case 0b0100000:
		switch f3 {
		case 0b000:
			inst.Op, inst.ALUOp = OpSUBW, ALUSubW
		case 0b101:
			inst.Op, inst.ALUOp = OpSRAW, ALUSraW
		default:
			d.markUnknown(inst)
		}
	case 0b0000001:
		switch f3 {
		case 0b000:
			inst.Op, inst.ALUOp = OpMULW, MDMulW
		case 0b100:
			inst.Op, inst.ALUOp = OpDIVW, MDDivW
		case 0b101:
			inst.Op, inst.ALUOp = OpDIVUW, MDDivuW
		case 0b110:
			inst.Op, inst.ALUOp = OpREMW, MDRemW
		case 0b111:
			inst.Op, inst.ALUOp = OpREMUW, MDRemuW
		default:
			d.markUnknown(inst)
		}
		if inst.Op != OpUnknown {
			inst.Lane = LaneMulDiv
		}
	default:
		d.markUnknown(inst)
	}
}

// markUnknown resets a partially decoded instruction to the unknown state.
func (d *Decoder) markUnknown(inst *Instruction) {
	inst.Op = OpUnknown
	inst.Class = ClassOther
	inst.Lane = LaneNone
	inst.RegWrite = false
	inst.UsesRs1 = false
	inst.UsesRs2 = false
}

// Field extraction helpers.

func rd(word uint32) uint8     { return uint8(word >> 7 & 0x1F) }
func rs1(word uint32) uint8    { return uint8(word >> 15 & 0x1F) }
func rs2(word uint32) uint8    { return uint8(word >> 20 & 0x1F) }
func funct3(word uint32) uint8 { return uint8(word >> 12 & 0x7) }
func funct7(word uint32) uint8 { return uint8(word >> 25 & 0x7F) }

// immI extracts the sign-extended I-type immediate (bits [31:20]).
func immI(word uint32) int64 {
	return int64(int32(word)) >> 20
}

// immS extracts the sign-extended S-type immediate ([31:25] and [11:7]).
func immS(word uint32) int64 {
	return int64(int32(word)>>25)<<5 | int64(word>>7&0x1F)
}

// immB extracts the sign-extended B-type branch offset.
// Bit layout: imm[12|10:5] in [31:25], imm[4:1|11] in [11:7].
func immB(word uint32) int64 {
	imm := int64(int32(word)>>31) << 12
	imm |= int64(word>>25&0x3F) << 5
	imm |= int64(word>>8&0xF) << 1
	imm |= int64(word>>7&0x1) << 11
	return imm
}

// immU extracts the sign-extended U-type immediate (upper 20 bits).
func immU(word uint32) int64 {
	return int64(int32(word & 0xFFFFF000))
}

// immJ extracts the sign-extended J-type jump offset.
// Bit layout: imm[20|10:1|11|19:12] in [31:12].
func immJ(word uint32) int64 {
	imm := int64(int32(word)>>31) << 20
	imm |= int64(word>>21&0x3FF) << 1
	imm |= int64(word>>20&0x1) << 11
	imm |= int64(word>>12&0xFF) << 12
	return imm
}
