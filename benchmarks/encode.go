// Package benchmarks provides hand-assembled RISC-V microbenchmarks for
// exercising and calibrating the timing model.
package benchmarks

import "encoding/binary"

// BuildProgram concatenates 32-bit instruction words into a little-endian
// byte image.
func BuildProgram(words ...uint32) []byte {
	image := make([]byte, 0, len(words)*4)
	var buf [4]byte
	for _, w := range words {
		binary.LittleEndian.PutUint32(buf[:], w)
		image = append(image, buf[:]...)
	}
	return image
}

// EncodeADDI encodes ADDI rd, rs1, imm.
func EncodeADDI(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(0b0010011, rd, 0b000, rs1, imm)
}

// EncodeADD encodes ADD rd, rs1, rs2.
func EncodeADD(rd, rs1, rs2 uint32) uint32 {
	return encodeR(0b0110011, rd, 0b000, rs1, rs2, 0)
}

// EncodeSUB encodes SUB rd, rs1, rs2.
func EncodeSUB(rd, rs1, rs2 uint32) uint32 {
	return encodeR(0b0110011, rd, 0b000, rs1, rs2, 0b0100000)
}

// EncodeMUL encodes MUL rd, rs1, rs2.
func EncodeMUL(rd, rs1, rs2 uint32) uint32 {
	return encodeR(0b0110011, rd, 0b000, rs1, rs2, 0b0000001)
}

// EncodeDIV encodes DIV rd, rs1, rs2.
func EncodeDIV(rd, rs1, rs2 uint32) uint32 {
	return encodeR(0b0110011, rd, 0b100, rs1, rs2, 0b0000001)
}

// EncodeLD encodes LD rd, imm(rs1).
func EncodeLD(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(0b0000011, rd, 0b011, rs1, imm)
}

// EncodeLW encodes LW rd, imm(rs1).
func EncodeLW(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(0b0000011, rd, 0b010, rs1, imm)
}

// EncodeSD encodes SD rs2, imm(rs1).
func EncodeSD(rs2, rs1 uint32, imm int32) uint32 {
	return encodeS(0b0100011, 0b011, rs1, rs2, imm)
}

// EncodeSW encodes SW rs2, imm(rs1).
func EncodeSW(rs2, rs1 uint32, imm int32) uint32 {
	return encodeS(0b0100011, 0b010, rs1, rs2, imm)
}

// EncodeBEQ encodes BEQ rs1, rs2, offset.
func EncodeBEQ(rs1, rs2 uint32, offset int32) uint32 {
	return encodeB(0b1100011, 0b000, rs1, rs2, offset)
}

// EncodeBNE encodes BNE rs1, rs2, offset.
func EncodeBNE(rs1, rs2 uint32, offset int32) uint32 {
	return encodeB(0b1100011, 0b001, rs1, rs2, offset)
}

// EncodeBLT encodes BLT rs1, rs2, offset.
func EncodeBLT(rs1, rs2 uint32, offset int32) uint32 {
	return encodeB(0b1100011, 0b100, rs1, rs2, offset)
}

// EncodeJAL encodes JAL rd, offset.
func EncodeJAL(rd uint32, offset int32) uint32 {
	imm := uint32(offset)
	inst := uint32(0b1101111)
	inst |= rd << 7
	inst |= (imm >> 12 & 0xFF) << 12
	inst |= (imm >> 11 & 1) << 20
	inst |= (imm >> 1 & 0x3FF) << 21
	inst |= (imm >> 20 & 1) << 31
	return inst
}

// EncodeJALR encodes JALR rd, imm(rs1).
func EncodeJALR(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(0b1100111, rd, 0b000, rs1, imm)
}

// EncodeLUI encodes LUI rd, imm. imm is the full 32-bit value whose
// upper 20 bits are loaded.
func EncodeLUI(rd uint32, imm int32) uint32 {
	return uint32(imm)&0xFFFFF000 | rd<<7 | 0b0110111
}

// EncodeEBREAK encodes EBREAK, the halt instruction of the simulator.
func EncodeEBREAK() uint32 {
	return 0x00100073
}

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return opcode | rd<<7 | funct3<<12 | rs1<<15 | rs2<<20 | funct7<<25
}

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return opcode | rd<<7 | funct3<<12 | rs1<<15 | (uint32(imm)&0xFFF)<<20
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return opcode | (u&0x1F)<<7 | funct3<<12 | rs1<<15 | rs2<<20 | (u>>5&0x7F)<<25
}

func encodeB(opcode, funct3, rs1, rs2 uint32, offset int32) uint32 {
	u := uint32(offset)
	inst := opcode | funct3<<12 | rs1<<15 | rs2<<20
	inst |= (u >> 11 & 1) << 7
	inst |= (u >> 1 & 0xF) << 8
	inst |= (u >> 5 & 0x3F) << 25
	inst |= (u >> 12 & 1) << 31
	return inst
}
