// Package insts provides RISC-V instruction definitions and decoding.
//
// This package implements decoding of RV64IM machine code, plus expansion
// of compressed (RVC) encodings into their 32-bit equivalents. It covers:
//   - The full base integer set: LUI, AUIPC, JAL, JALR, conditional
//     branches, loads/stores of all widths, ALU immediate/register forms,
//     and the 32-bit *W forms
//   - The M extension: MUL, MULH*, DIV*, REM* and their *W forms
//   - FENCE/ECALL/EBREAK, decoded as no-effect system operations
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x003100B3) // ADD x1, x2, x3
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Rs2: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
package insts

// Op represents a RISC-V opcode.
type Op uint16

// RV64IM opcodes.
const (
	OpUnknown Op = iota
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLD
	OpLBU
	OpLHU
	OpLWU
	OpSB
	OpSH
	OpSW
	OpSD
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpMULW
	OpDIVW
	OpDIVUW
	OpREMW
	OpREMUW
	OpFENCE
	OpECALL
	OpEBREAK
)

var opNames = map[Op]string{
	OpUnknown: "unknown",
	OpLUI:     "lui",
	OpAUIPC:   "auipc",
	OpJAL:     "jal",
	OpJALR:    "jalr",
	OpBEQ:     "beq",
	OpBNE:     "bne",
	OpBLT:     "blt",
	OpBGE:     "bge",
	OpBLTU:    "bltu",
	OpBGEU:    "bgeu",
	OpLB:      "lb",
	OpLH:      "lh",
	OpLW:      "lw",
	OpLD:      "ld",
	OpLBU:     "lbu",
	OpLHU:     "lhu",
	OpLWU:     "lwu",
	OpSB:      "sb",
	OpSH:      "sh",
	OpSW:      "sw",
	OpSD:      "sd",
	OpADDI:    "addi",
	OpSLTI:    "slti",
	OpSLTIU:   "sltiu",
	OpXORI:    "xori",
	OpORI:     "ori",
	OpANDI:    "andi",
	OpSLLI:    "slli",
	OpSRLI:    "srli",
	OpSRAI:    "srai",
	OpADD:     "add",
	OpSUB:     "sub",
	OpSLL:     "sll",
	OpSLT:     "slt",
	OpSLTU:    "sltu",
	OpXOR:     "xor",
	OpSRL:     "srl",
	OpSRA:     "sra",
	OpOR:      "or",
	OpAND:     "and",
	OpADDIW:   "addiw",
	OpSLLIW:   "slliw",
	OpSRLIW:   "srliw",
	OpSRAIW:   "sraiw",
	OpADDW:    "addw",
	OpSUBW:    "subw",
	OpSLLW:    "sllw",
	OpSRLW:    "srlw",
	OpSRAW:    "sraw",
	OpMUL:     "mul",
	OpMULH:    "mulh",
	OpMULHSU:  "mulhsu",
	OpMULHU:   "mulhu",
	OpDIV:     "div",
	OpDIVU:    "divu",
	OpREM:     "rem",
	OpREMU:    "remu",
	OpMULW:    "mulw",
	OpDIVW:    "divw",
	OpDIVUW:   "divuw",
	OpREMW:    "remw",
	OpREMUW:   "remuw",
	OpFENCE:   "fence",
	OpECALL:   "ecall",
	OpEBREAK:  "ebreak",
}

// String returns the assembler mnemonic for the opcode.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// Class broadly categorizes an instruction for commit handling.
// The reorder buffer treats each class differently at commit time:
// stores drain to the store buffer, control-flow classes verify the
// next committed PC, and everything else just writes back.
type Class uint8

// Instruction classes.
const (
	ClassOther Class = iota
	ClassStore
	ClassLoad
	ClassAUIPC
	ClassJAL
	ClassJALR
	ClassBranch
)

var classNames = [...]string{"other", "store", "load", "auipc", "jal", "jalr", "branch"}

// String returns a readable name for the class.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "other"
}

// IsControlFlow returns true for classes whose commit must verify the
// next instruction's PC (jumps and conditional branches).
func (c Class) IsControlFlow() bool {
	return c == ClassJAL || c == ClassJALR || c == ClassBranch
}

// Lane identifies the execution lane an instruction dispatches to.
type Lane uint8

// Execution lanes.
const (
	// LaneInt is the integer ALU lane (arithmetic, logic, branches, JALR).
	LaneInt Lane = iota
	// LaneLoadAddr is the load address-calculation lane.
	LaneLoadAddr
	// LaneStoreAddr is the store address-calculation lane.
	LaneStoreAddr
	// LaneMulDiv is the multi-cycle multiply/divide lane.
	LaneMulDiv
	// LaneNone marks instructions that complete at issue without
	// executing (LUI, AUIPC, JAL, FENCE).
	LaneNone
)

var laneNames = [...]string{"int", "load", "store", "muldiv", "none"}

// String returns a readable name for the lane.
func (l Lane) String() string {
	if int(l) < len(laneNames) {
		return laneNames[l]
	}
	return "none"
}

// ALUOp selects the operation an execution unit performs.
type ALUOp uint8

// Integer ALU operations.
const (
	ALUAdd ALUOp = iota
	ALUSub
	ALUSll
	ALUSlt
	ALUSltu
	ALUXor
	ALUSrl
	ALUSra
	ALUOr
	ALUAnd
	ALUAddW
	ALUSubW
	ALUSllW
	ALUSrlW
	ALUSraW
)

// Multiply/divide unit operations.
const (
	MDMul ALUOp = iota + 32
	MDMulh
	MDMulhsu
	MDMulhu
	MDDiv
	MDDivu
	MDRem
	MDRemu
	MDMulW
	MDDivW
	MDDivuW
	MDRemW
	MDRemuW
)

// Instruction represents a decoded RISC-V instruction.
type Instruction struct {
	// Op is the operation.
	Op Op
	// Class categorizes the instruction for commit handling.
	Class Class
	// Lane is the execution lane this instruction dispatches to.
	Lane Lane

	// Register selectors. Register 0 always reads as zero.
	Rd  uint8
	Rs1 uint8
	Rs2 uint8

	// Imm is the sign-extended immediate, per the encoding format.
	Imm int64

	// ALUOp selects the execution unit operation.
	ALUOp ALUOp

	// RegWrite is true if the instruction writes a destination register.
	// Writes to register 0 are decoded with RegWrite false.
	RegWrite bool
	// UsesRs1 and UsesRs2 mark which source operands the instruction
	// actually reads, so issue does not wait on unused registers.
	UsesRs1 bool
	UsesRs2 bool
	// UseImm is true when the second ALU operand is the immediate.
	UseImm bool

	// MemWidth is the access width in bytes for loads and stores.
	MemWidth uint8
	// MemUnsigned is true for zero-extending loads (LBU, LHU, LWU).
	MemUnsigned bool

	// Compressed is true when the instruction was expanded from a
	// 16-bit encoding and therefore occupies 2 bytes in memory.
	Compressed bool

	// Raw is the 32-bit instruction word (post-expansion for RVC).
	Raw uint32
}

// Len returns the instruction's encoded length in bytes.
func (i *Instruction) Len() uint64 {
	if i.Compressed {
		return 2
	}
	return 4
}

// IsMemOp returns true for loads and stores.
func (i *Instruction) IsMemOp() bool {
	return i.Class == ClassLoad || i.Class == ClassStore
}
