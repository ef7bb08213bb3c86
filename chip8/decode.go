package chip8

import (
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies one of the CHIP-8 instructions.
type Op uint8

// The instruction set. OpInvalid is the decoding of every word that is not
// part of it.
const (
	OpInvalid Op = iota
	OpSys        // 0nnn
	OpCls        // 00E0
	OpRet        // 00EE
	OpJump       // 1nnn
	OpCall       // 2nnn
	OpSkipEqImm  // 3xnn
	OpSkipNeImm  // 4xnn
	OpSkipEqReg  // 5xy0
	OpLoadImm    // 6xnn
	OpAddImm     // 7xnn
	OpLoadReg    // 8xy0
	OpOr         // 8xy1
	OpAnd        // 8xy2
	OpXor        // 8xy3
	OpAddReg     // 8xy4
	OpSubXY      // 8xy5
	OpShr        // 8xy6
	OpSubYX      // 8xy7
	OpShl        // 8xyE
	OpSkipNeReg  // 9xy0
	OpLoadI      // Annn
	OpJumpV0     // Bnnn
	OpRand       // Cxnn
	OpDraw       // Dxyn
	OpSkipKey    // Ex9E
	OpSkipNoKey  // ExA1
	OpLoadDT     // Fx07
	OpWaitKey    // Fx0A
	OpSetDT      // Fx15
	OpSetST      // Fx18
	OpAddI       // Fx1E
	OpFont       // Fx29
	OpBCD        // Fx33
	OpStore      // Fx55
	OpRestore    // Fx65
)

var opPatterns = [...]string{
	OpInvalid:   "????",
	OpSys:       "0nnn",
	OpCls:       "00E0",
	OpRet:       "00EE",
	OpJump:      "1nnn",
	OpCall:      "2nnn",
	OpSkipEqImm: "3xnn",
	OpSkipNeImm: "4xnn",
	OpSkipEqReg: "5xy0",
	OpLoadImm:   "6xnn",
	OpAddImm:    "7xnn",
	OpLoadReg:   "8xy0",
	OpOr:        "8xy1",
	OpAnd:       "8xy2",
	OpXor:       "8xy3",
	OpAddReg:    "8xy4",
	OpSubXY:     "8xy5",
	OpShr:       "8xy6",
	OpSubYX:     "8xy7",
	OpShl:       "8xyE",
	OpSkipNeReg: "9xy0",
	OpLoadI:     "Annn",
	OpJumpV0:    "Bnnn",
	OpRand:      "Cxnn",
	OpDraw:      "Dxyn",
	OpSkipKey:   "Ex9E",
	OpSkipNoKey: "ExA1",
	OpLoadDT:    "Fx07",
	OpWaitKey:   "Fx0A",
	OpSetDT:     "Fx15",
	OpSetST:     "Fx18",
	OpAddI:      "Fx1E",
	OpFont:      "Fx29",
	OpBCD:       "Fx33",
	OpStore:     "Fx55",
	OpRestore:   "Fx65",
}

// String returns the opcode pattern of the instruction, for example "8xy4".
func (op Op) String() string {
	if int(op) < len(opPatterns) {
		return opPatterns[op]
	}
	return opPatterns[OpInvalid]
}

// Instruction is a decoded instruction word. The operand fields are always
// extracted, whether or not the instruction uses them.
type Instruction struct {
	Op   Op
	Word uint16

	NNN uint16 // 12-bit address
	NN  byte   // 8-bit immediate
	N   byte   // 4-bit immediate
	X   byte   // register index from bits 8-11
	Y   byte   // register index from bits 4-7
}

// Decode splits an instruction word into its operation and operands.
func Decode(word uint16) Instruction {
	return Instruction{
		Op:   decodeOp(word),
		Word: word,
		NNN:  word & 0x0FFF,
		NN:   byte(word & 0x00FF),
		N:    byte(word & 0x000F),
		X:    byte(word >> 8 & 0xF),
		Y:    byte(word >> 4 & 0xF),
	}
}

// decodeOp dispatches on the high nibble, then on the low nibble or low
// byte for the 0, 8, E and F families.
func decodeOp(word uint16) Op {
	switch word & 0xF000 {
	case 0x0000:
		switch word {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}
		return OpSys
	case 0x1000:
		return OpJump
	case 0x2000:
		return OpCall
	case 0x3000:
		return OpSkipEqImm
	case 0x4000:
		return OpSkipNeImm
	case 0x5000:
		if word&0xF == 0 {
			return OpSkipEqReg
		}
	case 0x6000:
		return OpLoadImm
	case 0x7000:
		return OpAddImm
	case 0x8000:
		return decodeALU(word)
	case 0x9000:
		if word&0xF == 0 {
			return OpSkipNeReg
		}
	case 0xA000:
		return OpLoadI
	case 0xB000:
		return OpJumpV0
	case 0xC000:
		return OpRand
	case 0xD000:
		return OpDraw
	case 0xE000:
		switch word & 0xFF {
		case 0x9E:
			return OpSkipKey
		case 0xA1:
			return OpSkipNoKey
		}
	case 0xF000:
		return decodeMisc(word)
	}

	return OpInvalid
}

func decodeALU(word uint16) Op {
	switch word & 0xF {
	case 0x0:
		return OpLoadReg
	case 0x1:
		return OpOr
	case 0x2:
		return OpAnd
	case 0x3:
		return OpXor
	case 0x4:
		return OpAddReg
	case 0x5:
		return OpSubXY
	case 0x6:
		return OpShr
	case 0x7:
		return OpSubYX
	case 0xE:
		return OpShl
	}
	return OpInvalid
}

func decodeMisc(word uint16) Op {
	switch word & 0xFF {
	case 0x07:
		return OpLoadDT
	case 0x0A:
		return OpWaitKey
	case 0x15:
		return OpSetDT
	case 0x18:
		return OpSetST
	case 0x1E:
		return OpAddI
	case 0x29:
		return OpFont
	case 0x33:
		return OpBCD
	case 0x55:
		return OpStore
	case 0x65:
		return OpRestore
	}
	return OpInvalid
}

// mnemonic looks the word up in the retrogolib opcode table and returns the
// assembler mnemonic, or an empty string for words outside the table.
func mnemonic(word uint16) string {
	for _, op := range chip8cpu.Opcodes[int(word>>12)] {
		if op.Info.Mask&word == op.Info.Value {
			return op.Instruction.Name
		}
	}
	return ""
}
