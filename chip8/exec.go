package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// execute applies a decoded instruction. PC already points past it,
// except while waiting for a key.
func (vm *Interpreter) execute(inst Instruction) error {
	x, y := inst.X, inst.Y

	switch inst.Op {
	case OpSys:
		vm.sys(inst)
	case OpCls:
		vm.cls()
	case OpRet:
		return vm.ret()
	case OpJump:
		vm.jump(inst.NNN)
	case OpCall:
		return vm.call(inst.NNN)
	case OpSkipEqImm:
		vm.skipWhen(vm.V[x] == inst.NN)
	case OpSkipNeImm:
		vm.skipWhen(vm.V[x] != inst.NN)
	case OpSkipEqReg:
		vm.skipWhen(vm.V[x] == vm.V[y])
	case OpLoadImm:
		vm.V[x] = inst.NN
	case OpAddImm:
		vm.V[x] += inst.NN
	case OpLoadReg:
		vm.V[x] = vm.V[y]
	case OpOr:
		vm.V[x] |= vm.V[y]
	case OpAnd:
		vm.V[x] &= vm.V[y]
	case OpXor:
		vm.V[x] ^= vm.V[y]
	case OpAddReg:
		vm.addXY(x, y)
	case OpSubXY:
		vm.subXY(x, y)
	case OpShr:
		vm.shr(x)
	case OpSubYX:
		vm.subYX(x, y)
	case OpShl:
		vm.shl(x)
	case OpSkipNeReg:
		vm.skipWhen(vm.V[x] != vm.V[y])
	case OpLoadI:
		vm.I = inst.NNN
	case OpJumpV0:
		vm.jump(inst.NNN + uint16(vm.V[0]))
	case OpRand:
		vm.V[x] = byte(vm.rng.IntN(256)) & inst.NN
	case OpDraw:
		return vm.drw(x, y, inst.N)
	case OpSkipKey:
		vm.skipWhen(vm.Keys[vm.V[x]&0xF])
	case OpSkipNoKey:
		vm.skipWhen(!vm.Keys[vm.V[x]&0xF])
	case OpLoadDT:
		vm.V[x] = vm.DT
	case OpWaitKey:
		vm.waitKey(x)
	case OpSetDT:
		vm.DT = vm.V[x]
	case OpSetST:
		vm.ST = vm.V[x]
	case OpAddI:
		vm.addIX(x)
	case OpFont:
		vm.I = glyphAddress(vm.V[x])
	case OpBCD:
		return vm.bcd(x)
	case OpStore:
		return vm.saveRegs(x)
	case OpRestore:
		return vm.loadRegs(x)
	case OpInvalid:
		vm.logger.Warn("Unrecognized opcode",
			log.Hex("pc", vm.PC-2),
			log.Hex("opcode", inst.Word))
	default:
		return fmt.Errorf("instruction %s has no handler", inst.Op)
	}

	return nil
}

// sys would call an RCA 1802 routine, which is not emulated.
func (vm *Interpreter) sys(inst Instruction) {
	vm.logger.Debug("Ignoring machine code routine call",
		log.Hex("pc", vm.PC-2),
		log.Hex("address", inst.NNN))
}

// cls clears the video display memory.
func (vm *Interpreter) cls() {
	clear(vm.Video[:])
}

// call pushes the return address and jumps to address.
func (vm *Interpreter) call(address uint16) error {
	if vm.SP >= StackSize {
		return fmt.Errorf("%w: call to 0x%03X with %d return addresses", ErrStackOverflow, address, vm.SP)
	}

	vm.Stack[vm.SP] = vm.PC
	vm.SP++

	vm.jump(address)

	return nil
}

// ret pops the return address into PC.
func (vm *Interpreter) ret() error {
	if vm.SP == 0 {
		return ErrStackUnderflow
	}

	vm.SP--
	vm.PC = vm.Stack[vm.SP]

	return nil
}

func (vm *Interpreter) jump(address uint16) {
	vm.PC = address
}

// skipWhen skips the next instruction if cond holds.
func (vm *Interpreter) skipWhen(cond bool) {
	if cond {
		vm.PC += 2
	}
}

// addXY adds vy to vx, then sets VF to the carry out of the 8-bit sum.
func (vm *Interpreter) addXY(x, y byte) {
	sum := uint16(vm.V[x]) + uint16(vm.V[y])

	vm.V[x] = byte(sum)
	vm.V[flag] = boolToByte(sum > 0xFF)
}

// subXY sets VF when vx > vy, then subtracts vy from vx.
func (vm *Interpreter) subXY(x, y byte) {
	vx, vy := vm.V[x], vm.V[y]

	vm.V[flag] = boolToByte(vx > vy)
	vm.V[x] = vx - vy
}

// subYX sets VF when vy > vx, then stores vy - vx in vx.
func (vm *Interpreter) subYX(x, y byte) {
	vx, vy := vm.V[x], vm.V[y]

	vm.V[flag] = boolToByte(vy > vx)
	vm.V[x] = vy - vx
}

// shr moves the low bit of vx into VF, then shifts vx right.
func (vm *Interpreter) shr(x byte) {
	vx := vm.V[x]

	vm.V[flag] = vx & 1
	vm.V[x] = vx >> 1
}

// shl moves the high bit of vx into VF, then shifts vx left.
func (vm *Interpreter) shl(x byte) {
	vx := vm.V[x]

	vm.V[flag] = (vx & 0x80) >> 7
	vm.V[x] = vx << 1
}

// addIX adds vx to I within the 12-bit address space.
func (vm *Interpreter) addIX(x byte) {
	vm.I = (vm.I + uint16(vm.V[x])) & 0xFFF
}

// waitKey stores the lowest pressed key in vx, or blocks the machine on
// this instruction until a key is pressed.
func (vm *Interpreter) waitKey(x byte) {
	for key, pressed := range vm.Keys {
		if !pressed {
			continue
		}

		vm.V[x] = byte(key)

		// the fetch did not advance while waiting, step past the instruction
		if vm.waiting {
			vm.waiting = false
			vm.PC += 2
		}
		return
	}

	if !vm.waiting {
		vm.waiting = true
		vm.PC -= 2
	}
}

// bcd stores the decimal digits of vx at I, I+1 and I+2.
func (vm *Interpreter) bcd(x byte) error {
	if err := vm.checkRange(vm.I, 3); err != nil {
		return err
	}

	n := vm.V[x]

	vm.Memory[vm.I+0] = n / 100
	vm.Memory[vm.I+1] = n / 10 % 10
	vm.Memory[vm.I+2] = n % 10

	return nil
}

// saveRegs stores v0..vx at I.
func (vm *Interpreter) saveRegs(x byte) error {
	if err := vm.checkRange(vm.I, int(x)+1); err != nil {
		return err
	}

	copy(vm.Memory[vm.I:], vm.V[:x+1])

	return nil
}

// loadRegs loads v0..vx from I.
func (vm *Interpreter) loadRegs(x byte) error {
	if err := vm.checkRange(vm.I, int(x)+1); err != nil {
		return err
	}

	copy(vm.V[:x+1], vm.Memory[vm.I:])

	return nil
}

// drw draws the n byte sprite at I to video memory at vx, vy. VF is set if
// any set pixel was turned off. Pixels past the right edge end their row and
// rows past the bottom end the sprite.
func (vm *Interpreter) drw(x, y, n byte) error {
	if err := vm.checkRange(vm.I, int(n)); err != nil {
		return err
	}

	ox := int(vm.V[x])
	oy := int(vm.V[y])

	vm.V[flag] = 0

	for row, bits := range vm.Memory[vm.I : vm.I+uint16(n)] {
		py := oy + row
		if py >= DisplayHeight {
			break
		}

		for bit := range 8 {
			px := ox + bit
			if px >= DisplayWidth {
				break
			}

			if bits&(0x80>>bit) == 0 {
				continue
			}

			p := &vm.Video[py*DisplayWidth+px]
			if *p != 0 {
				vm.V[flag] = 1
			}
			*p ^= 1
		}
	}

	return nil
}

// checkRange fails if n bytes starting at address do not fit in memory.
func (vm *Interpreter) checkRange(address uint16, n int) error {
	if int(address)+n > MemorySize {
		return fmt.Errorf("%w: %d bytes at I=0x%04X", ErrMemoryOutOfBounds, n, address)
	}
	return nil
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
