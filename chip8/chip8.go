// Package chip8 implements the CHIP-8 virtual machine interpreter: machine
// state, the fetch/decode/execute cycle and the 35 instruction semantics.
//
// The interpreter keeps no clock of its own. A host drives it by calling Step
// at the desired instruction rate, TickTimers at 60 Hz and SetKey whenever the
// keypad changes, and reads Framebuffer and SoundTimer to present the machine.
// An Interpreter must not be used from more than one goroutine at a time.
package chip8

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Memory layout and machine dimensions.
const (
	// MemorySize is the size of the addressable memory (0x000-0xFFF).
	MemorySize = 0x1000

	// ProgramStart is where ROMs are loaded and where execution begins.
	ProgramStart = 0x200

	// MaxROMSize is the largest ROM that fits between ProgramStart and the
	// end of memory.
	MaxROMSize = MemorySize - ProgramStart

	// StackSize is the number of nested subroutine calls supported.
	StackSize = 16

	// RegisterCount is the number of V registers.
	RegisterCount = 16

	// KeyCount is the number of keys on the hexadecimal keypad.
	KeyCount = 16

	// DisplayWidth and DisplayHeight are the framebuffer dimensions.
	DisplayWidth  = 64
	DisplayHeight = 32

	// flag is the index of VF.
	flag = 0xF
)

// Interpreter is a single CHIP-8 machine.
type Interpreter struct {
	// Memory holds the font glyphs in the reserved area below ProgramStart
	// and the loaded program from ProgramStart on.
	Memory [MemorySize]byte

	// Video is the 64x32 framebuffer, one byte per pixel holding 0 or 1,
	// stored row-major.
	Video [DisplayWidth * DisplayHeight]byte

	// V are the 16 general purpose registers, VF doubles as the flag.
	V [RegisterCount]byte

	// Stack holds the return addresses of active subroutine calls.
	Stack [StackSize]uint16

	// Keys hold the current state of the 16 keypad keys.
	Keys [KeyCount]bool

	// PC is the program counter.
	PC uint16

	// I is the address register.
	I uint16

	// SP is the number of return addresses on the stack.
	SP uint8

	// DT and ST are the delay and sound timers.
	DT byte
	ST byte

	// Cycles counts the instructions executed since the last reset.
	Cycles uint64

	// waiting is set while Fx0A blocks for a key.
	waiting bool

	// fault is the error that halted the machine, if any.
	fault error

	rng    *rand.Rand
	logger *log.Logger
}

// Option configures an Interpreter created by New.
type Option func(*Interpreter)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(vm *Interpreter) {
		vm.logger = logger
	}
}

// WithRand sets the random source used by Cxnn.
func WithRand(rng *rand.Rand) Option {
	return func(vm *Interpreter) {
		vm.rng = rng
	}
}

// WithSeed makes Cxnn produce a deterministic sequence for the given seed.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)))
}

// New returns a zeroed machine with the font loaded and PC at ProgramStart.
func New(opts ...Option) *Interpreter {
	vm := &Interpreter{}

	for _, opt := range opts {
		opt(vm)
	}

	if vm.logger == nil {
		vm.logger = log.NewNop()
	}
	if vm.rng == nil {
		seed := uint64(time.Now().UnixNano())
		vm.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	vm.Reset()

	return vm
}

// LoadROM copies a program into memory at ProgramStart. The program region
// is cleared first so that no bytes of a previous program survive.
func (vm *Interpreter) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrROMTooLarge, len(rom), MaxROMSize)
	}

	clear(vm.Memory[ProgramStart:])
	copy(vm.Memory[ProgramStart:], rom)

	vm.logger.Debug("ROM loaded",
		log.Int("size", len(rom)),
		log.Hex("address", uint16(ProgramStart)))

	return nil
}

// Reset returns the machine to its power-on state. The program region of
// memory is left as is, the font area is restored.
func (vm *Interpreter) Reset() {
	copy(vm.Memory[FontAddress:], font[:])

	// reset video memory and keys
	vm.Video = [DisplayWidth * DisplayHeight]byte{}
	vm.Keys = [KeyCount]bool{}

	// reset program counter and stack
	vm.PC = ProgramStart
	vm.Stack = [StackSize]uint16{}
	vm.SP = 0

	// reset address and virtual registers
	vm.I = 0
	vm.V = [RegisterCount]byte{}

	// reset timer registers
	vm.DT = 0
	vm.ST = 0

	vm.Cycles = 0

	// not waiting for a key, not halted
	vm.waiting = false
	vm.fault = nil
}

// Step executes a single fetch/decode/execute cycle. A returned *Fault
// halts the machine: every later Step reports ErrHalted until Reset.
func (vm *Interpreter) Step() error {
	if vm.fault != nil {
		return errors.Join(ErrHalted, vm.fault)
	}

	pc := vm.PC

	word, err := vm.fetch()
	if err != nil {
		return vm.halt(pc, 0, err)
	}

	inst := Decode(word)

	if vm.logger.Enabled(context.Background(), log.TraceLevel) {
		vm.logger.Trace("Executing instruction",
			log.Hex("pc", pc),
			log.Hex("opcode", word),
			log.String("mnemonic", mnemonic(word)))
	}

	if err := vm.execute(inst); err != nil {
		return vm.halt(pc, word, err)
	}

	vm.Cycles++

	return nil
}

// TickTimers decrements the delay and sound timers, stopping at zero. The
// host calls it at 60 Hz.
func (vm *Interpreter) TickTimers() {
	if vm.DT > 0 {
		vm.DT--
	}
	if vm.ST > 0 {
		vm.ST--
	}
}

// SetKey updates the state of one keypad key.
func (vm *Interpreter) SetKey(key uint8, pressed bool) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: 0x%X", ErrKeyOutOfRange, key)
	}

	vm.Keys[key] = pressed

	return nil
}

// Framebuffer returns a copy of the framebuffer, one byte of 0 or 1 per
// pixel, row-major.
func (vm *Interpreter) Framebuffer() [DisplayWidth * DisplayHeight]byte {
	return vm.Video
}

// Pixel reports whether the pixel at x, y is set. Coordinates outside the
// display report false.
func (vm *Interpreter) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	return vm.Video[y*DisplayWidth+x] != 0
}

// SoundTimer returns the sound timer. A value above zero means the host
// should play a tone.
func (vm *Interpreter) SoundTimer() byte {
	return vm.ST
}

// DelayTimer returns the delay timer.
func (vm *Interpreter) DelayTimer() byte {
	return vm.DT
}

// Waiting reports whether the machine is blocked in Fx0A waiting for a key.
func (vm *Interpreter) Waiting() bool {
	return vm.waiting
}

// Halted returns the fault that stopped the machine, or nil.
func (vm *Interpreter) Halted() error {
	return vm.fault
}

// fetch reads the big-endian instruction word at PC and advances PC unless
// the machine is waiting for a key.
func (vm *Interpreter) fetch() (uint16, error) {
	if int(vm.PC)+1 >= MemorySize {
		return 0, fmt.Errorf("%w: pc=0x%04X", ErrFetchOutOfBounds, vm.PC)
	}

	word := uint16(vm.Memory[vm.PC])<<8 | uint16(vm.Memory[vm.PC+1])

	if !vm.waiting {
		vm.PC += 2
	}

	return word, nil
}

// halt records a fault and stops the machine.
func (vm *Interpreter) halt(pc, opcode uint16, err error) error {
	fault := &Fault{
		PC:     pc,
		Opcode: opcode,
		Err:    err,
	}
	vm.fault = fault

	vm.logger.Error("Machine halted",
		log.Hex("pc", pc),
		log.Hex("opcode", opcode),
		log.Err(err))

	return fault
}
