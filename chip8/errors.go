package chip8

import (
	"errors"
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Execution errors. All of them are fatal for the machine that raised them.
var (
	ErrMemoryOutOfBounds = chip8cpu.ErrMemoryOutOfBounds
	ErrStackOverflow     = chip8cpu.ErrStackOverflow
	ErrStackUnderflow    = chip8cpu.ErrStackUnderflow

	// ErrFetchOutOfBounds is raised when PC leaves room for less than one
	// instruction word. It also matches ErrMemoryOutOfBounds.
	ErrFetchOutOfBounds = fmt.Errorf("instruction fetch: %w", chip8cpu.ErrMemoryOutOfBounds)

	// ErrHalted is returned by Step once a fault stopped the machine.
	ErrHalted = errors.New("machine halted")
)

// Host interface errors.
var (
	ErrROMTooLarge   = errors.New("ROM too large")
	ErrKeyOutOfRange = chip8cpu.ErrKeyIndexOutOfBounds
)

// Fault describes the instruction that stopped the machine.
type Fault struct {
	PC     uint16 // address the instruction was fetched from
	Opcode uint16 // instruction word, 0 if the fetch itself failed
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at 0x%03X (opcode %04X): %v", f.PC, f.Opcode, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
