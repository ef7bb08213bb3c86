package chip8

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

type execTest struct {
	name  string
	words []uint16
	setup func(vm *Interpreter)
	check func(t *testing.T, vm *Interpreter)
}

// runExecTests executes the words of every test case on a fresh machine and
// checks the resulting state.
func runExecTests(t *testing.T, tests []execTest) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, tt.words...)
			if tt.setup != nil {
				tt.setup(vm)
			}
			steps(t, vm, len(tt.words))
			tt.check(t, vm)
		})
	}
}

// newQuietVM is newTestVM without a test logger, for programs that fault.
func newQuietVM(t *testing.T, words ...uint16) *Interpreter {
	t.Helper()

	vm := New(WithSeed(1))
	assert.NoError(t, vm.LoadROM(program(words...)))
	return vm
}

func TestLoadAndLogic(t *testing.T) {
	runExecTests(t, []execTest{
		{
			name:  "6xnn",
			words: []uint16{0x6A42},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x42), vm.V[0xA])
			},
		},
		{
			name:  "8xy0",
			words: []uint16{0x6177, 0x8010},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x77), vm.V[0])
				assert.Equal(t, byte(0x77), vm.V[1])
			},
		},
		{
			name:  "8xy1",
			words: []uint16{0x60F0, 0x610F, 0x8011},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0xFF), vm.V[0])
			},
		},
		{
			name:  "8xy2",
			words: []uint16{0x60F3, 0x613F, 0x8012},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x33), vm.V[0])
			},
		},
		{
			name:  "8xy3",
			words: []uint16{0x60FF, 0x610F, 0x8013},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0xF0), vm.V[0])
			},
		},
		{
			name:  "logic leaves VF alone",
			words: []uint16{0x6F09, 0x8011, 0x8012, 0x8013},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x09), vm.V[0xF])
			},
		},
	})
}

func TestArithmetic(t *testing.T) {
	runExecTests(t, []execTest{
		{
			name:  "7xnn wraps without carry flag",
			words: []uint16{0x60FF, 0x6F55, 0x7001},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x00), vm.V[0])
				assert.Equal(t, byte(0x55), vm.V[0xF])
			},
		},
		{
			name:  "8xy4 with carry",
			words: []uint16{0x60C8, 0x6164, 0x8014}, // 200 + 100
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(44), vm.V[0])
				assert.Equal(t, byte(1), vm.V[0xF])
			},
		},
		{
			name:  "8xy4 without carry",
			words: []uint16{0x6001, 0x6102, 0x8014},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(3), vm.V[0])
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
		{
			name:  "8xy4 into VF keeps the carry",
			words: []uint16{0x6FC8, 0x6164, 0x8F14},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(1), vm.V[0xF])
			},
		},
		{
			name:  "8xy5 without borrow",
			words: []uint16{0x6005, 0x6103, 0x8015},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(2), vm.V[0])
				assert.Equal(t, byte(1), vm.V[0xF])
			},
		},
		{
			name:  "8xy5 with borrow",
			words: []uint16{0x6003, 0x6105, 0x8015},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0xFE), vm.V[0])
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
		{
			name:  "8xy5 equal operands",
			words: []uint16{0x6007, 0x6107, 0x8015},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0), vm.V[0])
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
		{
			name:  "8xy5 into VF keeps the difference",
			words: []uint16{0x6F05, 0x6103, 0x8F15},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(2), vm.V[0xF])
			},
		},
		{
			name:  "8xy7 without borrow",
			words: []uint16{0x6003, 0x6105, 0x8017},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(2), vm.V[0])
				assert.Equal(t, byte(1), vm.V[0xF])
			},
		},
		{
			name:  "8xy7 with borrow",
			words: []uint16{0x6005, 0x6103, 0x8017},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0xFE), vm.V[0])
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
		{
			name:  "8xy6 shifts out the low bit",
			words: []uint16{0x6003, 0x8016},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(1), vm.V[0])
				assert.Equal(t, byte(1), vm.V[0xF])
			},
		},
		{
			name:  "8xy6 ignores vy",
			words: []uint16{0x6004, 0x61FF, 0x8016},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(2), vm.V[0])
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
		{
			name:  "8xyE shifts out the high bit",
			words: []uint16{0x6081, 0x801E},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x02), vm.V[0])
				assert.Equal(t, byte(1), vm.V[0xF])
			},
		},
		{
			name:  "8xyE without high bit",
			words: []uint16{0x6041, 0x801E},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x82), vm.V[0])
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
	})
}

// TestArithmeticFlags checks the carry and borrow flags for every pair of
// operands.
func TestArithmeticFlags(t *testing.T) {
	vm := New()

	for a := range 256 {
		for b := range 256 {
			vm.V[0], vm.V[1] = byte(a), byte(b)
			assert.NoError(t, vm.execute(Decode(0x8014)))
			if vm.V[0] != byte(a+b) || vm.V[0xF] != boolToByte(a+b > 0xFF) {
				t.Fatalf("add %d+%d: v0=%d vf=%d", a, b, vm.V[0], vm.V[0xF])
			}

			vm.V[0], vm.V[1] = byte(a), byte(b)
			assert.NoError(t, vm.execute(Decode(0x8015)))
			if vm.V[0] != byte(a-b) || vm.V[0xF] != boolToByte(a > b) {
				t.Fatalf("sub %d-%d: v0=%d vf=%d", a, b, vm.V[0], vm.V[0xF])
			}

			vm.V[0], vm.V[1] = byte(a), byte(b)
			assert.NoError(t, vm.execute(Decode(0x8017)))
			if vm.V[0] != byte(b-a) || vm.V[0xF] != boolToByte(b > a) {
				t.Fatalf("subn %d-%d: v0=%d vf=%d", b, a, vm.V[0], vm.V[0xF])
			}
		}
	}
}

func TestSkips(t *testing.T) {
	skipped := func(t *testing.T, vm *Interpreter) {
		t.Helper()
		assert.Equal(t, uint16(ProgramStart+6), vm.PC)
	}
	notSkipped := func(t *testing.T, vm *Interpreter) {
		t.Helper()
		assert.Equal(t, uint16(ProgramStart+4), vm.PC)
	}

	runExecTests(t, []execTest{
		{name: "3xnn equal", words: []uint16{0x6042, 0x3042}, check: skipped},
		{name: "3xnn not equal", words: []uint16{0x6042, 0x3043}, check: notSkipped},
		{name: "4xnn not equal", words: []uint16{0x6042, 0x4043}, check: skipped},
		{name: "4xnn equal", words: []uint16{0x6042, 0x4042}, check: notSkipped},
		{name: "5xy0 equal", words: []uint16{0x6042, 0x5010}, setup: func(vm *Interpreter) { vm.V[1] = 0x42 }, check: skipped},
		{name: "5xy0 not equal", words: []uint16{0x6042, 0x5010}, check: notSkipped},
		{name: "9xy0 not equal", words: []uint16{0x6042, 0x9010}, check: skipped},
		{name: "9xy0 equal", words: []uint16{0x6042, 0x9010}, setup: func(vm *Interpreter) { vm.V[1] = 0x42 }, check: notSkipped},
		{name: "Ex9E pressed", words: []uint16{0x6005, 0xE09E}, setup: func(vm *Interpreter) { vm.Keys[5] = true }, check: skipped},
		{name: "Ex9E released", words: []uint16{0x6005, 0xE09E}, check: notSkipped},
		{name: "ExA1 released", words: []uint16{0x6005, 0xE0A1}, check: skipped},
		{name: "ExA1 pressed", words: []uint16{0x6005, 0xE0A1}, setup: func(vm *Interpreter) { vm.Keys[5] = true }, check: notSkipped},
		{name: "Ex9E uses low nibble of vx", words: []uint16{0x60F5, 0xE09E}, setup: func(vm *Interpreter) { vm.Keys[5] = true }, check: skipped},
	})
}

func TestJumps(t *testing.T) {
	runExecTests(t, []execTest{
		{
			name:  "1nnn",
			words: []uint16{0x1ABC},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, uint16(0xABC), vm.PC)
			},
		},
		{
			name:  "Bnnn adds v0",
			words: []uint16{0x6004, 0xB300},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, uint16(0x304), vm.PC)
			},
		},
		{
			name:  "2nnn pushes the return address",
			words: []uint16{0x6000, 0x2400},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, uint16(0x400), vm.PC)
				assert.Equal(t, uint8(1), vm.SP)
				assert.Equal(t, uint16(0x204), vm.Stack[0])
			},
		},
	})
}

func TestTimersAndIndex(t *testing.T) {
	runExecTests(t, []execTest{
		{
			name:  "Fx15 and Fx07",
			words: []uint16{0x6033, 0xF015, 0xF107},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x33), vm.DT)
				assert.Equal(t, byte(0x33), vm.V[1])
			},
		},
		{
			name:  "Fx18",
			words: []uint16{0x6044, 0xF018},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x44), vm.SoundTimer())
			},
		},
		{
			name:  "Annn",
			words: []uint16{0xA123},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, uint16(0x123), vm.I)
			},
		},
		{
			name:  "Fx1E",
			words: []uint16{0xA100, 0x6010, 0xF01E},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, uint16(0x110), vm.I)
			},
		},
		{
			name:  "Fx1E wraps at 12 bits and leaves VF alone",
			words: []uint16{0xAFFF, 0x6002, 0x6F07, 0xF01E},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, uint16(0x001), vm.I)
				assert.Equal(t, byte(0x07), vm.V[0xF])
			},
		},
		{
			name:  "Fx29",
			words: []uint16{0x600A, 0xF029},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, uint16(FontAddress+0xA*GlyphSize), vm.I)
			},
		},
		{
			name:  "Fx29 uses low nibble of vx",
			words: []uint16{0x601A, 0xF029},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, uint16(FontAddress+0xA*GlyphSize), vm.I)
			},
		},
	})
}

func TestRandom(t *testing.T) {
	t.Run("masked", func(t *testing.T) {
		vm := New(WithSeed(7))
		for range 1000 {
			assert.NoError(t, vm.execute(Decode(0xC00F)))
			assert.Equal(t, byte(0), vm.V[0]&0xF0)
		}

		assert.NoError(t, vm.execute(Decode(0xC000)))
		assert.Equal(t, byte(0), vm.V[0])
	})

	t.Run("seeded", func(t *testing.T) {
		a, b := New(WithSeed(7)), New(WithSeed(7))
		for range 100 {
			assert.NoError(t, a.execute(Decode(0xC0FF)))
			assert.NoError(t, b.execute(Decode(0xC0FF)))
			assert.Equal(t, a.V[0], b.V[0])
		}
	})
}

func TestMemoryTransfer(t *testing.T) {
	runExecTests(t, []execTest{
		{
			name:  "Fx33",
			words: []uint16{0x60FE, 0xA300, 0xF033},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, []byte{2, 5, 4}, vm.Memory[0x300:0x303])
				assert.Equal(t, uint16(0x300), vm.I)
			},
		},
		{
			name:  "Fx33 single digit",
			words: []uint16{0x6007, 0xA300, 0xF033},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, []byte{0, 0, 7}, vm.Memory[0x300:0x303])
			},
		},
		{
			name:  "Fx55 stores v0 through vx",
			words: []uint16{0x6011, 0x6122, 0x6233, 0x6344, 0xA300, 0xF255},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x00}, vm.Memory[0x300:0x304])
				assert.Equal(t, uint16(0x300), vm.I)
			},
		},
		{
			name:  "Fx65 loads v0 through vx",
			words: []uint16{0x63AA, 0xA300, 0xF265},
			setup: func(vm *Interpreter) {
				copy(vm.Memory[0x300:], []byte{1, 2, 3, 4})
			},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, []byte{1, 2, 3, 0xAA}, vm.V[:4])
				assert.Equal(t, uint16(0x300), vm.I)
			},
		},
		{
			name:  "Fx55 at the last byte of memory",
			words: []uint16{0x6099, 0xAFFF, 0xF055},
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0x99), vm.Memory[0xFFF])
			},
		},
	})
}

func TestStoreRestoreRoundTrip(t *testing.T) {
	vm := newTestVM(t, 0xA400, 0xFF55, 0xFF65)
	want := [RegisterCount]byte{}
	for i := range want {
		want[i] = byte(0x10 + i)
	}

	steps(t, vm, 1)
	vm.V = want
	steps(t, vm, 1)
	vm.V = [RegisterCount]byte{}
	steps(t, vm, 1)

	if diff := cmp.Diff(want, vm.V); diff != "" {
		t.Errorf("registers: (-want, +got)\n%s", diff)
	}
}

func TestMemoryOutOfBounds(t *testing.T) {
	tests := []struct {
		name  string
		words []uint16
	}{
		{"Fx33", []uint16{0xAFFE, 0xF033}},
		{"Fx55", []uint16{0xAFFE, 0xF255}},
		{"Fx65", []uint16{0xAFFE, 0xF265}},
		{"Dxyn", []uint16{0xAFFE, 0xD003}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newQuietVM(t, tt.words...)
			vm.V = [RegisterCount]byte{1, 2, 3}

			assert.NoError(t, vm.Step())
			memory, video, regs := vm.Memory, vm.Video, vm.V

			err := vm.Step()
			assert.ErrorIs(t, err, ErrMemoryOutOfBounds)

			var fault *Fault
			assert.ErrorAs(t, err, &fault)
			assert.Equal(t, uint16(ProgramStart+2), fault.PC)
			assert.Equal(t, tt.words[1], fault.Opcode)

			assert.Equal(t, memory, vm.Memory, "memory untouched")
			assert.Equal(t, video, vm.Video, "video untouched")
			assert.Equal(t, regs, vm.V, "registers untouched")
		})
	}
}

func TestDraw(t *testing.T) {
	// lit returns the coordinates of all set pixels.
	lit := func(vm *Interpreter) [][2]int {
		var pixels [][2]int
		for y := range DisplayHeight {
			for x := range DisplayWidth {
				if vm.Pixel(x, y) {
					pixels = append(pixels, [2]int{x, y})
				}
			}
		}
		return pixels
	}
	sprite := func(rows ...byte) func(vm *Interpreter) {
		return func(vm *Interpreter) {
			copy(vm.Memory[0x300:], rows)
		}
	}

	runExecTests(t, []execTest{
		{
			name:  "single pixel",
			words: []uint16{0xA300, 0x6003, 0x6104, 0xD011},
			setup: sprite(0x80),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, [][2]int{{3, 4}}, lit(vm))
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
		{
			name:  "clips at the right edge",
			words: []uint16{0xA300, 0x603E, 0x6100, 0xD011},
			setup: sprite(0xFF),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, [][2]int{{62, 0}, {63, 0}}, lit(vm))
			},
		},
		{
			name:  "clips at the bottom edge",
			words: []uint16{0xA300, 0x6000, 0x611E, 0xD013},
			setup: sprite(0x80, 0x80, 0x80),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, [][2]int{{0, 30}, {0, 31}}, lit(vm))
			},
		},
		{
			name:  "start outside the display draws nothing",
			words: []uint16{0xA300, 0x6046, 0x6128, 0xD011},
			setup: sprite(0xFF),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Len(t, lit(vm), 0)
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
		{
			name:  "drawing twice erases and sets VF",
			words: []uint16{0xA300, 0xD011, 0xD011},
			setup: sprite(0xC0),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Len(t, lit(vm), 0)
				assert.Equal(t, byte(1), vm.V[0xF])
			},
		},
		{
			name:  "overlap without collision",
			words: []uint16{0xA300, 0xD011, 0x6001, 0xD011},
			setup: sprite(0x80),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, [][2]int{{0, 0}, {1, 0}}, lit(vm))
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
		{
			name:  "VF reset by a draw without collision",
			words: []uint16{0xA300, 0x6F01, 0xD011},
			setup: sprite(0x80),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, byte(0), vm.V[0xF])
			},
		},
		{
			name:  "VF as coordinate is read before the flag reset",
			words: []uint16{0xA300, 0x6F0A, 0xDF11},
			setup: sprite(0x80),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Equal(t, [][2]int{{10, 0}}, lit(vm))
			},
		},
		{
			name:  "zero rows",
			words: []uint16{0xA300, 0xD010},
			setup: sprite(0xFF),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Len(t, lit(vm), 0)
			},
		},
		{
			name:  "cls",
			words: []uint16{0xA300, 0xD011, 0x00E0},
			setup: sprite(0xFF),
			check: func(t *testing.T, vm *Interpreter) {
				t.Helper()
				assert.Len(t, lit(vm), 0)
			},
		},
	})
}

func TestPixelsStayBinary(t *testing.T) {
	vm := New(WithSeed(3))
	for i := range 500 {
		vm.V[0] = byte(vm.rng.IntN(256))
		vm.V[1] = byte(vm.rng.IntN(256))
		vm.I = uint16(vm.rng.IntN(0x200))
		assert.NoError(t, vm.execute(Decode(0xD01F)), "draw %d", i)
		assert.True(t, vm.V[0xF] <= 1)
	}

	for i, p := range vm.Video {
		if p > 1 {
			t.Fatalf("pixel %d has value %d", i, p)
		}
	}
}

func TestIgnoredOpcodes(t *testing.T) {
	tests := []struct {
		name string
		word uint16
	}{
		{"sys", 0x0123},
		{"undefined ALU", 0x8008},
		{"undefined misc", 0xF0FF},
		{"undefined key", 0xE000},
		{"malformed 5xy0", 0x5011},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t, tt.word)
			vm.V[0] = 0x42
			regs, memory := vm.V, vm.Memory

			assert.NoError(t, vm.Step())
			assert.Equal(t, uint16(ProgramStart+2), vm.PC)
			assert.Equal(t, regs, vm.V)
			assert.Equal(t, memory, vm.Memory)
			assert.NoError(t, vm.Halted())
		})
	}
}
