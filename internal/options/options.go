// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	ROM string `arg:"positional" usage:"CHIP-8 ROM file to run (a file dialog opens if omitted)"`
}

// Emulation contains machine options. Zero values leave the settings file
// value in place.
type Emulation struct {
	Hz   int    `flag:"hz" usage:"instruction cycles per second (default 700)"`
	Seed uint64 `flag:"seed" usage:"random number seed, 0 seeds from the clock"`
}

// Display contains presentation options.
type Display struct {
	Scale int  `flag:"scale" usage:"window scale factor (default 10)"`
	Mute  bool `flag:"mute" usage:"disable the tone"`
}

// Flags contains behavior options.
type Flags struct {
	Config  string `flag:"c" usage:"settings file"`
	Debug   bool   `flag:"debug" usage:"enable debug logging"`
	Trace   bool   `flag:"trace" usage:"log every executed instruction"`
	Quiet   bool   `flag:"q" usage:"quiet mode"`
	Version bool   `flag:"version" usage:"print version information and exit"`
}

// Program options of the emulator as given on the command line.
type Program struct {
	Positional
	Emulation
	Display
	Flags
}

// Emulator contains the resolved options that the emulator runs with.
type Emulator struct {
	ROM  string
	Hz   int
	Seed uint64 // 0 seeds from the clock

	Scale      int
	Foreground uint32 // 0xRRGGBB of set pixels
	Background uint32 // 0xRRGGBB of cleared pixels

	Audio  bool
	Tone   int     // tone frequency in Hz
	Volume float64 // 0.0 - 1.0
}

// RGB splits a 0xRRGGBB color into its components.
func RGB(color uint32) (r, g, b uint8) {
	return uint8(color >> 16), uint8(color >> 8), uint8(color)
}
