package main

import (
	"github.com/MrPolymorph/Chiper/internal/driver"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

// KeyMap maps a modern keyboard to the CHIP-8 keypad.
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var KeyMap = map[sdl.Scancode]uint8{
	sdl.SCANCODE_X: 0x0,
	sdl.SCANCODE_1: 0x1,
	sdl.SCANCODE_2: 0x2,
	sdl.SCANCODE_3: 0x3,
	sdl.SCANCODE_Q: 0x4,
	sdl.SCANCODE_W: 0x5,
	sdl.SCANCODE_E: 0x6,
	sdl.SCANCODE_A: 0x7,
	sdl.SCANCODE_S: 0x8,
	sdl.SCANCODE_D: 0x9,
	sdl.SCANCODE_Z: 0xA,
	sdl.SCANCODE_C: 0xB,
	sdl.SCANCODE_4: 0xC,
	sdl.SCANCODE_R: 0xD,
	sdl.SCANCODE_F: 0xE,
	sdl.SCANCODE_V: 0xF,
}

// Input polls SDL events and maps them to the CHIP-8 keypad.
type Input struct {
	logger *log.Logger
}

// ProcessEvents drains the SDL event queue. Mapped keys are forwarded to
// keys, Escape or closing the window quits and Backspace resets.
func (in *Input) ProcessEvents(keys driver.KeySink) driver.Event {
	event := driver.EventNone

	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return driver.EventQuit

		case *sdl.KeyboardEvent:
			if ev.Repeat != 0 {
				continue
			}
			pressed := ev.Type == sdl.KEYDOWN

			if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
				if err := keys.SetKey(key, pressed); err != nil {
					in.logger.Error("Setting key failed", log.Err(err))
				}
				continue
			}

			if !pressed {
				continue
			}

			switch ev.Keysym.Scancode {
			case sdl.SCANCODE_ESCAPE:
				return driver.EventQuit
			case sdl.SCANCODE_BACKSPACE:
				event = driver.EventReset
			}
		}
	}

	return event
}
