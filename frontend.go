package main

import (
	"github.com/MrPolymorph/Chiper/internal/driver"
)

// Frontend combines the SDL window, keyboard and audio device.
type Frontend struct {
	*Input
	screen *Screen
	audio  *Audio // nil when the tone is disabled
}

// Render presents the frame and keeps a playing tone fed.
func (f *Frontend) Render(frame driver.Frame) {
	f.screen.Render(frame)
	if f.audio != nil {
		f.audio.Refill()
	}
}

// Beep starts or stops the tone.
func (f *Frontend) Beep(on bool) {
	if f.audio != nil {
		f.audio.Beep(on)
	}
}
