package main

import (
	"fmt"
	"unsafe"

	"github.com/MrPolymorph/Chiper/chip8"
	"github.com/MrPolymorph/Chiper/internal/driver"
	"github.com/MrPolymorph/Chiper/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

// Screen is the SDL window that presents the CHIP-8 video memory.
type Screen struct {
	logger   *log.Logger
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	// staging buffer in RGBA8888, one packed pixel per CHIP-8 pixel
	pixels [chip8.DisplayWidth * chip8.DisplayHeight]uint32

	foreground uint32
	background uint32
}

// NewScreen creates the window and the streaming render target for the
// video memory. SDL video must be initialized.
func NewScreen(logger *log.Logger, opts options.Emulator) (*Screen, error) {
	w := int32(chip8.DisplayWidth * opts.Scale)
	h := int32(chip8.DisplayHeight * opts.Scale)

	window, renderer, err := sdl.CreateWindowAndRenderer(w, h, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	// keep the aspect ratio however the window is sized
	if err := renderer.SetLogicalSize(chip8.DisplayWidth, chip8.DisplayHeight); err != nil {
		_ = renderer.Destroy()
		_ = window.Destroy()
		return nil, fmt.Errorf("setting logical size: %w", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		chip8.DisplayWidth, chip8.DisplayHeight)
	if err != nil {
		_ = renderer.Destroy()
		_ = window.Destroy()
		return nil, fmt.Errorf("creating screen texture: %w", err)
	}

	s := &Screen{
		logger:     logger,
		window:     window,
		renderer:   renderer,
		texture:    texture,
		foreground: rgba(opts.Foreground),
		background: rgba(opts.Background),
	}
	s.SetTitle("")

	return s, nil
}

// SetTitle shows the name of the running ROM in the title bar.
func (s *Screen) SetTitle(rom string) {
	if rom == "" {
		s.window.SetTitle("CHIP-8")
		return
	}
	s.window.SetTitle("CHIP-8 - " + rom)
}

// Render copies a frame of video memory to the window.
func (s *Screen) Render(frame driver.Frame) {
	for i, p := range frame {
		if p != 0 {
			s.pixels[i] = s.foreground
		} else {
			s.pixels[i] = s.background
		}
	}

	// the pitch is in bytes
	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), chip8.DisplayWidth*4); err != nil {
		s.logger.Error("Updating screen texture failed", log.Err(err))
		return
	}

	_ = s.renderer.Clear()
	_ = s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

// Close releases the window and its renderer.
func (s *Screen) Close() {
	_ = s.texture.Destroy()
	_ = s.renderer.Destroy()
	_ = s.window.Destroy()
}

// rgba packs a 0xRRGGBB color as an opaque RGBA8888 pixel.
func rgba(color uint32) uint32 {
	r, g, b := options.RGB(color)
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | 0xFF
}
