// Package config handles application configuration and setup
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrPolymorph/Chiper/internal/options"
	"github.com/retroenv/retrogolib/config"
	"github.com/retroenv/retrogolib/log"
)

// ErrInvalidSetting is returned for settings outside of their allowed range.
var ErrInvalidSetting = errors.New("invalid setting")

// Settings mirrors the settings file.
//
//	[emulation]
//	hz = 700
//	seed = 0
//
//	[display]
//	scale = 10
//	foreground = 0x111D2B
//	background = 0x8F9185
//
//	[audio]
//	enabled = true
//	tone = 440
//	volume = 0.25
type Settings struct {
	Hz   int `config:"emulation.hz,default=700"`
	Seed int `config:"emulation.seed,default=0"`

	Scale      int `config:"display.scale,default=10"`
	Foreground int `config:"display.foreground,default=0x111D2B"`
	Background int `config:"display.background,default=0x8F9185"`

	Audio  bool    `config:"audio.enabled,default=true"`
	Tone   int     `config:"audio.tone,default=440"`
	Volume float64 `config:"audio.volume,default=0.25"`
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, trace, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case trace:
		cfg.Level = log.TraceLevel
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoadSettings reads the settings file at path. An empty path returns the
// default settings.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return ParseSettings(strings.NewReader(""))
	}

	doc, err := config.Open(path, config.Options{InlineComments: true})
	if err != nil {
		return Settings{}, fmt.Errorf("opening settings file %s: %w", path, err)
	}
	return unmarshal(doc)
}

// ParseSettings reads settings from r. Missing keys keep their defaults.
func ParseSettings(r io.Reader) (Settings, error) {
	doc, err := config.Parse(r, config.Options{InlineComments: true})
	if err != nil {
		return Settings{}, fmt.Errorf("parsing settings: %w", err)
	}
	return unmarshal(doc)
}

func unmarshal(doc *config.Config) (Settings, error) {
	var settings Settings
	if err := doc.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}
	return settings, nil
}

// Resolve merges the settings with the command line options, which take
// precedence where they are set, and validates the result.
func Resolve(settings Settings, opts options.Program) (options.Emulator, error) {
	emu := options.Emulator{
		ROM:        opts.ROM,
		Hz:         settings.Hz,
		Scale:      settings.Scale,
		Audio:      settings.Audio && !opts.Mute,
		Tone:       settings.Tone,
		Volume:     settings.Volume,
		Foreground: uint32(settings.Foreground),
		Background: uint32(settings.Background),
	}

	if settings.Seed < 0 {
		return options.Emulator{}, fmt.Errorf("%w: seed %d is negative", ErrInvalidSetting, settings.Seed)
	}
	emu.Seed = uint64(settings.Seed)

	if opts.Hz != 0 {
		emu.Hz = opts.Hz
	}
	if opts.Seed != 0 {
		emu.Seed = opts.Seed
	}
	if opts.Scale != 0 {
		emu.Scale = opts.Scale
	}

	switch {
	case emu.Hz < 1 || emu.Hz > 100_000:
		return options.Emulator{}, fmt.Errorf("%w: hz %d not in 1-100000", ErrInvalidSetting, emu.Hz)
	case emu.Scale < 1 || emu.Scale > 50:
		return options.Emulator{}, fmt.Errorf("%w: scale %d not in 1-50", ErrInvalidSetting, emu.Scale)
	case !validColor(settings.Foreground):
		return options.Emulator{}, fmt.Errorf("%w: foreground 0x%X is not a 0xRRGGBB color", ErrInvalidSetting, settings.Foreground)
	case !validColor(settings.Background):
		return options.Emulator{}, fmt.Errorf("%w: background 0x%X is not a 0xRRGGBB color", ErrInvalidSetting, settings.Background)
	case emu.Tone < 20 || emu.Tone > 20_000:
		return options.Emulator{}, fmt.Errorf("%w: tone %d Hz not in 20-20000", ErrInvalidSetting, emu.Tone)
	case emu.Volume < 0 || emu.Volume > 1:
		return options.Emulator{}, fmt.Errorf("%w: volume %g not in 0-1", ErrInvalidSetting, emu.Volume)
	}

	return emu, nil
}

func validColor(c int) bool {
	return c >= 0 && c <= 0xFFFFFF
}
