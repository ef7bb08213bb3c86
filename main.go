// Package main implements a CHIP-8 emulator with an SDL frontend.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/MrPolymorph/Chiper/chip8"
	"github.com/MrPolymorph/Chiper/internal/cli"
	"github.com/MrPolymorph/Chiper/internal/config"
	"github.com/MrPolymorph/Chiper/internal/driver"
	"github.com/MrPolymorph/Chiper/internal/loader"
	"github.com/MrPolymorph/Chiper/internal/options"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func init() {
	// SDL must be driven from the main thread
	runtime.LockOSThread()
}

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags(filepath.Base(os.Args[0]), os.Args[1:])
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) && usageErr.HelpRequested() {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.Version {
		fmt.Println(buildinfo.Version(version, commit, date))
		return
	}

	logger := config.CreateLogger(opts.Debug, opts.Trace, opts.Quiet)
	logger.Info("CHIP-8 emulator", log.String("version", buildinfo.Version(version, commit, date)))

	if err := run(ctx, logger, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	settings, err := config.LoadSettings(opts.Config)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	emu, err := config.Resolve(settings, opts)
	if err != nil {
		return fmt.Errorf("resolving options: %w", err)
	}

	if emu.ROM == "" {
		emu.ROM, err = dialog.File().
			Title("Open CHIP-8 ROM").
			Filter("CHIP-8 ROM", "ch8", "c8").
			Filter("All files", "*").
			Load()
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Info("No ROM selected")
			return nil
		}
		if err != nil {
			return fmt.Errorf("selecting ROM: %w", err)
		}
	}

	rom, err := loader.Load(emu.ROM)
	if err != nil {
		return err
	}

	vmOpts := []chip8.Option{chip8.WithLogger(logger.Named("chip8"))}
	if emu.Seed != 0 {
		vmOpts = append(vmOpts, chip8.WithSeed(emu.Seed))
	}
	vm := chip8.New(vmOpts...)
	if err := vm.LoadROM(rom); err != nil {
		return err
	}
	logger.Info("ROM loaded",
		log.String("file", emu.ROM),
		log.Int("size", len(rom)),
		log.Int("hz", emu.Hz))

	frontend, err := openFrontend(logger, emu)
	if err != nil {
		return err
	}
	defer closeFrontend(frontend)

	frontend.screen.SetTitle(filepath.Base(emu.ROM))

	d := driver.New(logger.Named("driver"), vm, frontend, rom, driver.Options{Hz: emu.Hz})
	err = d.Run(ctx)

	var fault *chip8.Fault
	if errors.As(err, &fault) {
		dialog.Message("The program stopped at address 0x%03X:\n%v", fault.PC, fault.Err).
			Title("CHIP-8").
			Error()
	}

	return err
}

// openFrontend initializes SDL and creates the window and audio device.
func openFrontend(logger *log.Logger, emu options.Emulator) (*Frontend, error) {
	flags := uint32(sdl.INIT_VIDEO)
	if emu.Audio {
		flags |= sdl.INIT_AUDIO
	}
	if err := sdl.Init(flags); err != nil {
		return nil, fmt.Errorf("initializing SDL: %w", err)
	}

	screen, err := NewScreen(logger, emu)
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	frontend := &Frontend{
		Input:  &Input{logger: logger},
		screen: screen,
	}

	if emu.Audio {
		audio, err := NewAudio(logger, emu)
		if err != nil {
			// run silently rather than not at all
			logger.Warn("Audio unavailable", log.Err(err))
		} else {
			frontend.audio = audio
		}
	}

	return frontend, nil
}

func closeFrontend(f *Frontend) {
	if f.audio != nil {
		f.audio.Close()
	}
	f.screen.Close()
	sdl.Quit()
}
