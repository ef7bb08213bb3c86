// Package driver runs a CHIP-8 machine against a frontend in real time.
//
// The Driver owns the machine: instruction cycles, timer ticks, key updates
// and resets all happen on the goroutine that calls Run, so the machine never
// needs locking. Frontends only see copies of the framebuffer.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/MrPolymorph/Chiper/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Frame is a copy of the framebuffer, one byte of 0 or 1 per pixel, row-major.
type Frame = [chip8.DisplayWidth * chip8.DisplayHeight]byte

// Machine is the interpreter as seen by the driver.
type Machine interface {
	Step() error
	TickTimers()
	SetKey(key uint8, pressed bool) error
	Reset()
	LoadROM(rom []byte) error
	Framebuffer() Frame
	SoundTimer() byte
}

// KeySink receives keypad changes from a frontend.
type KeySink interface {
	SetKey(key uint8, pressed bool) error
}

// Event is a request of the frontend to the driver.
type Event int

// Frontend events.
const (
	EventNone Event = iota
	EventQuit
	EventReset
)

// Frontend presents a machine to the user.
type Frontend interface {
	// ProcessEvents drains pending input, forwarding keypad changes to keys,
	// and returns the most significant control event seen.
	ProcessEvents(keys KeySink) Event

	// Render presents a frame.
	Render(frame Frame)

	// Beep starts or stops the tone.
	Beep(on bool)
}

// Options control the timing of a Driver.
type Options struct {
	Hz         int           // instruction cycles per second
	FrameRate  int           // frames presented per second, 60 if 0
	MaxCatchUp time.Duration // see NewScheduler
	Clock      time.Duration // interval between cycle batches, 2ms if 0
}

// Driver connects a Machine to a Frontend.
type Driver struct {
	logger   *log.Logger
	machine  Machine
	frontend Frontend
	rom      []byte
	opts     Options

	beeping bool
}

// New returns a driver that runs the machine, which must already have rom
// loaded. The rom is kept to reload the machine on reset requests.
func New(logger *log.Logger, machine Machine, frontend Frontend, rom []byte, opts Options) *Driver {
	if opts.FrameRate <= 0 {
		opts.FrameRate = TimerRate
	}
	if opts.Clock <= 0 {
		opts.Clock = 2 * time.Millisecond
	}

	return &Driver{
		logger:   logger,
		machine:  machine,
		frontend: frontend,
		rom:      rom,
		opts:     opts,
	}
}

// Run executes the machine until the context is cancelled, the frontend
// asks to quit or the machine faults. The fault is returned, a quit request
// returns nil.
func (d *Driver) Run(ctx context.Context) error {
	scheduler := NewScheduler(time.Now(), d.opts.Hz, d.opts.MaxCatchUp)

	// set processor speed and refresh rate
	clock := time.NewTicker(d.opts.Clock)
	defer clock.Stop()
	video := time.NewTicker(time.Second / time.Duration(d.opts.FrameRate))
	defer video.Stop()

	d.logger.Debug("Driver started",
		log.Int("hz", scheduler.Hz()),
		log.Int("fps", d.opts.FrameRate))

	for {
		select {
		case <-ctx.Done():
			d.frontend.Beep(false)
			return ctx.Err()

		case now := <-clock.C:
			if err := d.advance(scheduler, now); err != nil {
				d.frontend.Beep(false)
				return err
			}

		case <-video.C:
			switch d.frontend.ProcessEvents(d.machine) {
			case EventQuit:
				d.logger.Debug("Quit requested")
				d.frontend.Beep(false)
				return nil
			case EventReset:
				if err := d.reset(); err != nil {
					return err
				}
			case EventNone:
			}

			d.present()
		}
	}
}

// advance runs all cycles and timer ticks due at now. Timer ticks are
// interleaved with the cycles so that a batch never runs a whole timer
// period ahead of the timers.
func (d *Driver) advance(scheduler *Scheduler, now time.Time) error {
	cycles, ticks := scheduler.Due(now)

	for i := range cycles {
		for range (i+1)*ticks/cycles - i*ticks/cycles {
			d.machine.TickTimers()
		}
		if err := d.machine.Step(); err != nil {
			return fmt.Errorf("running machine: %w", err)
		}
	}

	// no cycles due, but the timers still run down
	if cycles == 0 {
		for range ticks {
			d.machine.TickTimers()
		}
	}

	return nil
}

// reset restores the machine to the state right after the ROM was loaded.
func (d *Driver) reset() error {
	d.machine.Reset()
	if err := d.machine.LoadROM(d.rom); err != nil {
		return fmt.Errorf("reloading ROM: %w", err)
	}

	d.logger.Info("Machine reset")

	return nil
}

func (d *Driver) present() {
	d.frontend.Render(d.machine.Framebuffer())

	beep := d.machine.SoundTimer() > 0
	if beep != d.beeping {
		d.beeping = beep
		d.frontend.Beep(beep)
	}
}
